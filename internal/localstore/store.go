// Package localstore persists jobs, templates and images in a single SQLite
// file for on-device use.
package localstore

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jonathan/inspection-reports/internal/store"
	"github.com/jonathan/inspection-reports/internal/types"
)

//go:embed schema.sql
var schemaSQL string

var _ store.Stores = (*Store)(nil)

// Store is a store.Stores backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// pragmas are per connection
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetJob retrieves a job by ID. Returns nil when it does not exist.
func (s *Store) GetJob(ctx context.Context, id string) (*types.Job, error) {
	var job types.Job
	var created, modified int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, template_id, title, client_name, address, inspection_date, data, date_created, date_modified
		 FROM jobs WHERE id = ?`,
		id,
	).Scan(&job.ID, &job.TemplateID, &job.Title, &job.ClientName, &job.Address,
		&job.InspectionDate, &job.Data, &created, &modified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	job.DateCreated = time.UnixMilli(created).UTC()
	job.DateModified = time.UnixMilli(modified).UTC()
	return &job, nil
}

// UpdateJob inserts or replaces a job. Timestamps are stored with
// millisecond precision.
func (s *Store) UpdateJob(ctx context.Context, job *types.Job) error {
	created := job.DateCreated
	if created.IsZero() {
		created = time.Now()
	}
	modified := job.DateModified
	if modified.IsZero() {
		modified = created
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, template_id, title, client_name, address, inspection_date, data, date_created, date_modified)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   template_id = excluded.template_id, title = excluded.title,
		   client_name = excluded.client_name, address = excluded.address,
		   inspection_date = excluded.inspection_date, data = excluded.data,
		   date_modified = excluded.date_modified`,
		job.ID, job.TemplateID, job.Title, job.ClientName, job.Address,
		job.InspectionDate, job.Data, created.UnixMilli(), modified.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to update job %s: %w", job.ID, err)
	}
	return nil
}

// DeleteJob deletes a job and its images.
func (s *Store) DeleteJob(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}

// ListJobs retrieves jobs with optional filters, most recently modified
// first. Search is case-insensitive for ASCII only, as SQLite LIKE is.
func (s *Store) ListJobs(ctx context.Context, filters store.JobFilters) ([]store.JobSummary, error) {
	query, args := buildJobListQuery(filters)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]store.JobSummary, 0)
	for rows.Next() {
		var j store.JobSummary
		var modified int64
		if err := rows.Scan(&j.ID, &j.TemplateID, &j.Title, &j.ClientName, &modified); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		j.DateModified = time.UnixMilli(modified).UTC()
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func buildJobListQuery(filters store.JobFilters) (string, []any) {
	if filters.Limit <= 0 {
		filters.Limit = store.DefaultListLimit
	}

	query := `SELECT id, template_id, title, client_name, date_modified
		FROM jobs WHERE 1=1`
	args := []any{}

	if filters.TemplateID != "" {
		query += " AND template_id = ?"
		args = append(args, filters.TemplateID)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query += " AND (title LIKE ? OR client_name LIKE ?)"
		args = append(args, pattern, pattern)
	}

	query += " ORDER BY date_modified DESC, id LIMIT ?"
	args = append(args, filters.Limit)
	return query, args
}

// GetTemplateByID retrieves a template. Returns nil when it does not exist.
func (s *Store) GetTemplateByID(ctx context.Context, id string) (*types.TemplateDocument, error) {
	var content string
	err := s.db.QueryRowContext(ctx, `SELECT content FROM templates WHERE id = ?`, id).Scan(&content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	var t types.TemplateDocument
	if err := json.Unmarshal([]byte(content), &t); err != nil {
		return nil, fmt.Errorf("failed to decode template %s: %w", id, err)
	}
	return &t, nil
}

// UpdateTemplate inserts or replaces a template.
func (s *Store) UpdateTemplate(ctx context.Context, template *types.TemplateDocument) error {
	content, err := json.Marshal(template)
	if err != nil {
		return fmt.Errorf("failed to marshal template: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO templates (id, name, content) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, content = excluded.content`,
		template.ID, template.Name, string(content),
	)
	if err != nil {
		return fmt.Errorf("failed to update template %s: %w", template.ID, err)
	}
	return nil
}

// ListTemplates retrieves every template ordered by name.
func (s *Store) ListTemplates(ctx context.Context) ([]store.TemplateSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM templates ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	templates := make([]store.TemplateSummary, 0)
	for rows.Next() {
		var t store.TemplateSummary
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// GetImagesForJob returns a job's images ordered by section and order.
func (s *Store) GetImagesForJob(ctx context.Context, jobID string) ([]types.Image, error) {
	return s.queryImages(ctx,
		`SELECT id, job_id, section_id, file_path, caption, sort_order
		 FROM images WHERE job_id = ? ORDER BY section_id, sort_order`,
		jobID,
	)
}

// GetImagesForSection returns the images of one section ordered by order.
func (s *Store) GetImagesForSection(ctx context.Context, jobID, sectionID string) ([]types.Image, error) {
	return s.queryImages(ctx,
		`SELECT id, job_id, section_id, file_path, caption, sort_order
		 FROM images WHERE job_id = ? AND section_id = ? ORDER BY sort_order`,
		jobID, sectionID,
	)
}

func (s *Store) queryImages(ctx context.Context, query string, args ...any) ([]types.Image, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get images: %w", err)
	}
	defer rows.Close()

	images := make([]types.Image, 0)
	for rows.Next() {
		var img types.Image
		if err := rows.Scan(&img.ID, &img.JobID, &img.SectionID, &img.FilePath, &img.Caption, &img.Order); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// AddImage stores an image record, assigning an ID when empty. The job
// must exist.
func (s *Store) AddImage(ctx context.Context, image *types.Image) error {
	if image.ID == "" {
		image.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO images (id, job_id, section_id, file_path, caption, sort_order)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		image.ID, image.JobID, image.SectionID, image.FilePath, image.Caption, image.Order,
	)
	if err != nil {
		return fmt.Errorf("failed to add image: %w", err)
	}
	return nil
}

// DeleteImagesForSection deletes every image of a section.
func (s *Store) DeleteImagesForSection(ctx context.Context, jobID, sectionID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM images WHERE job_id = ? AND section_id = ?`,
		jobID, sectionID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete section images: %w", err)
	}
	return nil
}
