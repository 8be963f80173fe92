package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/inspection-reports/internal/store"
	"github.com/jonathan/inspection-reports/internal/types"
)

const jobColumns = `id, template_id, title, client_name, address, inspection_date, data, date_created, date_modified`

// GetJob retrieves a job by ID. Returns nil when it does not exist.
func (db *DB) GetJob(ctx context.Context, id string) (*types.Job, error) {
	var job types.Job
	err := db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`,
		id,
	).Scan(&job.ID, &job.TemplateID, &job.Title, &job.ClientName, &job.Address,
		&job.InspectionDate, &job.Data, &job.DateCreated, &job.DateModified)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// UpdateJob inserts or replaces a job
func (db *DB) UpdateJob(ctx context.Context, job *types.Job) error {
	created := job.DateCreated
	if created.IsZero() {
		created = time.Now().UTC()
	}
	modified := job.DateModified
	if modified.IsZero() {
		modified = created
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO jobs (`+jobColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
		   template_id = $2, title = $3, client_name = $4, address = $5,
		   inspection_date = $6, data = $7, date_modified = $9`,
		job.ID, job.TemplateID, job.Title, job.ClientName, job.Address,
		job.InspectionDate, job.Data, created, modified,
	)
	if err != nil {
		return fmt.Errorf("failed to update job %s: %w", job.ID, err)
	}
	return nil
}

// DeleteJob deletes a job and all its images (via cascade)
func (db *DB) DeleteJob(ctx context.Context, id string) error {
	if _, err := db.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}

// ListJobs retrieves jobs with optional filters, most recently modified first
func (db *DB) ListJobs(ctx context.Context, filters store.JobFilters) ([]store.JobSummary, error) {
	query, args := buildJobListQuery(filters)
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]store.JobSummary, 0)
	for rows.Next() {
		var j store.JobSummary
		if err := rows.Scan(&j.ID, &j.TemplateID, &j.Title, &j.ClientName, &j.DateModified); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

func buildJobListQuery(filters store.JobFilters) (string, []any) {
	if filters.Limit <= 0 {
		filters.Limit = store.DefaultListLimit
	}

	query := `SELECT id, template_id, title, client_name, date_modified
		FROM jobs WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.TemplateID != "" {
		query += fmt.Sprintf(" AND template_id = $%d", argNum)
		args = append(args, filters.TemplateID)
		argNum++
	}
	if filters.Search != "" {
		query += fmt.Sprintf(" AND (title ILIKE $%d OR client_name ILIKE $%d)", argNum, argNum)
		args = append(args, "%"+filters.Search+"%")
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY date_modified DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)
	return query, args
}
