package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/inspection-reports/internal/types"
)

// GetImagesForJob retrieves a job's images ordered by section and order
func (db *DB) GetImagesForJob(ctx context.Context, jobID string) ([]types.Image, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, job_id, section_id, file_path, caption, sort_order
		 FROM images WHERE job_id = $1
		 ORDER BY section_id, sort_order`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get images: %w", err)
	}
	return scanImages(rows)
}

// GetImagesForSection retrieves the images of one section ordered by order
func (db *DB) GetImagesForSection(ctx context.Context, jobID, sectionID string) ([]types.Image, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, job_id, section_id, file_path, caption, sort_order
		 FROM images WHERE job_id = $1 AND section_id = $2
		 ORDER BY sort_order`,
		jobID, sectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get section images: %w", err)
	}
	return scanImages(rows)
}

func scanImages(rows pgx.Rows) ([]types.Image, error) {
	defer rows.Close()
	images := make([]types.Image, 0)
	for rows.Next() {
		var img types.Image
		if err := rows.Scan(&img.ID, &img.JobID, &img.SectionID, &img.FilePath, &img.Caption, &img.Order); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read images: %w", err)
	}
	return images, nil
}

// AddImage stores an image record, assigning an ID when empty
func (db *DB) AddImage(ctx context.Context, image *types.Image) error {
	if image.ID == "" {
		image.ID = uuid.NewString()
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO images (id, job_id, section_id, file_path, caption, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		image.ID, image.JobID, image.SectionID, image.FilePath, image.Caption, image.Order,
	)
	if err != nil {
		return fmt.Errorf("failed to add image: %w", err)
	}
	return nil
}

// DeleteImagesForSection deletes every image of a section
func (db *DB) DeleteImagesForSection(ctx context.Context, jobID, sectionID string) error {
	_, err := db.pool.Exec(ctx,
		`DELETE FROM images WHERE job_id = $1 AND section_id = $2`,
		jobID, sectionID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete section images: %w", err)
	}
	return nil
}
