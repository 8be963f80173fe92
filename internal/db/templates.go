package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/inspection-reports/internal/store"
	"github.com/jonathan/inspection-reports/internal/types"
)

// GetTemplateByID retrieves a template document. Returns nil when it does
// not exist.
func (db *DB) GetTemplateByID(ctx context.Context, id string) (*types.TemplateDocument, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM templates WHERE id = $1`,
		id,
	).Scan(&content)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	var t types.TemplateDocument
	if err := json.Unmarshal(content, &t); err != nil {
		return nil, fmt.Errorf("failed to decode template %s: %w", id, err)
	}
	return &t, nil
}

// UpdateTemplate inserts or replaces a template document
func (db *DB) UpdateTemplate(ctx context.Context, template *types.TemplateDocument) error {
	content, err := json.Marshal(template)
	if err != nil {
		return fmt.Errorf("failed to marshal template: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO templates (id, name, content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET name = $2, content = $3, updated_at = NOW()`,
		template.ID, template.Name, content,
	)
	if err != nil {
		return fmt.Errorf("failed to update template %s: %w", template.ID, err)
	}
	return nil
}

// ListTemplates retrieves every template ordered by name
func (db *DB) ListTemplates(ctx context.Context) ([]store.TemplateSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, name FROM templates ORDER BY name, id`,
	)
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
