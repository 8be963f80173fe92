// Package store declares the persistence collaborators of the report core
// and provides an in-memory implementation.
//
// Lookups of missing records return (nil, nil), matching the Postgres and
// SQLite implementations.
package store

import (
	"context"
	"time"

	"github.com/jonathan/inspection-reports/internal/types"
)

// JobStore persists jobs and their serialized document blobs.
type JobStore interface {
	GetJob(ctx context.Context, id string) (*types.Job, error)
	UpdateJob(ctx context.Context, job *types.Job) error
	DeleteJob(ctx context.Context, id string) error
	ListJobs(ctx context.Context, filters JobFilters) ([]JobSummary, error)
}

// TemplateStore persists template documents.
type TemplateStore interface {
	GetTemplateByID(ctx context.Context, id string) (*types.TemplateDocument, error)
	UpdateTemplate(ctx context.Context, template *types.TemplateDocument) error
	ListTemplates(ctx context.Context) ([]TemplateSummary, error)
}

// ImageStore persists image records. Image files themselves are managed by
// the host application.
type ImageStore interface {
	GetImagesForJob(ctx context.Context, jobID string) ([]types.Image, error)
	GetImagesForSection(ctx context.Context, jobID, sectionID string) ([]types.Image, error)
	AddImage(ctx context.Context, image *types.Image) error
	DeleteImagesForSection(ctx context.Context, jobID, sectionID string) error
}

// Stores bundles the three collaborators.
type Stores interface {
	JobStore
	TemplateStore
	ImageStore
}

// DefaultListLimit caps ListJobs when JobFilters.Limit is not positive.
const DefaultListLimit = 50

// JobFilters holds optional filters for listing jobs
type JobFilters struct {
	TemplateID string
	// Search matches title or client name, case-insensitively.
	Search string
	Limit  int
}

// JobSummary is a lightweight view of a job for listing
type JobSummary struct {
	ID           string    `json:"id"`
	TemplateID   string    `json:"template_id"`
	Title        string    `json:"title"`
	ClientName   string    `json:"client_name,omitempty"`
	DateModified time.Time `json:"date_modified"`
}

// TemplateSummary is a lightweight view of a template for listing
type TemplateSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
