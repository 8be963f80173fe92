package store

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonathan/inspection-reports/internal/types"
)

// Memory is a concurrency-safe in-memory Stores implementation. Values are
// copied in and out so callers never share state with the store.
type Memory struct {
	mu        sync.RWMutex
	jobs      map[string]types.Job
	templates map[string][]byte
	images    map[string][]types.Image // by job id
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		jobs:      make(map[string]types.Job),
		templates: make(map[string][]byte),
		images:    make(map[string][]types.Image),
	}
}

// GetJob returns a copy of the job or nil if absent.
func (m *Memory) GetJob(_ context.Context, id string) (*types.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, nil
	}
	return &job, nil
}

// UpdateJob inserts or replaces a job.
func (m *Memory) UpdateJob(_ context.Context, job *types.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = *job
	return nil
}

// DeleteJob removes a job and its images.
func (m *Memory) DeleteJob(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, id)
	delete(m.images, id)
	return nil
}

// ListJobs returns matching jobs, most recently modified first.
func (m *Memory) ListJobs(_ context.Context, filters JobFilters) ([]JobSummary, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	search := strings.ToLower(filters.Search)

	m.mu.RLock()
	jobs := make([]JobSummary, 0, len(m.jobs))
	for _, job := range m.jobs {
		if filters.TemplateID != "" && job.TemplateID != filters.TemplateID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(job.Title), search) &&
			!strings.Contains(strings.ToLower(job.ClientName), search) {
			continue
		}
		jobs = append(jobs, JobSummary{
			ID:           job.ID,
			TemplateID:   job.TemplateID,
			Title:        job.Title,
			ClientName:   job.ClientName,
			DateModified: job.DateModified,
		})
	}
	m.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool {
		if !jobs[i].DateModified.Equal(jobs[j].DateModified) {
			return jobs[i].DateModified.After(jobs[j].DateModified)
		}
		return jobs[i].ID < jobs[j].ID
	})
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

// GetTemplateByID returns a copy of the template or nil if absent.
func (m *Memory) GetTemplateByID(_ context.Context, id string) (*types.TemplateDocument, error) {
	m.mu.RLock()
	data, ok := m.templates[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var t types.TemplateDocument
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTemplate inserts or replaces a template.
func (m *Memory) UpdateTemplate(_ context.Context, template *types.TemplateDocument) error {
	data, err := json.Marshal(template)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[template.ID] = data
	return nil
}

// ListTemplates returns every template ordered by name.
func (m *Memory) ListTemplates(_ context.Context) ([]TemplateSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	templates := make([]TemplateSummary, 0, len(m.templates))
	for id, data := range m.templates {
		var header struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &header); err != nil {
			return nil, err
		}
		templates = append(templates, TemplateSummary{ID: id, Name: header.Name})
	}
	sort.Slice(templates, func(i, j int) bool {
		if templates[i].Name != templates[j].Name {
			return templates[i].Name < templates[j].Name
		}
		return templates[i].ID < templates[j].ID
	})
	return templates, nil
}

// GetImagesForJob returns the job's images ordered by section and order.
func (m *Memory) GetImagesForJob(_ context.Context, jobID string) ([]types.Image, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	images := make([]types.Image, len(m.images[jobID]))
	copy(images, m.images[jobID])
	sort.SliceStable(images, func(i, j int) bool {
		if images[i].SectionID != images[j].SectionID {
			return images[i].SectionID < images[j].SectionID
		}
		return images[i].Order < images[j].Order
	})
	return images, nil
}

// GetImagesForSection returns the images of one section ordered by order.
func (m *Memory) GetImagesForSection(ctx context.Context, jobID, sectionID string) ([]types.Image, error) {
	all, err := m.GetImagesForJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	images := make([]types.Image, 0)
	for _, img := range all {
		if img.SectionID == sectionID {
			images = append(images, img)
		}
	}
	return images, nil
}

// AddImage stores an image record, assigning an id when empty.
func (m *Memory) AddImage(_ context.Context, image *types.Image) error {
	if image.ID == "" {
		image.ID = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[image.JobID] = append(m.images[image.JobID], *image)
	return nil
}

// DeleteImagesForSection removes every image of a section.
func (m *Memory) DeleteImagesForSection(_ context.Context, jobID, sectionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.images[jobID][:0]
	for _, img := range m.images[jobID] {
		if img.SectionID != sectionID {
			kept = append(kept, img)
		}
	}
	m.images[jobID] = kept
	return nil
}
