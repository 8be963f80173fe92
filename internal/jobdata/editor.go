package jobdata

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonathan/inspection-reports/internal/store"
	"github.com/jonathan/inspection-reports/internal/types"
)

// Editor applies document mutations to stored jobs. Writes to one job are
// serialized through a per-job lock and bump the job's DateModified; reads
// take no lock.
type Editor struct {
	jobs   store.JobStore
	images store.ImageStore
	now    func() time.Time
	logger *slog.Logger

	locks sync.Map // job id -> *sync.Mutex
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithClock overrides the time source used for DateModified.
func WithClock(now func() time.Time) EditorOption {
	return func(e *Editor) { e.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) EditorOption {
	return func(e *Editor) { e.logger = logger }
}

// NewEditor creates an editor. images may be nil when image cascades are
// handled elsewhere.
func NewEditor(jobs store.JobStore, images store.ImageStore, opts ...EditorOption) *Editor {
	e := &Editor{
		jobs:   jobs,
		images: images,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load returns the job and its document. A corrupt blob yields an empty
// document so readers never fail on it. The job is nil when it does not
// exist.
func (e *Editor) Load(ctx context.Context, jobID string) (*types.Job, *Document, error) {
	job, err := e.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load job %s: %w", jobID, err)
	}
	if job == nil {
		return nil, New(), nil
	}
	doc, err := Parse(job.Data)
	if err != nil {
		e.logger.Warn("job document is corrupt, reading as empty",
			slog.String("job_id", jobID), slog.Any("error", err))
		return job, New(), nil
	}
	return job, doc, nil
}

// Get returns a single value, "" when the job, section or field is absent.
func (e *Editor) Get(ctx context.Context, jobID, sectionID, fieldID string) (string, error) {
	_, doc, err := e.Load(ctx, jobID)
	if err != nil {
		return "", err
	}
	return doc.Get(sectionID, fieldID), nil
}

// Update runs fn against the job's document under the job's lock. When fn
// reports a change, the document is saved and DateModified is bumped.
func (e *Editor) Update(ctx context.Context, jobID string, fn func(doc *Document) bool) (bool, error) {
	unlock := e.lock(jobID)
	defer unlock()

	job, err := e.jobs.GetJob(ctx, jobID)
	if err != nil {
		return false, fmt.Errorf("failed to load job %s: %w", jobID, err)
	}
	if job == nil {
		e.locks.Delete(jobID)
		return false, &JobNotFoundError{JobID: jobID}
	}

	doc, err := Parse(job.Data)
	if err != nil {
		return false, err
	}

	if !fn(doc) {
		return false, nil
	}

	blob, err := doc.Marshal()
	if err != nil {
		return false, err
	}
	job.Data = blob
	job.DateModified = e.now()

	if err := e.jobs.UpdateJob(ctx, job); err != nil {
		return false, fmt.Errorf("failed to save job %s: %w", jobID, err)
	}
	return true, nil
}

// Set stores one value.
func (e *Editor) Set(ctx context.Context, jobID, sectionID, fieldID, value string) error {
	_, err := e.Update(ctx, jobID, func(doc *Document) bool {
		doc.Set(sectionID, fieldID, value)
		return true
	})
	return err
}

// Delete removes one value.
func (e *Editor) Delete(ctx context.Context, jobID, sectionID, fieldID string) error {
	_, err := e.Update(ctx, jobID, func(doc *Document) bool {
		if _, ok := doc.Lookup(sectionID, fieldID); !ok {
			return false
		}
		doc.Delete(sectionID, fieldID)
		return true
	})
	return err
}

// DeleteCategory removes a category, its findings and the findings' images.
func (e *Editor) DeleteCategory(ctx context.Context, jobID, categoryID string) (bool, error) {
	var removed []string
	changed, err := e.Update(ctx, jobID, func(doc *Document) bool {
		var ok bool
		removed, ok = doc.DeleteCategory(categoryID)
		return ok
	})
	if err != nil || !changed {
		return changed, err
	}
	return true, e.deleteImages(ctx, jobID, removed...)
}

// DeleteFinding removes a finding and its images.
func (e *Editor) DeleteFinding(ctx context.Context, jobID, categoryID, findingID string) (bool, error) {
	changed, err := e.Update(ctx, jobID, func(doc *Document) bool {
		return doc.DeleteFindingFromCategory(categoryID, findingID)
	})
	if err != nil || !changed {
		return changed, err
	}
	return true, e.deleteImages(ctx, jobID, findingID)
}

func (e *Editor) deleteImages(ctx context.Context, jobID string, findingIDs ...string) error {
	if e.images == nil {
		return nil
	}
	for _, id := range findingIDs {
		if err := e.images.DeleteImagesForSection(ctx, jobID, id); err != nil {
			return fmt.Errorf("failed to delete images of finding %s: %w", id, err)
		}
	}
	return nil
}

// DeleteJob removes a job through the job store and drops its lock. Locks
// are only kept for jobs that exist.
func (e *Editor) DeleteJob(ctx context.Context, jobID string) error {
	unlock := e.lock(jobID)
	defer unlock()

	if err := e.jobs.DeleteJob(ctx, jobID); err != nil {
		return fmt.Errorf("failed to delete job %s: %w", jobID, err)
	}
	e.locks.Delete(jobID)
	return nil
}

// lock acquires the job's mutex and returns its unlock. A waiter that wakes
// on a mutex DeleteJob already dropped retries on the current one.
func (e *Editor) lock(jobID string) func() {
	for {
		v, _ := e.locks.LoadOrStore(jobID, &sync.Mutex{})
		mu := v.(*sync.Mutex)
		mu.Lock()
		if cur, ok := e.locks.Load(jobID); ok && cur == mu {
			return mu.Unlock
		}
		mu.Unlock()
	}
}

func (e *Editor) lockCount() int {
	n := 0
	e.locks.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
