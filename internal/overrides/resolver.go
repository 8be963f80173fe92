package overrides

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonathan/inspection-reports/internal/jobdata"
	"github.com/jonathan/inspection-reports/internal/store"
	"github.com/jonathan/inspection-reports/internal/types"
)

// TemplateNotFoundError is returned when template content is edited for a
// template that does not exist.
type TemplateNotFoundError struct {
	TemplateID string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("template %s not found", e.TemplateID)
}

// Resolver reads and writes the two CustomContent levels.
type Resolver struct {
	templates store.TemplateStore
	editor    *jobdata.Editor
	logger    *slog.Logger
}

// NewResolver creates a resolver. A nil logger uses slog.Default().
func NewResolver(templates store.TemplateStore, editor *jobdata.Editor, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{templates: templates, editor: editor, logger: logger}
}

// Effective returns the content a report for the job should use. A missing
// job or template resolves to the next level down.
func (r *Resolver) Effective(ctx context.Context, jobID string) (types.CustomContent, error) {
	job, doc, err := r.editor.Load(ctx, jobID)
	if err != nil {
		return types.CustomContent{}, err
	}
	var templateDefault *types.CustomContent
	if job != nil {
		templateDefault, err = r.TemplateContent(ctx, job.TemplateID)
		if err != nil {
			return types.CustomContent{}, err
		}
	}
	return r.resolve(jobID, templateDefault, doc.CustomContentOverride()), nil
}

// ResolveFor resolves against an already loaded template and document.
func (r *Resolver) ResolveFor(jobID string, template *types.TemplateDocument, doc *jobdata.Document) types.CustomContent {
	var templateDefault *types.CustomContent
	if template != nil {
		templateDefault = template.CustomContent
	}
	return r.resolve(jobID, templateDefault, doc.CustomContentOverride())
}

func (r *Resolver) resolve(jobID string, templateDefault *types.CustomContent, blob string) types.CustomContent {
	if strings.TrimSpace(blob) != "" {
		if _, ok := ParseOverride(blob); !ok {
			r.logger.Debug("ignoring unreadable custom content override",
				slog.String("job_id", jobID))
		}
	}
	return Resolve(templateDefault, blob)
}

// HasOverride reports whether the job carries a readable override.
func (r *Resolver) HasOverride(ctx context.Context, jobID string) (bool, error) {
	_, doc, err := r.editor.Load(ctx, jobID)
	if err != nil {
		return false, err
	}
	_, ok := ParseOverride(doc.CustomContentOverride())
	return ok, nil
}

// SaveOverride stores content as the job's override.
func (r *Resolver) SaveOverride(ctx context.Context, jobID string, cc types.CustomContent) error {
	blob, err := EncodeOverride(cc)
	if err != nil {
		return fmt.Errorf("failed to encode override: %w", err)
	}
	_, err = r.editor.Update(ctx, jobID, func(doc *jobdata.Document) bool {
		doc.SetCustomContentOverride(blob)
		return true
	})
	return err
}

// ResetToDefault removes the job's override so the template default applies
// again. Resetting a job without an override is a no-op.
func (r *Resolver) ResetToDefault(ctx context.Context, jobID string) error {
	_, err := r.editor.Update(ctx, jobID, func(doc *jobdata.Document) bool {
		if _, ok := doc.Lookup(jobdata.MetaSection, jobdata.OverrideField); !ok {
			return false
		}
		doc.ClearCustomContentOverride()
		return true
	})
	return err
}

// TemplateContent returns the template's default content, nil when the
// template or its content is absent.
func (r *Resolver) TemplateContent(ctx context.Context, templateID string) (*types.CustomContent, error) {
	template, err := r.templates.GetTemplateByID(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load template %s: %w", templateID, err)
	}
	if template == nil {
		return nil, nil
	}
	return template.CustomContent, nil
}

// UpdateTemplateContent replaces a template's default content. It is the
// only mutation allowed on a stored template.
func (r *Resolver) UpdateTemplateContent(ctx context.Context, templateID string, cc types.CustomContent) error {
	template, err := r.templates.GetTemplateByID(ctx, templateID)
	if err != nil {
		return fmt.Errorf("failed to load template %s: %w", templateID, err)
	}
	if template == nil {
		return &TemplateNotFoundError{TemplateID: templateID}
	}
	content := cc.Clone()
	template.CustomContent = &content
	if err := r.templates.UpdateTemplate(ctx, template); err != nil {
		return fmt.Errorf("failed to save template %s: %w", templateID, err)
	}
	return nil
}
