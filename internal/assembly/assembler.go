package assembly

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jonathan/inspection-reports/internal/jobdata"
	"github.com/jonathan/inspection-reports/internal/overrides"
	"github.com/jonathan/inspection-reports/internal/store"
	"github.com/jonathan/inspection-reports/internal/types"
)

// Sources are the stores a report is read from.
type Sources interface {
	store.JobStore
	store.TemplateStore
	store.ImageStore
}

// Options configures an Assembler.
type Options struct {
	// Locale controls number grouping and decimal marks. Defaults to Hebrew.
	Locale language.Tag
	// DateLayout formats date fields. Defaults to "02/01/2006".
	DateLayout string
	Labels     Labels
	Logger     *slog.Logger
}

// Assembler builds reports. It reads a snapshot of the job and holds no
// locks, so it is safe for concurrent use.
type Assembler struct {
	sources    Sources
	locale     language.Tag
	dateLayout string
	labels     Labels
	logger     *slog.Logger
}

// New creates an Assembler.
func New(sources Sources, opts Options) *Assembler {
	a := &Assembler{
		sources:    sources,
		locale:     opts.Locale,
		dateLayout: opts.DateLayout,
		labels:     opts.Labels.withDefaults(),
		logger:     opts.Logger,
	}
	if a.locale == language.Und {
		a.locale = language.Hebrew
	}
	if a.dateLayout == "" {
		a.dateLayout = "02/01/2006"
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

type snapshot struct {
	job      *types.Job
	template *types.TemplateDocument
	images   []types.Image
}

// load reads the job, its template and its images. The job and template
// are loaded on one branch and the images on another.
func (a *Assembler) load(ctx context.Context, jobID string) (*snapshot, error) {
	g, gCtx := errgroup.WithContext(ctx)
	snap := &snapshot{}

	g.Go(func() error {
		job, err := a.sources.GetJob(gCtx, jobID)
		if err != nil {
			return fmt.Errorf("failed to load job %s: %w", jobID, err)
		}
		if job == nil {
			return fmt.Errorf("%w: job %s not found", ErrNoReport, jobID)
		}
		template, err := a.sources.GetTemplateByID(gCtx, job.TemplateID)
		if err != nil {
			return fmt.Errorf("failed to load template %s: %w", job.TemplateID, err)
		}
		if template == nil {
			return fmt.Errorf("%w: template %s not found", ErrNoReport, job.TemplateID)
		}
		snap.job, snap.template = job, template
		return nil
	})

	g.Go(func() error {
		images, err := a.sources.GetImagesForJob(gCtx, jobID)
		if err != nil {
			return fmt.Errorf("failed to load images of job %s: %w", jobID, err)
		}
		snap.images = images
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Assemble produces the report of one job. It fails only when the job or
// template is missing (ErrNoReport), a store fails, or ctx is cancelled;
// every other problem is recorded in Report.Skipped.
func (a *Assembler) Assemble(ctx context.Context, jobID string) (*Report, error) {
	snap, err := a.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := a.newBuilder(snap)

	doc, err := jobdata.Parse(snap.job.Data)
	if err != nil {
		a.logger.Warn("job document is corrupt, assembling without data",
			slog.String("job_id", jobID), slog.Any("error", err))
		b.skip("", "", "job document is corrupt")
		doc = jobdata.New()
	}
	b.doc = doc

	blob := doc.CustomContentOverride()
	if _, ok := overrides.ParseOverride(blob); !ok && blob != "" {
		a.logger.Debug("ignoring unreadable custom content override", slog.String("job_id", jobID))
	}
	b.content = overrides.Resolve(snap.template.CustomContent, blob)

	b.header()
	for _, section := range snap.template.OrderedSections() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b.section(section)
	}
	b.footer()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.logger.Debug("report assembled",
		slog.String("job_id", jobID),
		slog.Int("instructions", len(b.report.Instructions)),
		slog.Int("skipped", len(b.report.Skipped)))
	return b.report, nil
}

func (a *Assembler) newBuilder(snap *snapshot) *builder {
	title := snap.job.Title
	if title == "" {
		title = snap.template.Name
	}
	imagesBySection := make(map[string][]types.Image)
	for _, img := range snap.images {
		imagesBySection[img.SectionID] = append(imagesBySection[img.SectionID], img)
	}
	for _, imgs := range imagesBySection {
		sort.SliceStable(imgs, func(i, j int) bool { return imgs[i].Order < imgs[j].Order })
	}
	return &builder{
		job:        snap.job,
		template:   snap.template,
		images:     imagesBySection,
		rtl:        snap.template.RightToLeft(),
		labels:     a.labels,
		dateLayout: a.dateLayout,
		printer:    message.NewPrinter(a.locale),
		logger:     a.logger,
		report: &Report{
			JobID:        snap.job.ID,
			TemplateID:   snap.template.ID,
			Title:        title,
			RightToLeft:  snap.template.RightToLeft(),
			Layout:       snap.template.Layout,
			Instructions: []Instruction{},
		},
	}
}
