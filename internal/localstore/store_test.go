package localstore

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/inspection-reports/internal/jobdata"
	"github.com/jonathan/inspection-reports/internal/store"
	"github.com/jonathan/inspection-reports/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestJobRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 5, 10, 30, 0, 123_000_000, time.UTC)

	job := &types.Job{
		ID: "job-1", TemplateID: "tpl", Title: "Flat 4", ClientName: "Dana",
		Data: `{"values":{"area":"80"}}`, DateCreated: now, DateModified: now,
	}
	require.NoError(t, s.UpdateJob(ctx, job))

	got, err := s.GetJob(ctx, "job-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *job, *got)

	job.Data = `{}`
	job.DateModified = now.Add(time.Hour)
	require.NoError(t, s.UpdateJob(ctx, job))
	got, err = s.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, `{}`, got.Data)
	assert.Equal(t, now.Add(time.Hour), got.DateModified)
	assert.Equal(t, now, got.DateCreated)
}

func TestGetJob_Missing(t *testing.T) {
	s := openTestStore(t)
	got, err := s.GetJob(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListJobs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, job := range []types.Job{
		{ID: "a", TemplateID: "home", Title: "Villa", ClientName: "Dana"},
		{ID: "b", TemplateID: "home", Title: "Flat", ClientName: "Noa"},
		{ID: "c", TemplateID: "office", Title: "Dana's office"},
	} {
		job.DateCreated = base
		job.DateModified = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, s.UpdateJob(ctx, &job))
	}

	tests := []struct {
		name    string
		filters store.JobFilters
		want    []string
	}{
		{"all newest first", store.JobFilters{}, []string{"c", "b", "a"}},
		{"by template", store.JobFilters{TemplateID: "home"}, []string{"b", "a"}},
		{"search title or client", store.JobFilters{Search: "dana"}, []string{"c", "a"}},
		{"limit", store.JobFilters{Limit: 2}, []string{"c", "b"}},
		{"no match", store.JobFilters{Search: "castle"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs, err := s.ListJobs(ctx, tt.filters)
			require.NoError(t, err)
			ids := make([]string, 0, len(jobs))
			for _, j := range jobs {
				ids = append(ids, j.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	jobs, err := s.ListJobs(ctx, store.JobFilters{TemplateID: "office"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, base.Add(2*time.Hour), jobs[0].DateModified)
}

func TestBuildJobListQuery(t *testing.T) {
	query, args := buildJobListQuery(store.JobFilters{TemplateID: "home", Search: "Dana"})
	assert.Contains(t, query, "template_id = ?")
	assert.Contains(t, query, "title LIKE ? OR client_name LIKE ?")
	assert.Equal(t, []any{"home", "%Dana%", "%Dana%", store.DefaultListLimit}, args)
}

func TestTemplateRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	tpl := &types.TemplateDocument{
		ID: "tpl", Name: "Apartment", Version: 2,
		Sections: []types.Section{{ID: "general", Title: "General"}},
	}
	require.NoError(t, s.UpdateTemplate(ctx, tpl))

	got, err := s.GetTemplateByID(ctx, "tpl")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, "general", got.Sections[0].ID)

	missing, err := s.GetTemplateByID(ctx, "other")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, s.UpdateTemplate(ctx, &types.TemplateDocument{ID: "aaa", Name: "Villa", Version: 1}))
	summaries, err := s.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []store.TemplateSummary{{ID: "tpl", Name: "Apartment"}, {ID: "aaa", Name: "Villa"}}, summaries)
}

func TestImages_OrderAndCascade(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpdateJob(ctx, &types.Job{ID: "job-1", TemplateID: "tpl"}))

	for _, img := range []types.Image{
		{JobID: "job-1", SectionID: "roof", FilePath: "b.jpg", Order: 2},
		{JobID: "job-1", SectionID: "roof", FilePath: "a.jpg", Order: 1},
		{JobID: "job-1", SectionID: "kitchen", FilePath: "c.jpg", Order: 0},
	} {
		img := img
		require.NoError(t, s.AddImage(ctx, &img))
		assert.NotEmpty(t, img.ID)
	}

	roof, err := s.GetImagesForSection(ctx, "job-1", "roof")
	require.NoError(t, err)
	require.Len(t, roof, 2)
	assert.Equal(t, "a.jpg", roof[0].FilePath)

	all, err := s.GetImagesForJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"kitchen", "roof", "roof"},
		[]string{all[0].SectionID, all[1].SectionID, all[2].SectionID})

	require.NoError(t, s.DeleteImagesForSection(ctx, "job-1", "roof"))
	all, err = s.GetImagesForJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, s.DeleteJob(ctx, "job-1"))
	all, err = s.GetImagesForJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAddImage_RequiresJob(t *testing.T) {
	s := openTestStore(t)
	err := s.AddImage(context.Background(), &types.Image{JobID: "ghost", SectionID: "x", FilePath: "p"})
	assert.Error(t, err)
}

func TestEditorOverSQLite(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpdateJob(ctx, &types.Job{ID: "job-1", TemplateID: "tpl"}))

	editor := jobdata.NewEditor(s, s)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := editor.Update(ctx, "job-1", func(doc *jobdata.Document) bool {
				_, err := jobdata.InvoiceItems(doc, "invoice").Add(jobdata.LineItem{
					Description: "Sealant", Quantity: "1", UnitPrice: "10",
				})
				return err == nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	_, doc, err := editor.Load(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, 10, jobdata.InvoiceItems(doc, "invoice").Count())
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.UpdateJob(context.Background(), &types.Job{ID: "job-1", TemplateID: "tpl"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.GetJob(context.Background(), "job-1")
	require.NoError(t, err)
	require.NotNil(t, got)
}
