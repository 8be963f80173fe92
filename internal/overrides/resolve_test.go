package overrides

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/jonathan/inspection-reports/internal/jobdata"
	"github.com/jonathan/inspection-reports/internal/store"
	"github.com/jonathan/inspection-reports/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Cascade(t *testing.T) {
	templateDefault := &types.CustomContent{InspectorName: "A"}

	tests := []struct {
		name     string
		def      *types.CustomContent
		blob     string
		expected string
	}{
		{"override wins", templateDefault, `{"inspector_name":"B"}`, "B"},
		{"no override", templateDefault, "", "A"},
		{"malformed override", templateDefault, `{"inspector_name":`, "A"},
		{"override of wrong shape", templateDefault, `["B"]`, "A"},
		{"null override", templateDefault, "null", "A"},
		{"nothing at all", nil, "", ""},
		{"override without template", nil, `{"inspector_name":"B"}`, "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.def, tt.blob).InspectorName)
		})
	}
}

func TestResolve_OverrideReplacesWholeObject(t *testing.T) {
	def := &types.CustomContent{InspectorName: "A", Disclaimer: "default disclaimer"}

	got := Resolve(def, `{"inspector_name":"B"}`)
	assert.Equal(t, "B", got.InspectorName)
	assert.Equal(t, "", got.Disclaimer)
}

func TestResolve_DefaultIsCopied(t *testing.T) {
	def := &types.CustomContent{SectionTexts: map[string][]types.BoilerplateItem{"roof": {{Text: "x"}}}}

	got := Resolve(def, "")
	got.SectionTexts["roof"][0].Text = "changed"
	assert.Equal(t, "x", def.SectionTexts["roof"][0].Text)
}

type fixture struct {
	mem      *store.Memory
	resolver *Resolver
	logs     *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.UpdateTemplate(ctx, &types.TemplateDocument{
		ID: "tpl", Name: "Home", Version: 1,
		CustomContent: &types.CustomContent{InspectorName: "A"},
	}))
	require.NoError(t, mem.UpdateJob(ctx, &types.Job{ID: "job", TemplateID: "tpl"}))

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	editor := jobdata.NewEditor(mem, mem, jobdata.WithLogger(logger))
	return &fixture{mem: mem, resolver: NewResolver(mem, editor, logger), logs: logs}
}

func TestResolver_OverrideSaveAndReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cc, err := f.resolver.Effective(ctx, "job")
	require.NoError(t, err)
	assert.Equal(t, "A", cc.InspectorName)

	require.NoError(t, f.resolver.SaveOverride(ctx, "job", types.CustomContent{InspectorName: "B"}))
	cc, err = f.resolver.Effective(ctx, "job")
	require.NoError(t, err)
	assert.Equal(t, "B", cc.InspectorName)

	has, err := f.resolver.HasOverride(ctx, "job")
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, f.resolver.ResetToDefault(ctx, "job"))
	cc, err = f.resolver.Effective(ctx, "job")
	require.NoError(t, err)
	assert.Equal(t, "A", cc.InspectorName)

	job, _ := f.mem.GetJob(ctx, "job")
	assert.NotContains(t, job.Data, jobdata.OverrideField, "reset leaves no tombstone")
}

func TestResolver_MalformedOverrideFallsBackQuietly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	doc := jobdata.New()
	doc.SetCustomContentOverride(`{"inspector_name":`)
	blob, err := doc.Marshal()
	require.NoError(t, err)
	require.NoError(t, f.mem.UpdateJob(ctx, &types.Job{ID: "job", TemplateID: "tpl", Data: blob}))

	cc, err := f.resolver.Effective(ctx, "job")
	require.NoError(t, err)
	assert.Equal(t, "A", cc.InspectorName)
	assert.Contains(t, f.logs.String(), "unreadable custom content override")

	has, err := f.resolver.HasOverride(ctx, "job")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestResolver_MissingJobAndTemplate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cc, err := f.resolver.Effective(ctx, "no-such-job")
	require.NoError(t, err)
	assert.True(t, cc.IsEmpty())

	require.NoError(t, f.mem.UpdateJob(ctx, &types.Job{ID: "orphan", TemplateID: "gone"}))
	cc, err = f.resolver.Effective(ctx, "orphan")
	require.NoError(t, err)
	assert.True(t, cc.IsEmpty())

	err = f.resolver.SaveOverride(ctx, "no-such-job", types.CustomContent{})
	var notFound *jobdata.JobNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestResolver_UpdateTemplateContent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.resolver.UpdateTemplateContent(ctx, "tpl", types.CustomContent{InspectorName: "C"}))

	cc, err := f.resolver.Effective(ctx, "job")
	require.NoError(t, err)
	assert.Equal(t, "C", cc.InspectorName)

	template, _ := f.mem.GetTemplateByID(ctx, "tpl")
	assert.Equal(t, "Home", template.Name, "schema is untouched")

	err = f.resolver.UpdateTemplateContent(ctx, "missing", types.CustomContent{})
	var notFound *TemplateNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestResolver_ResetWithoutOverrideIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.resolver.ResetToDefault(ctx, "job"))
	job, _ := f.mem.GetJob(ctx, "job")
	assert.Equal(t, "", job.Data)
}
