package jobdata

import (
	"testing"

	"github.com/jonathan/inspection-reports/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func categoryTitles(doc *Document) []string {
	var titles []string
	for _, c := range doc.Categories() {
		titles = append(titles, c.Title)
	}
	return titles
}

func TestCategories_AddAndMove(t *testing.T) {
	doc := New()
	a := doc.AddCategory("A")
	b := doc.AddCategory("B")
	c := doc.AddCategory("C")

	assert.True(t, doc.MoveCategoryDown(a))
	assert.Equal(t, []string{"B", "A", "C"}, categoryTitles(doc))

	assert.True(t, doc.MoveCategoryUp(c))
	assert.Equal(t, []string{"B", "C", "A"}, categoryTitles(doc))

	for i, cat := range doc.Categories() {
		assert.Equal(t, i, cat.Order)
	}

	// clamped at both ends
	assert.False(t, doc.MoveCategoryUp(b))
	assert.False(t, doc.MoveCategoryDown(a))
	assert.Equal(t, []string{"B", "C", "A"}, categoryTitles(doc))

	assert.False(t, doc.MoveCategoryUp("missing"))
}

func TestCategories_NewEntriesAreExpanded(t *testing.T) {
	doc := New()
	id := doc.AddCategory("A")
	assert.True(t, doc.IsExpanded(id))

	doc.SetExpanded(id, false)
	assert.False(t, doc.IsExpanded(id))

	blob, err := doc.Marshal()
	require.NoError(t, err)
	reloaded, err := Parse(blob)
	require.NoError(t, err)
	assert.True(t, reloaded.IsExpanded(id), "presentation state is not persisted")
}

func TestFindings_AddMoveDelete(t *testing.T) {
	doc := New()
	cat := doc.AddCategory("Walls")
	f1, ok := doc.AddFindingToCategory(cat, "one")
	require.True(t, ok)
	f2, _ := doc.AddFindingToCategory(cat, "two")
	f3, _ := doc.AddFindingToCategory(cat, "three")

	assert.True(t, doc.MoveFindingInCategory(cat, f3, -1))
	assert.False(t, doc.MoveFindingInCategory(cat, f1, -1))
	assert.False(t, doc.MoveFindingInCategory(cat, f2, 1))
	assert.False(t, doc.MoveFindingInCategory(cat, f1, 2))

	findings := doc.Categories()[0].Findings
	require.Len(t, findings, 3)
	assert.Equal(t, []string{f1, f3, f2}, []string{findings[0].ID, findings[1].ID, findings[2].ID})

	assert.True(t, doc.DeleteFindingFromCategory(cat, f3))
	assert.False(t, doc.DeleteFindingFromCategory(cat, f3))
	assert.Equal(t, []string{f1, f2}, doc.FindingIDs())

	_, ok = doc.AddFindingToCategory("missing", "x")
	assert.False(t, ok)
}

func TestFindings_UpdateField(t *testing.T) {
	doc := New()
	cat := doc.AddCategory("Roof")
	id, _ := doc.AddFindingToCategory(cat, "")

	assert.True(t, doc.UpdateFindingField(id, FindingSubject, "Leak"))
	assert.True(t, doc.UpdateFindingField(id, FindingDescription, "Water stain near chimney"))
	assert.True(t, doc.UpdateFindingField(id, FindingNote, "Photo 3"))
	assert.False(t, doc.UpdateFindingField(id, FindingField("color"), "red"))
	assert.False(t, doc.UpdateFindingField("missing", FindingSubject, "x"))

	f, catID, ok := doc.Finding(id)
	require.True(t, ok)
	assert.Equal(t, cat, catID)
	assert.Equal(t, "Leak", f.Subject)
	assert.Equal(t, "Water stain near chimney", f.Description)
	assert.Equal(t, "Photo 3", f.Note)
}

func TestCategories_DeleteCascadesFindings(t *testing.T) {
	doc := New()
	keep := doc.AddCategory("keep")
	drop := doc.AddCategory("drop")
	kept, _ := doc.AddFindingToCategory(keep, "kept")
	a, _ := doc.AddFindingToCategory(drop, "a")
	b, _ := doc.AddFindingToCategory(drop, "b")
	_, _ = doc.AddRecommendation(a, "fix a")
	_, _ = doc.AddRecommendation(b, "fix b")

	removed, ok := doc.DeleteCategory(drop)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{a, b}, removed)
	assert.Equal(t, []string{kept}, doc.FindingIDs())
	assert.Equal(t, 0, doc.Categories()[0].Order)

	_, ok = doc.DeleteCategory(drop)
	assert.False(t, ok)
}

func TestCategories_ReturnsCopies(t *testing.T) {
	doc := New()
	cat := doc.AddCategory("A")
	id, _ := doc.AddFindingToCategory(cat, "orig")

	categories := doc.Categories()
	categories[0].Findings[0].Subject = "mutated"

	f, _, _ := doc.Finding(id)
	assert.Equal(t, "orig", f.Subject)
}

func TestMigrateLegacyFindings(t *testing.T) {
	doc := New()
	assert.False(t, doc.CanMigrateLegacyFindings())

	first := doc.AddLegacyFinding(types.Finding{Subject: "first"})
	second := doc.AddLegacyFinding(types.Finding{ID: "given", Subject: "second"})
	assert.Equal(t, "given", second)
	require.True(t, doc.CanMigrateLegacyFindings())

	catID, ok := doc.MigrateLegacyFindings("")
	require.True(t, ok)

	categories := doc.Categories()
	require.Len(t, categories, 1)
	assert.Equal(t, catID, categories[0].ID)
	assert.Equal(t, DefaultLegacyCategoryTitle, categories[0].Title)
	require.Len(t, categories[0].Findings, 2)
	assert.Equal(t, first, categories[0].Findings[0].ID)
	assert.Equal(t, "second", categories[0].Findings[1].Subject)
	assert.Empty(t, doc.LegacyFindings())

	_, ok = doc.MigrateLegacyFindings("again")
	assert.False(t, ok)
}

func TestMigrateLegacyFindings_NotOfferedWhenCategoriesExist(t *testing.T) {
	doc := New()
	doc.AddLegacyFinding(types.Finding{Subject: "old"})
	doc.AddCategory("new")

	assert.False(t, doc.CanMigrateLegacyFindings())
	_, ok := doc.MigrateLegacyFindings("x")
	assert.False(t, ok)
	assert.Len(t, doc.LegacyFindings(), 1)
}
