package jobdata

import (
	"github.com/google/uuid"
	"github.com/jonathan/inspection-reports/internal/types"
)

// FindingField names an editable text attribute of a finding.
type FindingField string

const (
	FindingSubject     FindingField = "subject"
	FindingDescription FindingField = "description"
	FindingNote        FindingField = "note"
)

// DefaultLegacyCategoryTitle names the category created by
// MigrateLegacyFindings when no title is given.
const DefaultLegacyCategoryTitle = "ממצאים"

var newID = uuid.NewString

// Categories returns a deep copy of the categories in order.
func (d *Document) Categories() []types.Category {
	out := make([]types.Category, len(d.categories))
	for i, c := range d.categories {
		out[i] = cloneCategory(c)
	}
	return out
}

// LegacyFindings returns a copy of the ungrouped findings list.
func (d *Document) LegacyFindings() []types.Finding {
	out := make([]types.Finding, len(d.legacyFindings))
	for i, f := range d.legacyFindings {
		out[i] = cloneFinding(f)
	}
	return out
}

// AddLegacyFinding appends to the ungrouped findings list. Only documents
// that predate categories use it.
func (d *Document) AddLegacyFinding(f types.Finding) string {
	if f.ID == "" {
		f.ID = newID()
	}
	d.legacyFindings = append(d.legacyFindings, cloneFinding(f))
	return f.ID
}

// AddCategory appends a new, expanded category and returns its id.
func (d *Document) AddCategory(title string) string {
	id := newID()
	d.categories = append(d.categories, types.Category{
		ID:       id,
		Title:    title,
		Order:    len(d.categories),
		Findings: []types.Finding{},
	})
	return id
}

// RenameCategory updates a category title.
func (d *Document) RenameCategory(categoryID, title string) bool {
	i := d.categoryIndex(categoryID)
	if i < 0 {
		return false
	}
	d.categories[i].Title = title
	return true
}

// DeleteCategory removes a category with all of its findings and returns
// the removed finding ids so their images can be deleted.
func (d *Document) DeleteCategory(categoryID string) ([]string, bool) {
	i := d.categoryIndex(categoryID)
	if i < 0 {
		return nil, false
	}
	removed := make([]string, 0, len(d.categories[i].Findings))
	for _, f := range d.categories[i].Findings {
		removed = append(removed, f.ID)
		delete(d.collapsed, f.ID)
	}
	delete(d.collapsed, categoryID)
	d.categories = append(d.categories[:i], d.categories[i+1:]...)
	d.renumberCategories()
	return removed, true
}

// MoveCategoryUp swaps a category with its predecessor. It is a no-op for
// the first category.
func (d *Document) MoveCategoryUp(categoryID string) bool {
	return d.moveCategory(categoryID, -1)
}

// MoveCategoryDown swaps a category with its successor. It is a no-op for
// the last category.
func (d *Document) MoveCategoryDown(categoryID string) bool {
	return d.moveCategory(categoryID, 1)
}

func (d *Document) moveCategory(categoryID string, direction int) bool {
	i := d.categoryIndex(categoryID)
	j := i + direction
	if i < 0 || j < 0 || j >= len(d.categories) {
		return false
	}
	d.categories[i], d.categories[j] = d.categories[j], d.categories[i]
	d.renumberCategories()
	return true
}

func (d *Document) renumberCategories() {
	for i := range d.categories {
		d.categories[i].Order = i
	}
}

// AddFindingToCategory appends an empty finding with the given subject.
func (d *Document) AddFindingToCategory(categoryID, subject string) (string, bool) {
	i := d.categoryIndex(categoryID)
	if i < 0 {
		return "", false
	}
	id := newID()
	d.categories[i].Findings = append(d.categories[i].Findings, types.Finding{
		ID:              id,
		Subject:         subject,
		Recommendations: []types.Recommendation{},
	})
	return id, true
}

// DeleteFindingFromCategory removes one finding.
func (d *Document) DeleteFindingFromCategory(categoryID, findingID string) bool {
	i := d.categoryIndex(categoryID)
	if i < 0 {
		return false
	}
	findings := d.categories[i].Findings
	for j, f := range findings {
		if f.ID == findingID {
			d.categories[i].Findings = append(findings[:j], findings[j+1:]...)
			delete(d.collapsed, findingID)
			return true
		}
	}
	return false
}

// MoveFindingInCategory swaps a finding with its neighbour in direction
// -1 (up) or +1 (down), clamped at both ends.
func (d *Document) MoveFindingInCategory(categoryID, findingID string, direction int) bool {
	if direction != -1 && direction != 1 {
		return false
	}
	i := d.categoryIndex(categoryID)
	if i < 0 {
		return false
	}
	findings := d.categories[i].Findings
	for j, f := range findings {
		if f.ID != findingID {
			continue
		}
		k := j + direction
		if k < 0 || k >= len(findings) {
			return false
		}
		findings[j], findings[k] = findings[k], findings[j]
		return true
	}
	return false
}

// UpdateFindingField sets one text attribute of a finding anywhere in the
// category tree.
func (d *Document) UpdateFindingField(findingID string, field FindingField, value string) bool {
	f := d.finding(findingID)
	if f == nil {
		return false
	}
	switch field {
	case FindingSubject:
		f.Subject = value
	case FindingDescription:
		f.Description = value
	case FindingNote:
		f.Note = value
	default:
		return false
	}
	return true
}

// Finding returns a copy of a finding and the id of its category.
func (d *Document) Finding(findingID string) (types.Finding, string, bool) {
	for _, c := range d.categories {
		for _, f := range c.Findings {
			if f.ID == findingID {
				return cloneFinding(f), c.ID, true
			}
		}
	}
	return types.Finding{}, "", false
}

// FindingIDs returns the ids of every finding in the category tree.
func (d *Document) FindingIDs() []string {
	var ids []string
	for _, c := range d.categories {
		for _, f := range c.Findings {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

// CanMigrateLegacyFindings reports whether the one-shot promotion of the
// ungrouped findings list is available.
func (d *Document) CanMigrateLegacyFindings() bool {
	return len(d.legacyFindings) > 0 && len(d.categories) == 0
}

// MigrateLegacyFindings moves every ungrouped finding, in order, into a
// single new category. It returns the category id.
func (d *Document) MigrateLegacyFindings(title string) (string, bool) {
	if !d.CanMigrateLegacyFindings() {
		return "", false
	}
	if title == "" {
		title = DefaultLegacyCategoryTitle
	}
	id := d.AddCategory(title)
	findings := make([]types.Finding, len(d.legacyFindings))
	for i, f := range d.legacyFindings {
		if f.ID == "" {
			f.ID = newID()
		}
		if f.Recommendations == nil {
			f.Recommendations = []types.Recommendation{}
		}
		findings[i] = f
	}
	d.categories[0].Findings = findings
	d.legacyFindings = nil
	return id, true
}

// IsExpanded reports the presentation state of a category or finding.
// Everything is expanded unless collapsed explicitly.
func (d *Document) IsExpanded(id string) bool {
	return !d.collapsed[id]
}

// SetExpanded records the presentation state of a category or finding.
func (d *Document) SetExpanded(id string, expanded bool) {
	if expanded {
		delete(d.collapsed, id)
		return
	}
	d.collapsed[id] = true
}

func (d *Document) categoryIndex(id string) int {
	for i, c := range d.categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) finding(id string) *types.Finding {
	for i := range d.categories {
		findings := d.categories[i].Findings
		for j := range findings {
			if findings[j].ID == id {
				return &findings[j]
			}
		}
	}
	return nil
}

func cloneCategory(c types.Category) types.Category {
	out := c
	out.Findings = make([]types.Finding, len(c.Findings))
	for i, f := range c.Findings {
		out.Findings[i] = cloneFinding(f)
	}
	return out
}

func cloneFinding(f types.Finding) types.Finding {
	out := f
	out.Recommendations = make([]types.Recommendation, len(f.Recommendations))
	copy(out.Recommendations, f.Recommendations)
	return out
}
