package types

import "sort"

// BoilerplateItem is one free-text paragraph attached to a section
type BoilerplateItem struct {
	Text  string `json:"text"`
	Order int    `json:"order"`
}

// CustomContent holds inspector details and boilerplate text. It exists on
// a template (the default) and optionally on a job (the override).
type CustomContent struct {
	InspectorName        string                       `json:"inspector_name,omitempty"`
	ExperienceTitle      string                       `json:"experience_title,omitempty"`
	ExperienceText       string                       `json:"experience_text,omitempty"`
	CertificateImagePath string                       `json:"certificate_image_path,omitempty"`
	HeaderImagePath      string                       `json:"header_image_path,omitempty"`
	Disclaimer           string                       `json:"disclaimer,omitempty"`
	SectionTexts         map[string][]BoilerplateItem `json:"section_texts,omitempty"`
}

// SectionItems returns the boilerplate items for a section sorted by order.
func (c CustomContent) SectionItems(sectionID string) []BoilerplateItem {
	items := c.SectionTexts[sectionID]
	if len(items) == 0 {
		return nil
	}
	sorted := make([]BoilerplateItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})
	return sorted
}

// IsEmpty reports whether no content has been set.
func (c CustomContent) IsEmpty() bool {
	return c.InspectorName == "" &&
		c.ExperienceTitle == "" &&
		c.ExperienceText == "" &&
		c.CertificateImagePath == "" &&
		c.HeaderImagePath == "" &&
		c.Disclaimer == "" &&
		len(c.SectionTexts) == 0
}

// Clone returns a deep copy.
func (c CustomContent) Clone() CustomContent {
	out := c
	if c.SectionTexts != nil {
		out.SectionTexts = make(map[string][]BoilerplateItem, len(c.SectionTexts))
		for k, v := range c.SectionTexts {
			items := make([]BoilerplateItem, len(v))
			copy(items, v)
			out.SectionTexts[k] = items
		}
	}
	return out
}
