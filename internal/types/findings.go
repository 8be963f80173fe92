package types

// Category groups findings under a title
type Category struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Order    int       `json:"order"`
	Findings []Finding `json:"findings"`
}

// Finding is one observed defect. Its images are stored with
// Image.SectionID equal to the finding id.
type Finding struct {
	ID              string           `json:"id"`
	Subject         string           `json:"subject"`
	Description     string           `json:"description"`
	Note            string           `json:"note"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Recommendation is a priced remediation line for a finding.
type Recommendation struct {
	ID              string  `json:"id"`
	Description     string  `json:"description"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
	PricePerUnit    float64 `json:"price_per_unit"`
	TotalPrice      float64 `json:"total_price"`
	TotalOverridden bool    `json:"total_overridden,omitempty"`
}
