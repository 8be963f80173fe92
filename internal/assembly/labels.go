package assembly

// Labels are the fixed captions the assembler adds around user content.
type Labels struct {
	ClientName     string `json:"client_name" yaml:"client_name"`
	Address        string `json:"address" yaml:"address"`
	InspectionDate string `json:"inspection_date" yaml:"inspection_date"`
	Description    string `json:"description" yaml:"description"`
	Quantity       string `json:"quantity" yaml:"quantity"`
	Unit           string `json:"unit" yaml:"unit"`
	UnitPrice      string `json:"unit_price" yaml:"unit_price"`
	Total          string `json:"total" yaml:"total"`
	Note           string `json:"note" yaml:"note"`
	Subtotal       string `json:"subtotal" yaml:"subtotal"`
	VAT            string `json:"vat" yaml:"vat"`
	TotalWithVAT   string `json:"total_with_vat" yaml:"total_with_vat"`
	WorkItems      string `json:"work_items" yaml:"work_items"`
	Yes            string `json:"yes" yaml:"yes"`
	No             string `json:"no" yaml:"no"`
}

// DefaultLabels returns the Hebrew captions.
func DefaultLabels() Labels {
	return Labels{
		ClientName:     "שם הלקוח",
		Address:        "כתובת",
		InspectionDate: "תאריך הבדיקה",
		Description:    "תיאור",
		Quantity:       "כמות",
		Unit:           "יחידה",
		UnitPrice:      "מחיר ליחידה",
		Total:          "סה\"כ",
		Note:           "הערה",
		Subtotal:       "סכום ביניים",
		VAT:            "מע\"מ",
		TotalWithVAT:   "סה\"כ כולל מע\"מ",
		WorkItems:      "עבודות",
		Yes:            "כן",
		No:             "לא",
	}
}

// withDefaults fills empty captions from DefaultLabels.
func (l Labels) withDefaults() Labels {
	d := DefaultLabels()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&l.ClientName, d.ClientName)
	fill(&l.Address, d.Address)
	fill(&l.InspectionDate, d.InspectionDate)
	fill(&l.Description, d.Description)
	fill(&l.Quantity, d.Quantity)
	fill(&l.Unit, d.Unit)
	fill(&l.UnitPrice, d.UnitPrice)
	fill(&l.Total, d.Total)
	fill(&l.Note, d.Note)
	fill(&l.Subtotal, d.Subtotal)
	fill(&l.VAT, d.VAT)
	fill(&l.TotalWithVAT, d.TotalWithVAT)
	fill(&l.WorkItems, d.WorkItems)
	fill(&l.Yes, d.Yes)
	fill(&l.No, d.No)
	return l
}
