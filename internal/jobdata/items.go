package jobdata

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	// MaxInvoiceItems caps the numbered invoice item slots.
	MaxInvoiceItems = 50
	// MaxWorkItems caps the numbered work item slots of a section.
	MaxWorkItems = 50

	InvoicePrefix  = "item"
	WorkItemPrefix = "work_item"

	FieldVATRate      = "vat_rate"
	FieldSubtotal     = "subtotal"
	FieldVATAmount    = "vat_amount"
	FieldTotalWithVAT = "total_with_vat"

	// DefaultVATRate is used when the section has no parsable vat_rate.
	DefaultVATRate = 18.0
)

var errEmptyDescription = errors.New("item description is required")

var itemAttributes = []string{"description", "quantity", "unit", "unit_price", "total"}

// LineItem is one numbered item. Values are kept as stored strings.
type LineItem struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Unit        string `json:"unit"`
	UnitPrice   string `json:"unit_price"`
	Total       string `json:"total"`
}

func (it LineItem) attr(name string) string {
	switch name {
	case "description":
		return it.Description
	case "quantity":
		return it.Quantity
	case "unit":
		return it.Unit
	case "unit_price":
		return it.UnitPrice
	default:
		return it.Total
	}
}

// Amount is quantity times unit price, falling back to the stored total
// when either factor is not a number.
func (it LineItem) Amount() float64 {
	qty, okQty := ParseNumber(it.Quantity)
	price, okPrice := ParseNumber(it.UnitPrice)
	if okQty && okPrice {
		return qty * price
	}
	total, _ := ParseNumber(it.Total)
	return total
}

// Totals are the derived invoice sums.
type Totals struct {
	Subtotal     float64 `json:"subtotal"`
	VATRate      float64 `json:"vat_rate"`
	VATAmount    float64 `json:"vat_amount"`
	TotalWithVAT float64 `json:"total_with_vat"`
}

// ComputeTotals sums the items and applies vatRate (a percentage).
func ComputeTotals(items []LineItem, vatRate float64) Totals {
	var subtotal float64
	for _, it := range items {
		subtotal += it.Amount()
	}
	subtotal = roundCents(subtotal)
	vat := roundCents(subtotal * vatRate / 100)
	return Totals{
		Subtotal:     subtotal,
		VATRate:      vatRate,
		VATAmount:    vat,
		TotalWithVAT: roundCents(subtotal + vat),
	}
}

func roundCents(f float64) float64 {
	return math.Round(f*100) / 100
}

// ItemList addresses the numbered items of one section, stored as flat
// fields named {prefix}_{n}_{attribute} for n in 1..cap. Populated items
// never leave holes in the index sequence.
//
// totalsPrefix namespaces the total fields so several lists can share a
// section.
type ItemList struct {
	doc          *Document
	sectionID    string
	prefix       string
	totalsPrefix string
	cap          int
}

// InvoiceItems returns the invoice item list of a section.
func InvoiceItems(doc *Document, sectionID string) *ItemList {
	return &ItemList{doc: doc, sectionID: sectionID, prefix: InvoicePrefix, cap: MaxInvoiceItems}
}

// WorkItems returns the work item list of a section.
func WorkItems(doc *Document, sectionID string) *ItemList {
	return &ItemList{doc: doc, sectionID: sectionID, prefix: WorkItemPrefix, cap: MaxWorkItems, totalsPrefix: WorkItemPrefix + "s_"}
}

// Cap returns the number of slots.
func (l *ItemList) Cap() int { return l.cap }

func (l *ItemList) key(n int, attr string) string {
	return fmt.Sprintf("%s_%d_%s", l.prefix, n, attr)
}

// Item returns the item at slot n (1-based).
func (l *ItemList) Item(n int) LineItem {
	get := func(attr string) string { return l.doc.Get(l.sectionID, l.key(n, attr)) }
	return LineItem{
		Description: get("description"),
		Quantity:    get("quantity"),
		Unit:        get("unit"),
		UnitPrice:   get("unit_price"),
		Total:       get("total"),
	}
}

func (l *ItemList) populated(n int) bool {
	return strings.TrimSpace(l.doc.Get(l.sectionID, l.key(n, "description"))) != ""
}

func (l *ItemList) write(n int, it LineItem) {
	for _, attr := range itemAttributes {
		v := it.attr(attr)
		if v == "" {
			l.doc.Delete(l.sectionID, l.key(n, attr))
			continue
		}
		l.doc.Set(l.sectionID, l.key(n, attr), v)
	}
}

func (l *ItemList) clear(n int) {
	for _, attr := range itemAttributes {
		l.doc.Delete(l.sectionID, l.key(n, attr))
	}
}

// Count returns the number of populated items.
func (l *ItemList) Count() int {
	count := 0
	for n := 1; n <= l.cap; n++ {
		if l.populated(n) {
			count++
		}
	}
	return count
}

// Items returns the populated items in index order.
func (l *ItemList) Items() []LineItem {
	items := make([]LineItem, 0)
	for n := 1; n <= l.cap; n++ {
		if l.populated(n) {
			items = append(items, l.Item(n))
		}
	}
	return items
}

// Compact closes holes left by documents written before compaction was
// enforced.
func (l *ItemList) Compact() {
	items := l.Items()
	for n := 1; n <= l.cap; n++ {
		if n <= len(items) {
			l.write(n, items[n-1])
			continue
		}
		l.clear(n)
	}
}

// Add appends an item and recalculates the totals. It returns the new
// item's index.
func (l *ItemList) Add(it LineItem) (int, error) {
	if strings.TrimSpace(it.Description) == "" {
		return 0, errEmptyDescription
	}
	l.Compact()
	n := l.Count() + 1
	if n > l.cap {
		return 0, ErrItemCapReached
	}
	l.write(n, withLineTotal(it))
	l.Recalculate()
	return n, nil
}

// Update replaces item n. Clearing the description deletes the item.
func (l *ItemList) Update(n int, it LineItem) bool {
	if n < 1 || n > l.cap || !l.populated(n) {
		return false
	}
	if strings.TrimSpace(it.Description) == "" {
		return l.DeleteItem(n)
	}
	l.write(n, withLineTotal(it))
	l.Recalculate()
	return true
}

// DeleteItem removes item k, shifts every later item down by one and
// clears the last slot. Holes are closed first, so k counts populated items.
func (l *ItemList) DeleteItem(k int) bool {
	if k < 1 || k > l.cap {
		return false
	}
	l.Compact()
	for n := k; n < l.cap; n++ {
		l.write(n, l.Item(n+1))
	}
	l.clear(l.cap)
	l.Recalculate()
	return true
}

// VATRate returns the section's VAT percentage.
func (l *ItemList) VATRate() float64 {
	if rate, ok := ParseNumber(l.doc.Get(l.sectionID, l.totalsPrefix+FieldVATRate)); ok && rate >= 0 {
		return rate
	}
	return DefaultVATRate
}

// Totals computes the totals without writing them.
func (l *ItemList) Totals() Totals {
	return ComputeTotals(l.Items(), l.VATRate())
}

// Recalculate stores subtotal, VAT and grand total in the section.
func (l *ItemList) Recalculate() Totals {
	totals := l.Totals()
	l.doc.Set(l.sectionID, l.totalsPrefix+FieldSubtotal, FormatAmount(totals.Subtotal))
	l.doc.Set(l.sectionID, l.totalsPrefix+FieldVATAmount, FormatAmount(totals.VATAmount))
	l.doc.Set(l.sectionID, l.totalsPrefix+FieldTotalWithVAT, FormatAmount(totals.TotalWithVAT))
	return totals
}

func withLineTotal(it LineItem) LineItem {
	qty, okQty := ParseNumber(it.Quantity)
	price, okPrice := ParseNumber(it.UnitPrice)
	if okQty && okPrice {
		it.Total = FormatAmount(qty * price)
	}
	return it
}
