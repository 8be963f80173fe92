package jobdata

import "github.com/jonathan/inspection-reports/internal/types"

// totalState tells whether a recommendation's total was derived from
// quantity and price or typed in by the user.
type totalState int

const (
	totalComputed totalState = iota
	totalManual
)

type totalEvent int

const (
	editQuantity totalEvent = iota
	editPrice
	editTotal
)

// totalTransitions is the complete auto-total state machine. Quantity and
// price edits always return to computed; a total edit always lands in
// manual. The last writer wins.
var totalTransitions = map[totalState]map[totalEvent]totalState{
	totalComputed: {
		editQuantity: totalComputed,
		editPrice:    totalComputed,
		editTotal:    totalManual,
	},
	totalManual: {
		editQuantity: totalComputed,
		editPrice:    totalComputed,
		editTotal:    totalManual,
	},
}

func stateOf(r *types.Recommendation) totalState {
	if r.TotalOverridden {
		return totalManual
	}
	return totalComputed
}

// applyTotalEvent moves r through the state machine. Entering computed
// recomputes the total when quantity*price is positive.
func applyTotalEvent(r *types.Recommendation, event totalEvent, manualTotal float64) {
	next := totalTransitions[stateOf(r)][event]
	switch next {
	case totalManual:
		r.TotalPrice = manualTotal
		r.TotalOverridden = true
	case totalComputed:
		r.TotalOverridden = false
		if product := r.Quantity * r.PricePerUnit; product > 0 {
			r.TotalPrice = product
		}
	}
}

// AddRecommendation appends an empty recommendation to a finding.
func (d *Document) AddRecommendation(findingID, description string) (string, bool) {
	f := d.finding(findingID)
	if f == nil {
		return "", false
	}
	id := newID()
	f.Recommendations = append(f.Recommendations, types.Recommendation{
		ID:          id,
		Description: description,
	})
	return id, true
}

// DeleteRecommendation removes a recommendation from a finding.
func (d *Document) DeleteRecommendation(findingID, recommendationID string) bool {
	f := d.finding(findingID)
	if f == nil {
		return false
	}
	for i, r := range f.Recommendations {
		if r.ID == recommendationID {
			f.Recommendations = append(f.Recommendations[:i], f.Recommendations[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateRecommendationText sets the description and unit.
func (d *Document) UpdateRecommendationText(findingID, recommendationID, description, unit string) bool {
	r := d.recommendation(findingID, recommendationID)
	if r == nil {
		return false
	}
	r.Description = description
	r.Unit = unit
	return true
}

// SetQuantity updates the quantity and recomputes the total.
func (d *Document) SetQuantity(findingID, recommendationID string, quantity float64) bool {
	r := d.recommendation(findingID, recommendationID)
	if r == nil {
		return false
	}
	r.Quantity = quantity
	applyTotalEvent(r, editQuantity, 0)
	return true
}

// SetPricePerUnit updates the unit price and recomputes the total.
func (d *Document) SetPricePerUnit(findingID, recommendationID string, price float64) bool {
	r := d.recommendation(findingID, recommendationID)
	if r == nil {
		return false
	}
	r.PricePerUnit = price
	applyTotalEvent(r, editPrice, 0)
	return true
}

// SetTotalPrice stores a manual total that holds until the next quantity
// or price edit.
func (d *Document) SetTotalPrice(findingID, recommendationID string, total float64) bool {
	r := d.recommendation(findingID, recommendationID)
	if r == nil {
		return false
	}
	applyTotalEvent(r, editTotal, total)
	return true
}

// Recommendation returns a copy of one recommendation.
func (d *Document) Recommendation(findingID, recommendationID string) (types.Recommendation, bool) {
	r := d.recommendation(findingID, recommendationID)
	if r == nil {
		return types.Recommendation{}, false
	}
	return *r, true
}

func (d *Document) recommendation(findingID, recommendationID string) *types.Recommendation {
	f := d.finding(findingID)
	if f == nil {
		return nil
	}
	for i := range f.Recommendations {
		if f.Recommendations[i].ID == recommendationID {
			return &f.Recommendations[i]
		}
	}
	return nil
}
