package server

import (
	"net/http"

	"github.com/jonathan/inspection-reports/internal/jobdata"
	"github.com/jonathan/inspection-reports/internal/types"
)

// CategoryRequest is the body of category create and rename
type CategoryRequest struct {
	Title string `json:"title" validate:"required"`
}

// MoveRequest is the body of the move endpoints
type MoveRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

// AddFindingRequest is the body of POST .../findings
type AddFindingRequest struct {
	Subject string `json:"subject"`
}

// UpdateFindingRequest sets one text attribute of a finding
type UpdateFindingRequest struct {
	Field string `json:"field" validate:"required,oneof=subject description note"`
	Value string `json:"value"`
}

// MigrateRequest is the optional body of the legacy migration
type MigrateRequest struct {
	Title string `json:"title"`
}

// AddRecommendationRequest is the body of POST .../recommendations
type AddRecommendationRequest struct {
	Description string `json:"description"`
}

// UpdateRecommendationRequest changes any subset of a recommendation.
// Quantity and price edits apply before a manual total.
type UpdateRecommendationRequest struct {
	Description  *string  `json:"description,omitempty"`
	Unit         *string  `json:"unit,omitempty"`
	Quantity     *float64 `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	PricePerUnit *float64 `json:"price_per_unit,omitempty" validate:"omitempty,gte=0"`
	TotalPrice   *float64 `json:"total_price,omitempty" validate:"omitempty,gte=0"`
}

// FindingsResponse lists the finding tree of a job
type FindingsResponse struct {
	Categories     []types.Category `json:"categories"`
	LegacyFindings []types.Finding  `json:"legacy_findings"`
	CanMigrate     bool             `json:"can_migrate"`
}

// IDResponse carries the id of a created resource
type IDResponse struct {
	ID string `json:"id"`
}

// handleListFindings returns categories and ungrouped findings
func (s *Server) handleListFindings(w http.ResponseWriter, r *http.Request) {
	_, doc, err := s.editor.Load(r.Context(), r.PathValue("job_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := FindingsResponse{
		Categories:     doc.Categories(),
		LegacyFindings: doc.LegacyFindings(),
		CanMigrate:     doc.CanMigrateLegacyFindings(),
	}
	if resp.Categories == nil {
		resp.Categories = []types.Category{}
	}
	if resp.LegacyFindings == nil {
		resp.LegacyFindings = []types.Finding{}
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleMigrateFindings moves ungrouped findings into one category
func (s *Server) handleMigrateFindings(w http.ResponseWriter, r *http.Request) {
	var req MigrateRequest
	if r.ContentLength > 0 {
		if err := s.decode(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	var id string
	changed, err := s.editor.Update(r.Context(), r.PathValue("job_id"), func(doc *jobdata.Document) bool {
		var ok bool
		id, ok = doc.MigrateLegacyFindings(req.Title)
		return ok
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !changed {
		s.writeError(w, r, &ErrConflict{Message: "no ungrouped findings to migrate"})
		return
	}
	s.jsonResponse(w, http.StatusCreated, IDResponse{ID: id})
}

// handleAddCategory appends a category
func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var id string
	_, err := s.editor.Update(r.Context(), r.PathValue("job_id"), func(doc *jobdata.Document) bool {
		id = doc.AddCategory(req.Title)
		return true
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, IDResponse{ID: id})
}

// handleRenameCategory updates a category title
func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	categoryID := r.PathValue("category_id")
	err := s.update(r, r.PathValue("job_id"), "category", categoryID, func(doc *jobdata.Document) bool {
		return doc.RenameCategory(categoryID, req.Title)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteCategory deletes a category, its findings and their images
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := r.PathValue("category_id")
	deleted, err := s.editor.DeleteCategory(r.Context(), r.PathValue("job_id"), categoryID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !deleted {
		s.writeError(w, r, &ErrNotFound{Resource: "category", ID: categoryID})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMoveCategory swaps a category with its neighbour. Moving past
// either end leaves the order unchanged.
func (s *Server) handleMoveCategory(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	categoryID := r.PathValue("category_id")
	exists := false
	_, err := s.editor.Update(r.Context(), r.PathValue("job_id"), func(doc *jobdata.Document) bool {
		for _, c := range doc.Categories() {
			if c.ID == categoryID {
				exists = true
			}
		}
		if req.Direction == "up" {
			return doc.MoveCategoryUp(categoryID)
		}
		return doc.MoveCategoryDown(categoryID)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !exists {
		s.writeError(w, r, &ErrNotFound{Resource: "category", ID: categoryID})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAddFinding appends a finding to a category
func (s *Server) handleAddFinding(w http.ResponseWriter, r *http.Request) {
	var req AddFindingRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	categoryID := r.PathValue("category_id")
	var id string
	err := s.update(r, r.PathValue("job_id"), "category", categoryID, func(doc *jobdata.Document) bool {
		var ok bool
		id, ok = doc.AddFindingToCategory(categoryID, req.Subject)
		return ok
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, IDResponse{ID: id})
}

// handleDeleteFinding deletes a finding and its images
func (s *Server) handleDeleteFinding(w http.ResponseWriter, r *http.Request) {
	findingID := r.PathValue("finding_id")
	deleted, err := s.editor.DeleteFinding(r.Context(), r.PathValue("job_id"), r.PathValue("category_id"), findingID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !deleted {
		s.writeError(w, r, &ErrNotFound{Resource: "finding", ID: findingID})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMoveFinding swaps a finding with its neighbour in its category
func (s *Server) handleMoveFinding(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	categoryID, findingID := r.PathValue("category_id"), r.PathValue("finding_id")
	direction := 1
	if req.Direction == "up" {
		direction = -1
	}
	exists := false
	_, err := s.editor.Update(r.Context(), r.PathValue("job_id"), func(doc *jobdata.Document) bool {
		_, owner, ok := doc.Finding(findingID)
		exists = ok && owner == categoryID
		return doc.MoveFindingInCategory(categoryID, findingID, direction)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !exists {
		s.writeError(w, r, &ErrNotFound{Resource: "finding", ID: findingID})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateFinding sets the subject, description or note of a finding
func (s *Server) handleUpdateFinding(w http.ResponseWriter, r *http.Request) {
	var req UpdateFindingRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	findingID := r.PathValue("finding_id")
	err := s.update(r, r.PathValue("job_id"), "finding", findingID, func(doc *jobdata.Document) bool {
		return doc.UpdateFindingField(findingID, jobdata.FindingField(req.Field), req.Value)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAddRecommendation appends a recommendation to a finding
func (s *Server) handleAddRecommendation(w http.ResponseWriter, r *http.Request) {
	var req AddRecommendationRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	findingID := r.PathValue("finding_id")
	var id string
	err := s.update(r, r.PathValue("job_id"), "finding", findingID, func(doc *jobdata.Document) bool {
		var ok bool
		id, ok = doc.AddRecommendation(findingID, req.Description)
		return ok
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, IDResponse{ID: id})
}

// handleUpdateRecommendation applies the given changes and returns the
// resulting recommendation
func (s *Server) handleUpdateRecommendation(w http.ResponseWriter, r *http.Request) {
	var req UpdateRecommendationRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	findingID, recID := r.PathValue("finding_id"), r.PathValue("recommendation_id")

	var result types.Recommendation
	err := s.update(r, r.PathValue("job_id"), "recommendation", recID, func(doc *jobdata.Document) bool {
		current, ok := doc.Recommendation(findingID, recID)
		if !ok {
			return false
		}
		if req.Description != nil || req.Unit != nil {
			description, unit := current.Description, current.Unit
			if req.Description != nil {
				description = *req.Description
			}
			if req.Unit != nil {
				unit = *req.Unit
			}
			doc.UpdateRecommendationText(findingID, recID, description, unit)
		}
		if req.Quantity != nil {
			doc.SetQuantity(findingID, recID, *req.Quantity)
		}
		if req.PricePerUnit != nil {
			doc.SetPricePerUnit(findingID, recID, *req.PricePerUnit)
		}
		if req.TotalPrice != nil {
			doc.SetTotalPrice(findingID, recID, *req.TotalPrice)
		}
		result, _ = doc.Recommendation(findingID, recID)
		return true
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleDeleteRecommendation removes a recommendation
func (s *Server) handleDeleteRecommendation(w http.ResponseWriter, r *http.Request) {
	findingID, recID := r.PathValue("finding_id"), r.PathValue("recommendation_id")
	err := s.update(r, r.PathValue("job_id"), "recommendation", recID, func(doc *jobdata.Document) bool {
		return doc.DeleteRecommendation(findingID, recID)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
