package server

import (
	"net/http"

	"github.com/jonathan/inspection-reports/internal/types"
)

// SetFieldRequest is the body of PUT .../fields/{field_id}
type SetFieldRequest struct {
	Value *string `json:"value" validate:"required"`
}

// FieldResponse carries one stored value
type FieldResponse struct {
	SectionID string `json:"section_id"`
	FieldID   string `json:"field_id"`
	Value     string `json:"value"`
}

// CustomContentResponse is the effective custom content of a job
type CustomContentResponse struct {
	Content     types.CustomContent `json:"content"`
	HasOverride bool                `json:"has_override"`
}

// handleListSections returns the ids of the sections holding values
func (s *Server) handleListSections(w http.ResponseWriter, r *http.Request) {
	_, doc, err := s.editor.Load(r.Context(), r.PathValue("job_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"sections": doc.SectionIDs()})
}

// handleGetSection returns all values stored for a section. Missing jobs
// and sections read as empty.
func (s *Server) handleGetSection(w http.ResponseWriter, r *http.Request) {
	_, doc, err := s.editor.Load(r.Context(), r.PathValue("job_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"section_id": r.PathValue("section_id"),
		"values":     doc.SectionValue(r.PathValue("section_id")),
	})
}

// handleGetField returns one value, "" when absent
func (s *Server) handleGetField(w http.ResponseWriter, r *http.Request) {
	value, err := s.editor.Get(r.Context(), r.PathValue("job_id"), r.PathValue("section_id"), r.PathValue("field_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, FieldResponse{
		SectionID: r.PathValue("section_id"),
		FieldID:   r.PathValue("field_id"),
		Value:     value,
	})
}

// handlePutField stores one value
func (s *Server) handlePutField(w http.ResponseWriter, r *http.Request) {
	var req SetFieldRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	err := s.editor.Set(r.Context(), r.PathValue("job_id"), r.PathValue("section_id"), r.PathValue("field_id"), *req.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, FieldResponse{
		SectionID: r.PathValue("section_id"),
		FieldID:   r.PathValue("field_id"),
		Value:     *req.Value,
	})
}

// handleDeleteField removes one value
func (s *Server) handleDeleteField(w http.ResponseWriter, r *http.Request) {
	err := s.editor.Delete(r.Context(), r.PathValue("job_id"), r.PathValue("section_id"), r.PathValue("field_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetCustomContent returns the content a report would use
func (s *Server) handleGetCustomContent(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")
	content, err := s.resolver.Effective(r.Context(), jobID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	has, err := s.resolver.HasOverride(r.Context(), jobID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, CustomContentResponse{Content: content, HasOverride: has})
}

// handlePutCustomContent stores the whole body as the job's override
func (s *Server) handlePutCustomContent(w http.ResponseWriter, r *http.Request) {
	var content types.CustomContent
	if err := s.decode(w, r, &content); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.resolver.SaveOverride(r.Context(), r.PathValue("job_id"), content); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, CustomContentResponse{Content: content, HasOverride: true})
}

// handleResetCustomContent removes the job's override
func (s *Server) handleResetCustomContent(w http.ResponseWriter, r *http.Request) {
	if err := s.resolver.ResetToDefault(r.Context(), r.PathValue("job_id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
