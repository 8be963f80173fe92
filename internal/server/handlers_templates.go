package server

import (
	"io"
	"net/http"

	"github.com/jonathan/inspection-reports/internal/templates"
	"github.com/jonathan/inspection-reports/internal/types"
)

// ImportTemplateResponse is returned after a template is stored
type ImportTemplateResponse struct {
	Template *types.TemplateDocument `json:"template"`
	Warnings []string                `json:"warnings"`
}

// handleImportTemplate parses a template definition and stores it
func (s *Server) handleImportTemplate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "failed to read body")
		return
	}

	result, err := templates.Parse(body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.stores.UpdateTemplate(r.Context(), result.Template); err != nil {
		s.writeError(w, r, err)
		return
	}

	warnings := make([]string, len(result.Warnings))
	for i, warning := range result.Warnings {
		warnings[i] = warning.String()
	}
	s.jsonResponse(w, http.StatusCreated, ImportTemplateResponse{Template: result.Template, Warnings: warnings})
}

// handleListTemplates lists stored templates by name
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.stores.ListTemplates(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"templates": templates,
		"count":     len(templates),
	})
}

// handleGetTemplate returns a stored template
func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("template_id")
	tpl, err := s.stores.GetTemplateByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if tpl == nil {
		s.writeError(w, r, &ErrNotFound{Resource: "template", ID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, tpl)
}

// handleGetTemplateContent returns a template's default custom content
func (s *Server) handleGetTemplateContent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("template_id")
	tpl, err := s.stores.GetTemplateByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if tpl == nil {
		s.writeError(w, r, &ErrNotFound{Resource: "template", ID: id})
		return
	}
	content := types.CustomContent{}
	if tpl.CustomContent != nil {
		content = *tpl.CustomContent
	}
	s.jsonResponse(w, http.StatusOK, content)
}

// handlePutTemplateContent replaces a template's default custom content
func (s *Server) handlePutTemplateContent(w http.ResponseWriter, r *http.Request) {
	var content types.CustomContent
	if err := s.decode(w, r, &content); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.resolver.UpdateTemplateContent(r.Context(), r.PathValue("template_id"), content); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
