package server

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/inspection-reports/internal/store"
	"github.com/jonathan/inspection-reports/internal/types"
)

// CreateJobRequest is the body of POST /jobs
type CreateJobRequest struct {
	ID             string `json:"id,omitempty"`
	TemplateID     string `json:"template_id" validate:"required"`
	Title          string `json:"title" validate:"required"`
	ClientName     string `json:"client_name,omitempty"`
	Address        string `json:"address,omitempty"`
	InspectionDate string `json:"inspection_date,omitempty"`
}

// AddImageRequest is the body of POST /jobs/{job_id}/images
type AddImageRequest struct {
	SectionID string `json:"section_id" validate:"required"`
	FilePath  string `json:"file_path" validate:"required"`
	Caption   string `json:"caption,omitempty"`
	Order     int    `json:"order" validate:"gte=0"`
}

// handleCreateJob creates an empty job for an existing template
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	tpl, err := s.stores.GetTemplateByID(r.Context(), req.TemplateID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if tpl == nil {
		s.writeError(w, r, &ErrNotFound{Resource: "template", ID: req.TemplateID})
		return
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	} else {
		existing, err := s.stores.GetJob(r.Context(), req.ID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if existing != nil {
			s.writeError(w, r, &ErrConflict{Message: "job already exists: " + req.ID})
			return
		}
	}

	now := time.Now().UTC()
	job := &types.Job{
		ID:             req.ID,
		TemplateID:     req.TemplateID,
		Title:          req.Title,
		ClientName:     req.ClientName,
		Address:        req.Address,
		InspectionDate: req.InspectionDate,
		DateCreated:    now,
		DateModified:   now,
	}
	if err := s.stores.UpdateJob(r.Context(), job); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, job)
}

// handleListJobs lists jobs, optionally filtered by ?template_id= and
// ?search=, newest first
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	filters := store.JobFilters{
		TemplateID: r.URL.Query().Get("template_id"),
		Search:     r.URL.Query().Get("search"),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filters.Limit = limit
		}
	}

	jobs, err := s.stores.ListJobs(r.Context(), filters)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// handleGetJob returns a job record
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.loadJob(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleDeleteJob deletes a job and its images
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if _, err := s.loadJob(r); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.editor.DeleteJob(r.Context(), r.PathValue("job_id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListImages returns the image records of a job, optionally
// narrowed to one section or finding with ?section_id=
func (s *Server) handleListImages(w http.ResponseWriter, r *http.Request) {
	var (
		images []types.Image
		err    error
	)
	jobID := r.PathValue("job_id")
	if sectionID := r.URL.Query().Get("section_id"); sectionID != "" {
		images, err = s.stores.GetImagesForSection(r.Context(), jobID, sectionID)
	} else {
		images, err = s.stores.GetImagesForJob(r.Context(), jobID)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"images": images})
}

// handleAddImage records an image file for a section or finding
func (s *Server) handleAddImage(w http.ResponseWriter, r *http.Request) {
	job, err := s.loadJob(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req AddImageRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.checkImageTarget(r, job, req.SectionID); err != nil {
		s.writeError(w, r, err)
		return
	}
	img := &types.Image{
		JobID:     job.ID,
		SectionID: req.SectionID,
		FilePath:  req.FilePath,
		Caption:   req.Caption,
		Order:     req.Order,
	}
	if err := s.stores.AddImage(r.Context(), img); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, img)
}

// checkImageTarget accepts a section of the job's template or a finding
// currently in its category tree.
func (s *Server) checkImageTarget(r *http.Request, job *types.Job, sectionID string) error {
	tpl, err := s.stores.GetTemplateByID(r.Context(), job.TemplateID)
	if err != nil {
		return err
	}
	if _, ok := tpl.Section(sectionID); ok {
		return nil
	}
	_, doc, err := s.editor.Load(r.Context(), job.ID)
	if err != nil {
		return err
	}
	if slices.Contains(doc.FindingIDs(), sectionID) {
		return nil
	}
	return &ErrValidation{Field: "section_id", Message: "no section or finding " + sectionID}
}

func (s *Server) loadJob(r *http.Request) (*types.Job, error) {
	id := r.PathValue("job_id")
	job, err := s.stores.GetJob(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, &ErrNotFound{Resource: "job", ID: id}
	}
	return job, nil
}
