// Package server provides the HTTP REST API for inspection reports.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/inspection-reports/internal/assembly"
	"github.com/jonathan/inspection-reports/internal/jobdata"
	"github.com/jonathan/inspection-reports/internal/overrides"
	"github.com/jonathan/inspection-reports/internal/rendering"
	"github.com/jonathan/inspection-reports/internal/templates"
)

// ErrNotFound indicates a resource inside a job or template was not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrConflict indicates the request cannot be applied to the current state
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound    *ErrNotFound
		validation  *ErrValidation
		conflict    *ErrConflict
		jobNotFound *jobdata.JobNotFoundError
		tplNotFound *overrides.TemplateNotFoundError
		blobErr     *jobdata.BlobError
		unsupported *rendering.UnsupportedFormatError
		envelopeErr *templates.EnvelopeError
	)
	switch {
	case errors.As(err, &notFound), errors.As(err, &jobNotFound), errors.As(err, &tplNotFound),
		errors.Is(err, assembly.ErrNoReport):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &unsupported), errors.As(err, &envelopeErr):
		return http.StatusBadRequest
	case errors.As(err, &conflict), errors.Is(err, jobdata.ErrItemCapReached):
		return http.StatusConflict
	case errors.As(err, &blobErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
