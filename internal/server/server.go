package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/inspection-reports/internal/assembly"
	"github.com/jonathan/inspection-reports/internal/jobdata"
	"github.com/jonathan/inspection-reports/internal/overrides"
	"github.com/jonathan/inspection-reports/internal/rendering"
	"github.com/jonathan/inspection-reports/internal/store"
)

// maxBodyBytes bounds request bodies; templates are the largest payload.
const maxBodyBytes = 4 << 20

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	stores     store.Stores
	editor     *jobdata.Editor
	resolver   *overrides.Resolver
	assembler  *assembly.Assembler
	cfg        Config
	validate   *validator.Validate
	logger     *slog.Logger
}

// Config holds server configuration
type Config struct {
	Addr          string
	Assembly      assembly.Options
	LaTeXTemplate string
	LaTeXFont     string
	EmbedImages   bool
	Logger        *slog.Logger
}

// New creates a new server instance over the given stores
func New(stores store.Stores, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Assembly.Logger == nil {
		cfg.Assembly.Logger = logger
	}
	editor := jobdata.NewEditor(stores, stores, jobdata.WithLogger(logger))

	s := &Server{
		stores:    stores,
		editor:    editor,
		resolver:  overrides.NewResolver(stores, editor, logger),
		assembler: assembly.New(stores, cfg.Assembly),
		cfg:       cfg,
		validate:  validator.New(),
		logger:    logger,
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Templates
	mux.HandleFunc("GET /templates", s.handleListTemplates)
	mux.HandleFunc("POST /templates", s.handleImportTemplate)
	mux.HandleFunc("GET /templates/{template_id}", s.handleGetTemplate)
	mux.HandleFunc("GET /templates/{template_id}/custom-content", s.handleGetTemplateContent)
	mux.HandleFunc("PUT /templates/{template_id}/custom-content", s.handlePutTemplateContent)

	// Jobs
	mux.HandleFunc("GET /jobs", s.handleListJobs)
	mux.HandleFunc("POST /jobs", s.handleCreateJob)
	mux.HandleFunc("GET /jobs/{job_id}", s.handleGetJob)
	mux.HandleFunc("DELETE /jobs/{job_id}", s.handleDeleteJob)
	mux.HandleFunc("GET /jobs/{job_id}/images", s.handleListImages)
	mux.HandleFunc("POST /jobs/{job_id}/images", s.handleAddImage)

	// Field values
	mux.HandleFunc("GET /jobs/{job_id}/sections", s.handleListSections)
	mux.HandleFunc("GET /jobs/{job_id}/sections/{section_id}", s.handleGetSection)
	mux.HandleFunc("GET /jobs/{job_id}/sections/{section_id}/fields/{field_id}", s.handleGetField)
	mux.HandleFunc("PUT /jobs/{job_id}/sections/{section_id}/fields/{field_id}", s.handlePutField)
	mux.HandleFunc("DELETE /jobs/{job_id}/sections/{section_id}/fields/{field_id}", s.handleDeleteField)

	// Numbered items
	mux.HandleFunc("GET /jobs/{job_id}/sections/{section_id}/items", s.handleListItems)
	mux.HandleFunc("POST /jobs/{job_id}/sections/{section_id}/items", s.handleAddItem)
	mux.HandleFunc("PUT /jobs/{job_id}/sections/{section_id}/items/{n}", s.handleUpdateItem)
	mux.HandleFunc("DELETE /jobs/{job_id}/sections/{section_id}/items/{n}", s.handleDeleteItem)

	// Custom content override
	mux.HandleFunc("GET /jobs/{job_id}/custom-content", s.handleGetCustomContent)
	mux.HandleFunc("PUT /jobs/{job_id}/custom-content", s.handlePutCustomContent)
	mux.HandleFunc("DELETE /jobs/{job_id}/custom-content", s.handleResetCustomContent)

	// Findings
	mux.HandleFunc("GET /jobs/{job_id}/findings", s.handleListFindings)
	mux.HandleFunc("POST /jobs/{job_id}/findings/migrate", s.handleMigrateFindings)
	mux.HandleFunc("PATCH /jobs/{job_id}/findings/{finding_id}", s.handleUpdateFinding)
	mux.HandleFunc("POST /jobs/{job_id}/categories", s.handleAddCategory)
	mux.HandleFunc("PUT /jobs/{job_id}/categories/{category_id}", s.handleRenameCategory)
	mux.HandleFunc("DELETE /jobs/{job_id}/categories/{category_id}", s.handleDeleteCategory)
	mux.HandleFunc("POST /jobs/{job_id}/categories/{category_id}/move", s.handleMoveCategory)
	mux.HandleFunc("POST /jobs/{job_id}/categories/{category_id}/findings", s.handleAddFinding)
	mux.HandleFunc("DELETE /jobs/{job_id}/categories/{category_id}/findings/{finding_id}", s.handleDeleteFinding)
	mux.HandleFunc("POST /jobs/{job_id}/categories/{category_id}/findings/{finding_id}/move", s.handleMoveFinding)

	// Recommendations
	mux.HandleFunc("POST /jobs/{job_id}/findings/{finding_id}/recommendations", s.handleAddRecommendation)
	mux.HandleFunc("PATCH /jobs/{job_id}/findings/{finding_id}/recommendations/{recommendation_id}", s.handleUpdateRecommendation)
	mux.HandleFunc("DELETE /jobs/{job_id}/findings/{finding_id}/recommendations/{recommendation_id}", s.handleDeleteRecommendation)

	// Reports
	mux.HandleFunc("GET /jobs/{job_id}/report", s.handleReport)

	return s.withLogging(s.withCORS(mux))
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status and writes it
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		s.errorResponse(w, status, "internal server error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

// decode reads a JSON body into dst and validates its struct tags
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	if err := s.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &ErrValidation{Field: fe.Field(), Message: fmt.Sprintf("failed '%s' check", fe.Tag())}
		}
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

// update runs fn on a job document. found reports whether the addressed
// resource exists; a false result becomes ErrNotFound.
func (s *Server) update(r *http.Request, jobID, resource, id string, fn func(doc *jobdata.Document) (found bool)) error {
	found := false
	_, err := s.editor.Update(r.Context(), jobID, func(doc *jobdata.Document) bool {
		found = fn(doc)
		return found
	})
	if err != nil {
		return err
	}
	if !found {
		return &ErrNotFound{Resource: resource, ID: id}
	}
	return nil
}

func (s *Server) renderer(format string) (rendering.Renderer, error) {
	if format == "" {
		format = "json"
	}
	r, err := rendering.ForFormat(format)
	if err != nil {
		return nil, err
	}
	switch v := r.(type) {
	case *rendering.LaTeXRenderer:
		v.TemplatePath = s.cfg.LaTeXTemplate
		v.Font = s.cfg.LaTeXFont
	case *rendering.XLSXRenderer:
		v.EmbedImages = s.cfg.EmbedImages
	}
	return r, nil
}
