package server

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jonathan/inspection-reports/internal/rendering"
)

// handleReport assembles a job's report and renders it in the format given
// by ?format= (json, tex or xlsx; json by default)
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	renderer, err := s.renderer(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	jobID := r.PathValue("job_id")
	report, err := s.assembler.Assemble(r.Context(), jobID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(report.Skipped) > 0 {
		s.logger.Debug("report assembled with skipped parts",
			slog.String("job_id", jobID),
			slog.Int("skipped", len(report.Skipped)))
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, report); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", renderer.ContentType())
	if _, ok := renderer.(*rendering.JSONRenderer); !ok {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", jobID+renderer.Extension()))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Error("failed to write report", slog.String("job_id", jobID), slog.Any("error", err))
	}
}
