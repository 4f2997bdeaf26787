package api

import (
	"bytes"
	"net/http"
	"time"

	"github.com/okian/outreach/internal/domain/report"
)

// ReportSource exposes the most recent aggregate report.
type ReportSource interface {
	LastReport() (report.Report, time.Time, error)
}

type dashboardHandler struct {
	reports ReportSource
}

func newDashboardHandler(reports ReportSource) *dashboardHandler {
	return &dashboardHandler{reports: reports}
}

// HandleDashboard handles GET /dashboard with charts of the latest report.
// Until a report exists it answers 404.
func (h *dashboardHandler) HandleDashboard(w http.ResponseWriter, _ *http.Request) {
	const op = "api.dashboard"
	rep, at, err := h.reports.LastReport()
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
		return
	}
	var page bytes.Buffer
	if err := report.RenderHTML(&page, rep); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrUnavailable, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Last-Modified", at.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	_, _ = page.WriteTo(w)
}
