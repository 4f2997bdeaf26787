package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/outreach/internal/domain/ratelimit"
)

type recordRequest struct {
	Target string `json:"target,omitempty"`
}

func pathKind(r *http.Request) (ratelimit.Kind, error) {
	name := r.PathValue("kind")
	k, ok := ratelimit.ParseKind(name)
	if !ok {
		return 0, fmt.Errorf("unknown action kind %q", name)
	}
	return k, nil
}

// handlePacerStatus handles GET /pacer/status.
func (s *Server) handlePacerStatus(w http.ResponseWriter, _ *http.Request) {
	st, err := s.deps.LimiterStatus()
	if err != nil {
		writeServiceError(w, "api.pacer_status", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleAdmit handles GET /pacer/admit/{kind}. It never records.
func (s *Server) handleAdmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.pacer_admit"
	k, err := pathKind(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	a, err := s.deps.CheckAdmission(k)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// handleRecord handles POST /pacer/record/{kind}. A refused action answers
// 429 with Retry-After when waiting would help. The body is optional.
func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	const op = "api.pacer_record"
	k, err := pathKind(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	var req recordRequest
	if r.ContentLength != 0 {
		if err := s.decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
	}

	a, err := s.deps.RecordAction(r.Context(), k, req.Target)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if !a.Allowed {
		if a.RetryAfterSeconds > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(a.RetryAfterSeconds)))
		}
		writeError(w, http.StatusTooManyRequests, "rate_limited",
			WrapKind(op, ErrRateLimited, fmt.Errorf("%s budget exhausted", a.Kind)))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// handleReset handles POST /pacer/reset.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.ResetSession(r.Context())
	if err != nil {
		writeServiceError(w, "api.pacer_reset", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
