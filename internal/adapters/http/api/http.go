// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/outreach/internal/adapters/mq/worker"
	"github.com/okian/outreach/internal/adapters/repository"
	"github.com/okian/outreach/internal/campaign"
	"github.com/okian/outreach/internal/domain/model"
	"github.com/okian/outreach/internal/domain/ratelimit"
	"github.com/okian/outreach/internal/domain/relevance"
	"github.com/okian/outreach/internal/domain/report"
	"github.com/okian/outreach/internal/domain/scoring"
	"github.com/okian/outreach/internal/domain/types"
)

const defaultMaxBodyBytes = 8 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider
	ReportSource

	RankPosts(ctx context.Context, req types.RankRequest) []types.RankedPost
	CommentOpportunities(ctx context.Context, posts []model.Post, maxResults *int) []scoring.CommentOpportunity
	Report(ctx context.Context, posts []model.Post) report.Report
	RankProfiles(ctx context.Context, criteria *model.Criteria, topN *int, profiles []model.Profile) []relevance.RankedProfile

	LimiterStatus() (ratelimit.Status, error)
	CheckAdmission(k ratelimit.Kind) (types.Admission, error)
	RecordAction(ctx context.Context, k ratelimit.Kind, target string) (types.Admission, error)
	ResetSession(ctx context.Context) (ratelimit.Status, error)
	Actions(ctx context.Context, runID string, limit int) ([]repository.Action, error)

	SubmitJob(ctx context.Context, j campaign.Job) (worker.JobStatus, error)
	Job(id string) (worker.JobStatus, bool)
	Jobs() []worker.JobStatus
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps         Dependencies
	maxBodyBytes int64

	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	dashboardHandler *dashboardHandler
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithMaxBodyBytes caps JSON request bodies.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	s := &Server{
		deps:             deps,
		maxBodyBytes:     defaultMaxBodyBytes,
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(deps),
		dashboardHandler: newDashboardHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /dashboard", MetricsMiddleware(s.dashboardHandler.HandleDashboard, "dashboard"))

	mux.HandleFunc("POST /posts/rank", MetricsMiddleware(s.handleRankPosts, "posts_rank"))
	mux.HandleFunc("POST /posts/comment-opportunities", MetricsMiddleware(s.handleCommentOpportunities, "posts_comment_opportunities"))
	mux.HandleFunc("POST /posts/report", MetricsMiddleware(s.handleReport, "posts_report"))
	mux.HandleFunc("POST /profiles/rank", MetricsMiddleware(s.handleRankProfiles, "profiles_rank"))

	mux.HandleFunc("GET /pacer/status", MetricsMiddleware(s.handlePacerStatus, "pacer_status"))
	mux.HandleFunc("GET /pacer/admit/{kind}", MetricsMiddleware(s.handleAdmit, "pacer_admit"))
	mux.HandleFunc("POST /pacer/record/{kind}", MetricsMiddleware(s.handleRecord, "pacer_record"))
	mux.HandleFunc("POST /pacer/reset", MetricsMiddleware(s.handleReset, "pacer_reset"))

	mux.HandleFunc("POST /campaigns/comments", MetricsMiddleware(s.handleCommentCampaign, "campaigns_comments"))
	mux.HandleFunc("POST /campaigns/messages", MetricsMiddleware(s.handleMessageCampaign, "campaigns_messages"))
	mux.HandleFunc("GET /campaigns", MetricsMiddleware(s.handleListCampaigns, "campaigns_list"))
	mux.HandleFunc("GET /campaigns/{id}", MetricsMiddleware(s.handleGetCampaign, "campaigns_get"))
	mux.HandleFunc("GET /actions", MetricsMiddleware(s.handleActions, "actions"))
}

// Handler returns a mux with every route, wrapped with request IDs.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	s.Register(ctx, mux)
	return RequestIDMiddleware(mux)
}

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg, RequestID: w.Header().Get(HeaderRequestID)})
}

// decodeJSON reads one JSON body into v, bounded by the server's size cap.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return fmt.Errorf("body exceeds %d bytes", tooBig.Limit)
		}
		return err
	}
	return nil
}

// writeServiceError maps service failures to status codes.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrInvalidLimit),
		errors.Is(err, campaign.ErrNoComments),
		errors.Is(err, campaign.ErrNoTemplate),
		errors.Is(err, campaign.ErrUnknownJobKind):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, types.ErrQueueFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, types.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrUnavailable, err))
	}
}
