package api

import (
	"net/http"
	"strconv"

	"github.com/okian/outreach/internal/campaign"
	"github.com/okian/outreach/internal/domain/relevance"
	"github.com/okian/outreach/internal/domain/scoring"
)

type commentCampaignRequest struct {
	Targets  []scoring.CommentOpportunity `json:"targets"`
	Comments []string                     `json:"comments"`
	Limit    int                          `json:"limit"`
}

type messageCampaignRequest struct {
	Profiles []relevance.RankedProfile `json:"profiles"`
	Template string                    `json:"template"`
	Limit    int                       `json:"limit"`
}

// handleCommentCampaign handles POST /campaigns/comments.
func (s *Server) handleCommentCampaign(w http.ResponseWriter, r *http.Request) {
	const op = "api.campaign_comments"
	var req commentCampaignRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	s.submit(w, r, op, campaign.NewCommentJob(req.Targets, req.Comments, req.Limit))
}

// handleMessageCampaign handles POST /campaigns/messages.
func (s *Server) handleMessageCampaign(w http.ResponseWriter, r *http.Request) {
	const op = "api.campaign_messages"
	var req messageCampaignRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	s.submit(w, r, op, campaign.NewMessageJob(req.Profiles, req.Template, req.Limit))
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request, op string, j campaign.Job) { //nolint:gocritic // hugeParam: jobs travel by value
	st, err := s.deps.SubmitJob(r.Context(), j)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.Header().Set("Location", "/campaigns/"+st.ID)
	writeJSON(w, http.StatusAccepted, st)
}

// handleListCampaigns handles GET /campaigns.
func (s *Server) handleListCampaigns(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Jobs())
}

// handleGetCampaign handles GET /campaigns/{id}.
func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	const op = "api.campaign_get"
	st, ok := s.deps.Job(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleActions handles GET /actions?run_id=&limit=.
func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	const op = "api.actions"
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		limit = n
	}
	actions, err := s.deps.Actions(r.Context(), r.URL.Query().Get("run_id"), limit)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, actions)
}
