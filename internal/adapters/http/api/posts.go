package api

import (
	"net/http"

	"github.com/okian/outreach/internal/domain/model"
	"github.com/okian/outreach/internal/domain/types"
)

type commentOpportunitiesRequest struct {
	MaxResults *int         `json:"max_results,omitempty"`
	Posts      []model.Post `json:"posts"`
}

type postsRequest struct {
	Posts []model.Post `json:"posts"`
}

type rankProfilesRequest struct {
	Criteria *model.Criteria `json:"criteria,omitempty"`
	TopN     *int            `json:"top_n,omitempty"`
	Profiles []model.Profile `json:"profiles"`
}

// handleRankPosts handles POST /posts/rank.
func (s *Server) handleRankPosts(w http.ResponseWriter, r *http.Request) {
	const op = "api.rank_posts"
	var req types.RankRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, s.deps.RankPosts(r.Context(), req))
}

// handleCommentOpportunities handles POST /posts/comment-opportunities.
func (s *Server) handleCommentOpportunities(w http.ResponseWriter, r *http.Request) {
	const op = "api.comment_opportunities"
	var req commentOpportunitiesRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, s.deps.CommentOpportunities(r.Context(), req.Posts, req.MaxResults))
}

// handleReport handles POST /posts/report.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.report"
	var req postsRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Report(r.Context(), req.Posts))
}

// handleRankProfiles handles POST /profiles/rank.
func (s *Server) handleRankProfiles(w http.ResponseWriter, r *http.Request) {
	const op = "api.rank_profiles"
	var req rankProfilesRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, s.deps.RankProfiles(r.Context(), req.Criteria, req.TopN, req.Profiles))
}
