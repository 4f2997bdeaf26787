package service

import (
	"context"
	"time"

	"github.com/okian/outreach/internal/domain/dedupe"
	"github.com/okian/outreach/internal/domain/model"
	"github.com/okian/outreach/internal/domain/relevance"
	"github.com/okian/outreach/internal/domain/report"
	"github.com/okian/outreach/internal/domain/scoring"
	"github.com/okian/outreach/internal/domain/types"
	"github.com/okian/outreach/pkg/logger"
	"github.com/okian/outreach/pkg/metrics"
)

func orDefault(n *int, def int) int {
	if n == nil {
		return def
	}
	return *n
}

// uniquePosts drops repeats inside one batch. The service-wide seen-set is
// reserved for campaign targets, so ranking stays repeatable.
func uniquePosts(ctx context.Context, posts []model.Post) []model.Post {
	out, dropped := dedupe.Posts(ctx, dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(len(posts)+1)), posts)
	for range dropped {
		metrics.RecordDuplicate()
	}
	return out
}

func uniqueProfiles(ctx context.Context, profiles []model.Profile) []model.Profile {
	out, dropped := dedupe.Profiles(ctx, dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(len(profiles)+1)), profiles)
	for range dropped {
		metrics.RecordDuplicate()
	}
	return out
}

func since(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}

// RankPosts scores posts as engagement opportunities and returns the top N.
func (s *Service) RankPosts(ctx context.Context, req types.RankRequest) []types.RankedPost {
	start := time.Now()
	mode := s.mode
	if req.Mode != "" {
		mode = scoring.ParseMode(req.Mode)
	}
	keywords := s.keywords
	if len(req.Keywords) > 0 {
		keywords = req.Keywords
	}

	posts := uniquePosts(ctx, req.Posts)
	scorer := scoring.New(scoring.WithMode(mode), scoring.WithKeywords(keywords), scoring.WithClock(s.now))
	top := scoring.TopN(scorer.Rank(posts), orDefault(req.TopN, s.topN))

	out := types.Ranked(top)

	metrics.RecordPostsScored(mode.String(), len(posts))
	metrics.RecordScoringLatency("rank_posts", since(start))
	s.logger.Debug(ctx, "ranked posts",
		logger.String("mode", mode.String()),
		logger.Int("in", len(req.Posts)),
		logger.Int("out", len(out)))
	return out
}

// CommentOpportunities returns posts in the comment sweet spot, best first.
func (s *Service) CommentOpportunities(ctx context.Context, posts []model.Post, maxResults *int) []scoring.CommentOpportunity {
	start := time.Now()
	out := scoring.FindCommentOpportunities(uniquePosts(ctx, posts), orDefault(maxResults, s.maxComments), s.now())
	metrics.RecordCommentTargets(len(out))
	metrics.RecordScoringLatency("comment_opportunities", since(start))
	return out
}

// RankProfiles scores profiles against criteria, or the service default when
// criteria is nil.
func (s *Service) RankProfiles(ctx context.Context, criteria *model.Criteria, topN *int, profiles []model.Profile) []relevance.RankedProfile {
	start := time.Now()
	c := s.criteria
	if criteria != nil {
		c = *criteria
	}
	ranked := relevance.NewAnalyzer(c).Rank(uniqueProfiles(ctx, profiles), orDefault(topN, s.topN))
	for _, rp := range ranked {
		metrics.RecordProfileScored(string(rp.Category))
	}
	metrics.RecordScoringLatency("rank_profiles", since(start))
	return ranked
}

// Report aggregates posts and keeps the result for the dashboard.
func (s *Service) Report(ctx context.Context, posts []model.Post) report.Report {
	r := report.Analyze(uniquePosts(ctx, posts))
	s.mu.Lock()
	s.lastReport = &r
	s.lastReportAt = s.now()
	s.mu.Unlock()
	metrics.RecordReportGenerated()
	return r
}

// LastReport returns the most recent report and when it was generated.
func (s *Service) LastReport() (report.Report, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastReport == nil {
		return report.Report{}, time.Time{}, ErrNoReport
	}
	return *s.lastReport, s.lastReportAt, nil
}
