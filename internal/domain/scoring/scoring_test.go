package scoring_test

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/okian/outreach/internal/domain/model"
	"github.com/okian/outreach/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func ago(d time.Duration) string { return now.Add(-d).Format(time.RFC3339) }

func TestScorer_Scenarios(t *testing.T) {
	Convey("Given a balanced scorer without keywords", t, func() {
		s := scoring.New(scoring.WithClock(clock))

		Convey("When scoring a fresh, lightly commented post", func() {
			got := s.Score(model.Post{Likes: 10, Comments: 1, PostedAt: ago(time.Hour)})

			Convey("Then each sub-score and the final score match the tables", func() {
				So(got.SubScores, ShouldResemble, scoring.SubScores{Recency: 1.0, Opportunity: 1.0, Visibility: 0.7, Topic: 0.5})
				So(got.Final, ShouldEqual, 0.8)
				So(got.Rationale, ShouldResemble, []string{"fresh post", "low competition", "high visibility"})
				So(got.Recommendation, ShouldEqual, "Good: fresh post, low competition, high visibility")
			})
		})
	})

	Convey("Given a topic scorer with keywords", t, func() {
		s := scoring.New(
			scoring.WithClock(clock),
			scoring.WithMode(scoring.ModeTopic),
			scoring.WithKeywords([]string{"AI", "automation"}),
		)

		Convey("When the post is just under three days old with no engagement", func() {
			got := s.Score(model.Post{Title: "AI automation tips", PostedAt: ago(71*time.Hour + 59*time.Minute)})

			Convey("Then the topic formula applies", func() {
				So(got.SubScores.Topic, ShouldEqual, 0.8)
				So(got.SubScores.Recency, ShouldEqual, 0.3)
				So(got.SubScores.Opportunity, ShouldEqual, 0.6)
				So(got.Final, ShouldEqual, 0.61)
				So(got.Recommendation, ShouldEqual, "Good: matches your expertise")
			})
		})

		Convey("When only a relative token is known", func() {
			got := s.Score(model.Post{Title: "AI automation tips", PostedRelative: "2d"})
			So(got.Final, ShouldEqual, 0.61)
		})

		Convey("When the post is exactly three days old it falls into the last step", func() {
			got := s.Score(model.Post{Title: "AI automation tips", PostedAt: ago(72 * time.Hour)})
			So(got.SubScores.Recency, ShouldEqual, 0.1)
			So(got.Final, ShouldEqual, 0.55)
		})
	})

	Convey("Given a post with nothing notable", t, func() {
		got := scoring.New(scoring.WithClock(clock)).Score(model.Post{Comments: 6, Likes: 2, PostedAt: ago(100 * time.Hour)})

		Convey("Then the recommendation is average", func() {
			So(got.Rationale, ShouldBeEmpty)
			So(got.Recommendation, ShouldEqual, "Average opportunity")
		})
	})
}

func TestCombine(t *testing.T) {
	Convey("Given fixed sub-scores", t, func() {
		sub := scoring.SubScores{Recency: 0.9, Opportunity: 0.6, Visibility: 0.3, Topic: 0.2}

		So(scoring.Combine(scoring.ModeRecent, sub), ShouldAlmostEqual, 0.45+0.24+0.02)
		So(scoring.Combine(scoring.ModeEngagement, sub), ShouldAlmostEqual, 0.15+0.18+0.06)
		So(scoring.Combine(scoring.ModeTopic, sub), ShouldAlmostEqual, 0.1+0.27+0.12)
		So(scoring.Combine(scoring.ModeBalanced, sub), ShouldAlmostEqual, 0.5)
	})

	Convey("Unknown modes fall back to balanced", t, func() {
		So(scoring.ParseMode("viral"), ShouldEqual, scoring.ModeBalanced)
		So(scoring.ParseMode(" Recent "), ShouldEqual, scoring.ModeRecent)

		var m scoring.Mode
		So(json.Unmarshal([]byte(`"nonsense"`), &m), ShouldBeNil)
		So(m, ShouldEqual, scoring.ModeBalanced)
		So(json.Unmarshal([]byte(`"engagement"`), &m), ShouldBeNil)
		So(m, ShouldEqual, scoring.ModeEngagement)
		for _, mode := range scoring.Modes {
			So(scoring.ParseMode(mode.String()), ShouldEqual, mode)
		}
	})
}

func TestScorer_Rank(t *testing.T) {
	Convey("Given many random posts", t, func() {
		rng := rand.New(rand.NewSource(7))
		posts := make([]model.Post, 200)
		for i := range posts {
			posts[i] = model.Post{
				ID:       fmt.Sprintf("p%d", i),
				Likes:    model.Count(rng.Intn(120)),
				Comments: model.Count(rng.Intn(40)),
				PostedAt: ago(time.Duration(rng.Intn(200)) * time.Hour),
				Title:    []string{"ai", "sales", "ai automation", ""}[rng.Intn(4)],
			}
		}

		for _, mode := range scoring.Modes {
			ranked := scoring.New(scoring.WithClock(clock), scoring.WithMode(mode), scoring.WithKeywords([]string{"ai"})).Rank(posts)

			So(len(ranked), ShouldEqual, len(posts))
			for i, r := range ranked {
				So(r.Final, ShouldBeBetweenOrEqual, 0.0, 1.0)
				for _, v := range r.SubScores.Map() {
					So(v, ShouldBeBetweenOrEqual, 0.0, 1.0)
				}
				if i > 0 {
					So(ranked[i-1].Final, ShouldBeGreaterThanOrEqualTo, r.Final)
				}
			}
		}
	})

	Convey("Given posts with identical scores", t, func() {
		posts := []model.Post{{ID: "a"}, {ID: "b", Likes: 10, Comments: 1}, {ID: "c"}, {ID: "d"}}
		ranked := scoring.New(scoring.WithClock(clock)).Rank(posts)

		Convey("Then ties keep input order", func() {
			ids := make([]string, len(ranked))
			for i, r := range ranked {
				ids[i] = r.Post.ID
			}
			So(ids, ShouldResemble, []string{"b", "a", "c", "d"})
		})

		Convey("And scoring never mutates the input", func() {
			So(posts[0], ShouldResemble, model.Post{ID: "a"})
		})
	})

	Convey("Given posts whose scores differ only by float noise", t, func() {
		// 0.25*(0.7+0.2+0.9+0.2) and 0.25*(0.9+0.6+0.3+0.2) both print as 0.5.
		posts := []model.Post{
			{ID: "crowded", Comments: 30, PostedAt: ago(20 * time.Hour)},
			{ID: "quiet", PostedAt: ago(3 * time.Hour)},
		}
		ranked := scoring.New(scoring.WithClock(clock), scoring.WithKeywords([]string{"zebra"})).Rank(posts)

		Convey("Then equal published scores keep input order", func() {
			So(ranked[0].Final, ShouldEqual, 0.5)
			So(ranked[1].Final, ShouldEqual, 0.5)
			So(ranked[0].Post.ID, ShouldEqual, "crowded")
			So(ranked[1].Post.ID, ShouldEqual, "quiet")
		})
	})

	Convey("Given top-n truncation", t, func() {
		ranked := scoring.New(scoring.WithClock(clock)).Rank([]model.Post{{ID: "a"}, {ID: "b"}})

		So(scoring.TopN(ranked, 1), ShouldHaveLength, 1)
		So(scoring.TopN(ranked, 5), ShouldHaveLength, 2)
		So(scoring.TopN(ranked, 0), ShouldBeEmpty)
		So(scoring.TopN(ranked, -3), ShouldBeEmpty)
		So(scoring.New().Rank(nil), ShouldBeEmpty)
	})
}

func TestFindCommentOpportunities(t *testing.T) {
	Convey("Given a post in the sweet spot", t, func() {
		p := model.Post{ID: "sweet", Likes: 50, Comments: 2, PostedRelative: "2h"}
		got := scoring.ScoreCommentOpportunity(p, now)

		Convey("Then every component contributes", func() {
			So(got.Score, ShouldAlmostEqual, 0.285+0.35+0.2*52.0/500+0.15, 1e-9)
			So(got.Reasons, ShouldResemble, []string{
				"Recent post", "Good engagement opportunity", "High visibility post", "Low comment ratio",
			})
		})
	})

	Convey("Given a post with no signals", t, func() {
		got := scoring.ScoreCommentOpportunity(model.Post{ID: "cold"}, now)

		So(got.Score, ShouldAlmostEqual, 0.15+0.105, 1e-9)
		So(got.Reasons, ShouldBeEmpty)
	})

	Convey("Given only an absolute timestamp", t, func() {
		got := scoring.ScoreCommentOpportunity(model.Post{PostedAt: ago(time.Hour)}, now)
		So(got.Reasons, ShouldContain, "Recent post")
	})

	Convey("Given a batch", t, func() {
		posts := []model.Post{
			{ID: "cold"},
			{ID: "sweet", Likes: 50, Comments: 2, PostedRelative: "2h"},
			{ID: "cold2"},
			{ID: "crowded", Likes: 20, Comments: 80, PostedRelative: "1w"},
		}

		Convey("Then results are sorted, stable and truncated", func() {
			got := scoring.FindCommentOpportunities(posts, 3, now)
			So(got, ShouldHaveLength, 3)
			So(got[0].Post.ID, ShouldEqual, "sweet")
			So(got[1].Post.ID, ShouldEqual, "cold")
			So(got[2].Post.ID, ShouldEqual, "cold2")
			for _, o := range got {
				So(o.Score, ShouldBeBetweenOrEqual, 0.0, 1.0)
			}
		})

		Convey("And a non-positive limit yields nothing", func() {
			So(scoring.FindCommentOpportunities(posts, 0, now), ShouldBeEmpty)
		})
	})
}
