package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/outreach/internal/adapters/mq/worker"
	service "github.com/okian/outreach/internal/app"
	"github.com/okian/outreach/internal/campaign"
	"github.com/okian/outreach/internal/config"
	"github.com/okian/outreach/internal/domain/model"
	"github.com/okian/outreach/internal/domain/pacing"
	"github.com/okian/outreach/internal/domain/ratelimit"
	"github.com/okian/outreach/internal/domain/types"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func noSleep(context.Context, time.Duration) error { return nil }

func newService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	base := []service.Option{
		service.WithDataDir(t.TempDir()),
		service.WithClock(func() time.Time { return fixedNow }),
		service.WithPacing(pacing.WithSleep(noSleep), pacing.WithBreakPolicy(1000, 0), pacing.WithSeed(1)),
	}
	return service.New(append(base, opts...)...)
}

func samplePosts() []model.Post {
	return []model.Post{
		{ID: "1", URL: "https://x/p/1", Title: "AI tooling", Content: "Building agents with AI", Likes: 40, Comments: 8, PostedRelative: "2h", Category: "tech"},
		{ID: "2", URL: "https://x/p/2", Title: "Weekend", Content: "Hiking photos", Likes: 2, Comments: 0, PostedRelative: "3w", Category: "life"},
		{ID: "3", URL: "https://x/p/3", Title: "Growth", Content: "Growth loops for AI startups", Likes: 120, Comments: 30, PostedRelative: "5h"},
		{ID: "1", URL: "https://x/p/1", Title: "AI tooling", Content: "dup"},
	}
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := newService(t)

		Convey("Operations needing state fail before Start", func() {
			_, err := svc.LimiterStatus()
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldBeFalse)
		})

		Convey("Start and Stop are idempotent", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.GetStats()["started"], ShouldBeTrue)
			svc.Stop()
			svc.Stop()
			So(svc.GetStats()["started"], ShouldBeFalse)
		})
	})

	Convey("Given a data dir with a checkpoint", t, func() {
		dir := t.TempDir()
		first := newService(t, service.WithDataDir(dir), service.WithSession("s1"))
		So(first.Start(context.Background()), ShouldBeNil)
		_, err := first.RecordAction(context.Background(), ratelimit.KindMessage, "https://in/a")
		So(err, ShouldBeNil)
		first.Stop()

		Convey("A restarted service restores the limiter", func() {
			second := newService(t, service.WithDataDir(dir), service.WithSession("s1"))
			So(second.Start(context.Background()), ShouldBeNil)
			defer second.Stop()
			st, err := second.LimiterStatus()
			So(err, ShouldBeNil)
			So(st.MessagesToday, ShouldEqual, 1)
			So(st.ActionsThisHour, ShouldEqual, 1)
		})
	})
}

func TestService_Scoring(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newService(t, service.WithTopN(2))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		ctx := context.Background()

		Convey("RankPosts drops in-batch repeats and truncates to the default top N", func() {
			out := svc.RankPosts(ctx, types.RankRequest{Mode: "engagement", Posts: samplePosts()})
			So(out, ShouldHaveLength, 2)
			So(out[0].Rank, ShouldEqual, 1)
			So(out[0].Post.ID, ShouldEqual, "3")
			So(out[0].Final, ShouldBeGreaterThanOrEqualTo, out[1].Final)
		})

		Convey("An explicit zero top N yields nothing", func() {
			zero := 0
			So(svc.RankPosts(ctx, types.RankRequest{TopN: &zero, Posts: samplePosts()}), ShouldBeEmpty)
		})

		Convey("Ranking is repeatable across calls", func() {
			a := svc.RankPosts(ctx, types.RankRequest{Posts: samplePosts()})
			b := svc.RankPosts(ctx, types.RankRequest{Posts: samplePosts()})
			So(b, ShouldResemble, a)
		})

		Convey("Reports are kept for the dashboard", func() {
			_, _, err := svc.LastReport()
			So(errors.Is(err, service.ErrNoReport), ShouldBeTrue)

			r := svc.Report(ctx, samplePosts())
			So(r.TotalPosts, ShouldEqual, 3)
			last, at, err := svc.LastReport()
			So(err, ShouldBeNil)
			So(last.TotalPosts, ShouldEqual, 3)
			So(at, ShouldEqual, fixedNow)
		})

		Convey("RankProfiles uses the supplied criteria", func() {
			c := model.Criteria{Titles: []string{"cto"}, ConnectionDegrees: []model.ConnectionDegree{model.DegreeFirst}}
			out := svc.RankProfiles(ctx, &c, nil, []model.Profile{
				{ID: "a", Title: "Marketing lead", Degree: model.DegreeFirst},
				{ID: "b", Title: "CTO", Degree: model.DegreeFirst},
			})
			So(out, ShouldHaveLength, 2)
			So(out[0].Profile.ID, ShouldEqual, "b")
		})
	})
}

func TestService_Admission(t *testing.T) {
	Convey("Given a service allowing one message a day", t, func() {
		limits := ratelimit.DefaultLimits()
		limits.MessagesPerDay = 1
		svc := newService(t, service.WithLimits(limits))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		ctx := context.Background()

		Convey("The first message is recorded and journaled", func() {
			a, err := svc.RecordAction(ctx, ratelimit.KindMessage, "https://in/a")
			So(err, ShouldBeNil)
			So(a.Allowed, ShouldBeTrue)

			actions, err := svc.Actions(ctx, "", 10)
			So(err, ShouldBeNil)
			So(actions, ShouldHaveLength, 1)
			So(actions[0].Target, ShouldEqual, "https://in/a")

			Convey("The second is refused with no retry hint", func() {
				a, err := svc.RecordAction(ctx, ratelimit.KindMessage, "https://in/b")
				So(err, ShouldBeNil)
				So(a.Allowed, ShouldBeFalse)
				So(a.RetryAfterSeconds, ShouldEqual, 0)

				check, err := svc.CheckAdmission(ratelimit.KindMessage)
				So(err, ShouldBeNil)
				So(check.Allowed, ShouldBeFalse)
			})
		})

		Convey("Reset clears the session profile count", func() {
			_, err := svc.RecordAction(ctx, ratelimit.KindProfile, "")
			So(err, ShouldBeNil)
			st, err := svc.ResetSession(ctx)
			So(err, ShouldBeNil)
			So(st.ProfilesThisSession, ShouldEqual, 0)
		})
	})
}

func waitForJob(svc *service.Service, id string) worker.JobStatus {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if st, ok := svc.Job(id); ok && (st.State == worker.StateDone || st.State == worker.StateFailed) {
			return st
		}
		time.Sleep(5 * time.Millisecond)
	}
	st, _ := svc.Job(id)
	return st
}

func TestService_Jobs(t *testing.T) {
	Convey("Given a started service with the dry-run actor", t, func() {
		svc := newService(t)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		ctx := context.Background()

		Convey("A comment job runs to completion and consumes budget", func() {
			targets := svc.CommentOpportunities(ctx, samplePosts(), nil)
			So(targets, ShouldNotBeEmpty)
			j := campaign.NewCommentJob(targets, []string{"Great point"}, 1)

			st, err := svc.SubmitJob(ctx, j)
			So(err, ShouldBeNil)
			So(st.State, ShouldEqual, worker.StateQueued)

			done := waitForJob(svc, j.ID)
			So(done.State, ShouldEqual, worker.StateDone)
			So(done.Summary[campaign.StatusDone], ShouldEqual, 1)

			status, err := svc.LimiterStatus()
			So(err, ShouldBeNil)
			So(status.CommentsToday, ShouldEqual, 1)
			So(svc.Jobs(), ShouldHaveLength, 1)

			actions, err := svc.Actions(ctx, j.ID, 0)
			So(err, ShouldBeNil)
			So(actions, ShouldHaveLength, 1)
		})

		Convey("Invalid jobs are rejected before queueing", func() {
			_, err := svc.SubmitJob(ctx, campaign.NewCommentJob(nil, nil, 0))
			So(errors.Is(err, campaign.ErrNoComments), ShouldBeTrue)
			So(svc.Jobs(), ShouldBeEmpty)
		})
	})
}

func TestService_FromConfig(t *testing.T) {
	Convey("Given the default config", t, func() {
		cfg := config.New()
		cfg.DataDir = t.TempDir()
		opts, err := service.FromConfig(cfg)
		So(err, ShouldBeNil)

		Convey("The service starts with it", func() {
			svc := service.New(append(opts, service.WithPacing(pacing.WithSleep(noSleep)))...)
			So(svc.Start(context.Background()), ShouldBeNil)
			defer svc.Stop()
			So(svc.GetStats()["mode"], ShouldEqual, "balanced")
		})

		Convey("A missing keywords file is an error", func() {
			cfg.Scoring.KeywordsFile = "/nonexistent/keywords.csv"
			_, err := service.FromConfig(cfg)
			So(err, ShouldNotBeNil)
		})
	})
}
