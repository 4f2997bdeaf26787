package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "outreach")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors carry the configured names", func() {
				manager.RecordPostsScored("balanced", 3)
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var found bool
				for _, f := range families {
					if f.GetName() == "test_unit_posts_scored_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
				So(testutil.ToFloat64(manager.postsScored.WithLabelValues("balanced")), ShouldEqual, 3)
			})
		})

		Convey("When metrics are disabled", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry), WithMetricsEnabled(false))
			manager.RecordAdmission("comment", true)

			Convey("Then nothing is counted", func() {
				So(testutil.ToFloat64(manager.admissions.WithLabelValues("comment", "allowed")), ShouldEqual, 0)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Admissions are split by result", func() {
			before := testutil.ToFloat64(globalManager.admissions.WithLabelValues("message", "denied"))
			RecordAdmission("message", false)
			So(testutil.ToFloat64(globalManager.admissions.WithLabelValues("message", "denied")), ShouldEqual, before+1)
		})

		Convey("Limiter gauges reflect the last published usage", func() {
			UpdateLimiterUsage(4, 10, 2, 3)
			So(testutil.ToFloat64(globalManager.hourlyActions), ShouldEqual, 4)
			So(testutil.ToFloat64(globalManager.profilesSession), ShouldEqual, 10)
			So(testutil.ToFloat64(globalManager.messagesToday), ShouldEqual, 2)
			So(testutil.ToFloat64(globalManager.commentsToday), ShouldEqual, 3)
		})

		Convey("Recording functions never panic", func() {
			So(func() {
				RecordPostsScored("topic", 5)
				RecordProfileScored("prospect")
				RecordCommentTargets(2)
				RecordScoringLatency("rank_posts", 0.4)
				RecordReportGenerated()
				RecordDuplicate()
				RecordActionRecorded("comment")
				RecordCampaignOutcome("comment", "done")
				RecordBreak()
				RecordJob("enqueued")
				UpdateJobQueueDepth(1)
				RecordJobDuration(2.5)
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
				RecordHTTPRequest("/posts/rank", "POST", "200")
				RecordHTTPRequestDuration("/posts/rank", "POST", "200", 1.2)
				RecordErrorByEndpoint("/posts/rank", "POST", "bad_request")
			}, ShouldNotPanic)
		})

		Convey("The custom registry is exposed", func() {
			So(GetRegistry(), ShouldNotBeNil)
			_, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
		})
	})
}
