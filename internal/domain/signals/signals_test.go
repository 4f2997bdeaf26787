package signals_test

import (
	"testing"
	"time"

	"github.com/okian/outreach/internal/domain/model"
	"github.com/okian/outreach/internal/domain/signals"
	. "github.com/smartystreets/goconvey/convey"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func postedAgo(d time.Duration) model.Post {
	return model.Post{PostedAt: now.Add(-d).Format(time.RFC3339)}
}

func TestRecency(t *testing.T) {
	Convey("Given the absolute recency table", t, func() {
		Convey("Missing or unparseable timestamps are neutral", func() {
			So(signals.Recency(model.Post{}, now), ShouldEqual, 0.5)
			So(signals.Recency(model.Post{PostedAt: "last tuesday"}, now), ShouldEqual, 0.5)
		})

		Convey("1h59m and 2h01m straddle the first boundary", func() {
			So(signals.Recency(postedAgo(119*time.Minute), now), ShouldEqual, 1.0)
			So(signals.Recency(postedAgo(121*time.Minute), now), ShouldEqual, 0.9)
		})

		Convey("Upper bounds are exclusive", func() {
			bounds := []struct {
				at   time.Duration
				want float64
			}{
				{2 * time.Hour, 0.9},
				{6 * time.Hour, 0.8},
				{12 * time.Hour, 0.7},
				{24 * time.Hour, 0.5},
				{48 * time.Hour, 0.3},
				{72 * time.Hour, 0.1},
			}
			for _, b := range bounds {
				So(signals.RecencyForElapsed(b.at), ShouldEqual, b.want)
				So(signals.RecencyForElapsed(b.at-time.Nanosecond), ShouldBeGreaterThan, b.want)
			}
		})

		Convey("Each step of the table is reproduced", func() {
			cases := []struct {
				ago  time.Duration
				want float64
			}{
				{time.Hour, 1.0},
				{5 * time.Hour, 0.9},
				{11 * time.Hour, 0.8},
				{23 * time.Hour, 0.7},
				{47 * time.Hour, 0.5},
				{71*time.Hour + 59*time.Minute, 0.3},
				{72 * time.Hour, 0.1},
				{30 * 24 * time.Hour, 0.1},
			}
			for _, c := range cases {
				So(signals.Recency(postedAgo(c.ago), now), ShouldEqual, c.want)
			}
		})

		Convey("The score never increases as time passes", func() {
			prev := 1.0
			for m := 0; m <= 5*24*60; m += 7 {
				got := signals.RecencyForElapsed(time.Duration(m) * time.Minute)
				So(got, ShouldBeLessThanOrEqualTo, prev)
				prev = got
			}
		})

		Convey("Relative tokens are used when no absolute timestamp parses", func() {
			So(signals.Recency(model.Post{PostedRelative: "2d"}, now), ShouldEqual, 0.3)
			So(signals.Recency(model.Post{PostedRelative: "3d"}, now), ShouldEqual, 0.1)
			So(signals.Recency(model.Post{PostedRelative: "2mo"}, now), ShouldEqual, 0.1)
			So(signals.Recency(model.Post{PostedRelative: "45m"}, now), ShouldEqual, 1.0)
		})

		Convey("Future timestamps count as fresh", func() {
			So(signals.Recency(postedAgo(-time.Hour), now), ShouldEqual, 1.0)
		})
	})
}

func TestRelativeRecency(t *testing.T) {
	Convey("Given the coarse relative table", t, func() {
		cases := map[string]float64{
			"":                      0.5,
			"now":                   0.5,
			"30s":                   1.0,
			"15m":                   1.0,
			"6h":                    0.95,
			"7h":                    0.85,
			"12h":                   0.85,
			"24h":                   0.7,
			"25h":                   0.5,
			"1d":                    0.6,
			"3d":                    0.4,
			"7d":                    0.2,
			"8d":                    0.1,
			"2w":                    0.1,
			"2mo":                   0.05,
			"3 mo":                  0.05,
			"1y":                    0.05,
			" 4H ":                  0.95,
			"99999999999999999999h": 0.7,
		}
		for token, want := range cases {
			So(signals.RelativeRecency(token), ShouldEqual, want)
		}
	})

	Convey("Given relative tokens as durations", t, func() {
		d, ok := signals.ParseRelative("2mo")
		So(ok, ShouldBeTrue)
		So(d, ShouldEqual, 60*24*time.Hour)

		d, ok = signals.ParseRelative("1w")
		So(ok, ShouldBeTrue)
		So(d, ShouldEqual, 7*24*time.Hour)

		_, ok = signals.ParseRelative("soon")
		So(ok, ShouldBeFalse)
	})
}

func TestEngagementSignals(t *testing.T) {
	p := func(likes, comments int) model.Post {
		return model.Post{Likes: model.Count(likes), Comments: model.Count(comments)}
	}

	Convey("Given the engagement opportunity table", t, func() {
		So(signals.EngagementOpportunity(p(10, 1)), ShouldEqual, 1.0)
		So(signals.EngagementOpportunity(p(3, 5)), ShouldEqual, 0.8)
		So(signals.EngagementOpportunity(p(1, 3)), ShouldEqual, 0.7)
		So(signals.EngagementOpportunity(p(0, 0)), ShouldEqual, 0.6)
		So(signals.EngagementOpportunity(p(0, 21)), ShouldEqual, 0.2)
		So(signals.EngagementOpportunity(p(2, 10)), ShouldEqual, 0.5)
	})

	Convey("Given the visibility table", t, func() {
		So(signals.Visibility(p(40, 10)), ShouldEqual, 1.0)
		So(signals.Visibility(p(30, 0)), ShouldEqual, 0.9)
		So(signals.Visibility(p(15, 5)), ShouldEqual, 0.8)
		So(signals.Visibility(p(10, 1)), ShouldEqual, 0.7)
		So(signals.Visibility(p(5, 0)), ShouldEqual, 0.5)
		So(signals.Visibility(p(1, 1)), ShouldEqual, 0.3)
	})

	Convey("Given the sweet spot table", t, func() {
		So(signals.SweetSpot(p(50, 5)), ShouldEqual, 1.0)
		So(signals.SweetSpot(p(150, 15)), ShouldEqual, 0.8)
		So(signals.SweetSpot(p(1000, 100)), ShouldEqual, 0.6)
		So(signals.SweetSpot(p(0, 0)), ShouldEqual, 0.3)
		So(signals.SweetSpot(p(0, 60)), ShouldEqual, 0.2)
		So(signals.SweetSpot(p(2, 5)), ShouldEqual, 0.4)
	})
}

func TestTopic(t *testing.T) {
	Convey("Given keyword matching", t, func() {
		post := model.Post{Title: "AI automation tips", Content: "Scaling agents"}

		So(signals.Topic(post, nil), ShouldEqual, 0.5)
		So(signals.Topic(post, []string{"ai"}), ShouldEqual, 0.6)
		So(signals.Topic(post, []string{"ai", "automation"}), ShouldEqual, 0.8)
		So(signals.Topic(post, []string{"ai", "automation", "agents"}), ShouldEqual, 1.0)
		So(signals.Topic(post, []string{"crypto"}), ShouldEqual, 0.2)
	})

	Convey("Keywords are normalized before matching", t, func() {
		kws := signals.NormalizeKeywords([]string{" AI ", "", "Automation", "  "})
		So(kws, ShouldResemble, []string{"ai", "automation"})
	})
}
