package types_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/outreach/internal/domain/model"
	"github.com/okian/outreach/internal/domain/scoring"
	types "github.com/okian/outreach/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRanked(t *testing.T) {
	Convey("Given scored posts", t, func() {
		scored := []scoring.ScoredPost{
			{Post: model.Post{ID: "a"}, Final: 0.9},
			{Post: model.Post{ID: "b"}, Final: 0.4},
		}

		Convey("Ranks are 1-based in order", func() {
			ranked := types.Ranked(scored)
			So(ranked, ShouldHaveLength, 2)
			So(ranked[0].Rank, ShouldEqual, 1)
			So(ranked[1].Post.ID, ShouldEqual, "b")
		})

		Convey("The rank is flattened next to the score fields", func() {
			b, err := json.Marshal(types.Ranked(scored)[0])
			So(err, ShouldBeNil)
			var m map[string]any
			So(json.Unmarshal(b, &m), ShouldBeNil)
			So(m["rank"], ShouldEqual, 1)
			So(m["final_score"], ShouldEqual, 0.9)
		})

		Convey("Empty input stays non-nil", func() {
			So(types.Ranked(nil), ShouldNotBeNil)
			So(types.Ranked(nil), ShouldBeEmpty)
		})
	})
}

func TestRankRequest(t *testing.T) {
	Convey("A missing top_n decodes to nil, an explicit zero does not", t, func() {
		var absent, zero types.RankRequest
		So(json.Unmarshal([]byte(`{"posts":[]}`), &absent), ShouldBeNil)
		So(json.Unmarshal([]byte(`{"top_n":0,"posts":[]}`), &zero), ShouldBeNil)
		So(absent.TopN, ShouldBeNil)
		So(zero.TopN, ShouldNotBeNil)
		So(*zero.TopN, ShouldEqual, 0)
	})
}

func TestAdmission(t *testing.T) {
	Convey("Given admissions", t, func() {
		Convey("An allowed action reports no retry", func() {
			a := types.NewAdmission("comment", true, time.Minute)
			So(a.RetryAfterSeconds, ShouldEqual, 0)
		})

		Convey("A refused action rounds the retry up to whole seconds", func() {
			a := types.NewAdmission("comment", false, 1500*time.Millisecond)
			So(a.RetryAfterSeconds, ShouldEqual, 2)
			So(a.RetryAfter(), ShouldEqual, 2*time.Second)
		})
	})
}
