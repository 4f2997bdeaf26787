package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/outreach/internal/domain/dedupe"
	"github.com/okian/outreach/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper()
		So(d.Size(), ShouldEqual, 0)

		Convey("When a key is recorded twice", func() {
			first := d.SeenAndRecord(ctx, "post:a")
			second := d.SeenAndRecord(ctx, "post:a")

			Convey("Then only the second call reports it as seen", func() {
				So(first, ShouldBeFalse)
				So(second, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a key is unrecorded", func() {
			d.SeenAndRecord(ctx, "post:a")
			d.Unrecord(ctx, "post:a")
			d.Unrecord(ctx, "missing")

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "post:a"), ShouldBeFalse)
			})
		})
	})

	Convey("Given a bounded deduper of three keys", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		for _, k := range []string{"k1", "k2", "k3", "k4"} {
			So(d.SeenAndRecord(ctx, k), ShouldBeFalse)
		}

		Convey("Then the oldest key was evicted", func() {
			So(d.Size(), ShouldEqual, 3)
			So(d.SeenAndRecord(ctx, "k4"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "k3"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "k1"), ShouldBeFalse)
			So(d.Size(), ShouldEqual, 3)
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		const n = 1000
		for i := range n {
			d.SeenAndRecord(ctx, fmt.Sprintf("k-%d", i))
		}

		So(d.Size(), ShouldEqual, int64(n))
		So(d.SeenAndRecord(ctx, "k-0"), ShouldBeTrue)
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given goroutines recording distinct keys", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(1000))
		const workers, perWorker = 10, 100

		var wg sync.WaitGroup
		for w := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := range perWorker {
					d.SeenAndRecord(context.Background(), fmt.Sprintf("k-%d-%d", w, j))
				}
			}()
		}
		wg.Wait()

		So(d.Size(), ShouldEqual, int64(workers*perWorker))
	})
}

func TestKeys(t *testing.T) {
	Convey("Given posts from different sources", t, func() {
		Convey("Tracking parameters and case do not change the key", func() {
			a := model.Post{URL: "https://www.linkedin.com/feed/update/urn:li:activity:1/?utm_source=share"}
			b := model.Post{URL: "HTTPS://www.linkedin.com/feed/update/urn:li:activity:1"}
			So(dedupe.PostKey(a), ShouldEqual, dedupe.PostKey(b))
		})

		Convey("Query parameters that address a post stay in the key", func() {
			a := model.Post{URL: "https://www.skool.com/ai-group/post?p=1"}
			b := model.Post{URL: "https://www.skool.com/ai-group/post?p=2"}
			So(dedupe.PostKey(a), ShouldNotEqual, dedupe.PostKey(b))

			c := model.Post{URL: "https://www.skool.com/ai-group/post?utm_medium=email&p=1#top"}
			So(dedupe.PostKey(c), ShouldEqual, dedupe.PostKey(a))
		})

		Convey("Parameter order does not change the key", func() {
			a := model.Post{URL: "https://x/post?p=1&g=ai"}
			b := model.Post{URL: "https://x/post?g=ai&p=1"}
			So(dedupe.PostKey(a), ShouldEqual, dedupe.PostKey(b))
			So(dedupe.PostKey(a), ShouldEqual, "post:https://x/post?g=ai&p=1")
		})

		Convey("The ID is used when the URL is missing", func() {
			So(dedupe.PostKey(model.Post{ID: "123"}), ShouldEqual, "post:123")
		})

		Convey("Posts and profiles never collide", func() {
			So(dedupe.PostKey(model.Post{ID: "x"}), ShouldNotEqual, dedupe.ProfileKey(model.Profile{ID: "x"}))
		})

		Convey("Records without identity have no key", func() {
			So(dedupe.PostKey(model.Post{}), ShouldBeEmpty)
			So(dedupe.ProfileKey(model.Profile{}), ShouldBeEmpty)
		})
	})
}

func TestFilters(t *testing.T) {
	Convey("Given a shared deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()

		Convey("Repeated posts are dropped in input order", func() {
			posts := []model.Post{
				{ID: "1", Content: "first"},
				{ID: "2"},
				{ID: "1", Content: "again"},
				{Content: "anonymous"},
				{Content: "anonymous"},
			}
			kept, dropped := dedupe.Posts(ctx, d, posts)
			So(dropped, ShouldEqual, 1)
			So(kept, ShouldHaveLength, 4)
			So(kept[0].Content, ShouldEqual, "first")

			Convey("And a later batch sees the earlier keys", func() {
				kept, dropped := dedupe.Posts(ctx, d, []model.Post{{ID: "2"}, {ID: "3"}})
				So(dropped, ShouldEqual, 1)
				So(kept, ShouldResemble, []model.Post{{ID: "3"}})
			})
		})

		Convey("Repeated profiles are dropped", func() {
			profiles := []model.Profile{
				{Name: "A", ProfileURL: "https://linkedin.com/in/a/"},
				{Name: "A again", ProfileURL: "https://linkedin.com/in/a"},
			}
			kept, dropped := dedupe.Profiles(ctx, d, profiles)
			So(dropped, ShouldEqual, 1)
			So(kept, ShouldHaveLength, 1)
		})
	})
}
