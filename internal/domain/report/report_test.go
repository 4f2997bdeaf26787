package report_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/okian/outreach/internal/domain/model"
	"github.com/okian/outreach/internal/domain/report"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAnalyze(t *testing.T) {
	Convey("Given an empty collection", t, func() {
		r := report.Analyze(nil)

		Convey("Then the report is zero but well formed", func() {
			So(r.TotalPosts, ShouldEqual, 0)
			So(r.Benchmarks.AvgLikes, ShouldEqual, 0)
			So(r.TopPosts, ShouldNotBeNil)
			So(r.TopPosts, ShouldBeEmpty)
			So(r.Categories, ShouldNotBeNil)
			So(r.ContentIdeas, ShouldNotBeNil)
		})
	})

	Convey("Given a mixed collection", t, func() {
		long := strings.Repeat("é", 120)
		posts := []model.Post{
			{Title: "a", Likes: 10, Comments: 1, Category: "AI"},
			{Title: "b", Likes: 3, Comments: 8, Category: "AI"},
			{Title: "", Likes: 50, Comments: 5},
			{Title: "d", Likes: 1, Comments: 0, Category: "Sales"},
			{Title: long, Likes: 2, Comments: 2},
			{Title: "f", Likes: 11, Comments: 0, Category: "Sales"},
			{Title: "g", Likes: 0, Comments: 0},
		}
		r := report.Analyze(posts)

		Convey("Then benchmarks are averaged to one decimal", func() {
			So(r.TotalPosts, ShouldEqual, 7)
			So(r.Benchmarks, ShouldResemble, report.Benchmarks{
				AvgLikes:    11.0,
				AvgComments: 2.3,
				MaxLikes:    50,
				MaxComments: 8,
			})
		})

		Convey("Then the top five keep input order on ties", func() {
			titles := make([]string, len(r.TopPosts))
			for i, p := range r.TopPosts {
				titles[i] = p.Title
			}
			So(titles, ShouldResemble, []string{"", "a", "b", "f", long})
		})

		Convey("Then categories default to Uncategorized", func() {
			So(r.Categories, ShouldResemble, map[string]int{"AI": 2, "Sales": 2, "Uncategorized": 3})
			So(r.CategoryNames(), ShouldResemble, []string{"Uncategorized", "AI", "Sales"})
		})

		Convey("Then ideas skip empty titles and truncate by rune", func() {
			So(r.ContentIdeas, ShouldHaveLength, 4)
			So(r.ContentIdeas[0], ShouldEqual, "Post similar to: a")
			So(r.ContentIdeas[3], ShouldEqual, "Post similar to: "+strings.Repeat("é", 100))
		})
	})
}

func TestRenderHTML(t *testing.T) {
	Convey("Given a report", t, func() {
		r := report.Analyze([]model.Post{
			{Title: "Launch day", Likes: 40, Comments: 4, Category: "Product"},
			{Title: "Hiring", Likes: 5, Comments: 1},
		})

		Convey("When rendered", func() {
			var buf bytes.Buffer
			err := report.RenderHTML(&buf, r)

			Convey("Then a page with both charts is written", func() {
				So(err, ShouldBeNil)
				html := buf.String()
				So(html, ShouldContainSubstring, "<html")
				So(html, ShouldContainSubstring, "Category Distribution")
				So(html, ShouldContainSubstring, "Top Performers")
				So(html, ShouldContainSubstring, "Product")
			})
		})
	})
}
