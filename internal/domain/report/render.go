package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// RenderHTML writes a standalone page with the category distribution and the
// engagement of the top performers.
func RenderHTML(w io.Writer, r Report) error {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Category Distribution",
			Subtitle: fmt.Sprintf("%d posts analyzed", r.TotalPosts),
		}),
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
	)
	pieItems := make([]opts.PieData, 0, len(r.Categories))
	for _, name := range r.CategoryNames() {
		pieItems = append(pieItems, opts.PieData{Name: name, Value: r.Categories[name]})
	}
	pie.AddSeries("Posts", pieItems)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Top Performers",
			Subtitle: fmt.Sprintf("avg likes %.1f, avg comments %.1f",
				r.Benchmarks.AvgLikes, r.Benchmarks.AvgComments),
		}),
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
	)
	labels := make([]string, 0, len(r.TopPosts))
	likes := make([]opts.BarData, 0, len(r.TopPosts))
	comments := make([]opts.BarData, 0, len(r.TopPosts))
	shares := make([]opts.BarData, 0, len(r.TopPosts))
	for i, p := range r.TopPosts {
		label := truncate(p.Title, 24)
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		labels = append(labels, label)
		likes = append(likes, opts.BarData{Value: p.Likes})
		comments = append(comments, opts.BarData{Value: p.Comments})
		shares = append(shares, opts.BarData{Value: p.Shares})
	}
	bar.SetXAxis(labels).
		AddSeries("Likes", likes).
		AddSeries("Comments", comments).
		AddSeries("Shares", shares)

	page := components.NewPage()
	page.PageTitle = "Engagement Report"
	page.AddCharts(pie, bar)
	return page.Render(w)
}
