package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/okian/outreach/internal/domain/relevance"
	"github.com/okian/outreach/internal/domain/report"
	"github.com/okian/outreach/internal/domain/scoring"
)

// Sheet names in the workbook.
const (
	SheetOpportunities = "Opportunities"
	SheetProfiles      = "Profiles"
	SheetSummary       = "Summary"
)

// Workbook is the content of an XLSX export. Empty sections still get a
// sheet with headers.
type Workbook struct {
	Posts    []scoring.ScoredPost
	Profiles []relevance.RankedProfile
	Report   *report.Report
}

// WriteWorkbook writes wb as an XLSX document.
func WriteWorkbook(w io.Writer, wb Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetOpportunities); err != nil {
		return err
	}
	rows := make([][]any, len(wb.Posts))
	for i, sp := range wb.Posts {
		rows[i] = postRow(i+1, sp)
	}
	if err := writeSheet(f, SheetOpportunities, PostColumns, rows); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetProfiles); err != nil {
		return err
	}
	rows = make([][]any, len(wb.Profiles))
	for i, r := range wb.Profiles {
		rows[i] = profileRow(i+1, r)
	}
	if err := writeSheet(f, SheetProfiles, ProfileColumns, rows); err != nil {
		return err
	}

	if wb.Report != nil {
		if _, err := f.NewSheet(SheetSummary); err != nil {
			return err
		}
		if err := writeSheet(f, SheetSummary, []string{"metric", "value"}, summaryRows(*wb.Report)); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any) error {
	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func summaryRows(r report.Report) [][]any {
	rows := [][]any{
		{"total_posts_analyzed", r.TotalPosts},
		{"avg_likes", r.Benchmarks.AvgLikes},
		{"avg_comments", r.Benchmarks.AvgComments},
		{"max_likes", r.Benchmarks.MaxLikes},
		{"max_comments", r.Benchmarks.MaxComments},
	}
	for _, name := range r.CategoryNames() {
		rows = append(rows, []any{"category: " + name, r.Categories[name]})
	}
	for _, idea := range r.ContentIdeas {
		rows = append(rows, []any{"content_idea", idea})
	}
	return rows
}
