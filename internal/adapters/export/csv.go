package export

import (
	"encoding/csv"
	"io"

	"github.com/okian/outreach/internal/domain/relevance"
	"github.com/okian/outreach/internal/domain/scoring"
)

// WritePostsCSV writes ranked posts, rank starting at 1.
func WritePostsCSV(w io.Writer, posts []scoring.ScoredPost) error {
	rows := make([][]any, len(posts))
	for i, sp := range posts {
		rows[i] = postRow(i+1, sp)
	}
	return writeCSV(w, PostColumns, rows)
}

// WriteCommentTargetsCSV writes comment opportunities, rank starting at 1.
func WriteCommentTargetsCSV(w io.Writer, targets []scoring.CommentOpportunity) error {
	rows := make([][]any, len(targets))
	for i, c := range targets {
		rows[i] = commentRow(i+1, c)
	}
	return writeCSV(w, CommentColumns, rows)
}

// WriteProfilesCSV writes ranked profiles, rank starting at 1.
func WriteProfilesCSV(w io.Writer, profiles []relevance.RankedProfile) error {
	rows := make([][]any, len(profiles))
	for i, r := range profiles {
		rows[i] = profileRow(i+1, r)
	}
	return writeCSV(w, ProfileColumns, rows)
}

func writeCSV(w io.Writer, header []string, rows [][]any) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(toStrings(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
