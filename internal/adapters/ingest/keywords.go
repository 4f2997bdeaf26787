package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"
)

// LoadKeywords reads the first column of a CSV file, skipping the header row.
func LoadKeywords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadKeywords(f)
}

// ReadKeywords reads keywords from CSV. A leading BOM is stripped, values are
// lower-cased and blanks are dropped. Malformed rows are skipped.
func ReadKeywords(r io.Reader) ([]string, error) {
	cr := csv.NewReader(stripBOM(r))
	cr.FieldsPerRecord = -1

	kws := []string{}
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return nil, err
		}
		if line == 1 || len(rec) == 0 {
			continue
		}
		if kw := strings.ToLower(strings.TrimSpace(rec[0])); kw != "" {
			kws = append(kws, kw)
		}
	}
	return kws, nil
}

func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	c, _, err := br.ReadRune()
	if err != nil {
		return br
	}
	if c != '\uFEFF' {
		_ = br.UnreadRune()
	}
	return br
}
