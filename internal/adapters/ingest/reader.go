// Package ingest turns scraper output into model records: JSON and NDJSON
// files, keyword CSVs, third-party payloads and saved feed HTML.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/okian/outreach/internal/domain/model"
)

// Wrapper keys accepted around a record array.
var (
	postWrappers    = []string{"posts", "data", "items", "results"}
	profileWrappers = []string{"profiles", "data", "items", "results"}
	rawWrappers     = []string{"posts", "profiles", "data", "items", "results"}
)

// ReadPosts decodes posts from a JSON array, a single object, a wrapper
// object such as {"posts": [...]} or NDJSON. Array elements and NDJSON lines
// that do not decode are skipped; the rest of the batch is kept.
func ReadPosts(r io.Reader) ([]model.Post, error) {
	return readRecords[model.Post](r, postWrappers)
}

// ReadProfiles decodes profiles in the same shapes as ReadPosts.
func ReadProfiles(r io.Reader) ([]model.Profile, error) {
	return readRecords[model.Profile](r, profileWrappers)
}

// ReadRaw decodes loosely typed records for the Normalizer.
func ReadRaw(r io.Reader) ([]map[string]any, error) {
	return readRecords[map[string]any](r, rawWrappers)
}

func readRecords[T any](r io.Reader, wrappers []string) ([]T, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	data = bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\uFEFF")))
	if len(data) == 0 {
		return []T{}, nil
	}

	switch data[0] {
	case '[':
		return decodeArray[T](data)
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			// More than one document: NDJSON.
			return readLines[T](data)
		}
		if raw, ok := wrapped(obj, wrappers); ok {
			return decodeArray[T](raw)
		}
		var one T
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		return []T{one}, nil
	}
	return readLines[T](data)
}

// wrapped returns the array under the first wrapper key holding one.
func wrapped(obj map[string]json.RawMessage, wrappers []string) (json.RawMessage, bool) {
	for _, k := range wrappers {
		raw := bytes.TrimSpace(obj[k])
		if len(raw) > 0 && raw[0] == '[' {
			return raw, true
		}
	}
	return nil, false
}

// decodeArray decodes each element on its own so one malformed record does
// not reject its neighbours. Only a malformed array is an error.
func decodeArray[T any](data []byte) ([]T, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	out := make([]T, 0, len(raw))
	for _, item := range raw {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func readLines[T any](data []byte) ([]T, error) {
	out := []T{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var v T
		if err := json.Unmarshal(line, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return out, nil
}
