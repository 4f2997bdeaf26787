// Package dedupe tracks post and profile identities already seen so that
// records arriving from several sources are processed once.
package dedupe

import (
	"container/list"
	"context"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/okian/outreach/internal/domain/model"
)

// Deduper records seen keys.
type Deduper interface {
	// SeenAndRecord atomically checks whether key was seen and records it if not.
	// Returns true if key was already seen.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so a failed item can be retried.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// inMemoryDeduper keeps keys in a map. In bounded mode the oldest key is
// evicted once maxSize is reached.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List // front = newest
	maxSize int        // <= 0 means unbounded
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 50000,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}
	d.seen[key] = d.order.PushFront(key)
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.seen[key]; ok {
		d.order.Remove(e)
		delete(d.seen, key)
		d.size.Add(-1)
	}
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	e := d.order.Back()
	if e == nil {
		return
	}
	d.order.Remove(e)
	delete(d.seen, e.Value.(string))
	d.size.Add(-1)
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

// PostKey is the identity of a post: its normalized URL, else its ID.
// Empty means the post cannot be deduplicated.
func PostKey(p model.Post) string {
	if k := normalize(p.Key()); k != "" {
		return "post:" + k
	}
	return ""
}

// ProfileKey is the identity of a profile: its normalized profile URL, else its ID.
func ProfileKey(p model.Profile) string {
	if k := normalize(p.Key()); k != "" {
		return "profile:" + k
	}
	return ""
}

// tracking lists query parameters that never identify a record.
var tracking = map[string]bool{
	"utm": true, "ref": true, "refid": true, "trk": true, "trkinfo": true,
	"fbclid": true, "gclid": true, "si": true, "igshid": true, "lipi": true,
}

// normalize lower-cases a key and strips fragment, trailing slash and
// tracking parameters. Other query parameters are kept, sorted, since some
// platforms address posts by query (Skool's ?p=).
func normalize(key string) string {
	key = strings.TrimSpace(key)
	if i := strings.IndexByte(key, '#'); i >= 0 {
		key = key[:i]
	}
	base, query, _ := strings.Cut(key, "?")
	base = strings.ToLower(strings.TrimRight(base, "/"))
	if query == "" {
		return base
	}
	vals, err := url.ParseQuery(query)
	if err != nil {
		return base
	}
	for name := range vals {
		n := strings.ToLower(name)
		if tracking[n] || strings.HasPrefix(n, "utm_") {
			delete(vals, name)
		}
	}
	if len(vals) == 0 {
		return base
	}
	return base + "?" + vals.Encode()
}

// Posts returns the posts whose key was not seen before, in input order, and
// the number dropped. Posts without a key are always kept.
func Posts(ctx context.Context, d Deduper, posts []model.Post) ([]model.Post, int) {
	out := make([]model.Post, 0, len(posts))
	dropped := 0
	for _, p := range posts {
		if k := PostKey(p); k != "" && d.SeenAndRecord(ctx, k) {
			dropped++
			continue
		}
		out = append(out, p)
	}
	return out, dropped
}

// Profiles returns the profiles whose key was not seen before and the number dropped.
func Profiles(ctx context.Context, d Deduper, profiles []model.Profile) ([]model.Profile, int) {
	out := make([]model.Profile, 0, len(profiles))
	dropped := 0
	for _, p := range profiles {
		if k := ProfileKey(p); k != "" && d.SeenAndRecord(ctx, k) {
			dropped++
			continue
		}
		out = append(out, p)
	}
	return out, dropped
}
