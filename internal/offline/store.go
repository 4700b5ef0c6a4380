// Package offline implements the offline asset cache: an install step that
// pre-populates a named cache from the origin, and a cache-first handler
// that serves hits from it and forwards everything else.
package offline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrNotCached is returned by stores for a path with no entry.
var ErrNotCached = errors.New("not cached")

// Entry is one cached response.
type Entry struct {
	Path     string      `json:"path"`
	Status   int         `json:"status"`
	Header   http.Header `json:"header,omitempty"`
	Body     []byte      `json:"body"`
	StoredAt time.Time   `json:"stored_at"`
}

// Store persists cache entries grouped by cache name.
type Store interface {
	// Get returns the entry for path in cache, or ErrNotCached.
	Get(ctx context.Context, cache, path string) (*Entry, error)
	// PutAll stores entries in cache.
	PutAll(ctx context.Context, cache string, entries []Entry) error
	// Keys lists the cached paths of cache.
	Keys(ctx context.Context, cache string) ([]string, error)
	// Caches lists the cache names present.
	Caches(ctx context.Context) ([]string, error)
	// Drop deletes cache and every entry in it.
	Drop(ctx context.Context, cache string) error
}

// storedHeaders are the response headers kept with an entry.
var storedHeaders = []string{"Content-Type", "Content-Language", "ETag", "Last-Modified", "Cache-Control"}

func keepHeaders(h http.Header) http.Header {
	out := http.Header{}
	for _, k := range storedHeaders {
		if v := h.Values(k); len(v) > 0 {
			out[k] = append([]string(nil), v...)
		}
	}
	return out
}

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\:`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid cache name %q", name)
	}
	return nil
}

// normalizePath makes asset paths and request URIs comparable.
func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
