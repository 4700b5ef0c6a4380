package offline

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kamusis/acco/internal/client"
	"github.com/kamusis/acco/internal/observability"
)

// DefaultName is the cache version token. Bumping it invalidates every
// entry installed under the previous token.
const DefaultName = "acco-cache-v1"

// DefaultAssets is the page shell pre-populated on install.
var DefaultAssets = []string{
	"/",
	"/index.html",
	"/style.css",
	"/assets/images/header/hero-image.jpg",
}

// DefaultConcurrency bounds parallel fetches during install.
const DefaultConcurrency = 4

// DefaultLockTimeout bounds how long Install waits for another install.
const DefaultLockTimeout = 10 * time.Second

// Cache is a named, versioned asset cache in front of an origin.
type Cache struct {
	Name   string
	Store  Store
	Origin string
	Client *http.Client
	Log    *zap.Logger
	// LockPath, when set, serializes installs across processes.
	LockPath    string
	Concurrency int

	proxyOnce sync.Once
	proxy     http.Handler
}

// New returns a cache named name over store, fetching from origin.
func New(name string, store Store, origin string, log *zap.Logger) *Cache {
	if name == "" {
		name = DefaultName
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		Name:        name,
		Store:       store,
		Origin:      strings.TrimRight(origin, "/"),
		Client:      client.New(0),
		Log:         log,
		Concurrency: DefaultConcurrency,
	}
}

// Install fetches every asset from the origin and stores them. Either all
// assets are stored or none: a single failed fetch or non-2xx response
// aborts the install. progress, if non-nil, is called once per fetched
// asset.
func (c *Cache) Install(ctx context.Context, assets []string, progress func(path string)) (int, error) {
	if c.Origin == "" {
		return 0, fmt.Errorf("cannot install cache %s: no origin configured", c.Name)
	}
	if len(assets) == 0 {
		assets = DefaultAssets
	}
	if c.LockPath != "" {
		unlock, err := acquireLock(c.LockPath, DefaultLockTimeout)
		if err != nil {
			return 0, err
		}
		defer unlock()
	}

	entries := make([]Entry, len(assets))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	limit := c.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	g.SetLimit(limit)
	for i, asset := range assets {
		g.Go(func() error {
			e, err := c.fetch(gctx, asset)
			if err != nil {
				return err
			}
			entries[i] = e
			if progress != nil {
				mu.Lock()
				progress(e.Path)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		observability.CacheInstalls.WithLabelValues(c.Name, "failed").Inc()
		c.Log.Warn("cache install failed", zap.String("cache", c.Name), zap.Error(err))
		return 0, fmt.Errorf("cannot install cache %s: %w", c.Name, err)
	}

	if err := c.Store.PutAll(ctx, c.Name, entries); err != nil {
		observability.CacheInstalls.WithLabelValues(c.Name, "failed").Inc()
		return 0, err
	}
	observability.CacheInstalls.WithLabelValues(c.Name, "ok").Inc()
	c.Log.Info("cache installed", zap.String("cache", c.Name), zap.Int("assets", len(entries)))
	return len(entries), nil
}

func (c *Cache) fetch(ctx context.Context, asset string) (Entry, error) {
	path := normalizePath(asset)
	body, resp, err := client.Get(ctx, c.Client, c.Origin+path, "")
	if err != nil {
		return Entry{}, fmt.Errorf("cannot fetch %s: %w", path, err)
	}
	return Entry{
		Path:     path,
		Status:   resp.StatusCode,
		Header:   keepHeaders(resp.Header),
		Body:     body,
		StoredAt: time.Now().UTC(),
	}, nil
}

// Match returns the cached entry for a request path, or ErrNotCached.
func (c *Cache) Match(ctx context.Context, path string) (*Entry, error) {
	return c.Store.Get(ctx, c.Name, normalizePath(path))
}

// Status summarizes a cache.
type Status struct {
	Name    string
	Paths   []string
	Entries int
	Bytes   int64
	Others  []string
}

// Status reports what the cache holds and which other caches exist.
func (c *Cache) Status(ctx context.Context) (Status, error) {
	st := Status{Name: c.Name}
	paths, err := c.Store.Keys(ctx, c.Name)
	if err != nil {
		return st, err
	}
	st.Paths = paths
	st.Entries = len(paths)
	for _, p := range paths {
		e, err := c.Store.Get(ctx, c.Name, p)
		if err != nil {
			continue
		}
		st.Bytes += int64(len(e.Body))
	}
	names, err := c.Store.Caches(ctx)
	if err != nil {
		return st, err
	}
	for _, n := range names {
		if n != c.Name {
			st.Others = append(st.Others, n)
		}
	}
	sort.Strings(st.Others)
	return st, nil
}

// Prune drops every cache except the current one and returns their names.
func (c *Cache) Prune(ctx context.Context) ([]string, error) {
	names, err := c.Store.Caches(ctx)
	if err != nil {
		return nil, err
	}
	var dropped []string
	for _, n := range names {
		if n == c.Name {
			continue
		}
		if err := c.Store.Drop(ctx, n); err != nil {
			return dropped, err
		}
		dropped = append(dropped, n)
		c.Log.Info("cache pruned", zap.String("cache", n))
	}
	return dropped, nil
}

// acquireLock takes the install lock, polling until timeout.
func acquireLock(path string, timeout time.Duration) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create lock dir: %w", err)
	}
	l := flock.New(path)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return nil, fmt.Errorf("cannot acquire install lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("another cache install is in progress (lock: %s)", path)
		}
		time.Sleep(200 * time.Millisecond)
	}
}
