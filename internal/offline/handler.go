package offline

import (
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kamusis/acco/internal/observability"
)

// CacheHeader reports how a response was served: hit or miss.
const CacheHeader = "X-Acco-Cache"

// ServeHTTP serves GET and HEAD hits from the cache. Misses and every other
// method go to the origin; their responses are never stored.
func (c *Cache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		c.forward(w, r)
		return
	}

	e, err := c.Match(r.Context(), r.URL.RequestURI())
	switch {
	case err == nil:
		observability.CacheLookups.WithLabelValues(c.Name, "hit").Inc()
		h := w.Header()
		for k, v := range e.Header {
			h[k] = append([]string(nil), v...)
		}
		h.Set(CacheHeader, "hit")
		w.WriteHeader(e.Status)
		if r.Method == http.MethodGet {
			_, _ = w.Write(e.Body)
		}
		return
	case errors.Is(err, ErrNotCached):
		observability.CacheLookups.WithLabelValues(c.Name, "miss").Inc()
	default:
		observability.CacheLookups.WithLabelValues(c.Name, "error").Inc()
		c.Log.Warn("cache lookup failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	w.Header().Set(CacheHeader, "miss")
	c.forward(w, r)
}

func (c *Cache) forward(w http.ResponseWriter, r *http.Request) {
	c.proxyOnce.Do(func() {
		target, err := url.Parse(c.Origin)
		if c.Origin == "" || err != nil {
			c.proxy = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "offline: not cached and no origin configured", http.StatusGatewayTimeout)
			})
			return
		}
		p := httputil.NewSingleHostReverseProxy(target)
		p.Transport = c.Client.Transport
		p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			c.Log.Warn("origin unreachable", zap.String("path", r.URL.Path), zap.Error(err))
			http.Error(w, "origin unreachable", http.StatusBadGateway)
		}
		c.proxy = p
	})
	c.proxy.ServeHTTP(w, r)
}

// NewRouter mounts health, metrics and the cache-first handler.
func NewRouter(c *Cache) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(observability.MetricsMiddleware())
	r.Use(observability.RequestLogger(c.Log))
	r.Use(middleware.Recoverer)

	r.Get("/health/live", observability.HealthLiveHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/*", c)

	return r
}
