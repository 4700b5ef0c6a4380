package cmd

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kamusis/acco/internal/catalog"
	"github.com/kamusis/acco/internal/config"
	"github.com/kamusis/acco/internal/directory"
	"github.com/kamusis/acco/internal/render"
	"github.com/kamusis/acco/internal/source"
)

// flagFrom overrides the configured listing for commands that read one.
var flagFrom string

// loadConfig returns the effective configuration. A missing acco.yaml is not
// an error: the defaults apply until 'acco init' writes one.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault()
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w\nRun 'acco doctor' to check your setup.", err)
	}
	return cfg, nil
}

// listingSource names where the initial listing comes from: the --from
// flag, then listing.markup, then listing.catalog. "" means the built-in seed.
func listingSource(cfg *config.Config, from string) string {
	switch {
	case from != "":
		return from
	case cfg.Listing.Markup != "":
		return cfg.Listing.Markup
	default:
		return cfg.Listing.Catalog
	}
}

// loadProfiles reads the initial listing.
func loadProfiles(ctx context.Context, cfg *config.Config, from string) ([]directory.Profile, error) {
	src := listingSource(cfg, from)
	if src == "" {
		return catalog.Seed(), nil
	}
	profiles, err := catalog.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	logger.Debug("listing loaded", zap.String("source", src), zap.Int("profiles", len(profiles)))
	return profiles, nil
}

// newPageSource builds the "load more" source named by cfg.Source. The
// returned close func is never nil.
func newPageSource(ctx context.Context, cfg *config.Config) (source.PageSource, func() error, error) {
	noop := func() error { return nil }
	sc := cfg.Source
	switch sc.Kind {
	case "", config.SourceStatic:
		latency := time.Duration(sc.LatencyMS) * time.Millisecond
		if sc.LatencyMS == 0 {
			latency = -1
		}
		return source.NewStatic(latency), noop, nil
	case config.SourceCatalog:
		var profiles []directory.Profile
		if sc.Path == "" {
			profiles = catalog.Seed()
		} else {
			var err error
			if profiles, err = catalog.Load(ctx, sc.Path); err != nil {
				return nil, noop, err
			}
		}
		return source.NewCatalog(profiles, sc.PageSize), noop, nil
	case config.SourceHTTP:
		return source.NewHTTP(sc.URL, sc.PageSize), noop, nil
	case config.SourceSQLite:
		s, err := source.OpenSQLite(sc.Path, sc.PageSize)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown source kind %q", sc.Kind)
	}
}

func renderOptions(cfg *config.Config) render.Options {
	return render.Options{
		DetailPath:    cfg.Listing.DetailPath,
		ContactDomain: cfg.Listing.ContactDomain,
	}
}

func detailURL(cfg *config.Config, p directory.Profile) string {
	opts := renderOptions(cfg)
	if opts.DetailPath == "" {
		opts.DetailPath = render.DefaultDetailPath
	}
	return directory.DetailURL(opts.DetailPath, p.Name, opts.ContactDomain)
}
