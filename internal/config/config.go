package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kamusis/acco/internal/debounce"
	"github.com/kamusis/acco/internal/directory"
	"github.com/kamusis/acco/internal/offline"
	"github.com/kamusis/acco/internal/render"
	"github.com/kamusis/acco/internal/source"
)

// Page source kinds.
const (
	SourceStatic  = "static"
	SourceCatalog = "catalog"
	SourceHTTP    = "http"
	SourceSQLite  = "sqlite"
)

// Cache store backends.
const (
	BackendDisk  = "disk"
	BackendRedis = "redis"
)

// ListingConfig controls where the initial listing comes from and how it
// behaves.
type ListingConfig struct {
	// Markup is a listing page (file or URL) read at startup.
	Markup string `yaml:"markup,omitempty"`
	// Catalog is a catalog file or PROFILE.md directory read at startup.
	Catalog        string `yaml:"catalog,omitempty"`
	DetailPath     string `yaml:"detail_path"`
	ContactDomain  string `yaml:"contact_domain"`
	DebounceMS     int    `yaml:"debounce_ms"`
	ComposeFilters bool   `yaml:"compose_filters"`
}

// SourceConfig selects the page source behind "load more".
type SourceConfig struct {
	Kind      string `yaml:"kind"`
	URL       string `yaml:"url,omitempty"`
	Path      string `yaml:"path,omitempty"`
	PageSize  int    `yaml:"page_size"`
	LatencyMS int    `yaml:"latency_ms"`
}

// CacheConfig configures the offline asset cache.
type CacheConfig struct {
	Name      string   `yaml:"name"`
	Backend   string   `yaml:"backend"`
	Dir       string   `yaml:"dir"`
	RedisAddr string   `yaml:"redis_addr,omitempty"`
	Origin    string   `yaml:"origin,omitempty"`
	Listen    string   `yaml:"listen"`
	Assets    []string `yaml:"assets"`
}

// Config is the in-memory representation of ~/.acco/acco.yaml.
type Config struct {
	LogLevel string        `yaml:"log_level,omitempty"`
	Listing  ListingConfig `yaml:"listing"`
	Source   SourceConfig  `yaml:"source"`
	Cache    CacheConfig   `yaml:"cache"`
}

// AccoDir returns the absolute path to ~/.acco/.
func AccoDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".acco"), nil
}

// ConfigPath returns the absolute path to ~/.acco/acco.yaml.
func ConfigPath() (string, error) {
	dir, err := AccoDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "acco.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the default Config written on first acco init.
func DefaultConfig() (*Config, error) {
	dir, err := AccoDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		Listing: ListingConfig{
			DetailPath:    render.DefaultDetailPath,
			ContactDomain: directory.DefaultContactDomain,
			DebounceMS:    int(debounce.DefaultWait.Milliseconds()),
		},
		Source: SourceConfig{
			Kind:      SourceStatic,
			PageSize:  source.DefaultPageSize,
			LatencyMS: int(source.DefaultLatency.Milliseconds()),
		},
		Cache: CacheConfig{
			Name:    offline.DefaultName,
			Backend: BackendDisk,
			Dir:     filepath.Join(dir, "cache"),
			Listen:  "127.0.0.1:8787",
			Assets:  append([]string(nil), offline.DefaultAssets...),
		},
	}, nil
}

// Load reads and parses ~/.acco/acco.yaml.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	// Expand ~ in paths at load time.
	for _, p := range []*string{&cfg.Listing.Markup, &cfg.Listing.Catalog, &cfg.Source.Path, &cfg.Cache.Dir} {
		if *p, err = ExpandPath(*p); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadOrDefault is Load, falling back to DefaultConfig when no config file
// exists. Environment overrides are applied either way.
func LoadOrDefault() (*Config, error) {
	cfg, err := Load()
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = DefaultConfig()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceStatic, SourceCatalog:
	case SourceHTTP:
		if c.Source.URL == "" {
			return fmt.Errorf("source kind %q requires source.url", c.Source.Kind)
		}
	case SourceSQLite:
		if c.Source.Path == "" {
			return fmt.Errorf("source kind %q requires source.path", c.Source.Kind)
		}
	default:
		return fmt.Errorf("unknown source kind %q: supported kinds are static, catalog, http, sqlite", c.Source.Kind)
	}
	switch c.Cache.Backend {
	case BackendDisk:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache backend redis requires cache.redis_addr")
		}
	default:
		return fmt.Errorf("unknown cache backend %q: supported backends are disk, redis", c.Cache.Backend)
	}
	if c.Listing.DebounceMS < 0 || c.Source.PageSize < 0 {
		return fmt.Errorf("debounce_ms and page_size must not be negative")
	}
	return nil
}

// Save marshals cfg and writes it to ~/.acco/acco.yaml.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}
