package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Environment keys recognised in the process environment and ~/.acco/.env.
const (
	EnvLogLevel       = "ACCO_LOG_LEVEL"
	EnvSourceKind     = "ACCO_SOURCE_KIND"
	EnvSourceURL      = "ACCO_SOURCE_URL"
	EnvCacheOrigin    = "ACCO_CACHE_ORIGIN"
	EnvRedisAddr      = "ACCO_REDIS_ADDR"
	EnvComposeFilters = "ACCO_COMPOSE_FILTERS"
)

// DotEnvPath returns the absolute path to acco's dotenv file (~/.acco/.env).
func DotEnvPath() (string, error) {
	dir, err := AccoDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".env"), nil
}

// LoadDotEnv reads ~/.acco/.env and returns key/value pairs.
//
// Parsing rules:
// - Lines starting with '#' are ignored.
// - Empty lines are ignored.
// - Lines must be of form KEY=VALUE.
// - Whitespace around KEY is trimmed.
// - VALUE is taken as-is (no quote parsing).
func LoadDotEnv() (map[string]string, error) {
	p, err := DotEnvPath()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("cannot open dotenv file %s: %w", p, err)
	}
	defer f.Close()

	out := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		i := strings.Index(line, "=")
		if i <= 0 {
			continue
		}
		k := strings.TrimSpace(line[:i])
		v := line[i+1:]
		if k == "" {
			continue
		}
		out[k] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read dotenv file %s: %w", p, err)
	}
	return out, nil
}

// GetConfigValue returns the effective value for key, using process environment variables
// first and falling back to ~/.acco/.env.
func GetConfigValue(key string) (string, error) {
	if v := os.Getenv(key); v != "" {
		return v, nil
	}
	dotenv, err := LoadDotEnv()
	if err != nil {
		return "", err
	}
	return dotenv[key], nil
}

// ApplyEnv overlays non-empty ACCO_* values onto c.
func (c *Config) ApplyEnv() error {
	overrides := []struct {
		key string
		dst *string
	}{
		{EnvLogLevel, &c.LogLevel},
		{EnvSourceKind, &c.Source.Kind},
		{EnvSourceURL, &c.Source.URL},
		{EnvCacheOrigin, &c.Cache.Origin},
		{EnvRedisAddr, &c.Cache.RedisAddr},
	}
	for _, o := range overrides {
		v, err := GetConfigValue(o.key)
		if err != nil {
			return err
		}
		if v = strings.TrimSpace(v); v != "" {
			*o.dst = v
		}
	}

	v, err := GetConfigValue(EnvComposeFilters)
	if err != nil {
		return err
	}
	if v = strings.TrimSpace(v); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvComposeFilters, v, err)
		}
		c.Listing.ComposeFilters = b
	}
	return nil
}

// EnsureDotEnvTemplate creates ~/.acco/.env if it does not already exist.
//
// The template lists the recognised keys with empty values so users can fill
// them in per machine without editing acco.yaml.
func EnsureDotEnvTemplate() error {
	p, err := DotEnvPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(p); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("cannot stat dotenv file %s: %w", p, err)
	}

	var body strings.Builder
	for _, k := range []string{EnvLogLevel, EnvSourceKind, EnvSourceURL, EnvCacheOrigin, EnvRedisAddr, EnvComposeFilters} {
		body.WriteString(k + "=\n")
	}

	if err := os.WriteFile(p, []byte(body.String()), 0o600); err != nil {
		return fmt.Errorf("cannot write dotenv template %s: %w", p, err)
	}
	return nil
}
