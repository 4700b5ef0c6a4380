package cmd

import (
	"path/filepath"
	"testing"

	"github.com/kamusis/acco/internal/offline"
)

func TestOpenCache_FlagsOverrideConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	flagCacheName, flagCacheOrigin = "acco-cache-v2", "http://origin.test"
	t.Cleanup(func() { flagCacheName, flagCacheOrigin = "", "" })

	c, cfg, closeFn, err := openCache()
	defer closeFn()
	if err != nil {
		t.Fatalf("openCache: %v", err)
	}
	if c.Name != "acco-cache-v2" || c.Origin != "http://origin.test" {
		t.Fatalf("flags not applied: name %q origin %q", c.Name, c.Origin)
	}
	if _, ok := c.Store.(*offline.DiskStore); !ok {
		t.Fatalf("expected disk store, got %T", c.Store)
	}
	if cfg.Cache.Dir != filepath.Join(home, ".acco", "cache") {
		t.Fatalf("cache dir = %q", cfg.Cache.Dir)
	}
	if c.LockPath != filepath.Join(home, ".acco", "cache.lock") {
		t.Fatalf("lock path = %q", c.LockPath)
	}
}

func TestOpenCache_Backends(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	flagCacheBackend = "redis"
	t.Cleanup(func() { flagCacheBackend = "" })
	if _, _, closeFn, err := openCache(); err == nil {
		_ = closeFn()
		t.Fatal("redis without an address should fail")
	}

	t.Setenv("ACCO_REDIS_ADDR", "127.0.0.1:1")
	c, _, closeFn, err := openCache()
	if err != nil {
		t.Fatalf("openCache redis: %v", err)
	}
	if _, ok := c.Store.(*offline.RedisStore); !ok {
		t.Fatalf("expected redis store, got %T", c.Store)
	}
	_ = closeFn()

	flagCacheBackend = "s3"
	if _, _, _, err := openCache(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
