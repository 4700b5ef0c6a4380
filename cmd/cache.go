package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/kamusis/acco/internal/config"
	"github.com/kamusis/acco/internal/offline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagCacheOrigin  string
	flagCacheListen  string
	flagCacheBackend string
	flagCacheName    string
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the offline asset cache",
	Long: `The offline cache stores the site's core assets under a versioned name
(default acco-cache-v1). 'install' fetches them all or none; 'serve' answers
requests cache-first and forwards misses to the origin; bumping the cache
name and running 'prune' drops older versions.`,
}

var cacheInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Fetch and store the configured core assets",
	Args:  cobra.NoArgs,
	RunE:  runCacheInstall,
}

var cacheServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve cached assets, forwarding misses to the origin",
	Args:  cobra.NoArgs,
	RunE:  runCacheServe,
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the cache holds",
	Args:  cobra.NoArgs,
	RunE:  runCacheStatus,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete caches other than the current version",
	Args:  cobra.NoArgs,
	RunE:  runCachePrune,
}

func init() {
	cacheCmd.PersistentFlags().StringVar(&flagCacheOrigin, "origin", "", "Origin base URL (overrides cache.origin)")
	cacheCmd.PersistentFlags().StringVar(&flagCacheBackend, "backend", "", "Store backend: disk or redis (overrides cache.backend)")
	cacheCmd.PersistentFlags().StringVar(&flagCacheName, "name", "", "Cache name (overrides cache.name)")
	cacheServeCmd.Flags().StringVar(&flagCacheListen, "listen", "", "Listen address (overrides cache.listen)")
	cacheCmd.AddCommand(cacheInstallCmd, cacheServeCmd, cacheStatusCmd, cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}

// openCache builds the cache from config and flags. The returned close func
// is never nil.
func openCache() (*offline.Cache, *config.Config, func() error, error) {
	noop := func() error { return nil }
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, noop, err
	}
	cc := cfg.Cache
	if flagCacheOrigin != "" {
		cc.Origin = flagCacheOrigin
	}
	if flagCacheBackend != "" {
		cc.Backend = flagCacheBackend
	}
	if flagCacheName != "" {
		cc.Name = flagCacheName
	}
	cfg.Cache = cc

	var (
		store   offline.Store
		closeFn = noop
	)
	switch cc.Backend {
	case "", config.BackendDisk:
		store = offline.NewDiskStore(cc.Dir)
	case config.BackendRedis:
		if cc.RedisAddr == "" {
			return nil, nil, noop, fmt.Errorf("cache backend redis requires cache.redis_addr or %s", config.EnvRedisAddr)
		}
		rs := offline.NewRedisStore(cc.RedisAddr)
		store, closeFn = rs, rs.Close
	default:
		return nil, nil, noop, fmt.Errorf("unknown cache backend %q: supported backends are disk, redis", cc.Backend)
	}

	c := offline.New(cc.Name, store, cc.Origin, logger)
	dir, err := config.AccoDir()
	if err != nil {
		return nil, nil, closeFn, err
	}
	c.LockPath = filepath.Join(dir, "cache.lock")
	return c, cfg, closeFn, nil
}

func runCacheInstall(cmd *cobra.Command, _ []string) error {
	c, cfg, closeFn, err := openCache()
	defer closeFn()
	if err != nil {
		return err
	}
	assets := cfg.Cache.Assets
	if len(assets) == 0 {
		assets = offline.DefaultAssets
	}

	printSection("acco cache install")
	printInfo(c.Name, fmt.Sprintf("fetching %d asset(s) from %s", len(assets), c.Origin))
	bar := pb.StartNew(len(assets))
	n, err := c.Install(cmd.Context(), assets, func(string) { bar.Increment() })
	bar.Finish()
	if err != nil {
		printErr(c.Name, "install failed; nothing was stored")
		return err
	}
	printOK(c.Name, fmt.Sprintf("%d asset(s) cached", n))
	return nil
}

func runCacheServe(cmd *cobra.Command, _ []string) error {
	c, cfg, closeFn, err := openCache()
	defer closeFn()
	if err != nil {
		return err
	}
	addr := cfg.Cache.Listen
	if flagCacheListen != "" {
		addr = flagCacheListen
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Addr: addr, Handler: offline.NewRouter(c), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("cache server started", zap.String("addr", addr), zap.String("cache", c.Name))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	origin := c.Origin
	if origin == "" {
		origin = "none"
	}
	printOK(c.Name, fmt.Sprintf("serving on http://%s (origin %s)", addr, origin))

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("cache server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down...")
	ctxShut, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctxShut)
}

func runCacheStatus(cmd *cobra.Command, _ []string) error {
	c, _, closeFn, err := openCache()
	defer closeFn()
	if err != nil {
		return err
	}
	st, err := c.Status(cmd.Context())
	if err != nil {
		return err
	}

	printSection("acco cache status")
	if st.Entries == 0 {
		printMiss(st.Name, "empty (run 'acco cache install')")
	} else {
		printOK(st.Name, fmt.Sprintf("%d entr(ies), %s", st.Entries, humanize.Bytes(uint64(st.Bytes))))
		for _, p := range st.Paths {
			fmt.Printf("       %s\n", p)
		}
	}
	for _, o := range st.Others {
		printWarn(o, "stale cache (run 'acco cache prune')")
	}
	return nil
}

func runCachePrune(cmd *cobra.Command, _ []string) error {
	c, _, closeFn, err := openCache()
	defer closeFn()
	if err != nil {
		return err
	}
	dropped, err := c.Prune(cmd.Context())
	for _, n := range dropped {
		printOK(n, "deleted")
	}
	if err != nil {
		return err
	}
	if len(dropped) == 0 {
		printSkip("", fmt.Sprintf("nothing to prune; only %s exists", c.Name))
	}
	return nil
}
