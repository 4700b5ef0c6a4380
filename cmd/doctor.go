package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kamusis/acco/internal/catalog"
	"github.com/kamusis/acco/internal/client"
	"github.com/kamusis/acco/internal/config"
	"github.com/kamusis/acco/internal/markup"
	"github.com/spf13/cobra"
)

// doctorTimeout bounds each network check.
const doctorTimeout = 5 * time.Second

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run pre-flight environment checks",
	Long: `Check that acco's configuration, listing, load-more source and offline
cache are usable. Run this command when something seems wrong, or before
filing a bug report.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	allOK := true
	failD := func(format string, args ...any) {
		printErr("", fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("acco doctor")
	fmt.Println()

	// ── Check 1: acco.yaml ────────────────────────────────────────────────────
	fmt.Println("[ acco.yaml ]")
	cfgPath, _ := config.ConfigPath()
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		printWarn("", "~/.acco/acco.yaml not found, using defaults (run 'acco init' to write one)")
	}
	cfg, loadErr := config.LoadOrDefault()
	if loadErr != nil {
		failD("cannot load config: %v", loadErr)
	} else {
		printOK("", fmt.Sprintf("valid, source %q, cache backend %q", cfg.Source.Kind, cfg.Cache.Backend))
	}
	fmt.Println()

	// ── Check 2: listing ──────────────────────────────────────────────────────
	fmt.Println("[ Listing ]")
	if loadErr == nil {
		if src := listingSource(cfg, ""); src == "" {
			printOK("", fmt.Sprintf("built-in listing (%d profiles)", len(catalog.Seed())))
		} else {
			checkListing(ctx, src, failD)
		}
	} else {
		printWarn("", "skipped (acco.yaml not loaded)")
	}
	fmt.Println()

	// ── Check 3: load-more source ─────────────────────────────────────────────
	fmt.Println("[ Load-more source ]")
	if loadErr == nil {
		checkSource(ctx, cfg, failD)
	} else {
		printWarn("", "skipped (acco.yaml not loaded)")
	}
	fmt.Println()

	// ── Check 4: offline cache ────────────────────────────────────────────────
	fmt.Println("[ Offline cache ]")
	if loadErr == nil {
		c, _, closeFn, err := openCache()
		if err != nil {
			failD("%v", err)
		} else {
			pctx, cancel := context.WithTimeout(ctx, doctorTimeout)
			st, err := c.Status(pctx)
			cancel()
			switch {
			case err != nil:
				failD("[%s] cannot read %s store: %v", c.Name, cfg.Cache.Backend, err)
			case st.Entries == 0:
				printWarn(c.Name, "empty (run 'acco cache install')")
			default:
				printOK(c.Name, fmt.Sprintf("%d entr(ies)", st.Entries))
			}
			if len(st.Others) > 0 {
				printWarn("", fmt.Sprintf("stale caches: %s (run 'acco cache prune')", strings.Join(st.Others, ", ")))
			}
			if c.Origin == "" {
				printSkip("", "no origin configured; misses cannot be forwarded")
			} else {
				checkOrigin(ctx, c.Origin, failD)
			}
		}
		_ = closeFn()
	} else {
		printWarn("", "skipped (acco.yaml not loaded)")
	}
	fmt.Println()

	// ── Summary ──────────────────────────────────────────────────────────────────
	fmt.Println("===================")
	if allOK {
		fmt.Println("✓  All checks passed. acco is ready to use.")
	} else {
		fmt.Fprintln(os.Stderr, "✗  One or more checks failed. See details above.")
		return fmt.Errorf("doctor found issues")
	}
	return nil
}

// checkListing loads the configured listing. Markup pages are also checked
// for the filter controls; a missing control is only a warning.
func checkListing(ctx context.Context, src string, failD func(string, ...any)) {
	ext := strings.ToLower(filepath.Ext(src))
	isURL := strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
	if !isURL && ext != ".html" && ext != ".htm" {
		profiles, err := catalog.Load(ctx, src)
		if err != nil {
			failD("%v", err)
			return
		}
		printOK("", fmt.Sprintf("%s (%d profiles)", src, len(profiles)))
		return
	}

	var (
		page *markup.Page
		err  error
	)
	if isURL {
		pctx, cancel := context.WithTimeout(ctx, doctorTimeout)
		page, err = markup.Fetch(pctx, client.New(doctorTimeout), src)
		cancel()
	} else {
		var f *os.File
		if f, err = os.Open(src); err == nil {
			page, err = markup.Parse(f)
			f.Close()
		}
	}
	if err != nil {
		failD("cannot read listing %s: %v", src, err)
		return
	}
	printOK("", fmt.Sprintf("%s (%d profiles)", src, len(page.Profiles)))
	for _, id := range page.Missing {
		printWarn(id, "control not found on page")
	}
	for _, sk := range page.Skipped {
		printWarn("", fmt.Sprintf("%v (skipped)", sk))
	}
}

// checkSource fetches the first page of the load-more source.
func checkSource(ctx context.Context, cfg *config.Config, failD func(string, ...any)) {
	cfgCopy := *cfg
	if cfgCopy.Source.Kind == config.SourceStatic || cfgCopy.Source.Kind == "" {
		cfgCopy.Source.LatencyMS = 0
	}
	src, closeSrc, err := newPageSource(ctx, &cfgCopy)
	defer closeSrc()
	if err != nil {
		failD("[%s] %v", cfg.Source.Kind, err)
		return
	}
	pctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()
	page, err := src.FetchPage(pctx, "")
	if err != nil {
		failD("[%s] first page failed: %v", cfg.Source.Kind, err)
		return
	}
	more := "last page"
	if page.Next != "" {
		more = "more pages available"
	}
	printOK(cfg.Source.Kind, fmt.Sprintf("first page: %d profile(s), %s", len(page.Profiles), more))
}

func checkOrigin(ctx context.Context, origin string, failD func(string, ...any)) {
	pctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()
	if _, resp, err := client.Get(pctx, client.New(doctorTimeout), origin+"/", ""); err != nil {
		failD("origin %s unreachable: %v", origin, err)
	} else {
		printOK("origin", fmt.Sprintf("%s responded %s", origin, resp.Status))
	}
}
