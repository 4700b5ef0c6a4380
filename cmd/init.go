package cmd

import (
	"fmt"
	"os"

	"github.com/kamusis/acco/internal/catalog"
	"github.com/kamusis/acco/internal/config"
	"github.com/spf13/cobra"
)

var (
	flagInitSource string
	flagInitOrigin string
	flagInitSeed   bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create ~/.acco with a default config and .env template",
	Long: `Initialize acco's home at ~/.acco/.

Writes acco.yaml with defaults (built-in listing, static "load more"
source, disk cache) and a .env template for per-machine overrides.
Existing files are left untouched.

Example:
  acco init
  acco init --source catalog --seed
  acco init --origin https://accountants.example.com`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&flagInitSource, "source", "", "Load-more source kind: static, catalog, http or sqlite")
	initCmd.Flags().StringVar(&flagInitOrigin, "origin", "", "Origin base URL for the offline cache")
	initCmd.Flags().BoolVar(&flagInitSeed, "seed", false, "Write the built-in listing to ~/.acco/catalog.jsonl and use it")
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	// ── 1. Resolve ~/.acco directory ──────────────────────────────────────────
	accoDir, err := config.AccoDir()
	if err != nil {
		return err
	}
	cfgPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	// ── 2. Create ~/.acco/ if it doesn't exist ────────────────────────────────
	if err := os.MkdirAll(accoDir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", accoDir, err)
	}
	printOK("", fmt.Sprintf("acco directory ready: %s", accoDir))

	// ── 3. Seed catalog ───────────────────────────────────────────────────────
	catalogPath, err := defaultCatalogPath()
	if err != nil {
		return err
	}
	if flagInitSeed {
		if _, err := os.Stat(catalogPath); os.IsNotExist(err) {
			if err := catalog.Write(catalogPath, catalog.Seed()); err != nil {
				return err
			}
			printOK("", fmt.Sprintf("Catalog written: %s", catalogPath))
		} else {
			printSkip("", fmt.Sprintf("Catalog already exists: %s", catalogPath))
		}
	}

	// ── 4. Write acco.yaml if missing ─────────────────────────────────────────
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg, err := config.DefaultConfig()
		if err != nil {
			return err
		}
		if flagInitSource != "" {
			cfg.Source.Kind = flagInitSource
		}
		if flagInitOrigin != "" {
			cfg.Cache.Origin = flagInitOrigin
		}
		if flagInitSeed {
			cfg.Listing.Catalog = catalogPath
			if cfg.Source.Kind == config.SourceCatalog {
				cfg.Source.Path = catalogPath
			}
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("Config written: %s", cfgPath))
	} else {
		printSkip("", fmt.Sprintf("Config already exists: %s", cfgPath))
	}

	// ── 5. Write .env template if missing ─────────────────────────────────────
	envPath, err := config.DotEnvPath()
	if err != nil {
		return err
	}
	if err := config.EnsureDotEnvTemplate(); err != nil {
		return err
	}
	printOK("", fmt.Sprintf("Environment file ready: %s", envPath))

	fmt.Println("\n✓  acco init complete. Run 'acco doctor' to verify your environment.")
	return nil
}
