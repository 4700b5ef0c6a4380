package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/kamusis/acco/internal/catalog"
	"github.com/kamusis/acco/internal/config"
	"github.com/kamusis/acco/internal/directory"
	"github.com/kamusis/acco/internal/source"
	"github.com/spf13/cobra"
)

var (
	flagCatalogInto      string
	flagCatalogSQLite    string
	flagCatalogOverwrite bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local profile catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <src>",
	Short: "Merge profiles into the JSONL catalog",
	Long: `Read profiles from src and merge them into the catalog. src may be a
listing page (file or http(s) URL), a directory of */PROFILE.md documents,
or a .jsonl, .json, .yaml or .html file.

Profiles are matched by their derived key. Identical profiles are skipped;
profiles whose content differs are reported as conflicts and left
untouched unless --overwrite is given.

Example:
  acco catalog import ./profiles
  acco catalog import https://example.com/accountants/ --sqlite ~/.acco/catalog.db`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogImport,
}

var catalogExportCmd = &cobra.Command{
	Use:   "export <dst.jsonl>",
	Short: "Write the current listing as a JSONL catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogExport,
}

func init() {
	catalogImportCmd.Flags().StringVar(&flagCatalogInto, "into", "", "Catalog file (default ~/.acco/catalog.jsonl)")
	catalogImportCmd.Flags().StringVar(&flagCatalogSQLite, "sqlite", "", "Also load the merged catalog into this SQLite database")
	catalogImportCmd.Flags().BoolVar(&flagCatalogOverwrite, "overwrite", false, "Replace conflicting profiles with the incoming version")
	catalogExportCmd.Flags().StringVar(&flagFrom, "from", "", "Listing to read (markup file/URL, catalog file or directory)")
	catalogCmd.AddCommand(catalogImportCmd, catalogExportCmd)
	rootCmd.AddCommand(catalogCmd)
}

func defaultCatalogPath() (string, error) {
	dir, err := config.AccoDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "catalog.jsonl"), nil
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dst := flagCatalogInto
	if dst == "" {
		p, err := defaultCatalogPath()
		if err != nil {
			return err
		}
		dst = p
	}
	dst, err := config.ExpandPath(dst)
	if err != nil {
		return err
	}

	incoming, err := catalog.Load(ctx, args[0])
	if err != nil {
		return err
	}

	printSection("acco catalog import")
	res, err := catalog.Import(dst, incoming, flagCatalogOverwrite)
	if err != nil {
		return fmt.Errorf("import %s: %w", args[0], err)
	}
	printOK("", fmt.Sprintf("%d imported, %d skipped, %d replaced  (%d profile(s) in %s)",
		res.Imported, res.Skipped, res.Replaced, res.Total, dst))

	if len(res.Conflicts) > 0 {
		printBullet("Conflicts (kept existing version):")
		for _, c := range res.Conflicts {
			printWarn(c.Key, fmt.Sprintf("%s differs from the catalog entry", c.Incoming.Name))
		}
		fmt.Println("\n  Re-run with --overwrite to take the incoming versions.")
	}

	if flagCatalogSQLite == "" {
		return nil
	}
	dbPath, err := config.ExpandPath(flagCatalogSQLite)
	if err != nil {
		return err
	}
	rows, err := catalog.LoadJSONL(dst)
	if err != nil {
		return err
	}
	profiles := make([]directory.Profile, len(rows))
	for i, r := range rows {
		profiles[i] = r.Profile
	}
	db, err := source.OpenSQLite(dbPath, 0)
	if err != nil {
		return err
	}
	defer db.Close()
	added, err := db.Insert(ctx, profiles)
	if err != nil {
		return fmt.Errorf("cannot load %s: %w", dbPath, err)
	}
	n, err := db.Count(ctx)
	if err != nil {
		return err
	}
	printOK("sqlite", fmt.Sprintf("%d new row(s), %d total in %s", added, n, dbPath))
	return nil
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	profiles, err := loadProfiles(cmd.Context(), cfg, flagFrom)
	if err != nil {
		return err
	}
	if err := catalog.Write(args[0], profiles); err != nil {
		return err
	}
	printOK("", fmt.Sprintf("%d profile(s) written to %s", len(profiles), args[0]))
	return nil
}
