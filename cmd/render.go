package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kamusis/acco/internal/listing"
	"github.com/kamusis/acco/internal/render"
	"github.com/kamusis/acco/internal/search"
	"github.com/spf13/cobra"
)

var (
	flagRenderFormat string
	flagRenderOut    string
	flagRenderQuery  string
	flagRenderFilter []string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the listing as an HTML page or JSON",
	Long: `Render the listing with the grid, filter controls, visible count and
load-more button. Records hidden by --query or --filter are kept in the
output and marked hidden.

Example:
  acco render --out site/index.html
  acco render --format json --filter location=kolkata`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&flagRenderFormat, "format", "html", "Output format: html or json")
	renderCmd.Flags().StringVarP(&flagRenderOut, "out", "o", "", "Write to file instead of stdout")
	renderCmd.Flags().StringVar(&flagRenderQuery, "query", "", "Apply a text search before rendering")
	renderCmd.Flags().StringArrayVar(&flagRenderFilter, "filter", nil, "Apply a structured filter, field=value (repeatable)")
	renderCmd.Flags().StringVar(&flagFrom, "from", "", "Listing to read (markup file/URL, catalog file or directory)")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	r, err := render.NewRenderer(flagRenderFormat, renderOptions(cfg))
	if err != nil {
		return err
	}
	profiles, err := loadProfiles(cmd.Context(), cfg, flagFrom)
	if err != nil {
		return err
	}

	ctrl := listing.New(listing.NopDisplay{}, profiles,
		listing.WithLogger(logger),
		listing.WithComposedFilters(cfg.Listing.ComposeFilters))
	if len(flagRenderFilter) > 0 {
		fields, err := search.ParsePairs(flagRenderFilter)
		if err != nil {
			return err
		}
		sel, err := search.ParseSelection(fields)
		if err != nil {
			return err
		}
		ctrl.ApplyStructuredFilters(sel)
	}
	if flagRenderQuery != "" {
		ctrl.ApplyTextSearch(flagRenderQuery)
	}

	out, err := r.Render(entriesOf(ctrl.Records()))
	if err != nil {
		return err
	}
	if flagRenderOut == "" {
		_, err := os.Stdout.Write(out)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(flagRenderOut), 0o755); err != nil {
		return fmt.Errorf("cannot create output dir: %w", err)
	}
	if err := os.WriteFile(flagRenderOut, out, 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", flagRenderOut, err)
	}
	printOK("", fmt.Sprintf("%d of %d profile(s) visible, written to %s", ctrl.VisibleCount(), ctrl.Total(), flagRenderOut))
	return nil
}

func entriesOf(records []listing.Record) []render.Entry {
	out := make([]render.Entry, len(records))
	for i, r := range records {
		out[i] = render.Entry{Profile: r.Profile, Visible: r.Visible}
	}
	return out
}
