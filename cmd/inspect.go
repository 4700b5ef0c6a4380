package cmd

import (
	"fmt"

	"github.com/kamusis/acco/internal/listing"
	"github.com/kamusis/acco/internal/terminal"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <ref>",
	Short: "Show one profile and its detail link",
	Long: `Display a profile from the listing with its filter attributes and the
detail page URL its card links to.

The argument can be any of:
  - A 1-based listing position (e.g. 3)
  - A profile id (e.g. rajesh-kumar)
  - A name, case-insensitive (e.g. "priya sharma")
  - A derived key (e.g. priyasharma@example.com)`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&flagFrom, "from", "", "Listing to read (markup file/URL, catalog file or directory)")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	profiles, err := loadProfiles(cmd.Context(), cfg, flagFrom)
	if err != nil {
		return err
	}

	ctrl := listing.New(listing.NopDisplay{}, profiles, listing.WithLogger(logger))
	p, err := ctrl.Find(args[0])
	if err != nil {
		return fmt.Errorf("%w\nTip: run 'acco search <query>' to find a profile.", err)
	}
	fmt.Print(terminal.Detail(p, detailURL(cfg, p)))
	return nil
}
