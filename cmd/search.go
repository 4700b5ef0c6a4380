package cmd

import (
	"fmt"
	"strings"

	"github.com/kamusis/acco/internal/search"
	"github.com/kamusis/acco/internal/terminal"
	"github.com/spf13/cobra"
)

var (
	flagSearchLimit int
	flagSearchSort  string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the listing by free text",
	Long: `Match the query against each profile's searchable text: name,
designation, location and specializations, case-insensitively.

Example:
  acco search gst
  acco search "chartered kolkata" --sort rating`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&flagSearchLimit, "limit", 0, "Maximum number of results (0 = all)")
	searchCmd.Flags().StringVar(&flagSearchSort, "sort", search.SortListing, "Result order: listing, rating or name")
	searchCmd.Flags().StringVar(&flagFrom, "from", "", "Listing to read (markup file/URL, catalog file or directory)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	profiles, err := loadProfiles(cmd.Context(), cfg, flagFrom)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	results := search.TextSearch(profiles, query, flagSearchLimit)
	if err := search.SortProfiles(results, flagSearchSort); err != nil {
		return err
	}

	fmt.Println(terminal.CountLine(len(results), len(profiles)))
	if len(results) == 0 {
		printMiss("", fmt.Sprintf("no accountants match %q", query))
		return nil
	}
	out, err := terminal.Table(results, 1)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
