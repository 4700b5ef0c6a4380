package cmd

import (
	"fmt"

	"github.com/kamusis/acco/internal/search"
	"github.com/kamusis/acco/internal/terminal"
	"github.com/spf13/cobra"
)

var (
	flagFilterLocation   string
	flagFilterExpertise  string
	flagFilterExperience string
	flagFilterMinRating  string
	flagFilterPrice      string
	flagFilterSort       string
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Filter the listing by location, expertise, experience, rating and price",
	Long: `Show the profiles that pass every criterion given. Unset criteria are
ignored; with no flags every profile is shown.

Experience brackets: 0-2, 3-5, 6-10, 10+
Price brackets:      0-5000, 5000-15000, 15000-30000, 30000+

Example:
  acco filter --location kolkata
  acco filter --expertise gst --min-rating 4.5`,
	Args: cobra.NoArgs,
	RunE: runFilter,
}

func init() {
	filterCmd.Flags().StringVar(&flagFilterLocation, "location", "", "Location code, e.g. kolkata")
	filterCmd.Flags().StringVar(&flagFilterExpertise, "expertise", "", "Expertise code, e.g. gst")
	filterCmd.Flags().StringVar(&flagFilterExperience, "experience", "", "Experience bracket")
	filterCmd.Flags().StringVar(&flagFilterMinRating, "min-rating", "", "Minimum rating, e.g. 4.5")
	filterCmd.Flags().StringVar(&flagFilterPrice, "price", "", "Price bracket")
	filterCmd.Flags().StringVar(&flagFilterSort, "sort", search.SortListing, "Result order: listing, rating or name")
	filterCmd.Flags().StringVar(&flagFrom, "from", "", "Listing to read (markup file/URL, catalog file or directory)")
	rootCmd.AddCommand(filterCmd)
}

func filterSelection() (search.Selection, error) {
	return search.ParseSelection(map[string]string{
		search.FieldLocation:   flagFilterLocation,
		search.FieldExpertise:  flagFilterExpertise,
		search.FieldExperience: flagFilterExperience,
		search.FieldRating:     flagFilterMinRating,
		search.FieldPrice:      flagFilterPrice,
	})
}

func runFilter(cmd *cobra.Command, _ []string) error {
	sel, err := filterSelection()
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	profiles, err := loadProfiles(cmd.Context(), cfg, flagFrom)
	if err != nil {
		return err
	}

	results := search.Filter(profiles, sel)
	if err := search.SortProfiles(results, flagFilterSort); err != nil {
		return err
	}

	fmt.Println(terminal.CountLine(len(results), len(profiles)))
	if len(results) == 0 {
		printMiss("", fmt.Sprintf("no accountants match %s", sel))
		return nil
	}
	out, err := terminal.Table(results, 1)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
