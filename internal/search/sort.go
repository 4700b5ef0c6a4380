package search

import (
	"fmt"
	"sort"

	"github.com/kamusis/acco/internal/directory"
)

// Sort orders accepted by SortProfiles.
const (
	SortListing = "listing"
	SortRating  = "rating"
	SortName    = "name"
)

// SortProfiles orders profiles in place. SortListing keeps listing order,
// SortRating sorts by rating (descending) then name, SortName by name.
func SortProfiles(profiles []directory.Profile, by string) error {
	switch by {
	case "", SortListing:
		return nil
	case SortRating:
		sort.SliceStable(profiles, func(i, j int) bool {
			if profiles[i].Rating == profiles[j].Rating {
				return profiles[i].Name < profiles[j].Name
			}
			return profiles[i].Rating > profiles[j].Rating
		})
	case SortName:
		sort.SliceStable(profiles, func(i, j int) bool {
			return profiles[i].Name < profiles[j].Name
		})
	default:
		return fmt.Errorf("unknown sort %q (want listing, rating or name)", by)
	}
	return nil
}
