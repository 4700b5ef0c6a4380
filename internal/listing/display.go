package listing

import "github.com/kamusis/acco/internal/directory"

// Display is the projection the controller drives. Implementations render;
// they never decide visibility.
type Display interface {
	// PublishCount is called after every visibility recomputation.
	PublishCount(visible, total int)
	// Appended receives newly fetched records before they join the listing.
	Appended(profiles []directory.Profile)
	// LoadingChanged reports entering and leaving the "load more" state.
	LoadingChanged(loading bool)
}

// NopDisplay discards everything.
type NopDisplay struct{}

func (NopDisplay) PublishCount(int, int) {}
func (NopDisplay) Appended([]directory.Profile) {}
func (NopDisplay) LoadingChanged(bool) {}
