package source

import (
	"context"
	"strconv"

	"github.com/kamusis/acco/internal/directory"
)

// DefaultPageSize is used when a source is configured without one.
const DefaultPageSize = 3

// CatalogSource pages through an in-memory catalog.
type CatalogSource struct {
	profiles []directory.Profile
	pageSize int
}

// NewCatalog returns a source serving profiles pageSize at a time.
func NewCatalog(profiles []directory.Profile, pageSize int) *CatalogSource {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	cp := make([]directory.Profile, len(profiles))
	for i, p := range profiles {
		cp[i] = p.Clone()
	}
	return &CatalogSource{profiles: cp, pageSize: pageSize}
}

// FetchPage implements PageSource.
func (s *CatalogSource) FetchPage(ctx context.Context, cursor string) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	off, err := offsetCursor(cursor)
	if err != nil {
		return Page{}, err
	}
	if off > len(s.profiles) {
		return Page{}, ErrBadCursor
	}
	end := off + s.pageSize
	if end > len(s.profiles) {
		end = len(s.profiles)
	}
	profiles, err := prepare(s.profiles[off:end])
	if err != nil {
		return Page{}, err
	}
	next := ""
	if end < len(s.profiles) {
		next = strconv.Itoa(end)
	}
	return Page{Profiles: profiles, Next: next}, nil
}
