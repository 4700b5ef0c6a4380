// Package source provides the paginated data sources behind "load more".
package source

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kamusis/acco/internal/directory"
)

// Page is one batch of profiles. An empty Next means the source has no
// further pages.
type Page struct {
	Profiles []directory.Profile
	Next     string
}

// PageSource fetches the page identified by cursor. The empty cursor is the
// first page.
type PageSource interface {
	FetchPage(ctx context.Context, cursor string) (Page, error)
}

// ErrBadCursor is returned for a cursor the source did not issue.
var ErrBadCursor = errors.New("invalid page cursor")

// offsetCursor decodes the decimal offset cursors used by the offset-based
// sources.
func offsetCursor(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(cursor)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadCursor, cursor)
	}
	return n, nil
}

// prepare normalizes and validates fetched profiles, dropping none: an
// invalid record fails the whole page.
func prepare(profiles []directory.Profile) ([]directory.Profile, error) {
	out := make([]directory.Profile, 0, len(profiles))
	for _, p := range profiles {
		p = p.Clone()
		p.Normalize()
		if err := p.Validate(); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
