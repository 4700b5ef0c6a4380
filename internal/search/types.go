package search

import (
	"strconv"
	"strings"

	"github.com/kamusis/acco/internal/directory"
)

// Selection is the structured filter configuration. An empty string or a nil
// MinRating leaves that criterion unset.
type Selection struct {
	Location   string
	Expertise  string
	Experience directory.ExperienceBracket
	MinRating  *float64
	Price      directory.PriceBracket
}

// IsZero reports whether no criterion is set.
func (s Selection) IsZero() bool {
	return s.Location == "" && s.Expertise == "" && s.Experience == "" && s.MinRating == nil && s.Price == ""
}

// String renders the set criteria as key=value pairs in a fixed order.
func (s Selection) String() string {
	var parts []string
	if s.Location != "" {
		parts = append(parts, "location="+s.Location)
	}
	if s.Expertise != "" {
		parts = append(parts, "expertise="+s.Expertise)
	}
	if s.Experience != "" {
		parts = append(parts, "experience="+string(s.Experience))
	}
	if s.MinRating != nil {
		parts = append(parts, "rating="+strconv.FormatFloat(*s.MinRating, 'f', -1, 64))
	}
	if s.Price != "" {
		parts = append(parts, "price="+string(s.Price))
	}
	return strings.Join(parts, " ")
}

// Rating returns a pointer suitable for Selection.MinRating.
func Rating(v float64) *float64 {
	return &v
}
