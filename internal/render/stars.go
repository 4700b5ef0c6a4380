package render

import (
	"html/template"
	"math"
	"strings"

	"github.com/kamusis/acco/internal/directory"
)

// StarCounts is the glyph breakdown of a rating.
type StarCounts struct {
	Full  int
	Half  int
	Empty int
}

// Stars splits rating into floor(r) full stars, one half star when r has a
// fractional part and 5-ceil(r) empty stars. rating is clamped to [0,5].
func Stars(rating float64) StarCounts {
	r := rating
	switch {
	case math.IsNaN(r) || r < 0:
		r = 0
	case r > directory.MaxRating:
		r = directory.MaxRating
	}
	c := StarCounts{
		Full:  int(math.Floor(r)),
		Empty: int(directory.MaxRating - math.Ceil(r)),
	}
	if r != math.Floor(r) {
		c.Half = 1
	}
	return c
}

const (
	starFull  = `<i class="lni lni-star-filled"></i>`
	starHalf  = `<i class="lni lni-star-half"></i>`
	starEmpty = `<i class="lni lni-star"></i>`
)

// StarsHTML renders the star glyphs as icon elements.
func StarsHTML(rating float64) template.HTML {
	c := Stars(rating)
	var b strings.Builder
	b.WriteString(strings.Repeat(starFull, c.Full))
	b.WriteString(strings.Repeat(starHalf, c.Half))
	b.WriteString(strings.Repeat(starEmpty, c.Empty))
	return template.HTML(b.String())
}

// StarsText renders the star glyphs for a terminal.
func StarsText(rating float64) string {
	c := Stars(rating)
	return strings.Repeat("★", c.Full) + strings.Repeat("⯪", c.Half) + strings.Repeat("☆", c.Empty)
}
