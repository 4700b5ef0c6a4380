// Package markup reads a directory listing page: the profile cards inside
// the grid container and the filter controls around it.
package markup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kamusis/acco/internal/client"
	"github.com/kamusis/acco/internal/directory"
)

// Element ids and selectors of the listing page.
const (
	GridID       = "accountantsGrid"
	CardClass    = "accountant-card"
	CountID      = "resultsCount"
	SearchID     = "searchInput"
	LocationID   = "locationFilter"
	ExpertiseID  = "expertiseFilter"
	ExperienceID = "experienceFilter"
	RatingID     = "ratingFilter"
	PriceID      = "priceFilter"
	LoadMoreName = "load-more-btn"
)

// ControlIDs lists the page controls in the order they are bound.
var ControlIDs = []string{SearchID, LocationID, ExpertiseID, ExperienceID, RatingID, PriceID, CountID, LoadMoreName}

// Control is a page control that was found.
type Control struct {
	ID    string
	Tag   string
	Value string
	// Options holds the non-empty option values of a select.
	Options []string
}

// Page is the parsed listing.
type Page struct {
	Profiles []directory.Profile
	Controls map[string]Control
	// Missing names the controls absent from the page. Each is non-fatal.
	Missing []string
	// Skipped holds the cards that could not be read. The rest of the page
	// is kept.
	Skipped []SkippedCard
}

// SkippedCard is a card left out of Profiles.
type SkippedCard struct {
	Index int // 1-based position in the grid
	Err   error
}

func (s SkippedCard) Error() string {
	return fmt.Sprintf("card %d: %v", s.Index, s.Err)
}

func (s SkippedCard) Unwrap() error { return s.Err }

// Has reports whether the control with id was found.
func (p *Page) Has(id string) bool {
	_, ok := p.Controls[id]
	return ok
}

// Options returns the option values of a select control, or nil.
func (p *Page) Options(id string) []string {
	return p.Controls[id].Options
}

var ratingTextRe = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?)\s*\(\s*([0-9,]+)\s+reviews?\s*\)`)

// Parse reads a listing page. A missing grid container is a
// *directory.MissingElementError; missing controls and unreadable cards are
// only recorded.
func Parse(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("cannot parse listing markup: %w", err)
	}

	grid := doc.Find("#" + GridID).First()
	if grid.Length() == 0 {
		return nil, &directory.MissingElementError{Element: GridID}
	}

	page := &Page{Controls: make(map[string]Control)}

	grid.Find("." + CardClass).Each(func(i int, s *goquery.Selection) {
		p, err := parseCard(s)
		if err != nil {
			page.Skipped = append(page.Skipped, SkippedCard{Index: i + 1, Err: err})
			return
		}
		page.Profiles = append(page.Profiles, p)
	})

	for _, id := range ControlIDs {
		sel := doc.Find("#" + id).First()
		if id == LoadMoreName {
			sel = doc.Find("." + id).First()
		}
		if sel.Length() == 0 {
			page.Missing = append(page.Missing, id)
			continue
		}
		page.Controls[id] = readControl(id, sel)
	}
	return page, nil
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(b []byte) (*Page, error) {
	return Parse(bytes.NewReader(b))
}

// Fetch downloads and parses a listing page.
func Fetch(ctx context.Context, c *http.Client, url string) (*Page, error) {
	body, _, err := client.Get(ctx, c, url, "text/html")
	if err != nil {
		return nil, err
	}
	return ParseBytes(body)
}

func parseCard(s *goquery.Selection) (directory.Profile, error) {
	p := directory.Profile{
		Name:        text(s.Find("h3")),
		Designation: text(s.Find(".designation")),
		Location:    text(s.Find(".location span")),
		Experience:  text(s.Find(".experience span")),
		Price:       text(s.Find(".price")),
	}
	s.Find(".specialization-tag").Each(func(_ int, tag *goquery.Selection) {
		p.Specializations = append(p.Specializations, strings.TrimSpace(tag.Text()))
	})
	if img := s.Find("img").First(); img.Length() > 0 {
		p.Image, _ = img.Attr("src")
	}

	p.ID = attr(s, "data-id")
	p.Attrs.Location = attr(s, "data-location")
	p.Attrs.Expertise = directory.SplitExpertise(attr(s, "data-expertise"))
	p.Attrs.Experience = directory.ExperienceBracket(attr(s, "data-experience"))
	p.Attrs.Price = directory.PriceBracket(attr(s, "data-price"))
	var rating float64
	if v := attr(s, "data-rating"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(r) || r < 0 || r > directory.MaxRating {
			return p, fmt.Errorf("%w: data-rating %q", directory.ErrInvalidProfile, v)
		}
		rating = r
		p.Attrs.RatingFloor = int(math.Floor(r))
	}

	if m := ratingTextRe.FindStringSubmatch(text(s.Find(".rating-text"))); m != nil {
		p.Rating, _ = strconv.ParseFloat(m[1], 64)
		p.Reviews, _ = strconv.Atoi(strings.ReplaceAll(m[2], ",", ""))
	} else {
		p.Rating = rating
	}

	p.Normalize()
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

func readControl(id string, s *goquery.Selection) Control {
	c := Control{ID: id, Tag: goquery.NodeName(s)}
	switch c.Tag {
	case "select":
		s.Find("option").Each(func(_ int, o *goquery.Selection) {
			v, ok := o.Attr("value")
			if !ok {
				v = strings.TrimSpace(o.Text())
			}
			if v != "" {
				c.Options = append(c.Options, v)
			}
			if _, selected := o.Attr("selected"); selected {
				c.Value = v
			}
		})
	case "input":
		c.Value, _ = s.Attr("value")
	default:
		c.Value = text(s)
	}
	return c
}

func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.First().Text())
}

func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return strings.TrimSpace(v)
}
