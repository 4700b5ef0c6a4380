// Package directory holds the provider profile model shared by the listing,
// rendering and catalog packages.
package directory

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// MaxRating is the upper bound of the rating scale.
const MaxRating = 5.0

// Attributes are the filterable codes attached to a profile. They are the
// exact strings the rendered card exposes as data-* attributes.
type Attributes struct {
	Location    string            `json:"location" yaml:"location"`
	Expertise   []string          `json:"expertise" yaml:"expertise"`
	Experience  ExperienceBracket `json:"experience" yaml:"experience"`
	RatingFloor int               `json:"rating" yaml:"rating"`
	Price       PriceBracket      `json:"price" yaml:"price"`
}

// Profile is one service-provider entry in the listing.
type Profile struct {
	ID              string     `json:"id,omitempty" yaml:"id,omitempty"`
	Name            string     `json:"name" yaml:"name"`
	Designation     string     `json:"designation" yaml:"designation"`
	Location        string     `json:"location" yaml:"location"`
	Experience      string     `json:"experience" yaml:"experience"`
	Specializations []string   `json:"specializations" yaml:"specializations"`
	Rating          float64    `json:"rating" yaml:"rating"`
	Reviews         int        `json:"reviews" yaml:"reviews"`
	Price           string     `json:"price" yaml:"price"`
	Image           string     `json:"image,omitempty" yaml:"image,omitempty"`
	Attrs           Attributes `json:"attributes" yaml:"attributes"`
}

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}

// Validate reports whether p can be shown in a listing.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	if math.IsNaN(p.Rating) || p.Rating < 0 || p.Rating > MaxRating {
		return fmt.Errorf("%w: rating %v for %q outside [0,5]", ErrInvalidProfile, p.Rating, p.Name)
	}
	if p.Reviews < 0 {
		return fmt.Errorf("%w: negative review count for %q", ErrInvalidProfile, p.Name)
	}
	return nil
}

// Normalize fills derived fields: a missing ID, the rating floor and the
// canonical form of expertise codes.
func (p *Profile) Normalize() {
	if p.ID == "" {
		p.ID = NewID()
	}
	if p.Attrs.RatingFloor == 0 && p.Rating >= 1 {
		p.Attrs.RatingFloor = int(math.Floor(p.Rating))
	}
	p.Attrs.Location = strings.TrimSpace(p.Attrs.Location)
	codes := make([]string, 0, len(p.Attrs.Expertise))
	for _, c := range p.Attrs.Expertise {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			codes = append(codes, c)
		}
	}
	p.Attrs.Expertise = codes
}

// Clone returns a deep copy of p.
func (p Profile) Clone() Profile {
	out := p
	out.Specializations = append([]string(nil), p.Specializations...)
	out.Attrs.Expertise = append([]string(nil), p.Attrs.Expertise...)
	return out
}

// HasExpertise reports whether code is one of the profile's expertise tags.
func (p Profile) HasExpertise(code string) bool {
	for _, c := range p.Attrs.Expertise {
		if c == code {
			return true
		}
	}
	return false
}

// ExpertiseString is the comma-joined form used in markup.
func (a Attributes) ExpertiseString() string {
	return strings.Join(a.Expertise, ",")
}

// SplitExpertise parses the comma-joined markup form back into codes.
func SplitExpertise(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
