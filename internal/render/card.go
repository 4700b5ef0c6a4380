// Package render projects profiles into listing markup and other output
// formats. Rendering never decides visibility.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strconv"

	"github.com/kamusis/acco/internal/directory"
)

// DefaultDetailPath is the profile detail page cards link to.
const DefaultDetailPath = "accountant/accountant-details.html"

// Options control card rendering.
type Options struct {
	DetailPath    string
	ContactDomain string
	Title         string
}

func (o Options) withDefaults() Options {
	if o.DetailPath == "" {
		o.DetailPath = DefaultDetailPath
	}
	if o.ContactDomain == "" {
		o.ContactDomain = directory.DefaultContactDomain
	}
	if o.Title == "" {
		o.Title = "Find an Accountant"
	}
	return o
}

// Entry is a profile with its visibility.
type Entry struct {
	Profile directory.Profile `json:"profile"`
	Visible bool              `json:"visible"`
}

// Entries marks every profile visible.
func Entries(profiles []directory.Profile) []Entry {
	out := make([]Entry, len(profiles))
	for i, p := range profiles {
		out[i] = Entry{Profile: p, Visible: true}
	}
	return out
}

// RatingText formats a rating the way cards display it: no trailing zeros.
func RatingText(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}

const cardTemplate = `{{define "card"}}
<div class="col-lg-4 col-md-6 col-12 accountant-card {{if .Visible}}visible{{else}}hidden{{end}}"
     data-id="{{.Profile.ID}}"
     data-location="{{.Profile.Attrs.Location}}"
     data-expertise="{{.Profile.Attrs.ExpertiseString}}"
     data-experience="{{.Profile.Attrs.Experience}}"
     data-rating="{{.Profile.Attrs.RatingFloor}}"
     data-price="{{.Profile.Attrs.Price}}">
    <div class="accountant-profile-card">
        <div class="profile-header">
            <div class="profile-image">
                <img src="{{.Profile.Image}}" alt="{{.Profile.Name}}" />
                <div class="verified-badge">
                    <i class="lni lni-checkmark-circle"></i>
                </div>
            </div>
            <div class="profile-info">
                <h3>{{.Profile.Name}}</h3>
                <p class="designation">{{.Profile.Designation}}</p>
                <div class="rating">
                    <div class="stars">{{stars .Profile.Rating}}</div>
                    <span class="rating-text">{{ratingText .Profile.Rating}} ({{.Profile.Reviews}} reviews)</span>
                </div>
            </div>
        </div>
        <div class="profile-details">
            <div class="location">
                <i class="lni lni-map-marker"></i>
                <span>{{.Profile.Location}}</span>
            </div>
            <div class="experience">
                <i class="lni lni-briefcase"></i>
                <span>{{.Profile.Experience}}</span>
            </div>
            <div class="specializations">
                {{range .Profile.Specializations}}<span class="specialization-tag">{{.}}</span>{{end}}
            </div>
        </div>
        <div class="profile-footer">
            <div class="pricing">
                <span class="price-label">Starting from</span>
                <span class="price">{{.Profile.Price}}</span>
            </div>
            <div class="action-buttons">
                <a href="{{detailURL .Profile.Name}}" class="btn btn-outline-primary btn-sm">View Profile</a>
                <button class="btn btn-primary btn-sm">Contact</button>
            </div>
        </div>
    </div>
</div>
{{end}}`

const pageTemplate = `{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8" />
<title>{{.Title}}</title>
</head>
<body>
<section class="marketplace">
    <div class="filters">
        <input type="text" id="searchInput" placeholder="Search by name, location or specialization" />
        <select id="locationFilter"><option value="">All Locations</option>{{range .Locations}}<option value="{{.}}">{{.}}</option>{{end}}</select>
        <select id="expertiseFilter"><option value="">All Expertise</option>{{range .Expertise}}<option value="{{.}}">{{.}}</option>{{end}}</select>
        <select id="experienceFilter"><option value="">Any Experience</option>{{range .Experience}}<option value="{{.}}">{{.}} years</option>{{end}}</select>
        <select id="ratingFilter"><option value="">Any Rating</option>{{range .Ratings}}<option value="{{.}}">{{.}}+ stars</option>{{end}}</select>
        <select id="priceFilter"><option value="">Any Price</option>{{range .Prices}}<option value="{{.}}">{{.}}</option>{{end}}</select>
        <button type="button" class="btn btn-link clear-filters">Clear all</button>
    </div>
    <p class="results">Showing <span id="resultsCount">{{.Visible}}</span> accountants</p>
    <div class="row" id="accountantsGrid">{{range .Entries}}{{template "card" .}}{{end}}</div>
    <div class="text-center">
        <button type="button" class="btn btn-outline-primary load-more-btn">Load More</button>
    </div>
</section>
</body>
</html>
{{end}}`

// RatingOptions are the minimum-rating choices offered by the page.
var RatingOptions = []string{"4.5", "4", "3.5", "3"}

type pageData struct {
	Title      string
	Visible    int
	Entries    []Entry
	Locations  []string
	Expertise  []string
	Experience []directory.ExperienceBracket
	Ratings    []string
	Prices     []directory.PriceBracket
}

func newTemplates(opts Options) *template.Template {
	funcs := template.FuncMap{
		"stars":      StarsHTML,
		"ratingText": RatingText,
		"detailURL": func(name string) string {
			return directory.DetailURL(opts.DetailPath, name, opts.ContactDomain)
		},
	}
	return template.Must(template.New("listing").Funcs(funcs).Parse(cardTemplate + pageTemplate))
}

// Card renders one visible profile card.
func Card(p directory.Profile, opts Options) ([]byte, error) {
	return renderEntry(Entry{Profile: p, Visible: true}, opts)
}

func renderEntry(e Entry, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := newTemplates(opts.withDefaults()).ExecuteTemplate(&buf, "card", e); err != nil {
		return nil, fmt.Errorf("cannot render card for %q: %w", e.Profile.Name, err)
	}
	return buf.Bytes(), nil
}

// Page renders a complete listing page: controls, count and cards. Filter
// options are derived from the entries.
func Page(entries []Entry, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	data := pageData{
		Title:      opts.Title,
		Entries:    entries,
		Experience: directory.ExperienceBrackets,
		Ratings:    RatingOptions,
		Prices:     directory.PriceBrackets,
	}
	locs := map[string]bool{}
	tags := map[string]bool{}
	for _, e := range entries {
		if e.Visible {
			data.Visible++
		}
		if e.Profile.Attrs.Location != "" {
			locs[e.Profile.Attrs.Location] = true
		}
		for _, t := range e.Profile.Attrs.Expertise {
			tags[t] = true
		}
	}
	data.Locations = sortedKeys(locs)
	data.Expertise = sortedKeys(tags)

	var buf bytes.Buffer
	if err := newTemplates(opts).ExecuteTemplate(&buf, "page", data); err != nil {
		return nil, fmt.Errorf("cannot render listing page: %w", err)
	}
	return buf.Bytes(), nil
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
