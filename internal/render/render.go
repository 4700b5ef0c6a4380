package render

import (
	"encoding/json"
	"fmt"

	"github.com/kamusis/acco/internal/directory"
)

// Renderer formats a listing for output.
type Renderer interface {
	Render(entries []Entry) ([]byte, error)
}

// NewRenderer returns a Renderer for the given format string.
// Supported formats: "html" (default), "json".
func NewRenderer(format string, opts Options) (Renderer, error) {
	switch format {
	case "", "html":
		return &htmlRenderer{opts: opts}, nil
	case "json":
		return &jsonRenderer{opts: opts.withDefaults()}, nil
	default:
		return nil, fmt.Errorf("unknown format %q: supported formats are html, json", format)
	}
}

type htmlRenderer struct {
	opts Options
}

func (r *htmlRenderer) Render(entries []Entry) ([]byte, error) {
	return Page(entries, r.opts)
}

type jsonRenderer struct {
	opts Options
}

type jsonEntry struct {
	directory.Profile
	Visible   bool   `json:"visible"`
	DetailURL string `json:"detail_url"`
	Stars     string `json:"stars"`
}

type jsonListing struct {
	Visible  int         `json:"visible"`
	Total    int         `json:"total"`
	Profiles []jsonEntry `json:"profiles"`
}

func (r *jsonRenderer) Render(entries []Entry) ([]byte, error) {
	out := jsonListing{Total: len(entries), Profiles: make([]jsonEntry, 0, len(entries))}
	for _, e := range entries {
		if e.Visible {
			out.Visible++
		}
		out.Profiles = append(out.Profiles, jsonEntry{
			Profile:   e.Profile,
			Visible:   e.Visible,
			DetailURL: directory.DetailURL(r.opts.DetailPath, e.Profile.Name, r.opts.ContactDomain),
			Stars:     StarsText(e.Profile.Rating),
		})
	}
	return json.MarshalIndent(out, "", "  ")
}
