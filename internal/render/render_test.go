package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/kamusis/acco/internal/directory"
	"github.com/kamusis/acco/internal/markup"
)

func TestStars(t *testing.T) {
	cases := []struct {
		rating float64
		want   StarCounts
	}{
		{0, StarCounts{0, 0, 5}},
		{2.5, StarCounts{2, 1, 2}},
		{4.0, StarCounts{4, 0, 1}},
		{4.5, StarCounts{4, 1, 0}},
		{4.3, StarCounts{4, 1, 0}},
		{5, StarCounts{5, 0, 0}},
		{-1, StarCounts{0, 0, 5}},
		{7, StarCounts{5, 0, 0}},
	}
	for _, c := range cases {
		got := Stars(c.rating)
		if got != c.want {
			t.Errorf("Stars(%v) = %+v, want %+v", c.rating, got, c.want)
		}
		if n := got.Full + got.Half + got.Empty; n != 5 {
			t.Errorf("Stars(%v) has %d glyphs", c.rating, n)
		}
	}
}

func TestStarsHTML(t *testing.T) {
	got := string(StarsHTML(2.5))
	want := strings.Repeat(starFull, 2) + starHalf + strings.Repeat(starEmpty, 2)
	if got != want {
		t.Fatalf("StarsHTML(2.5) = %q", got)
	}
	if StarsText(4) != "★★★★☆" {
		t.Fatalf("StarsText(4) = %q", StarsText(4))
	}
}

func TestRatingText(t *testing.T) {
	for in, want := range map[float64]string{4.5: "4.5", 4: "4", 3.75: "3.75"} {
		if got := RatingText(in); got != want {
			t.Errorf("RatingText(%v) = %q, want %q", in, got, want)
		}
	}
}

func sample() []directory.Profile {
	ps := []directory.Profile{
		{
			ID:              "p1",
			Name:            "Arjun Mehta",
			Designation:     "Chartered Accountant (CA)",
			Location:        "Kolkata, West Bengal",
			Experience:      "6 years experience",
			Rating:          4.5,
			Reviews:         98,
			Specializations: []string{"GST Filing", "Tax Returns", "Compliance"},
			Price:           "₹7,500",
			Image:           "../assets/images/accountants/accountant-7.jpg",
			Attrs: directory.Attributes{
				Location:    "kolkata",
				Expertise:   []string{"gst", "tax"},
				Experience:  directory.Experience6to10,
				RatingFloor: 4,
				Price:       directory.Price5kto15k,
			},
		},
		{
			ID:              "p2",
			Name:            "Rohit Gupta",
			Designation:     "Chartered Accountant (CA)",
			Location:        "Jaipur, Rajasthan",
			Experience:      "3 years experience",
			Rating:          4,
			Reviews:         1067,
			Specializations: []string{"Bookkeeping & Payroll"},
			Price:           "₹4,800",
			Attrs: directory.Attributes{
				Location:    "jaipur",
				Expertise:   []string{"bookkeeping", "payroll"},
				Experience:  directory.Experience3to5,
				RatingFloor: 4,
				Price:       directory.Price0to5k,
			},
		},
	}
	return ps
}

func TestCardMarkup(t *testing.T) {
	b, err := Card(sample()[0], Options{})
	if err != nil {
		t.Fatalf("Card: %v", err)
	}
	html := string(b)
	for _, want := range []string{
		`accountant-card visible`,
		`data-location="kolkata"`,
		`data-expertise="gst,tax"`,
		`data-experience="6-10"`,
		`data-rating="4"`,
		`data-price="5000-15000"`,
		`<span class="rating-text">4.5 (98 reviews)</span>`,
		`href="accountant/accountant-details.html?key=arjunmehta%40example.com"`,
		starHalf,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("card markup missing %s", want)
		}
	}
}

func TestPageRoundTrip(t *testing.T) {
	profiles := sample()
	entries := Entries(profiles)
	entries[1].Visible = false

	b, err := Page(entries, Options{})
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	page, err := markup.ParseBytes(b)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(page.Missing) != 0 {
		t.Fatalf("missing controls: %v", page.Missing)
	}
	if len(page.Profiles) != len(profiles) {
		t.Fatalf("parsed %d profiles, want %d", len(page.Profiles), len(profiles))
	}
	for i, got := range page.Profiles {
		want := profiles[i]
		if got.ID != want.ID || got.Name != want.Name || got.Location != want.Location {
			t.Errorf("profile %d identity: got %+v", i, got)
		}
		if got.Rating != want.Rating || got.Reviews != want.Reviews {
			t.Errorf("profile %d rating: got %v (%d), want %v (%d)", i, got.Rating, got.Reviews, want.Rating, want.Reviews)
		}
		if got.Attrs.Location != want.Attrs.Location ||
			got.Attrs.ExpertiseString() != want.Attrs.ExpertiseString() ||
			got.Attrs.Experience != want.Attrs.Experience ||
			got.Attrs.RatingFloor != want.Attrs.RatingFloor ||
			got.Attrs.Price != want.Attrs.Price {
			t.Errorf("profile %d attributes: got %+v, want %+v", i, got.Attrs, want.Attrs)
		}
		if strings.Join(got.Specializations, "|") != strings.Join(want.Specializations, "|") {
			t.Errorf("profile %d specializations: got %v", i, got.Specializations)
		}
	}
	if got := page.Controls[markup.CountID].Value; got != "1" {
		t.Errorf("results count = %q, want 1", got)
	}
	if got := strings.Join(page.Options(markup.LocationID), ","); got != "jaipur,kolkata" {
		t.Errorf("location options = %q", got)
	}
}

func TestNewRenderer(t *testing.T) {
	if _, err := NewRenderer("xml", Options{}); err == nil {
		t.Fatal("expected error for unknown format")
	}

	r, err := NewRenderer("json", Options{})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	entries := Entries(sample())
	entries[0].Visible = false
	b, err := r.Render(entries)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	var out struct {
		Visible  int `json:"visible"`
		Total    int `json:"total"`
		Profiles []struct {
			Name      string `json:"name"`
			DetailURL string `json:"detail_url"`
		} `json:"profiles"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Visible != 1 || out.Total != 2 {
		t.Fatalf("counts = %d/%d", out.Visible, out.Total)
	}
	if out.Profiles[1].DetailURL != "accountant/accountant-details.html?key=rohitgupta%40example.com" {
		t.Fatalf("detail url = %q", out.Profiles[1].DetailURL)
	}

	r, err = NewRenderer("html", Options{Title: "Directory"})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	b, err = r.Render(entries)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(b), "<title>Directory</title>") {
		t.Fatal("html output missing title")
	}
}
