package markup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kamusis/acco/internal/client"
	"github.com/kamusis/acco/internal/directory"
)

const listingPage = `<html><body>
<input id="searchInput" type="text" />
<select id="locationFilter">
  <option value="">All</option>
  <option value="kolkata">Kolkata</option>
  <option value="delhi" selected>Delhi</option>
</select>
<span id="resultsCount">2</span>
<div id="accountantsGrid">
  <div class="accountant-card visible" data-location="kolkata" data-expertise="gst,tax" data-experience="10+" data-rating="4" data-price="5000-15000">
    <img src="a.jpg" />
    <h3> Rajesh Kumar </h3>
    <p class="designation">Chartered Accountant (CA)</p>
    <span class="rating-text">4.8 (1,250 reviews)</span>
    <div class="location"><i></i><span>Kolkata, West Bengal</span></div>
    <div class="experience"><i></i><span>12 years experience</span></div>
    <span class="specialization-tag">GST Filing</span><span class="specialization-tag">Tax Planning</span>
    <span class="price">₹8,000</span>
  </div>
  <div class="accountant-card hidden" data-location="delhi" data-expertise="audit" data-experience="6-10" data-rating="4" data-price="15000-30000">
    <h3>Priya Sharma</h3>
  </div>
</div>
</body></html>`

func TestParse(t *testing.T) {
	page, err := Parse(strings.NewReader(listingPage))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(page.Profiles) != 2 {
		t.Fatalf("got %d profiles, want 2 (hidden cards are still records)", len(page.Profiles))
	}

	p := page.Profiles[0]
	if p.Name != "Rajesh Kumar" || p.Location != "Kolkata, West Bengal" || p.Image != "a.jpg" {
		t.Errorf("unexpected card fields: %+v", p)
	}
	if p.Rating != 4.8 || p.Reviews != 1250 {
		t.Errorf("rating = %v (%d)", p.Rating, p.Reviews)
	}
	if !p.HasExpertise("tax") || p.Attrs.Experience != directory.Experience10up || p.Attrs.Price != directory.Price5kto15k {
		t.Errorf("attributes = %+v", p.Attrs)
	}
	if p.ID == "" {
		t.Error("parsed profile has no id")
	}

	// Without a rating text the floor is the rating.
	if got := page.Profiles[1].Rating; got != 4 {
		t.Errorf("fallback rating = %v", got)
	}

	if got := strings.Join(page.Options(LocationID), ","); got != "kolkata,delhi" {
		t.Errorf("location options = %q", got)
	}
	if got := page.Controls[LocationID].Value; got != "delhi" {
		t.Errorf("location value = %q", got)
	}
	if !page.Has(SearchID) || !page.Has(CountID) {
		t.Error("expected search input and count")
	}
	want := []string{ExpertiseID, ExperienceID, RatingID, PriceID, LoadMoreName}
	if strings.Join(page.Missing, ",") != strings.Join(want, ",") {
		t.Errorf("missing = %v, want %v", page.Missing, want)
	}
}

func TestParseMissingGrid(t *testing.T) {
	_, err := Parse(strings.NewReader(`<html><body><input id="searchInput"></body></html>`))
	var missing *directory.MissingElementError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingElementError, got %v", err)
	}
	if missing.Element != GridID {
		t.Fatalf("element = %q", missing.Element)
	}
}

func TestParseSkipsUnreadableCards(t *testing.T) {
	page, err := Parse(strings.NewReader(`<div id="accountantsGrid">
  <div class="accountant-card" data-rating="4"><h3>Rajesh Kumar</h3></div>
  <div class="accountant-card" data-rating="4.5"><h3>Priya Sharma</h3></div>
  <div class="accountant-card" data-rating="four"><h3>Amit Patel</h3></div>
  <div class="accountant-card" data-rating="9"><h3>Sneha Reddy</h3></div>
  <div class="accountant-card" data-rating="3"></div>
</div>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(page.Profiles) != 2 {
		t.Fatalf("got %d profiles, want 2", len(page.Profiles))
	}
	p := page.Profiles[1]
	if p.Name != "Priya Sharma" || p.Attrs.RatingFloor != 4 || p.Rating != 4.5 {
		t.Errorf("fractional rating card = %+v", p)
	}

	if len(page.Skipped) != 3 {
		t.Fatalf("skipped = %v, want 3 cards", page.Skipped)
	}
	for i, want := range []int{3, 4, 5} {
		sk := page.Skipped[i]
		if sk.Index != want {
			t.Errorf("skipped[%d].Index = %d, want %d", i, sk.Index, want)
		}
		if !errors.Is(sk, directory.ErrInvalidProfile) {
			t.Errorf("skipped[%d] = %v, want ErrInvalidProfile", i, sk)
		}
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/index.html" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(listingPage))
	}))
	defer srv.Close()

	page, err := Fetch(context.Background(), client.New(0), srv.URL+"/index.html")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(page.Profiles) != 2 {
		t.Fatalf("got %d profiles", len(page.Profiles))
	}

	_, err = Fetch(context.Background(), client.New(0), srv.URL+"/missing")
	var se *client.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
}
