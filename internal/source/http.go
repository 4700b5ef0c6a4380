package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/kamusis/acco/internal/client"
	"github.com/kamusis/acco/internal/directory"
)

// HTTPSource fetches pages from a JSON endpoint:
//
//	GET {URL}?page=N&size=M
//	{"profiles": [...], "next_page": "N+1"}
//
// An empty or missing next_page ends the listing.
type HTTPSource struct {
	URL      string
	PageSize int
	Client   *http.Client
}

// NewHTTP returns an HTTPSource using a pooled client.
func NewHTTP(endpoint string, pageSize int) *HTTPSource {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &HTTPSource{URL: endpoint, PageSize: pageSize, Client: client.New(client.DefaultTimeout)}
}

type wireProfile struct {
	directory.Profile
	PriceAmount *int64 `json:"price_amount,omitempty"`
}

type wirePage struct {
	Profiles []wireProfile `json:"profiles"`
	NextPage any           `json:"next_page"`
}

func (wp wirePage) next() string {
	switch v := wp.NextPage.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// FetchPage implements PageSource.
func (s *HTTPSource) FetchPage(ctx context.Context, cursor string) (Page, error) {
	page := 1
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 1 {
			return Page{}, fmt.Errorf("%w: %q", ErrBadCursor, cursor)
		}
		page = n
	}

	u, err := url.Parse(s.URL)
	if err != nil {
		return Page{}, fmt.Errorf("invalid source URL %q: %w", s.URL, err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(s.PageSize))
	u.RawQuery = q.Encode()

	body, _, err := client.Get(ctx, s.Client, u.String(), "application/json")
	if err != nil {
		return Page{}, err
	}

	var wp wirePage
	if err := json.Unmarshal(body, &wp); err != nil {
		return Page{}, fmt.Errorf("cannot parse page %d from %s: %w", page, s.URL, err)
	}

	raw := make([]directory.Profile, 0, len(wp.Profiles))
	for _, w := range wp.Profiles {
		p := w.Profile
		if w.PriceAmount != nil {
			if p.Price == "" {
				p.Price = "₹" + humanize.Comma(*w.PriceAmount)
			}
			if p.Attrs.Price == "" {
				p.Attrs.Price = directory.PriceBracketFor(*w.PriceAmount)
			}
		}
		raw = append(raw, p)
	}
	profiles, err := prepare(raw)
	if err != nil {
		return Page{}, fmt.Errorf("page %d from %s: %w", page, s.URL, err)
	}
	return Page{Profiles: profiles, Next: wp.next()}, nil
}
