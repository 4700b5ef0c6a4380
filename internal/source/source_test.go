package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamusis/acco/internal/directory"
)

func TestStaticSourceReturnsFixedBatch(t *testing.T) {
	src := NewStatic(-1)
	page, err := src.FetchPage(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, page.Profiles, 3)
	assert.Equal(t, "Arjun Mehta", page.Profiles[0].Name)
	assert.Equal(t, "kolkata", page.Profiles[0].Attrs.Location)
	assert.Equal(t, "3", page.Next)

	again, err := src.FetchPage(context.Background(), page.Next)
	require.NoError(t, err)
	require.Len(t, again.Profiles, 3)
	assert.NotEqual(t, page.Profiles[0].ID, again.Profiles[0].ID, "each fetch yields new records")
	assert.Equal(t, "6", again.Next)
}

func TestStaticSourceHonoursLatencyAndCancellation(t *testing.T) {
	src := NewStatic(40 * time.Millisecond)
	start := time.Now()
	_, err := src.FetchPage(context.Background(), "")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewStatic(time.Hour).FetchPage(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewStaticDefaultLatency(t *testing.T) {
	assert.Equal(t, DefaultLatency, NewStatic(0).Latency)
	assert.Equal(t, 1500*time.Millisecond, DefaultLatency)
}

func TestCatalogSourcePages(t *testing.T) {
	src := NewCatalog(FixedBatch(), 2)
	ctx := context.Background()

	first, err := src.FetchPage(ctx, "")
	require.NoError(t, err)
	assert.Len(t, first.Profiles, 2)
	assert.Equal(t, "2", first.Next)

	last, err := src.FetchPage(ctx, first.Next)
	require.NoError(t, err)
	assert.Len(t, last.Profiles, 1)
	assert.Equal(t, "", last.Next)

	_, err = src.FetchPage(ctx, "x")
	assert.ErrorIs(t, err, ErrBadCursor)
	_, err = src.FetchPage(ctx, "99")
	assert.ErrorIs(t, err, ErrBadCursor)
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		assert.Equal(t, "2", r.URL.Query().Get("size"))
		w.Header().Set("Content-Type", "application/json")
		switch page {
		case "1":
			fmt.Fprint(w, `{"profiles":[
				{"name":"Kavya Rao","designation":"CA","location":"Pune","rating":4.1,"reviews":1200,"price_amount":12500,
				 "attributes":{"location":"pune","expertise":["tax"],"experience":"3-5"}}
			],"next_page":2}`)
		case "2":
			fmt.Fprint(w, `{"profiles":[{"name":"Nikhil Shah","rating":3.5,"price":"₹3,000"}],"next_page":""}`)
		default:
			http.Error(w, "no such page", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	src := NewHTTP(srv.URL+"/api/accountants", 2)
	ctx := context.Background()

	p1, err := src.FetchPage(ctx, "")
	require.NoError(t, err)
	require.Len(t, p1.Profiles, 1)
	kavya := p1.Profiles[0]
	assert.Equal(t, "₹12,500", kavya.Price)
	assert.Equal(t, directory.Price5kto15k, kavya.Attrs.Price)
	assert.Equal(t, 4, kavya.Attrs.RatingFloor)
	assert.NotEmpty(t, kavya.ID)
	assert.Equal(t, "2", p1.Next)

	p2, err := src.FetchPage(ctx, p1.Next)
	require.NoError(t, err)
	assert.Equal(t, "", p2.Next)

	_, err = src.FetchPage(ctx, "3")
	require.Error(t, err)
}

func TestHTTPSourceRejectsInvalidProfiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"profiles": []map[string]any{{"name": "Bad", "rating": 7}},
		})
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.URL, 3).FetchPage(context.Background(), "")
	assert.True(t, errors.Is(err, directory.ErrInvalidProfile), "got %v", err)
}

func TestSQLSource(t *testing.T) {
	ctx := context.Background()
	src, err := OpenSQLite(filepath.Join(t.TempDir(), "catalog.db"), 2)
	require.NoError(t, err)
	defer src.Close()

	batch := FixedBatch()
	for i := range batch {
		batch[i].ID = fmt.Sprintf("p-%d", i)
	}
	added, err := src.Insert(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	added, err = src.Insert(ctx, batch[:1])
	require.NoError(t, err)
	assert.Equal(t, 0, added, "existing ids are ignored")

	n, err := src.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	first, err := src.FetchPage(ctx, "")
	require.NoError(t, err)
	require.Len(t, first.Profiles, 2)
	assert.Equal(t, "Arjun Mehta", first.Profiles[0].Name)
	assert.Equal(t, []string{"gst", "tax"}, first.Profiles[0].Attrs.Expertise)
	assert.Equal(t, []string{"GST Filing", "Tax Returns", "Compliance"}, first.Profiles[0].Specializations)
	assert.Equal(t, "2", first.Next)

	last, err := src.FetchPage(ctx, first.Next)
	require.NoError(t, err)
	require.Len(t, last.Profiles, 1)
	assert.Equal(t, directory.Price0to5k, last.Profiles[0].Attrs.Price)
	assert.Equal(t, "", last.Next)
}
