package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamusis/acco/internal/directory"
	"github.com/kamusis/acco/internal/search"
	"github.com/kamusis/acco/internal/source"
)

type recordingDisplay struct {
	mu     sync.Mutex
	events []string
	counts []int
}

func (d *recordingDisplay) PublishCount(visible, total int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, fmt.Sprintf("count %d/%d", visible, total))
	d.counts = append(d.counts, visible)
}

func (d *recordingDisplay) Appended(profiles []directory.Profile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, fmt.Sprintf("appended %d", len(profiles)))
}

func (d *recordingDisplay) LoadingChanged(loading bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, fmt.Sprintf("loading %t", loading))
}

func (d *recordingDisplay) reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = nil
	d.counts = nil
}

func (d *recordingDisplay) lastCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.counts) == 0 {
		return -1
	}
	return d.counts[len(d.counts)-1]
}

func (d *recordingDisplay) snapshot() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.events...)
}

func profile(name, loc string, expertise []string, exp directory.ExperienceBracket, rating float64, price directory.PriceBracket) directory.Profile {
	p := directory.Profile{
		Name:        name,
		Designation: "Chartered Accountant (CA)",
		Location:    loc,
		Rating:      rating,
		Attrs: directory.Attributes{
			Location:   loc,
			Expertise:  expertise,
			Experience: exp,
			Price:      price,
		},
	}
	p.Normalize()
	return p
}

// nineProfiles has three records in kolkata.
func nineProfiles() []directory.Profile {
	return []directory.Profile{
		profile("Rajesh Kumar", "kolkata", []string{"tax", "gst"}, directory.Experience10up, 4.8, directory.Price5kto15k),
		profile("Priya Sharma", "delhi", []string{"audit"}, directory.Experience6to10, 4.6, directory.Price15kto30k),
		profile("Amit Patel", "mumbai", []string{"advisory"}, directory.Experience10up, 4.9, directory.Price30kAndUp),
		profile("Sneha Reddy", "bangalore", []string{"bookkeeping", "payroll"}, directory.Experience3to5, 4.2, directory.Price0to5k),
		profile("Vikram Singh", "kolkata", []string{"audit", "tax"}, directory.Experience6to10, 4.4, directory.Price5kto15k),
		profile("Anita Desai", "pune", []string{"gst"}, directory.Experience0to2, 3.8, directory.Price0to5k),
		profile("Suresh Iyer", "chennai", []string{"tax"}, directory.Experience10up, 4.7, directory.Price15kto30k),
		profile("Meera Nair", "kolkata", []string{"advisory", "gst"}, directory.Experience3to5, 4.0, directory.Price5kto15k),
		profile("Karan Malhotra", "delhi", []string{"payroll"}, directory.Experience3to5, 3.5, directory.Price0to5k),
	}
}

func TestNewPublishesInitialCount(t *testing.T) {
	d := &recordingDisplay{}
	c := New(d, nineProfiles())
	assert.Equal(t, 9, d.lastCount())
	assert.Equal(t, 9, c.VisibleCount())
	assert.Equal(t, 9, c.Total())
}

func TestNewWithoutDisplay(t *testing.T) {
	c := New(nil, nineProfiles())
	assert.Equal(t, 3, c.ApplyStructuredFilters(search.Selection{Location: "kolkata"}))
}

func TestLocationFilter(t *testing.T) {
	d := &recordingDisplay{}
	c := New(d, nineProfiles())

	n := c.ApplyStructuredFilters(search.Selection{Location: "kolkata"})
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, d.lastCount())
	for _, p := range c.Visible() {
		assert.Equal(t, "kolkata", p.Attrs.Location)
	}

	assert.Equal(t, 9, c.ClearAll())
	assert.Equal(t, 9, d.lastCount())
	q, sel := c.Controls()
	assert.Empty(t, q)
	assert.True(t, sel.IsZero())
}

func TestCountAlwaysMatchesVisibleRecords(t *testing.T) {
	d := &recordingDisplay{}
	c := New(d, nineProfiles())

	steps := []func() int{
		func() int { return c.ApplyTextSearch("kumar") },
		func() int { return c.ApplyTextSearch("CHARTERED") },
		func() int { return c.ApplyStructuredFilters(search.Selection{Expertise: "gst"}) },
		func() int {
			return c.ApplyStructuredFilters(search.Selection{MinRating: search.Rating(4.5), Experience: directory.Experience10up})
		},
		func() int { return c.ApplyTextSearch("nobody matches this") },
		c.ClearAll,
	}
	for i, step := range steps {
		n := step()
		visible := 0
		for _, r := range c.Records() {
			if r.Visible {
				visible++
			}
		}
		assert.Equal(t, visible, n, "step %d", i)
		assert.Equal(t, visible, d.lastCount(), "step %d", i)
	}
}

func TestRecomputationIsIdempotent(t *testing.T) {
	c := New(nil, nineProfiles())
	sel := search.Selection{Expertise: "tax", MinRating: search.Rating(4.5)}

	c.ApplyStructuredFilters(sel)
	first := c.Records()
	c.ApplyStructuredFilters(sel)
	assert.Equal(t, first, c.Records())

	c.ApplyTextSearch("delhi")
	first = c.Records()
	c.ApplyTextSearch("delhi")
	assert.Equal(t, first, c.Records())
}

func TestFiltersDoNotComposeByDefault(t *testing.T) {
	c := New(nil, nineProfiles())

	assert.Equal(t, 2, c.ApplyTextSearch("delhi"))
	// The filter ignores the standing query.
	assert.Equal(t, 3, c.ApplyStructuredFilters(search.Selection{Location: "kolkata"}))
	// And the query ignores the standing filter.
	assert.Equal(t, 2, c.ApplyTextSearch("delhi"))

	q, sel := c.Controls()
	assert.Equal(t, "delhi", q)
	assert.Equal(t, "kolkata", sel.Location)
}

func TestComposedFilters(t *testing.T) {
	c := New(nil, nineProfiles(), WithComposedFilters(true))
	require.True(t, c.Composed())

	assert.Equal(t, 3, c.ApplyStructuredFilters(search.Selection{Location: "kolkata"}))
	assert.Equal(t, 1, c.ApplyTextSearch("vikram"))
	assert.Equal(t, 0, c.ApplyTextSearch("delhi"))
	assert.Equal(t, 9, c.ClearAll())
}

func TestMinRatingUsesRawRating(t *testing.T) {
	c := New(nil, nineProfiles())
	// Rajesh 4.8, Amit 4.9, Priya 4.6, Suresh 4.7.
	assert.Equal(t, 4, c.ApplyStructuredFilters(search.Selection{MinRating: search.Rating(4.5)}))
}

func TestFind(t *testing.T) {
	c := New(nil, nineProfiles())
	all := c.Records()

	p, err := c.Find("2")
	require.NoError(t, err)
	assert.Equal(t, "Priya Sharma", p.Name)

	p, err = c.Find("meera nair")
	require.NoError(t, err)
	assert.Equal(t, "Meera Nair", p.Name)

	p, err = c.Find("amitpatel@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Amit Patel", p.Name)

	p, err = c.Find(all[3].Profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sneha Reddy", p.Name)

	_, err = c.Find("10")
	assert.ErrorIs(t, err, ErrUnknownRecord)
	_, err = c.Find("nobody")
	assert.ErrorIs(t, err, ErrUnknownRecord)
}

func TestRequestContact(t *testing.T) {
	c := New(nil, nineProfiles())
	msg, err := c.RequestContact("1")
	require.NoError(t, err)
	assert.Equal(t, "Contacting Rajesh Kumar... This would open a contact form or redirect to their profile.", msg)

	var got string
	c = New(nil, nineProfiles(), WithContactHandler(ContactFunc(func(p directory.Profile) string {
		got = p.Name
		return "ok"
	})))
	msg, err = c.RequestContact("Karan Malhotra")
	require.NoError(t, err)
	assert.Equal(t, "ok", msg)
	assert.Equal(t, "Karan Malhotra", got)

	_, err = c.RequestContact("nobody")
	assert.ErrorIs(t, err, ErrUnknownRecord)
}

func TestRequestMoreAppendsThreeVisibleRecords(t *testing.T) {
	d := &recordingDisplay{}
	c := New(d, nineProfiles())
	c.ApplyStructuredFilters(search.Selection{Location: "kolkata"})
	d.reset()

	a := NewAppender(c, source.NewStatic(-1), nil)
	batch, err := a.RequestMore(context.Background())
	require.NoError(t, err)
	assert.Len(t, batch.Added, 3)
	assert.Equal(t, 12, batch.Total)
	// Appended records join as visible even though the filter would hide two.
	assert.Equal(t, 6, batch.Visible)
	assert.False(t, batch.Done)
	assert.False(t, a.Loading())

	assert.Equal(t, []string{"loading true", "appended 3", "loading false", "count 6/12"}, d.snapshot())
}

func TestRequestMoreComposedEvaluatesNewRecords(t *testing.T) {
	c := New(nil, nineProfiles(), WithComposedFilters(true))
	c.ApplyStructuredFilters(search.Selection{Location: "kolkata"})

	batch, err := NewAppender(c, source.NewStatic(-1), nil).RequestMore(context.Background())
	require.NoError(t, err)
	// Only Arjun Mehta of the fixed batch is in kolkata.
	assert.Equal(t, 4, batch.Visible)
}

// idleProbeDisplay records whether a request was still in flight each time
// the display was told loading ended.
type idleProbeDisplay struct {
	NopDisplay
	a        *Appender
	inFlight []bool
}

func (d *idleProbeDisplay) LoadingChanged(loading bool) {
	if !loading {
		d.inFlight = append(d.inFlight, d.a.Loading())
	}
}

func TestRequestMoreLeavesLoadingBeforeAcceptingNext(t *testing.T) {
	d := &idleProbeDisplay{}
	c := New(d, nineProfiles())
	src := &failingSource{}
	d.a = NewAppender(c, source.NewStatic(-1), nil)

	_, err := d.a.RequestMore(context.Background())
	require.NoError(t, err)

	failing := NewAppender(c, src, nil)
	d.a = failing
	_, err = failing.RequestMore(context.Background())
	require.Error(t, err)

	// Until LoadingChanged(false) is delivered, a new request is rejected.
	assert.Equal(t, []bool{true, true}, d.inFlight)
	assert.False(t, failing.Loading())
}

type failingSource struct{ calls int }

func (f *failingSource) FetchPage(context.Context, string) (source.Page, error) {
	f.calls++
	return source.Page{}, errors.New("backend unavailable")
}

func TestRequestMoreFailureLeavesListingUnchanged(t *testing.T) {
	d := &recordingDisplay{}
	c := New(d, nineProfiles())
	d.reset()

	src := &failingSource{}
	a := NewAppender(c, src, nil)
	_, err := a.RequestMore(context.Background())

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "", fe.Cursor)
	assert.Equal(t, 9, c.Total())
	assert.False(t, a.Loading())
	assert.Equal(t, []string{"loading true", "loading false"}, d.snapshot())

	// Retry is allowed.
	_, err = a.RequestMore(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, src.calls)
}

type blockingSource struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingSource) FetchPage(ctx context.Context, cursor string) (source.Page, error) {
	close(b.started)
	<-b.release
	return source.Page{Profiles: source.FixedBatch(), Next: "3"}, nil
}

func TestRequestMoreWhileInFlight(t *testing.T) {
	d := &recordingDisplay{}
	c := New(d, nineProfiles())
	src := &blockingSource{started: make(chan struct{}), release: make(chan struct{})}
	a := NewAppender(c, src, nil)

	done := make(chan error, 1)
	go func() {
		_, err := a.RequestMore(context.Background())
		done <- err
	}()

	select {
	case <-src.started:
	case <-time.After(2 * time.Second):
		t.Fatal("fetch did not start")
	}
	assert.True(t, a.Loading())
	before := d.snapshot()

	_, err := a.RequestMore(context.Background())
	assert.ErrorIs(t, err, ErrLoadInFlight)
	assert.Equal(t, before, d.snapshot(), "a rejected request has no effect")

	close(src.release)
	require.NoError(t, <-done)
	assert.Equal(t, 12, c.Total())
}

func TestRequestMoreStopsWhenCatalogExhausted(t *testing.T) {
	c := New(nil, nil)
	a := NewAppender(c, source.NewCatalog(nineProfiles(), 5), nil)
	ctx := context.Background()

	b, err := a.RequestMore(ctx)
	require.NoError(t, err)
	assert.Len(t, b.Added, 5)
	assert.False(t, b.Done)

	b, err = a.RequestMore(ctx)
	require.NoError(t, err)
	assert.Len(t, b.Added, 4)
	assert.True(t, b.Done)
	assert.True(t, a.Exhausted())

	_, err = a.RequestMore(ctx)
	assert.ErrorIs(t, err, ErrNoMorePages)
	assert.Equal(t, 9, c.Total())
}

func TestRequestMoreCancelled(t *testing.T) {
	c := New(nil, nineProfiles())
	a := NewAppender(c, source.NewStatic(time.Hour), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.RequestMore(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 9, c.Total())
}
