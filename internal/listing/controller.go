// Package listing implements the filter/search engine over the profile
// listing and the "load more" appender that grows it.
package listing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kamusis/acco/internal/directory"
	"github.com/kamusis/acco/internal/search"
)

// ErrUnknownRecord is returned when a record reference matches nothing.
var ErrUnknownRecord = errors.New("no such profile in listing")

// Record is a profile together with its visibility.
type Record struct {
	Profile directory.Profile
	Visible bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithComposedFilters makes text search and structured filters intersect:
// each recomputation enforces both the last query and the last selection,
// and appended records are evaluated against them. Off by default, where
// each operation overwrites visibility using only its own criteria.
func WithComposedFilters(on bool) Option {
	return func(c *Controller) { c.compose = on }
}

// WithContactHandler replaces the placeholder contact acknowledgment.
func WithContactHandler(h ContactHandler) Option {
	return func(c *Controller) {
		if h != nil {
			c.contact = h
		}
	}
}

// Controller owns the listing's records and drives its Display. Every
// record is either visible or hidden; the published count always equals the
// number of visible records.
//
// Recomputations are serialized and the display is called while the
// controller holds its lock, so Display implementations must not call back
// into the controller.
type Controller struct {
	mu      sync.Mutex
	records []Record
	display Display
	log     *zap.Logger
	compose bool
	contact ContactHandler

	// Control state: the values the user last entered.
	query     string
	selection search.Selection
}

// New builds a controller over the initial profiles, all visible, and
// publishes the initial count. A nil display is treated as absent.
func New(display Display, profiles []directory.Profile, opts ...Option) *Controller {
	c := &Controller{
		display: display,
		log:     zap.NewNop(),
		contact: PlaceholderContact{},
	}
	for _, o := range opts {
		o(c)
	}
	if c.display == nil {
		c.log.Warn("listing display unavailable; counts will not be shown",
			zap.Error(&directory.MissingElementError{Element: "resultsCount"}))
		c.display = NopDisplay{}
	}

	c.records = make([]Record, 0, len(profiles))
	for _, p := range profiles {
		c.records = append(c.records, Record{Profile: p.Clone(), Visible: true})
	}

	c.mu.Lock()
	c.publishLocked()
	c.mu.Unlock()
	return c
}

// ApplyTextSearch shows the records whose searchable text contains query,
// ignoring case, and hides the rest. It returns the visible count.
func (c *Controller) ApplyTextSearch(query string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.query = query
	m := search.NewTextMatcher(query)
	for i := range c.records {
		ok := m.Match(c.records[i].Profile)
		if ok && c.compose {
			ok = search.MatchSelection(c.records[i].Profile, c.selection)
		}
		c.records[i].Visible = ok
	}
	n := c.publishLocked()
	c.log.Debug("text search applied", zap.String("query", query), zap.Int("visible", n))
	return n
}

// ApplyStructuredFilters shows the records passing every set criterion of
// sel and hides the rest. It returns the visible count.
func (c *Controller) ApplyStructuredFilters(sel search.Selection) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selection = sel
	m := search.NewTextMatcher(c.query)
	for i := range c.records {
		ok := search.MatchSelection(c.records[i].Profile, sel)
		if ok && c.compose {
			ok = m.Match(c.records[i].Profile)
		}
		c.records[i].Visible = ok
	}
	n := c.publishLocked()
	c.log.Debug("filters applied", zap.String("selection", sel.String()), zap.Int("visible", n))
	return n
}

// ClearAll resets the query and every filter and shows all records.
func (c *Controller) ClearAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.query = ""
	c.selection = search.Selection{}
	for i := range c.records {
		c.records[i].Visible = true
	}
	n := c.publishLocked()
	c.log.Debug("filters cleared", zap.Int("visible", n))
	return n
}

// Controls returns the current search query and filter selection.
func (c *Controller) Controls() (string, search.Selection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query, c.selection
}

// Composed reports whether filters intersect.
func (c *Controller) Composed() bool {
	return c.compose
}

// VisibleCount returns the number of visible records.
func (c *Controller) VisibleCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visibleLocked()
}

// Total returns the number of records, visible or not.
func (c *Controller) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Records returns a snapshot of every record in listing order.
func (c *Controller) Records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, len(c.records))
	for i, r := range c.records {
		out[i] = Record{Profile: r.Profile.Clone(), Visible: r.Visible}
	}
	return out
}

// Visible returns the visible profiles in listing order.
func (c *Controller) Visible() []directory.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []directory.Profile
	for _, r := range c.records {
		if r.Visible {
			out = append(out, r.Profile.Clone())
		}
	}
	return out
}

// Find resolves ref to a record. ref may be a record id, a 1-based listing
// position, a name (case-insensitive) or a derived profile key.
func (c *Controller) Find(ref string) (directory.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(c.records) {
			return c.records[n-1].Profile.Clone(), nil
		}
		return directory.Profile{}, fmt.Errorf("%w: position %d", ErrUnknownRecord, n)
	}
	folded := search.Fold(ref)
	for _, r := range c.records {
		p := r.Profile
		if p.ID == ref || search.Fold(p.Name) == folded || directory.DeriveKey(p.Name, "") == folded {
			return p.Clone(), nil
		}
	}
	return directory.Profile{}, fmt.Errorf("%w: %q", ErrUnknownRecord, ref)
}

// RequestContact resolves ref and hands the record to the contact handler,
// returning its acknowledgment.
func (c *Controller) RequestContact(ref string) (string, error) {
	p, err := c.Find(ref)
	if err != nil {
		return "", err
	}
	c.log.Info("contact requested", zap.String("profile", p.Name), zap.String("id", p.ID))
	return c.contact.OnContactRequested(p), nil
}

// appendRecords renders and appends profiles. New records are visible
// unless filters compose, in which case they face the current criteria.
func (c *Controller) appendRecords(profiles []directory.Profile) []directory.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()

	added := make([]directory.Profile, len(profiles))
	for i, p := range profiles {
		added[i] = p.Clone()
	}
	c.display.Appended(added)

	m := search.NewTextMatcher(c.query)
	for _, p := range added {
		visible := true
		if c.compose {
			visible = m.Match(p) && search.MatchSelection(p, c.selection)
		}
		c.records = append(c.records, Record{Profile: p.Clone(), Visible: visible})
	}
	return added
}

func (c *Controller) setLoading(loading bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.display.LoadingChanged(loading)
}

// publish recomputes and publishes the visible count.
func (c *Controller) publish() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.publishLocked()
}

func (c *Controller) publishLocked() int {
	n := c.visibleLocked()
	c.display.PublishCount(n, len(c.records))
	return n
}

func (c *Controller) visibleLocked() int {
	n := 0
	for _, r := range c.records {
		if r.Visible {
			n++
		}
	}
	return n
}
