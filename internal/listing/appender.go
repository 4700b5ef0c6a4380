package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/kamusis/acco/internal/directory"
	"github.com/kamusis/acco/internal/source"
)

var (
	// ErrLoadInFlight is returned, with no effect, while a request is pending.
	ErrLoadInFlight = errors.New("load more already in progress")
	// ErrNoMorePages is returned once a finite source is exhausted.
	ErrNoMorePages = errors.New("no more profiles to load")
)

// FetchError wraps a failed page fetch. The listing is unchanged and the
// next RequestMore retries the same cursor.
type FetchError struct {
	Cursor string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("cannot load more profiles: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Batch describes the result of a successful RequestMore.
type Batch struct {
	Added   []directory.Profile
	Visible int
	Total   int
	// Done is true when the source reported no further pages.
	Done bool
}

// Appender grows a Controller's listing one page at a time. At most one
// request is in flight.
type Appender struct {
	ctrl *Controller
	src  source.PageSource
	log  *zap.Logger

	inFlight atomic.Bool

	mu     sync.Mutex
	cursor string
	done   bool
}

// NewAppender returns an appender feeding ctrl from src.
func NewAppender(ctrl *Controller, src source.PageSource, log *zap.Logger) *Appender {
	if log == nil {
		log = zap.NewNop()
	}
	return &Appender{ctrl: ctrl, src: src, log: log}
}

// Loading reports whether a request is in flight.
func (a *Appender) Loading() bool {
	return a.inFlight.Load()
}

// Exhausted reports whether the source has no further pages.
func (a *Appender) Exhausted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.done
}

// RequestMore fetches the next page and appends it to the listing: the new
// records are rendered, appended as visible, the loading state is left and
// the visible count is published, in that order. While a request is pending
// further calls return ErrLoadInFlight without touching anything.
func (a *Appender) RequestMore(ctx context.Context) (Batch, error) {
	if !a.inFlight.CompareAndSwap(false, true) {
		return Batch{}, ErrLoadInFlight
	}
	// Released only after LoadingChanged(false) and the count are published.
	defer a.inFlight.Store(false)

	a.mu.Lock()
	cursor, done := a.cursor, a.done
	a.mu.Unlock()
	if done {
		return Batch{Done: true}, ErrNoMorePages
	}

	a.ctrl.setLoading(true)
	page, err := a.src.FetchPage(ctx, cursor)
	if err != nil {
		a.ctrl.setLoading(false)
		a.log.Warn("load more failed", zap.String("cursor", cursor), zap.Error(err))
		return Batch{}, &FetchError{Cursor: cursor, Err: err}
	}

	added := a.ctrl.appendRecords(page.Profiles)

	a.mu.Lock()
	a.cursor = page.Next
	a.done = page.Next == ""
	done = a.done
	a.mu.Unlock()

	a.ctrl.setLoading(false)
	visible := a.ctrl.publish()
	total := a.ctrl.Total()

	a.log.Info("profiles appended",
		zap.Int("added", len(added)),
		zap.Int("visible", visible),
		zap.Int("total", total),
		zap.Bool("done", done))
	return Batch{Added: added, Visible: visible, Total: total, Done: done}, nil
}
