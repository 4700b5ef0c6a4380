package debounce

import (
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
	fired chan struct{}
}

func newRecorder() *recorder {
	return &recorder{fired: make(chan struct{}, 16)}
}

func (r *recorder) fn(v string) {
	r.mu.Lock()
	r.calls = append(r.calls, v)
	r.mu.Unlock()
	r.fired <- struct{}{}
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestBurstCollapsesToLastValue(t *testing.T) {
	rec := newRecorder()
	d := New(100*time.Millisecond, rec.fn)

	for _, v := range []string{"k", "ko", "kol", "kolk", "kolka"} {
		d.Trigger(v)
		time.Sleep(2 * time.Millisecond)
	}

	select {
	case <-rec.fired:
	case <-time.After(time.Second):
		t.Fatalf("debounced call never fired")
	}
	// Give any stray timer a chance to fire.
	time.Sleep(200 * time.Millisecond)

	got := rec.snapshot()
	if len(got) != 1 || got[0] != "kolka" {
		t.Fatalf("calls = %v, want exactly [kolka]", got)
	}
}

func TestSeparatedEventsFireEach(t *testing.T) {
	rec := newRecorder()
	d := New(20*time.Millisecond, rec.fn)

	d.Trigger("a")
	<-rec.fired
	d.Trigger("b")
	<-rec.fired

	got := rec.snapshot()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("calls = %v, want [a b]", got)
	}
}

func TestStopCancelsPending(t *testing.T) {
	rec := newRecorder()
	d := New(30*time.Millisecond, rec.fn)

	d.Trigger("x")
	if !d.Pending() {
		t.Fatalf("expected pending call")
	}
	d.Stop()
	time.Sleep(80 * time.Millisecond)

	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("calls after Stop = %v, want none", got)
	}
}

func TestFlushDeliversImmediately(t *testing.T) {
	rec := newRecorder()
	d := New(time.Hour, rec.fn)

	d.Trigger("now")
	if !d.Flush() {
		t.Fatalf("Flush reported nothing pending")
	}
	if got := rec.snapshot(); len(got) != 1 || got[0] != "now" {
		t.Fatalf("calls = %v, want [now]", got)
	}
	if d.Flush() {
		t.Fatalf("second Flush must be a no-op")
	}
}

func TestDefaultWait(t *testing.T) {
	d := New(0, func(string) {})
	if d.wait != DefaultWait {
		t.Fatalf("wait = %v, want %v", d.wait, DefaultWait)
	}
}
