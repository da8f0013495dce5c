package search

import (
	"context"
	"time"

	"github.com/matzehuels/jsondiagram/pkg/observability"
)

// DefaultDelay is the input quiescence period before a search runs.
const DefaultDelay = 300 * time.Millisecond

// Ticket identifies one scheduled search. The host arms a timer for Delay
// and hands the ticket back to [Debouncer.Take] when it fires.
type Ticket struct {
	Seq   uint64
	Term  string
	Delay time.Duration
}

// Debouncer lets only the most recent of a burst of search terms through.
//
// It owns no timers: the host (a time.AfterFunc posting into an event loop,
// a bubbletea tick) provides the clock. Scheduling a new term supersedes
// every earlier ticket, so late timers for old terms are no-ops.
type Debouncer struct {
	delay   time.Duration
	seq     uint64
	pending bool
}

// NewDebouncer creates a debouncer. A non-positive delay selects DefaultDelay.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay}
}

// Delay returns the quiescence period.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Schedule registers term as the latest input and returns its ticket.
func (d *Debouncer) Schedule(ctx context.Context, term string) Ticket {
	if d.pending {
		observability.Search().OnSearchSuperseded(ctx)
	}
	d.seq++
	d.pending = true
	return Ticket{Seq: d.seq, Term: term, Delay: d.delay}
}

// Take claims t when its timer fires. It reports false for superseded or
// cancelled tickets; a claimed ticket cannot be taken twice.
func (d *Debouncer) Take(t Ticket) (string, bool) {
	if !d.pending || t.Seq != d.seq {
		return "", false
	}
	d.pending = false
	return t.Term, true
}

// Cancel invalidates the pending ticket, if any.
func (d *Debouncer) Cancel() {
	if d.pending {
		d.seq++
		d.pending = false
	}
}

// Pending reports whether a scheduled term has not fired yet.
func (d *Debouncer) Pending() bool { return d.pending }
