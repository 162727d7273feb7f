package paper

import (
	"sync"

	"obot-go/internal/broker"
)

// Ledger keeps the most recent fills and running session totals in memory so
// binaries can report activity on shutdown without reading the journal back.
type Ledger struct {
	mu       sync.Mutex
	capacity int
	fills    []broker.Fill
	total    int
	entries  int
	closes   int
	realized float64
}

// LedgerSummary aggregates a session's fill activity.
type LedgerSummary struct {
	Fills    int
	Entries  int
	Closes   int
	Realized float64
}

// NewLedger creates a ledger that retains at most capacity recent fills.
// Non-positive capacities default to 128. Totals count every fill regardless
// of retention.
func NewLedger(capacity int) *Ledger {
	if capacity <= 0 {
		capacity = 128
	}
	return &Ledger{capacity: capacity, fills: make([]broker.Fill, 0, capacity)}
}

// Record accumulates the fill into the totals and the recent window.
func (l *Ledger) Record(fill broker.Fill) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.total++
	if fill.Reason == ReasonEntry {
		l.entries++
	} else {
		l.closes++
		l.realized += fill.RealizedPnL
	}

	l.fills = append(l.fills, fill)
	if len(l.fills) > l.capacity {
		l.fills = l.fills[len(l.fills)-l.capacity:]
	}
}

// Recent returns a copy of the retained fills, oldest first.
func (l *Ledger) Recent() []broker.Fill {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]broker.Fill, len(l.fills))
	copy(out, l.fills)
	return out
}

// Summary returns the running totals for the session.
func (l *Ledger) Summary() LedgerSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LedgerSummary{
		Fills:    l.total,
		Entries:  l.entries,
		Closes:   l.closes,
		Realized: l.realized,
	}
}

// Reset clears retained fills and totals.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fills = l.fills[:0]
	l.total, l.entries, l.closes, l.realized = 0, 0, 0, 0
}
