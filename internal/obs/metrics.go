// Package obs collects lightweight counters and latency stats for the
// decision cycle. Everything is atomic; nothing here blocks the hot path.
package obs

import (
	"sync/atomic"
	"time"
)

// Metrics aggregates counters across the trading session.
type Metrics struct {
	cycles          uint64
	quotesPlaced    uint64
	quotesSkipped   uint64
	fillsApplied    uint64
	fillsRejected   uint64
	tendersAccepted uint64
	tendersRejected uint64
	tendersRepeated uint64
	venueErrors     uint64
	eventDrops      uint64

	cycleLatency  LatencyStats
	quoteLatency  LatencyStats
	tenderLatency LatencyStats
}

// Snapshot is a point-in-time copy of the metrics values.
type Snapshot struct {
	Cycles          uint64
	QuotesPlaced    uint64
	QuotesSkipped   uint64
	FillsApplied    uint64
	FillsRejected   uint64
	TendersAccepted uint64
	TendersRejected uint64
	TendersRepeated uint64
	VenueErrors     uint64
	EventDrops      uint64

	CycleLatency  LatencySnapshot
	QuoteLatency  LatencySnapshot
	TenderLatency LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// IncCycle records one completed decision cycle with its duration.
func (m *Metrics) IncCycle(d time.Duration) {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.cycles, 1)
	m.cycleLatency.Observe(d)
}

// IncQuotePlaced records a refreshed two-sided quote with its evaluation time.
func (m *Metrics) IncQuotePlaced(d time.Duration) {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.quotesPlaced, 1)
	m.quoteLatency.Observe(d)
}

// IncQuoteSkipped records a cycle where quoting was withheld.
func (m *Metrics) IncQuoteSkipped() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.quotesSkipped, 1)
}

// IncFillApplied records a fill admitted into the ledger.
func (m *Metrics) IncFillApplied() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.fillsApplied, 1)
}

// IncFillRejected records a fill the ledger refused.
func (m *Metrics) IncFillRejected() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.fillsRejected, 1)
}

// ObserveTender records a fresh tender decision with its evaluation time.
func (m *Metrics) ObserveTender(accepted bool, d time.Duration) {
	if m == nil {
		return
	}
	if accepted {
		atomic.AddUint64(&m.tendersAccepted, 1)
	} else {
		atomic.AddUint64(&m.tendersRejected, 1)
	}
	m.tenderLatency.Observe(d)
}

// IncTenderRepeated records a tender already decided in a prior cycle.
func (m *Metrics) IncTenderRepeated() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.tendersRepeated, 1)
}

// IncVenueError records a failed venue call.
func (m *Metrics) IncVenueError() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.venueErrors, 1)
}

// IncEventDrop records a report event lost to a full queue.
func (m *Metrics) IncEventDrop() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.eventDrops, 1)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		Cycles:          atomic.LoadUint64(&m.cycles),
		QuotesPlaced:    atomic.LoadUint64(&m.quotesPlaced),
		QuotesSkipped:   atomic.LoadUint64(&m.quotesSkipped),
		FillsApplied:    atomic.LoadUint64(&m.fillsApplied),
		FillsRejected:   atomic.LoadUint64(&m.fillsRejected),
		TendersAccepted: atomic.LoadUint64(&m.tendersAccepted),
		TendersRejected: atomic.LoadUint64(&m.tendersRejected),
		TendersRepeated: atomic.LoadUint64(&m.tendersRepeated),
		VenueErrors:     atomic.LoadUint64(&m.venueErrors),
		EventDrops:      atomic.LoadUint64(&m.eventDrops),
		CycleLatency:    m.cycleLatency.Snapshot(),
		QuoteLatency:    m.quoteLatency.Snapshot(),
		TenderLatency:   m.tenderLatency.Snapshot(),
	}
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
