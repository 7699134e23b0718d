// Package report consumes decision events off the bus and keeps a live
// session view: latest quotes, positions with realized and unrealized PnL,
// and the rationale behind every tender verdict.
package report

import (
	"sync"

	"github.com/yanun0323/logs"

	"main/internal/bus"
	"main/internal/ledger"
	"main/internal/quote"
	"main/internal/tender"
)

// Reporter aggregates bus events. Handle is safe for a single consumer
// goroutine; Summary and LogSummary may be called from anywhere.
type Reporter struct {
	ledger *ledger.Ledger

	mu        sync.Mutex
	quotes    map[string]quote.TwoSided
	marks     map[string]float64
	decisions []tender.Decision
	fills     int
}

// Summary is a point-in-time view of the session.
type Summary struct {
	Quotes        map[string]quote.TwoSided
	Positions     []ledger.Entry
	RealizedPnL   float64
	UnrealizedPnL float64
	Decisions     []tender.Decision
	Fills         int
}

// New creates a reporter over the shared position ledger.
func New(lg *ledger.Ledger) *Reporter {
	return &Reporter{
		ledger: lg,
		quotes: make(map[string]quote.TwoSided),
		marks:  make(map[string]float64),
	}
}

// Handle applies one bus event to the session view.
func (r *Reporter) Handle(e bus.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch e.Type {
	case bus.EventQuote:
		if e.Quote == nil {
			return
		}
		r.quotes[e.Quote.Ticker] = *e.Quote
		if mark, ok := midOf(*e.Quote); ok {
			r.marks[e.Quote.Ticker] = mark
		}
	case bus.EventFill:
		if e.Fill == nil {
			return
		}
		r.fills++
		r.marks[e.Fill.Ticker] = e.Fill.Price
		logs.Infof("fill: %s %s %d @ %.2f", e.Fill.Side, e.Fill.Ticker, e.Fill.Quantity, e.Fill.Price)
	case bus.EventTenderDecision:
		if e.Decision == nil {
			return
		}
		r.decisions = append(r.decisions, *e.Decision)
		logs.Infof("tender %d %s: %s (%s), expected profit %.2f",
			e.Decision.OfferID, e.Decision.Ticker, e.Decision.Verdict, e.Decision.Reason, e.Decision.ExpectedProfit)
	}
}

// midOf marks a two-sided quote at its midpoint, or the live side of a
// one-sided unwind quote.
func midOf(q quote.TwoSided) (float64, bool) {
	switch {
	case q.Bid > 0 && q.Ask > 0:
		return (q.Bid + q.Ask) / 2, true
	case q.Bid > 0:
		return q.Bid, true
	case q.Ask > 0:
		return q.Ask, true
	default:
		return 0, false
	}
}

// Summary returns a copy of the current session view.
func (r *Reporter) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.ledger.Snapshot()
	s := Summary{
		Quotes:    make(map[string]quote.TwoSided, len(r.quotes)),
		Positions: entries,
		Decisions: make([]tender.Decision, len(r.decisions)),
		Fills:     r.fills,
	}
	for ticker, q := range r.quotes {
		s.Quotes[ticker] = q
	}
	copy(s.Decisions, r.decisions)
	for _, entry := range entries {
		s.RealizedPnL += entry.RealizedPnL
		if mark, ok := r.marks[entry.Ticker]; ok && entry.Quantity != 0 {
			s.UnrealizedPnL += (mark - entry.AvgCost) * float64(entry.Quantity)
		}
	}
	return s
}

// LogSummary writes the session view through the structured logger.
func (r *Reporter) LogSummary() {
	s := r.Summary()
	logs.Infof("session: %d fills, %d tender decisions, realized %.2f, unrealized %.2f",
		s.Fills, len(s.Decisions), s.RealizedPnL, s.UnrealizedPnL)
	for _, entry := range s.Positions {
		logs.Infof("position %s: qty %d, avg cost %.4f, realized %.2f",
			entry.Ticker, entry.Quantity, entry.AvgCost, entry.RealizedPnL)
	}
}
