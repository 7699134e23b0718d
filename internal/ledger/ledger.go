// Package ledger owns all position and exposure state. Every proposed
// position change passes through the same admission gate under one mutex,
// so a limit check and its apply can never straddle a stale snapshot.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"main/internal/model"
)

var (
	ErrUnknownInstrument = errors.New("instrument not configured")
	ErrPositionLimit     = errors.New("position limit exceeded")
	ErrGrossLimit        = errors.New("gross exposure limit exceeded")
	ErrNetLimit          = errors.New("net exposure limit exceeded")
)

// Limits bound portfolio-wide exposure in shares.
type Limits struct {
	Gross int64
	Net   int64
}

// Position is the per-instrument holding with weighted-average cost.
type Position struct {
	Quantity    int64
	CostBasis   float64
	RealizedPnL float64
}

// AvgCost returns the per-share weighted-average cost of the open position.
func (p Position) AvgCost() float64 {
	if p.Quantity == 0 {
		return 0
	}
	return p.CostBasis / float64(p.Quantity)
}

// UnrealizedPnL marks the open quantity against the given price.
func (p Position) UnrealizedPnL(mark float64) float64 {
	if p.Quantity == 0 || mark <= 0 {
		return 0
	}
	return (mark - p.AvgCost()) * float64(p.Quantity)
}

// Entry is one row of a ledger snapshot.
type Entry struct {
	Ticker      string
	Quantity    int64
	AvgCost     float64
	RealizedPnL float64
}

// Ledger tracks positions for a fixed instrument set.
type Ledger struct {
	mu        sync.Mutex
	limits    Limits
	perTicker map[string]int64
	positions map[string]Position
}

// New creates a ledger for the configured instruments.
func New(instruments map[string]model.Instrument, limits Limits) *Ledger {
	perTicker := make(map[string]int64, len(instruments))
	for ticker, inst := range instruments {
		perTicker[ticker] = inst.PositionLimit
	}
	return &Ledger{
		limits:    limits,
		perTicker: perTicker,
		positions: make(map[string]Position, len(instruments)),
	}
}

// Admit checks whether a signed position change would pass all limits.
// It never mutates state.
func (l *Ledger) Admit(ticker string, delta int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.check(ticker, delta)
}

// AdmitAndApply runs the limit checks and, on acceptance, applies the fill
// to the position as one atomic step. Rejections never mutate state.
func (l *Ledger) AdmitAndApply(ticker string, delta int64, fillPrice float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.check(ticker, delta); err != nil {
		return err
	}
	l.apply(ticker, delta, fillPrice)
	return nil
}

func (l *Ledger) check(ticker string, delta int64) error {
	limit, ok := l.perTicker[ticker]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownInstrument, ticker)
	}
	current := l.positions[ticker].Quantity
	next := current + delta
	if abs(next) > limit {
		return fmt.Errorf("%w: %s %d -> %d limit %d", ErrPositionLimit, ticker, current, next, limit)
	}

	var gross, net int64
	for tk, pos := range l.positions {
		qty := pos.Quantity
		if tk == ticker {
			qty = next
		}
		gross += abs(qty)
		net += qty
	}
	if _, held := l.positions[ticker]; !held {
		gross += abs(next)
		net += next
	}
	if l.limits.Gross > 0 && gross > l.limits.Gross {
		return fmt.Errorf("%w: %d > %d", ErrGrossLimit, gross, l.limits.Gross)
	}
	if l.limits.Net > 0 && abs(net) > l.limits.Net {
		return fmt.Errorf("%w: |%d| > %d", ErrNetLimit, net, l.limits.Net)
	}
	return nil
}

// apply updates quantity, weighted-average cost basis and realized PnL.
// Caller holds the mutex.
func (l *Ledger) apply(ticker string, delta int64, fillPrice float64) {
	pos := l.positions[ticker]
	current := pos.Quantity

	switch {
	case current == 0 || sameSign(current, delta):
		pos.CostBasis += float64(delta) * fillPrice
	default:
		crossing := min64(abs(delta), abs(current))
		avg := pos.CostBasis / float64(current)
		dir := float64(sign(current))
		pos.RealizedPnL += (fillPrice - avg) * float64(crossing) * dir
		pos.CostBasis -= avg * float64(crossing) * dir
		if abs(delta) > abs(current) {
			// Position flips: the residual opens fresh at the fill price.
			residual := current + delta
			pos.CostBasis = float64(residual) * fillPrice
		}
	}
	pos.Quantity = current + delta
	if pos.Quantity == 0 {
		pos.CostBasis = 0
	}
	l.positions[ticker] = pos
}

// Position returns a copy of the instrument's position.
func (l *Ledger) Position(ticker string) Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.positions[ticker]
}

// Exposure returns the current (gross, net) portfolio exposure.
func (l *Ledger) Exposure() (gross, net int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, pos := range l.positions {
		gross += abs(pos.Quantity)
		net += pos.Quantity
	}
	return gross, net
}

// Snapshot lists all non-empty positions sorted by ticker.
func (l *Ledger) Snapshot() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries := make([]Entry, 0, len(l.positions))
	for ticker, pos := range l.positions {
		if pos.Quantity == 0 && pos.RealizedPnL == 0 {
			continue
		}
		entries = append(entries, Entry{
			Ticker:      ticker,
			Quantity:    pos.Quantity,
			AvgCost:     pos.AvgCost(),
			RealizedPnL: pos.RealizedPnL,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Ticker < entries[j].Ticker
	})
	return entries
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int64) int64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func sameSign(a, b int64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
