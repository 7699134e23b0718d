// Package quote computes the two-sided quotes a market maker keeps resting,
// skewed by inventory and scaled by the mean-reversion signal.
package quote

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"main/internal/ledger"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/signal"
)

// Emergency unwind kicks in past this inventory skew.
const unwindSkewThreshold = 0.8

// Config defines the quoting parameters shared across instruments.
type Config struct {
	BaseSize             int64
	TargetSpread         float64
	MaxSpread            float64
	MaxMarketSpreadRatio float64
	RefreshInterval      time.Duration
}

// TwoSided is one instrument's quote decision. A side with size 0 is not
// submitted.
type TwoSided struct {
	Ticker  string
	Bid     float64
	Ask     float64
	BidSize int64
	AskSize int64
	Unwind  bool
}

// Engine derives quotes from market state, the position ledger and the
// signal engine.
type Engine struct {
	cfg     Config
	ledger  *ledger.Ledger
	signals *signal.Engine

	mu          sync.Mutex
	lastRefresh map[string]time.Time
}

// NewEngine creates a quote engine reading from the given ledger and signals.
func NewEngine(cfg Config, lg *ledger.Ledger, signals *signal.Engine) *Engine {
	return &Engine{
		cfg:         cfg,
		ledger:      lg,
		signals:     signals,
		lastRefresh: make(map[string]time.Time),
	}
}

// RefreshDue reports whether the instrument's resting orders are old enough
// to replace, and arms the debounce when they are. It returns true at most
// once per refresh interval per instrument.
func (e *Engine) RefreshDue(ticker string, now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	last, ok := e.lastRefresh[ticker]
	if ok && now.Sub(last) < e.cfg.RefreshInterval {
		return false
	}
	e.lastRefresh[ticker] = now
	return true
}

// Quote computes the two-sided quote for the instrument, or reports no
// quote when the market is unusable or both sides are gated away.
func (e *Engine) Quote(inst model.Instrument, mkt model.Quote) (TwoSided, bool) {
	if !mkt.Valid() {
		return TwoSided{}, false
	}
	if e.cfg.MaxMarketSpreadRatio > 0 && mkt.SpreadRatio() > e.cfg.MaxMarketSpreadRatio {
		return TwoSided{}, false
	}

	mid := mkt.Mid()
	pos := e.ledger.Position(inst.Ticker).Quantity
	skew := float64(pos) / float64(inst.PositionLimit)

	spread := e.cfg.TargetSpread
	if inst.MinSpread > spread {
		spread = inst.MinSpread
	}
	spread *= inst.Tier.SpreadFactor()
	spread *= 1 + absFloat(skew)*0.2

	sig := e.signals.Evaluate(inst.Ticker, mkt)
	if reducesInventory(sig.Action, pos) && sig.Intensity > 1 {
		spread /= sig.Intensity
	}
	if spread > e.cfg.MaxSpread {
		spread = e.cfg.MaxSpread
	}

	half := spread / 2
	q := TwoSided{
		Ticker: inst.Ticker,
		Bid:    roundDownToTick(mid*(1-half), inst.TickSize),
		Ask:    roundUpToTick(mid*(1+half), inst.TickSize),
	}

	base := float64(e.cfg.BaseSize) * inst.Tier.SizeFactor()
	bidSize := base * (1 - absFloat(skew))
	askSize := base * (1 - absFloat(skew))
	switch {
	case pos > 0:
		askSize = base * (1 + absFloat(skew))
	case pos < 0:
		bidSize = base * (1 + absFloat(skew))
	}

	if absFloat(skew) > unwindSkewThreshold {
		// One-sided emergency unwind: cross the market on the reducing
		// side, stop accumulating on the other.
		q.Unwind = true
		if pos > 0 {
			q.Ask = mkt.Bid
			askSize = base * 2.5
			bidSize = 0
		} else {
			q.Bid = mkt.Ask
			bidSize = base * 2.5
			askSize = 0
		}
	}

	q.BidSize = sizeToLots(bidSize, inst)
	q.AskSize = sizeToLots(askSize, inst)

	// Each side must clear the admission gate; a rejected side is dropped,
	// never resized.
	if q.BidSize > 0 {
		if err := e.ledger.Admit(inst.Ticker, q.BidSize); err != nil {
			q.BidSize = 0
		}
	}
	if q.AskSize > 0 {
		if err := e.ledger.Admit(inst.Ticker, -q.AskSize); err != nil {
			q.AskSize = 0
		}
	}
	if q.BidSize == 0 && q.AskSize == 0 {
		return TwoSided{}, false
	}
	return q, true
}

// Orders expands a quote decision into submittable limit orders.
func (q TwoSided) Orders() []model.Order {
	orders := make([]model.Order, 0, 2)
	if q.BidSize > 0 {
		orders = append(orders, model.Order{
			Ticker:   q.Ticker,
			Side:     enum.SideBuy,
			Quantity: q.BidSize,
			Price:    q.Bid,
			Type:     enum.OrderTypeLimit,
		})
	}
	if q.AskSize > 0 {
		orders = append(orders, model.Order{
			Ticker:   q.Ticker,
			Side:     enum.SideSell,
			Quantity: q.AskSize,
			Price:    q.Ask,
			Type:     enum.OrderTypeLimit,
		})
	}
	return orders
}

func reducesInventory(action enum.SignalAction, pos int64) bool {
	return (action == enum.SignalSell && pos > 0) || (action == enum.SignalBuy && pos < 0)
}

// sizeToLots floors the size to a lot multiple and clamps it to the
// instrument's order bounds. Sizes that start at zero stay zero.
func sizeToLots(size float64, inst model.Instrument) int64 {
	qty := int64(size)
	if qty <= 0 {
		return 0
	}
	qty -= qty % inst.LotSize
	if qty == 0 {
		return 0
	}
	if qty > inst.MaxOrderSize {
		qty = inst.MaxOrderSize
		qty -= qty % inst.LotSize
	}
	if qty < inst.MinOrderSize {
		qty = inst.MinOrderSize
	}
	return qty
}

func roundDownToTick(price, tick float64) float64 {
	p := decimal.NewFromFloat(price)
	t := decimal.NewFromFloat(tick)
	return p.Div(t).Floor().Mul(t).InexactFloat64()
}

func roundUpToTick(price, tick float64) float64 {
	p := decimal.NewFromFloat(price)
	t := decimal.NewFromFloat(tick)
	return p.Div(t).Ceil().Mul(t).InexactFloat64()
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
