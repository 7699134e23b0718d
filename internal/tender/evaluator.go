// Package tender decides whether externally proposed block trades are worth
// accepting before the session runs out of room to unwind them.
package tender

import (
	"fmt"
	"math"
	"sync"

	"main/internal/estimate"
	"main/internal/ledger"
	"main/internal/model"
	"main/internal/model/enum"
)

// Verdict accept, reject
type Verdict uint8

const (
	_verdict_beg Verdict = iota
	VerdictAccept
	VerdictReject
	_verdict_end
)

func (v Verdict) IsAvailable() bool {
	return v > _verdict_beg && v < _verdict_end
}

func (v Verdict) String() string {
	switch v {
	case VerdictAccept:
		return "ACCEPT"
	case VerdictReject:
		return "REJECT"
	default:
		return "UNKNOWN"
	}
}

// Config defines the evaluation parameters.
type Config struct {
	MinLiquidityRatio    float64
	VolatilityMultiplier float64
	TransactionCost      float64
	TotalTicks           int
}

// Decision is the reasoned outcome for one offer.
type Decision struct {
	OfferID        int64
	Ticker         string
	Verdict        Verdict
	Reason         string
	ExpectedProfit float64
	CloseTicks     float64
	CloseStartTick int
}

// Market bundles the per-offer market context the evaluator consumes.
type Market struct {
	Quote  model.Quote
	Book   model.OrderBookSnapshot
	Prices []float64
	Tick   int
}

// Evaluator scores tender offers at most once each.
type Evaluator struct {
	cfg         Config
	ledger      *ledger.Ledger
	instruments map[string]model.Instrument

	mu   sync.Mutex
	seen map[int64]Decision
}

// NewEvaluator creates an evaluator reading exposure from the given ledger.
func NewEvaluator(cfg Config, lg *ledger.Ledger, instruments map[string]model.Instrument) *Evaluator {
	if cfg.TotalTicks <= 0 {
		cfg.TotalTicks = 600
	}
	return &Evaluator{
		cfg:         cfg,
		ledger:      lg,
		instruments: instruments,
		seen:        make(map[int64]Decision),
	}
}

// Decisions returns all decisions made so far, in no particular order.
func (e *Evaluator) Decisions() []Decision {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Decision, 0, len(e.seen))
	for _, d := range e.seen {
		out = append(out, d)
	}
	return out
}

// Evaluate scores an offer against the current market. The first call per
// offer id decides and returns fresh=true; later calls are no-ops returning
// the stored decision with fresh=false.
func (e *Evaluator) Evaluate(offer model.TenderOffer, mkt Market) (Decision, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if prior, ok := e.seen[offer.ID]; ok {
		return prior, false
	}
	decision := e.score(offer, mkt)
	e.seen[offer.ID] = decision
	return decision, true
}

func (e *Evaluator) score(offer model.TenderOffer, mkt Market) Decision {
	d := Decision{OfferID: offer.ID, Ticker: offer.Ticker, Verdict: VerdictReject}

	if err := offer.Validate(); err != nil {
		d.Reason = fmt.Sprintf("malformed tender: %v", err)
		return d
	}
	if !mkt.Quote.Valid() {
		d.Reason = "no usable market quote"
		return d
	}

	// A SELL offer has us selling above the ask, a BUY offer buying below
	// the bid; anything else cannot beat unwinding at the touch.
	switch offer.Side {
	case enum.SideSell:
		if offer.Price <= mkt.Quote.Ask {
			d.Reason = fmt.Sprintf("uncompetitive price: %.2f <= ask %.2f", offer.Price, mkt.Quote.Ask)
			return d
		}
	case enum.SideBuy:
		if offer.Price >= mkt.Quote.Bid {
			d.Reason = fmt.Sprintf("uncompetitive price: %.2f >= bid %.2f", offer.Price, mkt.Quote.Bid)
			return d
		}
	}

	liquidity := estimate.Liquidity(mkt.Book, offer.Side)
	ticksRemaining := e.cfg.TotalTicks - mkt.Tick
	maxOrder := e.maxOrderSize(offer.Ticker, offer.Quantity)

	d.CloseTicks = estimate.CloseOutTicks(offer.Quantity, maxOrder, liquidity)
	if math.IsInf(d.CloseTicks, 1) || d.CloseTicks > float64(ticksRemaining) {
		d.Reason = fmt.Sprintf("cannot unwind in time: need %.1f ticks, %d remain", d.CloseTicks, ticksRemaining)
		return d
	}
	ratio := float64(liquidity) / float64(offer.Quantity)
	if ratio < e.cfg.MinLiquidityRatio {
		d.Reason = fmt.Sprintf("insufficient liquidity: ratio %.2f < %.2f", ratio, e.cfg.MinLiquidityRatio)
		return d
	}

	// Accepting a SELL offer opens a short, a BUY offer opens a long; both
	// must clear the exposure gate.
	delta := offer.Side.Sign() * offer.Quantity
	if err := e.ledger.Admit(offer.Ticker, delta); err != nil {
		d.Reason = fmt.Sprintf("exposure gate: %v", err)
		return d
	}

	vol, err := estimate.Volatility(mkt.Prices, liquidity, mkt.Tick, e.cfg.TotalTicks, offer.Quantity)
	if err != nil {
		vol = estimate.DefaultVolatility
	}
	widen := vol * e.cfg.VolatilityMultiplier

	var edge float64
	switch offer.Side {
	case enum.SideSell:
		edge = offer.Price - mkt.Quote.Ask*(1+widen)
	case enum.SideBuy:
		edge = mkt.Quote.Bid*(1-widen) - offer.Price
	}
	d.ExpectedProfit = edge*float64(offer.Quantity) - e.cfg.TransactionCost*float64(offer.Quantity)*2

	if d.ExpectedProfit <= 0 {
		d.Reason = fmt.Sprintf("not profitable: expected %.2f", d.ExpectedProfit)
		return d
	}

	d.Verdict = VerdictAccept
	d.Reason = fmt.Sprintf("expected profit %.2f, close in %.1f ticks", d.ExpectedProfit, d.CloseTicks)
	d.CloseStartTick = estimate.CloseStartTick(d.CloseTicks, mkt.Tick, e.cfg.TotalTicks)
	return d
}

// maxOrderSize falls back to the offer quantity when the instrument is not
// configured, which keeps the estimate defined instead of failing late.
func (e *Evaluator) maxOrderSize(ticker string, fallback int64) int64 {
	if inst, ok := e.instruments[ticker]; ok && inst.MaxOrderSize > 0 {
		return inst.MaxOrderSize
	}
	return fallback
}
