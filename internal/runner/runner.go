// Package runner drives the decision cycle: drain fills into the ledger,
// refresh two-sided quotes per instrument, and sweep open tender offers.
// Transient venue failures are logged and retried on the next cycle.
package runner

import (
	"context"
	"sync"
	"time"

	"github.com/yanun0323/logs"

	"main/internal/bus"
	"main/internal/ledger"
	"main/internal/model"
	"main/internal/obs"
	"main/internal/quote"
	"main/internal/signal"
	"main/internal/tender"
	"main/internal/venue"
)

// Deps are the collaborators a Runner coordinates.
type Deps struct {
	Venue       venue.Client
	Signals     *signal.Engine
	Quotes      *quote.Engine
	Ledger      *ledger.Ledger
	Tenders     *tender.Evaluator
	Queue       *bus.Queue
	Metrics     *obs.Metrics
	Seq         *obs.SeqGenerator
	Instruments map[string]model.Instrument

	// CycleInterval paces Run. Cycle can also be driven directly.
	CycleInterval time.Duration
}

// Runner executes decision cycles against a venue.
type Runner struct {
	d Deps
}

// New creates a runner over the given collaborators.
func New(d Deps) *Runner {
	if d.CycleInterval <= 0 {
		d.CycleInterval = 250 * time.Millisecond
	}
	if d.Seq == nil {
		d.Seq = obs.NewSeqGenerator(0)
	}
	return &Runner{d: d}
}

// Run executes cycles until the context is done.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.d.CycleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Cycle(ctx)
		}
	}
}

// Cycle runs one full decision pass. A failed clock read skips the whole
// cycle; everything downstream needs the session position.
func (r *Runner) Cycle(ctx context.Context) {
	start := time.Now()
	clock, err := r.d.Venue.GetClock(ctx)
	if err != nil {
		r.d.Metrics.IncVenueError()
		logs.Errorf("clock read failed: %v", err)
		return
	}

	r.applyFills(ctx)

	var wg sync.WaitGroup
	for _, inst := range r.d.Instruments {
		wg.Add(1)
		go func(inst model.Instrument) {
			defer wg.Done()
			r.quoteInstrument(ctx, inst)
		}(inst)
	}
	wg.Wait()

	r.sweepTenders(ctx, clock)
	r.d.Metrics.IncCycle(time.Since(start))
}

// applyFills drains confirmed executions into the ledger. Positions move
// here and nowhere else.
func (r *Runner) applyFills(ctx context.Context) {
	fills, err := r.d.Venue.GetFills(ctx)
	if err != nil {
		r.d.Metrics.IncVenueError()
		logs.Errorf("fills read failed: %v", err)
		return
	}
	for i := range fills {
		fill := fills[i]
		if err := r.d.Ledger.AdmitAndApply(fill.Ticker, fill.SignedQuantity(), fill.Price); err != nil {
			r.d.Metrics.IncFillRejected()
			logs.Errorf("fill rejected by ledger: %s %s %d @ %.2f: %v",
				fill.Side, fill.Ticker, fill.Quantity, fill.Price, err)
			continue
		}
		r.d.Metrics.IncFillApplied()
		r.publish(bus.Event{Type: bus.EventFill, Fill: &fill})
	}
}

func (r *Runner) quoteInstrument(ctx context.Context, inst model.Instrument) {
	mkt, ok, err := r.d.Venue.GetQuote(ctx, inst.Ticker)
	if err != nil {
		r.d.Metrics.IncVenueError()
		logs.Errorf("quote read failed for %s: %v", inst.Ticker, err)
		return
	}
	if !ok {
		return
	}
	if price := markPrice(mkt); price > 0 {
		r.d.Signals.Update(inst.Ticker, price)
	}
	if !r.d.Quotes.RefreshDue(inst.Ticker, time.Now()) {
		return
	}

	start := time.Now()
	two, ok := r.d.Quotes.Quote(inst, mkt)
	if !ok {
		r.d.Metrics.IncQuoteSkipped()
		return
	}

	// Cancel before replace so both sides never rest twice.
	if err := r.d.Venue.CancelOrders(ctx, inst.Ticker); err != nil {
		r.d.Metrics.IncVenueError()
		logs.Errorf("cancel failed for %s: %v", inst.Ticker, err)
		return
	}
	for _, order := range two.Orders() {
		ack, err := r.d.Venue.SubmitOrder(ctx, order)
		if err != nil {
			r.d.Metrics.IncVenueError()
			logs.Errorf("submit failed for %s: %v", inst.Ticker, err)
			continue
		}
		if !ack.Accepted {
			logs.Errorf("order refused for %s: %s", inst.Ticker, ack.Reason)
		}
	}
	r.d.Metrics.IncQuotePlaced(time.Since(start))
	r.publish(bus.Event{Type: bus.EventQuote, Quote: &two})
}

func (r *Runner) sweepTenders(ctx context.Context, clock venue.Clock) {
	offers, err := r.d.Venue.GetTenderOffers(ctx)
	if err != nil {
		r.d.Metrics.IncVenueError()
		logs.Errorf("tender read failed: %v", err)
		return
	}
	for _, offer := range offers {
		if _, known := r.d.Instruments[offer.Ticker]; !known {
			continue
		}
		mkt, ok, err := r.d.Venue.GetQuote(ctx, offer.Ticker)
		if err != nil || !ok {
			if err != nil {
				r.d.Metrics.IncVenueError()
				logs.Errorf("quote read failed for tender %d: %v", offer.ID, err)
			}
			continue
		}
		book, err := r.d.Venue.GetOrderBook(ctx, offer.Ticker)
		if err != nil {
			r.d.Metrics.IncVenueError()
			logs.Errorf("book read failed for tender %d: %v", offer.ID, err)
			continue
		}

		start := time.Now()
		decision, fresh := r.d.Tenders.Evaluate(offer, tender.Market{
			Quote:  mkt,
			Book:   book,
			Prices: r.d.Signals.Prices(offer.Ticker),
			Tick:   clock.Tick,
		})
		if !fresh {
			r.d.Metrics.IncTenderRepeated()
			continue
		}
		r.d.Metrics.ObserveTender(decision.Verdict == tender.VerdictAccept, time.Since(start))
		r.publish(bus.Event{Type: bus.EventTenderDecision, Decision: &decision})
	}
}

// markPrice picks the observation fed into the price window: the last trade
// when present, the midpoint otherwise.
func markPrice(q model.Quote) float64 {
	if q.Last > 0 {
		return q.Last
	}
	if q.Valid() {
		return q.Mid()
	}
	return 0
}

func (r *Runner) publish(e bus.Event) {
	if r.d.Queue == nil {
		return
	}
	e.Seq = r.d.Seq.Next()
	e.TsNano = time.Now().UnixNano()
	if err := r.d.Queue.TryPublish(e); err != nil {
		r.d.Metrics.IncEventDrop()
	}
}
