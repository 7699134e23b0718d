// Package sim is an in-process venue used for offline runs and tests:
// random-walk quotes, synthetic depth, immediate matching against the touch,
// and periodic tender offers.
package sim

import (
	"context"
	"math/rand"
	"sync"

	"github.com/yanun0323/logs"

	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/venue"
)

// Config controls the synthetic market.
type Config struct {
	Instruments []model.Instrument
	Seed        int64
	TotalTicks  int
	BasePrice   float64
	StepStddev  float64
	HalfSpread  float64
	BookDepth   int
	BookLevel   int64
	TenderEvery int
	TenderSize  int64
}

type restingOrder struct {
	id    int64
	order model.Order
}

// Venue is a self-contained venue.Client implementation.
type Venue struct {
	cfg Config

	mu       sync.Mutex
	rng      *rand.Rand
	tick     int
	mids     map[string]float64
	resting  map[string][]restingOrder
	fills    []model.Fill
	tenders  []model.TenderOffer
	orderSeq int64
}

// New creates a venue with every instrument priced at the base price.
func New(cfg Config) *Venue {
	if cfg.TotalTicks <= 0 {
		cfg.TotalTicks = 600
	}
	if cfg.BasePrice <= 0 {
		cfg.BasePrice = 50
	}
	if cfg.StepStddev <= 0 {
		cfg.StepStddev = 0.05
	}
	if cfg.HalfSpread <= 0 {
		cfg.HalfSpread = 0.05
	}
	if cfg.BookDepth <= 0 {
		cfg.BookDepth = 5
	}
	if cfg.BookLevel <= 0 {
		cfg.BookLevel = 1000
	}
	if cfg.TenderSize <= 0 {
		cfg.TenderSize = 1000
	}
	v := &Venue{
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		mids:    make(map[string]float64, len(cfg.Instruments)),
		resting: make(map[string][]restingOrder),
	}
	for _, inst := range cfg.Instruments {
		v.mids[inst.Ticker] = cfg.BasePrice
	}
	return v
}

// Step advances the session one tick: prices walk, crossed resting orders
// fill, and a tender offer occasionally appears.
func (v *Venue) Step() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.tick++
	for _, inst := range v.cfg.Instruments {
		mid := v.mids[inst.Ticker] + v.rng.NormFloat64()*v.cfg.StepStddev*inst.Tier.SpreadFactor()
		if mid < v.cfg.HalfSpread*2 {
			mid = v.cfg.HalfSpread * 2
		}
		v.mids[inst.Ticker] = mid
		v.matchResting(inst.Ticker)
	}
	if v.cfg.TenderEvery > 0 && v.tick%v.cfg.TenderEvery == 0 {
		v.generateTender()
	}
}

// matchResting fills resting limit orders the new touch crosses.
// Caller holds the mutex.
func (v *Venue) matchResting(ticker string) {
	bid, ask := v.touch(ticker)
	kept := v.resting[ticker][:0]
	for _, r := range v.resting[ticker] {
		filled := (r.order.Side == enum.SideBuy && r.order.Price >= ask) ||
			(r.order.Side == enum.SideSell && r.order.Price <= bid)
		if filled {
			v.fills = append(v.fills, model.Fill{
				OrderID:  r.id,
				Ticker:   ticker,
				Side:     r.order.Side,
				Quantity: r.order.Quantity,
				Price:    r.order.Price,
				Tick:     v.tick,
			})
			continue
		}
		kept = append(kept, r)
	}
	v.resting[ticker] = kept
}

// generateTender creates a random block offer priced through the touch so
// both verdicts stay reachable. Caller holds the mutex.
func (v *Venue) generateTender() {
	if len(v.cfg.Instruments) == 0 {
		return
	}
	inst := v.cfg.Instruments[v.rng.Intn(len(v.cfg.Instruments))]
	bid, ask := v.touch(inst.Ticker)

	offer := model.TenderOffer{
		ID:       int64(len(v.tenders) + 1),
		Ticker:   inst.Ticker,
		Quantity: v.cfg.TenderSize,
		Tick:     v.tick,
	}
	// Offset up to 2% through or against the touch.
	offset := (v.rng.Float64()*4 - 2) / 100
	if v.rng.Intn(2) == 0 {
		offer.Side = enum.SideSell
		offer.Price = ask * (1 + offset)
	} else {
		offer.Side = enum.SideBuy
		offer.Price = bid * (1 - offset)
	}
	v.tenders = append(v.tenders, offer)
	logs.Infof("sim tender %d: %s %s %d @ %.2f", offer.ID, offer.Side, offer.Ticker, offer.Quantity, offer.Price)
}

func (v *Venue) touch(ticker string) (bid, ask float64) {
	mid := v.mids[ticker]
	return mid - v.cfg.HalfSpread, mid + v.cfg.HalfSpread
}

// GetQuote implements venue.Client.
func (v *Venue) GetQuote(_ context.Context, ticker string) (model.Quote, bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	mid, ok := v.mids[ticker]
	if !ok {
		return model.Quote{}, false, nil
	}
	bid, ask := v.touch(ticker)
	return model.Quote{Bid: bid, Ask: ask, Last: mid}, true, nil
}

// GetOrderBook implements venue.Client with synthetic depth stepped away
// from the touch.
func (v *Venue) GetOrderBook(_ context.Context, ticker string) (model.OrderBookSnapshot, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	bid, ask := v.touch(ticker)
	book := model.OrderBookSnapshot{
		Bids: make([]model.BookLevel, 0, v.cfg.BookDepth),
		Asks: make([]model.BookLevel, 0, v.cfg.BookDepth),
	}
	for i := 0; i < v.cfg.BookDepth; i++ {
		step := float64(i) * v.cfg.HalfSpread
		book.Bids = append(book.Bids, model.BookLevel{Price: bid - step, Quantity: v.cfg.BookLevel})
		book.Asks = append(book.Asks, model.BookLevel{Price: ask + step, Quantity: v.cfg.BookLevel})
	}
	return book, nil
}

// GetTenderOffers implements venue.Client. Offers stay open; the evaluator
// deduplicates by id.
func (v *Venue) GetTenderOffers(_ context.Context) ([]model.TenderOffer, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]model.TenderOffer, len(v.tenders))
	copy(out, v.tenders)
	return out, nil
}

// GetClock implements venue.Client.
func (v *Venue) GetClock(_ context.Context) (venue.Clock, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return venue.Clock{Tick: v.tick, TotalTicks: v.cfg.TotalTicks}, nil
}

// GetFills implements venue.Client, draining confirmed executions.
func (v *Venue) GetFills(_ context.Context) ([]model.Fill, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := v.fills
	v.fills = nil
	return out, nil
}

// SubmitOrder implements venue.Client. Marketable orders fill on the next
// fills poll; passive limits rest until the walk crosses them.
func (v *Venue) SubmitOrder(_ context.Context, order model.Order) (venue.OrderAck, error) {
	if err := order.Validate(); err != nil {
		return venue.OrderAck{Reason: err.Error()}, venue.ErrSubmitFailed
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.mids[order.Ticker]; !ok {
		return venue.OrderAck{Reason: "unknown ticker"}, venue.ErrSubmitFailed
	}

	v.orderSeq++
	id := v.orderSeq
	bid, ask := v.touch(order.Ticker)

	fillPrice := order.Price
	marketable := order.Type == enum.OrderTypeMarket
	if !marketable {
		marketable = (order.Side == enum.SideBuy && order.Price >= ask) ||
			(order.Side == enum.SideSell && order.Price <= bid)
	}
	if order.Type == enum.OrderTypeMarket {
		if order.Side == enum.SideBuy {
			fillPrice = ask
		} else {
			fillPrice = bid
		}
	}

	if marketable {
		v.fills = append(v.fills, model.Fill{
			OrderID:  id,
			Ticker:   order.Ticker,
			Side:     order.Side,
			Quantity: order.Quantity,
			Price:    fillPrice,
			Tick:     v.tick,
		})
	} else {
		v.resting[order.Ticker] = append(v.resting[order.Ticker], restingOrder{id: id, order: order})
	}
	return venue.OrderAck{OrderID: id, Accepted: true}, nil
}

// CancelOrders implements venue.Client.
func (v *Venue) CancelOrders(_ context.Context, ticker string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if ticker == venue.CancelAllTickers {
		v.resting = make(map[string][]restingOrder)
		return nil
	}
	delete(v.resting, ticker)
	return nil
}

// RestingCount reports open orders for a ticker, for tests and reporting.
func (v *Venue) RestingCount(ticker string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.resting[ticker])
}
