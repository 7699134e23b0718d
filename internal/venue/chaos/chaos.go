// Package chaos wraps a venue client with seeded fault injection so the
// decision cycle's tolerance of transient venue failures can be tested.
package chaos

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"main/internal/model"
	"main/internal/venue"
)

// ErrInjected marks a failure produced by the wrapper rather than the venue.
var ErrInjected = errors.New("injected venue failure")

// Config controls fault injection behavior.
type Config struct {
	Seed      int64
	ErrorRate float64
}

// Validate ensures the config is within supported ranges.
func (c Config) Validate() error {
	if c.ErrorRate < 0 || c.ErrorRate > 1 {
		return fmt.Errorf("errorRate must be between 0 and 1")
	}
	return nil
}

// Venue delegates to an inner client, failing a configured fraction of calls.
type Venue struct {
	inner venue.Client
	cfg   Config

	mu  sync.Mutex
	rng *rand.Rand
}

// Wrap creates a fault-injecting client around inner.
func Wrap(inner venue.Client, cfg Config) (*Venue, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UTC().UnixNano()
	}
	return &Venue{
		inner: inner,
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

func (v *Venue) trip() bool {
	if v.cfg.ErrorRate <= 0 {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rng.Float64() < v.cfg.ErrorRate
}

// GetQuote implements venue.Client.
func (v *Venue) GetQuote(ctx context.Context, ticker string) (model.Quote, bool, error) {
	if v.trip() {
		return model.Quote{}, false, ErrInjected
	}
	return v.inner.GetQuote(ctx, ticker)
}

// GetOrderBook implements venue.Client.
func (v *Venue) GetOrderBook(ctx context.Context, ticker string) (model.OrderBookSnapshot, error) {
	if v.trip() {
		return model.OrderBookSnapshot{}, ErrInjected
	}
	return v.inner.GetOrderBook(ctx, ticker)
}

// GetTenderOffers implements venue.Client.
func (v *Venue) GetTenderOffers(ctx context.Context) ([]model.TenderOffer, error) {
	if v.trip() {
		return nil, ErrInjected
	}
	return v.inner.GetTenderOffers(ctx)
}

// GetClock implements venue.Client.
func (v *Venue) GetClock(ctx context.Context) (venue.Clock, error) {
	if v.trip() {
		return venue.Clock{}, ErrInjected
	}
	return v.inner.GetClock(ctx)
}

// GetFills implements venue.Client. Fill reads never fail: a dropped fill
// would desync the ledger from the venue, which is not a transient fault.
func (v *Venue) GetFills(ctx context.Context) ([]model.Fill, error) {
	return v.inner.GetFills(ctx)
}

// SubmitOrder implements venue.Client.
func (v *Venue) SubmitOrder(ctx context.Context, order model.Order) (venue.OrderAck, error) {
	if v.trip() {
		return venue.OrderAck{}, ErrInjected
	}
	return v.inner.SubmitOrder(ctx, order)
}

// CancelOrders implements venue.Client.
func (v *Venue) CancelOrders(ctx context.Context, ticker string) error {
	if v.trip() {
		return ErrInjected
	}
	return v.inner.CancelOrders(ctx, ticker)
}
