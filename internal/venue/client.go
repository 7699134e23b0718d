// Package venue defines the interface the decision core consumes from the
// market-data/execution collaborator, plus the payload codec that turns the
// venue's untyped JSON into validated record types.
package venue

import (
	"context"
	"errors"

	"main/internal/model"
)

var (
	ErrSubmitFailed = errors.New("order submission failed")
	ErrCancelFailed = errors.New("order cancellation failed")
)

// CancelAllTickers cancels outstanding orders across every instrument.
const CancelAllTickers = "*"

// Clock is the venue's session position.
type Clock struct {
	Tick       int
	TotalTicks int
}

// Remaining returns the ticks left in the session.
func (c Clock) Remaining() int {
	if c.TotalTicks <= c.Tick {
		return 0
	}
	return c.TotalTicks - c.Tick
}

// OrderAck is the venue's response to a submission.
type OrderAck struct {
	OrderID  int64
	Accepted bool
	Reason   string
}

// Client is the external collaborator the core trades through. The core
// never owns transport or authentication; implementations do.
type Client interface {
	// GetQuote returns the current top of book, or ok=false when the venue
	// has no fresh quote for the instrument this cycle.
	GetQuote(ctx context.Context, ticker string) (model.Quote, bool, error)

	// GetOrderBook returns the current depth snapshot.
	GetOrderBook(ctx context.Context, ticker string) (model.OrderBookSnapshot, error)

	// GetTenderOffers returns the currently open tender offers.
	GetTenderOffers(ctx context.Context) ([]model.TenderOffer, error)

	// GetClock returns the session clock.
	GetClock(ctx context.Context) (Clock, error)

	// GetFills drains executions confirmed since the previous call.
	GetFills(ctx context.Context) ([]model.Fill, error)

	// SubmitOrder sends an order intent. An ack is not a fill: positions
	// move only when GetFills reports the execution.
	SubmitOrder(ctx context.Context, order model.Order) (OrderAck, error)

	// CancelOrders cancels outstanding orders for one ticker, or for all
	// when given CancelAllTickers.
	CancelOrders(ctx context.Context, ticker string) error
}
