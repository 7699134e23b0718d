package chaos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/venue/sim"
)

func testInner() *sim.Venue {
	return sim.New(sim.Config{
		Instruments: []model.Instrument{{
			Ticker: "ABC", Tier: enum.TierMedium, PositionLimit: 5000,
			MaxOrderSize: 200, MinOrderSize: 100, LotSize: 100, TickSize: 0.01, MinSpread: 0.02,
		}},
		Seed: 1,
	})
}

func TestWrapValidatesRate(t *testing.T) {
	_, err := Wrap(testInner(), Config{ErrorRate: 1.5})
	assert.Error(t, err)

	_, err = Wrap(testInner(), Config{ErrorRate: 0.5})
	assert.NoError(t, err)
}

func TestZeroRatePassesThrough(t *testing.T) {
	v, err := Wrap(testInner(), Config{Seed: 1})
	require.NoError(t, err)
	ctx := context.Background()

	q, ok, err := v.GetQuote(ctx, "ABC")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, q.Valid())

	_, err = v.GetClock(ctx)
	assert.NoError(t, err)
}

func TestFullRateFailsEverythingButFills(t *testing.T) {
	inner := testInner()
	v, err := Wrap(inner, Config{Seed: 1, ErrorRate: 1})
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = v.GetQuote(ctx, "ABC")
	assert.ErrorIs(t, err, ErrInjected)
	_, err = v.GetOrderBook(ctx, "ABC")
	assert.ErrorIs(t, err, ErrInjected)
	_, err = v.GetTenderOffers(ctx)
	assert.ErrorIs(t, err, ErrInjected)
	_, err = v.GetClock(ctx)
	assert.ErrorIs(t, err, ErrInjected)
	_, err = v.SubmitOrder(ctx, model.Order{Ticker: "ABC", Side: enum.SideBuy, Quantity: 100, Type: enum.OrderTypeMarket})
	assert.ErrorIs(t, err, ErrInjected)
	assert.ErrorIs(t, v.CancelOrders(ctx, "ABC"), ErrInjected)

	// Fill reads must keep working so the ledger never desyncs.
	_, err = inner.SubmitOrder(ctx, model.Order{Ticker: "ABC", Side: enum.SideBuy, Quantity: 100, Type: enum.OrderTypeMarket})
	require.NoError(t, err)
	fills, err := v.GetFills(ctx)
	require.NoError(t, err)
	assert.Len(t, fills, 1)
}
