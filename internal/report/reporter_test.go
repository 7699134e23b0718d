package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/bus"
	"main/internal/ledger"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/quote"
	"main/internal/tender"
)

func testLedger() *ledger.Ledger {
	return ledger.New(map[string]model.Instrument{
		"ABC": {Ticker: "ABC", Tier: enum.TierMedium, PositionLimit: 5000,
			MaxOrderSize: 200, MinOrderSize: 100, LotSize: 100, TickSize: 0.01, MinSpread: 0.02},
	}, ledger.Limits{})
}

func TestReporterTracksQuotesAndDecisions(t *testing.T) {
	r := New(testLedger())

	r.Handle(bus.Event{Type: bus.EventQuote, Quote: &quote.TwoSided{
		Ticker: "ABC", Bid: 49.9, Ask: 50.1, BidSize: 1000, AskSize: 1000,
	}})
	r.Handle(bus.Event{Type: bus.EventTenderDecision, Decision: &tender.Decision{
		OfferID: 7, Ticker: "ABC", Verdict: tender.VerdictAccept, Reason: "profitable", ExpectedProfit: 290,
	}})

	s := r.Summary()
	require.Contains(t, s.Quotes, "ABC")
	assert.InDelta(t, 49.9, s.Quotes["ABC"].Bid, 1e-9)
	require.Len(t, s.Decisions, 1)
	assert.Equal(t, tender.VerdictAccept, s.Decisions[0].Verdict)
}

func TestReporterPnL(t *testing.T) {
	lg := testLedger()
	r := New(lg)

	// Buy 400 @ 10, sell 200 @ 13: realized 600, 200 left at cost 10.
	require.NoError(t, lg.AdmitAndApply("ABC", 400, 10))
	require.NoError(t, lg.AdmitAndApply("ABC", -200, 13))
	fill := model.Fill{Ticker: "ABC", Side: enum.SideSell, Quantity: 200, Price: 13}
	r.Handle(bus.Event{Type: bus.EventFill, Fill: &fill})

	s := r.Summary()
	assert.Equal(t, 1, s.Fills)
	assert.InDelta(t, 600, s.RealizedPnL, 1e-9)
	// Marked at the last fill price of 13.
	assert.InDelta(t, 600, s.UnrealizedPnL, 1e-9)
}

func TestReporterMarksFromQuoteMid(t *testing.T) {
	lg := testLedger()
	r := New(lg)
	require.NoError(t, lg.AdmitAndApply("ABC", 100, 50))

	r.Handle(bus.Event{Type: bus.EventQuote, Quote: &quote.TwoSided{Ticker: "ABC", Bid: 51, Ask: 53}})
	s := r.Summary()
	assert.InDelta(t, 200, s.UnrealizedPnL, 1e-9) // (52-50)*100

	// One-sided unwind quote marks at the live side.
	r.Handle(bus.Event{Type: bus.EventQuote, Quote: &quote.TwoSided{Ticker: "ABC", Ask: 54, Unwind: true}})
	s = r.Summary()
	assert.InDelta(t, 400, s.UnrealizedPnL, 1e-9)
}

func TestReporterIgnoresEmptyPayloads(t *testing.T) {
	r := New(testLedger())
	r.Handle(bus.Event{Type: bus.EventQuote})
	r.Handle(bus.Event{Type: bus.EventFill})
	r.Handle(bus.Event{Type: bus.EventTenderDecision})

	s := r.Summary()
	assert.Empty(t, s.Quotes)
	assert.Empty(t, s.Decisions)
	assert.Zero(t, s.Fills)
}
