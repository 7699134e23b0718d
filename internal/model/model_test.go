package model

import (
	"testing"

	"main/internal/model/enum"
)

func validInstrument() Instrument {
	return Instrument{
		Ticker:        "ABC",
		Tier:          enum.TierMedium,
		PositionLimit: 5000,
		MaxOrderSize:  200,
		MinOrderSize:  100,
		LotSize:       100,
		TickSize:      0.01,
		MinSpread:     0.02,
	}
}

func TestInstrumentValidate(t *testing.T) {
	if err := validInstrument().Validate(); err != nil {
		t.Fatalf("valid instrument rejected: %v", err)
	}

	bad := validInstrument()
	bad.MinOrderSize = 500
	if err := bad.Validate(); err == nil {
		t.Fatal("min above max should fail")
	}

	bad = validInstrument()
	bad.TickSize = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("zero tick size should fail")
	}
}

func TestQuoteValidAndMid(t *testing.T) {
	q := Quote{Bid: 49.9, Ask: 50.1, Last: 50}
	if !q.Valid() {
		t.Fatal("two-sided quote should be valid")
	}
	if got := q.Mid(); got < 49.999 || got > 50.001 {
		t.Fatalf("Mid = %v", got)
	}
	if got := q.SpreadRatio(); got < 0.0039 || got > 0.0041 {
		t.Fatalf("SpreadRatio = %v", got)
	}

	crossed := Quote{Bid: 50.1, Ask: 49.9}
	if crossed.Valid() {
		t.Fatal("crossed quote should be invalid")
	}
	if (Quote{Ask: 50}).Valid() {
		t.Fatal("one-sided quote should be invalid")
	}
}

func TestOrderValidate(t *testing.T) {
	order := Order{Ticker: "ABC", Side: enum.SideBuy, Quantity: 100, Price: 50, Type: enum.OrderTypeLimit}
	if err := order.Validate(); err != nil {
		t.Fatalf("valid order rejected: %v", err)
	}
	if got := order.SignedQuantity(); got != 100 {
		t.Fatalf("SignedQuantity = %d", got)
	}

	order.Side = enum.SideSell
	if got := order.SignedQuantity(); got != -100 {
		t.Fatalf("SignedQuantity = %d", got)
	}

	order.Quantity = 0
	if err := order.Validate(); err == nil {
		t.Fatal("zero quantity should fail")
	}

	market := Order{Ticker: "ABC", Side: enum.SideBuy, Quantity: 100, Type: enum.OrderTypeMarket}
	if err := market.Validate(); err != nil {
		t.Fatalf("market order without price rejected: %v", err)
	}
}

func TestSideParseAndSign(t *testing.T) {
	if side, ok := enum.ParseSide("Sell"); !ok || side != enum.SideSell {
		t.Fatalf("ParseSide(Sell) = %v, %v", side, ok)
	}
	if _, ok := enum.ParseSide("hold"); ok {
		t.Fatal("unknown side should not parse")
	}
	if enum.SideBuy.Sign() != 1 || enum.SideSell.Sign() != -1 {
		t.Fatal("side signs wrong")
	}
	if enum.SideBuy.Opposite() != enum.SideSell {
		t.Fatal("opposite wrong")
	}
}
