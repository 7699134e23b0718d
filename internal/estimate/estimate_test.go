package estimate

import (
	"errors"
	"math"
	"testing"

	"main/internal/model"
	"main/internal/model/enum"
)

func testBook() model.OrderBookSnapshot {
	return model.OrderBookSnapshot{
		Bids: []model.BookLevel{{Price: 49.9, Quantity: 1200}, {Price: 49.8, Quantity: 1800}},
		Asks: []model.BookLevel{{Price: 50.1, Quantity: 2000}, {Price: 50.2, Quantity: 3000}},
	}
}

func TestLiquiditySides(t *testing.T) {
	book := testBook()
	if got := Liquidity(book, enum.SideSell); got != 5000 {
		t.Fatalf("sell-offer liquidity mismatch: got %d want 5000", got)
	}
	if got := Liquidity(book, enum.SideBuy); got != 3000 {
		t.Fatalf("buy-offer liquidity mismatch: got %d want 3000", got)
	}
}

func TestCloseOutTicks(t *testing.T) {
	// 5 orders of 200 against 5000 resting: 5*(200/5000) + 5 ticks latency.
	got := CloseOutTicks(1000, 200, 5000)
	if math.Abs(got-5.2) > 1e-9 {
		t.Fatalf("close-out ticks mismatch: got %v want 5.2", got)
	}
}

func TestCloseOutTicksNoLiquidity(t *testing.T) {
	if got := CloseOutTicks(1000, 200, 0); !math.IsInf(got, 1) {
		t.Fatalf("expected +Inf close-out, got %v", got)
	}
}

func TestCloseStartTick(t *testing.T) {
	if got := CloseStartTick(5.2, 100, 600); got != 579 {
		t.Fatalf("close start mismatch: got %d want 579", got)
	}
	// Already past the computed start: begin now.
	if got := CloseStartTick(5.2, 590, 600); got != 590 {
		t.Fatalf("close start mismatch: got %d want 590", got)
	}
	if got := CloseStartTick(math.Inf(1), 100, 600); got != 100 {
		t.Fatalf("close start with no liquidity must be now, got %d", got)
	}
}

func TestVolatilityInvalidInputs(t *testing.T) {
	prices := []float64{50, 51, 50.5}
	if _, err := Volatility(prices, 0, 10, 600, 1000); !errors.Is(err, ErrNonPositiveLiquidity) {
		t.Fatalf("expected liquidity error, got %v", err)
	}
	if _, err := Volatility(prices, 5000, 700, 600, 1000); !errors.Is(err, ErrElapsedOutOfRange) {
		t.Fatalf("expected elapsed error, got %v", err)
	}
	if _, err := Volatility(prices, 5000, -1, 600, 1000); !errors.Is(err, ErrElapsedOutOfRange) {
		t.Fatalf("expected elapsed error, got %v", err)
	}
}

func TestVolatilityDefaultOnShortHistory(t *testing.T) {
	got, err := Volatility([]float64{50}, 5000, 10, 600, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != DefaultVolatility {
		t.Fatalf("default volatility mismatch: got %v", got)
	}
}

func TestVolatilityComposition(t *testing.T) {
	prices := []float64{100, 110, 99}
	liquidity := int64(999)
	// Returns are +0.10 and -0.10, population stddev 0.10.
	base := 0.1
	impact := 500.0 / 1000.0
	decay := 1 - 300.0/600.0

	got, err := Volatility(prices, liquidity, 300, 600, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := (base + impact) * decay
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("volatility mismatch: got %v want %v", got, want)
	}
}
