package signal

import (
	"math"
	"testing"

	"main/internal/model"
	"main/internal/model/enum"
)

func testConfig() Config {
	return Config{
		LookbackPeriod:  20,
		MinDataPoints:   5,
		ZScoreThreshold: 2,
		MaxScalar:       3,
	}
}

func TestEvaluateInsufficientData(t *testing.T) {
	e := NewEngine(testConfig())
	e.Update("ABC", 50)
	e.Update("ABC", 51)

	sig := e.Evaluate("ABC", model.Quote{Bid: 49.9, Ask: 50.1, Last: 50})
	if sig.Action != enum.SignalHold {
		t.Fatalf("action mismatch: got %v want HOLD", sig.Action)
	}
	if sig.Reason != "insufficient data" {
		t.Fatalf("reason mismatch: got %q", sig.Reason)
	}
}

func TestEvaluateConstantPricesHolds(t *testing.T) {
	e := NewEngine(testConfig())
	for i := 0; i < 10; i++ {
		e.Update("ABC", 50)
	}
	sig := e.Evaluate("ABC", model.Quote{Bid: 49.9, Ask: 50.1, Last: 50})
	if sig.Action != enum.SignalHold {
		t.Fatalf("flat window must hold, got %v", sig.Action)
	}
	if sig.Reason != "zero variance" {
		t.Fatalf("reason mismatch: got %q", sig.Reason)
	}
}

func TestEvaluateSellAboveThreshold(t *testing.T) {
	e := NewEngine(testConfig())
	for _, p := range []float64{50, 50.1, 49.9, 50, 50.1, 49.9, 50} {
		e.Update("ABC", p)
	}
	quote := model.Quote{Bid: 54.9, Ask: 55.1, Last: 55}
	e.Update("ABC", quote.Last)

	sig := e.Evaluate("ABC", quote)
	if sig.Action != enum.SignalSell {
		t.Fatalf("action mismatch: got %v want SELL (z=%v)", sig.Action, sig.ZScore)
	}
	if sig.Price != quote.Bid {
		t.Fatalf("sell signal must price at bid: got %v", sig.Price)
	}
	want := math.Abs(sig.ZScore) / 2
	if want > 3 {
		want = 3
	}
	if math.Abs(sig.Intensity-want) > 1e-12 {
		t.Fatalf("intensity mismatch: got %v want %v", sig.Intensity, want)
	}
}

func TestEvaluateBuyBelowThreshold(t *testing.T) {
	e := NewEngine(testConfig())
	for _, p := range []float64{50, 50.1, 49.9, 50, 50.1, 49.9, 50} {
		e.Update("ABC", p)
	}
	quote := model.Quote{Bid: 44.9, Ask: 45.1, Last: 45}
	e.Update("ABC", quote.Last)

	sig := e.Evaluate("ABC", quote)
	if sig.Action != enum.SignalBuy {
		t.Fatalf("action mismatch: got %v want BUY (z=%v)", sig.Action, sig.ZScore)
	}
	if sig.Price != quote.Ask {
		t.Fatalf("buy signal must price at ask: got %v", sig.Price)
	}
}

func TestIntensityScaling(t *testing.T) {
	e := NewEngine(testConfig())
	for _, p := range []float64{50, 51, 49, 50, 51, 49, 50, 51} {
		e.Update("ABC", p)
	}
	sig := e.Evaluate("ABC", model.Quote{Bid: 50.4, Ask: 50.6, Last: 50.5})
	if sig.Action != enum.SignalHold {
		t.Fatalf("expected HOLD inside threshold, got %v", sig.Action)
	}
	want := math.Abs(sig.ZScore) / 2
	if math.Abs(sig.Intensity-want) > 1e-12 {
		t.Fatalf("intensity mismatch: got %v want %v", sig.Intensity, want)
	}
}
