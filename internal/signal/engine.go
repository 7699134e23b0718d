// Package signal turns streaming prices into mean-reversion trading signals.
package signal

import (
	"sync"

	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/window"
)

// Config defines the mean-reversion parameters.
type Config struct {
	LookbackPeriod  int
	MinDataPoints   int
	ZScoreThreshold float64
	MaxScalar       float64
}

// Signal is one directional decision with its aggressiveness scaling.
type Signal struct {
	Action    enum.SignalAction
	Price     float64
	ZScore    float64
	Intensity float64
	Reason    string
}

// Engine maintains per-instrument price windows and evaluates them
// against the z-score threshold.
type Engine struct {
	cfg     Config
	mu      sync.Mutex
	windows map[string]*window.Window
}

// NewEngine creates an engine with empty windows.
func NewEngine(cfg Config) *Engine {
	if cfg.LookbackPeriod <= 0 {
		cfg.LookbackPeriod = 1
	}
	if cfg.MinDataPoints < 2 {
		cfg.MinDataPoints = 2
	}
	if cfg.ZScoreThreshold <= 0 {
		cfg.ZScoreThreshold = 1
	}
	if cfg.MaxScalar <= 0 {
		cfg.MaxScalar = 1
	}
	return &Engine{
		cfg:     cfg,
		windows: make(map[string]*window.Window),
	}
}

// Update appends a traded price to the instrument's window.
func (e *Engine) Update(ticker string, price float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	w, ok := e.windows[ticker]
	if !ok {
		w = window.New(e.cfg.LookbackPeriod)
		e.windows[ticker] = w
	}
	w.Push(price)
}

// Prices copies the instrument's price history, oldest first.
func (e *Engine) Prices(ticker string) []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	w, ok := e.windows[ticker]
	if !ok {
		return nil
	}
	return w.Values()
}

// Evaluate computes the signal for the current market quote. Insufficient
// samples or a flat window yield HOLD, never an error.
func (e *Engine) Evaluate(ticker string, quote model.Quote) Signal {
	e.mu.Lock()
	defer e.mu.Unlock()

	w, ok := e.windows[ticker]
	if !ok || w.Len() < e.cfg.MinDataPoints {
		return Signal{Action: enum.SignalHold, Reason: "insufficient data"}
	}
	z, ok := w.ZScore(quote.Last)
	if !ok {
		return Signal{Action: enum.SignalHold, Reason: "zero variance"}
	}

	intensity := abs(z) / e.cfg.ZScoreThreshold
	if intensity > e.cfg.MaxScalar {
		intensity = e.cfg.MaxScalar
	}
	switch {
	case z > e.cfg.ZScoreThreshold:
		return Signal{Action: enum.SignalSell, Price: quote.Bid, ZScore: z, Intensity: intensity}
	case z < -e.cfg.ZScoreThreshold:
		return Signal{Action: enum.SignalBuy, Price: quote.Ask, ZScore: z, Intensity: intensity}
	default:
		return Signal{Action: enum.SignalHold, ZScore: z, Intensity: intensity, Reason: "within threshold"}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
