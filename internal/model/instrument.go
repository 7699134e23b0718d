package model

import (
	"fmt"

	"main/internal/model/enum"
)

// Instrument is the static per-session definition of a tradable security.
type Instrument struct {
	Ticker        string
	Tier          enum.VolatilityTier
	PositionLimit int64
	MaxOrderSize  int64
	MinOrderSize  int64
	LotSize       int64
	TickSize      float64
	MinSpread     float64
}

// Validate checks the static fields once at construction time.
func (i Instrument) Validate() error {
	if i.Ticker == "" {
		return fmt.Errorf("instrument ticker is empty")
	}
	if !i.Tier.IsAvailable() {
		return fmt.Errorf("instrument %s: volatility tier is unknown", i.Ticker)
	}
	if i.PositionLimit <= 0 {
		return fmt.Errorf("instrument %s: position limit must be > 0", i.Ticker)
	}
	if i.MaxOrderSize <= 0 {
		return fmt.Errorf("instrument %s: max order size must be > 0", i.Ticker)
	}
	if i.MinOrderSize <= 0 || i.MinOrderSize > i.MaxOrderSize {
		return fmt.Errorf("instrument %s: min order size must be in (0, max]", i.Ticker)
	}
	if i.LotSize <= 0 {
		return fmt.Errorf("instrument %s: lot size must be > 0", i.Ticker)
	}
	if i.TickSize <= 0 {
		return fmt.Errorf("instrument %s: tick size must be > 0", i.Ticker)
	}
	if i.MinSpread < 0 {
		return fmt.Errorf("instrument %s: min spread must be >= 0", i.Ticker)
	}
	return nil
}
