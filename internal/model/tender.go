package model

import (
	"fmt"

	"main/internal/model/enum"
)

// TenderOffer is a fixed-price block trade proposed outside the continuous
// market. Offers are immutable once received and consumed at most once.
type TenderOffer struct {
	ID       int64
	Ticker   string
	Side     enum.Side
	Quantity int64
	Price    float64
	Tick     int
}

// Validate checks the required fields of an offer at the boundary.
func (t TenderOffer) Validate() error {
	if t.ID == 0 {
		return fmt.Errorf("tender id is missing")
	}
	if t.Ticker == "" {
		return fmt.Errorf("tender %d: ticker is missing", t.ID)
	}
	if !t.Side.IsAvailable() {
		return fmt.Errorf("tender %d: side is unknown", t.ID)
	}
	if t.Quantity <= 0 {
		return fmt.Errorf("tender %d: quantity must be > 0", t.ID)
	}
	if t.Price <= 0 {
		return fmt.Errorf("tender %d: price must be > 0", t.ID)
	}
	return nil
}
