package model

import (
	"fmt"

	"main/internal/model/enum"
)

// Order is an order intent sent to the venue.
type Order struct {
	Ticker   string
	Side     enum.Side
	Quantity int64
	Price    float64
	Type     enum.OrderType
}

// SignedQuantity returns the position delta the order produces when filled.
func (o Order) SignedQuantity() int64 {
	return o.Side.Sign() * o.Quantity
}

// Validate checks the order before submission.
func (o Order) Validate() error {
	if o.Ticker == "" {
		return fmt.Errorf("order ticker is empty")
	}
	if !o.Side.IsAvailable() {
		return fmt.Errorf("order side is unknown")
	}
	if !o.Type.IsAvailable() {
		return fmt.Errorf("order type is unknown")
	}
	if o.Quantity <= 0 {
		return fmt.Errorf("order quantity must be > 0")
	}
	if o.Type == enum.OrderTypeLimit && o.Price <= 0 {
		return fmt.Errorf("limit order price must be > 0")
	}
	return nil
}

// Fill is a confirmed execution reported by the venue.
type Fill struct {
	OrderID  int64
	Ticker   string
	Side     enum.Side
	Quantity int64
	Price    float64
	Tick     int
}

// SignedQuantity returns the position delta of the fill.
func (f Fill) SignedQuantity() int64 {
	return f.Side.Sign() * f.Quantity
}
