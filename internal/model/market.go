package model

// Quote is the venue's current top of book for one instrument.
type Quote struct {
	Bid    float64
	Ask    float64
	Last   float64
	TsNano int64
}

// Valid reports whether the quote is usable: both touches present and uncrossed.
func (q Quote) Valid() bool {
	return q.Bid > 0 && q.Ask > 0 && q.Ask > q.Bid
}

// Mid returns the midpoint of the touch. Callers must check Valid first.
func (q Quote) Mid() float64 {
	return (q.Bid + q.Ask) / 2
}

// SpreadRatio returns (ask-bid)/mid, the staleness/illiquidity measure.
func (q Quote) SpreadRatio() float64 {
	mid := q.Mid()
	if mid <= 0 {
		return 0
	}
	return (q.Ask - q.Bid) / mid
}

// BookLevel is one price level of an order book snapshot.
type BookLevel struct {
	Price    float64
	Quantity int64
}

// OrderBookSnapshot is a point-in-time view of resting depth.
type OrderBookSnapshot struct {
	Bids []BookLevel
	Asks []BookLevel
}

// BidVolume sums resting quantity on the bid side.
func (b OrderBookSnapshot) BidVolume() int64 {
	var total int64
	for _, lvl := range b.Bids {
		total += lvl.Quantity
	}
	return total
}

// AskVolume sums resting quantity on the ask side.
func (b OrderBookSnapshot) AskVolume() int64 {
	var total int64
	for _, lvl := range b.Asks {
		total += lvl.Quantity
	}
	return total
}
