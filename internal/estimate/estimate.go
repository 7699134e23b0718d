// Package estimate holds the pure numeric models behind tender decisions:
// book liquidity, close-out time, and short-horizon volatility.
package estimate

import (
	"errors"
	"math"

	"main/internal/model"
	"main/internal/model/enum"
)

// DefaultVolatility is the conservative fallback when the price history is
// too short to measure returns.
const DefaultVolatility = 0.05

// closeOutBuffer is the safety margin, in ticks, before the session end.
const closeOutBuffer = 15

var (
	ErrNonPositiveLiquidity = errors.New("liquidity must be positive")
	ErrElapsedOutOfRange    = errors.New("elapsed ticks out of session range")
)

// Liquidity sums the book side a position from the given offer side would
// unwind against: asks for a SELL offer, bids for a BUY offer.
func Liquidity(book model.OrderBookSnapshot, offerSide enum.Side) int64 {
	switch offerSide {
	case enum.SideSell:
		return book.AskVolume()
	case enum.SideBuy:
		return book.BidVolume()
	default:
		return 0
	}
}

// CloseOutTicks estimates how many ticks unwinding quantity takes when each
// order may move at most maxOrderSize shares, with one tick of latency per
// order. Returns +Inf when there is no liquidity.
func CloseOutTicks(quantity, maxOrderSize, liquidity int64) float64 {
	if quantity <= 0 || maxOrderSize <= 0 {
		return 0
	}
	if liquidity <= 0 {
		return math.Inf(1)
	}
	orders := math.Ceil(float64(quantity) / float64(maxOrderSize))
	perOrder := float64(maxOrderSize) / float64(liquidity)
	return orders*perOrder + orders
}

// CloseStartTick returns the tick at which unwinding should begin so the
// position is flat before the session ends, with a safety buffer.
func CloseStartTick(closeOutTicks float64, currentTick, totalTicks int) int {
	if math.IsInf(closeOutTicks, 1) {
		return currentTick
	}
	start := float64(totalTicks) - closeOutTicks - closeOutBuffer
	if start < 0 {
		start = 0
	}
	if float64(currentTick) > start {
		return currentTick
	}
	return int(start)
}

// Volatility estimates the short-horizon volatility used to widen the
// effective spread in tender pricing: the stddev of period-over-period
// returns, plus a tender-impact term, decayed by remaining session time.
func Volatility(prices []float64, liquidity int64, elapsedTicks, totalTicks int, tenderSize int64) (float64, error) {
	if liquidity <= 0 {
		return 0, ErrNonPositiveLiquidity
	}
	if totalTicks <= 0 || elapsedTicks < 0 || elapsedTicks > totalTicks {
		return 0, ErrElapsedOutOfRange
	}
	decay := 1 - float64(elapsedTicks)/float64(totalTicks)
	if len(prices) < 2 {
		return DefaultVolatility, nil
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}
	if len(returns) == 0 {
		return DefaultVolatility, nil
	}

	baseline := stddev(returns)
	impact := float64(tenderSize) / float64(liquidity+1)
	return (baseline + impact) * decay, nil
}

// stddev is the population standard deviation.
func stddev(values []float64) float64 {
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
