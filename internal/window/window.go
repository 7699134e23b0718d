// Package window keeps a bounded per-instrument price history and the
// streaming statistics derived from it.
package window

import "math"

// Window is a fixed-capacity FIFO price buffer. The oldest sample is
// dropped once capacity is reached, so Len() <= capacity always holds.
type Window struct {
	prices []float64
	head   int
	size   int
}

// New allocates a window with the given capacity.
func New(capacity int) *Window {
	if capacity <= 0 {
		capacity = 1
	}
	return &Window{prices: make([]float64, capacity)}
}

// Push appends a price, evicting the oldest sample on overflow.
func (w *Window) Push(price float64) {
	idx := (w.head + w.size) % len(w.prices)
	w.prices[idx] = price
	if w.size < len(w.prices) {
		w.size++
	} else {
		w.head = (w.head + 1) % len(w.prices)
	}
}

// Len returns the current sample count.
func (w *Window) Len() int {
	return w.size
}

// Cap returns the fixed capacity.
func (w *Window) Cap() int {
	return len(w.prices)
}

// Values copies the samples in arrival order, oldest first.
func (w *Window) Values() []float64 {
	out := make([]float64, w.size)
	for i := 0; i < w.size; i++ {
		out[i] = w.prices[(w.head+i)%len(w.prices)]
	}
	return out
}

// Mean returns the sample mean, or 0 for an empty window.
func (w *Window) Mean() float64 {
	if w.size == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < w.size; i++ {
		sum += w.prices[(w.head+i)%len(w.prices)]
	}
	return sum / float64(w.size)
}

// Stddev returns the Bessel-corrected sample standard deviation.
// Fewer than two samples yield 0.
func (w *Window) Stddev() float64 {
	if w.size < 2 {
		return 0
	}
	mean := w.Mean()
	var sum float64
	for i := 0; i < w.size; i++ {
		d := w.prices[(w.head+i)%len(w.prices)] - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(w.size-1))
}

// ZScore returns (price-mean)/stddev. ok is false when the deviation is
// zero, so a constant window never produces a division fault.
func (w *Window) ZScore(price float64) (z float64, ok bool) {
	std := w.Stddev()
	if std == 0 {
		return 0, false
	}
	return (price - w.Mean()) / std, true
}
