// Package series provides fixed-capacity rolling buffers for metric samples.
// Buffers drive the sparkline and gauge history rendering in the dashboard.
package series

import "math"

// DefaultCapacity is the default number of data points retained per metric.
const DefaultCapacity = 20

// Buffer is a fixed-size circular buffer of float64 samples.
// It is pre-filled at creation so charts render immediately without a
// warm-up gap, and it never stores a non-finite value.
type Buffer struct {
	data []float64
	head int
	size int
}

// NewBuffer creates a buffer with the given capacity, pre-filled with fill.
// Capacities below 1 fall back to DefaultCapacity. A non-finite fill is
// coerced to 0 like any other pushed value.
func NewBuffer(capacity int, fill float64) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	fill = sanitize(fill)

	data := make([]float64, capacity)
	for i := range data {
		data[i] = fill
	}
	return &Buffer{
		data: data,
		size: capacity,
	}
}

// Push appends a value, evicting the oldest sample. NaN and infinities are
// coerced to 0 so downstream renderers never see a non-finite number.
func (b *Buffer) Push(value float64) {
	b.data[b.head] = sanitize(value)
	b.head = (b.head + 1) % b.size
}

// Values returns a copy of the samples in chronological order, oldest first.
// The result always has length equal to the buffer capacity.
func (b *Buffer) Values() []float64 {
	out := make([]float64, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.data[(b.head+i)%b.size]
	}
	return out
}

// Last returns the most recently pushed value.
func (b *Buffer) Last() float64 {
	return b.data[(b.head-1+b.size)%b.size]
}

// Capacity returns the fixed capacity of the buffer.
func (b *Buffer) Capacity() int {
	return b.size
}

// sanitize coerces non-finite values to 0.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
