package rppg

import (
	"errors"
	"time"

	"pulse-companion-be/pkg/ringbuf"
)

const DefaultWindowSeconds = 15

var ErrOutOfOrder = errors.New("sample is older than the newest buffered sample")

// Sample is one combined ROI intensity and its capture time.
type Sample struct {
	Value float64
	At    time.Time
}

// SignalBuffer holds the most recent fps*window samples of one monitoring session.
// It is not safe for concurrent use.
type SignalBuffer struct {
	ring *ringbuf.Ring[Sample]
}

func NewSignalBuffer(fps float64, windowSeconds int) *SignalBuffer {
	if windowSeconds <= 0 {
		windowSeconds = DefaultWindowSeconds
	}
	return &SignalBuffer{ring: ringbuf.New[Sample](int(fps * float64(windowSeconds)))}
}

// Append adds a sample, evicting the oldest one when full.
func (b *SignalBuffer) Append(value float64, at time.Time) error {
	if n := b.ring.Len(); n > 0 && at.Before(b.ring.At(n-1).At) {
		return ErrOutOfOrder
	}
	b.ring.Push(Sample{Value: value, At: at})
	return nil
}

func (b *SignalBuffer) Len() int { return b.ring.Len() }

func (b *SignalBuffer) Cap() int { return b.ring.Cap() }

func (b *SignalBuffer) Samples() []Sample { return b.ring.Values() }

func (b *SignalBuffer) Values() []float64 {
	out := make([]float64, b.ring.Len())
	for i := range out {
		out[i] = b.ring.At(i).Value
	}
	return out
}

// Span is the time between the oldest and newest sample.
func (b *SignalBuffer) Span() time.Duration {
	n := b.ring.Len()
	if n < 2 {
		return 0
	}
	return b.ring.At(n - 1).At.Sub(b.ring.At(0).At)
}

// ActualRate measures the sampling rate from the timestamp span.
// It falls back to nominal when fewer than two samples exist or the span is not positive.
func (b *SignalBuffer) ActualRate(nominal float64) float64 {
	n := b.ring.Len()
	span := b.Span().Seconds()
	if n < 2 || span <= 0 {
		return nominal
	}
	return float64(n-1) / span
}

// Covered is the signal duration the buffer represents: the span plus one sample period.
func (b *SignalBuffer) Covered(nominal float64) time.Duration {
	n := b.ring.Len()
	if n == 0 {
		return 0
	}
	rate := b.ActualRate(nominal)
	if rate <= 0 {
		return b.Span()
	}
	return b.Span() + time.Duration(float64(time.Second)/rate)
}

func (b *SignalBuffer) Reset() { b.ring.Reset() }
