package rppg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindPeaks(t *testing.T) {
	tests := []struct {
		name string
		x    []float64
		c    peakCriteria
		want []int
	}{
		{
			name: "height filter",
			x:    []float64{0, 1, 0, 0.5, 0, 0.9, 0, 0.2, 0},
			c:    peakCriteria{Height: 0.3},
			want: []int{1, 3, 5},
		},
		{
			name: "distance keeps the taller neighbour",
			x:    []float64{0, 1, 0, 0.5, 0, 0.9, 0, 0.2, 0},
			c:    peakCriteria{Height: 0.3, Distance: 3},
			want: []int{1, 5},
		},
		{
			name: "plateau resolves to its middle",
			x:    []float64{0, 1, 1, 1, 0},
			want: []int{2},
		},
		{
			name: "shoulder without prominence is dropped",
			x:    []float64{0, 1, 0.95, 0.97, 0},
			c:    peakCriteria{Prominence: 0.1},
			want: []int{1},
		},
		{
			name: "edges are never peaks",
			x:    []float64{1, 0, 0, 1},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findPeaks(tt.x, tt.c)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProminence(t *testing.T) {
	x := []float64{0, 1, 0.95, 0.97, 0}
	assert.InDelta(t, 1.0, prominence(x, 1), 1e-12)
	assert.InDelta(t, 0.02, prominence(x, 3), 1e-12)
}

func TestRMSSD(t *testing.T) {
	t.Run("alternating intervals", func(t *testing.T) {
		// 800, 850, 800, 850 ms at 1 kHz
		v, ok := rmssd([]int{0, 800, 1650, 2450, 3300}, 1000)
		assert.True(t, ok)
		assert.InDelta(t, 50.0, v, 1e-9)
	})

	t.Run("perfectly regular rhythm is rejected as implausible", func(t *testing.T) {
		_, ok := rmssd([]int{0, 25, 50, 75, 100}, 30)
		assert.False(t, ok)
	})

	t.Run("too few peaks", func(t *testing.T) {
		_, ok := rmssd([]int{0, 800}, 1000)
		assert.False(t, ok)
	})

	t.Run("non physiological intervals are discarded", func(t *testing.T) {
		// 100 ms intervals are filtered out, leaving only two valid ones
		_, ok := rmssd([]int{0, 100, 200, 1000, 1800}, 1000)
		assert.False(t, ok)
	})

	t.Run("excessive variability is rejected", func(t *testing.T) {
		_, ok := rmssd([]int{0, 400, 1900, 2300, 3800}, 1000)
		assert.False(t, ok)
	})
}
