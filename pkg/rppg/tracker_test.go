package rppg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type scriptedDetector struct {
	frames [][]Rect
	calls  int
}

func (d *scriptedDetector) Detect(*GrayImage) []Rect {
	if d.calls >= len(d.frames) {
		return nil
	}
	out := d.frames[d.calls]
	d.calls++
	return out
}

func TestTrackerPicksLargestWithoutHistory(t *testing.T) {
	tr := NewTracker(&scriptedDetector{frames: [][]Rect{{
		{X: 0, Y: 0, W: 50, H: 50},
		{X: 200, Y: 200, W: 120, H: 120},
		{X: 400, Y: 0, W: 120, H: 120},
	}}})

	face, ok := tr.Track(nil)
	assert.True(t, ok)
	// ties keep the first candidate
	assert.Equal(t, Rect{X: 200, Y: 200, W: 120, H: 120}, face)
}

func TestTrackerPrefersContinuity(t *testing.T) {
	tr := NewTracker(&scriptedDetector{frames: [][]Rect{
		{{X: 100, Y: 100, W: 80, H: 80}},
		{
			{X: 300, Y: 300, W: 200, H: 200},
			{X: 104, Y: 98, W: 70, H: 70},
		},
		{
			{X: 110, Y: 104, W: 80, H: 80},
			{X: 98, Y: 104, W: 80, H: 80},
		},
	}})

	first, ok := tr.Track(nil)
	assert.True(t, ok)
	assert.Equal(t, 100, first.X)

	second, ok := tr.Track(nil)
	assert.True(t, ok)
	assert.Equal(t, Rect{X: 104, Y: 98, W: 70, H: 70}, second)

	// both candidates are 12 away from (104, 98); the first one wins
	third, ok := tr.Track(nil)
	assert.True(t, ok)
	assert.Equal(t, Rect{X: 110, Y: 104, W: 80, H: 80}, third)
}

func TestTrackerClearsAnchorWhenFaceLost(t *testing.T) {
	tr := NewTracker(&scriptedDetector{frames: [][]Rect{
		{{X: 10, Y: 10, W: 100, H: 100}},
		{},
		{
			{X: 12, Y: 12, W: 60, H: 60},
			{X: 300, Y: 300, W: 150, H: 150},
		},
	}})

	_, ok := tr.Track(nil)
	assert.True(t, ok)

	_, ok = tr.Track(nil)
	assert.False(t, ok)
	_, hasLast := tr.Last()
	assert.False(t, hasLast)

	// without an anchor the largest face is chosen again
	face, ok := tr.Track(nil)
	assert.True(t, ok)
	assert.Equal(t, 150, face.W)
}
