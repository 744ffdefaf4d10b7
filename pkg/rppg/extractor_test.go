package rppg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidFrame(w, h int, b, g, r uint8) *Frame {
	f := NewFrame(1, time.Unix(0, 0), w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.Set(x, y, b, g, r)
		}
	}
	return f
}

func TestExtractSignal(t *testing.T) {
	frame := solidFrame(40, 30, 10, 100, 50)

	tests := []struct {
		name   string
		roi    Rect
		wantOK bool
	}{
		{name: "inside frame", roi: Rect{X: 5, Y: 5, W: 10, H: 10}, wantOK: true},
		{name: "negative origin is clamped", roi: Rect{X: -5, Y: -5, W: 10, H: 10}, wantOK: true},
		{name: "overflowing size is trimmed", roi: Rect{X: 35, Y: 25, W: 50, H: 50}, wantOK: true},
		{name: "zero width", roi: Rect{X: 5, Y: 5, W: 0, H: 10}, wantOK: false},
		{name: "negative height", roi: Rect{X: 5, Y: 5, W: 10, H: -1}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := ExtractSignal(frame, tt.roi)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, 0.7*100+0.3*50, v, 1e-9)
			}
		})
	}
}

func TestExtractSignalWeightsGreenOverRed(t *testing.T) {
	frame := NewFrame(1, time.Unix(0, 0), 2, 1)
	frame.Set(0, 0, 0, 200, 0)
	frame.Set(1, 0, 0, 0, 200)

	v, ok := ExtractSignal(frame, Rect{X: 0, Y: 0, W: 2, H: 1})
	require.True(t, ok)
	assert.InDelta(t, 0.7*100+0.3*100, v, 1e-9)

	green, _ := ExtractSignal(frame, Rect{X: 0, Y: 0, W: 1, H: 1})
	red, _ := ExtractSignal(frame, Rect{X: 1, Y: 0, W: 1, H: 1})
	assert.Greater(t, green, red)
}

func TestRectClamp(t *testing.T) {
	assert.Equal(t, Rect{X: 0, Y: 0, W: 10, H: 10}, Rect{X: -5, Y: -5, W: 10, H: 10}.Clamp(40, 30))
	assert.Equal(t, Rect{X: 39, Y: 29, W: 1, H: 1}, Rect{X: 100, Y: 100, W: 5, H: 5}.Clamp(40, 30))
	assert.True(t, Rect{X: 0, Y: 0, W: 0, H: 3}.Empty())
	assert.Equal(t, 0, Rect{W: -2, H: 4}.Area())
}

func TestFaceROIs(t *testing.T) {
	rois := FaceROIs(Rect{X: 10, Y: 20, W: 100, H: 100})
	require.Len(t, rois, 3)

	assert.Equal(t, NamedROI{Name: "forehead", Rect: Rect{X: 35, Y: 25, W: 50, H: 15}}, rois[0])
	assert.Equal(t, NamedROI{Name: "left_cheek", Rect: Rect{X: 20, Y: 65, W: 25, H: 25}}, rois[1])
	assert.Equal(t, NamedROI{Name: "right_cheek", Rect: Rect{X: 75, Y: 65, W: 25, H: 25}}, rois[2])
}

func TestCombinedSignal(t *testing.T) {
	frame := solidFrame(100, 100, 0, 80, 40)

	v, n := CombinedSignal(frame, Rect{X: 0, Y: 0, W: 100, H: 100})
	assert.Equal(t, 3, n)
	assert.InDelta(t, 0.7*80+0.3*40, v, 1e-9)

	// a tiny face truncates every ROI to zero size
	_, n = CombinedSignal(frame, Rect{X: 0, Y: 0, W: 3, H: 3})
	assert.Equal(t, 0, n)
}

func TestFrameGray(t *testing.T) {
	frame := solidFrame(2, 2, 255, 255, 255)
	gray := frame.Gray()
	require.Len(t, gray.Pix, 4)
	assert.Equal(t, uint8(255), gray.Pix[0])

	frame = solidFrame(1, 1, 0, 0, 0)
	assert.Equal(t, uint8(0), frame.Gray().Pix[0])
}
