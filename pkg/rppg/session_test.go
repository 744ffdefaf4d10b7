package rppg

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedDetector struct {
	face *Rect
}

func (d fixedDetector) Detect(*GrayImage) []Rect {
	if d.face == nil {
		return nil
	}
	return []Rect{*d.face}
}

func pulseFrame(seq int, fps, freqHz float64, start time.Time) *Frame {
	ts := float64(seq) / fps
	g := uint8(math.Round(128 + 12*math.Sin(2*math.Pi*freqHz*ts)))
	f := NewFrame(uint64(seq), start.Add(time.Duration(ts*float64(time.Second))), 64, 64)
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			f.Set(x, y, 90, g, 160)
		}
	}
	return f
}

func TestMonitorMeasuresPulse(t *testing.T) {
	face := Rect{X: 4, Y: 4, W: 56, H: 56}
	m := NewMonitor(DefaultMonitorConfig(), fixedDetector{face: &face}, nil)
	start := time.Unix(1_700_000_000, 0)

	var measurements []Measurement
	var last FrameResult
	for i := 0; i < 450; i++ {
		last = m.ProcessFrame(pulseFrame(i, 30, 1.2, start))
		if last.Measurement != nil {
			measurements = append(measurements, *last.Measurement)
		}
		if i == 59 {
			assert.Equal(t, StatusCalibrating, last.Status)
			assert.InDelta(t, 25.0, last.CalibrationProgress, 1e-9)
			assert.Nil(t, last.HeartRate)
		}
	}

	assert.True(t, last.FaceDetected)
	assert.Equal(t, StatusMeasuring, last.Status)
	assert.Equal(t, 100.0, last.CalibrationProgress)
	require.NotNil(t, last.HeartRate)
	assert.InDelta(t, 72, *last.HeartRate, 3)
	assert.Equal(t, math.Round(*last.HeartRate), *last.HeartRate)

	require.NotEmpty(t, measurements)
	assert.InDelta(t, 72, measurements[len(measurements)-1].HeartRate, 3)
	assert.Greater(t, measurements[len(measurements)-1].QualityScore, 0.0)
	assert.LessOrEqual(t, measurements[len(measurements)-1].QualityScore, 1.0)

	summary := m.Summary()
	assert.Equal(t, len(m.estimator.History()), summary.Samples)
	require.NotNil(t, summary.AvgHeartRate)
	assert.InDelta(t, 72, *summary.AvgHeartRate, 3)
	assert.LessOrEqual(t, *summary.MinHeartRate, *summary.MaxHeartRate)
}

func TestMonitorWithoutFace(t *testing.T) {
	m := NewMonitor(DefaultMonitorConfig(), fixedDetector{}, nil)
	res := m.ProcessFrame(pulseFrame(0, 30, 1.2, time.Unix(0, 0)))

	assert.False(t, res.FaceDetected)
	assert.Nil(t, res.Face)
	assert.Equal(t, StatusNoFace, res.Status)
	assert.Equal(t, 0.0, res.CalibrationProgress)
	assert.Equal(t, 0, m.buffer.Len())
}

func TestMonitorReset(t *testing.T) {
	face := Rect{X: 4, Y: 4, W: 56, H: 56}
	m := NewMonitor(DefaultMonitorConfig(), fixedDetector{face: &face}, nil)
	for i := 0; i < 30; i++ {
		m.ProcessFrame(pulseFrame(i, 30, 1.2, time.Unix(0, 0)))
	}
	require.Equal(t, 30, m.buffer.Len())

	m.Reset()
	assert.Equal(t, 0, m.Frames())
	assert.Equal(t, 0, m.buffer.Len())
	hr, hrv := m.Current()
	assert.Nil(t, hr)
	assert.Nil(t, hrv)
}
