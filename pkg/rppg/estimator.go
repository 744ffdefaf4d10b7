package rppg

import (
	"fmt"
	"math"

	"pulse-companion-be/pkg/ringbuf"

	"go.uber.org/zap"
)

const (
	DefaultFPS        = 30.0
	DefaultLowHz      = 0.7
	DefaultHighHz     = 3.0
	DefaultOrder      = 3
	DefaultMinSeconds = 5.0

	historySize      = 10
	smoothingWindow  = 5
	smoothingMinimum = 3

	minPlausibleBPM = 45.0
	maxPlausibleBPM = 160.0

	minBeatSeconds = 0.33
	maxBeatSeconds = 1.5
)

type EstimatorConfig struct {
	FPS        float64
	LowHz      float64
	HighHz     float64
	Order      int
	MinSeconds float64
}

func DefaultEstimatorConfig() EstimatorConfig {
	return EstimatorConfig{
		FPS:        DefaultFPS,
		LowHz:      DefaultLowHz,
		HighHz:     DefaultHighHz,
		Order:      DefaultOrder,
		MinSeconds: DefaultMinSeconds,
	}
}

// Estimate is the result of one estimation epoch. A nil HeartRate means the
// signal is currently unmeasurable (calibrating, no usable pulse).
type Estimate struct {
	HeartRate *float64
	HRV       *float64

	// Raw is the fused, unsmoothed heart rate of this epoch.
	Raw        *float64
	Spectral   *float64
	Temporal   *float64
	SampleRate float64
	Filtered   bool
}

// Estimator turns a signal buffer into heart rate and RMSSD estimates.
// It keeps a short history for smoothing and is owned by a single session.
type Estimator struct {
	cfg     EstimatorConfig
	history *ringbuf.Ring[float64]
	logger  *zap.Logger
}

func NewEstimator(cfg EstimatorConfig, logger *zap.Logger) *Estimator {
	if cfg.FPS <= 0 {
		cfg.FPS = DefaultFPS
	}
	if cfg.LowHz <= 0 {
		cfg.LowHz = DefaultLowHz
	}
	if cfg.HighHz <= cfg.LowHz {
		cfg.HighHz = DefaultHighHz
	}
	if cfg.Order <= 0 {
		cfg.Order = DefaultOrder
	}
	if cfg.MinSeconds <= 0 {
		cfg.MinSeconds = DefaultMinSeconds
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Estimator{
		cfg:     cfg,
		history: ringbuf.New[float64](historySize),
		logger:  logger,
	}
}

// analysis carries the intermediate products of one epoch between stages.
type analysis struct {
	fs       float64
	signal   []float64
	filtered bool
	spectral *float64
	temporal *float64
	peaks    []int
}

type stage struct {
	name string
	run  func(e *Estimator, a *analysis) error
}

var pipeline = []stage{
	{"detrend", (*Estimator).detrendStage},
	{"normalize", (*Estimator).normalizeStage},
	{"bandpass", (*Estimator).bandpassStage},
	{"spectral", (*Estimator).spectralStage},
	{"temporal", (*Estimator).temporalStage},
}

// Estimate runs one epoch over the buffer. It never panics; any internal
// failure yields an empty estimate.
func (e *Estimator) Estimate(buf *SignalBuffer) (est Estimate) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("vitals estimation failed", zap.Any("panic", r))
			est = Estimate{}
		}
	}()

	if !e.hasEnoughSignal(buf) {
		return Estimate{}
	}

	a := &analysis{
		fs:     buf.ActualRate(e.cfg.FPS),
		signal: buf.Values(),
	}
	for _, s := range pipeline {
		if err := s.run(e, a); err != nil {
			e.logger.Warn("vitals stage failed", zap.String("stage", s.name), zap.Error(err))
			return Estimate{SampleRate: a.fs}
		}
	}

	est = Estimate{
		Spectral:   a.spectral,
		Temporal:   a.temporal,
		SampleRate: a.fs,
		Filtered:   a.filtered,
	}

	var candidates []float64
	for _, hr := range []*float64{a.spectral, a.temporal} {
		if hr != nil && *hr > minPlausibleBPM && *hr < maxPlausibleBPM {
			candidates = append(candidates, *hr)
		}
	}
	if len(candidates) == 0 {
		return est
	}

	raw := median(candidates)
	est.Raw = &raw
	smoothed := e.smooth(raw)
	est.HeartRate = &smoothed

	if len(a.peaks) >= 3 {
		if v, ok := rmssd(a.peaks, a.fs); ok {
			est.HRV = &v
		}
	}
	return est
}

func (e *Estimator) hasEnoughSignal(buf *SignalBuffer) bool {
	if buf == nil {
		return false
	}
	if buf.Len() < int(e.cfg.FPS*e.cfg.MinSeconds) {
		return false
	}
	const tolerance = 1e-6
	return buf.Covered(e.cfg.FPS).Seconds()+tolerance >= e.cfg.MinSeconds
}

func (e *Estimator) smooth(raw float64) float64 {
	e.history.Push(raw)
	if e.history.Len() < smoothingMinimum {
		return raw
	}
	return median(e.history.Last(smoothingWindow))
}

func (e *Estimator) detrendStage(a *analysis) error {
	out, err := detrend(a.signal)
	if err != nil {
		return err
	}
	a.signal = out
	return nil
}

func (e *Estimator) normalizeStage(a *analysis) error {
	a.signal = zscore(a.signal)
	return nil
}

// bandpassStage keeps the unfiltered signal when the filter cannot be designed or applied.
func (e *Estimator) bandpassStage(a *analysis) error {
	nyquist := 0.5 * a.fs
	low := clamp(e.cfg.LowHz/nyquist, 0.01, 0.99)
	high := clamp(e.cfg.HighHz/nyquist, low+0.01, 0.99)

	b, den, err := butterBandpass(e.cfg.Order, low, high)
	if err == nil {
		var out []float64
		padlen := min(len(a.signal)-1, 3*max(len(b), len(den)))
		if out, err = filtfilt(b, den, a.signal, padlen); err == nil && allFinite(out) {
			a.signal = out
			a.filtered = true
			return nil
		}
	}
	e.logger.Debug("bandpass skipped", zap.Error(err), zap.Float64("fs", a.fs))
	return nil
}

func (e *Estimator) spectralStage(a *analysis) error {
	freq, ok := dominantFrequency(a.signal, a.fs, e.cfg.LowHz, e.cfg.HighHz)
	if ok {
		bpm := freq * 60
		a.spectral = &bpm
	}
	return nil
}

func (e *Estimator) temporalStage(a *analysis) error {
	if a.fs <= 0 {
		return fmt.Errorf("non-positive sample rate %g", a.fs)
	}
	norm := minMaxScale(a.signal)
	peaks := findPeaks(norm, peakCriteria{
		Height:     0.3,
		Distance:   max(1, int(a.fs*0.4)),
		Prominence: 0.1,
	})
	if len(peaks) < 3 {
		return nil
	}

	var intervals []float64
	for i := 1; i < len(peaks); i++ {
		s := float64(peaks[i]-peaks[i-1]) / a.fs
		if s > minBeatSeconds && s < maxBeatSeconds {
			intervals = append(intervals, s)
		}
	}
	if len(intervals) < 2 {
		return nil
	}

	bpm := 60 / median(intervals)
	a.temporal = &bpm
	a.peaks = peaks
	return nil
}

// Confidence grows by 10 points per estimate in the history, capped at 100.
func (e *Estimator) Confidence() int {
	return min(100, 10*e.history.Len())
}

func (e *Estimator) History() []float64 {
	return e.history.Values()
}

func (e *Estimator) Reset() {
	e.history.Reset()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
