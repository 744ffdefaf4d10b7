package rppg

import (
	"math"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultEveryNFrames       = 15
	DefaultCalibrationSeconds = 8
)

type Status string

const (
	StatusNoFace      Status = "no_face"
	StatusCalibrating Status = "calibrating"
	StatusMeasuring   Status = "measuring"
)

type MonitorConfig struct {
	FPS                float64
	WindowSeconds      int
	EveryNFrames       int
	CalibrationSeconds int
	Estimator          EstimatorConfig
}

func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		FPS:                DefaultFPS,
		WindowSeconds:      DefaultWindowSeconds,
		EveryNFrames:       DefaultEveryNFrames,
		CalibrationSeconds: DefaultCalibrationSeconds,
		Estimator:          DefaultEstimatorConfig(),
	}
}

// Measurement is a completed estimation window worth persisting.
type Measurement struct {
	HeartRate    float64   `json:"heart_rate"`
	HRV          *float64  `json:"hrv"`
	QualityScore float64   `json:"quality_score"`
	At           time.Time `json:"at"`
}

// FrameResult is what the monitor reports after every processed frame.
type FrameResult struct {
	Seq                 uint64   `json:"seq"`
	FaceDetected        bool     `json:"face_detected"`
	Face                *Rect    `json:"face,omitempty"`
	HeartRate           *float64 `json:"heart_rate"`
	HRV                 *float64 `json:"hrv"`
	Confidence          int      `json:"confidence"`
	CalibrationProgress float64  `json:"calibration_progress"`
	Status              Status   `json:"status"`

	// Measurement is set on the frames where a new heart rate was estimated.
	Measurement *Measurement `json:"-"`
}

// Summary aggregates the smoothing history of a session.
type Summary struct {
	Samples      int      `json:"samples"`
	AvgHeartRate *float64 `json:"avg_heart_rate"`
	MinHeartRate *float64 `json:"min_heart_rate"`
	MaxHeartRate *float64 `json:"max_heart_rate"`
	LastHRV      *float64 `json:"last_hrv"`
}

// Monitor runs the per-frame pipeline for one session: track, extract, buffer, and
// periodically estimate. It is not safe for concurrent use.
type Monitor struct {
	cfg       MonitorConfig
	tracker   *Tracker
	buffer    *SignalBuffer
	estimator *Estimator
	logger    *zap.Logger

	frames     int
	currentHR  *float64
	currentHRV *float64
}

func NewMonitor(cfg MonitorConfig, detector Detector, logger *zap.Logger) *Monitor {
	if cfg.FPS <= 0 {
		cfg.FPS = DefaultFPS
	}
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = DefaultWindowSeconds
	}
	if cfg.EveryNFrames <= 0 {
		cfg.EveryNFrames = DefaultEveryNFrames
	}
	if cfg.CalibrationSeconds <= 0 {
		cfg.CalibrationSeconds = DefaultCalibrationSeconds
	}
	cfg.Estimator.FPS = cfg.FPS
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Monitor{
		cfg:       cfg,
		tracker:   NewTracker(detector),
		buffer:    NewSignalBuffer(cfg.FPS, cfg.WindowSeconds),
		estimator: NewEstimator(cfg.Estimator, logger),
		logger:    logger,
	}
}

// ProcessFrame consumes one frame and reports the current session state.
func (m *Monitor) ProcessFrame(frame *Frame) FrameResult {
	m.frames++
	res := FrameResult{Seq: frame.Seq}

	face, ok := m.tracker.Track(frame.Gray())
	if !ok {
		res.Status = StatusNoFace
		m.fill(&res)
		return res
	}
	res.FaceDetected = true
	res.Face = &face

	if value, valid := CombinedSignal(frame, face); valid > 0 {
		if err := m.buffer.Append(value, frame.Timestamp); err != nil {
			m.logger.Debug("sample dropped", zap.Uint64("seq", frame.Seq), zap.Error(err))
		}
	}

	if m.frames%m.cfg.EveryNFrames == 0 {
		est := m.estimator.Estimate(m.buffer)
		if est.HeartRate != nil {
			m.currentHR = est.HeartRate
			m.currentHRV = est.HRV
			res.Measurement = &Measurement{
				HeartRate:    *est.HeartRate,
				HRV:          est.HRV,
				QualityScore: float64(m.estimator.Confidence()) / 100,
				At:           frame.Timestamp,
			}
		}
	}

	if m.currentHR != nil {
		res.Status = StatusMeasuring
	} else {
		res.Status = StatusCalibrating
	}
	m.fill(&res)
	return res
}

func (m *Monitor) fill(res *FrameResult) {
	res.Confidence = m.estimator.Confidence()
	if m.currentHR != nil {
		hr := math.Round(*m.currentHR)
		res.HeartRate = &hr
		res.CalibrationProgress = 100
		if m.currentHRV != nil {
			hrv := math.Round(*m.currentHRV*10) / 10
			res.HRV = &hrv
		}
		return
	}
	needed := m.cfg.FPS * float64(m.cfg.CalibrationSeconds)
	res.CalibrationProgress = math.Min(100, float64(m.buffer.Len())/needed*100)
}

func (m *Monitor) Current() (hr, hrv *float64) {
	return m.currentHR, m.currentHRV
}

func (m *Monitor) Summary() Summary {
	history := m.estimator.History()
	s := Summary{Samples: len(history), LastHRV: m.currentHRV}
	if len(history) == 0 {
		return s
	}
	lo, hi, sum := history[0], history[0], 0.0
	for _, v := range history {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		sum += v
	}
	avg := sum / float64(len(history))
	s.AvgHeartRate = &avg
	s.MinHeartRate = &lo
	s.MaxHeartRate = &hi
	return s
}

func (m *Monitor) Frames() int { return m.frames }

// Reset clears all session state so the monitor can be reused for a new capture.
func (m *Monitor) Reset() {
	m.frames = 0
	m.currentHR = nil
	m.currentHRV = nil
	m.tracker.Reset()
	m.buffer.Reset()
	m.estimator.Reset()
}
