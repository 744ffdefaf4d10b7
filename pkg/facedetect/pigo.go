package facedetect

import (
	"fmt"
	"os"

	"pulse-companion-be/pkg/rppg"

	pigo "github.com/esimov/pigo/core"
	"go.uber.org/zap"
)

type Config struct {
	CascadePath  string
	MinSize      int
	MaxSize      int
	ShiftFactor  float64
	ScaleFactor  float64
	IoUThreshold float64
	MinQuality   float32
}

func DefaultConfig(cascadePath string) Config {
	return Config{
		CascadePath:  cascadePath,
		MinSize:      100,
		MaxSize:      1000,
		ShiftFactor:  0.1,
		ScaleFactor:  1.1,
		IoUThreshold: 0.2,
		MinQuality:   5.0,
	}
}

// PigoDetector finds frontal faces with a pico cascade.
type PigoDetector struct {
	cfg        Config
	classifier *pigo.Pigo
	logger     *zap.Logger
}

var _ rppg.Detector = &PigoDetector{}

func NewPigoDetector(cfg Config, logger *zap.Logger) (*PigoDetector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cascade, err := os.ReadFile(cfg.CascadePath)
	if err != nil {
		return nil, fmt.Errorf("read face cascade %q: %w", cfg.CascadePath, err)
	}

	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("unpack face cascade: %w", err)
	}

	logger.Info("face cascade loaded", zap.String("path", cfg.CascadePath), zap.Int("min_size", cfg.MinSize))
	return &PigoDetector{cfg: cfg, classifier: classifier, logger: logger}, nil
}

func (d *PigoDetector) Detect(gray *rppg.GrayImage) []rppg.Rect {
	if gray == nil || gray.Width == 0 || gray.Height == 0 {
		return nil
	}

	params := pigo.CascadeParams{
		MinSize:     d.cfg.MinSize,
		MaxSize:     max(d.cfg.MaxSize, d.cfg.MinSize),
		ShiftFactor: d.cfg.ShiftFactor,
		ScaleFactor: d.cfg.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: gray.Pix,
			Rows:   gray.Height,
			Cols:   gray.Width,
			Dim:    gray.Width,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, d.cfg.IoUThreshold)
	return toRects(dets, d.cfg.MinQuality)
}

// toRects converts centre/scale detections to top-left rectangles, dropping low quality hits.
func toRects(dets []pigo.Detection, minQuality float32) []rppg.Rect {
	var out []rppg.Rect
	for _, det := range dets {
		if det.Q < minQuality {
			continue
		}
		half := det.Scale / 2
		out = append(out, rppg.Rect{
			X: det.Col - half,
			Y: det.Row - half,
			W: det.Scale,
			H: det.Scale,
		})
	}
	return out
}
