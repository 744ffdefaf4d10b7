package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"pulse-companion-be/pkg/resilience"
	"pulse-companion-be/pkg/rppg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type centerDetector struct{ found bool }

func (d centerDetector) Detect(gray *rppg.GrayImage) []rppg.Rect {
	if !d.found {
		return nil
	}
	return []rppg.Rect{{X: 8, Y: 8, W: 48, H: 48}}
}

type capturePublisher struct{ payloads [][]byte }

func (p *capturePublisher) Publish(ctx context.Context, payload []byte) error {
	p.payloads = append(p.payloads, payload)
	return nil
}

func encodedFrame(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: 180, G: 130, B: 110, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func TestStreamService_Session(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps(t)
	d.seedPatient(t)
	vitals := newVitalsService(d)
	svc := NewStreamService(d.factory, centerDetector{found: true}, rppg.DefaultMonitorConfig(), vitals, &capturePublisher{}, nil, d.log)

	session, err := svc.NewSession(ctx, "maria_001")
	require.NoError(t, err)

	res, err := session.ProcessJPEG(ctx, encodedFrame(t))
	require.NoError(t, err)
	assert.True(t, res.FaceDetected)
	assert.Equal(t, rppg.StatusCalibrating, res.Status)
	assert.Equal(t, uint64(1), res.Seq)
	assert.Empty(t, res.Message)

	live, err := vitals.Live(ctx, "maria_001")
	require.NoError(t, err)
	assert.Equal(t, string(rppg.StatusCalibrating), live.Status)
	assert.True(t, live.FaceDetected)

	_, err = session.ProcessJPEG(ctx, []byte("not a jpeg"))
	assert.Error(t, err)

	summary := session.Close()
	assert.Zero(t, summary.Samples)
}

func TestStreamService_NoFace(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps(t)
	d.seedPatient(t)
	svc := NewStreamService(d.factory, centerDetector{}, rppg.DefaultMonitorConfig(), newVitalsService(d), &capturePublisher{}, nil, d.log)

	session, err := svc.NewSession(ctx, "maria_001")
	require.NoError(t, err)
	res, err := session.ProcessJPEG(ctx, encodedFrame(t))
	require.NoError(t, err)
	assert.False(t, res.FaceDetected)
	assert.Equal(t, rppg.StatusNoFace, res.Status)
	msg, _ := resilience.SensorMessage(resilience.SensorFaceNotDetected)
	assert.Equal(t, msg, res.Message)
}

func TestStreamService_NewSessionErrors(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps(t)

	_, err := NewStreamService(d.factory, nil, rppg.DefaultMonitorConfig(), newVitalsService(d), &capturePublisher{}, nil, d.log).NewSession(ctx, "maria_001")
	assert.ErrorIs(t, err, ErrDetectorUnavailable)

	_, err = NewStreamService(d.factory, centerDetector{found: true}, rppg.DefaultMonitorConfig(), newVitalsService(d), &capturePublisher{}, nil, d.log).NewSession(ctx, "ghost")
	assert.ErrorIs(t, err, ErrPatientNotFound)
}
