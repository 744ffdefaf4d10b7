package dto

import (
	"time"

	"pulse-companion-be/pkg/analytics"
	"pulse-companion-be/pkg/rppg"

	"github.com/google/uuid"
)

type RecordVitalsRequest struct {
	PatientId    string     `json:"patient_id" validate:"required"`
	HeartRate    float64    `json:"heart_rate" validate:"gt=0,lte=250"`
	HRV          float64    `json:"hrv" validate:"gte=0,lte=500"`
	QualityScore float64    `json:"quality_score" validate:"gte=0,lte=1"`
	RecordedAt   *time.Time `json:"timestamp"`
	Source       string     `json:"source" validate:"omitempty,oneof=manual camera seed"`
}

type VitalReadingResponse struct {
	Id           uuid.UUID `json:"id"`
	PatientId    string    `json:"patient_id"`
	RecordedAt   time.Time `json:"timestamp"`
	HeartRate    float64   `json:"heart_rate"`
	HRV          float64   `json:"hrv"`
	QualityScore float64   `json:"quality_score"`
	Source       string    `json:"source"`
}

type RecordVitalsResponse struct {
	Reading VitalReadingResponse `json:"reading"`
	Alerts  []analytics.Alert    `json:"alerts"`
}

type ListVitalsResponse struct {
	PatientId string                  `json:"patient_id"`
	Vitals    []*VitalReadingResponse `json:"vitals"`
	Count     int                     `json:"count"`
}

type LiveVitalsResponse struct {
	PatientId    string    `json:"patient_id"`
	HeartRate    *float64  `json:"heart_rate"`
	HRV          *float64  `json:"hrv"`
	Confidence   int       `json:"confidence"`
	Status       string    `json:"status"`
	FaceDetected bool      `json:"face_detected"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublishMeasurementMessage carries a camera estimate from a stream session
// to the measurement consumer.
type PublishMeasurementMessage struct {
	PatientId    string    `json:"patient_id"`
	HeartRate    float64   `json:"heart_rate"`
	HRV          *float64  `json:"hrv"`
	QualityScore float64   `json:"quality_score"`
	MeasuredAt   time.Time `json:"measured_at"`
}

// StreamFrameResponse is sent back for every camera frame. Message carries a
// patient-facing hint when the frame could not be used.
type StreamFrameResponse struct {
	rppg.FrameResult
	Message string `json:"message,omitempty"`
}
