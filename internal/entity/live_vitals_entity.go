package entity

import "time"

// LiveVitals is the latest estimate from an active camera session.
type LiveVitals struct {
	PatientId    string    `json:"patient_id"`
	HeartRate    *float64  `json:"heart_rate"`
	HRV          *float64  `json:"hrv"`
	Confidence   int       `json:"confidence"`
	Status       string    `json:"status"`
	FaceDetected bool      `json:"face_detected"`
	UpdatedAt    time.Time `json:"updated_at"`
}
