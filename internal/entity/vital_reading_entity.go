package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	VitalSourceManual = "manual"
	VitalSourceCamera = "camera"
	VitalSourceSeed   = "seed"
)

type VitalReading struct {
	Id           uuid.UUID
	PatientId    string
	RecordedAt   time.Time
	HeartRate    float64
	HRV          float64
	QualityScore float64
	Source       string
	CreatedAt    time.Time
}
