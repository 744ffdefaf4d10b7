package model

import (
	"time"

	"github.com/google/uuid"
)

type VitalReading struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PatientId    string    `gorm:"type:varchar(64);not null;index:idx_vitals_patient_time,priority:1"`
	RecordedAt   time.Time `gorm:"not null;index:idx_vitals_patient_time,priority:2"`
	HeartRate    float64   `gorm:"not null"`
	HRV          float64   `gorm:"column:hrv;not null"`
	QualityScore float64   `gorm:"not null"`
	Source       string    `gorm:"type:varchar(20)"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (VitalReading) TableName() string {
	return "vital_readings"
}
