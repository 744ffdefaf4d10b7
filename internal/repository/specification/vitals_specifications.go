package specification

import (
	"time"

	"gorm.io/gorm"
)

type ByPatientID struct {
	PatientID string
}

func (s ByPatientID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("patient_id = ?", s.PatientID)
}

// RecordedSince keeps readings taken at or after Since.
type RecordedSince struct {
	Since time.Time
}

func (s RecordedSince) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("recorded_at >= ?", s.Since)
}

// AlertsOnly keeps check-in turns that asked for a clinician.
type AlertsOnly struct{}

func (s AlertsOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("should_alert = ?", true)
}
