package dto

import (
	"time"

	"pulse-companion-be/pkg/analytics"
)

type StatsResponse struct {
	PatientId string           `json:"patient_id"`
	Days      int              `json:"days"`
	Stats     *analytics.Stats `json:"stats"`
}

type TrendsResponse struct {
	PatientId string `json:"patient_id"`
	Days      int    `json:"days"`
	*analytics.TrendReport
}

type AlertsResponse struct {
	PatientId  string            `json:"patient_id"`
	Status     string            `json:"status,omitempty"`
	RecordedAt *time.Time        `json:"timestamp,omitempty"`
	CurrentHR  *float64          `json:"current_hr,omitempty"`
	CurrentHRV *float64          `json:"current_hrv,omitempty"`
	Alerts     []analytics.Alert `json:"alerts"`
	AlertCount int               `json:"alert_count"`
}

type BaselineComparisonResponse struct {
	PatientId string `json:"patient_id"`
	*analytics.Comparison
}

type RiskResponse struct {
	PatientId        string `json:"patient_id"`
	ReadingsAnalyzed int    `json:"readings_analyzed"`
	analytics.RiskAssessment
	PatientExplanation string `json:"patient_explanation"`
}
