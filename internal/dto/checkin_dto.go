package dto

import (
	"time"

	"github.com/google/uuid"
)

type ChatRequest struct {
	PatientId   string
	Message     string   `json:"message" validate:"required,max=4000"`
	Temperature *float64 `json:"temperature" validate:"omitempty,gte=0,lte=2"`
}

type ChatVitals struct {
	HeartRate    *float64 `json:"heart_rate"`
	HRV          *float64 `json:"hrv"`
	QualityScore *float64 `json:"quality_score"`
}

type ChatResponse struct {
	TurnId         uuid.UUID   `json:"turn_id"`
	Reply          string      `json:"reply"`
	Intent         string      `json:"intent"`
	Provider       string      `json:"provider"`
	LatencyMs      int64       `json:"latency_ms"`
	FallbackUsed   bool        `json:"fallback_used"`
	FallbackReason string      `json:"fallback_reason,omitempty"`
	Sentiment      string      `json:"sentiment,omitempty"`
	ShouldAlert    bool        `json:"should_alert"`
	Vitals         *ChatVitals `json:"vitals,omitempty"`
}

type CheckinTurnResponse struct {
	Id             uuid.UUID `json:"id"`
	Prompt         string    `json:"message"`
	Reply          string    `json:"reply"`
	Intent         string    `json:"intent"`
	Provider       string    `json:"provider"`
	FallbackUsed   bool      `json:"fallback_used"`
	FallbackReason string    `json:"fallback_reason,omitempty"`
	Sentiment      string    `json:"sentiment,omitempty"`
	ShouldAlert    bool      `json:"should_alert"`
	CreatedAt      time.Time `json:"created_at"`
}

type CheckinHistoryQuery struct {
	Limit      int  `query:"limit" validate:"gte=0"`
	AlertsOnly bool `query:"alerts_only"`
}

type CheckinHistoryResponse struct {
	PatientId string                 `json:"patient_id"`
	Turns     []*CheckinTurnResponse `json:"turns"`
	Count     int                    `json:"count"`
}

type GreetingResponse struct {
	PatientId  string `json:"patient_id"`
	Greeting   string `json:"greeting"`
	Icebreaker string `json:"icebreaker"`
}
