package entity

import (
	"time"

	"github.com/google/uuid"
)

type CheckinTurn struct {
	Id             uuid.UUID
	PatientId      string
	Prompt         string
	Reply          string
	Intent         string
	Provider       string
	LatencyMs      int64
	FallbackUsed   bool
	FallbackReason string
	Sentiment      string
	ShouldAlert    bool
	Metadata       map[string]any
	CreatedAt      time.Time
}
