package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CheckinTurn is one patient message and the reply the cascade produced for it.
type CheckinTurn struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PatientId      string         `gorm:"type:varchar(64);not null;index"`
	Prompt         string         `gorm:"type:text"`
	Reply          string         `gorm:"type:text"`
	Intent         string         `gorm:"type:varchar(32)"`
	Provider       string         `gorm:"type:varchar(64)"`
	LatencyMs      int64          `gorm:"not null"`
	FallbackUsed   bool           `gorm:"not null"`
	FallbackReason string         `gorm:"type:varchar(64)"`
	Sentiment      string         `gorm:"type:varchar(16)"`
	ShouldAlert    bool           `gorm:"index"`
	Metadata       datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"autoCreateTime;index"`
}

func (CheckinTurn) TableName() string {
	return "checkin_turns"
}
