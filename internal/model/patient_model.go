package model

import (
	"time"

	"gorm.io/datatypes"
)

type Patient struct {
	Id                string                      `gorm:"type:varchar(64);primaryKey"`
	Name              string                      `gorm:"type:varchar(255);not null"`
	Age               int                         `gorm:"not null"`
	Conditions        datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	BaselineHeartRate *float64                    `gorm:"column:baseline_heart_rate"`
	BaselineHRV       *float64                    `gorm:"column:baseline_hrv"`
	CreatedAt         time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt         time.Time                   `gorm:"autoUpdateTime"`
}

func (Patient) TableName() string {
	return "patients"
}
