package entity

import "time"

type Patient struct {
	Id                string
	Name              string
	Age               int
	Conditions        []string
	BaselineHeartRate *float64
	BaselineHRV       *float64
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}
