package dto

import "time"

type CreatePatientRequest struct {
	Id                string   `json:"patient_id" validate:"required,max=64"`
	Name              string   `json:"name" validate:"required,max=255"`
	Age               int      `json:"age" validate:"gte=0,lte=130"`
	Conditions        []string `json:"conditions"`
	BaselineHeartRate *float64 `json:"baseline_heart_rate" validate:"omitempty,gt=0,lte=250"`
	BaselineHRV       *float64 `json:"baseline_hrv" validate:"omitempty,gt=0,lte=500"`
}

// UpdatePatientRequest only changes the fields that are present.
type UpdatePatientRequest struct {
	Id                string
	Name              *string  `json:"name" validate:"omitempty,min=1,max=255"`
	Age               *int     `json:"age" validate:"omitempty,gte=0,lte=130"`
	Conditions        []string `json:"conditions"`
	BaselineHeartRate *float64 `json:"baseline_heart_rate" validate:"omitempty,gt=0,lte=250"`
	BaselineHRV       *float64 `json:"baseline_hrv" validate:"omitempty,gt=0,lte=500"`
}

type PatientBaseline struct {
	HeartRate *float64 `json:"heart_rate"`
	HRV       *float64 `json:"hrv"`
}

type PatientResponse struct {
	Id         string          `json:"patient_id"`
	Name       string          `json:"name"`
	Age        int             `json:"age"`
	Conditions []string        `json:"conditions"`
	Baseline   PatientBaseline `json:"baseline"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  *time.Time      `json:"updated_at"`
}

type ListPatientsResponse struct {
	Patients []*PatientResponse `json:"patients"`
	Count    int                `json:"count"`
}

type DeletePatientResponse struct {
	Id            string `json:"patient_id"`
	VitalsDeleted int64  `json:"vitals_deleted"`
}
