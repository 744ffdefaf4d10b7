package memory

import (
	"pulse-companion-be/internal/entity"
	"pulse-companion-be/internal/repository/contract"
)

var (
	_ contract.PatientRepository      = (*PatientRepository)(nil)
	_ contract.VitalReadingRepository = (*VitalReadingRepository)(nil)
	_ contract.CheckinTurnRepository  = (*CheckinTurnRepository)(nil)
)

// Store holds the in-memory tables shared by every repository handed out for
// it. It is used when no database connection string is configured.
type Store struct {
	patients *table[entity.Patient]
	vitals   *table[entity.VitalReading]
	checkins *table[entity.CheckinTurn]
}

func NewStore() *Store {
	return &Store{
		patients: newTable[entity.Patient](func(p *entity.Patient) string { return p.Id }, patientColumn),
		vitals:   newTable[entity.VitalReading](func(v *entity.VitalReading) string { return v.Id.String() }, vitalColumn),
		checkins: newTable[entity.CheckinTurn](func(c *entity.CheckinTurn) string { return c.Id.String() }, checkinColumn),
	}
}

func (s *Store) PatientRepository() *PatientRepository {
	return &PatientRepository{table: s.patients}
}

func (s *Store) VitalReadingRepository() *VitalReadingRepository {
	return &VitalReadingRepository{table: s.vitals}
}

func (s *Store) CheckinTurnRepository() *CheckinTurnRepository {
	return &CheckinTurnRepository{table: s.checkins}
}

func patientColumn(p *entity.Patient, column string) (any, bool) {
	switch column {
	case "id":
		return p.Id, true
	case "name":
		return p.Name, true
	case "age":
		return p.Age, true
	case "created_at":
		return p.CreatedAt, true
	}
	return nil, false
}

func vitalColumn(v *entity.VitalReading, column string) (any, bool) {
	switch column {
	case "id":
		return v.Id, true
	case "patient_id":
		return v.PatientId, true
	case "recorded_at":
		return v.RecordedAt, true
	case "heart_rate":
		return v.HeartRate, true
	case "hrv":
		return v.HRV, true
	case "quality_score":
		return v.QualityScore, true
	case "source":
		return v.Source, true
	case "created_at":
		return v.CreatedAt, true
	}
	return nil, false
}

func checkinColumn(c *entity.CheckinTurn, column string) (any, bool) {
	switch column {
	case "id":
		return c.Id, true
	case "patient_id":
		return c.PatientId, true
	case "provider":
		return c.Provider, true
	case "sentiment":
		return c.Sentiment, true
	case "should_alert":
		return c.ShouldAlert, true
	case "created_at":
		return c.CreatedAt, true
	}
	return nil, false
}
