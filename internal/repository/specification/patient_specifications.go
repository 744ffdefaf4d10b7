package specification

import "gorm.io/gorm"

// ByPatientKey matches the patient's own id, which is a caller-chosen string.
type ByPatientKey struct {
	ID string
}

func (s ByPatientKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}
