package implementation

import (
	"context"
	"regexp"
	"testing"
	"time"

	"pulse-companion-be/internal/repository/specification"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

var vitalColumns = []string{"id", "patient_id", "recorded_at", "heart_rate", "hrv", "quality_score", "source", "created_at"}

func TestVitalReadingRepository_FindAllWindowAscending(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVitalReadingRepository(db)

	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	first, second := uuid.New(), uuid.New()
	rows := sqlmock.NewRows(vitalColumns).
		AddRow(first.String(), "maria_001", since.Add(8*time.Hour), 68.0, 45.0, 0.9, "seed", since).
		AddRow(second.String(), "maria_001", since.Add(32*time.Hour), 73.0, 40.5, 0.88, "camera", since)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "vital_readings" WHERE patient_id = $1 AND recorded_at >= $2 ORDER BY recorded_at ASC`)).
		WithArgs("maria_001", since).
		WillReturnRows(rows)

	got, err := repo.FindAll(context.Background(),
		specification.ByPatientID{PatientID: "maria_001"},
		specification.RecordedSince{Since: since},
		specification.OrderBy{Field: "recorded_at"},
	)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, first, got[0].Id)
	assert.True(t, got[0].RecordedAt.Before(got[1].RecordedAt))
	assert.Equal(t, 73.0, got[1].HeartRate)
	assert.Equal(t, 40.5, got[1].HRV)
	assert.Equal(t, 0.88, got[1].QualityScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVitalReadingRepository_FindOneNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVitalReadingRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "vital_readings" WHERE patient_id = \$1 ORDER BY recorded_at DESC`).
		WillReturnRows(sqlmock.NewRows(vitalColumns))

	got, err := repo.FindOne(context.Background(),
		specification.ByPatientID{PatientID: "nobody"},
		specification.OrderBy{Field: "recorded_at", Desc: true},
	)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVitalReadingRepository_Count(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVitalReadingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "vital_readings" WHERE patient_id = $1`)).
		WithArgs("maria_001").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(30))

	count, err := repo.Count(context.Background(), specification.ByPatientID{PatientID: "maria_001"})
	require.NoError(t, err)
	assert.Equal(t, int64(30), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVitalReadingRepository_DeleteByPatientId(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVitalReadingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "vital_readings" WHERE patient_id = $1`)).
		WithArgs("maria_001").
		WillReturnResult(sqlmock.NewResult(0, 30))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteByPatientId(context.Background(), "maria_001"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVitalReadingRepository_CreateBatchEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVitalReadingRepository(db)

	require.NoError(t, repo.CreateBatch(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
