package service

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"pulse-companion-be/internal/repository/specification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedService_SeedDemo(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps(t)
	svc := NewSeedService(d.factory, rand.New(rand.NewPCG(1, 2)), d.log)

	res, err := svc.SeedDemo(ctx)
	require.NoError(t, err)
	assert.Equal(t, DemoPatientId, res.PatientId)
	assert.Equal(t, 25, res.Normal)
	assert.Equal(t, 5, res.Declining)

	readings, err := d.store.VitalReadingRepository().FindAll(ctx,
		specification.ByPatientID{PatientID: DemoPatientId},
		specification.OrderBy{Field: "recorded_at", Desc: false},
	)
	require.NoError(t, err)
	require.Len(t, readings, 30)

	for _, r := range readings[:25] {
		assert.GreaterOrEqual(t, r.HeartRate, 64.0)
		assert.LessOrEqual(t, r.HeartRate, 72.0)
		assert.GreaterOrEqual(t, r.HRV, 41.0)
		assert.LessOrEqual(t, r.HRV, 49.0)
		assert.GreaterOrEqual(t, r.QualityScore, 0.85)
		assert.LessOrEqual(t, r.QualityScore, 0.95)
	}

	wantHR := []float64{68, 73, 78, 83, 89}
	wantHRV := []float64{45, 41, 37, 33, 28}
	for i, r := range readings[25:] {
		assert.Equal(t, wantHR[i], r.HeartRate, "day %d", i)
		assert.Equal(t, wantHRV[i], r.HRV, "day %d", i)
		assert.Equal(t, 0.88, r.QualityScore)
	}
}

func TestSeedService_SeedDemo_Replaces(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps(t)
	svc := NewSeedService(d.factory, nil, d.log)

	_, err := svc.SeedDemo(ctx)
	require.NoError(t, err)
	d.seedReading(t, DemoPatientId, time.Now(), 99, 10)

	_, err = svc.SeedDemo(ctx)
	require.NoError(t, err)

	count, err := d.store.VitalReadingRepository().Count(ctx, specification.ByPatientID{PatientID: DemoPatientId})
	require.NoError(t, err)
	assert.Equal(t, int64(30), count)

	p, err := d.store.PatientRepository().FindOne(ctx, specification.ByPatientKey{ID: DemoPatientId})
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, []string{"Heart Failure", "Type 2 Diabetes"}, p.Conditions)
}
