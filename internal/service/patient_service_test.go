package service

import (
	"context"
	"testing"
	"time"

	"pulse-companion-be/internal/dto"
	"pulse-companion-be/internal/entity"
	"pulse-companion-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatientService_CreateShowUpdate(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps(t)
	svc := NewPatientService(d.factory, d.conversations, d.live, d.log)

	created, err := svc.Create(ctx, &dto.CreatePatientRequest{Id: "john_002", Name: "John Smith", Age: 72})
	require.NoError(t, err)
	assert.Equal(t, []string{}, created.Conditions)
	assert.Nil(t, created.Baseline.HeartRate)

	_, err = svc.Create(ctx, &dto.CreatePatientRequest{Id: "john_002", Name: "Someone Else"})
	assert.ErrorIs(t, err, ErrPatientExists)

	updated, err := svc.Update(ctx, &dto.UpdatePatientRequest{Id: "john_002", BaselineHeartRate: ptr(72.0), Conditions: []string{"diabetes"}})
	require.NoError(t, err)
	assert.Equal(t, "John Smith", updated.Name)
	assert.Equal(t, 72.0, *updated.Baseline.HeartRate)

	shown, err := svc.Show(ctx, "john_002")
	require.NoError(t, err)
	assert.Equal(t, []string{"diabetes"}, shown.Conditions)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)

	_, err = svc.Show(ctx, "ghost")
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestPatientService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps(t)
	d.seedPatient(t)
	d.seedReading(t, "maria_001", time.Now().Add(-time.Hour), 70, 44)
	d.seedReading(t, "maria_001", time.Now(), 71, 43)
	d.conversations.Get("maria_001").Append(llm.Message{Role: llm.RoleUser, Content: "hello"})
	require.NoError(t, d.live.Set(ctx, &entity.LiveVitals{PatientId: "maria_001"}))

	svc := NewPatientService(d.factory, d.conversations, d.live, d.log)
	res, err := svc.Delete(ctx, "maria_001")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.VitalsDeleted)

	_, err = svc.Show(ctx, "maria_001")
	assert.ErrorIs(t, err, ErrPatientNotFound)

	count, err := d.store.VitalReadingRepository().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, d.conversations.Get("maria_001").Messages())

	live, err := d.live.Get(ctx, "maria_001")
	require.NoError(t, err)
	assert.Nil(t, live)
}
