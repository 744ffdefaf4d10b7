package cache

import (
	"context"
	"testing"
	"time"

	"pulse-companion-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveKey(t *testing.T) {
	assert.Equal(t, "vitals:live:maria_001", liveKey("maria_001"))
}

func TestMemoryLiveVitalsCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryLiveVitalsCache(50 * time.Millisecond)

	hr := 72.0
	require.NoError(t, c.Set(ctx, &entity.LiveVitals{PatientId: "maria_001", HeartRate: &hr, Status: "measuring"}))

	got, err := c.Get(ctx, "maria_001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 72.0, *got.HeartRate)

	missing, err := c.Get(ctx, "john_002")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.Eventually(t, func() bool {
		got, _ := c.Get(ctx, "maria_001")
		return got == nil
	}, time.Second, 10*time.Millisecond, "entry expires after the TTL")
}
