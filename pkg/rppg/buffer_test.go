package rppg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalBufferCapacityAndOrder(t *testing.T) {
	buf := NewSignalBuffer(10, 2)
	require.Equal(t, 20, buf.Cap())

	start := time.Unix(1_700_000_000, 0)
	for i := 0; i < 25; i++ {
		require.NoError(t, buf.Append(float64(i), start.Add(time.Duration(i)*100*time.Millisecond)))
	}
	assert.Equal(t, 20, buf.Len())

	values := buf.Values()
	assert.Equal(t, 5.0, values[0])
	assert.Equal(t, 24.0, values[19])

	err := buf.Append(99, start)
	assert.ErrorIs(t, err, ErrOutOfOrder)
	assert.Equal(t, 20, buf.Len())
}

func TestSignalBufferActualRate(t *testing.T) {
	buf := NewSignalBuffer(30, DefaultWindowSeconds)
	assert.Equal(t, 30.0, buf.ActualRate(30))

	start := time.Unix(0, 0)
	// 25 fps delivered although the camera claims 30
	for i := 0; i < 101; i++ {
		require.NoError(t, buf.Append(0, start.Add(time.Duration(i)*40*time.Millisecond)))
	}
	assert.Equal(t, 4*time.Second, buf.Span())
	assert.InDelta(t, 25.0, buf.ActualRate(30), 1e-9)
	assert.InDelta(t, 4.04, buf.Covered(30).Seconds(), 1e-6)

	same := NewSignalBuffer(30, 1)
	require.NoError(t, same.Append(0, start))
	require.NoError(t, same.Append(0, start))
	assert.Equal(t, 30.0, same.ActualRate(30))
}
