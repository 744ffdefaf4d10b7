package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"pulse-companion-be/internal/pkg/logger"
	pkgEvents "pulse-companion-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(nil, logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h
}

func attach(h *Hub, patientID string) *Client {
	c := &Client{Hub: h, PatientID: patientID, Send: make(chan []byte, 4)}
	h.register <- c
	return c
}

func alert(patientID string) pkgEvents.Event {
	return pkgEvents.BaseEvent{
		Type:       pkgEvents.TypeVitalsAlert,
		Data:       map[string]interface{}{"patient_id": patientID, "severity": "critical"},
		OccurredAt: time.Now(),
	}
}

func receive(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case raw := <-c.Send:
		var msg map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return nil
	}
}

func TestHub_DeliversToPatientAndDashboards(t *testing.T) {
	h := startHub(t)
	maria := attach(h, "maria_001")
	other := attach(h, "john_002")
	dashboard := attach(h, AllPatients)
	require.Eventually(t, func() bool { return h.ClientCount() == 3 }, time.Second, 5*time.Millisecond)

	h.SendEvent(alert("maria_001"))

	msg := receive(t, maria)
	assert.Equal(t, pkgEvents.TypeVitalsAlert, msg["type"])
	assert.Equal(t, "maria_001", msg["data"].(map[string]interface{})["patient_id"])
	receive(t, dashboard)
	assert.Empty(t, other.Send)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	h := startHub(t)
	c := attach(h, "maria_001")
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	h.unregister <- c
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-c.Send
	assert.False(t, open)
}

func TestHub_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	h := startHub(t)
	c := attach(h, "maria_001")
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	for i := 0; i < cap(c.Send)+3; i++ {
		h.SendEvent(alert("maria_001"))
	}
	assert.Len(t, c.Send, cap(c.Send))
}
