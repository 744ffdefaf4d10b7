package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"pulse-companion-be/internal/pkg/logger"
	pkgEvents "pulse-companion-be/pkg/events"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// AllPatients is the subscription key of care dashboards that watch every patient.
	AllPatients = "*"

	clusterChannel = "cluster_events"
)

type Hub struct {
	// Registered clients: patient id (or AllPatients) -> clients
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client
	// instance tags relayed messages so the sender skips its own echo
	instance string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		instance:   uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.PatientID] = append(h.clients[client.PatientID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"patient_id": client.PatientID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.PatientID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.PatientID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.PatientID]) == 0 {
					delete(h.clients, client.PatientID)
				}
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"patient_id": client.PatientID})
		}
	}
}

// SendEvent delivers an event to clients watching the event's patient and to
// dashboards watching everyone, then relays it to the other instances.
func (h *Hub) SendEvent(event pkgEvents.Event) {
	patientID, _ := event.Payload()["patient_id"].(string)

	data, err := json.Marshal(map[string]interface{}{
		"type":        event.EventType(),
		"occurred_at": event.Timestamp(),
		"data":        event.Payload(),
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode event", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliver(patientID, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterMessage{
			Origin:    h.instance,
			PatientID: patientID,
			Message:   data,
		})
		if err := h.rdb.Publish(context.Background(), clusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to relay event", map[string]interface{}{"error": err.Error()})
		}
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.clients {
		n += len(clients)
	}
	return n
}

func (h *Hub) deliver(patientID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	targets := h.clients[AllPatients]
	if patientID != "" && patientID != AllPatients {
		targets = append(targets[:len(targets):len(targets)], h.clients[patientID]...)
	}

	for _, client := range targets {
		select {
		case client.Send <- data:
		default:
			// A stalled client loses the message; its read pump unregisters it.
			h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"patient_id": client.PatientID})
		}
	}
}

type clusterMessage struct {
	Origin    string          `json:"origin"`
	PatientID string          `json:"patient_id"`
	Message   json.RawMessage `json:"message"`
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var payload clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if payload.Origin == h.instance {
				continue
			}
			h.deliver(payload.PatientID, payload.Message)
		}
	}
}
