package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs registers the connection with the hub and blocks until it closes.
func ServeWs(hub *Hub, c *websocket.Conn, patientID string) {
	if patientID == "" {
		patientID = AllPatients
	}
	client := &Client{Hub: hub, Conn: c, PatientID: patientID, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
