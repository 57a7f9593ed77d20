package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	ws "github.com/postdrop/postdrop-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades HTTP connections to the activity stream.
type WebSocketHandler struct {
	hub *ws.Hub
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins (consider tightening this in production).
		return true
	},
}

// Serve handles the WebSocket connection request.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn)
	h.hub.Register <- client

	go client.WritePump()
	go func() {
		client.ReadPump()
		h.hub.Unregister <- client
	}()
}
