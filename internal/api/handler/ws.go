package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/sharpline/sharpline-alerts/internal/api/respond"
	"github.com/sharpline/sharpline-alerts/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS middleware in front of
	// the router; the upgrader accepts what got through it.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// AlertStream upgrades the connection and streams the user's new alerts.
// @Summary WebSocket alert stream
// @Description Upgrades to WebSocket and pushes each newly derived alert for the user as a JSON frame.
// @Tags alerts
// @Param userID path string true "User ID"
// @Success 101 {string} string "Switching Protocols"
// @Router /ws/alerts/{userID} [get]
func (h *Handler) AlertStream(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "userID is required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		slog.Warn("ws upgrade failed", "user_id", userID, "error", err)
		return
	}

	client := ws.NewClient(userID, conn, h.hub, slog.Default())
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
