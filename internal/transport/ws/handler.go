package ws

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// Handler handles WebSocket connections
type Handler struct {
	host     Host
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(host Host, logger *slog.Logger) *Handler {
	return &Handler{
		host: host,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// players join from other machines on the LAN
				return true
			},
		},
		logger: logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomCode := r.URL.Query().Get("roomCode")
	if roomCode == "" {
		http.Error(w, ErrMissingRoomCode.Error(), http.StatusBadRequest)
		return
	}
	if !strings.EqualFold(roomCode, h.host.RoomCode()) {
		http.Error(w, ErrRoomNotFound.Error(), http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	peer := NewPeer(conn, h.host, h.logger)
	h.logger.Info("websocket connected", "transportID", peer.ID(), "remote", r.RemoteAddr)

	h.host.Connect(peer)
	peer.Run()
}
