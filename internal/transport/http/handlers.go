package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"ghostwriter/internal/app"
)

const qrSize = 320

// Response is a standard API response
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RoomResponse is the response for room info
type RoomResponse struct {
	app.RoomInfo
	InviteLink string `json:"inviteLink"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string `json:"status"`
}

// handleRoom handles GET /api/room
func (s *Server) handleRoom(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	info, err := s.host.Info()
	if err != nil {
		s.hostError(w, err)
		return
	}

	s.sendSuccess(w, &RoomResponse{
		RoomInfo:   info,
		InviteLink: s.inviteLink(r, info.RoomCode),
	})
}

// handleQR handles GET /api/room/qr.png
func (s *Server) handleQR(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	png, err := qrcode.Encode(s.inviteLink(r, s.host.RoomCode()), qrcode.Medium, qrSize)
	if err != nil {
		s.logger.Error("qr generation failed", "error", err)
		s.sendError(w, http.StatusInternalServerError, "QR_FAILED", "QR generation failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// handleHealth handles GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, err := s.host.Info(); err != nil {
		s.hostError(w, err)
		return
	}
	s.sendSuccess(w, &HealthResponse{Status: "ok"})
}

// inviteLink is the websocket address a player dials to join the room
func (s *Server) inviteLink(r *http.Request, roomCode string) string {
	u := url.URL{Scheme: "ws", Host: r.Host}
	if base := s.config.Server.PublicURL; base != "" {
		if parsed, err := url.Parse(base); err == nil && parsed.Host != "" {
			u.Host = parsed.Host
			if parsed.Scheme == "https" {
				u.Scheme = "wss"
			}
			u.Path = strings.TrimSuffix(parsed.Path, "/")
		}
	} else if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		u.Scheme = "wss"
	}
	u.Path += "/ws"
	u.RawQuery = url.Values{"roomCode": {roomCode}}.Encode()
	return u.String()
}

func (s *Server) hostError(w http.ResponseWriter, err error) {
	if errors.Is(err, app.ErrHostClosed) {
		s.sendError(w, http.StatusServiceUnavailable, "LOBBY_CLOSED", "The lobby has closed")
		return
	}
	s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}

// sendSuccess sends a successful JSON response
func (s *Server) sendSuccess(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&Response{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error JSON response
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}
