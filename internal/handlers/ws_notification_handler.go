package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	jwtutil "github.com/unidesk/uniadmin/pkg/jwt"
	"github.com/unidesk/uniadmin/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Subscriber hands out live notification streams per user.
type Subscriber interface {
	Subscribe(ctx context.Context, userID string) (<-chan []byte, func(), error)
}

// NotificationStreamHandler pushes new notifications over a websocket.
// Browsers cannot set headers on the upgrade, so the token comes in the query.
type NotificationStreamHandler struct {
	Subscriber     Subscriber
	JWTSecret      string
	AllowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewNotificationStreamHandler accepts upgrades from the same origins as
// CORS. "*" allows any origin.
func NewNotificationStreamHandler(sub Subscriber, jwtSecret string, allowedOrigins []string) *NotificationStreamHandler {
	h := &NotificationStreamHandler{
		Subscriber:     sub,
		JWTSecret:      jwtSecret,
		AllowedOrigins: allowedOrigins,
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

// checkOrigin lets through requests without an Origin header, which
// browsers always send, so only non-browser clients skip the list.
func (h *NotificationStreamHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// GET /ws/notifications?token=
func (h *NotificationStreamHandler) StreamHandler(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		logger.FromContext(r.Context()).WithField("origin", r.Header.Get("Origin")).Warn("WebSocket origin rejected")
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "origin not allowed", Code: "UNAUTHORIZED"})
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing token", Code: "UNAUTHENTICATED"})
		return
	}
	claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
	if err != nil {
		logger.Log.WithError(err).Warn("WebSocket auth failed")
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid token", Code: "UNAUTHENTICATED"})
		return
	}
	userID := claims.UserID

	// Subscribe before upgrading so nothing published after the handshake is missed.
	stream, cancel, err := h.Subscriber.Subscribe(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	log := logger.Log.WithField("user_id", userID)
	log.Info("WebSocket connected")
	defer log.Info("WebSocket disconnected")

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case payload, ok := <-stream:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.WithError(err).Warn("WebSocket write failed")
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
