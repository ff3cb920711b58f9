package socket

import (
	"net/http"
	"strings"

	socketio "github.com/googollee/go-socket.io"

	"platewise_server/logger"
	"platewise_server/models"
)

const (
	namespace               = "/"
	EventJoin               = "join"
	EventLeave              = "leave"
	EventPreferencesUpdated = "preferencesUpdated"
)

// Hub pushes profile updates to clients that joined their user's room
type Hub struct {
	Server *socketio.Server
	Log    *logger.Logger
}

func userRoom(userID string) string {
	return "user:" + userID
}

// NewSocketServer initializes a Socket.IO server with the join/leave handlers
func NewSocketServer(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.NewNop()
	}
	server := socketio.NewServer(nil)
	hub := &Hub{Server: server, Log: log}

	server.OnConnect(namespace, func(c socketio.Conn) error {
		log.Debug("Socket connected", "socket_id", c.ID())
		return nil
	})

	server.OnEvent(namespace, EventJoin, func(c socketio.Conn, userID string) {
		userID = strings.TrimSpace(userID)
		if userID == "" {
			log.Warn("Invalid user_id in join request", "socket_id", c.ID())
			return
		}
		c.Join(userRoom(userID))
		log.Debug("Socket joined user room", "socket_id", c.ID(), "user_id", userID)
	})

	server.OnEvent(namespace, EventLeave, func(c socketio.Conn, userID string) {
		c.Leave(userRoom(strings.TrimSpace(userID)))
	})

	server.OnError(namespace, func(c socketio.Conn, err error) {
		log.Warn("Socket error", "error", err)
	})

	server.OnDisconnect(namespace, func(c socketio.Conn, reason string) {
		log.Debug("Socket disconnected", "socket_id", c.ID(), "reason", reason)
	})

	return hub
}

// NotifyProfileUpdated broadcasts the new profile to the user's room
func (h *Hub) NotifyProfileUpdated(profile models.UserProfile) {
	h.Server.BroadcastToRoom(namespace, userRoom(profile.UserID), EventPreferencesUpdated, profile)
}

// Start runs the engine.io loop; it returns immediately
func (h *Hub) Start() {
	go func() {
		if err := h.Server.Serve(); err != nil {
			h.Log.Error("Socket server stopped", "error", err)
		}
	}()
}

func (h *Hub) Close() error {
	return h.Server.Close()
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Server.ServeHTTP(w, r)
}
