package ws

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/fathima-sithara/chat-backend/internal/presence"
)

// Server owns the connection lifecycle: open registers the user's handle in
// the presence registry, close unregisters it. At most one handle per user;
// a reconnect overwrites the previous registration.
type Server struct {
	registry presence.Registry
	status   *presence.StatusMirror
	log      *zap.SugaredLogger
}

func NewServer(registry presence.Registry, status *presence.StatusMirror, log *zap.SugaredLogger) *Server {
	return &Server{registry: registry, status: status, log: log}
}

// Handle is the websocket.New handler. Locals set by the auth middleware are
// preserved through the upgrade.
func (s *Server) Handle(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(string)
	if userID == "" {
		_ = conn.Close()
		return
	}

	c := NewClient(conn)
	s.registry.Register(userID, c)
	s.status.SetOnline(context.Background(), userID)
	s.log.Infow("connection opened", "user", userID)

	go c.writePump()
	c.readPump()

	s.registry.Unregister(userID)
	s.status.SetOffline(context.Background(), userID)
	c.Close()
	s.log.Infow("connection closed", "user", userID)
}
