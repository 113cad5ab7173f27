package delivery

import (
	"go.uber.org/zap"

	"github.com/fathima-sithara/chat-backend/internal/domain"
	"github.com/fathima-sithara/chat-backend/internal/presence"
)

const (
	EventNewMessage                = "newMessage"
	EventMessageDeletedForEveryone = "messageDeletedForEveryone"
)

// Event is the wire shape pushed to a live connection.
type Event struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Engine bridges store outcomes to live connections. It runs synchronously
// with the triggering action: no queue, no retry, no acknowledgment. When the
// counterpart has no registered handle the event is dropped and the change
// surfaces on their next sidebar or conversation fetch.
type Engine struct {
	registry presence.Registry
	log      *zap.SugaredLogger
}

func NewEngine(registry presence.Registry, log *zap.SugaredLogger) *Engine {
	return &Engine{registry: registry, log: log}
}

func (e *Engine) OnMessageCreated(m *domain.Message) {
	e.push(m.ReceiverID, Event{Event: EventNewMessage, Payload: m})
}

// OnMessageTombstoned notifies both participants so open conversation views
// can redact in place without re-fetching.
func (e *Engine) OnMessageTombstoned(tomb *domain.Message) {
	ev := Event{
		Event: EventMessageDeletedForEveryone,
		Payload: map[string]any{
			"messageId": tomb.OriginalMessageID,
			"tombstone": tomb,
		},
	}
	e.push(tomb.ReceiverID, ev)
	if tomb.SenderID != tomb.ReceiverID {
		e.push(tomb.SenderID, ev)
	}
}

func (e *Engine) push(userID string, ev Event) {
	h := e.registry.Lookup(userID)
	if h == nil {
		return
	}
	if err := h.Push(ev); err != nil {
		e.log.Debugw("push dropped", "user", userID, "event", ev.Event, "err", err)
	}
}
