package events

import "github.com/fathima-sithara/chat-backend/internal/domain"

// Subscriber receives message lifecycle outcomes. Notification happens
// synchronously on the goroutine that performed the triggering action.
type Subscriber interface {
	OnMessageCreated(m *domain.Message)
	OnMessageTombstoned(tomb *domain.Message)
}

// Bus fans store outcomes out to its subscribers in subscription order.
// Subscribe is only called during startup wiring, so no locking is needed.
type Bus struct {
	subs []Subscriber
}

func NewBus() *Bus { return &Bus{} }

func (b *Bus) Subscribe(s Subscriber) {
	b.subs = append(b.subs, s)
}

func (b *Bus) MessageCreated(m *domain.Message) {
	for _, s := range b.subs {
		s.OnMessageCreated(m)
	}
}

func (b *Bus) MessageTombstoned(tomb *domain.Message) {
	for _, s := range b.subs {
		s.OnMessageTombstoned(tomb)
	}
}
