package events

import (
	"testing"

	"github.com/fathima-sithara/chat-backend/internal/domain"
)

type recordingSub struct {
	name    string
	created []*domain.Message
	tombed  []*domain.Message
	order   *[]string
}

func (r *recordingSub) OnMessageCreated(m *domain.Message) {
	r.created = append(r.created, m)
	*r.order = append(*r.order, r.name)
}

func (r *recordingSub) OnMessageTombstoned(tomb *domain.Message) {
	r.tombed = append(r.tombed, tomb)
	*r.order = append(*r.order, r.name)
}

func TestBusFanOut(t *testing.T) {
	b := NewBus()
	var order []string
	s1 := &recordingSub{name: "first", order: &order}
	s2 := &recordingSub{name: "second", order: &order}
	b.Subscribe(s1)
	b.Subscribe(s2)

	m := &domain.Message{ID: "m1"}
	b.MessageCreated(m)
	if len(s1.created) != 1 || len(s2.created) != 1 {
		t.Fatalf("created not fanned out: %d/%d", len(s1.created), len(s2.created))
	}
	if s1.created[0] != m {
		t.Fatalf("subscriber got a different message")
	}

	tomb := &domain.Message{ID: "t1", Tombstone: true}
	b.MessageTombstoned(tomb)
	if len(s1.tombed) != 1 || len(s2.tombed) != 1 {
		t.Fatalf("tombstoned not fanned out")
	}

	want := []string{"first", "second", "first", "second"}
	for i, n := range want {
		if order[i] != n {
			t.Fatalf("delivery order %v, want %v", order, want)
		}
	}
}

func TestBusNoSubscribers(t *testing.T) {
	b := NewBus()
	b.MessageCreated(&domain.Message{ID: "m1"})
	b.MessageTombstoned(&domain.Message{ID: "t1"})
}
