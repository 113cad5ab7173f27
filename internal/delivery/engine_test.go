package delivery

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/fathima-sithara/chat-backend/internal/domain"
	"github.com/fathima-sithara/chat-backend/internal/presence"
)

type captureHandle struct {
	pushed []Event
	err    error
}

func (h *captureHandle) Push(v any) error {
	if h.err != nil {
		return h.err
	}
	h.pushed = append(h.pushed, v.(Event))
	return nil
}

type fakeRegistry struct {
	handles map[string]presence.Handle
}

func (r *fakeRegistry) Register(userID string, h presence.Handle) { r.handles[userID] = h }
func (r *fakeRegistry) Unregister(userID string)                  { delete(r.handles, userID) }
func (r *fakeRegistry) Lookup(userID string) presence.Handle {
	return r.handles[userID]
}

func newEngine(reg presence.Registry) *Engine {
	return NewEngine(reg, zap.NewNop().Sugar())
}

func TestCreatedPushesToOnlineReceiver(t *testing.T) {
	bob := &captureHandle{}
	reg := &fakeRegistry{handles: map[string]presence.Handle{"bob": bob}}
	e := newEngine(reg)

	m := &domain.Message{ID: "m1", SenderID: "alice", ReceiverID: "bob", Text: "hi"}
	e.OnMessageCreated(m)

	if len(bob.pushed) != 1 {
		t.Fatalf("got %d pushes, want exactly 1", len(bob.pushed))
	}
	ev := bob.pushed[0]
	if ev.Event != EventNewMessage {
		t.Fatalf("event %q, want %q", ev.Event, EventNewMessage)
	}
	if ev.Payload.(*domain.Message) != m {
		t.Fatalf("payload is not the full message")
	}
}

func TestCreatedOfflineReceiverDropped(t *testing.T) {
	alice := &captureHandle{}
	reg := &fakeRegistry{handles: map[string]presence.Handle{"alice": alice}}
	e := newEngine(reg)

	e.OnMessageCreated(&domain.Message{ID: "m1", SenderID: "alice", ReceiverID: "bob"})

	// nothing pushed anywhere: the sender is not notified of their own send
	if len(alice.pushed) != 0 {
		t.Fatalf("sender received %d pushes", len(alice.pushed))
	}
}

func TestTombstonedPushesToBothParticipants(t *testing.T) {
	alice := &captureHandle{}
	bob := &captureHandle{}
	reg := &fakeRegistry{handles: map[string]presence.Handle{"alice": alice, "bob": bob}}
	e := newEngine(reg)

	tomb := &domain.Message{
		ID: "t1", SenderID: "alice", ReceiverID: "bob",
		Tombstone: true, OriginalMessageID: "m1",
	}
	e.OnMessageTombstoned(tomb)

	for name, h := range map[string]*captureHandle{"alice": alice, "bob": bob} {
		if len(h.pushed) != 1 {
			t.Fatalf("%s got %d pushes, want 1", name, len(h.pushed))
		}
		ev := h.pushed[0]
		if ev.Event != EventMessageDeletedForEveryone {
			t.Fatalf("%s got event %q", name, ev.Event)
		}
		payload := ev.Payload.(map[string]any)
		if payload["messageId"] != "m1" {
			t.Fatalf("payload messageId = %v, want original id", payload["messageId"])
		}
		if payload["tombstone"].(*domain.Message) != tomb {
			t.Fatalf("payload does not carry the tombstone")
		}
	}
}

func TestTombstonedPartialPresence(t *testing.T) {
	bob := &captureHandle{}
	reg := &fakeRegistry{handles: map[string]presence.Handle{"bob": bob}}
	e := newEngine(reg)

	e.OnMessageTombstoned(&domain.Message{
		ID: "t1", SenderID: "alice", ReceiverID: "bob",
		Tombstone: true, OriginalMessageID: "m1",
	})
	if len(bob.pushed) != 1 {
		t.Fatalf("online participant got %d pushes, want 1", len(bob.pushed))
	}
}

func TestPushErrorDroppedSilently(t *testing.T) {
	bob := &captureHandle{err: errors.New("send buffer full")}
	reg := &fakeRegistry{handles: map[string]presence.Handle{"bob": bob}}
	e := newEngine(reg)

	// must not panic or retry
	e.OnMessageCreated(&domain.Message{ID: "m1", SenderID: "alice", ReceiverID: "bob"})
	if len(bob.pushed) != 0 {
		t.Fatalf("failed push still recorded")
	}
}
