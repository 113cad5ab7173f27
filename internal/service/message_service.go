package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fathima-sithara/chat-backend/internal/domain"
)

// MessageRepository is the persistence surface the service needs. Set-adds
// (AddViewer, AddDeletedFor) must be atomic against the store.
type MessageRepository interface {
	Insert(ctx context.Context, m *domain.Message) error
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	Conversation(ctx context.Context, userA, userB, viewerID string) ([]*domain.Message, error)
	MarkSeen(ctx context.Context, id string) error
	MarkConversationSeen(ctx context.Context, senderID, receiverID string) error
	AddViewer(ctx context.Context, id, viewerID string) error
	AddDeletedFor(ctx context.Context, id, userID string) error
	ReplaceWithTombstone(ctx context.Context, originalID string, tomb *domain.Message) error
	UnseenCounts(ctx context.Context, receiverID string) (map[string]int64, error)
}

type UserDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
	ListOthers(ctx context.Context, userID string) ([]*domain.User, error)
}

// MediaStore is the external attachment pipeline contract.
type MediaStore interface {
	Upload(ctx context.Context, kind domain.MediaKind, ownerID string, data []byte) (domain.MediaRef, error)
	Delete(ctx context.Context, kind domain.MediaKind, key string) error
}

// Publisher receives lifecycle outcomes after they commit.
type Publisher interface {
	MessageCreated(m *domain.Message)
	MessageTombstoned(tomb *domain.Message)
}

type MessageService struct {
	msgs  MessageRepository
	users UserDirectory
	media MediaStore
	bus   Publisher
	log   *zap.SugaredLogger
}

func NewMessageService(msgs MessageRepository, users UserDirectory, media MediaStore, bus Publisher, log *zap.SugaredLogger) *MessageService {
	return &MessageService{msgs: msgs, users: users, media: media, bus: bus, log: log}
}

type SendInput struct {
	Text     string
	Image    []byte
	Voice    []byte
	Video    []byte
	ViewOnce bool
}

// Send uploads any media first and only then persists the message: an upload
// failure aborts the whole send and nothing is stored. Already-uploaded
// objects from the failed attempt are removed best-effort.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID string, in SendInput) (*domain.Message, error) {
	if in.Text == "" && len(in.Image) == 0 && len(in.Voice) == 0 && len(in.Video) == 0 {
		return nil, domain.ErrEmptyMessage
	}

	ok, err := s.users.Exists(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}

	m := &domain.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       in.Text,
		ViewOnce:   in.ViewOnce,
		CreatedAt:  time.Now().UTC(),
	}

	var uploaded []domain.MediaRef
	for _, part := range []struct {
		kind domain.MediaKind
		data []byte
	}{
		{domain.KindImage, in.Image},
		{domain.KindVoice, in.Voice},
		{domain.KindVideo, in.Video},
	} {
		kind, data := part.kind, part.data
		if len(data) == 0 {
			continue
		}
		ref, err := s.media.Upload(ctx, kind, senderID, data)
		if err != nil {
			s.rollbackUploads(ctx, uploaded)
			return nil, err
		}
		uploaded = append(uploaded, ref)
		switch kind {
		case domain.KindImage:
			m.Image, m.ImageKey = ref.URL, ref.Key
		case domain.KindVoice:
			m.Voice, m.VoiceKey = ref.URL, ref.Key
		case domain.KindVideo:
			m.Video, m.VideoKey = ref.URL, ref.Key
		}
	}

	if err := s.msgs.Insert(ctx, m); err != nil {
		s.rollbackUploads(ctx, uploaded)
		return nil, err
	}

	s.bus.MessageCreated(m)
	return m, nil
}

func (s *MessageService) rollbackUploads(ctx context.Context, refs []domain.MediaRef) {
	for _, ref := range refs {
		if err := s.media.Delete(ctx, ref.Kind, ref.Key); err != nil {
			s.log.Warnw("orphaned media after failed send", "kind", ref.Kind, "key", ref.Key, "err", err)
		}
	}
}

// FetchConversation is a side-effecting read: every message directed at the
// viewer is marked seen before the conversation is read back, so the returned
// slice already reflects the flip. Entries the viewer soft-deleted are
// excluded; tombstones come back payloadless with the deleted-for-everyone
// marker set.
func (s *MessageService) FetchConversation(ctx context.Context, viewerID, peerID string) ([]*domain.Message, error) {
	if err := s.msgs.MarkConversationSeen(ctx, peerID, viewerID); err != nil {
		return nil, err
	}
	return s.msgs.Conversation(ctx, viewerID, peerID, viewerID)
}

func (s *MessageService) MarkSeen(ctx context.Context, id string) error {
	return s.msgs.MarkSeen(ctx, id)
}

// MarkViewOnceViewed consumes viewerID's single view slot. Either participant
// may view, sender included; each participant has an independent slot. The
// repository repeats the already-viewed check atomically, so under a race the
// second caller still gets ErrAlreadyViewed.
func (s *MessageService) MarkViewOnceViewed(ctx context.Context, id, viewerID string) error {
	m, err := s.msgs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := m.GuardViewOnce(viewerID); err != nil {
		return err
	}
	return s.msgs.AddViewer(ctx, id, viewerID)
}

// DeleteForMe hides the message from the requester only. Idempotent.
func (s *MessageService) DeleteForMe(ctx context.Context, id, requesterID string) error {
	m, err := s.msgs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := m.GuardDeleteForMe(requesterID); err != nil {
		return err
	}
	return s.msgs.AddDeletedFor(ctx, id, requesterID)
}

// DeleteForEveryone replaces the message with a tombstone. Media objects are
// deleted from storage first, best-effort: a storage failure is logged and
// the tombstone is still created. The multi-step sequence is not atomic;
// partial progress is never rolled back.
func (s *MessageService) DeleteForEveryone(ctx context.Context, id, requesterID string) (string, error) {
	m, err := s.msgs.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if err := m.GuardDeleteForEveryone(requesterID); err != nil {
		return "", err
	}

	for _, ref := range m.MediaRefs() {
		if err := s.media.Delete(ctx, ref.Kind, ref.Key); err != nil {
			s.log.Warnw("media delete failed during delete-for-everyone",
				"message", id, "kind", ref.Kind, "key", ref.Key, "err", err)
		}
	}

	tomb := domain.NewTombstone(m, uuid.NewString(), time.Now().UTC())
	if err := s.msgs.ReplaceWithTombstone(ctx, m.ID, tomb); err != nil {
		return "", err
	}

	s.bus.MessageTombstoned(tomb)
	return tomb.ID, nil
}

// Sidebar lists every other user plus the unseen-message count per sender.
// Counts are recomputed from the store on every call rather than maintained
// incrementally; a client that never re-fetches will not learn of new unseen
// messages.
func (s *MessageService) Sidebar(ctx context.Context, userID string) ([]*domain.User, map[string]int64, error) {
	users, err := s.users.ListOthers(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	counts, err := s.msgs.UnseenCounts(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return users, counts, nil
}
