package domain

import "time"

type MediaKind string

const (
	KindImage MediaKind = "image"
	KindVoice MediaKind = "voice"
	KindVideo MediaKind = "video"
)

// MediaRef couples a fetchable URL with the storage key needed to delete
// the object later.
type MediaRef struct {
	Kind MediaKind
	URL  string
	Key  string
}

// Message is a pairwise chat message. A live message carries payload; a
// tombstone carries none and points at the id of the message it replaced.
type Message struct {
	ID         string `bson:"_id" json:"id"`
	SenderID   string `bson:"sender_id" json:"senderId"`
	ReceiverID string `bson:"receiver_id" json:"receiverId"`

	Text     string `bson:"text,omitempty" json:"text,omitempty"`
	Image    string `bson:"image,omitempty" json:"image,omitempty"`
	ImageKey string `bson:"image_key,omitempty" json:"-"`
	Voice    string `bson:"voice,omitempty" json:"voice,omitempty"`
	VoiceKey string `bson:"voice_key,omitempty" json:"-"`
	Video    string `bson:"video,omitempty" json:"video,omitempty"`
	VideoKey string `bson:"video_key,omitempty" json:"-"`

	Seen     bool     `bson:"seen" json:"seen"`
	ViewOnce bool     `bson:"view_once,omitempty" json:"viewOnce,omitempty"`
	ViewedBy []string `bson:"viewed_by,omitempty" json:"viewedBy,omitempty"`

	DeletedFor           []string   `bson:"deleted_for,omitempty" json:"-"`
	Tombstone            bool       `bson:"tombstone,omitempty" json:"isDeletedForEveryone,omitempty"`
	DeletedForEveryoneAt *time.Time `bson:"deleted_for_everyone_at,omitempty" json:"deletedForEveryoneAt,omitempty"`
	OriginalMessageID    string     `bson:"original_message_id,omitempty" json:"originalMessageId,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// Participant reports whether userID is one of the two conversation sides.
func (m *Message) Participant(userID string) bool {
	return userID == m.SenderID || userID == m.ReceiverID
}

// HasPayload reports whether the message carries at least one content field.
func (m *Message) HasPayload() bool {
	return m.Text != "" || m.Image != "" || m.Voice != "" || m.Video != ""
}

// ViewedByUser reports whether viewerID already consumed a view-once payload.
func (m *Message) ViewedByUser(viewerID string) bool {
	for _, id := range m.ViewedBy {
		if id == viewerID {
			return true
		}
	}
	return false
}

// MediaRefs returns the populated media references, used when the message is
// deleted for everyone and its objects must be removed from storage.
func (m *Message) MediaRefs() []MediaRef {
	var refs []MediaRef
	if m.Image != "" {
		refs = append(refs, MediaRef{Kind: KindImage, URL: m.Image, Key: m.ImageKey})
	}
	if m.Voice != "" {
		refs = append(refs, MediaRef{Kind: KindVoice, URL: m.Voice, Key: m.VoiceKey})
	}
	if m.Video != "" {
		refs = append(refs, MediaRef{Kind: KindVideo, URL: m.Video, Key: m.VideoKey})
	}
	return refs
}

// GuardViewOnce validates the Unviewed -> Viewed transition for viewerID
// without mutating anything. The store still repeats the already-viewed check
// atomically when it commits, so a racing second caller loses there.
func (m *Message) GuardViewOnce(viewerID string) error {
	if !m.Participant(viewerID) {
		return ErrForbidden
	}
	if !m.ViewOnce {
		return ErrNotViewOnce
	}
	if m.ViewedByUser(viewerID) {
		return ErrAlreadyViewed
	}
	return nil
}

// GuardDeleteForMe validates a per-user soft delete request.
func (m *Message) GuardDeleteForMe(requesterID string) error {
	if !m.Participant(requesterID) {
		return ErrForbidden
	}
	return nil
}

// GuardDeleteForEveryone validates a tombstone request. Only the sender may
// delete for everyone.
func (m *Message) GuardDeleteForEveryone(requesterID string) error {
	if m.SenderID != requesterID {
		return ErrForbidden
	}
	return nil
}

// NewTombstone builds the replacement entity for a message deleted for
// everyone. It keeps the conversation metadata (participants, creation time,
// so the entry stays at its original position) and drops every payload field.
// The tombstone starts with an empty deleted_for regardless of the original.
func NewTombstone(orig *Message, id string, at time.Time) *Message {
	return &Message{
		ID:                   id,
		SenderID:             orig.SenderID,
		ReceiverID:           orig.ReceiverID,
		Tombstone:            true,
		DeletedForEveryoneAt: &at,
		OriginalMessageID:    orig.ID,
		CreatedAt:            orig.CreatedAt,
	}
}
