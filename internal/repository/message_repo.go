package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fathima-sithara/chat-backend/internal/domain"
)

// MessageRepository owns the messages collection. Set-valued fields
// (viewed_by, deleted_for) are only ever mutated through $addToSet so
// concurrent writers cannot lose updates.
type MessageRepository struct {
	coll *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	coll := db.Collection("messages")
	_, _ = coll.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "sender_id", Value: 1}, {Key: "receiver_id", Value: 1}, {Key: "created_at", Value: 1}},
		Options: options.Index().SetName("pair_created_idx"),
	})
	return &MessageRepository{coll: coll}
}

func (r *MessageRepository) Insert(ctx context.Context, m *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.coll.InsertOne(ctx, m)
	return err
}

func (r *MessageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var m domain.Message
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Conversation returns all messages between userA and userB in creation
// order, skipping entries the viewer soft-deleted.
func (r *MessageRepository) Conversation(ctx context.Context, userA, userB, viewerID string) ([]*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"$or": []bson.M{
			{"sender_id": userA, "receiver_id": userB},
			{"sender_id": userB, "receiver_id": userA},
		},
		"deleted_for": bson.M{"$ne": viewerID},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []*domain.Message{}
	for cur.Next(ctx) {
		var m domain.Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, cur.Err()
}

func (r *MessageRepository) MarkSeen(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"seen": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkConversationSeen flips every unseen live message from senderID to
// receiverID. Called as the side effect of a conversation fetch.
func (r *MessageRepository) MarkConversationSeen(ctx context.Context, senderID, receiverID string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"sender_id": senderID, "receiver_id": receiverID, "seen": false, "tombstone": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{"seen": true}},
	)
	return err
}

// AddViewer commits the single view slot for viewerID. The filter repeats
// the view-once and not-yet-viewed conditions so that of two racing callers
// exactly one matches; the loser is classified from the current document.
func (r *MessageRepository) AddViewer(ctx context.Context, id, viewerID string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "view_once": true, "viewed_by": bson.M{"$ne": viewerID}},
		bson.M{"$addToSet": bson.M{"viewed_by": viewerID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	m, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !m.ViewOnce {
		return domain.ErrNotViewOnce
	}
	return domain.ErrAlreadyViewed
}

// AddDeletedFor records a per-user soft delete. Calling twice is a no-op.
func (r *MessageRepository) AddDeletedFor(ctx context.Context, id, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$addToSet": bson.M{"deleted_for": userID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReplaceWithTombstone inserts the tombstone and then hard-deletes the
// original. The two steps are not transactional; a crash in between leaves
// both entities, which the caller accepts as a documented failure mode.
func (r *MessageRepository) ReplaceWithTombstone(ctx context.Context, originalID string, tomb *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := r.coll.InsertOne(ctx, tomb); err != nil {
		return err
	}
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": originalID})
	return err
}

// UnseenCounts recomputes how many unseen live messages each sender has
// pending for receiverID. Counts are not maintained incrementally; a sidebar
// fetch always reflects the store at the moment of the call.
func (r *MessageRepository) UnseenCounts(ctx context.Context, receiverID string) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"receiver_id": receiverID,
			"seen":        false,
			"tombstone":   bson.M{"$ne": true},
			"deleted_for": bson.M{"$ne": receiverID},
		}}},
		{{Key: "$group", Value: bson.M{"_id": "$sender_id", "count": bson.M{"$sum": 1}}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	counts := map[string]int64{}
	for cur.Next(ctx) {
		var row struct {
			SenderID string `bson:"_id"`
			Count    int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.SenderID] = row.Count
	}
	return counts, cur.Err()
}
