package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/fathima-sithara/chat-backend/internal/domain"
)

// KafkaRelay mirrors lifecycle events onto a Kafka topic for downstream
// consumers (notifications, analytics). Publishing is best-effort; a broker
// failure is logged and the triggering request proceeds.
type KafkaRelay struct {
	writer *kafka.Writer
	log    *zap.SugaredLogger
}

func NewKafkaRelay(brokers []string, topic string, log *zap.SugaredLogger) *KafkaRelay {
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	})
	return &KafkaRelay{writer: w, log: log}
}

func (r *KafkaRelay) OnMessageCreated(m *domain.Message) {
	r.publish("message.created", m.ID, m)
}

func (r *KafkaRelay) OnMessageTombstoned(tomb *domain.Message) {
	r.publish("message.deleted_for_everyone", tomb.OriginalMessageID, tomb)
}

func (r *KafkaRelay) publish(event, key string, payload any) {
	b, err := json.Marshal(map[string]any{"event": event, "message": payload})
	if err != nil {
		r.log.Warnw("kafka marshal failed", "event", event, "err", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := r.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: b,
		Time:  time.Now(),
	}); err != nil {
		r.log.Warnw("kafka publish failed", "event", event, "key", key, "err", err)
	}
}

func (r *KafkaRelay) Close() error {
	if r == nil || r.writer == nil {
		return nil
	}
	return r.writer.Close()
}
