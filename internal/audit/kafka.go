package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ddx2r/vk-telegram-bot-sub000/internal/infrastructure/kafka"
)

// KafkaSink streams audit records to a topic, keyed by event type so
// records for one type stay ordered within a partition.
type KafkaSink struct {
	producer *kafka.Producer
}

func NewKafkaSink(producer *kafka.Producer) *KafkaSink {
	return &KafkaSink{producer: producer}
}

func (s *KafkaSink) Record(ctx context.Context, rec Record) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	return s.producer.SendMessage(ctx, []byte(rec.EventType), value)
}
