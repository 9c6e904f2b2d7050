package audit

import (
	"context"
	"encoding/json"
	"fmt"
)

// RecordProducer is the produce surface the Kafka sink needs; satisfied by
// the platform kafka.Producer.
type RecordProducer interface {
	ProduceSync(ctx context.Context, key, value []byte) error
}

// KafkaSink publishes every audit event to the audit topic. Events are keyed
// by type so partition ordering is preserved per event stream.
type KafkaSink struct {
	producer RecordProducer
}

func NewKafkaSink(producer RecordProducer) *KafkaSink {
	return &KafkaSink{producer: producer}
}

func (s *KafkaSink) Write(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	return s.producer.ProduceSync(ctx, []byte(event.Type), payload)
}
