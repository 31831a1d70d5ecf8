package notifier

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/finwire/walletd/internal/domain"
)

// KafkaNotifier publishes completed-transfer events to a Kafka topic.
// Messages are keyed by account id so each account's events stay
// ordered within a partition.
type KafkaNotifier struct {
	writer *kafka.Writer
}

// NewKafkaNotifier creates a new KafkaNotifier.
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Publish marshals the event and writes it to the topic.
func (n *KafkaNotifier) Publish(ctx context.Context, event *domain.TransferCompletedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(event.AccountID, 10)),
		Value: data,
	})
}

// Close flushes and closes the underlying writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
