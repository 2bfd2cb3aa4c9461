// internal/publisher/kafka_sink.go
package publisher

import (
	"context"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// KafkaSink publishes ledger events to a Kafka topic.
type KafkaSink struct {
	writer KafkaWriter
}

// NewKafkaSink wraps an existing writer.
func NewKafkaSink(writer KafkaWriter) *KafkaSink {
	return &KafkaSink{writer: writer}
}

// NewKafkaWriter builds a writer for a comma separated broker list.
// Messages with the same key land on the same partition.
func NewKafkaWriter(brokers, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(splitList(brokers)...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

// Send implements Sink.
func (s *KafkaSink) Send(ctx context.Context, msg Message, payload []byte) error {
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Key()),
		Value: payload,
		Time:  msg.At,
	})
}

// Close implements Sink.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
