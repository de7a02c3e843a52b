// Package events – Kafka implementation.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	kafka "github.com/segmentio/kafka-go"
)

// Kafka publishes events through one kafka-go writer per topic. Writers
// are created lazily and run in async mode: Emit hands the message to
// the client's batcher and returns; broker-side failures surface through
// the writer's error logger rather than the request path, matching the
// fire-and-forget contract.
type Kafka struct {
	broker string

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafka creates a Kafka emitter for the given broker address.
func NewKafka(broker string) *Kafka {
	return &Kafka{
		broker:  broker,
		writers: make(map[string]*kafka.Writer),
	}
}

func (k *Kafka) writer(topic string) *kafka.Writer {
	k.mu.Lock()
	defer k.mu.Unlock()
	if w, ok := k.writers[topic]; ok {
		return w
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(k.broker),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 2 * time.Second,
	}
	k.writers[topic] = w
	return w
}

// Emit serializes payload as JSON and hands it to the topic's writer.
func (k *Kafka) Emit(ctx context.Context, topic string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return k.writer(topic).WriteMessages(ctx, kafka.Message{Value: value})
}

// Close flushes and closes all writers.
func (k *Kafka) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	var first error
	for _, w := range k.writers {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	k.writers = make(map[string]*kafka.Writer)
	return first
}
