// Package events publica eventos de asignación hacia Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/Ubicaciones-api/internal/application/allocation"
	"github.com/segmentio/kafka-go"
)

var (
	_ allocation.EventPublisher = (*KafkaPublisher)(nil)
	_ allocation.EventPublisher = NopPublisher{}
)

// messageWriter es el subconjunto de *kafka.Writer que se usa (permite tests sin broker).
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publica eventos con clave = bin_id (orden por ubicación dentro de la partición).
type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
}

// NewKafkaPublisher construye el publisher sobre los brokers y el tópico indicados.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return newKafkaPublisher(writer)
}

func newKafkaPublisher(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w, timeout: 5 * time.Second}
}

// Publish serializa el evento y lo escribe con timeout propio.
func (p *KafkaPublisher) Publish(ctx context.Context, event allocation.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal allocation event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.Allocation.BinID),
		Value: payload,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
			{Key: "event-id", Value: []byte(event.ID)},
		},
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write allocation event to kafka: %w", err)
	}
	return nil
}

// Close cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher descarta los eventos (sin brokers configurados).
type NopPublisher struct{}

// Publish no hace nada.
func (NopPublisher) Publish(context.Context, allocation.Event) error { return nil }

// Close no hace nada.
func (NopPublisher) Close() error { return nil }
