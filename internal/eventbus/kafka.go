package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shenikar/flood_dispatch_system/internal/webhook"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter - часть *kafkago.Writer, которую использует публикатор
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaPublisher публикует события леджера в топик Kafka.
// Ключ сообщения - номер инцидента, поэтому события одного инцидента
// попадают в одну партицию и сохраняют порядок.
type KafkaPublisher struct {
	writer  messageWriter
	brokers []string
}

// NewKafkaPublisher создает продюсера для топика событий
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &KafkaPublisher{writer: w, brokers: brokers}
}

// Publish сериализует событие и пишет его в топик
func (p *KafkaPublisher) Publish(ctx context.Context, event webhook.WebhookEvent) error {
	msg, err := toMessage(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish ledger event to Kafka: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Name() string { return "kafka" }

// Ping проверяет, что хотя бы один брокер принимает соединения
func (p *KafkaPublisher) Ping(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return fmt.Errorf("kafka: no brokers configured")
	}
	var lastErr error
	for _, broker := range p.brokers {
		conn, err := kafkago.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		return conn.Close()
	}
	return fmt.Errorf("kafka: no reachable broker: %w", lastErr)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func toMessage(event webhook.WebhookEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize ledger event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.IncidentID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "emitted_at", Value: []byte(event.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}
