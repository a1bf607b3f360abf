package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/shenikar/flood_dispatch_system/internal/webhook"
	"github.com/sirupsen/logrus"
)

// natsConn - часть *nats.Conn, которую использует публикатор
type natsConn interface {
	Publish(subject string, data []byte) error
	IsConnected() bool
	Close()
}

// NATSPublisher публикует события леджера в subject NATS
type NATSPublisher struct {
	conn    natsConn
	subject string
}

// NewNATSPublisher подключается к NATS с автоматическим переподключением
func NewNATSPublisher(url, subject string, logger *logrus.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("flood-dispatch"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.WithField("url", url).Info("Connected to NATS")

	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// Publish отправляет событие в subject
func (p *NATSPublisher) Publish(_ context.Context, event webhook.WebhookEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish ledger event to NATS: %w", err)
	}
	return nil
}

func (p *NATSPublisher) Name() string { return "nats" }

// Ping сообщает, есть ли живое соединение
func (p *NATSPublisher) Ping(context.Context) error {
	if p.conn == nil || !p.conn.IsConnected() {
		return errors.New("nats: not connected")
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
