package webhook

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	webhookQueueKey = "flood_ledger_events"
)

//go:generate mockgen -source=publisher.go -destination=mocks/mock_publisher.go -package=mocks

// WebhookPublisher - интерфейс для публикации событий леджера
type WebhookPublisher interface {
	Publish(ctx context.Context, event WebhookEvent) error
	Name() string
	Ping(ctx context.Context) error
}

// RedisWebhookPublisher - реализация WebhookPublisher, использующая Redis
type RedisWebhookPublisher struct {
	redisClient *redis.Client
}

// NewRedisWebhookPublisher создает новый RedisWebhookPublisher
func NewRedisWebhookPublisher(client *redis.Client) *RedisWebhookPublisher {
	return &RedisWebhookPublisher{
		redisClient: client,
	}
}

// Publish публикует событие вебхука в очередь Redis
func (p *RedisWebhookPublisher) Publish(ctx context.Context, event WebhookEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	// LPUSH + BRPOP у воркера дают очередь FIFO
	if err := p.redisClient.LPush(ctx, webhookQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish webhook event to Redis: %w", err)
	}
	return nil
}

func (p *RedisWebhookPublisher) Name() string { return "redis" }

// Ping проверяет доступность Redis
func (p *RedisWebhookPublisher) Ping(ctx context.Context) error {
	return p.redisClient.Ping(ctx).Err()
}

// NoopPublisher отбрасывает события, когда приемник не настроен
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, WebhookEvent) error { return nil }
func (NoopPublisher) Name() string                                { return "none" }
func (NoopPublisher) Ping(context.Context) error                  { return nil }
