package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const notificationQueueKey = "notification_events"

// NotificationEvent - единица работы для sink-а нотификаций.
// Recipient - адресат (диспетчерская, владелец устройства), kind - тип события.
type NotificationEvent struct {
	Kind      string          `json:"kind"`
	Recipient string          `json:"recipient"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NotificationPublisher - интерфейс для передачи событий в sink нотификаций
type NotificationPublisher interface {
	Publish(ctx context.Context, event NotificationEvent) error
}

// RedisNotificationPublisher - реализация NotificationPublisher, использующая Redis
type RedisNotificationPublisher struct {
	redisClient *redis.Client
}

// NewRedisNotificationPublisher создает новый RedisNotificationPublisher
func NewRedisNotificationPublisher(client *redis.Client) *RedisNotificationPublisher {
	return &RedisNotificationPublisher{
		redisClient: client,
	}
}

// Publish публикует событие нотификации в очередь Redis
func (p *RedisNotificationPublisher) Publish(ctx context.Context, event NotificationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}

	// LPUSH добавляет событие в левую часть списка (очереди)
	if err := p.redisClient.LPush(ctx, notificationQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification event to Redis: %w", err)
	}
	return nil
}
