package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/incident_board/internal/models"
)

const (
	dispatchQueueKey = "dispatch_events"
)

// DispatchEvent - данные вебхука о назначении юнитов на инцидент
type DispatchEvent struct {
	ID         uuid.UUID             `json:"id"`
	Action     models.DispatchAction `json:"action"`
	IncidentID string                `json:"incident_id"`
	Priority   models.Priority       `json:"priority"`
	UnitIDs    []string              `json:"unit_ids"`
	Timestamp  time.Time             `json:"timestamp"`
}

// Publisher - интерфейс для публикации событий диспетчеризации
type Publisher interface {
	Publish(ctx context.Context, event DispatchEvent) error
}

// RedisPublisher - реализация Publisher поверх списка Redis
type RedisPublisher struct {
	redisClient *redis.Client
}

// NewRedisPublisher создает новый RedisPublisher
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{
		redisClient: client,
	}
}

// Publish кладет событие в очередь Redis
func (p *RedisPublisher) Publish(ctx context.Context, event DispatchEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch event: %w", err)
	}

	// LPUSH в левый конец, воркер забирает справа
	if err := p.redisClient.LPush(ctx, dispatchQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish dispatch event to Redis: %w", err)
	}
	return nil
}

// NoopPublisher используется, когда Redis не настроен
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, DispatchEvent) error {
	return nil
}
