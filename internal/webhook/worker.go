package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/incident_board/internal/config"
	"github.com/sirupsen/logrus"
)

// Queue - источник сырых событий для воркера
type Queue interface {
	Pop(ctx context.Context) (string, error)
}

// RedisQueue читает события из списка Redis блокирующим BRPOP
type RedisQueue struct {
	redisClient *redis.Client
}

func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{redisClient: client}
}

func (q *RedisQueue) Pop(ctx context.Context) (string, error) {
	// 0 - ждать бесконечно, выход по отмене контекста
	result, err := q.redisClient.BRPop(ctx, 0, dispatchQueueKey).Result()
	if err != nil {
		return "", err
	}
	// result[0] - ключ, result[1] - значение
	return result[1], nil
}

// Worker доставляет события из очереди на WEBHOOK_URL
type Worker struct {
	queue      Queue
	logger     *logrus.Logger
	cfg        *config.Config
	httpClient *resty.Client
}

// NewWorker создает новый Worker
func NewWorker(queue Queue, logger *logrus.Logger, cfg *config.Config) *Worker {
	client := resty.New().
		SetTimeout(cfg.WebhookTimeout).
		SetRetryCount(max(cfg.WebhookMaxRetries-1, 0)).
		SetRetryWaitTime(cfg.WebhookBaseDelay).
		SetRetryMaxWaitTime(cfg.WebhookBaseDelay * 8).
		SetHeader("Content-Type", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500 || r.StatusCode() == 429
		})

	return &Worker{
		queue:      queue,
		logger:     logger,
		cfg:        cfg,
		httpClient: client,
	}
}

// Run обрабатывает очередь до отмены контекста
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("Starting webhook worker...")
	for {
		payload, err := w.queue.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				w.logger.Info("Stopping webhook worker.")
				return nil
			}
			w.logger.WithError(err).Error("Failed to pop dispatch event from queue")
			select {
			case <-ctx.Done():
				w.logger.Info("Stopping webhook worker.")
				return nil
			case <-time.After(w.cfg.WebhookTimeout):
			}
			continue
		}

		var event DispatchEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			w.logger.WithError(err).Error("Failed to unmarshal dispatch event")
			continue
		}

		if err := w.deliver(ctx, event, payload); err != nil {
			w.logger.WithError(err).WithField("event_id", event.ID).Error("Webhook delivery failed")
		}
	}
}

func (w *Worker) deliver(ctx context.Context, event DispatchEvent, rawPayload string) error {
	log := w.logger.WithFields(logrus.Fields{
		"event_id":    event.ID,
		"incident_id": event.IncidentID,
	})
	log.Debug("Processing dispatch event...")

	if w.cfg.WebhookURL == "" {
		log.Warn("Webhook URL is not configured. Skipping webhook delivery.")
		return nil
	}

	req := w.httpClient.R().
		SetContext(ctx).
		SetBody(rawPayload)
	// подпись HMAC, если задан WEBHOOK_SECRET
	if w.cfg.WebhookSecret != "" {
		req.SetHeader("X-Webhook-Signature", generateHMACSHA256(rawPayload, w.cfg.WebhookSecret))
	}

	resp, err := req.Post(w.cfg.WebhookURL)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook endpoint responded with status %d", resp.StatusCode())
	}

	log.Info("Webhook delivered successfully.")
	return nil
}

// generateHMACSHA256 генерирует HMAC-SHA256 подпись для данных
func generateHMACSHA256(data, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
