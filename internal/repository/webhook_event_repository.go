package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const webhookEventKeyPrefix = "linebot:webhook_event:"

// WebhookEventRepository remembers processed webhook event ids so that
// redelivered events are not answered twice.
type WebhookEventRepository interface {
	// MarkProcessed records id and reports whether it was seen for the first time.
	MarkProcessed(ctx context.Context, id string) (bool, error)
	// Release forgets id so a redelivery of a failed event is handled again.
	Release(ctx context.Context, id string) error
}

type webhookEventRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewWebhookEventRepository constructs repository. A nil client treats every id as new.
func NewWebhookEventRepository(client *redis.Client, ttl time.Duration) WebhookEventRepository {
	if client == nil {
		return noopWebhookEventRepository{}
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &webhookEventRepository{client: client, ttl: ttl}
}

func (r *webhookEventRepository) MarkProcessed(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return true, nil
	}
	return r.client.SetNX(ctx, webhookEventKeyPrefix+id, time.Now().Unix(), r.ttl).Result()
}

func (r *webhookEventRepository) Release(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return r.client.Del(ctx, webhookEventKeyPrefix+id).Err()
}

type noopWebhookEventRepository struct{}

func (noopWebhookEventRepository) MarkProcessed(context.Context, string) (bool, error) {
	return true, nil
}

func (noopWebhookEventRepository) Release(context.Context, string) error { return nil }
