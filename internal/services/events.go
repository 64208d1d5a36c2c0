package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"vidsum-backend/internal/models"
)

// EventChannel names the pub/sub channel carrying updates for one owner.
func EventChannel(ownerEmail string) string {
	return "user_updates:" + ownerEmail
}

// EventPublisher pushes summary lifecycle events over redis pub/sub so the
// websocket hub can fan them out to connected clients. Publishing is
// best-effort; a lost event only delays the UI until its next refresh.
type EventPublisher struct {
	redis *redis.Client
}

func NewEventPublisher(redisClient *redis.Client) *EventPublisher {
	return &EventPublisher{redis: redisClient}
}

func (p *EventPublisher) Publish(ctx context.Context, ownerEmail string, msg models.WSMessage) {
	if p == nil || p.redis == nil {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	if err := p.redis.Publish(ctx, EventChannel(ownerEmail), data).Err(); err != nil {
		log.Printf("failed to publish %s event for %s: %v", msg.Type, ownerEmail, err)
	}
}
