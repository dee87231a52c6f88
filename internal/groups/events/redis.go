package events

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultStream       = "docket:events"
	defaultStreamMaxLen = 10000
)

// RedisSink appends events to a Redis stream for downstream consumers such as
// notification delivery.
type RedisSink struct {
	client *redis.Client
	stream string
}

func NewRedisSink(client *redis.Client, stream string) *RedisSink {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisSink{client: client, stream: stream}
}

func (s *RedisSink) Publish(ctx context.Context, e Event) error {
	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: defaultStreamMaxLen,
		Approx: true,
		Values: map[string]any{
			"id":             e.ID,
			"type":           string(e.Type),
			"group_id":       e.GroupID,
			"actor_id":       e.ActorID,
			"category":       string(e.Category),
			"message":        e.Message,
			"content_kind":   string(e.ContentKind),
			"content_id":     e.ContentID,
			"notify_user_id": e.NotifyUserID,
			"occurred_at":    e.OccurredAt.UTC().Format(time.RFC3339Nano),
		},
	}).Err()
}

// Ping checks the connection, for readiness probes.
func (s *RedisSink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
