package notify

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const DefaultChannel = "liveblog-notifications"

// RedisSink publishes notifications on a redis pub/sub channel.
type RedisSink struct {
	client  *redis.Client
	channel string
}

func NewRedisSink(client *redis.Client, channel string) *RedisSink {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisSink{client: client, channel: channel}
}

func (s *RedisSink) Push(ctx context.Context, n Notification) error {
	payload, err := n.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	return s.client.Publish(ctx, s.channel, payload).Err()
}
