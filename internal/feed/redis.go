package feed

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher pushes change events onto a per-warung Redis channel so
// other devices of the same warung can refresh. Channel name:
// warung:<warungID>:changes.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(ctx context.Context, addr, password string, db int) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &RedisPublisher{client: client}, nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

func channelFor(warungID string) string {
	return "warung:" + warungID + ":changes"
}

func (p *RedisPublisher) Publish(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := p.client.Publish(ctx, channelFor(ev.WarungID), payload).Err(); err != nil {
		log.Printf("[feed] redis publish failed: %v", err)
	}
}
