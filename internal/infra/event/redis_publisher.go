package event

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/config"
	"storefront/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher は注文イベントを Redis Pub/Sub に流す
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(cfg config.RedisConfig) (*RedisPublisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisPublisher{rdb: rdb, channel: cfg.Channel}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, ev model.OrderEvent) error {
	payload, err := encode(ev)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, p.channel, payload).Err()
}

func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}

func encode(ev model.OrderEvent) (string, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("encode event: %w", err)
	}
	return string(b), nil
}
