package cellstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/elite30/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
)

// Redis keeps the value under one redis key, without expiration.
type Redis struct {
	client *redis.Client
	key    string
}

func NewRedis(client *redis.Client, key string) *Redis {
	return &Redis{
		client: client,
		key:    key,
	}
}

func (r *Redis) Read(ctx context.Context) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cellstore.redis.read")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	value, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return value, nil
}

func (r *Redis) Write(ctx context.Context, value string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cellstore.redis.write")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := r.client.Set(ctx, r.key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cellstore.redis.clear")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", r.key, err)
	}
	return nil
}
