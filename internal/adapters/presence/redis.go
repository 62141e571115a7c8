// Package presence mirrors live room occupancy into Redis so the web
// application can show which consultations are in progress.
package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Consult/internal/domain"
)

const keyPrefix = "consult:presence:"

// Key is the redis key holding the member count of room.
func Key(room domain.RoomID) string { return keyPrefix + string(room) }

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(ctx context.Context, opts *redis.Options, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("presence: ping: %w", err)
	}
	log.Info().Str("module", "presence.redis").Str("addr", opts.Addr).Msg("connected")
	return &Redis{client: client, ttl: ttl}, nil
}

// RoomPresence stores the member count, or deletes the key once the room is empty.
func (r *Redis) RoomPresence(ctx context.Context, room domain.RoomID, members int) error {
	if members <= 0 {
		return r.client.Del(ctx, Key(room)).Err()
	}
	return r.client.Set(ctx, Key(room), members, r.ttl).Err()
}

// Lookup returns the mirrored member count; zero when the key is absent.
func (r *Redis) Lookup(ctx context.Context, room domain.RoomID) (int, error) {
	n, err := r.client.Get(ctx, Key(room)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

func (r *Redis) Close() error {
	return r.client.Close()
}
