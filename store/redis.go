package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/garyblankenship/cursorrules-game/engine/save"
	"github.com/garyblankenship/cursorrules-game/engine/state"
	"github.com/garyblankenship/cursorrules-game/types"
)

// RedisStore implements Store using Redis. Sessions are written as the
// same JSON envelope file snapshots use, under session:<uuid> keys with
// a TTL so abandoned sessions age out.
type RedisStore struct {
	client  *redis.Client
	logger  *slog.Logger
	game    string
	version string
	ttl     time.Duration
}

// Ensure RedisStore implements the Store interface.
var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(addr string, ttl time.Duration, defs *state.Defs, logger *slog.Logger) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	return &RedisStore{
		client:  client,
		logger:  logger,
		game:    defs.Game.Title,
		version: defs.Game.Version,
		ttl:     ttl,
	}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("failed to close redis connection", "error", err)
		return err
	}
	return nil
}

// WaitForConnection waits for Redis to become available during startup.
func (r *RedisStore) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

func (r *RedisStore) Save(ctx context.Context, s *types.Session) error {
	s.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(save.SaveData{
		Version: r.version,
		Game:    r.game,
		Session: s,
	})
	if err != nil {
		r.logger.Error("failed to marshal session", "session_id", s.ID, "error", err)
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	key := sessionKey(s.ID)
	if err := r.client.Set(ctx, key, string(data), r.ttl).Err(); err != nil {
		r.logger.Error("failed to save session", "session_id", s.ID, "error", err)
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

func (r *RedisStore) Load(ctx context.Context, id uuid.UUID) (*types.Session, error) {
	cmd := r.client.Get(ctx, sessionKey(id))
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			r.logger.Warn("session not found", "session_id", id)
			return nil, nil
		}
		r.logger.Error("failed to load session", "session_id", id, "error", err)
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	data := cmd.Val()
	if data == "" {
		r.logger.Warn("session not found", "session_id", id)
		return nil, nil
	}

	sd, err := save.Load([]byte(data))
	if err != nil {
		r.logger.Error("failed to unmarshal session", "session_id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return sd.Session, nil
}

func (r *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		r.logger.Error("failed to delete session", "session_id", id, "error", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func sessionKey(id uuid.UUID) string {
	return "session:" + id.String()
}
