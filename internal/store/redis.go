package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/askwhyharsh/geohunt/internal/role"
	"github.com/askwhyharsh/geohunt/internal/storage"
	apperrors "github.com/askwhyharsh/geohunt/pkg/errors"
)

const keyPrefix = "coordinates:"

// Redis stores each record as JSON under coordinates:<role>.
type Redis struct {
	redis storage.RedisClient
	ttl   time.Duration
}

// NewRedis builds a redis backed store. A zero ttl keeps records forever.
func NewRedis(redisClient storage.RedisClient, ttl time.Duration) *Redis {
	return &Redis{redis: redisClient, ttl: ttl}
}

func Key(r role.Role) string {
	return keyPrefix + r.String()
}

func (s *Redis) Put(ctx context.Context, r role.Role, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := s.redis.Set(ctx, Key(r), data, s.ttl); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *Redis) Get(ctx context.Context, r role.Role) (*Record, error) {
	data, err := s.redis.Get(ctx, Key(r))
	if err != nil {
		if storage.IsNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &rec, nil
}
