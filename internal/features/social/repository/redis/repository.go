package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"whitelist-tool-backend/internal/features/social/models"
	"whitelist-tool-backend/internal/features/social/repository"
)

type redisRepository struct {
	rdb redis.Cmdable
}

func NewRedisRepository(rdb redis.Cmdable) repository.SocialRepository {
	return &redisRepository{rdb: rdb}
}

func followKey(address string) string {
	return "social:follow:" + address
}

func oauthStateKey(state string) string {
	return "social:oauth_state:" + state
}

func (r *redisRepository) GetFollow(ctx context.Context, address string) (*models.FollowRecord, error) {
	raw, err := r.rdb.Get(ctx, followKey(address)).Result()
	if err == redis.Nil {
		return nil, repository.ErrFollowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get follow record: %w", err)
	}

	var record models.FollowRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("failed to decode follow record: %w", err)
	}
	return &record, nil
}

func (r *redisRepository) SetFollow(ctx context.Context, address string, record *models.FollowRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal follow record: %w", err)
	}
	// Follow state lives for the campaign; no TTL.
	if err := r.rdb.Set(ctx, followKey(address), string(data), 0).Err(); err != nil {
		return fmt.Errorf("failed to set follow record: %w", err)
	}
	return nil
}

func (r *redisRepository) SaveOAuthState(ctx context.Context, state string, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, oauthStateKey(state), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to save oauth state: %w", err)
	}
	return nil
}

func (r *redisRepository) ConsumeOAuthState(ctx context.Context, state string) (bool, error) {
	n, err := r.rdb.Del(ctx, oauthStateKey(state)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to consume oauth state: %w", err)
	}
	return n > 0, nil
}
