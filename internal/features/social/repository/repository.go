package repository

import (
	"context"
	"errors"
	"time"

	"whitelist-tool-backend/internal/features/social/models"
)

var ErrFollowNotFound = errors.New("follow record not found")

// SocialRepository stores follow-gate state and short-lived OAuth state
// nonces.
type SocialRepository interface {
	GetFollow(ctx context.Context, address string) (*models.FollowRecord, error)
	SetFollow(ctx context.Context, address string, record *models.FollowRecord) error

	// SaveOAuthState stores a CSRF nonce for the Discord redirect.
	SaveOAuthState(ctx context.Context, state string, ttl time.Duration) error
	// ConsumeOAuthState atomically checks and deletes a nonce,
	// reporting whether it existed.
	ConsumeOAuthState(ctx context.Context, state string) (bool, error)
}
