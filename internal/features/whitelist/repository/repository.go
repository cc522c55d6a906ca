package repository

import (
	"context"
	"errors"

	"whitelist-tool-backend/internal/features/whitelist/models"
)

var (
	// ErrDuplicateEntry is returned when an address is already
	// whitelisted. Detection is a typed mapping from the database's
	// unique-constraint violation, not error-string matching.
	ErrDuplicateEntry = errors.New("entry already exists for this address")
	ErrEntryNotFound  = errors.New("entry not found")
)

type WhitelistRepository interface {
	Create(ctx context.Context, entry *models.Entry) error
	GetByAddress(ctx context.Context, address string) (*models.Entry, error)
	Count(ctx context.Context) (int64, error)
	// GetAll returns entries ordered by submission time.
	GetAll(ctx context.Context) ([]*models.Entry, error)
}
