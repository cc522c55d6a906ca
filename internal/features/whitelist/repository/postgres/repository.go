package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"whitelist-tool-backend/internal/features/whitelist/models"
	"whitelist-tool-backend/internal/features/whitelist/repository"
)

// uniqueViolation is the postgres error code for unique-constraint
// violations.
const uniqueViolation = "23505"

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.WhitelistRepository {
	return &postgresRepository{db: db}
}

// EnsureSchema creates the whitelist table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS whitelist_entries (
			id               UUID PRIMARY KEY,
			address          TEXT NOT NULL UNIQUE,
			discord_username TEXT,
			balance          DOUBLE PRECISION,
			submitted_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure whitelist schema: %w", err)
	}
	return nil
}

func (r *postgresRepository) Create(ctx context.Context, entry *models.Entry) error {
	query := `
		INSERT INTO whitelist_entries (id, address, discord_username, balance, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.Address, entry.DiscordUsername, entry.Balance, entry.SubmittedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create entry: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByAddress(ctx context.Context, address string) (*models.Entry, error) {
	query := `
		SELECT id, address, discord_username, balance, submitted_at
		FROM whitelist_entries
		WHERE address = $1
	`

	var entry models.Entry
	err := r.db.QueryRowContext(ctx, query, address).Scan(
		&entry.ID, &entry.Address, &entry.DiscordUsername, &entry.Balance, &entry.SubmittedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	return &entry, nil
}

func (r *postgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM whitelist_entries").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) GetAll(ctx context.Context) ([]*models.Entry, error) {
	query := `
		SELECT id, address, discord_username, balance, submitted_at
		FROM whitelist_entries
		ORDER BY submitted_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.Entry
	for rows.Next() {
		var entry models.Entry
		if err := rows.Scan(&entry.ID, &entry.Address, &entry.DiscordUsername, &entry.Balance, &entry.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	return entries, nil
}
