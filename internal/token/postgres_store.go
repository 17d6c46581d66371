package token

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresStore keeps refresh records in the refresh_tokens table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, tokenID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (token_id, user_id, created_at)
		VALUES ($1, $2, $3)
	`, tokenID, userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}

	return nil
}

// Consume relies on a single DELETE being atomic: of two concurrent
// redemptions of the same token id, only one sees an affected row.
func (s *PostgresStore) Consume(ctx context.Context, tokenID, userID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM refresh_tokens
		WHERE token_id = $1 AND user_id = $2
	`, tokenID, userID)
	if err != nil {
		return false, fmt.Errorf("consume refresh token: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("consume refresh token rows affected: %w", err)
	}

	return affected > 0, nil
}

func (s *PostgresStore) Delete(ctx context.Context, tokenID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token_id = $1`, tokenID)
	if err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}

	return nil
}

// DeleteStale prunes records whose refresh credential has long expired by its
// own claim lifetime. Used by the maintenance sweep.
func (s *PostgresStore) DeleteStale(ctx context.Context, olderThan time.Duration, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	cutoff := time.Now().UTC().Add(-olderThan)

	res, err := s.db.ExecContext(ctx, `
		WITH stale AS (
			SELECT token_id
			FROM refresh_tokens
			WHERE created_at < $1
			ORDER BY created_at ASC
			LIMIT $2
		)
		DELETE FROM refresh_tokens t
		USING stale
		WHERE t.token_id = stale.token_id
	`, cutoff, batchSize)
	if err != nil {
		return 0, fmt.Errorf("delete stale refresh tokens: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("stale refresh tokens rows affected: %w", err)
	}

	return affected, nil
}
