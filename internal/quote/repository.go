package quote

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Quote, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, content, author, created_at, updated_at
		FROM quotes
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]Quote, 0)
	for rows.Next() {
		var q Quote
		if err := rows.Scan(&q.ID, &q.UserID, &q.Content, &q.Author, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}

	return quotes, nil
}

func (r *Repository) Create(ctx context.Context, userID string, input QuoteInput) (Quote, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Quote{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now().UTC()
	q := Quote{
		ID:        id.String(),
		UserID:    userID,
		Content:   input.Content,
		Author:    input.Author,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO quotes (id, user_id, content, author, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, q.ID, q.UserID, q.Content, q.Author, q.CreatedAt, q.UpdatedAt)
	if err != nil {
		return Quote{}, fmt.Errorf("insert quote: %w", err)
	}

	return q, nil
}

// Update only touches rows owned by userID; a quote belonging to someone else
// surfaces as sql.ErrNoRows, same as a missing one.
func (r *Repository) Update(ctx context.Context, id, userID string, input QuoteInput) (Quote, error) {
	var q Quote
	now := time.Now().UTC()

	err := r.db.QueryRowContext(ctx, `
		UPDATE quotes
		SET content = $3, author = $4, updated_at = $5
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, content, author, created_at, updated_at
	`, id, userID, input.Content, input.Author, now).
		Scan(&q.ID, &q.UserID, &q.Content, &q.Author, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Quote{}, err
		}
		return Quote{}, fmt.Errorf("update quote: %w", err)
	}

	return q, nil
}

func (r *Repository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM quotes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
