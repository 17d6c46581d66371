package user

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
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

// FindOrCreate resolves the external auth id to an internal user id, creating
// the user with a generated nickname on first sight. The upsert makes a
// concurrent first login converge on a single row.
func (r *Repository) FindOrCreate(ctx context.Context, authID string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		SELECT id FROM users WHERE naver_auth_id = $1
	`, authID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("query user by auth id: %w", err)
	}

	newID, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid v7: %w", err)
	}

	nickname, err := randomNickname(12)
	if err != nil {
		return "", fmt.Errorf("generate nickname: %w", err)
	}

	now := time.Now().UTC()
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, naver_auth_id, nickname, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (naver_auth_id) DO UPDATE SET updated_at = EXCLUDED.updated_at
		RETURNING id
	`, newID.String(), authID, nickname, now).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert user: %w", err)
	}

	return id, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, naver_auth_id, nickname, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id).Scan(&u.ID, &u.AuthID, &u.Nickname, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, err
		}
		return User{}, fmt.Errorf("query user by id: %w", err)
	}

	return u, nil
}

const nicknameAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomNickname(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = nicknameAlphabet[int(b)%len(nicknameAlphabet)]
	}
	return string(buf), nil
}
