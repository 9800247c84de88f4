package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CredentialRepository stores the single admin password hash in a one-row table.
type CredentialRepository struct {
	DB *sql.DB
}

func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{DB: db}
}

func (r *CredentialRepository) PasswordHash(ctx context.Context) ([]byte, error) {
	var hash string
	err := r.DB.QueryRowContext(ctx, `SELECT password_hash FROM admin_credentials WHERE id = 1`).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select admin credential: %w", err)
	}
	return []byte(hash), nil
}

func (r *CredentialRepository) SetPasswordHash(ctx context.Context, hash []byte) error {
	query := `
		INSERT INTO admin_credentials (id, password_hash, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id)
		DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = NOW()
	`

	if _, err := r.DB.ExecContext(ctx, query, string(hash)); err != nil {
		return fmt.Errorf("upsert admin credential: %w", err)
	}
	return nil
}
