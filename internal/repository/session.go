package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/AuthPortal/internal/common"
	"github.com/atinyakov/AuthPortal/internal/models"
)

// PostgresSessionRepository stores login sessions in PostgreSQL.
type PostgresSessionRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresSessionRepository creates a PostgresSessionRepository over db.
func NewPostgresSessionRepository(db *sql.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{DB: db}
}

// CreateSession inserts s.
func (r *PostgresSessionRepository) CreateSession(ctx context.Context, s *models.Session) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO sessions (token, user_id, username, created_at, expires_at) VALUES ($1, $2, $3, $4, $5)`,
		s.Token, s.UserID, s.Username, s.CreatedAt, s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession returns the session for token or common.ErrNotFound.
// Expiry is not checked here.
func (r *PostgresSessionRepository) GetSession(ctx context.Context, token string) (*models.Session, error) {
	var s models.Session
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT token, user_id, username, created_at, expires_at FROM sessions WHERE token = $1`,
		token,
	).Scan(&s.Token, &s.UserID, &s.Username, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

// DeleteSession removes the session for token. Deleting a missing session is not an error.
func (r *PostgresSessionRepository) DeleteSession(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

// DeleteAllSessions removes every session row.
func (r *PostgresSessionRepository) DeleteAllSessions(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}
