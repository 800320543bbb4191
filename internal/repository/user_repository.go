package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/capacity-api/internal/models"
	appErrors "github.com/noah-isme/capacity-api/pkg/errors"
)

// UserRepository provides database access for API accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsername returns an API user by username. A missing row is reported as sql.ErrNoRows.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.APIUser, error) {
	const query = `SELECT id, username, password_hash, active, last_login FROM api_users WHERE username = $1 LIMIT 1`
	var user models.APIUser
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, appErrors.Repository(fmt.Errorf("find user by username: %w", err))
	}
	return &user, nil
}

// UpdateLastLogin updates the last_login timestamp for a user.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64, ts time.Time) error {
	const query = `UPDATE api_users SET last_login = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts); err != nil {
		return appErrors.Repository(fmt.Errorf("update last login: %w", err))
	}
	return nil
}
