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

// ParameterRepository reads tunable parameters.
type ParameterRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewParameterRepository constructs the repository.
func NewParameterRepository(db *sqlx.DB, timeout time.Duration) *ParameterRepository {
	return &ParameterRepository{db: db, timeout: timeout}
}

// GetByName fetches a parameter by its exact, case sensitive name.
// A missing row is reported as sql.ErrNoRows.
func (r *ParameterRepository) GetByName(ctx context.Context, name string) (*models.Parameter, error) {
	const query = `SELECT id, name, value, type_form, "group" FROM parameters WHERE name = $1 LIMIT 1`
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var param models.Parameter
	if err := r.db.GetContext(ctx, &param, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, appErrors.Repository(fmt.Errorf("get parameter %s: %w", name, err))
	}
	return &param, nil
}
