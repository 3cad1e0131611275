package auth

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines the privileged store operations the auth flows need.
type Repository interface {
	CreateProfile(ctx context.Context, userID, organizationID string) error
	OrganizationExists(ctx context.Context, organizationID string) (bool, error)
}

// PGRepository implements Repository over the service-role pool.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// CreateProfile inserts the tenant-scoped profile row binding a subject to
// its organization.
func (r *PGRepository) CreateProfile(ctx context.Context, userID, organizationID string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO profiles (id, organization_id) VALUES ($1, $2)`,
		userID, organizationID)
	if err != nil {
		return fmt.Errorf("auth: create profile: %w", err)
	}
	return nil
}

// OrganizationExists reports whether the organization id is known.
func (r *PGRepository) OrganizationExists(ctx context.Context, organizationID string) (bool, error) {
	var id string
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM organizations WHERE id = $1`, organizationID,
	).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("auth: organization lookup: %w", err)
	}
	return true, nil
}

var _ Repository = (*PGRepository)(nil)
