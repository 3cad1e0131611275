package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoTenant indicates an authenticated subject with no profile or no
// organization binding.
var ErrNoTenant = errors.New("rbac: subject has no tenant binding")

// Resolver looks up the tenant, role set and permission set for a subject.
type Resolver interface {
	TenantFor(ctx context.Context, userID string) (string, error)
	Roles(ctx context.Context, userID, tenantID string) ([]string, error)
	Permissions(ctx context.Context, userID string) ([]string, error)
}

// PGResolver resolves bindings through the privileged store client. Role
// rows are tenant-scoped; permissions come from the store's
// get_user_permissions function.
type PGResolver struct {
	pool  *pgxpool.Pool
	cache *Cache
}

// NewResolver constructs a PGResolver. cache may be nil.
func NewResolver(pool *pgxpool.Pool, cache *Cache) *PGResolver {
	return &PGResolver{pool: pool, cache: cache}
}

// TenantFor returns the organization the subject belongs to.
func (r *PGResolver) TenantFor(ctx context.Context, userID string) (string, error) {
	var tenantID *string
	err := r.pool.QueryRow(ctx,
		`SELECT organization_id FROM profiles WHERE id = $1`, userID,
	).Scan(&tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNoTenant
		}
		return "", fmt.Errorf("rbac: tenant lookup: %w", err)
	}
	if tenantID == nil || *tenantID == "" {
		return "", ErrNoTenant
	}
	return *tenantID, nil
}

// Roles returns the subject's role names within the tenant.
func (r *PGResolver) Roles(ctx context.Context, userID, tenantID string) ([]string, error) {
	return r.cache.FetchStrings(ctx, []string{"rbac", "roles", tenantID, userID}, func(ctx context.Context) ([]string, error) {
		rows, err := r.pool.Query(ctx,
			`SELECT r.name
			   FROM user_roles ur
			   JOIN roles r ON r.id = ur.role_id
			  WHERE ur.user_id = $1 AND ur.organization_id = $2`,
			userID, tenantID)
		if err != nil {
			return nil, fmt.Errorf("rbac: role lookup: %w", err)
		}
		defer rows.Close()

		var roles []string
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return nil, fmt.Errorf("rbac: scan role: %w", err)
			}
			roles = append(roles, name)
		}
		return roles, rows.Err()
	})
}

// Permissions returns the subject's effective permission names via the
// store's row-level RPC. The function returns a jsonb array.
func (r *PGResolver) Permissions(ctx context.Context, userID string) ([]string, error) {
	return r.cache.FetchStrings(ctx, []string{"rbac", "perms", userID}, func(ctx context.Context) ([]string, error) {
		var raw []byte
		err := r.pool.QueryRow(ctx, `SELECT get_user_permissions($1)`, userID).Scan(&raw)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, nil
			}
			return nil, fmt.Errorf("rbac: permission lookup: %w", err)
		}
		if len(raw) == 0 {
			return nil, nil
		}
		var perms []string
		if err := json.Unmarshal(raw, &perms); err != nil {
			return nil, fmt.Errorf("rbac: decode permissions: %w", err)
		}
		return perms, nil
	})
}

// AssignRole grants a role to the subject through the store's assign_role
// function and invalidates cached sets.
func (r *PGResolver) AssignRole(ctx context.Context, userID, roleName string) error {
	if !IsKnownRole(roleName) {
		return fmt.Errorf("rbac: unknown role %q", roleName)
	}
	if _, err := r.pool.Exec(ctx, `SELECT assign_role($1, $2)`, userID, roleName); err != nil {
		return fmt.Errorf("rbac: assign role: %w", err)
	}
	return r.cache.Bump(ctx)
}

var _ Resolver = (*PGResolver)(nil)
