package orgs

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nimbus-hr/nimbus-hr/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for organizations.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Organization, int, error)
	Get(ctx context.Context, id string) (Organization, error)
	GetBySlug(ctx context.Context, slug string) (Organization, error)
	Create(ctx context.Context, org Organization) (Organization, error)
	Update(ctx context.Context, id string, org Organization) (Organization, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository over the service-role pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const orgColumns = `id, name, slug, email, phone, address, gstin, pan, is_super_admin, created_at, updated_at`

func scanOrganization(row pgx.Row) (Organization, error) {
	var o Organization
	var email, phone, address, gstin, pan pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&o.ID, &o.Name, &o.Slug, &email, &phone, &address, &gstin, &pan,
		&o.IsSuperAdmin, &createdAt, &updatedAt)
	if err != nil {
		return Organization{}, err
	}
	o.Email = email.String
	o.Phone = phone.String
	o.Address = address.String
	o.GSTIN = gstin.String
	o.PAN = pan.String
	if createdAt.Valid {
		o.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		o.UpdatedAt = updatedAt.Time
	}
	return o, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Organization, int, error) {
	query := `SELECT ` + orgColumns + ` FROM organizations WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		query += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR slug ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}

	countQuery := `SELECT COUNT(*) FROM organizations WHERE 1=1`
	countArgs := []any{}
	if filters.Search != "" {
		countQuery += ` AND (name ILIKE $1 OR slug ILIKE $1)`
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY created_at DESC`

	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orgs []Organization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, 0, err
		}
		orgs = append(orgs, o)
	}
	return orgs, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (Organization, error) {
	o, err := scanOrganization(r.pool.QueryRow(ctx,
		`SELECT `+orgColumns+` FROM organizations WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Organization{}, httpx.ErrNotFound
	}
	return o, err
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (Organization, error) {
	o, err := scanOrganization(r.pool.QueryRow(ctx,
		`SELECT `+orgColumns+` FROM organizations WHERE slug = $1`, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return Organization{}, httpx.ErrNotFound
	}
	return o, err
}

func (r *repository) Create(ctx context.Context, org Organization) (Organization, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO organizations (name, slug, email, phone, address, gstin, pan, is_super_admin)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8)
		RETURNING `+orgColumns,
		org.Name, org.Slug, org.Email, org.Phone, org.Address, org.GSTIN, org.PAN, org.IsSuperAdmin)
	created, err := scanOrganization(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Organization{}, httpx.ErrDuplicate
		}
		return Organization{}, err
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, id string, org Organization) (Organization, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE organizations
		SET name = $2,
		    email = NULLIF($3, ''),
		    phone = NULLIF($4, ''),
		    address = NULLIF($5, ''),
		    gstin = NULLIF($6, ''),
		    pan = NULLIF($7, ''),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+orgColumns,
		id, org.Name, org.Email, org.Phone, org.Address, org.GSTIN, org.PAN)
	updated, err := scanOrganization(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Organization{}, httpx.ErrNotFound
	}
	return updated, err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM organizations`).Scan(&total)
	return total, err
}

func (r *repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var one int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM organizations WHERE slug = $1`, slug).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
