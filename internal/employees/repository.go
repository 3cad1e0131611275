package employees

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

// Repository provides PostgreSQL backed persistence for employees. Every
// read and write is scoped to a tenant id.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Employee, int, error)
	Get(ctx context.Context, tenantID, id string) (Employee, error)
	Create(ctx context.Context, emp Employee) (Employee, error)
	Update(ctx context.Context, tenantID, id string, emp Employee) (Employee, error)
	Delete(ctx context.Context, tenantID, id string) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository over the service-role pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const empColumns = `id, organization_id, first_name, last_name, official_email, mobile, gender, join_date, employee_type_id, status_id, created_at, updated_at`

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	var mobile, gender, typeID, statusID pgtype.Text
	var joinDate pgtype.Date
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&e.ID, &e.OrganizationID, &e.FirstName, &e.LastName, &e.OfficialEmail,
		&mobile, &gender, &joinDate, &typeID, &statusID, &createdAt, &updatedAt)
	if err != nil {
		return Employee{}, err
	}
	e.Mobile = mobile.String
	e.Gender = gender.String
	e.EmployeeTypeID = typeID.String
	e.StatusID = statusID.String
	if joinDate.Valid {
		d := joinDate.Time
		e.JoinDate = &d
	}
	if createdAt.Valid {
		e.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		e.UpdatedAt = updatedAt.Time
	}
	return e, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Employee, int, error) {
	query := `SELECT ` + empColumns + ` FROM employees WHERE organization_id = $1`
	args := []any{filters.TenantID}
	argCount := 1

	if filters.Search != "" {
		argCount++
		p := strconv.Itoa(argCount)
		query += ` AND (first_name ILIKE $` + p + ` OR last_name ILIKE $` + p + ` OR official_email ILIKE $` + p + `)`
		args = append(args, "%"+filters.Search+"%")
	}

	countQuery := `SELECT COUNT(*) FROM employees WHERE organization_id = $1`
	countArgs := []any{filters.TenantID}
	if filters.Search != "" {
		countQuery += ` AND (first_name ILIKE $2 OR last_name ILIKE $2 OR official_email ILIKE $2)`
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY last_name, first_name`

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

	var employees []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		employees = append(employees, e)
	}
	return employees, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, tenantID, id string) (Employee, error) {
	e, err := scanEmployee(r.pool.QueryRow(ctx,
		`SELECT `+empColumns+` FROM employees WHERE organization_id = $1 AND id = $2`,
		tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, httpx.ErrNotFound
	}
	return e, err
}

func (r *repository) Create(ctx context.Context, emp Employee) (Employee, error) {
	var joinDate any
	if emp.JoinDate != nil {
		joinDate = *emp.JoinDate
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO employees (organization_id, first_name, last_name, official_email, mobile, gender, join_date, employee_type_id, status_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, NULLIF($8, '')::uuid, NULLIF($9, '')::uuid)
		RETURNING `+empColumns,
		emp.OrganizationID, emp.FirstName, emp.LastName, emp.OfficialEmail,
		emp.Mobile, emp.Gender, joinDate, emp.EmployeeTypeID, emp.StatusID)
	created, err := scanEmployee(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Employee{}, httpx.ErrDuplicate
		}
		return Employee{}, err
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, tenantID, id string, emp Employee) (Employee, error) {
	var joinDate any
	if emp.JoinDate != nil {
		joinDate = *emp.JoinDate
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE employees
		SET first_name = $3,
		    last_name = $4,
		    official_email = $5,
		    mobile = NULLIF($6, ''),
		    gender = NULLIF($7, ''),
		    join_date = $8,
		    employee_type_id = NULLIF($9, '')::uuid,
		    status_id = NULLIF($10, '')::uuid,
		    updated_at = NOW()
		WHERE organization_id = $1 AND id = $2
		RETURNING `+empColumns,
		tenantID, id, emp.FirstName, emp.LastName, emp.OfficialEmail,
		emp.Mobile, emp.Gender, joinDate, emp.EmployeeTypeID, emp.StatusID)
	updated, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, httpx.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Employee{}, httpx.ErrDuplicate
		}
		return Employee{}, err
	}
	return updated, nil
}

func (r *repository) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM employees WHERE organization_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
