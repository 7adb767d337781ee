package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lcs-staffing/admin-console/internal/domain"
)

// AdminRepository handles persistence for admin accounts in the users table.
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.AdminAccount) error
	GetByID(ctx context.Context, id string) (*domain.AdminAccount, error)
	GetByEmail(ctx context.Context, email string) (*domain.AdminAccount, error)
	List(ctx context.Context, filter AdminFilter) ([]domain.AdminAccount, error)
	UpdateEmail(ctx context.Context, id, email string) error
	SetActive(ctx context.Context, id string, active bool) error
	TouchLogin(ctx context.Context, id string, at time.Time) error
}

// AdminFilter defines equality filters for roster listing.
type AdminFilter struct {
	Role   *string
	Active *bool
}

type adminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository instantiates the repository.
func NewAdminRepository(pool *pgxpool.Pool) AdminRepository {
	return &adminRepository{pool: pool}
}

const adminColumns = `id, email, role, is_super_admin, is_active, last_login_at, created_at, updated_at`

func (r *adminRepository) Create(ctx context.Context, admin *domain.AdminAccount) error {
	const query = `
        INSERT INTO users (id, email, role, is_super_admin, is_active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		admin.ID,
		admin.Email,
		admin.Role,
		admin.IsSuperAdmin,
		admin.IsActive,
	).Scan(&admin.CreatedAt, &admin.UpdatedAt)
}

func (r *adminRepository) GetByID(ctx context.Context, id string) (*domain.AdminAccount, error) {
	query := `SELECT ` + adminColumns + ` FROM users WHERE id=$1`
	return scanAdmin(r.pool.QueryRow(ctx, query, id))
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*domain.AdminAccount, error) {
	query := `SELECT ` + adminColumns + ` FROM users WHERE lower(email)=lower($1)`
	return scanAdmin(r.pool.QueryRow(ctx, query, email))
}

func (r *adminRepository) List(ctx context.Context, filter AdminFilter) ([]domain.AdminAccount, error) {
	query := `SELECT ` + adminColumns + ` FROM users`
	args := []any{}
	clauses := []string{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("is_active=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.AdminAccount{}
	for rows.Next() {
		admin, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *admin)
	}
	return result, rows.Err()
}

func (r *adminRepository) UpdateEmail(ctx context.Context, id, email string) error {
	return r.exec(ctx, `UPDATE users SET email=$1, updated_at=NOW() WHERE id=$2`, email, id)
}

func (r *adminRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.exec(ctx, `UPDATE users SET is_active=$1, updated_at=NOW() WHERE id=$2`, active, id)
}

func (r *adminRepository) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, `UPDATE users SET last_login_at=$1, updated_at=NOW() WHERE id=$2`, at, id)
}

func (r *adminRepository) exec(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanAdmin(row pgx.Row) (*domain.AdminAccount, error) {
	var admin domain.AdminAccount
	if err := row.Scan(
		&admin.ID,
		&admin.Email,
		&admin.Role,
		&admin.IsSuperAdmin,
		&admin.IsActive,
		&admin.LastLoginAt,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &admin, nil
}
