package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lcs-staffing/admin-console/internal/domain"
)

// LoginRepository keeps one sign-in audit row per account.
type LoginRepository interface {
	Record(ctx context.Context, rec *domain.LoginRecord) error
}

type loginRepository struct {
	pool *pgxpool.Pool
}

// NewLoginRepository constructs repository.
func NewLoginRepository(pool *pgxpool.Pool) LoginRepository {
	return &loginRepository{pool: pool}
}

// Record upserts the audit row and increments its login count.
func (r *loginRepository) Record(ctx context.Context, rec *domain.LoginRecord) error {
	const query = `
        INSERT INTO user_logins (user_id, email, last_login, login_count, user_agent, device)
        VALUES ($1,$2,$3,1,$4,$5)
        ON CONFLICT (user_id) DO UPDATE SET
            email=EXCLUDED.email,
            last_login=EXCLUDED.last_login,
            login_count=user_logins.login_count + 1,
            user_agent=EXCLUDED.user_agent,
            device=EXCLUDED.device
        RETURNING login_count`
	return r.pool.QueryRow(ctx, query,
		rec.UserID,
		rec.Email,
		rec.LastLogin,
		rec.UserAgent,
		rec.Device,
	).Scan(&rec.LoginCount)
}
