package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lcs-staffing/admin-console/internal/domain"
)

// CredentialRepository stores the identity provider's login records.
type CredentialRepository interface {
	Create(ctx context.Context, cred *domain.Credential) error
	GetByUID(ctx context.Context, uid string) (*domain.Credential, error)
	GetByEmail(ctx context.Context, email string) (*domain.Credential, error)
	UpdateEmail(ctx context.Context, uid, email string) error
	UpdatePassword(ctx context.Context, uid, hash string) error
}

type credentialRepository struct {
	pool *pgxpool.Pool
}

// NewCredentialRepository returns a Postgres-backed implementation.
func NewCredentialRepository(pool *pgxpool.Pool) CredentialRepository {
	return &credentialRepository{pool: pool}
}

func (r *credentialRepository) Create(ctx context.Context, cred *domain.Credential) error {
	const query = `
        INSERT INTO credentials (email, password_hash, disabled)
        VALUES ($1, $2, $3)
        RETURNING uid, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		cred.Email,
		cred.PasswordHash,
		cred.Disabled,
	).Scan(&cred.UID, &cred.CreatedAt, &cred.UpdatedAt)
}

func (r *credentialRepository) GetByUID(ctx context.Context, uid string) (*domain.Credential, error) {
	const query = `
        SELECT uid, email, password_hash, disabled, created_at, updated_at
        FROM credentials WHERE uid=$1`
	return scanCredential(r.pool.QueryRow(ctx, query, uid))
}

func (r *credentialRepository) GetByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	const query = `
        SELECT uid, email, password_hash, disabled, created_at, updated_at
        FROM credentials WHERE lower(email)=lower($1)`
	return scanCredential(r.pool.QueryRow(ctx, query, email))
}

func (r *credentialRepository) UpdateEmail(ctx context.Context, uid, email string) error {
	return r.exec(ctx, `UPDATE credentials SET email=$1, updated_at=NOW() WHERE uid=$2`, email, uid)
}

func (r *credentialRepository) UpdatePassword(ctx context.Context, uid, hash string) error {
	return r.exec(ctx, `UPDATE credentials SET password_hash=$1, updated_at=NOW() WHERE uid=$2`, hash, uid)
}

func (r *credentialRepository) exec(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanCredential(row pgx.Row) (*domain.Credential, error) {
	var cred domain.Credential
	if err := row.Scan(
		&cred.UID,
		&cred.Email,
		&cred.PasswordHash,
		&cred.Disabled,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &cred, nil
}
