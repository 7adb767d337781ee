package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lcs-staffing/admin-console/internal/domain"
)

// JobFilter narrows job listings. Results are always newest first.
type JobFilter struct {
	Status *domain.JobStatus
	Limit  int
}

// JobRepository encapsulates persistence for the jobs collection.
type JobRepository interface {
	Create(ctx context.Context, job *domain.JobPosting) error
	Update(ctx context.Context, job *domain.JobPosting) error
	UpdateStatus(ctx context.Context, job *domain.JobPosting) error
	GetByID(ctx context.Context, id string) (*domain.JobPosting, error)
	List(ctx context.Context, filter JobFilter) ([]domain.JobPosting, error)
	Delete(ctx context.Context, id string) error
}

type jobRepository struct {
	pool *pgxpool.Pool
}

// NewJobRepository instantiates the repository.
func NewJobRepository(pool *pgxpool.Pool) JobRepository {
	return &jobRepository{pool: pool}
}

const jobColumns = `id, title, description, company, location, latitude, longitude, account_manager,
               responsibilities, requirements, image_url, status, created_by, created_at, updated_at,
               deactivated_at, reactivated_at`

// Create inserts the posting; id and created_at are assigned by the database.
func (r *jobRepository) Create(ctx context.Context, job *domain.JobPosting) error {
	const query = `
        INSERT INTO jobs (title, description, company, location, latitude, longitude, account_manager,
                          responsibilities, requirements, image_url, status, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at`

	lat, lng := coordinateArgs(job.Coordinates)
	return r.pool.QueryRow(ctx, query,
		job.Title,
		job.Description,
		job.Company,
		job.Location,
		lat,
		lng,
		job.AccountManager,
		nonNil(job.Responsibilities),
		nonNil(job.Requirements),
		job.ImageURL,
		job.Status,
		job.CreatedBy,
	).Scan(&job.ID, &job.CreatedAt)
}

// Update writes the editable fields. status, created_at and id are never touched here.
func (r *jobRepository) Update(ctx context.Context, job *domain.JobPosting) error {
	const query = `
        UPDATE jobs SET title=$1, description=$2, company=$3, location=$4, latitude=$5, longitude=$6,
            account_manager=$7, responsibilities=$8, requirements=$9, image_url=$10, updated_at=NOW()
        WHERE id=$11
        RETURNING updated_at`

	lat, lng := coordinateArgs(job.Coordinates)
	return r.pool.QueryRow(ctx, query,
		job.Title,
		job.Description,
		job.Company,
		job.Location,
		lat,
		lng,
		job.AccountManager,
		nonNil(job.Responsibilities),
		nonNil(job.Requirements),
		job.ImageURL,
		job.ID,
	).Scan(&job.UpdatedAt)
}

// UpdateStatus persists the status and both transition stamps as set by JobPosting.Transition.
func (r *jobRepository) UpdateStatus(ctx context.Context, job *domain.JobPosting) error {
	cmd, err := r.pool.Exec(ctx, `
        UPDATE jobs SET status=$1, deactivated_at=$2, reactivated_at=$3
        WHERE id=$4`,
		job.Status,
		job.DeactivatedAt,
		job.ReactivatedAt,
		job.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *jobRepository) GetByID(ctx context.Context, id string) (*domain.JobPosting, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id=$1`
	return scanJob(r.pool.QueryRow(ctx, query, id))
}

func (r *jobRepository) List(ctx context.Context, filter JobFilter) ([]domain.JobPosting, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	args := []any{}
	clauses := []string{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.JobPosting{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *job)
	}
	return result, rows.Err()
}

func (r *jobRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM jobs WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanJob(row pgx.Row) (*domain.JobPosting, error) {
	var (
		job      domain.JobPosting
		lat, lng *float64
	)
	if err := row.Scan(
		&job.ID,
		&job.Title,
		&job.Description,
		&job.Company,
		&job.Location,
		&lat,
		&lng,
		&job.AccountManager,
		&job.Responsibilities,
		&job.Requirements,
		&job.ImageURL,
		&job.Status,
		&job.CreatedBy,
		&job.CreatedAt,
		&job.UpdatedAt,
		&job.DeactivatedAt,
		&job.ReactivatedAt,
	); err != nil {
		return nil, err
	}
	if lat != nil && lng != nil {
		job.Coordinates = &domain.Coordinates{Latitude: *lat, Longitude: *lng}
	}
	return &job, nil
}

func coordinateArgs(c *domain.Coordinates) (*float64, *float64) {
	if c == nil {
		return nil, nil
	}
	lat, lng := c.Latitude, c.Longitude
	return &lat, &lng
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
