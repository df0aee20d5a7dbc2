package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stuurdean/municipality-dashboards/internal/domain"
)

// UserFilter defines query params for user listing.
type UserFilter struct {
	UserTypes  []domain.UserType
	IsActive   *bool
	Department *string
	Limit      int
	Offset     int
}

// UserRepository handles persistence for staff and resident records.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	SetActive(ctx context.Context, id string, active bool) error
}

const userColumns = `id, email, full_name, password_hash, user_type, department, phone_number,
       skills, is_active, current_workload, max_workload, created_at, updated_at, last_login_at`

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (email, full_name, password_hash, user_type, department, phone_number,
            skills, is_active, current_workload, max_workload)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.UserType,
		user.Department,
		user.PhoneNumber,
		user.Skills,
		user.IsActive,
		user.CurrentWorkload,
		user.MaxWorkload,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET email=$1, full_name=$2, password_hash=$3, user_type=$4, department=$5,
            phone_number=$6, skills=$7, is_active=$8, current_workload=$9, max_workload=$10, updated_at=NOW()
        WHERE id=$11`
	cmd, err := r.pool.Exec(ctx, query,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.UserType,
		user.Department,
		user.PhoneNumber,
		user.Skills,
		user.IsActive,
		user.CurrentWorkload,
		user.MaxWorkload,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.UserType,
		&user.Department,
		&user.PhoneNumber,
		&user.Skills,
		&user.IsActive,
		&user.CurrentWorkload,
		&user.MaxWorkload,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastLoginAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	args := []any{}
	clauses := []string{}

	if len(filter.UserTypes) > 0 {
		placeholders := make([]string, len(filter.UserTypes))
		for i, ut := range filter.UserTypes {
			args = append(args, ut)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("user_type IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		clauses = append(clauses, fmt.Sprintf("is_active=$%d", len(args)))
	}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY full_name ASC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.FullName,
			&user.PasswordHash,
			&user.UserType,
			&user.Department,
			&user.PhoneNumber,
			&user.Skills,
			&user.IsActive,
			&user.CurrentWorkload,
			&user.MaxWorkload,
			&user.CreatedAt,
			&user.UpdatedAt,
			&user.LastLoginAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func (r *userRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE users SET is_active=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, active, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
