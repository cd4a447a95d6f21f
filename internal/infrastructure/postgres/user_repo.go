package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirzhanov/jobboard-auth/internal/domain"
	"github.com/amirzhanov/jobboard-auth/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, first_name, last_name, username, email, password_hash,
	recovery_email, dob, mobile_number, role, status, is_confirmed, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (
			first_name, last_name, username, email, password_hash,
			recovery_email, dob, mobile_number, role, status, is_confirmed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query,
		u.FirstName, u.LastName, u.Username, u.Email, u.PasswordHash,
		u.RecoveryEmail, u.DOB, u.MobileNumber, u.Role, u.Status, u.Confirmed,
	)
	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateUser
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) FindByEmailOrMobile(ctx context.Context, email, mobile string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 OR mobile_number = $2 LIMIT 1`
	return scanUser(r.pool.QueryRow(ctx, query, email, mobile))
}

func (r *UserRepository) ListByRecoveryEmail(ctx context.Context, recoveryEmail string) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE recovery_email = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, recoveryEmail)
	if err != nil {
		return nil, fmt.Errorf("list by recovery email: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Update(ctx context.Context, id string, upd repository.UserUpdate) (*domain.User, error) {
	query := `
		UPDATE users SET
			first_name     = COALESCE($2, first_name),
			last_name      = COALESCE($3, last_name),
			email          = COALESCE($4, email),
			mobile_number  = COALESCE($5, mobile_number),
			recovery_email = COALESCE($6, recovery_email),
			dob            = COALESCE($7::date, dob),
			updated_at     = now()
		WHERE id = $1
		RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query, id,
		upd.FirstName, upd.LastName, upd.Email, upd.MobileNumber, upd.RecoveryEmail, upd.DOB,
	)
	u, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateUser
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) SetConfirmed(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE users SET is_confirmed = true, updated_at = now() WHERE id = $1`, id)
}

func (r *UserRepository) SetStatus(ctx context.Context, id string, status domain.Status) error {
	return r.exec(ctx, `UPDATE users SET status = $2, updated_at = now() WHERE id = $1`, id, status)
}

func (r *UserRepository) SetPasswordHash(ctx context.Context, id, hash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, hash)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, `DELETE FROM users WHERE id = $1`, id)
}

func (r *UserRepository) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.Email, &u.PasswordHash,
		&u.RecoveryEmail, &u.DOB, &u.MobileNumber, &u.Role, &u.Status, &u.Confirmed,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
