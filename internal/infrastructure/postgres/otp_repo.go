package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirzhanov/jobboard-auth/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OtpRepository struct {
	pool *pgxpool.Pool
}

func NewOtpRepository(pool *pgxpool.Pool) *OtpRepository {
	return &OtpRepository{pool: pool}
}

// Create replaces a dead row for the email or inserts a fresh one. The
// unique index on email plus the expiry guard in the upsert make two
// racing issuance requests for the same address resolve to exactly one
// live code.
func (r *OtpRepository) Create(ctx context.Context, email, code string, expiresAt time.Time) error {
	query := `
		INSERT INTO otps (email, code, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE
			SET code = EXCLUDED.code, created_at = now(), expires_at = EXCLUDED.expires_at
			WHERE otps.expires_at <= now()`

	tag, err := r.pool.Exec(ctx, query, email, code, expiresAt)
	if err != nil {
		return fmt.Errorf("insert otp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOtpAlreadyIssued
	}
	return nil
}

func (r *OtpRepository) FindLive(ctx context.Context, email string) (*domain.Otp, error) {
	query := `
		SELECT id, email, code, created_at, expires_at
		FROM otps
		WHERE email = $1 AND expires_at > now()`

	return scanOtp(r.pool.QueryRow(ctx, query, email))
}

func (r *OtpRepository) FindLiveByEmailAndCode(ctx context.Context, email, code string) (*domain.Otp, error) {
	query := `
		SELECT id, email, code, created_at, expires_at
		FROM otps
		WHERE email = $1 AND code = $2 AND expires_at > now()`

	return scanOtp(r.pool.QueryRow(ctx, query, email, code))
}

func (r *OtpRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM otps WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired otps: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanOtp(row pgx.Row) (*domain.Otp, error) {
	var o domain.Otp
	err := row.Scan(&o.ID, &o.Email, &o.Code, &o.CreatedAt, &o.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOtpExpired
		}
		return nil, fmt.Errorf("scan otp: %w", err)
	}
	return &o, nil
}
