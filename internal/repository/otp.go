package repository

import (
	"context"
	"time"

	"github.com/amirzhanov/jobboard-auth/internal/domain"
)

type OtpRepository interface {
	// Create inserts a code for the email. The store keeps at most one
	// row per email; if a live one exists it returns ErrOtpAlreadyIssued.
	Create(ctx context.Context, email, code string, expiresAt time.Time) error
	// FindLive returns the unexpired row for the email, or ErrOtpExpired.
	FindLive(ctx context.Context, email string) (*domain.Otp, error)
	// FindLiveByEmailAndCode matches {email, code} exactly among live rows.
	FindLiveByEmailAndCode(ctx context.Context, email, code string) (*domain.Otp, error)
	// DeleteExpired removes dead rows and reports how many were purged.
	DeleteExpired(ctx context.Context) (int64, error)
}
