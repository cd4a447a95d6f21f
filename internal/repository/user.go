package repository

import (
	"context"

	"github.com/amirzhanov/jobboard-auth/internal/domain"
)

// UserUpdate is a sparse update; nil fields are left unchanged.
type UserUpdate struct {
	FirstName     *string
	LastName      *string
	Email         *string
	MobileNumber  *string
	RecoveryEmail *string
	DOB           *string
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByEmailOrMobile matches a record holding either value.
	FindByEmailOrMobile(ctx context.Context, email, mobile string) (*domain.User, error)
	ListByRecoveryEmail(ctx context.Context, recoveryEmail string) ([]*domain.User, error)
	Update(ctx context.Context, id string, upd UserUpdate) (*domain.User, error)
	SetConfirmed(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status domain.Status) error
	SetPasswordHash(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
}
