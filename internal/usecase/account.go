package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirzhanov/jobboard-auth/internal/domain"
	"github.com/amirzhanov/jobboard-auth/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type AccountUsecase struct {
	users      repository.UserRepository
	otps       repository.OtpRepository
	bcryptCost int
}

func NewAccountUsecase(users repository.UserRepository, otps repository.OtpRepository, bcryptCost int) *AccountUsecase {
	return &AccountUsecase{users: users, otps: otps, bcryptCost: bcryptCost}
}

func (u *AccountUsecase) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

type UpdateAccountInput struct {
	FirstName     *string
	LastName      *string
	Email         *string
	MobileNumber  *string
	RecoveryEmail *string
	DOB           *string
	Otp           string
}

// UpdateAccount applies a sparse update to the caller's record. Claiming
// a new email or mobile number requires a code issued for the new email
// (generate-otp first) and fails when another account holds the value.
func (u *AccountUsecase) UpdateAccount(ctx context.Context, callerID string, in UpdateAccountInput) (*domain.User, error) {
	if in.Email != nil || in.MobileNumber != nil {
		newEmail := deref(in.Email)
		newMobile := deref(in.MobileNumber)

		_, err := u.users.FindByEmailOrMobile(ctx, newEmail, newMobile)
		if err == nil {
			return nil, domain.ErrDuplicateUser
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("lookup duplicates: %w", err)
		}

		// The live code must be bound to the submitted email.
		if _, err := u.otps.FindLiveByEmailAndCode(ctx, newEmail, in.Otp); err != nil {
			if errors.Is(err, domain.ErrOtpExpired) {
				return nil, domain.ErrOtpInvalid
			}
			return nil, fmt.Errorf("lookup otp: %w", err)
		}
	}

	updated, err := u.users.Update(ctx, callerID, repository.UserUpdate{
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         in.Email,
		MobileNumber:  in.MobileNumber,
		RecoveryEmail: in.RecoveryEmail,
		DOB:           in.DOB,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

// UpdatePassword re-authenticates with the current password before
// accepting the new one.
func (u *AccountUsecase) UpdatePassword(ctx context.Context, callerID, current, next string) error {
	user, err := u.users.FindByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), u.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := u.users.SetPasswordHash(ctx, callerID, string(hash)); err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	return nil
}

// ForgetPassword is the anonymous recovery path: a valid {email, code}
// pair replaces the hash without knowing the old password.
func (u *AccountUsecase) ForgetPassword(ctx context.Context, emailAddr, newPassword, code string) error {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if _, err := u.otps.FindLiveByEmailAndCode(ctx, emailAddr, code); err != nil {
		if errors.Is(err, domain.ErrOtpExpired) {
			return domain.ErrOtpInvalid
		}
		return fmt.Errorf("lookup otp: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), u.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := u.users.SetPasswordHash(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	return nil
}

func (u *AccountUsecase) Delete(ctx context.Context, callerID string) error {
	if err := u.users.Delete(ctx, callerID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (u *AccountUsecase) AccountsByRecoveryEmail(ctx context.Context, recoveryEmail string) ([]*domain.User, error) {
	users, err := u.users.ListByRecoveryEmail(ctx, recoveryEmail)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return users, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
