package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/amirzhanov/jobboard-auth/internal/domain"
	"github.com/amirzhanov/jobboard-auth/internal/email"
	"github.com/amirzhanov/jobboard-auth/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = 7 * 24 * time.Hour

type AuthUsecase struct {
	users      repository.UserRepository
	otps       repository.OtpRepository
	sender     email.Sender
	jwtKey     []byte
	bcryptCost int
	otpTTL     time.Duration
}

func NewAuthUsecase(users repository.UserRepository, otps repository.OtpRepository, sender email.Sender, jwtKey []byte, bcryptCost int, otpTTL time.Duration) *AuthUsecase {
	return &AuthUsecase{
		users:      users,
		otps:       otps,
		sender:     sender,
		jwtKey:     jwtKey,
		bcryptCost: bcryptCost,
		otpTTL:     otpTTL,
	}
}

type SignUpInput struct {
	FirstName     string
	LastName      string
	Email         string
	Password      string
	RecoveryEmail string
	DOB           time.Time
	MobileNumber  string
	Role          domain.Role
	Status        domain.Status
}

// SignUp registers an unconfirmed account and emails it a confirmation
// code. Nothing is persisted unless the notifier accepts delivery.
func (u *AuthUsecase) SignUp(ctx context.Context, in SignUpInput) error {
	_, err := u.users.FindByEmail(ctx, in.Email)
	if err == nil {
		return domain.ErrDuplicateUser
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("lookup user: %w", err)
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	if err := u.deliver(ctx, in.Email, "Confirm Your Account", code); err != nil {
		return err
	}
	if err := u.otps.Create(ctx, in.Email, code, time.Now().Add(u.otpTTL)); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	status := in.Status
	if status == "" {
		status = domain.StatusOffline
	}

	_, err = u.users.Create(ctx, &domain.User{
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Username:      newUsername(in.FirstName, in.LastName),
		Email:         in.Email,
		PasswordHash:  string(hash),
		RecoveryEmail: in.RecoveryEmail,
		DOB:           in.DOB,
		MobileNumber:  in.MobileNumber,
		Role:          role,
		Status:        status,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			return domain.ErrDuplicateUser
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// ConfirmEmail flips the confirmation flag once the submitted code
// matches the live OTP for the address. The flag never flips back.
func (u *AuthUsecase) ConfirmEmail(ctx context.Context, emailAddr, code string) error {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	if user.Confirmed {
		return domain.ErrAlreadyConfirmed
	}

	otp, err := u.otps.FindLive(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrOtpExpired) {
			return domain.ErrOtpExpired
		}
		return fmt.Errorf("lookup otp: %w", err)
	}
	if !codesEqual(otp.Code, code) {
		return domain.ErrOtpInvalid
	}

	if err := u.users.SetConfirmed(ctx, user.ID); err != nil {
		return fmt.Errorf("confirm user: %w", err)
	}
	return nil
}

// ResendOtp issues a fresh confirmation code for an existing account.
// One issuance per TTL window: a live code blocks the next one.
func (u *AuthUsecase) ResendOtp(ctx context.Context, emailAddr string) error {
	if _, err := u.users.FindByEmail(ctx, emailAddr); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	return u.issue(ctx, emailAddr, "Confirm Your Account")
}

// GenerateOtp issues a code for the authenticated caller's own email,
// used to authorize a later account update.
func (u *AuthUsecase) GenerateOtp(ctx context.Context, emailAddr string) error {
	return u.issue(ctx, emailAddr, "Your Otp")
}

type SignInInput struct {
	Email        string
	MobileNumber string
	Password     string
}

// SignIn checks credentials, requires a confirmed email, marks the
// account online and returns a signed 7-day session token.
func (u *AuthUsecase) SignIn(ctx context.Context, in SignInInput) (string, error) {
	user, err := u.users.FindByEmailOrMobile(ctx, in.Email, in.MobileNumber)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrUserNotFound
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}
	if !user.Confirmed {
		return "", domain.ErrNotConfirmed
	}

	if err := u.users.SetStatus(ctx, user.ID, domain.StatusOnline); err != nil {
		return "", fmt.Errorf("set status: %w", err)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(sessionTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.jwtKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// issue is the shared OTP issuance path: reject while a live code
// exists, then deliver and persist.
func (u *AuthUsecase) issue(ctx context.Context, emailAddr, subject string) error {
	_, err := u.otps.FindLive(ctx, emailAddr)
	if err == nil {
		return domain.ErrOtpAlreadyIssued
	}
	if !errors.Is(err, domain.ErrOtpExpired) {
		return fmt.Errorf("lookup otp: %w", err)
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	if err := u.deliver(ctx, emailAddr, subject, code); err != nil {
		return err
	}
	if err := u.otps.Create(ctx, emailAddr, code, time.Now().Add(u.otpTTL)); err != nil {
		if errors.Is(err, domain.ErrOtpAlreadyIssued) {
			// Lost the race against a concurrent issuance for the same email.
			return domain.ErrOtpAlreadyIssued
		}
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

func (u *AuthUsecase) deliver(ctx context.Context, to, subject, code string) error {
	body := fmt.Sprintf("<h1>Your Otp is %s</h1>", code)
	if err := u.sender.Send(ctx, to, subject, body); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}
	return nil
}

func newUsername(firstName, lastName string) string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		// crypto/rand never fails on supported platforms
		return firstName + lastName
	}
	return fmt.Sprintf("%s%s%04d", firstName, lastName, n.Int64())
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// codesEqual compares the stored and submitted codes numerically, so
// "007" and "7" match.
func codesEqual(stored, submitted string) bool {
	a, err := strconv.Atoi(stored)
	if err != nil {
		return false
	}
	b, err := strconv.Atoi(submitted)
	if err != nil {
		return false
	}
	return a == b
}
