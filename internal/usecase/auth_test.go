package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/amirzhanov/jobboard-auth/internal/domain"
	"github.com/amirzhanov/jobboard-auth/internal/repository"
	"github.com/amirzhanov/jobboard-auth/internal/usecase"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ---- fakes ----

type fakeUserRepo struct {
	create              func(ctx context.Context, u *domain.User) (*domain.User, error)
	findByID            func(ctx context.Context, id string) (*domain.User, error)
	findByEmail         func(ctx context.Context, email string) (*domain.User, error)
	findByEmailOrMobile func(ctx context.Context, email, mobile string) (*domain.User, error)
	listByRecoveryEmail func(ctx context.Context, recoveryEmail string) ([]*domain.User, error)
	update              func(ctx context.Context, id string, upd repository.UserUpdate) (*domain.User, error)
	setConfirmed        func(ctx context.Context, id string) error
	setStatus           func(ctx context.Context, id string, status domain.Status) error
	setPasswordHash     func(ctx context.Context, id, hash string) error
	delete              func(ctx context.Context, id string) error
}

func (r *fakeUserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	return r.create(ctx, u)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findByID(ctx, id)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeUserRepo) FindByEmailOrMobile(ctx context.Context, email, mobile string) (*domain.User, error) {
	return r.findByEmailOrMobile(ctx, email, mobile)
}

func (r *fakeUserRepo) ListByRecoveryEmail(ctx context.Context, recoveryEmail string) ([]*domain.User, error) {
	return r.listByRecoveryEmail(ctx, recoveryEmail)
}

func (r *fakeUserRepo) Update(ctx context.Context, id string, upd repository.UserUpdate) (*domain.User, error) {
	return r.update(ctx, id, upd)
}

func (r *fakeUserRepo) SetConfirmed(ctx context.Context, id string) error {
	return r.setConfirmed(ctx, id)
}

func (r *fakeUserRepo) SetStatus(ctx context.Context, id string, status domain.Status) error {
	return r.setStatus(ctx, id, status)
}

func (r *fakeUserRepo) SetPasswordHash(ctx context.Context, id, hash string) error {
	return r.setPasswordHash(ctx, id, hash)
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	return r.delete(ctx, id)
}

type fakeOtpRepo struct {
	create                 func(ctx context.Context, email, code string, expiresAt time.Time) error
	findLive               func(ctx context.Context, email string) (*domain.Otp, error)
	findLiveByEmailAndCode func(ctx context.Context, email, code string) (*domain.Otp, error)
	deleteExpired          func(ctx context.Context) (int64, error)
}

func (r *fakeOtpRepo) Create(ctx context.Context, email, code string, expiresAt time.Time) error {
	return r.create(ctx, email, code, expiresAt)
}

func (r *fakeOtpRepo) FindLive(ctx context.Context, email string) (*domain.Otp, error) {
	return r.findLive(ctx, email)
}

func (r *fakeOtpRepo) FindLiveByEmailAndCode(ctx context.Context, email, code string) (*domain.Otp, error) {
	return r.findLiveByEmailAndCode(ctx, email, code)
}

func (r *fakeOtpRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return r.deleteExpired(ctx)
}

type fakeSender struct {
	send func(ctx context.Context, to, subject, body string) error
}

func (s *fakeSender) Send(ctx context.Context, to, subject, body string) error {
	return s.send(ctx, to, subject, body)
}

// ---- helpers ----

const (
	testJWTKey     = "test-jwt-secret-at-least-32-chars!!"
	testBcryptCost = bcrypt.MinCost
)

func newAuth(users *fakeUserRepo, otps *fakeOtpRepo, sender *fakeSender) *usecase.AuthUsecase {
	return usecase.NewAuthUsecase(users, otps, sender, []byte(testJWTKey), testBcryptCost, 3*time.Minute)
}

func noUser(_ context.Context, _ string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func noLiveOtp(_ context.Context, _ string) (*domain.Otp, error) {
	return nil, domain.ErrOtpExpired
}

func acceptAll(_ context.Context, _, _, _ string) error { return nil }

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), testBcryptCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(h)
}

var signUpInput = usecase.SignUpInput{
	FirstName:     "Ada",
	LastName:      "Lovelace",
	Email:         "a@x.com",
	Password:      "p@ssw0rd1",
	RecoveryEmail: "rec@x.com",
	DOB:           time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
	MobileNumber:  "+10000000001",
}

// ---- SignUp ----

func TestSignUp_CreatesUserAndOtp_WhenDeliveryAccepted(t *testing.T) {
	var createdUsers, createdOtps int
	var storedCode, emailedBody string

	users := &fakeUserRepo{
		findByEmail: noUser,
		create: func(_ context.Context, u *domain.User) (*domain.User, error) {
			createdUsers++
			if u.Confirmed {
				t.Error("new user must start unconfirmed")
			}
			if u.Role != domain.RoleUser {
				t.Errorf("default role = %q, want %q", u.Role, domain.RoleUser)
			}
			if u.Status != domain.StatusOffline {
				t.Errorf("default status = %q, want %q", u.Status, domain.StatusOffline)
			}
			if !strings.HasPrefix(u.Username, "AdaLovelace") {
				t.Errorf("username %q does not derive from the name", u.Username)
			}
			if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(signUpInput.Password)); err != nil {
				t.Errorf("stored hash does not match password: %v", err)
			}
			return u, nil
		},
	}
	otps := &fakeOtpRepo{
		create: func(_ context.Context, email, code string, expiresAt time.Time) error {
			createdOtps++
			storedCode = code
			if !expiresAt.After(time.Now()) {
				t.Errorf("otp expiry %v is not in the future", expiresAt)
			}
			return nil
		},
	}
	sender := &fakeSender{
		send: func(_ context.Context, to, _, body string) error {
			if to != signUpInput.Email {
				t.Errorf("email sent to %q, want %q", to, signUpInput.Email)
			}
			emailedBody = body
			return nil
		},
	}

	if err := newAuth(users, otps, sender).SignUp(context.Background(), signUpInput); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if createdUsers != 1 || createdOtps != 1 {
		t.Fatalf("created %d users and %d otps, want exactly 1 and 1", createdUsers, createdOtps)
	}
	if !strings.Contains(emailedBody, storedCode) {
		t.Errorf("emailed body %q does not contain the stored code %q", emailedBody, storedCode)
	}
}

func TestSignUp_DuplicateEmail_NoSideEffects(t *testing.T) {
	users := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return &domain.User{ID: "u1", Email: signUpInput.Email}, nil
		},
	}
	otps := &fakeOtpRepo{}
	sender := &fakeSender{
		send: func(_ context.Context, _, _, _ string) error {
			t.Error("no email must be sent for a duplicate sign-up")
			return nil
		},
	}

	err := newAuth(users, otps, sender).SignUp(context.Background(), signUpInput)
	if !errors.Is(err, domain.ErrDuplicateUser) {
		t.Fatalf("want ErrDuplicateUser, got %v", err)
	}
}

func TestSignUp_DeliveryRejected_NothingPersisted(t *testing.T) {
	users := &fakeUserRepo{
		findByEmail: noUser,
		create: func(_ context.Context, _ *domain.User) (*domain.User, error) {
			t.Error("user must not be created when delivery fails")
			return nil, nil
		},
	}
	otps := &fakeOtpRepo{
		create: func(_ context.Context, _, _ string, _ time.Time) error {
			t.Error("otp must not be stored when delivery fails")
			return nil
		},
	}
	sender := &fakeSender{
		send: func(_ context.Context, _, _, _ string) error {
			return errors.New("smtp unavailable")
		},
	}

	err := newAuth(users, otps, sender).SignUp(context.Background(), signUpInput)
	if !errors.Is(err, domain.ErrDeliveryFailed) {
		t.Fatalf("want ErrDeliveryFailed, got %v", err)
	}
}

// ---- ConfirmEmail ----

func confirmFixture(confirmed bool, liveCode string) (*fakeUserRepo, *fakeOtpRepo, *bool) {
	flipped := false
	users := &fakeUserRepo{
		findByEmail: func(_ context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "u1", Email: email, Confirmed: confirmed}, nil
		},
		setConfirmed: func(_ context.Context, _ string) error {
			flipped = true
			return nil
		},
	}
	otps := &fakeOtpRepo{
		findLive: func(_ context.Context, email string) (*domain.Otp, error) {
			if liveCode == "" {
				return nil, domain.ErrOtpExpired
			}
			return &domain.Otp{Email: email, Code: liveCode}, nil
		},
	}
	return users, otps, &flipped
}

func TestConfirmEmail_MatchingCode_FlipsFlag(t *testing.T) {
	users, otps, flipped := confirmFixture(false, "123456")

	err := newAuth(users, otps, &fakeSender{}).ConfirmEmail(context.Background(), "a@x.com", "123456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !*flipped {
		t.Fatal("confirmation flag was not set")
	}
}

func TestConfirmEmail_NumericEquality(t *testing.T) {
	// "007" stored, "7" submitted: numeric comparison matches.
	users, otps, flipped := confirmFixture(false, "007")

	err := newAuth(users, otps, &fakeSender{}).ConfirmEmail(context.Background(), "a@x.com", "7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !*flipped {
		t.Fatal("confirmation flag was not set")
	}
}

func TestConfirmEmail_UnknownUser_ReturnsNotFound(t *testing.T) {
	users := &fakeUserRepo{findByEmail: noUser}

	err := newAuth(users, &fakeOtpRepo{}, &fakeSender{}).ConfirmEmail(context.Background(), "a@x.com", "123456")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
}

func TestConfirmEmail_SecondAttempt_ReturnsAlreadyConfirmed(t *testing.T) {
	users, otps, _ := confirmFixture(true, "123456")

	err := newAuth(users, otps, &fakeSender{}).ConfirmEmail(context.Background(), "a@x.com", "123456")
	if !errors.Is(err, domain.ErrAlreadyConfirmed) {
		t.Fatalf("want ErrAlreadyConfirmed, got %v", err)
	}
}

func TestConfirmEmail_NoLiveOtp_ReturnsExpired(t *testing.T) {
	users, otps, _ := confirmFixture(false, "")

	err := newAuth(users, otps, &fakeSender{}).ConfirmEmail(context.Background(), "a@x.com", "123456")
	if !errors.Is(err, domain.ErrOtpExpired) {
		t.Fatalf("want ErrOtpExpired, got %v", err)
	}
}

func TestConfirmEmail_WrongCode_ReturnsInvalid(t *testing.T) {
	users, otps, flipped := confirmFixture(false, "123456")

	err := newAuth(users, otps, &fakeSender{}).ConfirmEmail(context.Background(), "a@x.com", "654321")
	if !errors.Is(err, domain.ErrOtpInvalid) {
		t.Fatalf("want ErrOtpInvalid, got %v", err)
	}
	if *flipped {
		t.Fatal("confirmation flag must not be set on a wrong code")
	}
}

// ---- ResendOtp / GenerateOtp ----

func TestResendOtp_UnknownAccount_ReturnsNotFound(t *testing.T) {
	users := &fakeUserRepo{findByEmail: noUser}

	err := newAuth(users, &fakeOtpRepo{}, &fakeSender{}).ResendOtp(context.Background(), "a@x.com")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
}

func TestResendOtp_LiveOtpExists_RateLimited(t *testing.T) {
	users := &fakeUserRepo{
		findByEmail: func(_ context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "u1", Email: email}, nil
		},
	}
	otps := &fakeOtpRepo{
		findLive: func(_ context.Context, email string) (*domain.Otp, error) {
			return &domain.Otp{Email: email, Code: "111111"}, nil
		},
	}
	sender := &fakeSender{
		send: func(_ context.Context, _, _, _ string) error {
			t.Error("no email must be sent while a live otp exists")
			return nil
		},
	}

	err := newAuth(users, otps, sender).ResendOtp(context.Background(), "a@x.com")
	if !errors.Is(err, domain.ErrOtpAlreadyIssued) {
		t.Fatalf("want ErrOtpAlreadyIssued, got %v", err)
	}
}

func TestResendOtp_ExpiredOtp_IssuesFresh(t *testing.T) {
	var created bool
	users := &fakeUserRepo{
		findByEmail: func(_ context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "u1", Email: email}, nil
		},
	}
	otps := &fakeOtpRepo{
		findLive: noLiveOtp,
		create: func(_ context.Context, _, _ string, _ time.Time) error {
			created = true
			return nil
		},
	}
	sender := &fakeSender{send: acceptAll}

	if err := newAuth(users, otps, sender).ResendOtp(context.Background(), "a@x.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatal("fresh otp was not stored")
	}
}

func TestGenerateOtp_LostCreateRace_RateLimited(t *testing.T) {
	otps := &fakeOtpRepo{
		findLive: noLiveOtp,
		create: func(_ context.Context, _, _ string, _ time.Time) error {
			return domain.ErrOtpAlreadyIssued
		},
	}
	sender := &fakeSender{send: acceptAll}

	err := newAuth(&fakeUserRepo{}, otps, sender).GenerateOtp(context.Background(), "a@x.com")
	if !errors.Is(err, domain.ErrOtpAlreadyIssued) {
		t.Fatalf("want ErrOtpAlreadyIssued, got %v", err)
	}
}

// ---- SignIn ----

func signInUser(t *testing.T, confirmed bool) *domain.User {
	t.Helper()
	return &domain.User{
		ID:           "u1",
		Email:        "a@x.com",
		MobileNumber: "+10000000001",
		PasswordHash: hashOf(t, "p@ssw0rd1"),
		Role:         domain.RoleUser,
		Confirmed:    confirmed,
	}
}

func TestSignIn_ReturnsTokenWithIDEmailRole(t *testing.T) {
	var statusSet domain.Status
	user := signInUser(t, true)
	users := &fakeUserRepo{
		findByEmailOrMobile: func(_ context.Context, _, _ string) (*domain.User, error) {
			return user, nil
		},
		setStatus: func(_ context.Context, _ string, status domain.Status) error {
			statusSet = status
			return nil
		},
	}

	signed, err := newAuth(users, &fakeOtpRepo{}, &fakeSender{}).SignIn(context.Background(), usecase.SignInInput{
		Email:    user.Email,
		Password: "p@ssw0rd1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if statusSet != domain.StatusOnline {
		t.Errorf("status = %q, want %q", statusSet, domain.StatusOnline)
	}

	token, parseErr := jwt.Parse(signed, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected method")
		}
		return []byte(testJWTKey), nil
	})
	if parseErr != nil || !token.Valid {
		t.Fatalf("returned token is invalid: %v", parseErr)
	}

	claims := token.Claims.(jwt.MapClaims)
	if claims["sub"] != user.ID {
		t.Errorf("sub = %v, want %q", claims["sub"], user.ID)
	}
	if claims["email"] != user.Email {
		t.Errorf("email = %v, want %q", claims["email"], user.Email)
	}
	if claims["role"] != string(user.Role) {
		t.Errorf("role = %v, want %q", claims["role"], user.Role)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		t.Fatalf("exp claim: %v", err)
	}
	week := 7 * 24 * time.Hour
	if d := time.Until(exp.Time); d > week || d < week-time.Minute {
		t.Errorf("token expires in %v, want about %v", d, week)
	}
}

func TestSignIn_LookupByMobileNumber(t *testing.T) {
	user := signInUser(t, true)
	users := &fakeUserRepo{
		findByEmailOrMobile: func(_ context.Context, email, mobile string) (*domain.User, error) {
			if email == "" && mobile == user.MobileNumber {
				return user, nil
			}
			return nil, domain.ErrUserNotFound
		},
		setStatus: func(_ context.Context, _ string, _ domain.Status) error { return nil },
	}

	_, err := newAuth(users, &fakeOtpRepo{}, &fakeSender{}).SignIn(context.Background(), usecase.SignInInput{
		MobileNumber: user.MobileNumber,
		Password:     "p@ssw0rd1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSignIn_UnknownAccount_ReturnsNotFound(t *testing.T) {
	users := &fakeUserRepo{
		findByEmailOrMobile: func(_ context.Context, _, _ string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}

	_, err := newAuth(users, &fakeOtpRepo{}, &fakeSender{}).SignIn(context.Background(), usecase.SignInInput{
		Email:    "a@x.com",
		Password: "p@ssw0rd1",
	})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
}

func TestSignIn_WrongPassword_ReturnsInvalidCredentials(t *testing.T) {
	users := &fakeUserRepo{
		findByEmailOrMobile: func(_ context.Context, _, _ string) (*domain.User, error) {
			return signInUser(t, true), nil
		},
	}

	_, err := newAuth(users, &fakeOtpRepo{}, &fakeSender{}).SignIn(context.Background(), usecase.SignInInput{
		Email:    "a@x.com",
		Password: "wrong",
	})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
}

func TestSignIn_Unconfirmed_ReturnsNotConfirmed(t *testing.T) {
	users := &fakeUserRepo{
		findByEmailOrMobile: func(_ context.Context, _, _ string) (*domain.User, error) {
			return signInUser(t, false), nil
		},
	}

	_, err := newAuth(users, &fakeOtpRepo{}, &fakeSender{}).SignIn(context.Background(), usecase.SignInInput{
		Email:    "a@x.com",
		Password: "p@ssw0rd1",
	})
	if !errors.Is(err, domain.ErrNotConfirmed) {
		t.Fatalf("want ErrNotConfirmed, got %v", err)
	}
}
