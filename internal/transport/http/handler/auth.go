package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/amirzhanov/jobboard-auth/internal/domain"
	"github.com/amirzhanov/jobboard-auth/internal/metrics"
	"github.com/amirzhanov/jobboard-auth/internal/transport/http/middleware"
	"github.com/amirzhanov/jobboard-auth/internal/usecase"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	SignUp(ctx context.Context, in usecase.SignUpInput) error
	ConfirmEmail(ctx context.Context, email, code string) error
	ResendOtp(ctx context.Context, email string) error
	GenerateOtp(ctx context.Context, email string) error
	SignIn(ctx context.Context, in usecase.SignInInput) (string, error)
}

type AuthHandler struct {
	auth   authUsecaser
	logger *slog.Logger
}

func NewAuthHandler(auth authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger.With("component", "auth_handler"),
	}
}

type signUpRequest struct {
	FirstName     string `json:"first_name"     binding:"required"`
	LastName      string `json:"last_name"      binding:"required"`
	Email         string `json:"email"          binding:"required,email"`
	Password      string `json:"password"       binding:"required,min=8"`
	RecoveryEmail string `json:"recovery_email" binding:"required,email"`
	DOB           string `json:"dob"            binding:"required,datetime=2006-01-02"`
	MobileNumber  string `json:"mobile_number"  binding:"required"`
	Role          string `json:"role"           binding:"omitempty,oneof=user company_hr"`
	Status        string `json:"status"         binding:"omitempty,oneof=online offline"`
}

// POST /users/sign-up
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	dob, _ := time.Parse("2006-01-02", req.DOB)

	err := h.auth.SignUp(c.Request.Context(), usecase.SignUpInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Password:      req.Password,
		RecoveryEmail: req.RecoveryEmail,
		DOB:           dob,
		MobileNumber:  req.MobileNumber,
		Role:          domain.Role(req.Role),
		Status:        domain.Status(req.Status),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateUser):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": errUserExists})
		case errors.Is(err, domain.ErrDeliveryFailed):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": errDeliveryFailed})
		case errors.Is(err, domain.ErrOtpAlreadyIssued):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": errOtpRateLimited})
		default:
			h.logger.ErrorContext(c.Request.Context(), "sign up", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		}
		return
	}

	metrics.SignupsTotal.Inc()
	metrics.OtpIssuedTotal.WithLabelValues("sign_up").Inc()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User registered successfully, please confirm your email",
	})
}

type verifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Otp   string `json:"otp"   binding:"required"`
}

// POST /users/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if err := h.auth.ConfirmEmail(c.Request.Context(), req.Email, req.Otp); err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": errUserNotFound})
		case errors.Is(err, domain.ErrAlreadyConfirmed):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": errAlreadyConfirmed})
		case errors.Is(err, domain.ErrOtpExpired):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": errOtpExpired})
		case errors.Is(err, domain.ErrOtpInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": errOtpInvalid})
		default:
			h.logger.ErrorContext(c.Request.Context(), "verify email", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email confirmed successfully"})
}

type resendOtpRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// POST /users/resend-otp
// The code itself is never echoed in the response.
func (h *AuthHandler) ResendOtp(c *gin.Context) {
	var req resendOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if err := h.auth.ResendOtp(c.Request.Context(), req.Email); err != nil {
		h.respondOtpError(c, err, true)
		return
	}

	metrics.OtpIssuedTotal.WithLabelValues("resend").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "OTP has been sent successfully"})
}

// POST /users/generate-otp (authenticated)
// Issues a code for the caller's own email, to authorize a later
// account update.
func (h *AuthHandler) GenerateOtp(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)

	if err := h.auth.GenerateOtp(c.Request.Context(), identity.Email); err != nil {
		h.respondOtpError(c, err, false)
		return
	}

	metrics.OtpIssuedTotal.WithLabelValues("generate").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "OTP has been sent successfully"})
}

type signInRequest struct {
	Email        string `json:"email"         binding:"required_without=MobileNumber,omitempty,email"`
	MobileNumber string `json:"mobile_number" binding:"required_without=Email"`
	Password     string `json:"password"      binding:"required"`
}

// POST /users/sign-in
// A wrong password answers with the same 404 status as an unknown
// account; only the message differs. This mirrors the upstream API.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	token, err := h.auth.SignIn(c.Request.Context(), usecase.SignInInput{
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		Password:     req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			metrics.SigninsTotal.WithLabelValues("not_found").Inc()
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": errUserNotFound})
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.SigninsTotal.WithLabelValues("bad_credentials").Inc()
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": errWrongCredentials})
		case errors.Is(err, domain.ErrNotConfirmed):
			metrics.SigninsTotal.WithLabelValues("not_confirmed").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": errNotConfirmed})
		default:
			h.logger.ErrorContext(c.Request.Context(), "sign in", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		}
		return
	}

	metrics.SigninsTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User signed in successfully",
		"token":   token,
	})
}

func (h *AuthHandler) respondOtpError(c *gin.Context, err error, anonymous bool) {
	switch {
	case anonymous && errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": errUserNotFound})
	case errors.Is(err, domain.ErrOtpAlreadyIssued):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": errOtpRateLimited})
	case errors.Is(err, domain.ErrDeliveryFailed):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": errDeliveryFailed})
	default:
		h.logger.ErrorContext(c.Request.Context(), "issue otp", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
	}
}
