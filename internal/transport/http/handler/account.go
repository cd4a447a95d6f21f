package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/amirzhanov/jobboard-auth/internal/domain"
	"github.com/amirzhanov/jobboard-auth/internal/transport/http/middleware"
	"github.com/amirzhanov/jobboard-auth/internal/usecase"
	"github.com/gin-gonic/gin"
)

type accountUsecaser interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	UpdateAccount(ctx context.Context, callerID string, in usecase.UpdateAccountInput) (*domain.User, error)
	UpdatePassword(ctx context.Context, callerID, current, next string) error
	ForgetPassword(ctx context.Context, email, newPassword, code string) error
	Delete(ctx context.Context, callerID string) error
	AccountsByRecoveryEmail(ctx context.Context, recoveryEmail string) ([]*domain.User, error)
}

type AccountHandler struct {
	account accountUsecaser
	logger  *slog.Logger
}

func NewAccountHandler(account accountUsecaser, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		account: account,
		logger:  logger.With("component", "account_handler"),
	}
}

type userResponse struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	RecoveryEmail string `json:"recovery_email"`
	DOB           string `json:"dob"`
	Role          string `json:"role"`
	Status        string `json:"status"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Username:      u.Username,
		Email:         u.Email,
		RecoveryEmail: u.RecoveryEmail,
		DOB:           u.DOB.Format("2006-01-02"),
		Role:          string(u.Role),
		Status:        string(u.Status),
	}
}

// GET /users/account-details
func (h *AccountHandler) GetDetails(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)

	user, err := h.account.Get(c.Request.Context(), identity.UserID)
	if err != nil {
		h.respondAccountError(c, "get account details", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": toUserResponse(user)})
}

// GET /users/specific-account/:id
func (h *AccountHandler) SpecificAccount(c *gin.Context) {
	user, err := h.account.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondAccountError(c, "get specific account", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": toUserResponse(user)})
}

type updateAccountRequest struct {
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	Email         *string `json:"email"          binding:"omitempty,email"`
	MobileNumber  *string `json:"mobile_number"`
	RecoveryEmail *string `json:"recovery_email" binding:"omitempty,email"`
	DOB           *string `json:"dob"            binding:"omitempty,datetime=2006-01-02"`
	Otp           string  `json:"otp"            binding:"required_with=Email MobileNumber"`
}

type updatedFieldsResponse struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	MobileNumber  string `json:"mobile_number"`
	RecoveryEmail string `json:"recovery_email"`
	DOB           string `json:"dob"`
}

// PUT /users/update-account
// Changing email or mobile number requires a live code bound to the
// submitted email (issued via generate-otp).
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)

	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	user, err := h.account.UpdateAccount(c.Request.Context(), identity.UserID, usecase.UpdateAccountInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		MobileNumber:  req.MobileNumber,
		RecoveryEmail: req.RecoveryEmail,
		DOB:           req.DOB,
		Otp:           req.Otp,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateUser):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": errDuplicateContact})
		case errors.Is(err, domain.ErrOtpInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": errOtpInvalid})
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": errUserNotFound})
		default:
			h.logger.ErrorContext(c.Request.Context(), "update account", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User updated successfully",
		"data": updatedFieldsResponse{
			FirstName:     user.FirstName,
			LastName:      user.LastName,
			Email:         user.Email,
			MobileNumber:  user.MobileNumber,
			RecoveryEmail: user.RecoveryEmail,
			DOB:           user.DOB.Format("2006-01-02"),
		},
	})
}

type updatePasswordRequest struct {
	Password    string `json:"password"     binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// PUT /users/update-password
func (h *AccountHandler) UpdatePassword(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)

	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	err := h.account.UpdatePassword(c.Request.Context(), identity.UserID, req.Password, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": errPasswordIncorrect})
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": errUserNotFound})
		default:
			h.logger.ErrorContext(c.Request.Context(), "update password", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password updated successfully"})
}

type forgetPasswordRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Otp      string `json:"otp"      binding:"required"`
}

// POST /users/forget-password
// The anonymous recovery path: no old password required.
func (h *AccountHandler) ForgetPassword(c *gin.Context) {
	var req forgetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	err := h.account.ForgetPassword(c.Request.Context(), req.Email, req.Password, req.Otp)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": errUserNotFound})
		case errors.Is(err, domain.ErrOtpInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": errOtpInvalid})
		default:
			h.logger.ErrorContext(c.Request.Context(), "forget password", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset successfully"})
}

// DELETE /users/delete-account
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)

	if err := h.account.Delete(c.Request.Context(), identity.UserID); err != nil {
		h.respondAccountError(c, "delete account", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted successfully"})
}

// GET /users/accounts-with-recovery-email/:email
func (h *AccountHandler) AccountsWithRecoveryEmail(c *gin.Context) {
	users, err := h.account.AccountsByRecoveryEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "accounts by recovery email", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}

	emails := make([]string, 0, len(users))
	for _, u := range users {
		emails = append(emails, u.Email)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": emails})
}

func (h *AccountHandler) respondAccountError(c *gin.Context, op string, err error) {
	if errors.Is(err, domain.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": errUserNotFound})
		return
	}
	h.logger.ErrorContext(c.Request.Context(), op, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
}
