package httptransport

import (
	"log/slog"

	"github.com/amirzhanov/jobboard-auth/internal/domain"
	"github.com/amirzhanov/jobboard-auth/internal/transport/http/handler"
	"github.com/amirzhanov/jobboard-auth/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(logger *slog.Logger, authHandler *handler.AuthHandler, accountHandler *handler.AccountHandler, jwtKey []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	users := r.Group("/users")

	// Public auth flows
	users.POST("/sign-up", authHandler.SignUp)
	users.POST("/verify-email", authHandler.VerifyEmail)
	users.POST("/resend-otp", authHandler.ResendOtp)
	users.POST("/sign-in", authHandler.SignIn)
	users.POST("/forget-password", accountHandler.ForgetPassword)

	// Account routes require a session token; both roles may manage
	// their own account.
	authMW := middleware.Auth(jwtKey)
	anyRole := middleware.RequireRole(domain.RoleUser, domain.RoleCompanyHR)

	account := users.Group("", authMW, anyRole)
	account.POST("/generate-otp", authHandler.GenerateOtp)
	account.GET("/account-details", accountHandler.GetDetails)
	account.GET("/specific-account/:id", accountHandler.SpecificAccount)
	account.PUT("/update-account", accountHandler.UpdateAccount)
	account.PUT("/update-password", accountHandler.UpdatePassword)
	account.DELETE("/delete-account", accountHandler.DeleteAccount)
	account.GET("/accounts-with-recovery-email/:email", accountHandler.AccountsWithRecoveryEmail)

	return r
}
