package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirzhanov/jobboard-auth/config"
	"github.com/amirzhanov/jobboard-auth/internal/email"
	"github.com/amirzhanov/jobboard-auth/internal/health"
	"github.com/amirzhanov/jobboard-auth/internal/infrastructure/postgres"
	"github.com/amirzhanov/jobboard-auth/internal/janitor"
	ctxlog "github.com/amirzhanov/jobboard-auth/internal/log"
	"github.com/amirzhanov/jobboard-auth/internal/metrics"
	httptransport "github.com/amirzhanov/jobboard-auth/internal/transport/http"
	"github.com/amirzhanov/jobboard-auth/internal/transport/http/handler"
	"github.com/amirzhanov/jobboard-auth/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	otpRepo := postgres.NewOtpRepository(pool)

	sender := email.NewSender(cfg.EmailProvider, cfg.ResendAPIKey, cfg.EmailFrom, email.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
	}, logger)

	authUsecase := usecase.NewAuthUsecase(userRepo, otpRepo, sender, []byte(cfg.JWTSecret), cfg.BcryptCost, cfg.OtpTTL())
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	accountUsecase := usecase.NewAccountUsecase(userRepo, otpRepo, cfg.BcryptCost)
	accountHandler := handler.NewAccountHandler(accountUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	j := janitor.New(otpRepo, logger, "@every 1m")
	if err := j.Start(ctx); err != nil {
		stop()
		log.Fatalf("janitor: %v", err)
	}

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, authHandler, accountHandler, []byte(cfg.JWTSecret)),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
