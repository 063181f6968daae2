package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sleephaven/sleephaven/internal/backup"
	"github.com/sleephaven/sleephaven/internal/config"
	"github.com/sleephaven/sleephaven/internal/database"
	"github.com/sleephaven/sleephaven/internal/email"
	"github.com/sleephaven/sleephaven/internal/logging"
	"github.com/sleephaven/sleephaven/internal/payment"
	"github.com/sleephaven/sleephaven/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	emailClient := email.NewClient(cfg.PostmarkToken, cfg.FromEmail)

	srv := server.New(db, server.Config{
		Stripe: payment.Config{
			SecretKey:  cfg.StripeSecretKey,
			SuccessURL: cfg.FrontendURL + "/payment-success?session_id={CHECKOUT_SESSION_ID}",
			CancelURL:  cfg.FrontendURL + "/payment-cancel",
		},
		JWTSecret:   cfg.JWTSecret,
		TokenTTL:    cfg.TokenTTL,
		EmailClient: emailClient,
	}, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	// Hourly rate-limiter sweep
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			case <-bgCtx.Done():
				return
			}
		}
	}()

	// Nightly database snapshots when a bucket is configured
	backupMgr := backup.NewManager(backup.S3Config{
		Endpoint:  cfg.BackupEndpoint,
		Bucket:    cfg.BackupBucket,
		Region:    cfg.BackupRegion,
		AccessKey: cfg.BackupAccessKey,
		SecretKey: cfg.BackupSecretKey,
	}, db, logger.With("component", "backup"))
	if backupMgr.Enabled() {
		go backupMgr.Run(bgCtx, 24*time.Hour)
	}

	go func() {
		slog.Info("sleephaven api starting", "addr", ":"+cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	bgCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
