package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gymdesk/internal/adapters/email"
	web "gymdesk/internal/adapters/http"
	"gymdesk/internal/adapters/http/perf"
	"gymdesk/internal/adapters/sms"
	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/auth"
	"gymdesk/internal/config"
	"gymdesk/internal/logging"

	"github.com/google/uuid"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("startup_failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	logging.Setup(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := perf.NewCollector(perf.DefaultRingSize)
	opened, err := openStorage(cfg.Storage, collector)
	if err != nil {
		return err
	}
	defer opened.close()

	// Seed the first admin when the account store is empty
	seedDeps := orchestrators.CreateAccountDeps{
		AccountStore: opened.stores.AccountStore,
		GenerateID:   func() string { return uuid.New().String() },
		Now:          time.Now,
	}
	if err := orchestrators.ExecuteSeedAdmin(ctx, seedDeps, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return err
	}

	sender := email.NewSender(cfg.Email.ResendKey, cfg.Email.From)
	if cfg.Email.ResendKey == "" && cfg.IsProduction() {
		slog.Warn("email_event", "event", "delivery_disabled", "hint", "set GYM_EMAIL_RESEND_KEY")
	}

	gateway := sms.NewHTTPGateway(sms.Config{
		BaseURL:  cfg.OTP.ProviderURL,
		APIKey:   cfg.OTP.APIKey,
		Template: cfg.OTP.Template,
		Timeout:  cfg.OTP.Timeout,
		DryRun:   cfg.OTP.DryRun,
	})
	if gateway.DryRun() {
		slog.Warn("otp_event", "event", "dry_run", "hint", "codes are logged, not sent")
	}

	handler := web.NewMux(ctx, web.Deps{
		Stores:      opened.stores,
		Tokens:      auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TTL),
		SMS:         gateway,
		EmailSender: sender,
		Collector:   collector,
	}, web.Options{
		Version:            version,
		StorageBackend:     opened.backend,
		CSRFKey:            cfg.CSRFKey,
		TrustedOrigins:     cfg.TrustedOrigins,
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		SlowRequestMs:      cfg.SlowRequestMs,
		EmailFrom:          cfg.Email.From,
		EmailReplyTo:       cfg.Email.ReplyTo,
		GymName:            cfg.GymName,
		ReminderDays:       cfg.ReminderDays,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_event", "event", "listening", "addr", cfg.Addr, "version", version,
			"env", cfg.Env, "storage", opened.backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("server_event", "event", "shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
