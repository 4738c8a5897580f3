// Package main is the entrypoint for the notification dispatch worker.
//
// The worker consumes notification messages from a durable AMQP queue,
// validates each payload, renders a named Handlebars template when one is
// requested, and fans out to the matching delivery channel (email over SMTP,
// SMS via an HTTP gateway).
//
// Startup sequence:
//  1. Initialize structured logger.
//  2. Load and validate configuration (fail fast; secrets redacted in the
//     error dump).
//  3. Load and compile templates from the template directory.
//  4. Connect to the broker with bounded retry, declare the durable queue,
//     and start consuming with auto-ack.
//  5. Register the channel senders and run the dispatch loop alongside the
//     ops HTTP server until a shutdown signal arrives.
//
// Only startup-phase failures (config, templates, initial connect) exit the
// process; everything encountered while consuming is caught, logged, and
// swallowed so one bad message cannot halt the worker.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"dishpatch/internal/config"
	"dishpatch/internal/external"
	"dishpatch/internal/notify"
	emailpkg "dishpatch/internal/notify/email"
	smspkg "dishpatch/internal/notify/sms"
	"dishpatch/internal/ops"
	"dishpatch/internal/queue"
	"dishpatch/internal/templates"
	"dishpatch/internal/types"
)

// slogAdapter wraps *slog.Logger to implement the types.Logger interface.
// slog.Logger satisfies Info/Warn/Error directly but With returns
// *slog.Logger, not types.Logger, so an adapter is necessary.
type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }
func (a *slogAdapter) With(args ...any) types.Logger {
	return &slogAdapter{logger: a.logger.With(args...)}
}

// parseLogLevel maps the LOG_LEVEL config value to a slog.Level,
// defaulting to info on unrecognized input.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildSenders constructs the channel sender registry. In local mode the
// providers are stubs so the worker can boot without real SMTP or gateway
// credentials; everywhere else the real transports are wired.
func buildSenders(cfg *config.Config, slogger *slog.Logger, logger types.Logger) []notify.Sender {
	var mailer external.MailProvider
	var smsProvider external.SMSProvider

	if cfg.Environment == "local" {
		slogger.Warn("APP_ENV=local: using stub delivery providers")
		mailer = external.NewStubMailProvider(slogger)
		smsProvider = external.NewStubSMSProvider(slogger)
	} else {
		mailer = external.NewSMTPMailer(external.SMTPMailerConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.SMTPUsername,
			Password: cfg.Email.SMTPPassword.Unmask(),
			Logger:   slogger,
		})
		smsProvider = external.NewTwilioClient(
			&http.Client{Timeout: 10 * time.Second},
			external.TwilioClientConfig{
				AccountSID: cfg.SMS.AccountSID,
				AuthToken:  cfg.SMS.AuthToken.Unmask(),
				BaseURL:    cfg.SMS.GatewayURL,
				Logger:     slogger,
			},
		)
	}

	return []notify.Sender{
		emailpkg.NewChannel(emailpkg.ChannelConfig{
			Mailer: mailer,
			From: types.SenderIdentity{
				Address: cfg.Email.FromAddress,
				Name:    cfg.Email.FromName,
			},
			Subject: cfg.Email.Subject,
			Logger:  logger,
		}),
		smspkg.NewChannel(smspkg.ChannelConfig{
			Provider:   smsProvider,
			FromNumber: cfg.SMS.FromNumber,
			Logger:     logger,
		}),
	}
}

func main() {
	bootLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		// ConfigError output is safe to print: secrets are SecretString and
		// validator reports field paths, not values.
		bootLogger.Error("invalid configuration", "error", err.Error())
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})).With("service", cfg.Service)
	typedLogger := &slogAdapter{logger: logger}

	logger.Info("notify worker initializing", "env", cfg.Environment)

	// Templates load before the queue connect; the dispatch loop must never
	// start with an empty, unloadable template directory.
	store := templates.NewStore(cfg.Templates.Dir, typedLogger)
	if err := store.Load(); err != nil {
		logger.Error("failed to load templates", "error", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connector := queue.NewConnector(cfg.Broker, typedLogger)
	session, err := connector.Connect(ctx)
	if err != nil {
		logger.Error("failed to connect to broker", "error", err.Error())
		os.Exit(1)
	}
	defer session.Close()

	deliveries, err := session.Consume()
	if err != nil {
		logger.Error("failed to start consuming", "error", err.Error())
		os.Exit(1)
	}

	senders := buildSenders(cfg, logger, typedLogger)
	dispatcher := notify.NewDispatcher(store, senders, typedLogger)

	probes := []ops.HealthProbe{
		ops.NewProbe("broker", func(context.Context) error {
			if !session.Alive() {
				return errors.New("broker connection closed")
			}
			return nil
		}),
		ops.NewProbe("templates", func(context.Context) error {
			// The store is immutable after startup; report loaded state.
			_ = store.Len()
			return nil
		}),
	}
	opsServer := ops.NewServer(cfg.Ops.Port, probes, typedLogger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return opsServer.Run(gctx)
	})
	g.Go(func() error {
		dispatcher.Run(gctx, deliveries)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("worker exited with error", "error", err.Error())
		os.Exit(1)
	}

	logger.Info("worker stopped")
}
