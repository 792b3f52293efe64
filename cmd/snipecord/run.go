package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/snipecord/internal/adapter/driven/discord"
	"github.com/ericfisherdev/snipecord/internal/adapter/driven/events"
	"github.com/ericfisherdev/snipecord/internal/adapter/driven/soc"
	sqliteadapter "github.com/ericfisherdev/snipecord/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/snipecord/internal/adapter/driven/telegram"
	httphandler "github.com/ericfisherdev/snipecord/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/snipecord/internal/adapter/driving/web"
	"github.com/ericfisherdev/snipecord/internal/application"
	"github.com/ericfisherdev/snipecord/internal/config"
	"github.com/ericfisherdev/snipecord/internal/domain/port/driven"
)

func runCommand(cmd *cobra.Command, configPath string) error {
	cfg, logger, err := loadConfig(configPath, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runWatcher(ctx, cfg, logger)
}

// runWatcher wires the adapters and blocks in the poll loop until ctx is
// canceled. Startup failures are returned; per-tick failures are logged.
func runWatcher(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("config loaded",
		"semester", cfg.Query().Semester(),
		"campus", cfg.Campus,
		"level", cfg.Level,
		"indexes", len(cfg.Indexes),
		"repeat_timeout", cfg.RepeatTimeout,
		"poll_interval", cfg.PollInterval,
	)

	query := cfg.Query()
	socClient := soc.NewClient(cfg.SOCBaseURL)

	// 1. Resolve display labels once; the watcher cannot start without them.
	labels, err := application.LoadLabels(ctx, socClient, query, cfg.Indexes, logger)
	if err != nil {
		return err
	}
	table := application.NewSuppressionTable(cfg.Indexes, labels, cfg.RepeatTimeout)

	// 2. Notification channels.
	notifiers, err := buildNotifiers(cfg)
	if err != nil {
		return err
	}

	// 3. Optional notification history.
	var history driven.NotificationStore
	if cfg.DBPath != "" {
		db, err := sqliteadapter.NewDB(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open history database: %w", err)
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		schema, err := sqliteadapter.MigrateHistory(db.Writer)
		if err != nil {
			return err
		}
		if schema.Upgraded() {
			logger.Info("notification history schema upgraded", "from", schema.From, "to", schema.To)
		}
		history = sqliteadapter.NewNotificationRepo(db)
		logger.Info("notification history enabled", "path", db.Path(), "schema_version", schema.To)
	}

	// 4. Optional event bus.
	var publisher driven.EventPublisher = events.NoopPublisher{}
	if cfg.NATSURL != "" {
		natsPub, err := events.NewNATSPublisher(cfg.NATSURL, logger)
		if err != nil {
			return err
		}
		publisher = natsPub
		logger.Info("nats publishing enabled", "url", cfg.NATSURL)
	}
	defer func() {
		if closeErr := publisher.Close(); closeErr != nil {
			logger.Error("error closing event publisher", "error", closeErr)
		}
	}()

	dispatcher := application.NewNotificationDispatcher(notifiers, history, publisher, query, cfg.Mention, logger)
	pollSvc := application.NewPollService(socClient, table, dispatcher, query, cfg.PollInterval, logger)

	// 5. Optional status server.
	var srv *http.Server
	if cfg.ListenAddr != "" {
		srv = newStatusServer(cfg, pollSvc, history, logger)
		go func() {
			logger.Info("http server starting", "addr", cfg.ListenAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	} else {
		logger.Info("status server disabled, set listen_addr to enable the API and container healthcheck")
	}

	dispatcher.SendReady(ctx, cfg.Indexes)
	logger.Info("snipecord started",
		"channels", dispatcher.Channels(),
		"watching", table.Len(),
	)

	// 6. Poll until shutdown.
	pollSvc.Start(ctx)
	logger.Info("shutting down")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

func buildNotifiers(cfg *config.Config) ([]driven.Notifier, error) {
	var notifiers []driven.Notifier
	if cfg.Webhook != "" {
		notifiers = append(notifiers, discord.NewWebhook(cfg.Webhook))
	}
	if cfg.HasTelegram() {
		tg, err := telegram.New(telegram.Options{Token: cfg.TelegramToken, ChatID: cfg.TelegramChatID})
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, tg)
	}
	return notifiers, nil
}

func newStatusServer(cfg *config.Config, pollSvc *application.PollService, history driven.NotificationStore, logger *slog.Logger) *http.Server {
	query := cfg.Query()
	apiHandler := httphandler.NewHandler(pollSvc, history, query, logger)
	webHandler := webhandler.NewHandler(pollSvc, history, query, logger)

	handler := httphandler.NewServeMux(apiHandler, logger, func(mux *http.ServeMux) {
		webhandler.RegisterRoutes(mux, webHandler)
	})

	return &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
