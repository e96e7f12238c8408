package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/secfolio/portfolio/analytics"
	"github.com/secfolio/portfolio/config"
	"github.com/secfolio/portfolio/contact"
	"github.com/secfolio/portfolio/handlers"
	"github.com/secfolio/portfolio/logging"
	"github.com/secfolio/portfolio/middleware"
)

const (
	shutdownTimeout   = 10 * time.Second
	retentionInterval = 24 * time.Hour
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the portfolio web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context(), globalConfig)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address; overrides ADDR and PORT")
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	logger, err := logging.New(level(), gin.Mode() == gin.DebugMode)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := handlers.Deps{
		Feed:       newLoader(logger),
		Sessions:   newSessions(cfg.Contact, logger),
		ResetDelay: cfg.Contact.SuccessDisplay,
		Links:      cfg.Links,
		Logger:     logger,
		AdminToken: cfg.AdminToken,
	}

	if cfg.Analytics.DBPath != "" {
		store, err := analytics.Open(ctx, cfg.Analytics.DBPath)
		if err != nil {
			return fmt.Errorf("opening analytics database: %w", err)
		}
		hasher, err := analytics.NewHasher()
		if err != nil {
			_ = store.Close()
			return err
		}
		tracker := middleware.NewVisitTracker(store, hasher, logger)
		deps.Analytics = store
		deps.Tracker = tracker

		retentionCtx, cancelRetention := context.WithCancel(ctx)
		retentionDone := make(chan struct{})
		go func() {
			defer close(retentionDone)
			if cfg.Analytics.Retention > 0 {
				store.RunRetention(retentionCtx, cfg.Analytics.Retention, retentionInterval, logger)
			}
		}()
		defer func() {
			cancelRetention()
			<-retentionDone
			// Runs after Shutdown, so no new visits can be handed off.
			tracker.Wait()
			if err := store.Close(); err != nil {
				logger.Warn("closing analytics database failed", zap.Error(err))
			}
		}()

		logger.Info("visit analytics enabled",
			zap.String("db", cfg.Analytics.DBPath),
			zap.Bool("admin_api", cfg.AdminToken != ""))
	}

	router, err := handlers.SetupRouter(deps)
	if err != nil {
		return err
	}

	addr := cfg.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", addr),
			zap.String("github_user", cfg.GitHub.Username))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listening on %s: %w", addr, err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// newSessions gives every web visitor their own simulated-delivery form.
func newSessions(cfg config.ContactConfig, logger *zap.Logger) *contact.Sessions {
	return contact.NewSessions(cfg.SessionTTL, func() *contact.Controller {
		return contact.NewController(
			contact.Simulated{Delay: cfg.SubmitDelay},
			contact.WithResetDelay(cfg.SuccessDisplay),
			contact.WithLogger(logger),
		)
	})
}
