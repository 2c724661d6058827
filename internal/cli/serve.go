package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dealership/internal/config"
	"dealership/internal/handlers"
	"dealership/internal/logger"
	"dealership/internal/migrations"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API and the awaiting-tracking reminder job.

The schema is migrated on startup unless --migrate=false is given.`,
	Example: `  # Start on the configured port
  dealership serve

  # Start without touching the schema
  dealership serve --migrate=false`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Bool("migrate", true, "Migrate the schema before serving")
	serveCmd.Flags().Duration("shutdown-timeout", 15*time.Second, "Grace period for in-flight requests")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")
	migrate, _ := cmd.Flags().GetBool("migrate")
	shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if migrate {
		if err := migrations.RunMigrations(ctx, a.db, migrationOptions(cfg, false)); err != nil {
			return err
		}
	}

	if cfg.ReminderCron != "" {
		if err := a.reminders.Start(cfg.ReminderCron); err != nil {
			return err
		}
		defer a.reminders.Stop()
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handlers.NewRouter(a.services, cfg.StorageDir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func migrationOptions(cfg *config.Config, reset bool) migrations.Options {
	return migrations.Options{
		Reset:         reset,
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		RateDZDUSDT:   cfg.DefaultRateDZDUSDT,
		RateUSDTKRW:   cfg.DefaultRateUSDTKRW,
	}
}
