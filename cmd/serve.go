package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/mark47B/rostersync/internal/app"
	"github.com/mark47B/rostersync/internal/infra/storage/pg"
	"github.com/mark47B/rostersync/internal/infra/transport/rest"
	"github.com/mark47B/rostersync/internal/infra/transport/rest/middleware"
	"github.com/mark47B/rostersync/internal/metrics"
)

func serveCmd() *cobra.Command {
	var withMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sync endpoint and dashboard API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), withMigrate)
		},
	}
	cmd.Flags().BoolVar(&withMigrate, "migrate", false, "apply migrations before start")
	return cmd
}

func runServe(ctx context.Context, withMigrate bool) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := pg.Connect(ctx, cfg.PostgresURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warnw("failed to close db", "error", err)
		}
	}()

	if withMigrate {
		if err := pg.Migrate(db, cfg.MigrationsPath); err != nil {
			return err
		}
		log.Infow("migrations applied", "path", cfg.MigrationsPath)
	}

	svc := app.NewService(
		pg.NewTeamStorage(db),
		pg.NewMemberStorage(db),
		pg.NewSyncHistoryStorage(db),
		pg.NewAlertStorage(db),
		pg.NewSchedulerStorage(db),
		pg.NewTxManager(db),
		app.WithMemberLimit(cfg.MemberLimit),
		app.WithLogger(log),
	)

	router, err := rest.NewRouter(svc, rest.RouterConfig{
		Auth: middleware.AuthConfig{
			APIToken:  cfg.APIToken,
			JWTSecret: cfg.JWTSecret,
		},
		Metrics: metrics.New(),
		Logger:  log,
	})
	if err != nil {
		return err
	}
	if cfg.APIToken == "" && cfg.JWTSecret == "" {
		log.Warn("API_TOKEN and JWT_SECRET are empty, auth is disabled")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("server exited")
	return nil
}
