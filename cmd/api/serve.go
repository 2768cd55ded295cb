package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/worklog-app/worklog-backend/config"
	"github.com/worklog-app/worklog-backend/internal/auth"
	authmiddleware "github.com/worklog-app/worklog-backend/internal/auth/middleware"
	"github.com/worklog-app/worklog-backend/internal/bootstrap"
	"github.com/worklog-app/worklog-backend/internal/logging"
	"github.com/worklog-app/worklog-backend/internal/storage/postgres"
	"github.com/worklog-app/worklog-backend/internal/timelogs/export"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations and start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logging.New(os.Stdout, cfg.App.LogLevel, cfg.IsProduction())
	bootstrap.SetGinMode(cfg.App.Environment)

	sqlDB, err := postgres.NewConnection(ctx, cfg)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := postgres.RunMigrations(ctx, sqlDB); err != nil {
		return err
	}

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
		DSN:      cfg.DatabaseDSN(),
		MaxConns: int32(cfg.Database.MaxConns),
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	rdb, err := bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	} else {
		log.Info(ctx, "redis disabled, timer cache and live events off")
	}

	var archiver *export.Archiver
	if cfg.S3.Bucket != "" {
		archiver, err = export.NewS3Archiver(ctx, cfg.S3)
		if err != nil {
			return err
		}
	}

	var verifier authmiddleware.IDTokenVerifier
	if cfg.Auth.FirebaseCredentialsPath != "" {
		client, err := auth.InitializeFirebase(ctx, cfg.Auth.FirebaseCredentialsPath)
		if err != nil {
			return err
		}
		verifier = client
		log.Info(ctx, "firebase authentication enabled")
	}

	app, err := bootstrap.Wire(bootstrap.Deps{
		Config:   cfg,
		Log:      log,
		Pool:     pool,
		SQL:      sqlDB,
		Redis:    rdb,
		Archiver: archiver,
		Firebase: verifier,
	})
	if err != nil {
		return err
	}

	if app.Scheduler != nil {
		if _, err := app.Scheduler.Reconcile(ctx); err != nil {
			log.Warn(ctx, "initial reconcile failed", "error", err)
		}
		if err := app.Scheduler.Start(); err != nil {
			return err
		}
		defer func() { <-app.Scheduler.Stop().Done() }()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
		// Streams end when the process is told to stop.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", srv.Addr, "env", cfg.App.Environment, "version", cfg.App.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
