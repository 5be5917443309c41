package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/lunch-order-website/internal/api"
	"github.com/dom/lunch-order-website/internal/config"
	"github.com/dom/lunch-order-website/internal/logging"
	"github.com/dom/lunch-order-website/internal/repository/postgres"
	"github.com/dom/lunch-order-website/internal/repository/redis"
	"github.com/dom/lunch-order-website/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, db, err := setup()
			if err != nil {
				return err
			}
			if err := postgres.AutoMigrate(db); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			logger.Info("migrations applied")
			return nil
		},
	}
}

func newBootstrapSuperadminCommand() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "bootstrap-superadmin",
		Short: "Create the first superadmin if none exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("SUPERADMIN_PASSWORD")
			}
			if username == "" || password == "" {
				return errors.New("--username and --password (or SUPERADMIN_PASSWORD) are required")
			}

			cfg, logger, db, err := setup()
			if err != nil {
				return err
			}
			if err := postgres.AutoMigrate(db); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			services, err := service.NewServices(postgres.NewRepositories(db), cfg, logger)
			if err != nil {
				return err
			}

			user, created, err := services.User.BootstrapSuperadmin(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("failed to bootstrap superadmin: %w", err)
			}
			if !created {
				logger.Info("a superadmin already exists, nothing to do")
				return nil
			}
			logger.WithField("username", user.Username).Info("superadmin created")
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "superadmin username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "superadmin password")
	return cmd
}

func setup() (*config.Config, *logrus.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cfg, logger, db, nil
}

func runServe(ctx context.Context) error {
	cfg, logger, db, err := setup()
	if err != nil {
		return err
	}

	if err := postgres.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)
	if cfg.SessionBackend == config.SessionBackendRedis {
		client, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer client.Close()
		repos.Session = redis.NewSessionRepository(client)
	}
	logger.WithField("backend", cfg.SessionBackend).Info("session store ready")

	// Initialize services
	services, err := service.NewServices(repos, cfg, logger)
	if err != nil {
		return err
	}

	router := api.NewRouter(services, cfg, logger)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}
