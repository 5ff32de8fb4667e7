package main

import (
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"filmrental-backend/internal/config"
	"filmrental-backend/internal/jobs"
	"filmrental-backend/internal/logger"
	"filmrental-backend/internal/repository/postgres"
	"filmrental-backend/internal/scheduler"
	"filmrental-backend/internal/service"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "cronjob",
		Short:        "Film rental background jobs",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.dev.yaml", "Path to configuration file")

	rootCmd.AddCommand(newServeCmd(), newRunCmd())
	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the cron scheduler until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jobRunner, closeDB, err := setup()
			if err != nil {
				return err
			}
			defer closeDB()

			// Initialize Scheduler
			cronScheduler := scheduler.NewScheduler(jobRunner)
			if !cronScheduler.IsRunning() {
				return fmt.Errorf("no jobs registered, check scheduler configuration")
			}

			cronScheduler.Start()
			if next, ok := cronScheduler.NextRun(); ok {
				logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.", "next_run", next)
			}

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			<-sigChan

			// Graceful shutdown
			logger.Info("Shutting down cronjob scheduler...")
			cronScheduler.Stop()
			logger.Info("Cronjob scheduler stopped. Goodbye!")
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "run <job>",
		Short:     "Run a single job once and exit",
		Example:   "  cronjob run send-overdue-reminders\n  cronjob run all-nightly",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"send-overdue-reminders", "all-nightly"},
		RunE: func(cmd *cobra.Command, args []string) error {
			jobRunner, closeDB, err := setup()
			if err != nil {
				return err
			}
			defer closeDB()

			job, ok := jobRunner.Lookup(args[0])
			if !ok {
				logger.Error("Unknown job name", "job", args[0])
				return fmt.Errorf("unknown job %q, available jobs: %s", args[0], strings.Join(jobRunner.JobNames(), ", "))
			}

			logger.Info("Running job once", "job", args[0])
			job()
			logger.Info("Job execution completed", "job", args[0])
			return nil
		},
	}
}

// setup loads configuration and wires the job runner with its dependencies
func setup() (*jobs.JobRunner, func(), error) {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Film Rental Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Services
	emailService, err := service.NewEmailServiceFromConfig(cfg.Email)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	rentalService := service.NewRentalService(
		store.RentalRepository,
		store.DelinquencyRepository,
		emailService,
	)

	jobServices := &jobs.Services{
		Rental: rentalService,
	}

	// Initialize Job Runner
	return jobs.NewJobRunner(jobServices, cfg), func() { db.Close() }, nil
}
