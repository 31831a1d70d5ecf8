package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	postgresRepo "github.com/finwire/walletd/internal/adapter/repository/postgres"
	redisRepo "github.com/finwire/walletd/internal/adapter/repository/redis"
	"github.com/finwire/walletd/internal/infrastructure/config"
	"github.com/finwire/walletd/internal/infrastructure/logger"
	"github.com/finwire/walletd/internal/infrastructure/metrics"
	"github.com/finwire/walletd/internal/infrastructure/postgres"
	"github.com/finwire/walletd/internal/infrastructure/redis"
	"github.com/finwire/walletd/internal/jobs"
	"github.com/finwire/walletd/internal/usecase"
)

// deps is everything a maintenance job needs, built once per
// invocation and torn down on exit.
type deps struct {
	cfg         *config.Config
	runner      *jobs.Runner
	reconcileUC *usecase.ReconciliationUseCase
	archiveUC   *usecase.ArchivalUseCase
	close       func()
}

func buildDeps(ctx context.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	transferRepo := postgresRepo.NewTransferRepository(pool)
	archiveRepo := postgresRepo.NewArchiveRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	leaseStore := redisRepo.NewLeaseStore(redisClient)

	m := metrics.New()

	return &deps{
		cfg:         cfg,
		runner:      jobs.NewRunner(leaseStore, m, nil),
		reconcileUC: usecase.NewReconciliationUseCase(txManager, accountRepo, transferRepo, ledgerRepo, nil),
		archiveUC:   usecase.NewArchivalUseCase(txManager, transferRepo, archiveRepo, nil),
		close: func() {
			redisClient.Close()
			pool.Close()
		},
	}, nil
}

func runJob(build func(d *deps) jobs.Job) error {
	ctx := context.Background()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	return d.runner.Run(ctx, build(d))
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "walletd-jobs",
		Short: "walletd maintenance jobs",
		Long:  `Scheduled maintenance jobs for the walletd transfer engine.`,
	}

	reconcileCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile stored balances against the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(func(d *deps) jobs.Job {
				return jobs.ReconcileJob(d.reconcileUC, d.cfg.ReconcileTimeout, d.cfg.ReconcileLeaseTTL)
			})
		},
	}

	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "Move cold transfers to the archive store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(func(d *deps) jobs.Job {
				return jobs.ArchiveJob(d.archiveUC, d.cfg.ArchiveRetentionMonths, d.cfg.ArchiveTimeout, d.cfg.ArchiveLeaseTTL)
			})
		},
	}

	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "Scan for large balance discrepancies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(func(d *deps) jobs.Job {
				return jobs.MonitorJob(d.reconcileUC, d.cfg.ReconcileTimeout, d.cfg.ReconcileLeaseTTL)
			})
		},
	}

	rootCmd.AddCommand(reconcileCmd, archiveCmd, monitorCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
