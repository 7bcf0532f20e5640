// Command nutriload imports an OpenFoodFacts-style CSV export into the
// nutrition database.
//
// Usage:
//
//	nutriload [flags] <file.csv|file.csv.gz>
//
// Configuration comes from the environment (see internal/config); flags
// override the corresponding settings for one run. Exit status is 0 when
// the run completes, even with rejected rows or failed batches, and 1
// when the run aborts before loading anything.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/recipedb/nutriload/internal/config"
	"github.com/recipedb/nutriload/internal/core"
	"github.com/recipedb/nutriload/internal/logging"
	"github.com/recipedb/nutriload/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("import aborted", "error", err)
		os.Exit(1)
	}
}

func run() error {
	batchSize := flag.Int("batch-size", 0, "rows per transaction (overrides IMPORT_BATCH_SIZE)")
	verbose := flag.Bool("verbose", false, "log each rejected or duplicate row")
	statusAddr := flag.String("status-addr", "", "serve the status API on this address (overrides STATUS_ADDR)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <file.csv|file.csv.gz>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	// .env wins over the inherited environment, matching local dev setups
	// where the shell carries stale values.
	_ = godotenv.Overload()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *batchSize > 0 {
		cfg.Import.BatchSize = *batchSize
	}
	if *verbose {
		cfg.Import.Verbose = true
		cfg.Logging.Level = "debug"
	}
	if *statusAddr != "" {
		cfg.Status.Addr = *statusAddr
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := newPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := core.NewPgStore(pool)

	var status *web.Server
	opts := core.Options{
		BatchSize:   cfg.Import.BatchSize,
		SampleLimit: cfg.Import.RejectionSampleLimit,
		Verbose:     cfg.Import.Verbose,
		History:     store,
	}
	if cfg.Status.Addr != "" {
		status = web.NewServer(cfg.Status.Addr, store)
		opts.OnProgress = status.SetProgress
		go func() {
			if err := status.ListenAndServe(); err != nil {
				slog.Error("status server failed", "addr", cfg.Status.Addr, "error", err)
			}
		}()
		slog.Info("status server listening", "addr", cfg.Status.Addr)
	}

	importer := core.NewImporter(store, opts)
	rep, err := importer.Run(ctx, path)
	if err != nil {
		return err
	}

	if status != nil {
		status.SetReport(rep)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Status.ShutdownTimeout)
		defer cancel()
		if err := status.Shutdown(shutdownCtx); err != nil {
			slog.Warn("status server shutdown", "error", err)
		}
	}

	fmt.Print(rep.Summary())
	return nil
}

// newPool builds the pgx pool and verifies connectivity up front so a bad
// DSN aborts before any of the file is read.
func newPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxConns)
	poolCfg.MinConns = int32(cfg.Database.MinConns)
	poolCfg.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return pool, nil
}
