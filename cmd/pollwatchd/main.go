// Pollwatchd listens for account-state changes to the voting program and
// indexes decoded poll accounts into PostgreSQL.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chainsift/pollwatch/internal/config"
	"github.com/chainsift/pollwatch/internal/consumer"
	"github.com/chainsift/pollwatch/internal/logging"
	"github.com/chainsift/pollwatch/internal/repository"
	"github.com/chainsift/pollwatch/internal/source"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	migrations := flag.String("migrations", "file://migrations", "migrations source URL")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format)
	logging.SetDefault(logger)

	connString := cfg.Database.Postgres.ConnString()

	// Run database migrations
	logger.Info("running database migrations")
	m, err := migrate.New(*migrations, connString)
	if err != nil {
		log.Fatalf("Failed to initialize migrations: %v", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	repo, err := repository.NewPostgresRepository(context.Background(), connString)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer repo.Close()

	srcCfg := source.DefaultConfig()
	srcCfg.URL = cfg.NATS.URL
	srcCfg.Name = cfg.NATS.Name
	srcCfg.SubjectPrefix = cfg.NATS.SubjectPrefix
	srcCfg.ProgramID = cfg.Program.ID
	srcCfg.Encoding = cfg.Program.Encoding

	// Subscription failure is fatal: the consumption loop never starts.
	src, err := source.Subscribe(srcCfg, logger)
	if err != nil {
		log.Fatalf("Failed to subscribe to update source: %v", err)
	}

	cons := consumer.New(src, repo, logger, consumer.Config{
		Workers:      cfg.Sink.Workers,
		QueueSize:    cfg.Sink.QueueSize,
		DrainTimeout: cfg.Sink.DrainTimeout,
	})

	// Metrics and health endpoints
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	metricsSrv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
	go func() {
		logger.Info("metrics listening", "addr", cfg.Metrics.Addr)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server stopped", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("listening for state changes", "program", cfg.Program.ID)

	if err := cons.Run(ctx); err != nil {
		logger.Error("update stream ended with transport error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics shutdown failed", "error", err)
	}

	logger.Info("clean exit", "reason", string(cons.StopReason()))
}
