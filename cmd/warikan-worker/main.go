package main

import (
	"context"
	"os"
	"time"

	"warikan/internal/amqp"
	"warikan/internal/backend"
	"warikan/internal/cli"
	"warikan/internal/log"
	"warikan/internal/services"
	"warikan/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(nil, log.ComponentWorker)
	logger.Info("Starting warikan-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg, log.ComponentWorker)
	policy := cli.LoadPolicy(logger, cfg)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err)
		os.Exit(1)
	}
	defer func() {
		if res.Cleanup != nil {
			_ = res.Cleanup()
		}
	}()

	settlements := services.NewSettlementService(res.Source, res.Store, policy, services.SettlementServiceConfig{
		CacheTTL: cfg.CacheTTL,
	})
	snapshotWorker := worker.NewSnapshotWorker(settlements, res.Store, cfg.SnapshotInterval)

	// Without AMQP the worker still snapshots the latest month on a timer.
	var consumer worker.Consumer
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		consumer = amqpClient
	} else {
		logger.Info("AMQP_URL not set, running periodic snapshots only")
	}

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, nil)

	logger.Info("Snapshot worker running",
		"interval", cfg.SnapshotInterval.String(),
		"source", backendCfg.Source,
		"store", backendCfg.Store)
	if err := snapshotWorker.Run(ctx, consumer); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
