package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"warikan/internal/amqp"
	"warikan/internal/backend"
	"warikan/internal/cli"
	apphttp "warikan/internal/http"
	"warikan/internal/log"
	"warikan/internal/services"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(nil, log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg, log.ComponentApp)

	policy := cli.LoadPolicy(logger, cfg)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err,
			"source", backendCfg.Source, "store", backendCfg.Store)
		os.Exit(1)
	}

	// AMQP is optional: without it advances are saved but no snapshot job
	// is queued.
	var publisher services.Publisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, snapshot jobs disabled", log.FieldError, err)
		} else {
			publisher = amqpClient
		}
	}

	settlements := services.NewSettlementService(res.Source, res.Store, policy, services.SettlementServiceConfig{
		CacheTTL: cfg.CacheTTL,
	})
	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Settlements: settlements,
		Advances:    services.NewAdvanceService(res.Store, publisher, amqp.ReasonAdvanceChanged),
		Sources:     res.Settings,
		Publisher:   publisher,
		Store:       res,
		Logger:      logger,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if amqpClient != nil {
			_ = amqpClient.Close()
		}
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Error("Failed to close store", log.FieldError, err)
			}
		}
	})

	logger.Info("Starting warikan server",
		"port", cfg.Port,
		"source", backendCfg.Source,
		"store", backendCfg.Store,
		"amqp", publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
