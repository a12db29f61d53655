package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/freva-org/freva-nextgen-sub000/config"
	"github.com/freva-org/freva-nextgen-sub000/internal/di"
	"github.com/freva-org/freva-nextgen-sub000/internal/worker"
	"github.com/freva-org/freva-nextgen-sub000/utils/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		panic(err)
	}

	log := logger.InitLoggerWithOTel(cfg.Logging.OTelEnabled)
	log.Info("Starting worker", "max_threads", cfg.Worker.MaxThreads)

	container, err := di.NewWorkerComponents(cfg)
	if err != nil {
		log.Error("Failed to wire worker components", "error", err)
		panic(err)
	}

	w := worker.New(container.Cache, container.Opener, di.Compressor(), cfg.Worker.MaxThreads, log, container.Metrics)

	if container.Metrics != nil {
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Worker.DaskPort)
			if cfg.Worker.DaskPort == 0 {
				return
			}
			log.Info("Worker metrics listening", "addr", addr)
			if err := http.ListenAndServe(addr, container.Metrics.Handler()); err != nil && err != http.ErrServerClosed {
				log.Error("Error starting worker metrics server", "error", err)
			}
		}()
	}

	log.Info("Worker subscribing to cache channel")
	if err := w.Run(ctx); err != nil && err != context.Canceled {
		log.Error("Worker run loop exited with error", "error", err)
	}
	log.Info("Worker stopped")
}
