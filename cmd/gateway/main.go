package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"

	"github.com/freva-org/freva-nextgen-sub000/config"
	"github.com/freva-org/freva-nextgen-sub000/internal/di"
	"github.com/freva-org/freva-nextgen-sub000/rest"
	"github.com/freva-org/freva-nextgen-sub000/utils/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		panic(err)
	}

	log := logger.InitLoggerWithOTel(cfg.Logging.OTelEnabled)
	log.Info("Starting gateway", "port", cfg.Server.Port)

	container, err := di.NewGatewayComponents(ctx, cfg)
	if err != nil {
		log.Error("Failed to wire gateway components", "error", err)
		panic(err)
	}
	defer container.Close()

	e := echo.New()
	e.HideBanner = true

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if he, ok := err.(*echo.HTTPError); ok {
			_ = c.JSON(he.Code, map[string]interface{}{
				"error":  http.StatusText(he.Code),
				"detail": he.Message,
			})
			return
		}
		_ = c.JSON(http.StatusInternalServerError, map[string]interface{}{"error": "internal_error"})
	}

	rest.RegisterRoutes(e, container, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      e,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Gateway listening", "addr", server.Addr)
		if err := e.StartServer(server); err != nil && err != http.ErrServerClosed {
			log.Error("Error starting gateway", "error", err)
			panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gateway...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during gateway shutdown", "error", err)
	}
	log.Info("Gateway stopped")
}
