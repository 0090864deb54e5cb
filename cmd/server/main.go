/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"trokazz-server/internal/common"
	"trokazz-server/internal/config"
	"trokazz-server/internal/handlers"
	"trokazz-server/internal/middleware"
	"trokazz-server/internal/realtime"
	"trokazz-server/internal/watcher"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zap.L().Info("Starting Trokazz server")

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	hub := realtime.NewHub()
	hub.Start()
	defer hub.Stop()
	services.ApiService.AttachPublisher(hub)

	expiryWatcher, err := watcher.NewExpiryWatcher(services.DbService, services.ApiService, cfg.Watcher)
	if err != nil {
		zap.L().Fatal("Failed to create expiry watcher", zap.Error(err))
	}
	expiryWatcher.Start(ctx)
	defer expiryWatcher.Stop()

	rateLimiter, err := middleware.NewRateLimiter(cfg.Redis)
	if err != nil {
		zap.L().Warn("Rate limiter unavailable, continuing without it", zap.Error(err))
	}

	handler := handlers.NewHandler(services.ApiService, hub)
	router := handler.SetupRouter(handlers.RouterOptions{
		AuthManager:    services.AuthManager,
		RateLimiter:    rateLimiter,
		RequestsPerMin: cfg.Redis.RequestsPerMin,
		AllowedOrigin:  cfg.Server.AllowedOrigin,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		zap.L().Info("HTTP server listening", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	zap.L().Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Server shutdown failed", zap.Error(err))
	}

	zap.L().Info("Server stopped")
}
