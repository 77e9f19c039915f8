package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/SanketN15/url-shortner/internal/container"
	"github.com/SanketN15/url-shortner/internal/health"
	"github.com/SanketN15/url-shortner/internal/messaging"
	"github.com/SanketN15/url-shortner/internal/metrics"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// The consumer reads link events from Redis streams and keeps per-link
// counters in Redis. It serves /health and /metrics on CONSUMER_PORT.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "failed to load .env:", err)
		os.Exit(1)
	}

	port, err := strconv.Atoi(getEnv("CONSUMER_PORT", "9100"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid CONSUMER_PORT:", err)
		os.Exit(1)
	}

	opts := &container.Options{
		Store:     container.BackendMemory,
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		Events:    container.BackendRedis,
		RateLimit: container.BackendOff,
		LogFormat: getEnv("LOG_FORMAT", "console"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}

	injector := do.New()
	do.ProvideValue(injector, opts)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.MetricsPackage(injector)
	container.HealthPackage(injector)
	container.ConsumerGroupPackage(injector)

	logger := do.MustInvoke[*zap.Logger](injector)
	group := do.MustInvoke[*messaging.ConsumerGroup](injector)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := group.Start(ctx); err != nil {
		logger.Fatal("failed to start consumer group", zap.Error(err))
	}

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("URL Shortener Consumer", "1.0.0"))
	health.RegisterRoutes(api, do.MustInvoke[*health.Handler](injector))
	router.Handle("/metrics", metrics.Handler(do.MustInvoke[*prometheus.Registry](injector)))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("consumer listening", zap.Int("port", port))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("status server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("status server shutdown error", zap.Error(err))
	}

	if err := injector.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return defaultValue
}
