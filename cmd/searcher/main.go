package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/app"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/events"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/middleware"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port, "store", cfg.Store.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, reg)
		defer shutdownMetrics(context.Background())
	}

	st, err := app.OpenStore(ctx, cfg.Store, cfg.Postgres)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	queryCache, redisClient, err := app.NewQueryCache(ctx, cfg, m)
	if err != nil {
		slog.Error("failed to create query cache", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	exec, synonyms := app.NewExecutor(cfg, st, m)

	checker := health.NewChecker()
	checker.Register("store", health.PingCheck(st.Ping, true))
	if redisClient != nil {
		checker.Register("redis", health.PingCheck(redisClient.Ping, false))
	}
	if synonyms != nil {
		checker.Register("synonyms", health.PingCheck(synonyms.Ping, false))
	}

	if cfg.Kafka.Enabled {
		consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete, events.InvalidationHandler(queryCache))
		go func() {
			if err := consumer.Start(ctx); err != nil {
				slog.Error("index event consumer error", "error", err)
			}
		}()
		slog.Info("listening for index events", "topic", cfg.Kafka.Topics.IndexComplete)
	}

	h := handler.New(exec, queryCache, cfg.Search.DefaultLimit, cfg.Search.MaxResults)

	mux := http.NewServeMux()
	h.Routes(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	chain := middleware.Chain(mux,
		middleware.RequestID,
		middleware.Metrics(m, "/api/v1/search", "/api/v1/cache/stats", "/api/v1/cache/invalidate", "/health/live", "/health/ready"),
		middleware.Timeout(cfg.Server.RequestTimeout),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}
