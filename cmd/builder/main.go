package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feature-prep/vocab-builder/internal/ingest"
	"github.com/feature-prep/vocab-builder/internal/runstore"
	"github.com/feature-prep/vocab-builder/internal/vocab"
	"github.com/feature-prep/vocab-builder/internal/vocab/accumulate"
	"github.com/feature-prep/vocab-builder/internal/vocab/vocabfile"
	"github.com/feature-prep/vocab-builder/internal/workspace"
	"github.com/feature-prep/vocab-builder/pkg/config"
	"github.com/feature-prep/vocab-builder/pkg/errors"
	"github.com/feature-prep/vocab-builder/pkg/health"
	"github.com/feature-prep/vocab-builder/pkg/kafka"
	"github.com/feature-prep/vocab-builder/pkg/logger"
	"github.com/feature-prep/vocab-builder/pkg/metrics"
	"github.com/feature-prep/vocab-builder/pkg/postgres"
	"github.com/feature-prep/vocab-builder/pkg/redis"
	"github.com/feature-prep/vocab-builder/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	// Fail fast: every configuration error is reported before a single
	// record is consumed.
	params, err := vocab.ParamsFromConfig(cfg.Builder)
	if err != nil {
		slog.Error("invalid builder configuration", "error", err)
		os.Exit(1)
	}
	builder, err := vocab.New(params)
	if err != nil {
		slog.Error("invalid builder configuration", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	var shutdownMetrics func(context.Context) error
	if cfg.Metrics.Enabled {
		shutdownMetrics = metrics.StartServer(cfg.Metrics.Port)
	}

	checker := health.NewChecker()

	var registry *workspace.Registry
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(cfg.Redis)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		registry = workspace.NewRegistry(redisClient, cfg.Redis.LeaseTTL)
		checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
			if err := redisClient.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	var store *runstore.Store
	if cfg.Postgres.Enabled {
		db, err := postgres.New(cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		store = runstore.NewStore(db)
		checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
			if err := db.DB.PingContext(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health/live", checker.LiveHandler())
	healthMux.HandleFunc("/health/ready", checker.ReadyHandler())
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: healthMux,
	}
	go func() {
		slog.Info("health server listening", "addr", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("health server error", "error", err)
		}
	}()

	profile := accumulate.Profile{
		Weighted: cfg.Input.Weighted,
		Labeled:  cfg.Input.Labeled,
	}
	pool := ingest.NewPool(cfg.Builder.Shards, profile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := ingest.HandleRecord(pool, profile, m)
	consumer := ingest.NewRecordConsumer(
		kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.Records, handler),
	)

	slog.Info("builder service ready, consuming records",
		"topic", cfg.Kafka.Topics.Records,
		"group", cfg.Kafka.ConsumerGroup,
		"weighted", profile.Weighted,
		"labeled", profile.Labeled,
	)
	if err := consumer.Start(ctx); err != nil {
		if errors.IsConfig(err) {
			slog.Error("input contract violated, aborting run", "error", err)
		} else {
			slog.Error("consumer error", "error", err)
		}
		m.BuildsTotal.WithLabelValues("error").Inc()
		os.Exit(1)
	}

	// Stream drained: merge partitions, build, and publish.
	global, err := pool.Drain()
	if err != nil {
		slog.Error("failed to merge partition accumulators", "error", err)
		os.Exit(1)
	}
	m.DistinctTokens.Set(float64(global.Len()))
	m.MergesTotal.Add(float64(pool.Shards()))

	buildCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	name := params.OutputName
	if name == "" {
		name = vocabfile.AutoName()
	}
	if registry != nil {
		hostname, _ := os.Hostname()
		if err := registry.Reserve(buildCtx, name, hostname); err != nil {
			slog.Error("failed to reserve output name", "name", name, "error", err)
			os.Exit(1)
		}
		defer registry.Release(buildCtx, name)
	}

	start := time.Now()
	result, err := builder.BuildAs(buildCtx, name, global)
	if err != nil {
		slog.Error("vocabulary build failed", "error", err)
		m.BuildsTotal.WithLabelValues("error").Inc()
		os.Exit(1)
	}
	m.BuildsTotal.WithLabelValues("success").Inc()
	m.BuildDuration.Observe(time.Since(start).Seconds())
	m.VocabularySize.WithLabelValues(string(vocab.ArmStandard)).Set(float64(result.Stats.StandardArm))
	m.VocabularySize.WithLabelValues(string(vocab.ArmCoverage)).Set(float64(result.Stats.CoverageArm))

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.BuildComplete)
	defer producer.Close()
	if err := resilience.Retry(buildCtx, "publish-build-complete", resilience.RetryConfig{}, func() error {
		return producer.Publish(buildCtx, kafka.Event{Key: name, Value: result})
	}); err != nil {
		slog.Error("failed to publish completion event", "error", err)
	}

	if store != nil {
		if err := resilience.Retry(buildCtx, "save-run", resilience.RetryConfig{}, func() error {
			return store.SaveRun(buildCtx, result)
		}); err != nil {
			slog.Error("failed to save run", "error", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("health server shutdown error", "error", err)
	}
	if shutdownMetrics != nil {
		if err := shutdownMetrics(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown error", "error", err)
		}
	}

	slog.Info("builder service stopped", "vocabulary", result.Path)
}
