// Insightd is the ticket intelligence daemon.
//
// It consumes inbound support tickets from NATS, extracts anonymized
// analytics signals, indexes ticket embeddings in Qdrant for similarity
// retrieval, and periodically aggregates the analytics window into
// actionable insights stored in MongoDB.
//
// Usage:
//
//	# Start with defaults, overridden by INSIGHTD_* environment variables
//	insightd
//
//	# Start with a config file
//	insightd -config /etc/insightd/config.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/itaysc/foozool-ai-support-sub000/internal/analytics"
	"github.com/itaysc/foozool-ai-support-sub000/internal/config"
	"github.com/itaysc/foozool-ai-support-sub000/internal/embeddings"
	"github.com/itaysc/foozool-ai-support-sub000/internal/ingest"
	"github.com/itaysc/foozool-ai-support-sub000/internal/insight"
	"github.com/itaysc/foozool-ai-support-sub000/internal/intent"
	"github.com/itaysc/foozool-ai-support-sub000/internal/logging"
	"github.com/itaysc/foozool-ai-support-sub000/internal/metrics"
	"github.com/itaysc/foozool-ai-support-sub000/internal/similarity"
	"github.com/itaysc/foozool-ai-support-sub000/internal/storage"
	"github.com/itaysc/foozool-ai-support-sub000/internal/telemetry"
	"github.com/itaysc/foozool-ai-support-sub000/internal/vectorindex"
)

var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("insightd\nVersion:    %s\nCommit:     %s\nBuild Date: %s\n", version, gitCommit, buildDate)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("insightd: %v", err)
	}
	log.Println("Shutdown complete")
}

// run initializes all dependencies, starts the consumer, scheduler, and ops
// HTTP server, then blocks until the context is cancelled.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logging.Sync(logger) }()

	logger.Info("starting insightd",
		zap.String("version", version),
		zap.String("commit", gitCommit))

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		_ = shutdownTracing(flushCtx)
	}()

	m := metrics.New(prometheus.DefaultRegisterer)

	// MongoDB.
	mongoClient, err := storage.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.ConnectTimeout)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()
	db := mongoClient.Database(cfg.Mongo.Database)

	ticketStore := storage.NewMongoTicketStore(db)
	recordStore := analytics.NewMongoStore(db)
	insightStore := insight.NewMongoStore(db)
	for name, ensure := range map[string]func(context.Context) error{
		"tickets":  ticketStore.EnsureIndexes,
		"records":  recordStore.EnsureIndexes,
		"insights": insightStore.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return fmt.Errorf("ensuring %s indexes: %w", name, err)
		}
	}
	logger.Info("connected to mongodb", zap.String("database", cfg.Mongo.Database))

	// External services.
	classifier, err := intent.NewClient(intent.Config{
		BaseURL: cfg.Intent.BaseURL,
		Timeout: cfg.Intent.Timeout,
	})
	if err != nil {
		return err
	}
	embedSvc, err := embeddings.NewService(embeddings.Config{
		BaseURL: cfg.Embeddings.BaseURL,
		Model:   cfg.Embeddings.Model,
		Timeout: cfg.Embeddings.Timeout,
	}, m)
	if err != nil {
		return err
	}

	// Vector index.
	index, err := vectorindex.NewQdrantIndex(vectorindex.QdrantConfig{
		Host:                    cfg.Qdrant.Host,
		Port:                    cfg.Qdrant.Port,
		Collection:              cfg.Qdrant.Collection,
		VectorSize:              cfg.Qdrant.VectorSize,
		UseTLS:                  cfg.Qdrant.UseTLS,
		MaxRetries:              cfg.Qdrant.MaxRetries,
		RetryBackoff:            cfg.Qdrant.RetryBackoff,
		CircuitBreakerThreshold: cfg.Qdrant.CircuitBreakerThreshold,
	})
	if err != nil {
		return err
	}
	defer func() { _ = index.Close() }()
	if err := index.EnsureCollection(ctx, int(cfg.Qdrant.VectorSize)); err != nil {
		return fmt.Errorf("ensuring vector collection: %w", err)
	}
	logger.Info("vector index ready",
		zap.String("collection", cfg.Qdrant.Collection),
		zap.Uint64("vector_size", cfg.Qdrant.VectorSize))

	// Pipeline.
	extractor := analytics.NewExtractor(classifier, recordStore, logger.Named("extractor"))
	retriever := similarity.NewRetriever(embedSvc, index, ticketStore, logger.Named("similarity"), m)
	pipeline := ingest.NewPipeline(ticketStore, extractor, embedSvc, index, retriever, logger.Named("pipeline"))

	// NATS consumer.
	nc, err := nats.Connect(cfg.NATS.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(1*time.Second),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS at %s: %w", cfg.NATS.URL, err)
	}
	defer nc.Close()
	logger.Info("connected to NATS", zap.String("url", cfg.NATS.URL))

	consumer, err := ingest.NewConsumer(ingest.ConsumerConfig{
		Subject: cfg.NATS.Subject,
		Queue:   cfg.NATS.Queue,
	}, nc, pipeline, logger.Named("consumer"), m)
	if err != nil {
		return err
	}
	if err := consumer.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = consumer.Stop() }()

	// Insight aggregation.
	merger := insight.NewMerger(insightStore, logger.Named("merger"))
	aggregator := insight.NewAggregator(merger, logger.Named("aggregator"), m)
	scheduler := insight.NewScheduler(insight.SchedulerConfig{
		Interval:  cfg.Aggregation.Interval,
		Window:    cfg.Aggregation.Window,
		BatchSize: cfg.Aggregation.BatchSize,
	}, recordStore, aggregator, logger.Named("scheduler"))
	scheduler.Start(ctx)
	defer scheduler.Stop()

	// Ops HTTP server: metrics and health.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("ops server listening", zap.String("addr", cfg.Server.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("ops server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("ops server shutdown failed", zap.Error(err))
	}
	return nil
}
