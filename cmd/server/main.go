// Command server runs the Sahaya Pragathi case engine: the HTTP API, the
// routing sequencer, and the audit pipeline. Business logic lives in the
// internal packages; main only wires dependencies and owns the lifecycle.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"sahaya/internal/assignment"
	"sahaya/internal/audit"
	"sahaya/internal/casefile/handler"
	casemetrics "sahaya/internal/casefile/metrics"
	"sahaya/internal/casefile/service"
	"sahaya/internal/casefile/store"
	"sahaya/internal/platform/config"
	"sahaya/internal/platform/httpserver"
	"sahaya/internal/platform/logger"
	"sahaya/internal/platform/middleware"
	"sahaya/internal/platform/redis"
	"sahaya/pkg/domain"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sahaya: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Case store: postgres when configured, in-memory otherwise.
	var cases store.Store
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		pg := store.NewPostgres(db)
		if err := pg.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		cases = pg
		log.Info("case store ready", "backend", "postgres")
	} else {
		cases = store.NewInMemory()
		log.Warn("DATABASE_URL not set; case data is not persisted")
	}

	// Routing sequence counter: shared via Redis when configured, otherwise
	// in-process (references are unique per instance only).
	var sequencer assignment.Sequencer = assignment.NewLocalSequencer()
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		sequencer = assignment.NewRedisSequencer(redisClient.Client)
		log.Info("routing sequencer ready", "backend", "redis")
	}

	// Audit trail: produced to Kafka when brokers are configured.
	var sink audit.Store = audit.NewInMemoryStore()
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info("audit sink ready", "backend", "kafka", "topic", cfg.AuditTopic)
	}
	publisher := audit.NewPublisher(sink, audit.WithAsyncBuffer(cfg.AuditBuffer))
	defer publisher.Close()

	svc := service.New(
		cases,
		assignment.New(assignment.WithSequencer(sequencer), assignment.WithLogger(log)),
		service.WithLogger(log),
		service.WithAuditPublisher(publisher),
		service.WithNotifier(&logNotifier{logger: log}),
		service.WithMetrics(casemetrics.New()),
	)

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Handle("/metrics", promhttp.Handler())
	handler.New(svc, log, middleware.NewHMACValidator(cfg.JWTSigningKey)).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting case engine", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// logNotifier satisfies the notifier port. Delivery channels (SMS, portal
// inbox) plug in behind this port in deployment; the engine only dispatches.
type logNotifier struct {
	logger *slog.Logger
}

func (n *logNotifier) Notify(ctx context.Context, caseID domain.CaseID, recipient, message string) error {
	n.logger.InfoContext(ctx, "notification dispatched",
		"case_id", caseID, "recipient", recipient, "message", message)
	return nil
}
