// Command server runs the onboarding pipeline service.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"enroll/internal/audit"
	"enroll/internal/draft"
	"enroll/internal/gateway"
	"enroll/internal/pipeline"
	pipelinehandler "enroll/internal/pipeline/handler"
	"enroll/internal/platform/config"
	"enroll/internal/platform/httpserver"
	"enroll/internal/platform/logger"
	"enroll/internal/platform/metrics"
	platformredis "enroll/internal/platform/redis"
	"enroll/internal/session"
	"enroll/internal/verify"
	verifyhandler "enroll/internal/verify/handler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// run wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services
// packages.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, "enroll")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Draft storage: Redis when configured, in-memory otherwise.
	var store draft.Store
	redisClient, err := platformredis.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		store = draft.NewRedisStore(redisClient.Client, cfg.DraftTTL)
		log.Info("draft store: redis", "addr", cfg.RedisAddr)
	} else {
		store = draft.NewInMemoryStore()
		log.Info("draft store: memory")
	}

	// Audit trail: Postgres when configured, in-memory otherwise, with an
	// optional Kafka sink on top.
	var auditStore audit.Store = audit.NewInMemoryStore()
	if cfg.AuditPostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.AuditPostgresDSN)
		if err != nil {
			return fmt.Errorf("open audit postgres: %w", err)
		}
		defer db.Close()
		pgStore := audit.NewPostgresStore(db)
		if err := pgStore.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate audit postgres: %w", err)
		}
		auditStore = pgStore
		log.Info("audit store: postgres")
	}

	auditOpts := []audit.Option{audit.WithAsyncBuffer(256)}
	if len(cfg.AuditKafkaBrokers) > 0 {
		sink, err := audit.NewKafkaSink(cfg.AuditKafkaBrokers, cfg.AuditKafkaTopic)
		if err != nil {
			return fmt.Errorf("connect audit kafka: %w", err)
		}
		defer sink.Close()
		auditOpts = append(auditOpts, audit.WithSink(sink))
		log.Info("audit sink: kafka", "topic", cfg.AuditKafkaTopic)
	}
	auditor := audit.NewPublisher(auditStore, log, auditOpts...)
	defer auditor.Close()

	m := metrics.New()

	accounts := gateway.NewClient(cfg.AccountServiceURL, log, gateway.WithTimeout(cfg.RemoteTimeout))
	sessions := session.NewManager(accounts, cfg.JWTSigningKey, log)

	otp := verify.NewCoordinator(
		verify.OTPCodeLength, cfg.ResendCooldown, gateway.OTPRemote{Client: accounts}, log,
		verify.WithLogin(sessions),
	)
	reset := verify.NewResetFlow(verify.NewCoordinator(
		verify.ResetCodeLength, cfg.ResendCooldown, gateway.ResetRemote{Client: accounts}, log,
	))

	svc := pipeline.NewService(store, accounts, otp, auditor, m, log,
		pipeline.WithRedirectDelay(cfg.RedirectDelay),
	)

	router := chi.NewRouter()
	pipelinehandler.New(svc, log).Register(router)
	verifyhandler.New(reset, log).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting enroll server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
