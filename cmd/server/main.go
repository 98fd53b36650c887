package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"visitflow/internal/audit"
	jwttoken "visitflow/internal/jwt_token"
	"visitflow/internal/notify"
	"visitflow/internal/platform/config"
	"visitflow/internal/platform/httpserver"
	"visitflow/internal/platform/logger"
	platformmetrics "visitflow/internal/platform/metrics"
	httptransport "visitflow/internal/transport/http"
	"visitflow/internal/visit/handler"
	"visitflow/internal/visit/metrics"
	"visitflow/internal/visit/service/catalog"
	"visitflow/internal/visit/service/checkpoint"
	"visitflow/internal/visit/service/compliance"
	"visitflow/internal/visit/service/overdue"
	"visitflow/internal/visit/service/schedule"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("visitflow stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	infra, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	visitMetrics := metrics.NewWithRegistry(reg)

	auditQueue := audit.NewQueue(cfg.AuditQueueSize)
	auditTrail := audit.NewPublisher(infra.auditStore)

	hub := notify.NewHub(notify.WithLogger(log))
	hub.Subscribe(notify.NewLogListener(log))
	if infra.events != nil {
		hub.Subscribe(infra.events)
	}

	scope, err := compliance.ParseScope(cfg.ComplianceScope)
	if err != nil {
		return err
	}

	catalogSvc, err := catalog.New(infra.store, infra.store, infra.store,
		catalog.WithLogger(log),
		catalog.WithAuditPublisher(auditQueue),
	)
	if err != nil {
		return err
	}
	scheduleSvc, err := schedule.New(infra.store, infra.store, infra.store,
		schedule.WithLogger(log),
		schedule.WithAuditPublisher(auditQueue),
		schedule.WithMetrics(visitMetrics),
	)
	if err != nil {
		return err
	}
	evaluator, err := compliance.New(infra.store, infra.store,
		compliance.WithScope(scope),
		compliance.WithListener(hub),
		compliance.WithLogger(log),
		compliance.WithAuditPublisher(auditQueue),
		compliance.WithMetrics(visitMetrics),
	)
	if err != nil {
		return err
	}
	recorder, err := checkpoint.New(infra.store, infra.store, infra.store, infra.locker, evaluator,
		checkpoint.WithLogger(log),
		checkpoint.WithAuditPublisher(auditQueue),
		checkpoint.WithMetrics(visitMetrics),
	)
	if err != nil {
		return err
	}
	detector, err := overdue.New(infra.store, infra.store,
		overdue.WithLogger(log),
		overdue.WithMetrics(visitMetrics),
	)
	if err != nil {
		return err
	}
	scanner, err := overdue.NewScanner(detector, hub,
		overdue.WithInterval(cfg.ScanInterval),
		overdue.WithScannerLogger(log),
	)
	if err != nil {
		return err
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)
	router := httptransport.NewRouter(httptransport.Deps{
		Visit: handler.New(handler.Services{
			Catalog:     catalogSvc,
			Schedules:   scheduleSvc,
			Checkpoints: recorder,
			Overdue:     detector,
			Audit:       auditTrail,
		}, cfg.Location, log),
		Validator: jwttoken.NewJWTServiceAdapter(jwtService),
		Gatherer:  reg,
		Metrics:   platformmetrics.NewHTTP(reg),
		Logger:    log,
		Health:    infra.health,
	})
	srv := httpserver.New(cfg.Addr, router, httpserver.WithLogger(log))

	workerCtx, stopWorker := context.WithCancel(context.WithoutCancel(ctx))
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := audit.NewWorker(infra.auditStore, auditQueue.Inbox(), audit.WithWorkerLogger(log)).Run(workerCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		log.Info("starting visitflow", "addr", cfg.Addr, "compliance_scope", string(scope))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	if err := scanner.Start(gctx); err != nil {
		return err
	}

	<-gctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	scanner.Stop()
	stopWorker()
	return g.Wait()
}
