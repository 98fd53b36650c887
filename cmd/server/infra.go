package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"visitflow/internal/audit"
	"visitflow/internal/notify/kafka"
	"visitflow/internal/platform/config"
	"visitflow/internal/platform/postgres"
	"visitflow/internal/platform/redis"
	httptransport "visitflow/internal/transport/http"
	"visitflow/internal/visit/lock"
	"visitflow/internal/visit/ports"
	"visitflow/internal/visit/store"
	"visitflow/pkg/requestcontext"
)

// infra holds the backing services selected by configuration. Every optional backend
// falls back to an in-process implementation.
type infra struct {
	store      ports.VisitStore
	auditStore audit.Store
	locker     ports.VisitorLocker
	events     *kafka.Publisher
	health     map[string]httptransport.HealthCheck

	closers []func()
}

func openInfra(ctx context.Context, cfg config.Server, log *slog.Logger) (_ *infra, err error) {
	in := &infra{health: map[string]httptransport.HealthCheck{}}
	defer func() {
		if err != nil {
			in.Close()
		}
	}()

	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		in.closers = append(in.closers, func() { _ = db.Close() })
		pg := store.NewPostgres(db, store.WithLocation(cfg.Location))
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		in.store = pg
		in.auditStore = audit.NewPostgresStore(db)
		in.health["postgres"] = pingDB(db)
		log.Info("using postgres visit store")
	} else {
		in.store = store.NewInMemory()
		in.auditStore = audit.NewInMemoryStore()
		log.Warn("DATABASE_URL not set; using in-memory visit store")
	}

	if cfg.SeedFile != "" {
		seed, err := store.LoadSeedFile(ctx, cfg.SeedFile, in.store, requestcontext.Now(ctx))
		if err != nil {
			return nil, err
		}
		log.Info("seed loaded",
			"pavilions", len(seed.Pavilions),
			"visitors", len(seed.Visitors),
			"routes", len(seed.Routes),
		)
	}

	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if client != nil {
		in.closers = append(in.closers, func() { _ = client.Close() })
		if in.locker, err = lock.NewRedis(client.Client, lock.WithTTL(cfg.Redis.LockTTL)); err != nil {
			return nil, err
		}
		in.health["redis"] = client.Health
		log.Info("using redis visitor lock")
	} else {
		in.locker = lock.NewMemory()
	}

	if len(cfg.Kafka.Brokers) > 0 {
		kc, err := kafka.NewClient(cfg.Kafka.Brokers, cfg.Kafka.ClientID)
		if err != nil {
			return nil, err
		}
		in.closers = append(in.closers, kc.Close)
		if err := kafka.EnsureTopic(ctx, kc, cfg.Kafka.Topic, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			return nil, err
		}
		if in.events, err = kafka.NewPublisher(kc, cfg.Kafka.Topic, kafka.WithLogger(log)); err != nil {
			return nil, err
		}
		in.health["kafka"] = pingKafka(kc)
		log.Info("publishing visit events", "topic", cfg.Kafka.Topic)
	}
	return in, nil
}

// Close releases backends in reverse order of opening.
func (in *infra) Close() {
	for i := len(in.closers) - 1; i >= 0; i-- {
		in.closers[i]()
	}
	in.closers = nil
}

func pingDB(db *sql.DB) httptransport.HealthCheck {
	return db.PingContext
}

func pingKafka(client *kgo.Client) httptransport.HealthCheck {
	return client.Ping
}
