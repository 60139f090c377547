// Command server runs the soulbound token registry: the HTTP API, the
// audit pipeline, and, when configured, the Kafka relay and consumer.
// Backends are selected by configuration: PostgreSQL or in-memory stores,
// Redis or in-process mint reservations.
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

	"golang.org/x/sync/errgroup"

	"soulbound/internal/audit"
	auditconsumer "soulbound/internal/audit/consumer"
	auditmetrics "soulbound/internal/audit/metrics"
	"soulbound/internal/audit/outbox"
	auditmemory "soulbound/internal/audit/store/memory"
	auditpg "soulbound/internal/audit/store/postgres"
	authorityhandler "soulbound/internal/authority/handler"
	authoritysvc "soulbound/internal/authority/service"
	authoritystore "soulbound/internal/authority/store"
	issuancehandler "soulbound/internal/issuance/handler"
	issuancemetrics "soulbound/internal/issuance/metrics"
	"soulbound/internal/issuance/reserve"
	issuancesvc "soulbound/internal/issuance/service"
	jwttoken "soulbound/internal/jwt_token"
	ledgerhandler "soulbound/internal/ledger/handler"
	ledgermetrics "soulbound/internal/ledger/metrics"
	ledgersvc "soulbound/internal/ledger/service"
	ledgerstore "soulbound/internal/ledger/store"
	"soulbound/internal/platform/config"
	"soulbound/internal/platform/database"
	"soulbound/internal/platform/httpserver"
	kafkaconsumer "soulbound/internal/platform/kafka/consumer"
	kafkaproducer "soulbound/internal/platform/kafka/producer"
	"soulbound/internal/platform/logger"
	"soulbound/internal/platform/metrics"
	platformredis "soulbound/internal/platform/redis"
	registryhandler "soulbound/internal/registry/handler"
	registrysvc "soulbound/internal/registry/service"
	registrystore "soulbound/internal/registry/store"
	skillshandler "soulbound/internal/skills/handler"
	skillsmetrics "soulbound/internal/skills/metrics"
	skillssvc "soulbound/internal/skills/service"
	skillsstore "soulbound/internal/skills/store"
	httptransport "soulbound/internal/transport/http"
	"soulbound/pkg/platform/sentinel"
	txctx "soulbound/pkg/platform/tx"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "soulbound: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Server.LogLevel)

	httpMetrics := metrics.New()
	auditMetrics := auditmetrics.New()

	// Store selection: PostgreSQL when a DSN is configured, otherwise the
	// in-memory implementations backed by the mutex runner.
	var (
		ledgerStore  ledgerstore.Store
		skillsStore  skillsstore.Store
		authStore    authoritystore.Store
		locatorStore registrystore.Store
		auditStore   audit.Store
		auditOutbox  *auditpg.Store
		runner       txctx.Runner
		healthChecks []httptransport.HealthCheck
	)
	if cfg.Postgres.DSN != "" {
		if err := database.Migrate(ctx, cfg.Postgres.DSN); err != nil {
			return err
		}
		pool, err := database.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()

		sqlDB, err := sql.Open("pgx", cfg.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("opening audit store connection: %w", err)
		}
		defer sqlDB.Close()

		ledgerStore = ledgerstore.NewPostgres(pool)
		skillsStore = skillsstore.NewPostgres(pool)
		authStore = authoritystore.NewPostgres(pool)
		locatorStore = registrystore.NewPostgres(pool)
		auditOutbox = auditpg.New(sqlDB)
		auditStore = auditOutbox
		runner = txctx.NewPgxRunner(pool)
		healthChecks = append(healthChecks, pool.Ping)
		log.Info("using postgres stores")
	} else {
		ledgerStore = ledgerstore.NewMemory()
		skillsStore = skillsstore.NewMemory()
		authStore = authoritystore.NewMemory()
		locatorStore = registrystore.NewMemory()
		auditStore = auditmemory.NewInMemoryStore()
		runner = txctx.NewMutexRunner()
		log.Info("using in-memory stores")
	}

	// Audit pipeline: services emit to the publisher, the worker persists.
	publisher := audit.NewPublisher(cfg.Audit.Buffer, log, auditMetrics)
	worker := audit.NewWorker(auditStore, publisher.Events(), log)

	// Mint reservation: Redis when configured, in-process otherwise.
	var reserver reserve.Reserver = reserve.NewMemory()
	redisClient, err := platformredis.New(ctx, cfg.Redis.URL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		reserver = reserve.NewRedis(redisClient.Client, 0)
		healthChecks = append(healthChecks, redisClient.Health)
		log.Info("using redis mint reservation")
	}

	// Domain services.
	authorityOpts := []authoritysvc.Option{
		authoritysvc.WithLogger(log),
		authoritysvc.WithRecorder(publisher),
	}
	if !cfg.Registry.Authority.IsZero() {
		authorityOpts = append(authorityOpts, authoritysvc.WithAuthorityOverride(cfg.Registry.Authority))
	}
	authority := authoritysvc.New(authStore, authorityOpts...)

	ledger := ledgersvc.New(ledgerStore, authority,
		ledgersvc.WithLogger(log),
		ledgersvc.WithRecorder(publisher),
		ledgersvc.WithMetrics(ledgermetrics.New()),
	)
	skills := skillssvc.New(skillsStore, authority, ledger,
		skillssvc.WithLogger(log),
		skillssvc.WithRecorder(publisher),
		skillssvc.WithMetrics(skillsmetrics.New()),
	)
	locators := registrysvc.New(locatorStore, authority, ledger,
		registrysvc.WithLogger(log),
		registrysvc.WithRecorder(publisher),
	)
	issuance := issuancesvc.New(ledger, skills, authority, runner,
		issuancesvc.WithLogger(log),
		issuancesvc.WithRecorder(publisher),
		issuancesvc.WithMetrics(issuancemetrics.New()),
		issuancesvc.WithReserver(reserver),
	)

	if err := bootstrap(ctx, cfg, log, authority, ledger, locatorStore); err != nil {
		return err
	}

	// HTTP surface.
	validator := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, jwttoken.Issuer, jwttoken.Audience)
	router := httptransport.NewRouter(httptransport.Handlers{
		Ledger:    ledgerhandler.New(ledger, locators, log),
		Issuance:  issuancehandler.New(issuance, log),
		Skills:    skillshandler.New(skills, log),
		Authority: authorityhandler.New(authority, log),
		Registry:  registryhandler.New(locators, log),
	}, httptransport.Options{
		Logger:    log,
		Metrics:   httpMetrics,
		Validator: validator,
		Health:    combineHealth(healthChecks),
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return ignoreCancel(worker.Run(gctx))
	})

	// Kafka relay and consumer require the postgres outbox.
	if len(cfg.Kafka.Brokers) > 0 && auditOutbox != nil {
		producer, err := kafkaproducer.New(cfg.Kafka.Brokers)
		if err != nil {
			return err
		}
		defer producer.Close()
		if err := producer.EnsureTopics(ctx, 1, 1, audit.Topics()...); err != nil {
			return err
		}

		relay := outbox.NewRelay(auditOutbox, producer,
			cfg.Audit.RelayInterval, cfg.Audit.RelayBatch, log, auditMetrics)
		g.Go(func() error {
			return ignoreCancel(relay.Run(gctx))
		})

		router := auditconsumer.NewRouter(log, auditconsumer.NewMaterializeHandler(auditOutbox, log, auditMetrics))
		consumer, err := kafkaconsumer.New(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, audit.Topics(), router, log)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return ignoreCancel(consumer.Run(gctx))
		})
		log.Info("audit kafka pipeline enabled", "brokers", cfg.Kafka.Brokers)
	} else if len(cfg.Kafka.Brokers) > 0 {
		log.Warn("kafka brokers configured without postgres, audit relay disabled")
	}

	g.Go(func() error {
		log.Info("listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Info("shut down")
	return err
}

// bootstrap seeds first-start state: the administrator slot, the base
// locator, and the deployer's token 0. Every step is idempotent so
// restarts are safe.
func bootstrap(
	ctx context.Context,
	cfg config.Config,
	log *slog.Logger,
	authority *authoritysvc.Service,
	ledger *ledgersvc.Service,
	locatorStore registrystore.Store,
) error {
	if err := authority.Bootstrap(ctx, cfg.Registry.Administrator); err != nil {
		return err
	}

	if cfg.Registry.BaseLocator != "" {
		if _, err := locatorStore.BaseLocator(ctx); errors.Is(err, sentinel.ErrNotFound) {
			if err := locatorStore.SetBaseLocator(ctx, cfg.Registry.BaseLocator); err != nil {
				return err
			}
			log.Info("seeded base locator", "base", cfg.Registry.BaseLocator)
		}
	}

	if cfg.Registry.SeedDeployerToken {
		total, err := ledger.TotalIssued(ctx)
		if err != nil {
			return err
		}
		if total == 0 {
			token, err := ledger.Mint(ctx, cfg.Registry.Administrator)
			if err != nil {
				return err
			}
			log.Info("seeded deployer token", "token_id", token.ID, "owner", cfg.Registry.Administrator)
		}
	}
	return nil
}

func combineHealth(checks []httptransport.HealthCheck) httptransport.HealthCheck {
	return func(ctx context.Context) error {
		for _, check := range checks {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

// ignoreCancel maps context cancellation to a clean exit so shutdown does
// not report an error.
func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
