package infrastructure

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/Xhuk/Habitat-prime/internal/config"
	"github.com/Xhuk/Habitat-prime/internal/oracle"
	"github.com/Xhuk/Habitat-prime/internal/repository"
	"github.com/Xhuk/Habitat-prime/internal/service"
	transportHTTP "github.com/Xhuk/Habitat-prime/internal/transport/http"
	transportNATS "github.com/Xhuk/Habitat-prime/internal/transport/nats"
	transportRabbit "github.com/Xhuk/Habitat-prime/internal/transport/rabbit"
	"github.com/Xhuk/Habitat-prime/internal/worker"
)

// Bootstrap initialises all dependencies from config and wires up the
// application. Returns the App, a cleanup function, or an error.
func Bootstrap(ctx context.Context) (*App, func(), error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	var cleanupFns []func()

	// 1. Entity store
	mem := repository.NewMemoryStore()
	var store repository.Store = mem
	switch cfg.StoreProvider {
	case "postgres":
		pool, err := connectPostgres(cfg.DSN())
		if err != nil {
			return nil, runCleanup(cleanupFns), err
		}
		cleanupFns = append(cleanupFns, pool.Close)
		store = repository.NewPostgresStore(pool)
	default:
		if cfg.SeedDemo {
			if err := repository.Seed(ctx, mem, time.Now()); err != nil {
				return nil, runCleanup(cleanupFns), err
			}
		}
	}

	// 2. Settings store (license, sessions, idempotency markers)
	var settings repository.SettingsStore = repository.NewMemorySettings()
	if cfg.SettingsProvider == "redis" {
		rdb, err := connectRedis(cfg.RedisAddr())
		if err != nil {
			return nil, runCleanup(cleanupFns), err
		}
		cleanupFns = append(cleanupFns, func() { _ = rdb.Close() })
		settings = repository.NewRedisSettings(rdb)
	}

	// 3. Extraction oracle
	var orc oracle.Oracle = &oracle.StaticOracle{Amount: 1500}
	if cfg.OracleProvider == "http" {
		orc = oracle.NewHTTPOracle(cfg.OracleURL)
	}

	// 4. Event bus and notification worker
	dispatcher := worker.NewDispatcher(store, logger)
	var bus repository.MessageBus
	var servers []Server

	switch cfg.BusProvider {
	case "nats":
		nc, err := connectNats(cfg.NatsAddr())
		if err != nil {
			return nil, runCleanup(cleanupFns), err
		}
		cleanupFns = append(cleanupFns, nc.Close)
		bus = transportNATS.NewBus(nc)
		servers = append(servers, worker.NewNATSWorker(dispatcher, nc, logger))

	case "rabbit":
		pub, err := transportRabbit.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			return nil, runCleanup(cleanupFns), err
		}
		cleanupFns = append(cleanupFns, func() { _ = pub.Close() })

		consumer, err := transportRabbit.NewConsumer(cfg.RabbitURL, cfg.RabbitExchange, cfg.RabbitQueue, worker.Topics())
		if err != nil {
			return nil, runCleanup(cleanupFns), err
		}
		cleanupFns = append(cleanupFns, func() { _ = consumer.Close() })

		bus = pub
		servers = append(servers, worker.NewRabbitWorker(dispatcher, consumer, logger))

	default:
		bus = worker.NewInProcessBus(dispatcher, logger)
	}

	// 5. Services
	configSvc := service.NewConfigService(settings, logger)
	httpServices := transportHTTP.Services{
		Auth:          service.NewAuthService(store, settings, logger),
		Payments:      service.NewPaymentService(store, settings, bus, orc, logger),
		Statements:    service.NewStatementService(store, orc, logger),
		Bookings:      service.NewBookingService(store, settings, bus, logger),
		License:       service.NewLicenseService(settings, logger),
		Config:        configSvc,
		Access:        service.NewAccessService(store, configSvc, bus, logger),
		Providers:     service.NewProviderService(store, bus, logger),
		Notifications: service.NewNotificationService(store),
		Community:     service.NewCommunityService(store, logger),
		Users:         store,
	}

	servers = append(servers, transportHTTP.NewServer(cfg.ApiAddr(), httpServices))

	return NewApp(servers), runCleanup(cleanupFns), nil
}

// runCleanup returns a single function that calls all cleanup functions in reverse order.
func runCleanup(fns []func()) func() {
	return func() {
		for i := len(fns) - 1; i >= 0; i-- {
			fns[i]()
		}
	}
}
