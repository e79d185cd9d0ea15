package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/roombooking/internal/health"
	"github.com/vladislavdragonenkov/roombooking/internal/storage/memory"
	"github.com/vladislavdragonenkov/roombooking/internal/storage/postgres"
	"github.com/vladislavdragonenkov/roombooking/internal/storage/rediscache"
)

// runtimeDependencies содержит хранилища и проверки, выбранные конфигурацией.
type runtimeDependencies struct {
	rooms        domain.RoomRepository
	students     domain.StudentRepository
	reservations domain.ReservationRepository
	outbox       domain.OutboxRepository
	history      domain.HistoryRepository

	checkers map[string]healthcheck.Checker
	closers  []func() error
}

func (d *runtimeDependencies) close(logger *log.Entry) {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			logger.WithError(err).Warn("failed to release dependency")
		}
	}
	d.closers = nil
}

// initRuntimeDependencies поднимает хранилище и, если настроен, кэш комнат в Redis.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	deps := &runtimeDependencies{checkers: make(map[string]healthcheck.Checker)}

	switch cfg.StorageDriver {
	case StorageDriverMemory:
		deps.rooms = memory.NewRoomRepository()
		deps.students = memory.NewStudentRepository()
		deps.reservations = memory.NewReservationRepository()
		deps.outbox = memory.NewOutboxRepository()
		deps.history = memory.NewHistoryRepository()
		deps.checkers["storage"] = healthcheck.NewSimpleChecker("memory", func(context.Context) error { return nil })
		logger.Info("using in-memory storage")

	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, errors.New("postgres storage driver requires dsn")
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.MigrateUp(ctx, 0); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("migrate postgres: %w", err)
			}
		}
		deps.rooms = postgres.NewRoomRepository(store)
		deps.students = postgres.NewStudentRepository(store)
		deps.reservations = postgres.NewReservationRepository(store)
		deps.outbox = postgres.NewOutboxRepository(store)
		deps.history = postgres.NewHistoryRepository(store)
		deps.checkers["storage"] = healthcheck.NewSimpleChecker("postgres", store.Ping)
		deps.closers = append(deps.closers, store.Close)
		logger.Info("using postgres storage")

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rediscache.Ping(ctx, client); err != nil {
			// Кэш необязателен: декоратор сам уходит в хранилище, пока Redis недоступен.
			logger.WithError(err).Warn("redis is unavailable, room cache runs degraded")
		}
		deps.rooms = rediscache.NewRoomCache(deps.rooms, client,
			rediscache.WithTTL(cfg.RoomCacheTTL),
			rediscache.WithLogger(logger.WithField("component", "room-cache")),
		)
		deps.checkers["redis"] = healthcheck.NewOptionalChecker("redis", func(ctx context.Context) error {
			return rediscache.Ping(ctx, client)
		})
		deps.closers = append(deps.closers, client.Close)
		logger.WithField("addr", cfg.RedisAddr).Info("room cache enabled")
	}

	return deps, nil
}
