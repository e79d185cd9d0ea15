package app

import (
	"context"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/roombooking/internal/health"
	"github.com/vladislavdragonenkov/roombooking/internal/storage/rediscache"
)

func TestInitRuntimeDependencies_Memory(t *testing.T) {
	logger := log.WithField("test", "memory-init")
	deps, err := initRuntimeDependencies(context.Background(), DefaultConfig(), logger)
	if err != nil {
		t.Fatalf("init memory dependencies: %v", err)
	}
	defer deps.close(logger)

	if deps.rooms == nil || deps.students == nil || deps.reservations == nil || deps.outbox == nil || deps.history == nil {
		t.Fatalf("memory dependencies must be initialized: %+v", deps)
	}
	if len(deps.closers) != 0 {
		t.Fatalf("memory storage has nothing to close, got %d closers", len(deps.closers))
	}
	if _, ok := deps.checkers["redis"]; ok {
		t.Fatal("redis checker must not be registered without redis address")
	}
	if check := deps.checkers["storage"].Check(context.Background()); check.Status != healthcheck.StatusHealthy {
		t.Fatalf("expected healthy memory storage, got %+v", check)
	}
}

func TestInitRuntimeDependencies_Errors(t *testing.T) {
	postgresNoDSN := DefaultConfig()
	postgresNoDSN.StorageDriver = StorageDriverPostgres

	unknown := DefaultConfig()
	unknown.StorageDriver = "bolt"

	cases := map[string]struct {
		cfg     Config
		message string
	}{
		"postgres without dsn": {cfg: postgresNoDSN, message: "requires dsn"},
		"unknown driver":       {cfg: unknown, message: "unsupported storage driver"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := initRuntimeDependencies(context.Background(), tc.cfg, log.WithField("test", name))
			if err == nil || !strings.Contains(err.Error(), tc.message) {
				t.Fatalf("expected error containing %q, got %v", tc.message, err)
			}
		})
	}
}

func TestInitRuntimeDependencies_UnreachableRedisDegrades(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RedisAddr = "127.0.0.1:1"
	cfg.RoomCacheTTL = time.Minute

	logger := log.WithField("test", "redis-init")
	deps, err := initRuntimeDependencies(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("unreachable redis must not fail startup: %v", err)
	}
	defer deps.close(logger)

	if _, ok := deps.rooms.(*rediscache.RoomCache); !ok {
		t.Fatalf("expected rooms to be wrapped by room cache, got %T", deps.rooms)
	}
	if check := deps.checkers["redis"].Check(context.Background()); check.Status != healthcheck.StatusDegraded {
		t.Fatalf("expected degraded redis check, got %+v", check)
	}

	ctx := context.Background()
	if _, err := deps.rooms.Save(ctx, domain.Room{ID: "r1", Name: "Main hall", Capacity: 30}); err != nil {
		t.Fatalf("save room through degraded cache: %v", err)
	}
	room, err := deps.rooms.FindByID(ctx, "r1")
	if err != nil || room.Name != "Main hall" {
		t.Fatalf("expected room from storage, got %+v, %v", room, err)
	}
}
