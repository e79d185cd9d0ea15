// Package rediscache содержит read-through кэш справочника аудиторий поверх Redis.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
)

const (
	defaultTTL       = 5 * time.Minute
	defaultKeyPrefix = "booking:room"
)

// Option настраивает кэш комнат.
type Option func(*RoomCache)

// WithTTL задаёт время жизни записи в кэше.
func WithTTL(ttl time.Duration) Option {
	return func(c *RoomCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithKeyPrefix задаёт префикс ключей, например для изоляции окружений.
func WithKeyPrefix(prefix string) Option {
	return func(c *RoomCache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithLogger задаёт логгер.
func WithLogger(logger *log.Entry) Option {
	return func(c *RoomCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// RoomCache оборачивает RoomRepository и кэширует FindByID.
//
// Redis не является источником истины: любая ошибка Redis логируется и запрос уходит
// в основное хранилище. Save и DeleteByID сбрасывают ключ после записи.
type RoomCache struct {
	next   domain.RoomRepository
	client redis.Cmdable
	ttl    time.Duration
	prefix string
	logger *log.Entry
}

// NewRoomCache создаёт кэширующий декоратор. client может быть *redis.Client или кластером.
func NewRoomCache(next domain.RoomRepository, client redis.Cmdable, opts ...Option) *RoomCache {
	c := &RoomCache{
		next:   next,
		client: client,
		ttl:    defaultTTL,
		prefix: defaultKeyPrefix,
		logger: log.WithField("component", "room-cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type cachedRoom struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

func (c *RoomCache) key(id string) string {
	return c.prefix + ":" + id
}

func (c *RoomCache) Save(ctx context.Context, room domain.Room) (domain.Room, error) {
	saved, err := c.next.Save(ctx, room)
	if err != nil {
		return domain.Room{}, err
	}
	c.invalidate(ctx, room.ID)
	return saved, nil
}

func (c *RoomCache) FindByID(ctx context.Context, id string) (domain.Room, error) {
	if room, ok := c.lookup(ctx, id); ok {
		return room, nil
	}

	room, err := c.next.FindByID(ctx, id)
	if err != nil {
		return domain.Room{}, err
	}
	c.store(ctx, room)
	return room, nil
}

func (c *RoomCache) FindAll(ctx context.Context) ([]domain.Room, error) {
	return c.next.FindAll(ctx)
}

func (c *RoomCache) DeleteByID(ctx context.Context, id string) error {
	if err := c.next.DeleteByID(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// ExistsByID отвечает из кэша только положительно; промах всегда уходит в хранилище.
func (c *RoomCache) ExistsByID(ctx context.Context, id string) (bool, error) {
	if _, ok := c.lookup(ctx, id); ok {
		return true, nil
	}
	return c.next.ExistsByID(ctx, id)
}

func (c *RoomCache) lookup(ctx context.Context, id string) (domain.Room, bool) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WithError(err).WithField("room_id", id).Warn("room cache read failed")
		}
		return domain.Room{}, false
	}

	var cached cachedRoom
	if err := json.Unmarshal(raw, &cached); err != nil {
		c.logger.WithError(err).WithField("room_id", id).Warn("room cache entry is corrupted")
		c.invalidate(ctx, id)
		return domain.Room{}, false
	}
	return domain.Room{ID: cached.ID, Name: cached.Name, Capacity: cached.Capacity}, true
}

func (c *RoomCache) store(ctx context.Context, room domain.Room) {
	raw, err := json.Marshal(cachedRoom{ID: room.ID, Name: room.Name, Capacity: room.Capacity})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(room.ID), raw, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("room_id", room.ID).Warn("room cache write failed")
	}
}

func (c *RoomCache) invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		c.logger.WithError(err).WithField("room_id", id).Warn("room cache invalidation failed")
	}
}

// Ping проверяет доступность Redis; используется readiness-проверкой.
func Ping(ctx context.Context, client redis.Cmdable) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

var _ domain.RoomRepository = (*RoomCache)(nil)
