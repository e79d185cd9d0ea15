package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"

	BrokerNone     = "none"
	BrokerKafka    = "kafka"
	BrokerRabbitMQ = "rabbitmq"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr    string `yaml:"http_addr"`
	GRPCAddr    string `yaml:"grpc_addr"`
	MetricsAddr string `yaml:"metrics_addr"`

	StorageDriver       string `yaml:"storage_driver"`
	PostgresDSN         string `yaml:"postgres_dsn"`
	PostgresAutoMigrate bool   `yaml:"postgres_auto_migrate"`

	// RedisAddr включает кэш справочника комнат; пустое значение отключает его.
	RedisAddr    string        `yaml:"redis_addr"`
	RoomCacheTTL time.Duration `yaml:"room_cache_ttl"`

	EventsBroker string   `yaml:"events_broker"`
	KafkaBrokers []string `yaml:"kafka_brokers"`
	AMQPURL      string   `yaml:"amqp_url"`
	EventsTopic  string   `yaml:"events_topic"`
	DLQTopic     string   `yaml:"dlq_topic"`

	OutboxPollInterval time.Duration `yaml:"outbox_poll_interval"`
	OutboxBatchSize    int           `yaml:"outbox_batch_size"`
	OutboxMaxAttempts  int           `yaml:"outbox_max_attempts"`
	OutboxRetryDelay   time.Duration `yaml:"outbox_retry_delay"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DefaultConfig возвращает настройки для локального запуска без внешних зависимостей.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		GRPCAddr:            ":50051",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		RoomCacheTTL:        5 * time.Minute,
		EventsBroker:        BrokerNone,
		EventsTopic:         "booking.events",
		DLQTopic:            "booking.dlq",
		OutboxPollInterval:  time.Second,
		OutboxBatchSize:     100,
		OutboxMaxAttempts:   3,
		OutboxRetryDelay:    200 * time.Millisecond,
		ShutdownTimeout:     5 * time.Second,
	}
}

// LoadConfig собирает конфигурацию: значения по умолчанию, затем YAML-файл из
// BOOKING_CONFIG (если задан), затем переменные окружения.
func LoadConfig() (Config, error) {
	return loadConfig(os.LookupEnv, os.ReadFile)
}

func loadConfig(lookup func(string) (string, bool), readFile func(string) ([]byte, error)) (Config, error) {
	cfg := DefaultConfig()

	if path, ok := lookup("BOOKING_CONFIG"); ok && strings.TrimSpace(path) != "" {
		raw, err := readFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []error

	str := func(key string, target *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*target = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, target *bool) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			parsed, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*target = parsed
		}
	}
	integer := func(key string, target *int) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			parsed, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*target = parsed
		}
	}
	duration := func(key string, target *time.Duration) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			parsed, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*target = parsed
		}
	}

	str("BOOKING_HTTP_ADDR", &cfg.HTTPAddr)
	str("BOOKING_GRPC_ADDR", &cfg.GRPCAddr)
	str("BOOKING_METRICS_ADDR", &cfg.MetricsAddr)
	str("BOOKING_STORAGE_DRIVER", &cfg.StorageDriver)
	str("BOOKING_POSTGRES_DSN", &cfg.PostgresDSN)
	boolean("BOOKING_POSTGRES_AUTO_MIGRATE", &cfg.PostgresAutoMigrate)
	str("BOOKING_REDIS_ADDR", &cfg.RedisAddr)
	duration("BOOKING_ROOM_CACHE_TTL", &cfg.RoomCacheTTL)
	str("BOOKING_EVENTS_BROKER", &cfg.EventsBroker)
	str("BOOKING_AMQP_URL", &cfg.AMQPURL)
	str("BOOKING_EVENTS_TOPIC", &cfg.EventsTopic)
	str("BOOKING_DLQ_TOPIC", &cfg.DLQTopic)
	duration("BOOKING_OUTBOX_POLL_INTERVAL", &cfg.OutboxPollInterval)
	integer("BOOKING_OUTBOX_BATCH_SIZE", &cfg.OutboxBatchSize)
	integer("BOOKING_OUTBOX_MAX_ATTEMPTS", &cfg.OutboxMaxAttempts)
	duration("BOOKING_OUTBOX_RETRY_DELAY", &cfg.OutboxRetryDelay)
	duration("BOOKING_SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout)

	if v, ok := lookup("KAFKA_BROKERS"); ok && strings.TrimSpace(v) != "" {
		cfg.KafkaBrokers = splitList(v)
		// KAFKA_BROKERS без явного брокера включает Kafka, как и раньше.
		if _, explicit := lookup("BOOKING_EVENTS_BROKER"); !explicit && cfg.EventsBroker == BrokerNone {
			cfg.EventsBroker = BrokerKafka
		}
	}

	return errors.Join(errs...)
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return errors.New("postgres storage driver requires BOOKING_POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}

	switch c.EventsBroker {
	case "", BrokerNone:
	case BrokerKafka:
		if len(c.KafkaBrokers) == 0 {
			return errors.New("kafka events broker requires KAFKA_BROKERS")
		}
	case BrokerRabbitMQ:
		if strings.TrimSpace(c.AMQPURL) == "" {
			return errors.New("rabbitmq events broker requires BOOKING_AMQP_URL")
		}
	default:
		return fmt.Errorf("unsupported events broker %q", c.EventsBroker)
	}
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
