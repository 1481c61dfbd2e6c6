// Package config defines the OMS daemon's configuration. Config is loaded
// from a YAML file (default: configs/omsd.yaml) with overridable fields
// via OMSD_* environment variables. The broker address is the one
// exception: it also honors the bare NATS_HOST/NATS_PORT names, since
// that's the external contract operators are handed regardless of
// which service is actually dialing the broker.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration for cmd/omsd.
type Config struct {
	Broker  BrokerConfig  `mapstructure:"broker"`
	Rules   RulesConfig   `mapstructure:"rules"`
	Store   StoreConfig   `mapstructure:"store"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// BrokerConfig points the client at the pub/sub broker it connects to.
type BrokerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	Name              string        `mapstructure:"name"`
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
	HandshakeTimeout  time.Duration `mapstructure:"handshake_timeout"`
	ReconnectAttempts int           `mapstructure:"reconnect_attempts"`
	ReconnectDelay    time.Duration `mapstructure:"reconnect_delay"`
	KeepAliveInterval time.Duration `mapstructure:"keepalive_interval"`
	KeepAliveTimeout  time.Duration `mapstructure:"keepalive_timeout"`
}

// RulesConfig tunes how often the OMS publishes its heartbeat and the
// per-account orders.new intake rate limit.
type RulesConfig struct {
	HeartbeatInterval   time.Duration `mapstructure:"heartbeat_interval"`
	OrderRateLimit      int           `mapstructure:"order_rate_limit"`
	OrderRateLimitWindow time.Duration `mapstructure:"order_rate_limit_window"`
}

// StoreBackend selects which store.Store implementation backs order and
// rules persistence.
type StoreBackend string

const (
	StoreBackendMemory StoreBackend = "memory"
	StoreBackendPebble StoreBackend = "pebble"
	StoreBackendRedis  StoreBackend = "redis"
)

// StoreConfig configures the OMS's order/rules snapshot mirrors.
type StoreConfig struct {
	Backend  StoreBackend `mapstructure:"backend"`
	PebbleDir string      `mapstructure:"pebble_dir"`
	RedisAddr string      `mapstructure:"redis_addr"`
	RedisDB   int         `mapstructure:"redis_db"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config from a YAML file with env var overrides. Every field
// is overridable via OMSD_<SECTION>_<FIELD>, e.g. OMSD_BROKER_HOST.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("OMSD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The broker address is also reachable under the plain NATS_HOST/
	// NATS_PORT names (the external, OMSD-prefix-agnostic contract
	// operators are told to use), in addition to the usual
	// OMSD_BROKER_HOST/OMSD_BROKER_PORT AutomaticEnv binding.
	if err := v.BindEnv("broker.host", "NATS_HOST", "OMSD_BROKER_HOST"); err != nil {
		return nil, fmt.Errorf("bind NATS_HOST: %w", err)
	}
	if err := v.BindEnv("broker.port", "NATS_PORT", "OMSD_BROKER_PORT"); err != nil {
		return nil, fmt.Errorf("bind NATS_PORT: %w", err)
	}

	v.SetDefault("broker.host", "localhost")
	v.SetDefault("broker.port", 4222)
	v.SetDefault("broker.name", "omsd")
	v.SetDefault("broker.connect_timeout", "5s")
	v.SetDefault("broker.handshake_timeout", "5s")
	v.SetDefault("broker.reconnect_attempts", 10)
	v.SetDefault("broker.reconnect_delay", "500ms")
	v.SetDefault("broker.keepalive_interval", "20s")
	v.SetDefault("broker.keepalive_timeout", "5s")
	v.SetDefault("rules.heartbeat_interval", "10s")
	v.SetDefault("rules.order_rate_limit", 0)
	v.SetDefault("rules.order_rate_limit_window", "1m")
	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.pebble_dir", "")
	v.SetDefault("store.redis_addr", "")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks all required fields and value ranges.
func (c *Config) Validate() error {
	if c.Broker.Host == "" {
		return fmt.Errorf("broker.host is required")
	}
	if c.Broker.Port <= 0 {
		return fmt.Errorf("broker.port must be > 0")
	}
	switch c.Store.Backend {
	case StoreBackendMemory, StoreBackendPebble, StoreBackendRedis:
	default:
		return fmt.Errorf("store.backend must be one of: memory, pebble, redis")
	}
	if c.Store.Backend == StoreBackendPebble && c.Store.PebbleDir == "" {
		return fmt.Errorf("store.pebble_dir is required when store.backend is pebble")
	}
	if c.Store.Backend == StoreBackendRedis && c.Store.RedisAddr == "" {
		return fmt.Errorf("store.redis_addr is required when store.backend is redis")
	}
	if c.Rules.HeartbeatInterval <= 0 {
		return fmt.Errorf("rules.heartbeat_interval must be > 0")
	}
	return nil
}
