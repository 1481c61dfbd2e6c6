// Command omsd is the order management service daemon: it dials the
// broker, wires an oms.Service over the connection, and runs until
// SIGINT/SIGTERM (exit status 0) or until the broker connection is lost
// (exit status 2).
//
// Architecture:
//
//	main.go                 — entry point: loads config, dials the broker, starts the service
//	internal/config         — YAML + OMSD_* env config
//	transport, client       — broker connection and pub/sub client
//	oms                     — the service shell: validates, transitions, and publishes orders
//	orders, statemachine    — the order domain and its transition table
//	store                   — optional order/rules snapshot persistence
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/axtrade/omsbroker/client"
	"github.com/axtrade/omsbroker/internal/config"
	"github.com/axtrade/omsbroker/oms"
	"github.com/axtrade/omsbroker/pkg/logger"
	"github.com/axtrade/omsbroker/store"
	"github.com/axtrade/omsbroker/transport"
)

func main() {
	cfgPath := "configs/omsd.yaml"
	if p := os.Getenv("OMSD_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err, "path", cfgPath)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	log := buildLogger(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := transport.Open(ctx, transport.Options{
		Host:              cfg.Broker.Host,
		Port:              cfg.Broker.Port,
		Name:              cfg.Broker.Name,
		ConnectTimeout:    cfg.Broker.ConnectTimeout,
		HandshakeTimeout:  cfg.Broker.HandshakeTimeout,
		ReconnectAttempts: cfg.Broker.ReconnectAttempts,
		ReconnectDelay:    cfg.Broker.ReconnectDelay,
		KeepAliveInterval: cfg.Broker.KeepAliveInterval,
		KeepAliveTimeout:  cfg.Broker.KeepAliveTimeout,
		Logger:            log,
	})
	if err != nil {
		log.Error("failed to connect to broker", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	orderStore, rulesStore, err := buildStores(cfg.Store)
	if err != nil {
		log.Error("failed to open stores", "error", err)
		os.Exit(1)
	}
	if orderStore != nil {
		defer orderStore.Close()
	}
	if rulesStore != nil {
		defer rulesStore.Close()
	}

	svc := oms.New(client.New(conn),
		oms.WithLogger(log),
		oms.WithHeartbeatInterval(cfg.Rules.HeartbeatInterval),
		oms.WithOrderStore(orderStore),
		oms.WithRulesStore(rulesStore),
		oms.WithOrderRateLimit(cfg.Rules.OrderRateLimit, cfg.Rules.OrderRateLimitWindow),
	)

	if err := svc.Start(ctx); err != nil {
		log.Error("failed to start oms service", "error", err)
		os.Exit(1)
	}
	log.Info("omsd started", "broker", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port), "store_backend", cfg.Store.Backend)

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		svc.Stop()
	case <-conn.CloseChan():
		log.Error("broker connection lost")
		svc.Stop()
		os.Exit(2)
	}
}

func buildLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	return logger.NewSlogLogger(level, os.Stdout).Logger()
}

func buildStores(cfg config.StoreConfig) (store.Store[store.OrderSnapshot], store.Store[store.RulesSnapshot], error) {
	switch cfg.Backend {
	case config.StoreBackendPebble:
		orders, err := store.NewPebbleStore[store.OrderSnapshot](store.PebbleStoreConfig{Path: cfg.PebbleDir, Prefix: "order:"})
		if err != nil {
			return nil, nil, fmt.Errorf("open order pebble store: %w", err)
		}
		rules, err := store.NewPebbleStore[store.RulesSnapshot](store.PebbleStoreConfig{Path: cfg.PebbleDir, Prefix: "rules:"})
		if err != nil {
			return nil, nil, fmt.Errorf("open rules pebble store: %w", err)
		}
		return orders, rules, nil
	case config.StoreBackendRedis:
		orders, err := store.NewRedisStore[store.OrderSnapshot](store.RedisStoreConfig{Addr: cfg.RedisAddr, DB: cfg.RedisDB, Prefix: "order:"})
		if err != nil {
			return nil, nil, fmt.Errorf("open order redis store: %w", err)
		}
		rules, err := store.NewRedisStore[store.RulesSnapshot](store.RedisStoreConfig{Addr: cfg.RedisAddr, DB: cfg.RedisDB, Prefix: "rules:"})
		if err != nil {
			return nil, nil, fmt.Errorf("open rules redis store: %w", err)
		}
		return orders, rules, nil
	default:
		return store.NewMemoryStore[store.OrderSnapshot](), store.NewMemoryStore[store.RulesSnapshot](), nil
	}
}
