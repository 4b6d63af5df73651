package main

import (
	"context"
	"net"
	"os/signal"
	"syscall"

	"github.com/nightkv/nightkv/internal/config"
	"github.com/nightkv/nightkv/internal/eventloop"
	"github.com/nightkv/nightkv/internal/keyspace"
	"github.com/nightkv/nightkv/internal/logger"
	"github.com/nightkv/nightkv/internal/server"
	"go.uber.org/zap"
)

const rehashStepsPerCron = 1

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync() //nolint:errcheck

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	log.Info("nightkv starting",
		zap.String("address", addr),
		zap.Int("set_max_list_size", cfg.Set.MaxListSize),
		zap.Int("expire_max_lookups_per_cycle", cfg.Expire.MaxLookupsPerCycle),
	)

	ks := keyspace.New(cfg.Set.MaxListSize)
	engine := server.NewEngine(ks, log)

	loop := eventloop.New(engine, log, eventloop.Config{
		Addr:               addr,
		MaxLookupsPerCycle: cfg.Expire.MaxLookupsPerCycle,
		RehashStepsPerCron: rehashStepsPerCron,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronTickMs := int(config.CronInterval.Milliseconds())
	if err := loop.Run(ctx, cronTickMs); err != nil {
		log.Error("event loop exited with error", zap.Error(err))
		return
	}

	log.Info("nightkv stopped")
}
