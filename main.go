package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"marketfeed/config"
	"marketfeed/feed"
	"marketfeed/hub"
	"marketfeed/internal/channel"
	"marketfeed/logger"
	"marketfeed/reader"
	"marketfeed/reader/binance"
	"marketfeed/reader/bybit"
	"marketfeed/reader/okx"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "config/config.yml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service": cfg.Marketfeed.Name,
		"version": cfg.Marketfeed.Version,
	}).Info("starting marketfeed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := feed.NewStaticRegistry(cfg.Pairs)
	pairs, err := registry.ActivePairs(ctx)
	if err != nil {
		log.WithError(err).Error("failed to load trading pairs")
		os.Exit(1)
	}

	events := channel.NewEvents(cfg.Channels.EventBuffer)
	defer events.Close()

	var adapters []feed.Adapter
	for _, src := range []struct {
		cfg  config.AdapterConfig
		spec func(config.AdapterConfig) reader.ExchangeSpec
	}{
		{cfg.Source.Binance, func(c config.AdapterConfig) reader.ExchangeSpec { return binance.NewSpec(c) }},
		{cfg.Source.Bybit, func(c config.AdapterConfig) reader.ExchangeSpec { return bybit.NewSpec(c) }},
		{cfg.Source.Okx, func(c config.AdapterConfig) reader.ExchangeSpec { return okx.NewSpec(c) }},
	} {
		if !src.cfg.Enabled {
			continue
		}
		ac := src.cfg
		if len(ac.Symbols) == 0 {
			ac.Symbols = pairs
		}
		adapter, err := reader.New(src.spec(ac), ac, events)
		if err != nil {
			log.WithError(err).Error("failed to create adapter")
			os.Exit(1)
		}
		adapters = append(adapters, adapter)
	}

	broadcastHub := hub.New(cfg.Hub)
	go func() {
		if err := broadcastHub.Run(ctx); err != nil {
			log.WithError(err).Error("websocket server failed")
			cancel()
		}
	}()

	orchestrator := feed.New(broadcastHub, events, adapters...)
	if err := orchestrator.Start(ctx); err != nil {
		log.WithError(err).Error("failed to start feed orchestrator")
		os.Exit(1)
	}

	log.Info("all components started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.WithFields(logger.Fields{"signal": sig.String()}).Info("shutdown signal received")

	log.Info("starting graceful shutdown")
	cancel()

	done := make(chan struct{})
	go func() {
		orchestrator.Stop()
		close(done)
	}()

	select {
	case <-done:
		log.Info("graceful shutdown completed")
	case <-time.After(30 * time.Second):
		log.Warn("graceful shutdown timeout exceeded")
	}

	log.Info("marketfeed stopped")
}
