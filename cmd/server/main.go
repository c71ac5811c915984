package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/kmurflow98/landsage-app/internal/arcgis"
	"github.com/kmurflow98/landsage-app/internal/cache"
	"github.com/kmurflow98/landsage-app/internal/cache/rediscache"
	"github.com/kmurflow98/landsage-app/internal/config"
	"github.com/kmurflow98/landsage-app/internal/flood"
	"github.com/kmurflow98/landsage-app/internal/invalidation/kafkaconsumer"
	"github.com/kmurflow98/landsage-app/internal/logger"
	"github.com/kmurflow98/landsage-app/internal/metrics"
	"github.com/kmurflow98/landsage-app/internal/observability"
	"github.com/kmurflow98/landsage-app/internal/server"
	"github.com/kmurflow98/landsage-app/internal/soil"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func run() int {
	// optional .env for local development; ignore a missing file
	_ = godotenv.Load()

	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   strings.ToLower(os.Getenv("LOG_CONSOLE")) == "true",
		SampleN:   envInt("LOG_SAMPLE_N", 0),
		Component: "server",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	observability.ExposeBuildInfo(Version)
	appLog.Info("starting server",
		"addr", cfg.Addr,
		"version", Version,
		"soils_url", cfg.SoilsURL,
		"flood_url", cfg.FloodURL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsEnabled {
		metrics.Serve(ctx, metrics.Config{Addr: cfg.MetricsAddr, Path: cfg.MetricsPath}, appLog)
	}

	var responseCache cache.Interface
	if cfg.RedisAddr != "" {
		rc, err := rediscache.New(ctx, cfg.RedisAddr)
		if err != nil {
			appLog.Error("redis connect failed, running without cache", "addr", cfg.RedisAddr, "err", err)
		} else {
			defer func() { _ = rc.Close() }()
			responseCache = cache.WithTimeout(rc, cfg.CacheOpTimeout)
			appLog.Info("response cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
		}
	}

	soilsClient := arcgis.NewClient(appLog, cfg.SoilsURL, "soils")
	floodClient := arcgis.NewClient(appLog, cfg.FloodURL, "flood")

	deps := server.Deps{
		Soil:  soil.NewService(appLog, soilsClient, responseCache, cfg.CacheTTL),
		Flood: flood.NewService(appLog, floodClient, cfg.FloodMemoSize),
	}

	if cfg.Invalidation.Enabled {
		if responseCache == nil {
			appLog.Warn("invalidation enabled but no cache configured; consumer not started")
		} else {
			consumer := kafkaconsumer.New(
				kafkaconsumer.NewConfig(cfg.Invalidation.Brokers, cfg.Invalidation.Topic, cfg.Invalidation.GroupID),
				appLog, responseCache)
			go func() {
				if err := consumer.Start(ctx); err != nil {
					appLog.Error("invalidation consumer exited", "err", err)
				}
			}()
		}
	}

	if err := server.Run(ctx, cfg, appLog, deps); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
