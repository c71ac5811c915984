// Package config resolves service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Default query endpoints. Both are ArcGIS REST /query URLs and can be
// overridden per deployment.
const (
	DefaultSoilsURL = "https://gisdata.in.gov/server/rest/services/Hosted/SSURGO_Soils/FeatureServer/0/query"
	DefaultFloodURL = "https://hazards.fema.gov/arcgis/rest/services/public/NFHL/MapServer/28/query"
)

type InvalidationCfg struct {
	Enabled bool
	Brokers string
	Topic   string
	GroupID string
}

type Config struct {
	Addr     string
	LogLevel string

	SoilsURL string
	FloodURL string

	RedisAddr      string
	CacheTTL       time.Duration
	CacheOpTimeout time.Duration

	MetricsEnabled bool
	MetricsAddr    string
	MetricsPath    string

	FloodMemoSize int

	Invalidation InvalidationCfg
}

func FromEnv() Config {
	return Config{
		Addr:     getenv("ADDR", ":8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		SoilsURL: getenv("SOILS_URL", DefaultSoilsURL),
		FloodURL: getenv("FLOOD_URL", DefaultFloodURL),

		RedisAddr:      getenv("REDIS_ADDR", ""),
		CacheTTL:       getduration("CACHE_TTL", 15*time.Minute),
		CacheOpTimeout: getduration("CACHE_OP_TIMEOUT", 250*time.Millisecond),

		MetricsEnabled: getbool("METRICS_ENABLED", false),
		MetricsAddr:    getenv("METRICS_ADDR", ":9090"),
		MetricsPath:    getenv("METRICS_PATH", "/metrics"),

		FloodMemoSize: getint("FLOOD_MEMO_SIZE", 2048),

		Invalidation: InvalidationCfg{
			Enabled: getbool("INVALIDATION_ENABLED", false),
			Brokers: getenv("KAFKA_BROKERS", "localhost:9092"),
			Topic:   getenv("KAFKA_TOPIC", "survey-refresh"),
			GroupID: getenv("KAFKA_GROUP_ID", "soils-invalidator"),
		},
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
