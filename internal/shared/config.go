package shared

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const DefaultSiteURL = "https://antique-appraiser-directory.appraisily.com"

type Config struct {
	AppEnv   string `yaml:"app_env"`
	LogLevel string `yaml:"log_level"`

	// api + ingestor
	HTTPAddr    string        `yaml:"http_addr"`
	MetricsAddr string        `yaml:"metrics_addr"`
	MySQLDSN    string        `yaml:"mysql_dsn"`
	RedisAddr   string        `yaml:"redis_addr"`
	RedisDB     int           `yaml:"redis_db"`
	RedisPass   string        `yaml:"redis_password"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
	Workers     int           `yaml:"ingest_workers"`

	// data store; empty means the embedded documents
	DataDir string `yaml:"data_dir"`

	// static build tooling
	PublicDir          string        `yaml:"public_dir"`
	SiteURL            string        `yaml:"site_url"`
	StaleAssetPrefix   string        `yaml:"stale_asset_prefix"`
	ClientRenderMarker string        `yaml:"client_render_marker"`
	ImageBatchSize     int           `yaml:"image_batch_size"`
	ImageTimeout       time.Duration `yaml:"image_timeout"`
	ImageRPS           int           `yaml:"image_rps"`
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:             env("APP_ENV", "prod"),
		LogLevel:           env("LOG_LEVEL", "info"),
		HTTPAddr:           env("HTTP_ADDR", ":8080"),
		MetricsAddr:        env("METRICS_ADDR", ":9100"),
		MySQLDSN:           env("MYSQL_DSN", "root:root@tcp(localhost:3306)/directory?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:          env("REDIS_ADDR", "localhost:6379"),
		RedisPass:          env("REDIS_PASSWORD", ""),
		RedisDB:            atoi("REDIS_DB", 0),
		CacheTTL:           time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		Workers:            atoi("INGEST_WORKERS", 4),
		DataDir:            env("DATA_DIR", ""),
		PublicDir:          env("PUBLIC_DIR", "dist"),
		SiteURL:            env("SITE_URL", DefaultSiteURL),
		StaleAssetPrefix:   env("STALE_ASSET_PREFIX", "/directory"),
		ClientRenderMarker: env("CLIENT_RENDER_MARKER", "__APPRAISILY_CLIENT_RENDER_ONLY__"),
		ImageBatchSize:     atoi("IMAGE_BATCH_SIZE", 5),
		ImageTimeout:       time.Duration(atoi("IMAGE_TIMEOUT_SECONDS", 10)) * time.Second,
		ImageRPS:           atoi("IMAGE_RPS", 0),
	}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := c.Overlay(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("config file ignored")
		}
	}
	return c
}

// Overlay reads a YAML file and replaces every field it sets.
// Durations use Go syntax ("15m", "10s").
func (c *Config) Overlay(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
