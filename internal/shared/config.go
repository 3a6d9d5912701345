package shared

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	StorageMySQL  = "mysql"
	StorageMemory = "memory"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	// RequestTimeout bounds each API request.
	RequestTimeout time.Duration

	Storage   string // mysql|memory
	SeedFile  string // memory storage only
	MySQLDSN  string
	RedisAddr string
	RedisDB   int
	RedisPass string

	QuoteCacheTTL  time.Duration
	QuoteWorkers   int
	RateLimitRPS   float64
	RateLimitBurst int

	ImportWorkers int
	ImportBatch   int
}

// Load reads the environment, after merging a .env file when one exists.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("could not read .env")
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		LogLevel:       env("LOG_LEVEL", "info"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ":9100"),
		RequestTimeout: time.Duration(atoi("HTTP_REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		Storage:        env("STORAGE", StorageMySQL),
		SeedFile:       env("SEED_FILE", ""),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/rates?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		QuoteCacheTTL:  time.Duration(atoi("QUOTE_CACHE_TTL_SECONDS", 300)) * time.Second,
		QuoteWorkers:   atoi("QUOTE_WORKERS", 4),
		RateLimitRPS:   atof("RATE_LIMIT_RPS", 0),
		RateLimitBurst: atoi("RATE_LIMIT_BURST", 20),
		ImportWorkers:  atoi("IMPORT_WORKERS", 8),
		ImportBatch:    atoi("IMPORT_BATCH", 500),
	}
	if c.Storage != StorageMySQL && c.Storage != StorageMemory {
		log.Warn().Str("storage", c.Storage).Msg("unknown STORAGE, using mysql")
		c.Storage = StorageMySQL
	}
	if c.Storage == StorageMemory && c.SeedFile == "" {
		log.Warn().Msg("STORAGE=memory without SEED_FILE starts empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func atof(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
