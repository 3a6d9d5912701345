package shared

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"STORAGE", "QUOTE_CACHE_TTL_SECONDS", "RATE_LIMIT_RPS", "IMPORT_BATCH", "HTTP_REQUEST_TIMEOUT_SECONDS"} {
		t.Setenv(k, "")
	}
	c := Load()
	if c.Storage != StorageMySQL || c.QuoteCacheTTL != 5*time.Minute || c.RequestTimeout != 15*time.Second || c.RateLimitRPS != 0 || c.ImportBatch != 500 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE", "memory")
	t.Setenv("SEED_FILE", "seed.json")
	t.Setenv("QUOTE_CACHE_TTL_SECONDS", "60")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("QUOTE_WORKERS", "not-a-number")
	c := Load()
	if c.Storage != StorageMemory || c.SeedFile != "seed.json" {
		t.Fatalf("storage: %+v", c)
	}
	if c.QuoteCacheTTL != time.Minute || c.RateLimitRPS != 2.5 {
		t.Fatalf("numbers: ttl=%v rps=%v", c.QuoteCacheTTL, c.RateLimitRPS)
	}
	if c.QuoteWorkers != 4 {
		t.Fatalf("bad int should fall back to default, got %d", c.QuoteWorkers)
	}
}

func TestLoad_UnknownStorage(t *testing.T) {
	t.Setenv("STORAGE", "postgres")
	if c := Load(); c.Storage != StorageMySQL {
		t.Fatalf("got %q", c.Storage)
	}
}
