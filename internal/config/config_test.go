package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":      "postgres://localhost/pos",
		"REDIS_URL":         "redis://localhost:6379",
		"PORT":              "",
		"CURRENCY_CODE":     "",
		"CATALOG_CACHE_TTL": "",
	})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr())
	assert.Equal(t, "EUR", cfg.CurrencyCode)
	assert.Equal(t, 3, cfg.LowStockMark)
	assert.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
	assert.Equal(t, "120-M", cfg.RateLimit)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"DATABASE_URL": "",
		"REDIS_URL":    "redis://localhost:6379",
	})
	require.Error(t, err)
}

func TestLoadParsesOverrides(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":         "postgres://localhost/pos",
		"REDIS_URL":            "redis://localhost:6379",
		"PORT":                 "9090",
		"LOW_STOCK_MARK":       "10",
		"CORS_ALLOWED_ORIGINS": "https://till.example.com, https://back.example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr())
	assert.Equal(t, 10, cfg.LowStockMark)
	assert.Equal(t, []string{"https://till.example.com", "https://back.example.com"}, cfg.CORSAllowedOrigins)
}
