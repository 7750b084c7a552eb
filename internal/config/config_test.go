package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, PriceSourceCart, cfg.PriceSource)
	assert.Equal(t, 5*time.Minute, cfg.BarcodeCacheTTL)
	assert.Equal(t, 12*time.Hour, cfg.TokenTTL())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("PRICE_SOURCE", "catalog")
	t.Setenv("BARCODE_CACHE_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, PriceSourceCatalog, cfg.PriceSource)
	assert.Equal(t, 30*time.Second, cfg.BarcodeCacheTTL)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"dev without secret", Config{Env: "development", PriceSource: PriceSourceCart}, ""},
		{"prod short secret", Config{Env: "production", JWTSecret: "short", PriceSource: PriceSourceCart}, "JWT_SECRET"},
		{"unknown price source", Config{Env: "development", PriceSource: "client"}, "PRICE_SOURCE"},
		{"negative pool", Config{Env: "development", PriceSource: PriceSourceCart, WorkerPoolSize: -1}, "WORKER_POOL_SIZE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
