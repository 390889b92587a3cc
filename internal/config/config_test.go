package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DEFAULT_QUANTITY", "")
	t.Setenv("UPDATE_PRODUCT", "")
	t.Setenv("BACKORDER_STORE_IDS", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.DefaultQuantity)
	assert.False(t, cfg.UpdateProduct)
	assert.Empty(t, cfg.BackorderStoreIDs)
	assert.Equal(t, 10, cfg.BackorderProductionDays)
	assert.Equal(t, 4, cfg.TaxonomyMaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.NotificationDelay)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DEFAULT_QUANTITY", "50")
	t.Setenv("UPDATE_PRODUCT", "true")
	t.Setenv("BACKORDER_STORE_IDS", "51412, 1001,bogus")
	t.Setenv("TAXONOMY_RETRY_DELAY", "1s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.example.com, https://app.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.DefaultQuantity)
	assert.True(t, cfg.UpdateProduct)
	assert.Equal(t, []int64{51412, 1001}, cfg.BackorderStoreIDs)
	assert.Equal(t, time.Second, cfg.TaxonomyRetryDelay)
	assert.True(t, cfg.BackorderEnabled(51412))
	assert.False(t, cfg.BackorderEnabled(7))
	assert.Equal(t, []string{"https://admin.example.com", "https://app.example.com"}, cfg.CORSAllowedOrigins)
}
