package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 8081, cfg.GRPCPort)
	assert.Equal(t, "degrade", cfg.PricingMissingPolicy)
	assert.Equal(t, 10*time.Second, cfg.CheckoutTimeout)
	assert.Equal(t, uint64(8), cfg.MutationMaxRetries)
}

func TestLoadValidation(t *testing.T) {
	t.Run("postgres needs url", func(t *testing.T) {
		t.Setenv("STORAGE", "postgres")
		t.Setenv("DATABASE_URL", "")
		_, err := Load()
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("unknown storage", func(t *testing.T) {
		t.Setenv("STORAGE", "mongo")
		_, err := Load()
		assert.ErrorContains(t, err, "unknown STORAGE")
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("STORAGE", "postgres")
		t.Setenv("DATABASE_URL", "postgres://localhost/cart")
		t.Setenv("CHECKOUT_TIMEOUT", "2s")
		t.Setenv("PRICING_MISSING_POLICY", "strict")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, cfg.CheckoutTimeout)
		assert.Equal(t, "strict", cfg.PricingMissingPolicy)
	})
}
