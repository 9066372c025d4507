package config

import (
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("PAYMENT_GATEWAY_URL", "https://pay.test")
	t.Setenv("PAYMENT_GATEWAY_KEY", "sk_test")
}

// TestLoad_Defaults verifies that default values are used when env vars are missing.
func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("APP_ENV")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("SERVER_PORT")
	setRequiredEnv(t)

	cfg, err := Load(".")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "5.99", cfg.Pricing.FlatShippingCost)
	assert.Equal(t, "150.00", cfg.Pricing.FreeShippingThreshold)
	assert.Equal(t, 5, cfg.Pricing.MinimumOrderItems)
	assert.Equal(t, "EUR", cfg.Payment.Currency)
}

// TestLoad_EnvVars verifies that environment variables override defaults.
func TestLoad_EnvVars(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("PRICING_FLAT_SHIPPING", "4.50")
	t.Setenv("PRICING_MINIMUM_ORDER_ITEMS", "3")

	cfg, err := Load(".")
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "4.50", cfg.Pricing.FlatShippingCost)
	assert.Equal(t, 3, cfg.Pricing.MinimumOrderItems)
	assert.Equal(t, "https://pay.test", cfg.Payment.URL)
}

// TestLoad_File verifies that values are loaded from a .env file.
func TestLoad_File(t *testing.T) {
	content := []byte(`
APP_ENV=staging
LOG_LEVEL=warn
SERVER_PORT=7070
REDIS_URL=redis://staging:6379/1
PAYMENT_GATEWAY_URL=https://pay.staging.test
PAYMENT_GATEWAY_KEY=sk_staging
`)
	err := os.WriteFile(".env", content, 0644)
	require.NoError(t, err)
	defer os.Remove(".env")

	cfg, err := Load(".")
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 7070, cfg.ServerPort)
	assert.Equal(t, "redis://staging:6379/1", cfg.Redis.URL)
}

// TestLoad_ValidationFailure verifies that missing required fields return an error.
func TestLoad_ValidationFailure(t *testing.T) {
	os.Unsetenv("REDIS_URL")
	os.Unsetenv("PAYMENT_GATEWAY_URL")
	os.Unsetenv("PAYMENT_GATEWAY_KEY")

	cfg, err := Load(".")
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "missing required configuration")
}

// TestPricingConfig_Decimals verifies decimal parsing of pricing values.
func TestPricingConfig_Decimals(t *testing.T) {
	p := PricingConfig{
		FlatShippingCost:      "5.99",
		FreeShippingThreshold: "150.00",
		TaxRate:               "0.23",
	}

	flat, err := p.FlatShipping()
	require.NoError(t, err)
	assert.True(t, flat.Equal(decimal.RequireFromString("5.99")))

	threshold, err := p.FreeShippingAt()
	require.NoError(t, err)
	assert.True(t, threshold.Equal(decimal.RequireFromString("150.00")))

	tax, err := p.Tax()
	require.NoError(t, err)
	assert.True(t, tax.Equal(decimal.RequireFromString("0.23")))
}

// TestPricingConfig_InvalidDecimal verifies that malformed money values error out.
func TestPricingConfig_InvalidDecimal(t *testing.T) {
	p := PricingConfig{FlatShippingCost: "not-a-number"}

	_, err := p.FlatShipping()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PRICING_FLAT_SHIPPING")
}
