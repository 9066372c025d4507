package config

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// Redis holds the connection settings for the durable session store.
	Redis RedisConfig `mapstructure:",squash"`

	// Pricing holds the storefront pricing rules.
	Pricing PricingConfig `mapstructure:",squash"`

	// Payment holds the payment gateway credentials.
	Payment PaymentConfig `mapstructure:",squash"`

	// Notifications holds the outbound notification settings.
	Notifications NotificationConfig `mapstructure:",squash"`
}

// RedisConfig holds the connection details for Redis.
type RedisConfig struct {
	// URL is the Redis connection string, e.g. redis://localhost:6379/0.
	URL string `mapstructure:"REDIS_URL" required:"true"`
}

// PricingConfig holds the business constants used by the pricing calculator.
// Monetary values are decimal strings to keep currency arithmetic exact.
type PricingConfig struct {
	// FlatShippingCost is the shipping fee charged below the free-shipping threshold.
	FlatShippingCost string `mapstructure:"PRICING_FLAT_SHIPPING" default:"5.99"`
	// FreeShippingThreshold is the subtotal at which shipping becomes free.
	FreeShippingThreshold string `mapstructure:"PRICING_FREE_SHIPPING_THRESHOLD" default:"150.00"`
	// MinimumOrderItems is the minimum total item count required to check out.
	MinimumOrderItems int `mapstructure:"PRICING_MINIMUM_ORDER_ITEMS" default:"5"`
	// TaxRate is the flat VAT-style rate applied at order creation, e.g. 0.23.
	TaxRate string `mapstructure:"PRICING_TAX_RATE" default:"0.23"`
}

// PaymentConfig holds the credentials for the payment gateway.
type PaymentConfig struct {
	// URL is the base URL of the payment gateway.
	URL string `mapstructure:"PAYMENT_GATEWAY_URL" required:"true"`
	// APIKey is the bearer token for gateway requests.
	APIKey string `mapstructure:"PAYMENT_GATEWAY_KEY" required:"true"`
	// Currency is the ISO currency code for all charges.
	Currency string `mapstructure:"PAYMENT_CURRENCY" default:"EUR"`
}

// NotificationConfig holds the outbound notification settings.
type NotificationConfig struct {
	// WebhookURL is the endpoint that receives order event notifications.
	// Empty disables notifications.
	WebhookURL string `mapstructure:"NOTIFY_WEBHOOK_URL" default:""`
}

// FlatShipping parses the flat shipping cost as a decimal.
func (p PricingConfig) FlatShipping() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(p.FlatShippingCost)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid PRICING_FLAT_SHIPPING %q: %w", p.FlatShippingCost, err)
	}
	return d, nil
}

// FreeShippingAt parses the free-shipping threshold as a decimal.
func (p PricingConfig) FreeShippingAt() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(p.FreeShippingThreshold)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid PRICING_FREE_SHIPPING_THRESHOLD %q: %w", p.FreeShippingThreshold, err)
	}
	return d, nil
}

// Tax parses the flat tax rate as a decimal.
func (p PricingConfig) Tax() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(p.TaxRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid PRICING_TAX_RATE %q: %w", p.TaxRate, err)
	}
	return d, nil
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			v.BindEnv(key)
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
