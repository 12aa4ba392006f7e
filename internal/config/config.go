package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/salonhq/salonhq/internal/types"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	Checkout   CheckoutConfig   `validate:"required"`
	RBAC       RBACConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// CheckoutConfig controls the checkout engine behaviour
type CheckoutConfig struct {
	// SessionTTL is how long an abandoned session stays mutable before expiry
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	// PaymentTolerance is the settlement tolerance when comparing payments
	// against the grand total
	PaymentTolerance float64 `mapstructure:"payment_tolerance"`
	// SweepInterval is how often the background sweep expires stale sessions
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type RBACConfig struct {
	// RolesConfigPath optionally overrides the built-in role matrix
	RolesConfigPath string `mapstructure:"roles_config_path"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/salonhq")

	// Set up environment variables support
	v.SetEnvPrefix("SALONHQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Configuration) applyDefaults() {
	if c.Checkout.SessionTTL <= 0 {
		c.Checkout.SessionTTL = 24 * time.Hour
	}
	if c.Checkout.PaymentTolerance <= 0 {
		c.Checkout.PaymentTolerance = 0.01
	}
	if c.Checkout.SweepInterval <= 0 {
		c.Checkout.SweepInterval = 5 * time.Minute
	}
	// Settlement comparisons everywhere read the package-level tolerance
	types.SetAmountTolerance(c.Checkout.PaymentTolerance)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	cfg := &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
	}
	cfg.applyDefaults()
	return cfg
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
