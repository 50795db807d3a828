// Package config loads the notification service settings.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendMailChannels = "mailchannels"
	BackendKafka        = "kafka"
	BackendLog          = "log"
)

type Config struct {
	HTTPPort        string        `mapstructure:"HTTP_PORT"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	// RateLimitRPS caps orders per second per client address; zero disables.
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	DispatchBackend string        `mapstructure:"DISPATCH_BACKEND"`
	MailChannelsURL string        `mapstructure:"MAILCHANNELS_URL"`
	MailTimeout     time.Duration `mapstructure:"MAIL_TIMEOUT"`
	MailFrom        string        `mapstructure:"MAIL_FROM"`
	MailFromName    string        `mapstructure:"MAIL_FROM_NAME"`
	AdminEmail      string        `mapstructure:"ADMIN_EMAIL"`
	AdminName       string        `mapstructure:"ADMIN_NAME"`

	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string `mapstructure:"KAFKA_TOPIC"`
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
	// RelayEnabled runs the Kafka to MailChannels relay in this process.
	RelayEnabled bool `mapstructure:"RELAY_ENABLED"`

	BrandName      string `mapstructure:"BRAND_NAME"`
	SupportPhone   string `mapstructure:"SUPPORT_PHONE"`
	CurrencySymbol string `mapstructure:"CURRENCY_SYMBOL"`
}

var defaults = map[string]interface{}{
	"HTTP_PORT":        "8081",
	"LOG_LEVEL":        "info",
	"REQUEST_TIMEOUT":  "9s",
	"SHUTDOWN_TIMEOUT": "10s",
	"RATE_LIMIT_RPS":   0.2,
	"RATE_LIMIT_BURST": 5,

	"DISPATCH_BACKEND": BackendLog,
	"MAILCHANNELS_URL": "https://api.mailchannels.net/tx/v1/send",
	"MAIL_TIMEOUT":     "4s",
	"MAIL_FROM":        "orders@sociafy.com",
	"MAIL_FROM_NAME":   "Sociafy System",
	"ADMIN_EMAIL":      "sociafybd@gmail.com",
	"ADMIN_NAME":       "Sociafy Admin",

	"KAFKA_BROKERS":  "localhost:9092",
	"KAFKA_TOPIC":    "order-notifications",
	"KAFKA_GROUP_ID": "notification-relay",
	"RELAY_ENABLED":  false,

	"BRAND_NAME":      "Sociafy Digital",
	"SUPPORT_PHONE":   "01846-119500",
	"CURRENCY_SYMBOL": "৳",
}

func Load() (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	c.DispatchBackend = strings.ToLower(strings.TrimSpace(c.DispatchBackend))
	switch c.DispatchBackend {
	case BackendMailChannels, BackendKafka, BackendLog:
	default:
		return fmt.Errorf("unsupported DISPATCH_BACKEND %q", c.DispatchBackend)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative")
	}
	if c.AdminEmail == "" {
		return fmt.Errorf("ADMIN_EMAIL is required")
	}
	if (c.DispatchBackend == BackendKafka || c.RelayEnabled) && len(c.Brokers()) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required for kafka dispatch")
	}
	return nil
}

// Brokers splits the comma separated broker list.
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
