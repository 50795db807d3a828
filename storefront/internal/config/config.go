// Package config loads the storefront settings from the environment and an
// optional config file named by CONFIG_FILE.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

type Config struct {
	HTTPPort        string        `mapstructure:"HTTP_PORT"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	StoreBackend   string        `mapstructure:"STORE_BACKEND"`
	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	RedisPassword  string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int           `mapstructure:"REDIS_DB"`
	MongoURI       string        `mapstructure:"MONGO_URI"`
	MongoDBName    string        `mapstructure:"MONGO_DB_NAME"`
	MongoMaxPool   uint64        `mapstructure:"MONGO_MAX_POOL_SIZE"`
	MongoMinPool   uint64        `mapstructure:"MONGO_MIN_POOL_SIZE"`
	MongoTimeout   time.Duration `mapstructure:"MONGO_TIMEOUT"`
	StateTTL       time.Duration `mapstructure:"STATE_TTL"`
	SessionIdleTTL time.Duration `mapstructure:"SESSION_IDLE_TTL"`

	CatalogFile string `mapstructure:"CATALOG_FILE"`

	// NotifierURL empty means orders are accepted by a simulated notifier.
	NotifierURL        string        `mapstructure:"NOTIFIER_URL"`
	NotifierTimeout    time.Duration `mapstructure:"NOTIFIER_TIMEOUT"`
	RequiredFields     string        `mapstructure:"REQUIRED_FIELDS"`
	SupportWhatsAppURL string        `mapstructure:"SUPPORT_WHATSAPP_URL"`
	CurrencySymbol     string        `mapstructure:"CURRENCY_SYMBOL"`
}

var defaults = map[string]interface{}{
	"HTTP_PORT":        "8080",
	"LOG_LEVEL":        "info",
	"REQUEST_TIMEOUT":  "30s",
	"SHUTDOWN_TIMEOUT": "10s",

	"STORE_BACKEND":       BackendMemory,
	"REDIS_ADDR":          "localhost:6379",
	"REDIS_PASSWORD":      "",
	"REDIS_DB":            0,
	"MONGO_URI":           "mongodb://localhost:27017",
	"MONGO_DB_NAME":       "storefront",
	"MONGO_MAX_POOL_SIZE": 20,
	"MONGO_MIN_POOL_SIZE": 0,
	"MONGO_TIMEOUT":       "10s",
	"STATE_TTL":           "720h",
	"SESSION_IDLE_TTL":    "30m",

	"CATALOG_FILE": "",

	"NOTIFIER_URL":         "",
	"NOTIFIER_TIMEOUT":     "10s",
	"REQUIRED_FIELDS":      "name,mobile,email,targetLink",
	"SUPPORT_WHATSAPP_URL": "https://wa.me/8801846119500",
	"CURRENCY_SYMBOL":      "৳",
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
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	switch c.StoreBackend {
	case BackendMemory, BackendRedis, BackendMongo:
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q", c.StoreBackend)
	}
	if c.MongoMaxPool > 0 && c.MongoMinPool > c.MongoMaxPool {
		return fmt.Errorf("MONGO_MIN_POOL_SIZE (%d) exceeds MONGO_MAX_POOL_SIZE (%d)", c.MongoMinPool, c.MongoMaxPool)
	}
	if c.NotifierTimeout <= 0 {
		return fmt.Errorf("NOTIFIER_TIMEOUT must be positive")
	}
	// the payment request has to outlive the notifier call it waits for
	if c.RequestTimeout <= c.NotifierTimeout {
		return fmt.Errorf("REQUEST_TIMEOUT (%s) must exceed NOTIFIER_TIMEOUT (%s)", c.RequestTimeout, c.NotifierTimeout)
	}
	return nil
}
