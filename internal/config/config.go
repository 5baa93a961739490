package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env" validate:"oneof=development production test"`
	Port int    `mapstructure:"port" validate:"min=1,max=65535"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DatabaseConfig struct {
	DSN         string `mapstructure:"dsn" validate:"required"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxIdle     int    `mapstructure:"max_idle"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type RabbitMQConfig struct {
	URL               string `mapstructure:"url"`
	Exchange          string `mapstructure:"exchange"`
	NumberAssignedKey string `mapstructure:"number_assigned_key"`
}

// BoardConfig holds credentials and field-mapping for the Board
// project-management API. AmountFields is the ordered list of response
// fields tried when extracting an estimate amount; the Board schema has
// never documented which one is authoritative, so the order is config,
// not code.
type BoardConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	APIToken     string        `mapstructure:"api_token"`
	AmountFields []string      `mapstructure:"amount_fields"`
	ListPerPage  int           `mapstructure:"list_per_page"`
	ListCacheTTL time.Duration `mapstructure:"list_cache_ttl"`
}

type MailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
}

type SessionConfig struct {
	Secret string `mapstructure:"secret"`
	Name   string `mapstructure:"name"`
	MaxAge int    `mapstructure:"max_age"`
}

type IPFilterConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	AllowedIPs []string `mapstructure:"allowed_ips"`
}

type SeedConfig struct {
	AdminID    string `mapstructure:"admin_id"`
	AdminName  string `mapstructure:"admin_name"`
	AdminEmail string `mapstructure:"admin_email"`
}

type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	OtlpEndpoint string `mapstructure:"otlp_endpoint"`
}

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RabbitMQ  RabbitMQConfig  `mapstructure:"rabbitmq"`
	Board     BoardConfig     `mapstructure:"board"`
	Mail      MailConfig      `mapstructure:"mail"`
	Session   SessionConfig   `mapstructure:"session"`
	IPFilter  IPFilterConfig  `mapstructure:"ip_filter"`
	Seed      SeedConfig      `mapstructure:"seed"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// DefaultAmountFields is the fallback priority order observed against the
// live Board API. quotation_amount is the field current tenants populate;
// the rest cover older schema revisions.
var DefaultAmountFields = []string{
	"quotation_amount",
	"estimate_amount",
	"order_amount",
	"sales_amount",
	"contract_amount",
	"estimated_amount",
	"quote_amount",
	"amount",
	"total_amount",
	"budget",
	"price",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "saiban")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)

	v.SetDefault("log.level", "info")

	// keys without a meaningful default still need to exist for the
	// SAIBAN_* environment overrides to bind
	v.SetDefault("database.dsn", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("board.api_key", "")
	v.SetDefault("board.api_token", "")
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.to", "")
	v.SetDefault("session.secret", "")
	v.SetDefault("ip_filter.allowed_ips", []string{})
	v.SetDefault("seed.admin_id", "")
	v.SetDefault("seed.admin_name", "")
	v.SetDefault("seed.admin_email", "")
	v.SetDefault("telemetry.otlp_endpoint", "")

	v.SetDefault("database.max_open", 20)
	v.SetDefault("database.max_idle", 5)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("rabbitmq.exchange", "saiban.events")
	v.SetDefault("rabbitmq.number_assigned_key", "project.number.assigned")

	v.SetDefault("board.base_url", "https://api.the-board.jp/v1")
	v.SetDefault("board.amount_fields", DefaultAmountFields)
	v.SetDefault("board.list_per_page", 100)
	v.SetDefault("board.list_cache_ttl", 5*time.Minute)

	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.host", "smtp.gmail.com")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.from", "noreply@3dv.co.jp")

	v.SetDefault("session.name", "saiban_session")
	v.SetDefault("session.max_age", 8*60*60) // 8h, matches the legacy idle timeout

	v.SetDefault("ip_filter.enabled", false)

	v.SetDefault("telemetry.enabled", false)
}

// Load reads config.yaml (working directory or ./config) and SAIBAN_*
// environment overrides, e.g. SAIBAN_DATABASE_DSN.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("SAIBAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// config file is optional; env-only deployments are fine
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if len(cfg.Board.AmountFields) == 0 {
		cfg.Board.AmountFields = DefaultAmountFields
	}

	return &cfg, nil
}

func (c *Config) IsDevelopment() bool { return c.App.Env == "development" }
