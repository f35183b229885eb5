// AngelaMos | 2026
// config.go

package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App         AppConfig         `koanf:"app"`
	Server      ServerConfig      `koanf:"server"`
	Database    DatabaseConfig    `koanf:"database"`
	Redis       RedisConfig       `koanf:"redis"`
	JWT         JWTConfig         `koanf:"jwt"`
	RateLimit   RateLimitConfig   `koanf:"rate_limit"`
	CORS        CORSConfig        `koanf:"cors"`
	Log         LogConfig         `koanf:"log"`
	Otel        OtelConfig        `koanf:"otel"`
	Mail        MailConfig        `koanf:"mail"`
	Payments    PaymentsConfig    `koanf:"payments"`
	Billing     BillingConfig     `koanf:"billing"`
	Jobs        JobsConfig        `koanf:"jobs"`
	Leaderboard LeaderboardConfig `koanf:"leaderboard"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	FrontendURL string `koanf:"frontend_url"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MigrationsURL   string        `koanf:"migrations_url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

type JWTConfig struct {
	PrivateKeyPath     string        `koanf:"private_key_path"`
	PublicKeyPath      string        `koanf:"public_key_path"`
	AccessTokenExpire  time.Duration `koanf:"access_token_expire"`
	RefreshTokenExpire time.Duration `koanf:"refresh_token_expire"`
	Issuer             string        `koanf:"issuer"`
	Audience           string        `koanf:"audience"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

type MailConfig struct {
	Host        string `koanf:"host"`
	Port        int    `koanf:"port"`
	Username    string `koanf:"username"`
	Password    string `koanf:"password"`
	FromAddress string `koanf:"from_address"`
	FromName    string `koanf:"from_name"`
	Enabled     bool   `koanf:"enabled"`
}

type PaymentsConfig struct {
	Stripe   StripeConfig   `koanf:"stripe"`
	PayPal   PayPalConfig   `koanf:"paypal"`
	Coinbase CoinbaseConfig `koanf:"coinbase"`
	TiloPay  TiloPayConfig  `koanf:"tilopay"`
}

type StripeConfig struct {
	SecretKey     string `koanf:"secret_key"`
	WebhookSecret string `koanf:"webhook_secret"`
}

type PayPalConfig struct {
	ClientID  string `koanf:"client_id"`
	Secret    string `koanf:"secret"`
	WebhookID string `koanf:"webhook_id"`
	BaseURL   string `koanf:"base_url"`
}

type CoinbaseConfig struct {
	APIKey        string `koanf:"api_key"`
	WebhookSecret string `koanf:"webhook_secret"`
}

type TiloPayConfig struct {
	APIKey        string `koanf:"api_key"`
	APIUser       string `koanf:"api_user"`
	APIPassword   string `koanf:"api_password"`
	WebhookSecret string `koanf:"webhook_secret"`
	BaseURL       string `koanf:"base_url"`
}

type BillingConfig struct {
	MonthlyPriceCents   int64         `koanf:"monthly_price_cents"`
	AnnualPriceCents    int64         `koanf:"annual_price_cents"`
	LifetimePriceCents  int64         `koanf:"lifetime_price_cents"`
	FreeHabitLimit      int           `koanf:"free_habit_limit"`
	PremiumHabitLimit   int           `koanf:"premium_habit_limit"`
	MaxPaymentFailures  int           `koanf:"max_payment_failures"`
	ExpiryGraceDuration time.Duration `koanf:"expiry_grace_duration"`
}

type JobsConfig struct {
	Enabled        bool   `koanf:"enabled"`
	ReminderSpec   string `koanf:"reminder_spec"`
	ExpirySpec     string `koanf:"expiry_spec"`
	PurgeSpec      string `koanf:"purge_spec"`
	PurgeAfterDays int    `koanf:"purge_after_days"`
}

type LeaderboardConfig struct {
	CacheTTL time.Duration `koanf:"cache_ttl"`
	PageSize int           `koanf:"page_size"`
}

var (
	cfg  *Config
	once sync.Once
)

func Load(configPath string) (*Config, error) {
	var loadErr error

	once.Do(func() {
		k := koanf.New(".")

		if err := loadDefaults(k); err != nil {
			loadErr = fmt.Errorf("load defaults: %w", err)
			return
		}

		if configPath != "" {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				loadErr = fmt.Errorf("load config file: %w", err)
				return
			}
		}

		if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
			loadErr = fmt.Errorf("load env vars: %w", err)
			return
		}

		cfg = &Config{}
		if err := k.Unmarshal("", cfg); err != nil {
			loadErr = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		if err := validate(cfg); err != nil {
			loadErr = fmt.Errorf("validate config: %w", err)
			return
		}
	})

	if loadErr != nil {
		return nil, loadErr
	}

	return cfg, nil
}

func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call Load() first")
	}
	return cfg
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":         "HabitFlow",
		"app.version":      "1.0.0",
		"app.environment":  "development",
		"app.frontend_url": "http://localhost:3000",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.migrations_url":     "file://migrations",
		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",

		"redis.pool_size":      10,
		"redis.min_idle_conns": 5,

		"jwt.access_token_expire":  "15m",
		"jwt.refresh_token_expire": "168h",
		"jwt.issuer":               "habitflow",
		"jwt.audience":             "habitflow-api",
		"jwt.private_key_path":     "keys/private.pem",
		"jwt.public_key_path":      "keys/public.pem",

		"rate_limit.requests": 100,
		"rate_limit.window":   "1m",
		"rate_limit.burst":    20,

		"cors.allowed_origins": []string{"http://localhost:3000"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "habitflow",

		"mail.enabled":      false,
		"mail.port":         587,
		"mail.from_address": "noreply@habitflow.app",
		"mail.from_name":    "HabitFlow",

		"payments.paypal.base_url":  "https://api-m.paypal.com",
		"payments.tilopay.base_url": "https://app.tilopay.com/api/v1",

		"billing.monthly_price_cents":   299,
		"billing.annual_price_cents":    1999,
		"billing.lifetime_price_cents":  5999,
		"billing.free_habit_limit":      3,
		"billing.premium_habit_limit":   999999,
		"billing.max_payment_failures":  3,
		"billing.expiry_grace_duration": "24h",

		"jobs.enabled":          true,
		"jobs.reminder_spec":    "0 * * * *",
		"jobs.expiry_spec":      "15 0 * * *",
		"jobs.purge_spec":       "30 2 * * *",
		"jobs.purge_after_days": 30,

		"leaderboard.cache_ttl": "5m",
		"leaderboard.page_size": 50,
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":                "database.url",
	"DATABASE_MIGRATIONS_URL":     "database.migrations_url",
	"REDIS_URL":                   "redis.url",
	"ENVIRONMENT":                 "app.environment",
	"FRONTEND_URL":                "app.frontend_url",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"JWT_PRIVATE_KEY_PATH":        "jwt.private_key_path",
	"JWT_PUBLIC_KEY_PATH":         "jwt.public_key_path",
	"JWT_ACCESS_TOKEN_EXPIRE":     "jwt.access_token_expire",
	"JWT_REFRESH_TOKEN_EXPIRE":    "jwt.refresh_token_expire",
	"JWT_ISSUER":                  "jwt.issuer",
	"JWT_AUDIENCE":                "jwt.audience",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_WINDOW":           "rate_limit.window",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
	"MAIL_ENABLED":                "mail.enabled",
	"MAIL_HOST":                   "mail.host",
	"MAIL_PORT":                   "mail.port",
	"MAIL_USERNAME":               "mail.username",
	"MAIL_PASSWORD":               "mail.password",
	"MAIL_FROM_ADDRESS":           "mail.from_address",
	"MAIL_FROM_NAME":              "mail.from_name",
	"STRIPE_SECRET_KEY":           "payments.stripe.secret_key",
	"STRIPE_WEBHOOK_SECRET":       "payments.stripe.webhook_secret",
	"PAYPAL_CLIENT_ID":            "payments.paypal.client_id",
	"PAYPAL_SECRET":               "payments.paypal.secret",
	"PAYPAL_WEBHOOK_ID":           "payments.paypal.webhook_id",
	"PAYPAL_BASE_URL":             "payments.paypal.base_url",
	"COINBASE_API_KEY":            "payments.coinbase.api_key",
	"COINBASE_WEBHOOK_SECRET":     "payments.coinbase.webhook_secret",
	"TILOPAY_API_KEY":             "payments.tilopay.api_key",
	"TILOPAY_API_USER":            "payments.tilopay.api_user",
	"TILOPAY_API_PASSWORD":        "payments.tilopay.api_password",
	"TILOPAY_WEBHOOK_SECRET":      "payments.tilopay.webhook_secret",
	"TILOPAY_BASE_URL":            "payments.tilopay.base_url",
	"MAX_PAYMENT_FAILURES":        "billing.max_payment_failures",
	"JOBS_ENABLED":                "jobs.enabled",
	"JOBS_REMINDER_SPEC":          "jobs.reminder_spec",
	"JOBS_EXPIRY_SPEC":            "jobs.expiry_spec",
	"JOBS_PURGE_SPEC":             "jobs.purge_spec",
	"JOBS_PURGE_AFTER_DAYS":       "jobs.purge_after_days",
	"LEADERBOARD_CACHE_TTL":       "leaderboard.cache_ttl",
	"LEADERBOARD_PAGE_SIZE":       "leaderboard.page_size",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

func validate(c *Config) error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.JWT.PrivateKeyPath == "" {
		return fmt.Errorf("JWT_PRIVATE_KEY_PATH is required")
	}

	if c.JWT.PublicKeyPath == "" {
		return fmt.Errorf("JWT_PUBLIC_KEY_PATH is required")
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf(
					"CORS wildcard '*' cannot be used with AllowCredentials",
				)
			}
		}
	}

	if c.App.Environment == "production" {
		if c.Otel.Enabled && c.Otel.Insecure {
			return fmt.Errorf("OTEL_INSECURE must be false in production")
		}
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	if c.Billing.FreeHabitLimit <= 0 {
		return fmt.Errorf("billing.free_habit_limit must be positive")
	}

	if c.Billing.MaxPaymentFailures <= 0 {
		return fmt.Errorf("billing.max_payment_failures must be positive")
	}

	if c.Mail.Enabled && c.Mail.Host == "" {
		return fmt.Errorf("MAIL_HOST is required when mail is enabled")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
