package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config application-wide configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Mail      MailConfig      `mapstructure:"mail"`
	Stripe    StripeConfig    `mapstructure:"stripe"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Seed      SeedConfig      `mapstructure:"seed"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	BaseURL      string     `mapstructure:"base_url"`
	SiteURL      string     `mapstructure:"site_url"` // public web front-end, used in links and emails
	MaxBodyBytes int64      `mapstructure:"max_body_bytes"`
	CORS         CORSConfig `mapstructure:"cors"`

	// TrustedProxies addresses or CIDRs whose X-Forwarded-For is believed. Empty means the
	// client IP is always the connection's remote address.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// CORSConfig cross-origin settings
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL settings
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

// DSN builds the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig session token settings
type AuthConfig struct {
	JWTSecret               string        `mapstructure:"jwt_secret"`
	AccessTokenTTL          time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTLDefault  time.Duration `mapstructure:"refresh_token_ttl_default"`
	RefreshTokenTTLRemember time.Duration `mapstructure:"refresh_token_ttl_remember_me"`
	Cookie                  CookieConfig  `mapstructure:"cookie"`
}

// CookieConfig session cookie flags
type CookieConfig struct {
	Secure   bool   `mapstructure:"secure"`
	SameSite string `mapstructure:"same_site"`
	Domain   string `mapstructure:"domain"`
}

// MailConfig SendGrid delivery settings. An empty API key logs mail instead of sending it.
type MailConfig struct {
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
	FromName       string `mapstructure:"from_name"`
	FromEmail      string `mapstructure:"from_email"`
	AdminInbox     string `mapstructure:"admin_inbox"`
}

// StripeConfig payment settings
type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	Currency      string `mapstructure:"currency"`
	SuccessURL    string `mapstructure:"success_url"`
	CancelURL     string `mapstructure:"cancel_url"`
}

// StorageConfig upload storage settings
type StorageConfig struct {
	Driver        string `mapstructure:"driver"` // "local" | "gcs"
	Bucket        string `mapstructure:"bucket"`
	LocalDir      string `mapstructure:"local_dir"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	MaxUploadSize int64  `mapstructure:"max_upload_size"`
}

// LogConfig logging settings
type LogConfig struct {
	Level        string `mapstructure:"level"`
	Format       string `mapstructure:"format"`
	RollbarToken string `mapstructure:"rollbar_token"`
	Environment  string `mapstructure:"environment"`
}

// TelemetryConfig tracing settings
type TelemetryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Exporter    string  `mapstructure:"exporter"` // "stdout" | "otlp"
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// JobsConfig background job schedules (cron syntax)
type JobsConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	StreakResetSpec     string        `mapstructure:"streak_reset_spec"`
	PaymentExpirySpec   string        `mapstructure:"payment_expiry_spec"`
	PaymentExpiryWindow time.Duration `mapstructure:"payment_expiry_window"`
}

// RateLimitConfig contact form throttling
type RateLimitConfig struct {
	ContactLimit  int           `mapstructure:"contact_limit"`
	ContactWindow time.Duration `mapstructure:"contact_window"`
	AuthLimit     int           `mapstructure:"auth_limit"`
	AuthWindow    time.Duration `mapstructure:"auth_window"`
}

// SeedConfig initial admin account created by cmd/seed
type SeedConfig struct {
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
	AdminName     string `mapstructure:"admin_name"`
}

// Load reads configuration from file and environment.
// Precedence: environment > config file > defaults
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── defaults ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.site_url", "http://localhost:3000")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "ourcodingkiddos")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "1h")
	v.SetDefault("auth.refresh_token_ttl_default", "24h")
	v.SetDefault("auth.refresh_token_ttl_remember_me", "720h")
	v.SetDefault("auth.cookie.secure", false)
	v.SetDefault("auth.cookie.same_site", "Lax")

	v.SetDefault("mail.from_name", "Our Coding Kiddos")
	v.SetDefault("mail.from_email", "hello@ourcodingkiddos.com")
	v.SetDefault("mail.admin_inbox", "admin@ourcodingkiddos.com")

	v.SetDefault("stripe.currency", "usd")
	v.SetDefault("stripe.success_url", "http://localhost:3000/checkout/success?session_id={CHECKOUT_SESSION_ID}")
	v.SetDefault("stripe.cancel_url", "http://localhost:3000/checkout/cancel")

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local_dir", "./uploads")
	v.SetDefault("storage.public_base_url", "http://localhost:8080/uploads")
	v.SetDefault("storage.max_upload_size", 5<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.environment", "development")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.exporter", "stdout")
	v.SetDefault("telemetry.service_name", "ourcodingkiddos-api")
	v.SetDefault("telemetry.sample_ratio", 1.0)

	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.streak_reset_spec", "5 0 * * *")
	v.SetDefault("jobs.payment_expiry_spec", "@hourly")
	v.SetDefault("jobs.payment_expiry_window", "24h")

	v.SetDefault("rate_limit.contact_limit", 3)
	v.SetDefault("rate_limit.contact_window", "60s")
	v.SetDefault("rate_limit.auth_limit", 10)
	v.SetDefault("rate_limit.auth_window", "1m")

	v.SetDefault("seed.admin_name", "Site Admin")

	// keys without a useful default are still registered so AutomaticEnv can fill them
	for _, key := range []string{
		"auth.jwt_secret", "auth.cookie.domain",
		"mail.sendgrid_api_key",
		"stripe.secret_key", "stripe.webhook_secret",
		"storage.bucket",
		"log.rollbar_token",
		"telemetry.endpoint", "telemetry.insecure",
		"seed.admin_email", "seed.admin_password",
	} {
		v.SetDefault(key, "")
	}

	// ── config file ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── environment ──
	v.SetEnvPrefix("OCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("invalid config: auth.jwt_secret is required")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("invalid config: auth.jwt_secret must be at least 16 characters")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port must be between 1 and 65535")
	}
	switch c.Storage.Driver {
	case "local", "gcs":
	default:
		return fmt.Errorf("invalid config: storage.driver must be local or gcs")
	}
	if c.Storage.Driver == "gcs" && c.Storage.Bucket == "" {
		return fmt.Errorf("invalid config: storage.bucket is required for the gcs driver")
	}
	if c.RateLimit.ContactLimit <= 0 || c.RateLimit.ContactWindow <= 0 {
		return fmt.Errorf("invalid config: rate_limit.contact_limit and contact_window must be positive")
	}
	return nil
}
