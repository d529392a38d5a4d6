package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Subscription SubscriptionConfig `mapstructure:"subscription"`
	OTP          OTPConfig          `mapstructure:"otp"`
	SMTP         SMTPConfig         `mapstructure:"smtp"`
	RateLimit    RateLimitConfig    `mapstructure:"ratelimit"`
	CORS         CORSConfig         `mapstructure:"cors"`
	Log          LogConfig          `mapstructure:"log"`
}

type ServerConfig struct {
	Host                    string        `mapstructure:"host"`
	Port                    int           `mapstructure:"port"`
	Mode                    string        `mapstructure:"mode"`
	ReadTimeout             time.Duration `mapstructure:"read_timeout"`
	WriteTimeout            time.Duration `mapstructure:"write_timeout"`
	GracefulShutdownTimeout time.Duration `mapstructure:"graceful_shutdown_timeout"`
	PingMessage             string        `mapstructure:"ping_message"`
}

type CacheConfig struct {
	Backend       string        `mapstructure:"backend"` // "redis" | "memory"
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	Redis         RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	// Primary selects the head of the lookup chain explicitly; when empty,
	// postgres wins if a host is configured, otherwise sqlite.
	Primary  string         `mapstructure:"primary"` // "postgres" | "sqlite" | ""
	Postgres PostgresConfig `mapstructure:"postgres"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
}

type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	DB              string        `mapstructure:"db"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type SQLiteConfig struct {
	Path        string `mapstructure:"path"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
	Seed        bool   `mapstructure:"seed"`
}

type SubscriptionConfig struct {
	FilePath         string        `mapstructure:"file_path"`
	PositiveCacheTTL time.Duration `mapstructure:"positive_cache_ttl"`
	NegativeCacheTTL time.Duration `mapstructure:"negative_cache_ttl"`
	MinIDLength      int           `mapstructure:"min_id_length"`
	MaxIDLength      int           `mapstructure:"max_id_length"`
}

type OTPConfig struct {
	CodeTTL        time.Duration `mapstructure:"code_ttl"`
	ResendCooldown time.Duration `mapstructure:"resend_cooldown"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
}

type SMTPConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	FromEmail     string `mapstructure:"from_email"`
	FromName      string `mapstructure:"from_name"`
	UseSTARTTLS   bool   `mapstructure:"use_starttls"`
	SkipTLSVerify bool   `mapstructure:"skip_tls_verify"`
}

type RateLimitConfig struct {
	Enabled    bool         `mapstructure:"enabled"`
	General    PolicyConfig `mapstructure:"general"`
	Validation PolicyConfig `mapstructure:"validation"`
	OTP        PolicyConfig `mapstructure:"otp"`
	Booking    PolicyConfig `mapstructure:"booking"`
}

type PolicyConfig struct {
	Window      time.Duration `mapstructure:"window"`
	MaxRequests int64         `mapstructure:"max_requests"`
}

type CORSConfig struct {
	AllowedOrigins   []string      `mapstructure:"allowed_origins"`
	AllowedMethods   []string      `mapstructure:"allowed_methods"`
	AllowedHeaders   []string      `mapstructure:"allowed_headers"`
	AllowCredentials bool          `mapstructure:"allow_credentials"`
	MaxAge           time.Duration `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PrimarySQL resolves which SQL backend heads the lookup chain.
func (c DatabaseConfig) PrimarySQL() string {
	switch c.Primary {
	case "postgres", "sqlite":
		return c.Primary
	}
	if c.Postgres.Host != "" {
		return "postgres"
	}
	return "sqlite"
}

// Load reads config.yaml, overlays environment variables, and returns Config.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Environment variable override: DATABASE_POSTGRES_HOST -> database.postgres.host
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.graceful_shutdown_timeout", "15s")
	v.SetDefault("server.ping_message", "ping")

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.sweep_interval", "60s")

	v.SetDefault("database.sqlite.path", "data/bookinghub.db")
	v.SetDefault("database.sqlite.auto_migrate", true)
	v.SetDefault("database.sqlite.seed", true)

	v.SetDefault("subscription.file_path", "SUBSCRIPTION_IDS.md")
	v.SetDefault("subscription.positive_cache_ttl", "300s")
	v.SetDefault("subscription.negative_cache_ttl", "60s")
	v.SetDefault("subscription.min_id_length", 10)
	v.SetDefault("subscription.max_id_length", 14)

	v.SetDefault("otp.code_ttl", "300s")
	v.SetDefault("otp.resend_cooldown", "60s")
	v.SetDefault("otp.max_attempts", 5)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.general.window", "15m")
	v.SetDefault("ratelimit.general.max_requests", 100)
	v.SetDefault("ratelimit.validation.window", "15m")
	v.SetDefault("ratelimit.validation.max_requests", 10)
	v.SetDefault("ratelimit.otp.window", "1m")
	v.SetDefault("ratelimit.otp.max_requests", 3)
	v.SetDefault("ratelimit.booking.window", "1h")
	v.SetDefault("ratelimit.booking.max_requests", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}
