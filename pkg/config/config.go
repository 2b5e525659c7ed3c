package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	PayRateLimit PayRateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Webhook      WebhookConfig
	Stripe       StripeConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PROJECT45_APP_ENV" required:"true"`
	Port         string `envconfig:"PROJECT45_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PROJECT45_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PROJECT45_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PROJECT45_DB_DSN"`
	Driver string `envconfig:"PROJECT45_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PROJECT45_DB_HOST"`
	LegacyPort     int    `envconfig:"PROJECT45_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PROJECT45_DB_USER"`
	LegacyPassword string `envconfig:"PROJECT45_DB_PASSWORD"`
	LegacyName     string `envconfig:"PROJECT45_DB_NAME"`
	LegacySSLMode  string `envconfig:"PROJECT45_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PROJECT45_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PROJECT45_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PROJECT45_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PROJECT45_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PROJECT45_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PROJECT45_REDIS_ADDR"`
	Password     string        `envconfig:"PROJECT45_REDIS_PASSWORD"`
	DB           int           `envconfig:"PROJECT45_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PROJECT45_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PROJECT45_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PROJECT45_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PROJECT45_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PROJECT45_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PROJECT45_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PROJECT45_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PROJECT45_JWT_EXPIRATION_MINUTES" required:"true"`
}

// PayRateLimitConfig throttles the interactive pay endpoint so a double-clicked
// confirmation button cannot hammer the lifecycle service.
type PayRateLimitConfig struct {
	Window time.Duration `envconfig:"PROJECT45_PAY_RATE_LIMIT_WINDOW" default:"1m"`
	Limit  int           `envconfig:"PROJECT45_PAY_RATE_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PROJECT45_AUTO_MIGRATE" default:"false"`
}

type WebhookConfig struct {
	IdempotencyTTL time.Duration `envconfig:"PROJECT45_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
}

type StripeConfig struct {
	APIKey        string        `envconfig:"PROJECT45_STRIPE_API_KEY"`
	Secret        string        `envconfig:"PROJECT45_STRIPE_SECRET"`
	Env           string        `envconfig:"PROJECT45_STRIPE_ENV" default:"test"`
	IntentTimeout time.Duration `envconfig:"PROJECT45_STRIPE_INTENT_TIMEOUT" default:"10s"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
