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
	FeatureFlags FeatureFlagsConfig
	Email        EmailConfig
	Stripe       StripeConfig
	Reminders    RemindersConfig
	Taxonomy     TaxonomyConfig
	Webhooks     WebhooksConfig
	CORS         CORSConfig
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
	Env          string `envconfig:"DIRECTORY_APP_ENV" required:"true"`
	Port         string `envconfig:"DIRECTORY_APP_PORT" required:"true"`
	URL          string `envconfig:"DIRECTORY_APP_URL" default:"http://localhost:3000"`
	LogLevel     string `envconfig:"DIRECTORY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DIRECTORY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// BaseURL returns the public site URL without a trailing slash.
func (a AppConfig) BaseURL() string {
	return strings.TrimRight(strings.TrimSpace(a.URL), "/")
}

type DBConfig struct {
	DSN    string `envconfig:"DIRECTORY_DB_DSN"`
	Driver string `envconfig:"DIRECTORY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DIRECTORY_DB_HOST"`
	LegacyPort     int    `envconfig:"DIRECTORY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DIRECTORY_DB_USER"`
	LegacyPassword string `envconfig:"DIRECTORY_DB_PASSWORD"`
	LegacyName     string `envconfig:"DIRECTORY_DB_NAME"`
	LegacySSLMode  string `envconfig:"DIRECTORY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DIRECTORY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DIRECTORY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DIRECTORY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DIRECTORY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DIRECTORY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DIRECTORY_REDIS_ADDR"`
	Password     string        `envconfig:"DIRECTORY_REDIS_PASSWORD"`
	DB           int           `envconfig:"DIRECTORY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DIRECTORY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DIRECTORY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DIRECTORY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DIRECTORY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DIRECTORY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"DIRECTORY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"DIRECTORY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"DIRECTORY_JWT_EXPIRATION_MINUTES" default:"10080"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DIRECTORY_AUTO_MIGRATE" default:"false"`
}

// EmailConfig drives the SMTP mailer. DevLogOnly logs messages instead of
// delivering them.
type EmailConfig struct {
	SMTPHost     string `envconfig:"DIRECTORY_SMTP_HOST"`
	SMTPPort     int    `envconfig:"DIRECTORY_SMTP_PORT" default:"587"`
	SMTPUser     string `envconfig:"DIRECTORY_SMTP_USER"`
	SMTPPassword string `envconfig:"DIRECTORY_SMTP_PASSWORD"`
	From         string `envconfig:"DIRECTORY_EMAIL_FROM" default:"Directory <noreply@localhost>"`
	DevLogOnly   bool   `envconfig:"DIRECTORY_EMAIL_DEV_LOG_ONLY" default:"false"`
}

// Enabled reports whether an SMTP relay is configured.
func (e EmailConfig) Enabled() bool {
	return strings.TrimSpace(e.SMTPHost) != ""
}

type StripeConfig struct {
	APIKey              string `envconfig:"DIRECTORY_STRIPE_API_KEY"`
	Secret              string `envconfig:"DIRECTORY_STRIPE_SECRET"`
	Env                 string `envconfig:"DIRECTORY_STRIPE_ENV" default:"test"`
	SubscriptionPriceID string `envconfig:"DIRECTORY_STRIPE_SUBSCRIPTION_PRICE_ID"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type RemindersConfig struct {
	StaleAfter time.Duration `envconfig:"DIRECTORY_REMINDERS_STALE_AFTER" default:"720h"`
	Interval   time.Duration `envconfig:"DIRECTORY_REMINDERS_INTERVAL" default:"24h"`
	LockTTL    time.Duration `envconfig:"DIRECTORY_REMINDERS_LOCK_TTL" default:"30m"`
}

type TaxonomyConfig struct {
	CacheTTL time.Duration `envconfig:"DIRECTORY_TAXONOMY_CACHE_TTL" default:"10m"`
}

type WebhooksConfig struct {
	IdempotencyTTL time.Duration `envconfig:"DIRECTORY_WEBHOOKS_IDEMPOTENCY_TTL" default:"720h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"DIRECTORY_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
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
