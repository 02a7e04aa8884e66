package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	Escrow        EscrowConfig
	Cron          CronConfig
	Notifications NotificationsConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Escrow.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LIVEHAUL_APP_ENV" required:"true"`
	Port         string `envconfig:"LIVEHAUL_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"LIVEHAUL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LIVEHAUL_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"LIVEHAUL_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"LIVEHAUL_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN string `envconfig:"LIVEHAUL_DB_DSN"`

	LegacyHost     string `envconfig:"LIVEHAUL_DB_HOST"`
	LegacyPort     int    `envconfig:"LIVEHAUL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LIVEHAUL_DB_USER"`
	LegacyPassword string `envconfig:"LIVEHAUL_DB_PASSWORD"`
	LegacyName     string `envconfig:"LIVEHAUL_DB_NAME"`
	LegacySSLMode  string `envconfig:"LIVEHAUL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LIVEHAUL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LIVEHAUL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LIVEHAUL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LIVEHAUL_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// SlowQueryThreshold is the statement duration logged as a warning.
	SlowQueryThreshold time.Duration `envconfig:"LIVEHAUL_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
	// LockTimeout bounds how long a lifecycle transaction waits on a row lock.
	LockTimeout time.Duration `envconfig:"LIVEHAUL_DB_LOCK_TIMEOUT" default:"5s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LIVEHAUL_REDIS_URL"`
	Address      string        `envconfig:"LIVEHAUL_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"LIVEHAUL_REDIS_PASSWORD"`
	DB           int           `envconfig:"LIVEHAUL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LIVEHAUL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LIVEHAUL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LIVEHAUL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LIVEHAUL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LIVEHAUL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// EscrowConfig tunes the payment lifecycle.
type EscrowConfig struct {
	AutoReleaseDelay     time.Duration `envconfig:"LIVEHAUL_ESCROW_AUTO_RELEASE_DELAY" default:"24h"`
	AutoReleaseBatchSize int           `envconfig:"LIVEHAUL_ESCROW_AUTO_RELEASE_BATCH_SIZE" default:"100"`
	CommissionPercent    string        `envconfig:"LIVEHAUL_ESCROW_COMMISSION_PERCENT" default:"0"`
}

// Commission returns the parsed flat commission percentage.
func (e EscrowConfig) Commission() decimal.Decimal {
	value, err := decimal.NewFromString(strings.TrimSpace(e.CommissionPercent))
	if err != nil {
		return decimal.Zero
	}
	return value
}

func (e EscrowConfig) validate() error {
	if e.AutoReleaseDelay <= 0 {
		return fmt.Errorf("%s must be positive", EnvEscrowAutoReleaseDelay)
	}
	if e.AutoReleaseBatchSize <= 0 {
		return fmt.Errorf("%s must be positive", EnvEscrowAutoReleaseBatch)
	}
	pct, err := decimal.NewFromString(strings.TrimSpace(e.CommissionPercent))
	if err != nil {
		return fmt.Errorf("%s: %w", EnvEscrowCommissionPercent, err)
	}
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%s must be between 0 and 100", EnvEscrowCommissionPercent)
	}
	return nil
}

type CronConfig struct {
	Interval time.Duration `envconfig:"LIVEHAUL_CRON_INTERVAL" default:"1m"`
	// Schedule, when set, is a standard five-field cron expression that
	// replaces Interval.
	Schedule string        `envconfig:"LIVEHAUL_CRON_SCHEDULE"`
	LockKey  string        `envconfig:"LIVEHAUL_CRON_LOCK_KEY" default:"livehaul:cron:lock"`
	LockTTL  time.Duration `envconfig:"LIVEHAUL_CRON_LOCK_TTL" default:"5m"`
}

type NotificationsConfig struct {
	Enabled       bool   `envconfig:"LIVEHAUL_NOTIFICATIONS_ENABLED" default:"true"`
	ChannelPrefix string `envconfig:"LIVEHAUL_NOTIFICATIONS_CHANNEL_PREFIX" default:"livehaul"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"LIVEHAUL_AUTO_MIGRATE" default:"false"`
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
