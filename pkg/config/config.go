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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Auth         AuthConfig
	Poster       PosterConfig
	ChatBot      ChatBotConfig
	Sync         SyncConfig
	Par          ParConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"JUICE_APP_ENV" required:"true"`
	Port         string `envconfig:"JUICE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"JUICE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"JUICE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"JUICE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"JUICE_DB_DSN"`
	Driver string `envconfig:"JUICE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"JUICE_DB_HOST"`
	LegacyPort     int    `envconfig:"JUICE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"JUICE_DB_USER"`
	LegacyPassword string `envconfig:"JUICE_DB_PASSWORD"`
	LegacyName     string `envconfig:"JUICE_DB_NAME"`
	LegacySSLMode  string `envconfig:"JUICE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"JUICE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"JUICE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"JUICE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"JUICE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"JUICE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"JUICE_REDIS_ADDR"`
	Password     string        `envconfig:"JUICE_REDIS_PASSWORD"`
	DB           int           `envconfig:"JUICE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"JUICE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"JUICE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"JUICE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"JUICE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"JUICE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// AuthConfig guards the private API surface with a static bearer token.
type AuthConfig struct {
	APIToken string `envconfig:"JUICE_API_TOKEN" required:"true"`
}

// PosterConfig points at the POS platform account the backend syncs from.
type PosterConfig struct {
	BaseURL     string        `envconfig:"JUICE_POSTER_BASE_URL" required:"true"`
	AccessToken string        `envconfig:"JUICE_POSTER_ACCESS_TOKEN" required:"true"`
	HTTPTimeout time.Duration `envconfig:"JUICE_POSTER_HTTP_TIMEOUT" default:"30s"`
}

type ChatBotConfig struct {
	BotToken    string        `envconfig:"JUICE_CHATBOT_TOKEN"`
	BaseURL     string        `envconfig:"JUICE_CHATBOT_BASE_URL" default:"https://api.telegram.org"`
	HTTPTimeout time.Duration `envconfig:"JUICE_CHATBOT_HTTP_TIMEOUT" default:"10s"`
}

type SyncConfig struct {
	Interval    time.Duration `envconfig:"JUICE_SYNC_INTERVAL" default:"10m"`
	LockTTL     time.Duration `envconfig:"JUICE_SYNC_LOCK_TTL" default:"9m"`
	BackfillMax time.Duration `envconfig:"JUICE_SYNC_BACKFILL_MAX" default:"168h"`
}

// ParConfig carries the reorder-math defaults used when a request omits them.
type ParConfig struct {
	WindowDays    int `envconfig:"JUICE_PAR_WINDOW_DAYS" default:"7"`
	LeadDays      int `envconfig:"JUICE_PAR_LEAD_DAYS" default:"2"`
	SafetyPercent int `envconfig:"JUICE_PAR_SAFETY_PERCENT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"JUICE_AUTO_MIGRATE" default:"false"`
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
