package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix is the envconfig namespace; tags carry the full PMC_ names.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "PMC_DB_DSN"
	EnvDBHost = "PMC_DB_HOST"
	EnvDBUser = "PMC_DB_USER"
	EnvDBName = "PMC_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Admin        AdminConfig
	Resend       ResendConfig
	Digest       DigestConfig
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
	Env          string `envconfig:"PMC_APP_ENV" required:"true"`
	Port         string `envconfig:"PMC_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PMC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PMC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PMC_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PMC_DB_DSN"`
	Driver string `envconfig:"PMC_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PMC_DB_HOST"`
	LegacyPort     int    `envconfig:"PMC_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PMC_DB_USER"`
	LegacyPassword string `envconfig:"PMC_DB_PASSWORD"`
	LegacyName     string `envconfig:"PMC_DB_NAME"`
	LegacySSLMode  string `envconfig:"PMC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PMC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PMC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PMC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PMC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PMC_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PMC_REDIS_ADDR"`
	Password     string        `envconfig:"PMC_REDIS_PASSWORD"`
	DB           int           `envconfig:"PMC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PMC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PMC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PMC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PMC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PMC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig drives the admin access tokens minted for the event dashboard.
type JWTConfig struct {
	Secret            string `envconfig:"PMC_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PMC_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PMC_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AdminConfig holds the argon2id hash of the operator access key. The raw
// key is never stored server-side.
type AdminConfig struct {
	AccessKeyHash    string `envconfig:"PMC_ADMIN_ACCESS_KEY_HASH" required:"true"`
	ArgonMemoryKB    int    `envconfig:"PMC_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int    `envconfig:"PMC_ARGON_TIME" default:"3"`
	ArgonParallelism int    `envconfig:"PMC_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int    `envconfig:"PMC_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int    `envconfig:"PMC_ARGON_KEY_LEN" default:"32"`
}

type ResendConfig struct {
	APIKey  string `envconfig:"PMC_RESEND_API_KEY"`
	From    string `envconfig:"PMC_RESEND_FROM" default:"PMC <no-reply@pmcollective.tech>"`
	BaseURL string `envconfig:"PMC_RESEND_BASE_URL" default:"https://api.resend.com"`
}

type DigestConfig struct {
	Interval time.Duration `envconfig:"PMC_DIGEST_INTERVAL" default:"168h"`
	LockTTL  time.Duration `envconfig:"PMC_DIGEST_LOCK_TTL" default:"1h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PMC_AUTO_MIGRATE" default:"false"`
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
