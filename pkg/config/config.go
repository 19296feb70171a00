package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "BINFLOW"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "BINFLOW_DB_DSN"
	EnvDBHost = "BINFLOW_DB_HOST"
	EnvDBUser = "BINFLOW_DB_USER"
	EnvDBName = "BINFLOW_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	FeatureFlags  FeatureFlagsConfig
	AuthRateLimit AuthRateLimitConfig
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
	Env          string `envconfig:"BINFLOW_APP_ENV" required:"true"`
	Port         string `envconfig:"BINFLOW_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BINFLOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BINFLOW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BINFLOW_DB_DSN"`
	Driver string `envconfig:"BINFLOW_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BINFLOW_DB_HOST"`
	LegacyPort     int    `envconfig:"BINFLOW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BINFLOW_DB_USER"`
	LegacyPassword string `envconfig:"BINFLOW_DB_PASSWORD"`
	LegacyName     string `envconfig:"BINFLOW_DB_NAME"`
	LegacySSLMode  string `envconfig:"BINFLOW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BINFLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BINFLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BINFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BINFLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BINFLOW_REDIS_URL"`
	Address      string        `envconfig:"BINFLOW_REDIS_ADDR"`
	Password     string        `envconfig:"BINFLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"BINFLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BINFLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BINFLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BINFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BINFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BINFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BINFLOW_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BINFLOW_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BINFLOW_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BINFLOW_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BINFLOW_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BINFLOW_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BINFLOW_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BINFLOW_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BINFLOW_AUTO_MIGRATE" default:"false"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"BINFLOW_AUTH_RL_LOGIN_WINDOW" default:"5m"`
	LoginIPLimit    int           `envconfig:"BINFLOW_AUTH_RL_LOGIN_IP_LIMIT" default:"20"`
	LoginEmailLimit int           `envconfig:"BINFLOW_AUTH_RL_LOGIN_EMAIL_LIMIT" default:"5"`

	RegisterWindow  time.Duration `envconfig:"BINFLOW_AUTH_RL_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit int           `envconfig:"BINFLOW_AUTH_RL_REGISTER_IP_LIMIT" default:"10"`
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
