package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Stripe        StripeConfig
	Uploads       UploadsConfig
	Wizard        WizardConfig
	Detection     DetectionConfig
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
	Env          string `envconfig:"COVERCELL_APP_ENV" required:"true"`
	Port         string `envconfig:"COVERCELL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"COVERCELL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COVERCELL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"COVERCELL_DB_DSN"`
	Driver string `envconfig:"COVERCELL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"COVERCELL_DB_HOST"`
	LegacyPort     int    `envconfig:"COVERCELL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"COVERCELL_DB_USER"`
	LegacyPassword string `envconfig:"COVERCELL_DB_PASSWORD"`
	LegacyName     string `envconfig:"COVERCELL_DB_NAME"`
	LegacySSLMode  string `envconfig:"COVERCELL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"COVERCELL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COVERCELL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COVERCELL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COVERCELL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.LegacyHost == "" || d.LegacyUser == "" || d.LegacyName == "" {
		return fmt.Errorf("either COVERCELL_DB_DSN or host/user/name settings are required")
	}
	userInfo := url.UserPassword(d.LegacyUser, d.LegacyPassword)
	d.DSN = fmt.Sprintf(
		"postgres://%s@%s:%d/%s?sslmode=%s",
		userInfo.String(),
		d.LegacyHost,
		d.LegacyPort,
		d.LegacyName,
		d.LegacySSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"COVERCELL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"COVERCELL_REDIS_ADDR"`
	Password     string        `envconfig:"COVERCELL_REDIS_PASSWORD"`
	DB           int           `envconfig:"COVERCELL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COVERCELL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COVERCELL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COVERCELL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COVERCELL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COVERCELL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"COVERCELL_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"COVERCELL_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"COVERCELL_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"COVERCELL_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"COVERCELL_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"COVERCELL_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"COVERCELL_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"COVERCELL_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"COVERCELL_ARGON_KEY_LEN" default:"32"`
	MinLength        int `envconfig:"COVERCELL_PASSWORD_MIN_LENGTH" default:"8"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"COVERCELL_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"COVERCELL_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"COVERCELL_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"COVERCELL_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"COVERCELL_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"COVERCELL_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"COVERCELL_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey string `envconfig:"COVERCELL_STRIPE_API_KEY"`
	Env    string `envconfig:"COVERCELL_STRIPE_ENV" default:"test"`
}

func (s StripeConfig) Environment() string {
	return s.Env
}

type UploadsConfig struct {
	Dir         string `envconfig:"COVERCELL_UPLOADS_DIR" default:"uploads"`
	URLPrefix   string `envconfig:"COVERCELL_UPLOADS_URL_PREFIX" default:"/uploads"`
	MaxUploadMB int    `envconfig:"COVERCELL_UPLOADS_MAX_MB" default:"5"`
}

type WizardConfig struct {
	SessionTTL time.Duration `envconfig:"COVERCELL_WIZARD_SESSION_TTL" default:"1h"`
	SubmitTTL  time.Duration `envconfig:"COVERCELL_WIZARD_SUBMIT_TTL" default:"30s"`
}

type DetectionConfig struct {
	MinDelay time.Duration `envconfig:"COVERCELL_DETECTION_MIN_DELAY" default:"1500ms"`
	MaxDelay time.Duration `envconfig:"COVERCELL_DETECTION_MAX_DELAY" default:"3s"`
}
