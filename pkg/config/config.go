package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "cafemenu"

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
	Uploads       UploadsConfig
	Bootstrap     BootstrapConfig
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
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CAFEMENU_APP_ENV" default:"dev"`
	Port         string `envconfig:"CAFEMENU_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CAFEMENU_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CAFEMENU_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CAFEMENU_DB_DSN"`
	Driver string `envconfig:"CAFEMENU_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"CAFEMENU_DB_HOST"`
	Port     int    `envconfig:"CAFEMENU_DB_PORT" default:"5432"`
	User     string `envconfig:"CAFEMENU_DB_USER"`
	Password string `envconfig:"CAFEMENU_DB_PASSWORD"`
	Name     string `envconfig:"CAFEMENU_DB_NAME"`
	SSLMode  string `envconfig:"CAFEMENU_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CAFEMENU_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CAFEMENU_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CAFEMENU_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CAFEMENU_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	PingRetries int           `envconfig:"CAFEMENU_DB_PING_RETRIES" default:"5"`
	PingBackoff time.Duration `envconfig:"CAFEMENU_DB_PING_BACKOFF" default:"2s"`
}

type RedisConfig struct {
	// URL is optional; when empty, redis-backed features (login rate
	// limiting) are disabled.
	URL          string        `envconfig:"CAFEMENU_REDIS_URL"`
	PoolSize     int           `envconfig:"CAFEMENU_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CAFEMENU_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CAFEMENU_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CAFEMENU_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CAFEMENU_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"CAFEMENU_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CAFEMENU_JWT_ISSUER" default:"cafemenu-api"`
	ExpirationMinutes int    `envconfig:"CAFEMENU_JWT_EXPIRATION_MINUTES" default:"720"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CAFEMENU_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CAFEMENU_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CAFEMENU_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CAFEMENU_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CAFEMENU_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"CAFEMENU_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit int           `envconfig:"CAFEMENU_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"CAFEMENU_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type UploadsConfig struct {
	Dir           string `envconfig:"CAFEMENU_UPLOADS_DIR" default:"./uploads"`
	PublicPath    string `envconfig:"CAFEMENU_UPLOADS_PUBLIC_PATH" default:"/uploads"`
	MaxUploadMB   int    `envconfig:"CAFEMENU_MAX_UPLOAD_MB" default:"5"`
	MaxBatchFiles int    `envconfig:"CAFEMENU_MAX_BATCH_FILES" default:"3"`
}

// MaxUploadBytes returns the per-file upload cap in bytes.
func (u UploadsConfig) MaxUploadBytes() int64 {
	return int64(u.MaxUploadMB) * 1024 * 1024
}

type BootstrapConfig struct {
	AdminUsername string `envconfig:"CAFEMENU_BOOTSTRAP_ADMIN_USERNAME" default:"superadmin"`
	AdminPassword string `envconfig:"CAFEMENU_BOOTSTRAP_ADMIN_PASSWORD" default:"SuperAdmin@2025!"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CAFEMENU_AUTO_MIGRATE" default:"false"`
	// LegacyOpenMutations restores the original API contract where
	// place/category/menu-item mutations required no credentials. Off by
	// default; only for migration compatibility windows.
	LegacyOpenMutations bool `envconfig:"CAFEMENU_LEGACY_OPEN_MUTATIONS" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	required := []struct {
		name  string
		value string
	}{
		{"CAFEMENU_DB_HOST", db.Host},
		{"CAFEMENU_DB_USER", db.User},
		{"CAFEMENU_DB_NAME", db.Name},
	}
	for _, item := range required {
		if item.value == "" {
			missing = append(missing, item.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either CAFEMENU_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
