package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "printpos"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "PRINTPOS_DB_DSN"
	EnvDBHost = "PRINTPOS_DB_HOST"
	EnvDBUser = "PRINTPOS_DB_USER"
	EnvDBName = "PRINTPOS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	OrderStore   OrderStoreConfig
	Receipt      ReceiptConfig
	Session      SessionConfig
	AccessCode   AccessCodeConfig
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
	Env          string `envconfig:"PRINTPOS_APP_ENV" required:"true"`
	Port         string `envconfig:"PRINTPOS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PRINTPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PRINTPOS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PRINTPOS_DB_DSN"`
	Driver string `envconfig:"PRINTPOS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PRINTPOS_DB_HOST"`
	LegacyPort     int    `envconfig:"PRINTPOS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PRINTPOS_DB_USER"`
	LegacyPassword string `envconfig:"PRINTPOS_DB_PASSWORD"`
	LegacyName     string `envconfig:"PRINTPOS_DB_NAME"`
	LegacySSLMode  string `envconfig:"PRINTPOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PRINTPOS_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"PRINTPOS_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"PRINTPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PRINTPOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PRINTPOS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PRINTPOS_REDIS_ADDR"`
	Password     string        `envconfig:"PRINTPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"PRINTPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PRINTPOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PRINTPOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PRINTPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PRINTPOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PRINTPOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PRINTPOS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PRINTPOS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PRINTPOS_JWT_EXPIRATION_MINUTES" default:"720"`
}

// OrderStoreConfig points the terminal at the remote order CRUD service.
type OrderStoreConfig struct {
	BaseURL        string        `envconfig:"PRINTPOS_ORDER_STORE_BASE_URL" required:"true"`
	APIKey         string        `envconfig:"PRINTPOS_ORDER_STORE_API_KEY"`
	RequestTimeout time.Duration `envconfig:"PRINTPOS_ORDER_STORE_TIMEOUT" default:"15s"`
	FetchRetries   int           `envconfig:"PRINTPOS_ORDER_STORE_FETCH_RETRIES" default:"2"`
	CacheTTL       time.Duration `envconfig:"PRINTPOS_ORDER_CACHE_TTL" default:"30s"`
}

// ReceiptConfig carries the scan-code layout printed on receipts.
type ReceiptConfig struct {
	ScanPrefix string `envconfig:"PRINTPOS_RECEIPT_SCAN_PREFIX" default:"25"`
	ScanBranch string `envconfig:"PRINTPOS_RECEIPT_SCAN_BRANCH" default:"200"`
}

type SessionConfig struct {
	CartTTL time.Duration `envconfig:"PRINTPOS_SESSION_CART_TTL" default:"12h"`
}

type AccessCodeConfig struct {
	ArgonMemoryKB    int `envconfig:"PRINTPOS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PRINTPOS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PRINTPOS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PRINTPOS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PRINTPOS_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PRINTPOS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PRINTPOS_AUTO_MIGRATE" default:"false"`
	AutoPrint   bool `envconfig:"PRINTPOS_AUTO_PRINT_DEFAULT" default:"true"`
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
