package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DBドライバ
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// 注文ステータスの運用
const (
	//どのステータスにも変更できる
	StatusPolicyLenient = "lenient"
	//Pending→Preparing→Ready→Delivering→Completed、終端以外からCancelled
	StatusPolicyStrict = "strict"
)

// JWT署名鍵の最低長（HS256）
const minJWTSecretLen = 32

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // dev/prod

	DBDriver    string // postgres / sqlite
	DatabaseURL string // あれば最優先

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	SQLitePath string // sqliteのファイル

	JWTSecret    string        // JWT署名シークレット
	JWTIssuer    string        // iss
	JWTAudience  string        // aud
	JWTAccessTTL time.Duration // アクセストークンの有効期限

	LogLevel  string // debug/info/warn/error
	LogFormat string // json/text

	OrderStatusPolicy string // lenient/strict
	OrderMaxRetries   int    // version競合のときのリトライ回数

	AdminEmail    string // 起動時に作る管理者（空なら作らない）
	AdminPassword string
}

// StrictStatus は状態遷移を強制するか
func (c Config) StrictStatus() bool {
	return c.OrderStatusPolicy == StatusPolicyStrict
}

// Loadは.env（あれば）と環境変数から読む
func Load() (Config, error) {
	//.envは無くてもよい
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnvは環境変数だけから組み立てて検証する
func FromEnv() (Config, error) {
	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	retries, err := atoiDefault("ORDER_MAX_RETRIES", 3)
	if err != nil {
		return Config{}, err
	}
	ttl, err := durationDefault("JWT_ACCESS_TTL", 60*time.Minute)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:  getenv("PORT", "8080"),
		GoEnv: getenv("GO_ENV", "dev"),

		DBDriver:    strings.ToLower(getenv("DB_DRIVER", DriverPostgres)),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		SQLitePath: getenv("SQLITE_PATH", "restaurant.db"),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTIssuer:    getenv("JWT_ISSUER", "restaurant-api"),
		JWTAudience:  getenv("JWT_AUDIENCE", "restaurant-clients"),
		JWTAccessTTL: ttl,

		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getenv("LOG_FORMAT", "json")),

		OrderStatusPolicy: strings.ToLower(getenv("ORDER_STATUS_POLICY", StatusPolicyLenient)),
		OrderMaxRetries:   retries,

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// 必須チェック
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < minJWTSecretLen {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", minJWTSecretLen)
	}
	if c.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be positive")
	}

	switch c.DBDriver {
	case DriverPostgres:
		//DATABASE_URLが無いならPOSTGRES_*が必要
		if c.DatabaseURL == "" {
			if c.PostgresUser == "" {
				return fmt.Errorf("POSTGRES_USER is required")
			}
			if c.PostgresDB == "" {
				return fmt.Errorf("POSTGRES_DB is required")
			}
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q", DriverPostgres, DriverSQLite)
	}

	switch c.OrderStatusPolicy {
	case StatusPolicyLenient, StatusPolicyStrict:
	default:
		return fmt.Errorf("ORDER_STATUS_POLICY must be %q or %q", StatusPolicyLenient, StatusPolicyStrict)
	}
	if c.OrderMaxRetries < 1 {
		return fmt.Errorf("ORDER_MAX_RETRIES must be >= 1")
	}

	//片方だけは設定ミス
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}

// PostgresDSN はDATABASE_URLが無いときのDSN
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationDefault(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration (e.g. 30m): %w", key, err)
	}
	return d, nil
}
