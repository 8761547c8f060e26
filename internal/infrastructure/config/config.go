package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config アプリケーション全体の設定
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Token         TokenConfig
	Registry      RegistryConfig
	Storage       StorageConfig
	Ledger        LedgerConfig
	Recorder      RecorderConfig
	AdminAPI      AdminAPIConfig
	OpenTelemetry OpenTelemetryConfig
	Log           LogConfig
	Environment   string
}

// ServerConfig サーバー設定
type ServerConfig struct {
	Port         int
	GRPCPort     int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig データベース設定
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// RedisConfig Redis設定
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	KeyPrefix    string
}

// JWTConfig 認証用JWT設定（Authorizationヘッダーのベアラートークン）
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// TokenConfig QRコードに埋め込む取引トークンの設定
type TokenConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// RegistryConfig 保留トークンレジストリ設定
type RegistryConfig struct {
	Backend       string // "memory", "redis", "mysql"
	SweepInterval time.Duration
	MaxEntries    int
}

// StorageConfig 残高・履歴・カタログの保存先設定
type StorageConfig struct {
	Driver          string // "mysql", "memory"
	CatalogSeedFile string
}

// LedgerConfig 残高更新の設定
type LedgerConfig struct {
	MaxRetries int
}

// RecorderConfig 監査記録の非同期書き込み設定
type RecorderConfig struct {
	Workers    int
	BufferSize int
	Timeout    time.Duration
}

// AdminAPIConfig 管理API設定
type AdminAPIConfig struct {
	Enabled    bool
	APIKey     string
	AllowedIPs []string // 単一IPまたはCIDR。空なら制限しない
}

// AllowsIP IPアドレスが許可リストに含まれているか
func (c *AdminAPIConfig) AllowsIP(ip string) bool {
	if len(c.AllowedIPs) == 0 {
		return true
	}
	parsed := net.ParseIP(ip)
	for _, allowed := range c.AllowedIPs {
		if ip == allowed {
			return true
		}
		if !strings.Contains(allowed, "/") || parsed == nil {
			continue
		}
		_, network, err := net.ParseCIDR(allowed)
		if err == nil && network.Contains(parsed) {
			return true
		}
	}
	return false
}

// OpenTelemetryConfig OpenTelemetry設定
type OpenTelemetryConfig struct {
	Enabled         bool
	ServiceName     string
	ServiceVersion  string
	OTLPEndpoint    string
	OTLPInsecure    bool
	TraceExporter   string // "otlp", "stdout"
	MetricsExporter string // "otlp", "stdout"
}

// LogConfig ログ設定
type LogConfig struct {
	Level string // "debug", "info", "warn", "error"
}

// Load 設定を読み込む
func Load() (*Config, error) {
	// .envファイルを読み込む（存在しない場合は無視）
	_ = godotenv.Load()

	env := getEnv("ENVIRONMENT", "development")
	port := getEnvAsInt("SERVER_PORT", 8080)
	jwtSecret := getEnv("JWT_SECRET", "")

	cfg := &Config{
		Environment: env,
		Server: ServerConfig{
			Port:         port,
			GRPCPort:     getEnvAsInt("GRPC_PORT", port+1),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 3306),
			User:            getEnv("DB_USER", "root"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "points_db"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 10*time.Minute),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			DialTimeout:  getEnvAsDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvAsDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvAsDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			KeyPrefix:    getEnv("REDIS_KEY_PREFIX", "points:pending:"),
		},
		JWT: JWTConfig{
			Secret:     jwtSecret,
			Expiration: getEnvAsDuration("JWT_EXPIRATION", 24*time.Hour),
			Issuer:     getEnv("JWT_ISSUER", "points-server"),
		},
		Token: TokenConfig{
			Secret: getEnv("QR_TOKEN_SECRET", ""),
			TTL:    getEnvAsDuration("QR_TOKEN_TTL", 2*time.Minute),
			Issuer: getEnv("QR_TOKEN_ISSUER", "points-server/qr"),
		},
		Registry: RegistryConfig{
			Backend:       getEnv("REGISTRY_BACKEND", "memory"),
			SweepInterval: getEnvAsDuration("REGISTRY_SWEEP_INTERVAL", 30*time.Second),
			MaxEntries:    getEnvAsInt("REGISTRY_MAX_ENTRIES", 100_000),
		},
		Storage: StorageConfig{
			Driver:          getEnv("STORAGE_DRIVER", "mysql"),
			CatalogSeedFile: getEnv("CATALOG_SEED_FILE", ""),
		},
		Ledger: LedgerConfig{
			MaxRetries: getEnvAsInt("LEDGER_MAX_RETRIES", 5),
		},
		Recorder: RecorderConfig{
			Workers:    getEnvAsInt("RECORDER_WORKERS", 2),
			BufferSize: getEnvAsInt("RECORDER_BUFFER_SIZE", 256),
			Timeout:    getEnvAsDuration("RECORDER_TIMEOUT", 5*time.Second),
		},
		AdminAPI: AdminAPIConfig{
			Enabled:    getEnvAsBool("ADMIN_API_ENABLED", false),
			APIKey:     getEnv("ADMIN_API_KEY", ""),
			AllowedIPs: getEnvAsSlice("ADMIN_API_ALLOWED_IPS"),
		},
		OpenTelemetry: OpenTelemetryConfig{
			Enabled:         getEnvAsBool("OTEL_ENABLED", true),
			ServiceName:     getEnv("OTEL_SERVICE_NAME", "points-server"),
			ServiceVersion:  getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			OTLPInsecure:    getEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			TraceExporter:   getEnv("OTEL_TRACES_EXPORTER", "otlp"),
			MetricsExporter: getEnv("OTEL_METRICS_EXPORTER", "otlp"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	// 必須設定の検証
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate 設定の検証
func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Token.Secret == "" {
		return fmt.Errorf("QR_TOKEN_SECRET is required")
	}
	if c.Token.Secret == c.JWT.Secret {
		return fmt.Errorf("QR_TOKEN_SECRET must differ from JWT_SECRET")
	}
	if c.Token.TTL <= 0 {
		return fmt.Errorf("QR_TOKEN_TTL must be positive")
	}

	switch c.Storage.Driver {
	case "mysql":
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER: %s", c.Storage.Driver)
	}

	switch c.Registry.Backend {
	case "memory", "redis":
	case "mysql":
		if c.Storage.Driver != "mysql" {
			return fmt.Errorf("REGISTRY_BACKEND=mysql requires STORAGE_DRIVER=mysql")
		}
	default:
		return fmt.Errorf("unsupported REGISTRY_BACKEND: %s", c.Registry.Backend)
	}

	if c.AdminAPI.Enabled && c.AdminAPI.APIKey == "" {
		return fmt.Errorf("ADMIN_API_KEY is required when ADMIN_API_ENABLED is true")
	}
	return nil
}

// DSN データベース接続文字列を返す
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC&multiStatements=true",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address Redis接続アドレスを返す
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv 環境変数を取得（デフォルト値付き）
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt 環境変数を整数として取得
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool 環境変数を真偽値として取得
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration 環境変数を時間として取得
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice カンマ区切りの環境変数をスライスとして取得
func getEnvAsSlice(key string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return nil
	}
	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
