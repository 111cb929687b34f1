package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config アプリケーション全体の設定
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	OpenTelemetry OpenTelemetryConfig
	Log           LogConfig
	Mint          MintConfig
	Gems          GemsConfig
	Scheduler     SchedulerConfig
	Environment   string
}

// ServerConfig サーバー設定
type ServerConfig struct {
	Port         int
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
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
}

// JWTConfig JWT設定
type JWTConfig struct {
	Secret string
	Issuer string
}

// OpenTelemetryConfig OpenTelemetry設定
type OpenTelemetryConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	OTLPEndpoint   string
	OTLPInsecure   bool
}

// LogConfig ログ設定
type LogConfig struct {
	Level string // "DEBUG", "INFO", "WARN", "ERROR"
}

// MintConfig ミント設定
type MintConfig struct {
	DailyBudget   decimal.Decimal // 1期間あたりに分配するトークン量
	DecimalScale  int32
	RoundingMode  string   // "down", "half_up"
	PeriodCodes   []string // ミントを受け付ける期間コード
	AccountID     string   // ミント元アカウントID
	SystemActor   string   // スケジューラ・CLI実行時の呼び出し元ID
	MessagePrefix string
}

// GemsConfig ジェム生成設定
type GemsConfig struct {
	ViewFactor    decimal.Decimal
	LikeFactor    decimal.Decimal
	DislikeFactor decimal.Decimal
	CommentFactor decimal.Decimal
}

// SchedulerConfig 定期実行設定
type SchedulerConfig struct {
	Enabled        bool
	GemsSchedule   string
	MintSchedule   string
	MintPeriodCode string
	LockTTL        time.Duration
}

// Load 設定を読み込む
func Load() (*Config, error) {
	// .envファイルを読み込む（存在しない場合は無視）
	_ = godotenv.Load()

	env := getEnv("ENVIRONMENT", "development")

	cfg := &Config{
		Environment: env,
		Server: ServerConfig{
			Port:         getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 3306),
			User:            getEnv("DB_USER", "root"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "mint_db"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 10*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Issuer: getEnv("JWT_ISSUER", "mint-server"),
		},
		OpenTelemetry: OpenTelemetryConfig{
			Enabled:        getEnvAsBool("OTEL_ENABLED", true),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "mint-server"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
			OTLPInsecure:   getEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		},
		Log: LogConfig{
			Level: strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),
		},
		Mint: MintConfig{
			DailyBudget:   getEnvAsDecimal("MINT_DAILY_BUDGET", decimal.NewFromInt(5000)),
			DecimalScale:  int32(getEnvAsInt("MINT_DECIMAL_SCALE", 10)),
			RoundingMode:  getEnv("MINT_ROUNDING_MODE", "down"),
			PeriodCodes:   getEnvAsList("MINT_PERIOD_CODES", []string{"D0", "D1", "D2", "D3", "D4", "D5", "D6", "D7"}),
			AccountID:     getEnv("MINT_ACCOUNT_ID", "mint"),
			SystemActor:   getEnv("MINT_SYSTEM_ACTOR", "system"),
			MessagePrefix: getEnv("MINT_MESSAGE_PREFIX", "Mint"),
		},
		Gems: GemsConfig{
			ViewFactor:    getEnvAsDecimal("GEMS_FACTOR_VIEW", decimal.RequireFromString("0.25")),
			LikeFactor:    getEnvAsDecimal("GEMS_FACTOR_LIKE", decimal.NewFromInt(5)),
			DislikeFactor: getEnvAsDecimal("GEMS_FACTOR_DISLIKE", decimal.NewFromInt(-3)),
			CommentFactor: getEnvAsDecimal("GEMS_FACTOR_COMMENT", decimal.NewFromInt(2)),
		},
		Scheduler: SchedulerConfig{
			Enabled:        getEnvAsBool("SCHEDULER_ENABLED", false),
			GemsSchedule:   getEnv("GEMS_GENERATE_SCHEDULE", "@every 15m"),
			MintSchedule:   getEnv("MINT_SCHEDULE", "5 0 * * *"),
			MintPeriodCode: getEnv("MINT_SCHEDULE_PERIOD", "D1"),
			LockTTL:        getEnvAsDuration("SCHEDULER_LOCK_TTL", 10*time.Minute),
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
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if !c.Mint.DailyBudget.IsPositive() {
		return fmt.Errorf("MINT_DAILY_BUDGET must be positive")
	}
	if len(c.Mint.PeriodCodes) == 0 {
		return fmt.Errorf("MINT_PERIOD_CODES is required")
	}
	if c.Mint.AccountID == "" {
		return fmt.Errorf("MINT_ACCOUNT_ID is required")
	}
	switch c.Log.Level {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR")
	}
	return nil
}

// DSN データベース接続文字列を返す
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// MigrationDSN マイグレーション用の接続文字列を返す（複数ステートメント許可）
func (c *DatabaseConfig) MigrationDSN() string {
	return c.DSN() + "&multiStatements=true"
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

// getEnvAsDecimal 環境変数を10進数として取得
func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList 環境変数をカンマ区切りのリストとして取得
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
