package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 訂單寫入策略
const (
	PolicyInsert = "insert"
	PolicyUpsert = "upsert"
)

// 提交防重後端
const (
	GuardMemory = "memory"
	GuardRedis  = "redis"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Nutrition   NutritionConfig `mapstructure:"nutrition"`
	Order       OrderConfig     `mapstructure:"order"`
	Guard       GuardConfig     `mapstructure:"guard"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// DatabaseConfig 資料庫設定
type DatabaseConfig struct {
	// Driver 為 "sqlite"（modernc，純 Go）或 "sqlite3"（mattn，需 cgo）
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// NutritionConfig 營養資訊 API 設定
type NutritionConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// OrderConfig 訂單設定
type OrderConfig struct {
	Policy string `mapstructure:"policy"`
}

// GuardConfig 重複提交防護設定
type GuardConfig struct {
	Backend       string        `mapstructure:"backend"`
	TTL           time.Duration `mapstructure:"ttl"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 不存在時仍以環境變數與預設值啟動
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	v.BindEnv("database.path", "DB_PATH")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("nutrition.base_url", "NUTRITION_BASE_URL")
	v.BindEnv("nutrition.timeout", "NUTRITION_TIMEOUT")
	v.BindEnv("order.policy", "ORDER_POLICY")
	v.BindEnv("guard.backend", "GUARD_BACKEND")
	v.BindEnv("guard.redis_addr", "REDIS_ADDR")
	v.BindEnv("guard.redis_password", "REDIS_PASSWORD")
	v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	v.BindEnv("dedup_window", "DEDUP_WINDOW")
	v.BindEnv("log_level", "LOG_LEVEL")

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.Order.Policy = strings.ToLower(strings.TrimSpace(config.Order.Policy))
	config.Guard.Backend = strings.ToLower(strings.TrimSpace(config.Guard.Backend))

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// MaskSecret 遮罩敏感字串，只顯示前後各 2 個字符
func MaskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + "..." + s[len(s)-2:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "smoothie-order")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "60s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "smoothies.db")

	v.SetDefault("nutrition.base_url", "https://my.smoothiefroot.com/api")
	v.SetDefault("nutrition.timeout", "10s")

	v.SetDefault("order.policy", PolicyUpsert)

	v.SetDefault("guard.backend", GuardMemory)
	v.SetDefault("guard.ttl", "30s")
	v.SetDefault("guard.redis_addr", "localhost:6379")
	v.SetDefault("guard.redis_db", 0)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 60)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("dedup_window", "2s")
	v.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	switch config.Database.Driver {
	case "sqlite", "sqlite3":
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}
	if config.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if config.Nutrition.BaseURL == "" {
		return fmt.Errorf("nutrition base url is required")
	}
	if config.Nutrition.Timeout <= 0 {
		return fmt.Errorf("invalid nutrition timeout")
	}

	switch config.Order.Policy {
	case PolicyInsert, PolicyUpsert:
	default:
		return fmt.Errorf("unsupported order policy %q", config.Order.Policy)
	}

	switch config.Guard.Backend {
	case GuardMemory:
	case GuardRedis:
		if config.Guard.RedisAddr == "" {
			return fmt.Errorf("redis address is required for redis guard")
		}
	default:
		return fmt.Errorf("unsupported guard backend %q", config.Guard.Backend)
	}
	if config.Guard.TTL <= 0 {
		return fmt.Errorf("invalid guard ttl")
	}

	if config.RateLimit.Enabled {
		if config.RateLimit.Requests <= 0 {
			return fmt.Errorf("invalid rate limit requests")
		}
		if config.RateLimit.Window <= 0 {
			return fmt.Errorf("invalid rate limit window")
		}
	}

	return nil
}
