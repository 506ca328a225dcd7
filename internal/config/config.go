package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/partshub/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	Database    DatabaseConfig    `mapstructure:"database"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Queue       QueueConfig       `mapstructure:"queue"`
	CORS        CORSConfig        `mapstructure:"cors"`
	Security    SecurityConfig    `mapstructure:"security"`
	Paystack    PaystackConfig    `mapstructure:"paystack"`
	AWS         AWSConfig         `mapstructure:"aws"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
	Order       OrderConfig       `mapstructure:"order"`
	Poll        PollConfig        `mapstructure:"poll"`
	Client      ClientConfig      `mapstructure:"client"`
}

// AppConfig 应用基础信息
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Currency string `mapstructure:"currency"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
	Console    bool   `mapstructure:"console"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
		Console:    c.Console,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // sqlite / postgres
	DSN    string             `mapstructure:"dsn"`
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey   string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	LoginRateLimit    LoginRateLimitConfig `mapstructure:"login_rate_limit"`
	PasswordMinLength int                  `mapstructure:"password_min_length"`
}

// LoginRateLimitConfig 登录限流配置
type LoginRateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
	BlockSeconds  int `mapstructure:"block_seconds"`
}

// PaystackConfig Paystack 配置，SecretKey 为空时进入模拟支付模式
type PaystackConfig struct {
	SecretKey   string `mapstructure:"secret_key"`
	BaseURL     string `mapstructure:"base_url"`
	CallbackURL string `mapstructure:"callback_url"`
	TimeoutMS   int    `mapstructure:"timeout_ms"`
}

// MockMode 是否使用模拟支付
func (c PaystackConfig) MockMode() bool {
	return strings.TrimSpace(c.SecretKey) == ""
}

// AWSConfig AWS 相关配置
type AWSConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	Region           string `mapstructure:"region"`
	Endpoint         string `mapstructure:"endpoint"`
	IdempotencyTable string `mapstructure:"idempotency_table"`
	EventsQueueURL   string `mapstructure:"events_queue_url"`
	MetricsNamespace string `mapstructure:"metrics_namespace"`
}

// IdempotencyConfig 下单幂等配置
type IdempotencyConfig struct {
	Backend    string `mapstructure:"backend"` // dynamodb / redis / none
	TTLMinutes int    `mapstructure:"ttl_minutes"`
}

// TTL 幂等记录有效期
func (c IdempotencyConfig) TTL() time.Duration {
	if c.TTLMinutes <= 0 {
		return 48 * time.Hour
	}
	return time.Duration(c.TTLMinutes) * time.Minute
}

// OrderConfig 订单配置
type OrderConfig struct {
	ListLimit                 int `mapstructure:"list_limit"`
	UnassignedBacklogMinutes  int `mapstructure:"unassigned_backlog_minutes"`
	BacklogScanIntervalSecond int `mapstructure:"backlog_scan_interval_seconds"`
}

// PollConfig 客户端轮询间隔
type PollConfig struct {
	LocationIntervalSeconds     int `mapstructure:"location_interval_seconds"`
	NotificationIntervalSeconds int `mapstructure:"notification_interval_seconds"`
}

// ClientConfig 客户端运行时配置
type ClientConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	TimeoutMS int    `mapstructure:"timeout_ms"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("./etc")

	setDefaults(viper.GetViper())

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // server.port -> SERVER_PORT

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "PartsHub API")
	v.SetDefault("app.currency", "NGN")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "partshub.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("log.console", false)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/partshub.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.expire_hours", 24*7)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "ph")
	v.SetDefault("queue.enabled", true)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.queues", map[string]int{
		"default":  10,
		"critical": 5,
	})
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Authorization",
		"Idempotency-Key",
		"X-Request-ID",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.login_rate_limit.window_seconds", 300)
	v.SetDefault("security.login_rate_limit.max_attempts", 5)
	v.SetDefault("security.login_rate_limit.block_seconds", 900)
	v.SetDefault("security.password_min_length", 6)
	v.SetDefault("paystack.secret_key", "")
	v.SetDefault("paystack.base_url", "https://api.paystack.co")
	v.SetDefault("paystack.callback_url", "")
	v.SetDefault("paystack.timeout_ms", 12000)
	v.SetDefault("aws.enabled", false)
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.endpoint", "")
	v.SetDefault("aws.idempotency_table", "partshub-idempotency")
	v.SetDefault("aws.events_queue_url", "")
	v.SetDefault("aws.metrics_namespace", "PartsHub")
	v.SetDefault("idempotency.backend", "redis")
	v.SetDefault("idempotency.ttl_minutes", 48*60)
	v.SetDefault("order.list_limit", 100)
	v.SetDefault("order.unassigned_backlog_minutes", 30)
	v.SetDefault("order.backlog_scan_interval_seconds", 300)
	v.SetDefault("poll.location_interval_seconds", 10)
	v.SetDefault("poll.notification_interval_seconds", 30)
	v.SetDefault("client.base_url", "http://127.0.0.1:8080")
	v.SetDefault("client.timeout_ms", 15000)
}
