package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	HTTP       HTTPConfig
	Backend    BackendConfig
	Poll       PollConfig
	Redis      RedisConfig
	Mirror     MirrorConfig
	Postgres   PostgresConfig
	DBPool     DBPoolConfig
	Asynq      AsynqConfig
	Monitoring MonitoringConfig
	Log        LogConfig
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	Addr string
}

// BackendConfig 评测后端配置
type BackendConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // 每秒请求数，0 表示不限流
	RateBurst int
}

// PollConfig 轮询配置
type PollConfig struct {
	Interval   time.Duration
	RetryGrace time.Duration
	PageSize   int

	// ViewIdleTTL 视图全部作业停止后保留的时长，负数表示不清理
	ViewIdleTTL time.Duration
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MirrorConfig 快照镜像配置
type MirrorConfig struct {
	TTL    time.Duration
	Buffer int
}

// PostgresConfig PostgreSQL 配置
type PostgresConfig struct {
	DSN string
}

// DBPoolConfig 数据库连接池配置
type DBPoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// AsynqConfig Asynq 配置
type AsynqConfig struct {
	RedisAddr   string
	Queue       string
	Concurrency int
}

// MonitoringConfig 监控配置
type MonitoringConfig struct {
	Enabled bool
	Port    int
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string
	Production bool
}

// Load 加载配置
func Load() (*Config, error) {
	v := viper.New()

	// 设置配置文件名和路径
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.AddConfigPath("../..")

	// 允许从环境变量读取（优先级最高）
	v.AutomaticEnv()

	// 读取配置文件（如果存在）
	_ = v.ReadInConfig() // 忽略错误，因为可能只使用环境变量

	cfg := &Config{}

	// HTTP 配置
	cfg.HTTP.Addr = v.GetString("HTTP_ADDR")
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":28080"
	}

	// 后端配置
	cfg.Backend.BaseURL = v.GetString("BACKEND_BASE_URL")
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:8000"
	}
	cfg.Backend.Timeout = v.GetDuration("BACKEND_TIMEOUT")
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = 10 * time.Second
	}
	cfg.Backend.RateLimit = v.GetFloat64("BACKEND_RATE_LIMIT")
	cfg.Backend.RateBurst = v.GetInt("BACKEND_RATE_BURST")
	if cfg.Backend.RateBurst == 0 {
		cfg.Backend.RateBurst = 10
	}

	// 轮询配置
	cfg.Poll.Interval = v.GetDuration("POLL_INTERVAL")
	if cfg.Poll.Interval == 0 {
		cfg.Poll.Interval = time.Second
	}
	cfg.Poll.RetryGrace = v.GetDuration("POLL_RETRY_GRACE")
	if cfg.Poll.RetryGrace == 0 {
		cfg.Poll.RetryGrace = 2 * time.Second
	}
	cfg.Poll.PageSize = v.GetInt("POLL_PAGE_SIZE")
	if cfg.Poll.PageSize == 0 {
		cfg.Poll.PageSize = 50
	}
	cfg.Poll.ViewIdleTTL = v.GetDuration("VIEW_IDLE_TTL")
	if cfg.Poll.ViewIdleTTL == 0 {
		cfg.Poll.ViewIdleTTL = 30 * time.Minute
	}

	// Redis 配置
	cfg.Redis.Addr = v.GetString("REDIS_ADDR")
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")

	// 快照镜像
	cfg.Mirror.TTL = v.GetDuration("SNAPSHOT_TTL")
	if cfg.Mirror.TTL == 0 {
		cfg.Mirror.TTL = 24 * time.Hour
	}
	cfg.Mirror.Buffer = v.GetInt("SNAPSHOT_BUFFER")
	if cfg.Mirror.Buffer == 0 {
		cfg.Mirror.Buffer = 256
	}

	// PostgreSQL 配置
	cfg.Postgres.DSN = v.GetString("POSTGRES_DSN")
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required")
	}

	// 数据库连接池配置
	cfg.DBPool.MaxConns = int32(v.GetInt("DB_MAX_CONNS"))
	if cfg.DBPool.MaxConns == 0 {
		cfg.DBPool.MaxConns = 20
	}

	cfg.DBPool.MinConns = int32(v.GetInt("DB_MIN_CONNS"))
	if cfg.DBPool.MinConns == 0 {
		cfg.DBPool.MinConns = 5
	}

	cfg.DBPool.MaxConnLifetime = v.GetDuration("DB_MAX_CONN_LIFETIME")
	if cfg.DBPool.MaxConnLifetime == 0 {
		cfg.DBPool.MaxConnLifetime = 30 * time.Minute
	}

	cfg.DBPool.MaxConnIdleTime = v.GetDuration("DB_MAX_CONN_IDLE_TIME")
	if cfg.DBPool.MaxConnIdleTime == 0 {
		cfg.DBPool.MaxConnIdleTime = 5 * time.Minute
	}

	cfg.DBPool.HealthCheckPeriod = v.GetDuration("DB_HEALTH_CHECK_PERIOD")
	if cfg.DBPool.HealthCheckPeriod == 0 {
		cfg.DBPool.HealthCheckPeriod = 1 * time.Minute
	}

	// Asynq 配置
	cfg.Asynq.RedisAddr = cfg.Redis.Addr
	cfg.Asynq.Queue = v.GetString("SETTLED_QUEUE")
	if cfg.Asynq.Queue == "" {
		cfg.Asynq.Queue = "settled"
	}
	cfg.Asynq.Concurrency = v.GetInt("SETTLED_CONCURRENCY")
	if cfg.Asynq.Concurrency == 0 {
		cfg.Asynq.Concurrency = 4
	}

	// 监控配置
	cfg.Monitoring.Enabled = v.GetBool("MONITORING_ENABLED")
	cfg.Monitoring.Port = v.GetInt("MONITORING_PORT")
	if cfg.Monitoring.Port == 0 {
		cfg.Monitoring.Port = 29091
	}

	// 日志配置
	cfg.Log.Level = v.GetString("LOG_LEVEL")
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	cfg.Log.Production = v.GetBool("LOG_PRODUCTION")

	return cfg, nil
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Postgres.DSN == "" {
		return fmt.Errorf("PostgreSQL DSN is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("Redis address is required")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend base url: %q", c.Backend.BaseURL)
	}
	if c.Poll.Interval <= 0 || c.Poll.RetryGrace <= 0 {
		return fmt.Errorf("poll interval and retry grace must be positive")
	}
	if c.Poll.PageSize <= 0 {
		return fmt.Errorf("poll page size must be positive")
	}
	if c.Backend.RateLimit < 0 {
		return fmt.Errorf("backend rate limit must not be negative")
	}
	return nil
}
