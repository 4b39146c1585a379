package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Session  SessionConfig  `mapstructure:"session"`
	Queue    QueueConfig    `mapstructure:"queue"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Trending TrendingConfig `mapstructure:"trending"`
	Entities []EntityConfig `mapstructure:"entities"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // mysql, postgres, sqlite
	DSN          string `mapstructure:"dsn"`    // 非空时直接使用，忽略 host/port 等字段
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	Debug        bool   `mapstructure:"debug"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type SessionConfig struct {
	Secret     string `mapstructure:"secret"`
	CookieName string `mapstructure:"cookie_name"`
	HeaderName string `mapstructure:"header_name"`
}

type QueueConfig struct {
	ViewQueue  string `mapstructure:"view_queue"`
	MaxWorkers int    `mapstructure:"max_workers"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type TrendingConfig struct {
	DefaultDays             int     `mapstructure:"default_days"`
	Timezone                string  `mapstructure:"timezone"`
	CacheTTLSeconds         int     `mapstructure:"cache_ttl_seconds"`
	ResolverCacheSize       int     `mapstructure:"resolver_cache_size"`
	ResolverCacheTTLSeconds int     `mapstructure:"resolver_cache_ttl_seconds"`
	RefreshIntervalMinutes  int     `mapstructure:"refresh_interval_minutes"`
	SummarizeOnRecord       bool    `mapstructure:"summarize_on_record"`
	RateLimitPerSecond      float64 `mapstructure:"rate_limit_per_second"`
	RateLimitBurst          int     `mapstructure:"rate_limit_burst"`
}

// EntityConfig 注册一个可被统计的实体类型，按表名 + 主键列解析
type EntityConfig struct {
	Type  string `mapstructure:"type"`
	Table string `mapstructure:"table"`
	Key   string `mapstructure:"key"`
}

// Days 默认回溯天数
func (t TrendingConfig) Days() int {
	if t.DefaultDays <= 0 {
		return 30
	}
	return t.DefaultDays
}

// Location 统计按天切分所用的时区
func (t TrendingConfig) Location() *time.Location {
	if t.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (t TrendingConfig) CacheTTL() time.Duration {
	return time.Duration(t.CacheTTLSeconds) * time.Second
}

func (t TrendingConfig) ResolverCacheTTL() time.Duration {
	if t.ResolverCacheTTLSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(t.ResolverCacheTTLSeconds) * time.Second
}

func (t TrendingConfig) RefreshInterval() time.Duration {
	if t.RefreshIntervalMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(t.RefreshIntervalMinutes) * time.Minute
}

func (e EntityConfig) KeyColumn() string {
	if e.Key == "" {
		return "id"
	}
	return e.Key
}

func Load(configPath string) (*Config, error) {
	// .env 仅用于本地开发，不存在时忽略
	_ = godotenv.Load()

	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// 环境变量覆盖
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("trending.default_days", 30)
	v.SetDefault("queue.view_queue", "trending:views")
	v.SetDefault("queue.max_workers", 2)
	v.SetDefault("session.cookie_name", "trending_session")
	v.SetDefault("session.header_name", "X-Session-Key")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// 时区决定每天的起止，配错时直接报错
	if tz := cfg.Trending.Timezone; tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("invalid trending.timezone %q: %w", tz, err)
		}
	}

	return &cfg, nil
}
