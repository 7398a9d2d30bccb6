package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config корневая конфигурация сервиса
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Redis         RedisConfig         `toml:"redis"`
	Kafka         KafkaConfig         `toml:"kafka"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Quota         QuotaConfig         `toml:"quota"`
	Notifications NotificationsConfig `toml:"notifications"`
	NotifyGateway NotifyGatewayConfig `toml:"notify_gateway"`
	RateLimit     RateLimitConfig     `toml:"rate_limit"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN возвращает строку подключения к PostgreSQL
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig настройки Redis (счетчики квот)
type RedisConfig struct {
	Address  string `toml:"address"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	PoolSize int    `toml:"pool_size"`
}

// KafkaConfig настройки стрима событий бронирований
type KafkaConfig struct {
	Enabled       bool     `toml:"enabled"`
	Brokers       []string `toml:"brokers"`
	BookingsTopic string   `toml:"bookings_topic"`
	ConsumerGroup string   `toml:"consumer_group"`
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки Prometheus метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// QuotaConfig лимиты тарифных планов, сверяемые enforcement point.
// Счетчики инкрементирует вызывающее приложение, не этот сервис.
type QuotaConfig struct {
	Enabled             bool  `toml:"enabled"`
	DefaultLimit        int64 `toml:"default_limit"`
	FailOpenOnRedisDown bool  `toml:"fail_open_on_redis_down"`
}

// NotificationsConfig настройки контроллера уведомлений
type NotificationsConfig struct {
	MaxAttempts         int `toml:"max_attempts"`
	DispatchIntervalSec int `toml:"dispatch_interval_sec"`
	BatchSize           int `toml:"batch_size"`
	ScheduleHorizonDays int `toml:"schedule_horizon_days"`
}

// NotifyGatewayConfig настройки шлюза доставки уведомлений.
// Пустой URL включает dry-run режим доставки.
type NotifyGatewayConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// RateLimitConfig настройки пер-пользовательского rate limit
type RateLimitConfig struct {
	Enabled bool    `toml:"enabled"`
	RPS     float64 `toml:"rps"`
	Burst   int     `toml:"burst"`
}

// Load читает .env (если есть), затем TOML файл конфигурации.
// Переменные окружения перекрывают секреты из TOML.
func Load(path string) (*Config, error) {
	// .env опционален: в проде переменные приходят из окружения
	_ = godotenv.Load()

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_ADDRESS"); v != "" {
		cfg.Redis.Address = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Notifications.MaxAttempts == 0 {
		cfg.Notifications.MaxAttempts = 5
	}
	if cfg.Notifications.DispatchIntervalSec == 0 {
		cfg.Notifications.DispatchIntervalSec = 10
	}
	if cfg.Notifications.BatchSize == 0 {
		cfg.Notifications.BatchSize = 100
	}
	if cfg.Notifications.ScheduleHorizonDays == 0 {
		cfg.Notifications.ScheduleHorizonDays = 365
	}
	if cfg.NotifyGateway.Timeout == 0 {
		cfg.NotifyGateway.Timeout = 5
	}
	if cfg.Quota.DefaultLimit == 0 {
		cfg.Quota.DefaultLimit = 1000
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.ServiceName == "" {
		cfg.Metrics.ServiceName = "booking-engine"
	}
}

func validate(cfg *Config) error {
	if cfg.Database.Host == "" || cfg.Database.DBName == "" {
		return fmt.Errorf("config: database host and dbname are required")
	}
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.enabled requires at least one broker")
	}
	if cfg.Quota.Enabled && cfg.Redis.Address == "" {
		return fmt.Errorf("config: quota.enabled requires redis.address")
	}
	return nil
}
