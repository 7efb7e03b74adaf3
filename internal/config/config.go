package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// EnvPrefix префикс переменных окружения, переопределяющих значения из файла
const EnvPrefix = "APPT_"

var (
	// ErrLoad возвращается, когда конфигурацию не удалось прочитать
	ErrLoad = errors.New("config: failed to load")

	// ErrInvalid возвращается, когда значения конфигурации некорректны
	ErrInvalid = errors.New("config: invalid configuration")
)

// Config конфигурация сервиса
type Config struct {
	Server        ServerConfig        `toml:"server" envPrefix:"SERVER_"`
	Database      DatabaseConfig      `toml:"database" envPrefix:"DATABASE_"`
	Logs          LogsConfig          `toml:"logs" envPrefix:"LOGS_"`
	Metrics       MetricsConfig       `toml:"metrics" envPrefix:"METRICS_"`
	Tracing       TracingConfig       `toml:"tracing" envPrefix:"TRACING_"`
	Auth          AuthConfig          `toml:"auth" envPrefix:"AUTH_"`
	Booking       BookingConfig       `toml:"booking" envPrefix:"BOOKING_"`
	PersonService ServiceClientConfig `toml:"person_service" envPrefix:"PERSON_SERVICE_"`
	Weather       WeatherConfig       `toml:"weather" envPrefix:"WEATHER_"`
	Redis         RedisConfig         `toml:"redis" envPrefix:"REDIS_"`
	Notifications NotificationsConfig `toml:"notifications" envPrefix:"NOTIFICATIONS_"`
	Reminders     RemindersConfig     `toml:"reminders" envPrefix:"REMINDERS_"`
	RateLimit     RateLimitConfig     `toml:"rate_limit" envPrefix:"RATE_LIMIT_"`
}

// ServerConfig настройки HTTP сервера, таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port" env:"HTTP_PORT"`
	ReadTimeout     int `toml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    int `toml:"write_timeout" env:"WRITE_TIMEOUT"`
	IdleTimeout     int `toml:"idle_timeout" env:"IDLE_TIMEOUT"`
	ShutdownTimeout int `toml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// DatabaseConfig настройки хранилища
type DatabaseConfig struct {
	Driver          string `toml:"driver" env:"DRIVER"` // postgres | memory
	Host            string `toml:"host" env:"HOST"`
	Port            int    `toml:"port" env:"PORT"`
	User            string `toml:"user" env:"USER"`
	Password        string `toml:"password" env:"PASSWORD"`
	DBName          string `toml:"dbname" env:"NAME"`
	SSLMode         string `toml:"sslmode" env:"SSLMODE"`
	MaxOpenConns    int    `toml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns    int    `toml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"` // секунды
	TxMaxRetries    int    `toml:"tx_max_retries" env:"TX_MAX_RETRIES"`
}

// DSN возвращает строку подключения к postgres
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	Level string `toml:"level" env:"LEVEL"`
	File  string `toml:"file" env:"FILE"` // Пусто - только stdout
}

// MetricsConfig настройки prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled" env:"ENABLED"`
	Path        string `toml:"path" env:"PATH"`
	ServiceName string `toml:"service_name" env:"SERVICE_NAME"`
}

// TracingConfig настройки OpenTelemetry
type TracingConfig struct {
	Enabled     bool    `toml:"enabled" env:"ENABLED"`
	Endpoint    string  `toml:"endpoint" env:"ENDPOINT"`
	SampleRatio float64 `toml:"sample_ratio" env:"SAMPLE_RATIO"`
}

// AuthConfig настройки аутентификации
// Если JWTSecret пуст, инициатор берется из заголовков X-User-ID и X-User-Role
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret" env:"JWT_SECRET"`
	Issuer    string `toml:"issuer" env:"ISSUER"`
}

// BookingConfig правила записи
type BookingConfig struct {
	MaxActiveAppointments   int     `toml:"max_active_appointments" env:"MAX_ACTIVE_APPOINTMENTS"`
	OutdoorMinTemperature   float64 `toml:"outdoor_min_temperature" env:"OUTDOOR_MIN_TEMPERATURE"`
	OutdoorMaxTemperature   float64 `toml:"outdoor_max_temperature" env:"OUTDOOR_MAX_TEMPERATURE"`
	OutdoorMaxPrecipitation float64 `toml:"outdoor_max_precipitation" env:"OUTDOOR_MAX_PRECIPITATION"`
	SideEffectTimeout       int     `toml:"side_effect_timeout" env:"SIDE_EFFECT_TIMEOUT"` // секунды
}

// ServiceClientConfig настройки HTTP клиента внешнего сервиса
type ServiceClientConfig struct {
	URL     string `toml:"url" env:"URL"`
	Timeout int    `toml:"timeout" env:"TIMEOUT"` // секунды
}

// WeatherConfig настройки погодного сервиса
type WeatherConfig struct {
	Enabled           bool    `toml:"enabled" env:"ENABLED"`
	URL               string  `toml:"url" env:"URL"`
	Timeout           int     `toml:"timeout" env:"TIMEOUT"` // секунды
	RequestsPerSecond float64 `toml:"requests_per_second" env:"REQUESTS_PER_SECOND"`
	Burst             int     `toml:"burst" env:"BURST"`
	CacheTTL          int     `toml:"cache_ttl" env:"CACHE_TTL"` // секунды, кэш работает при включенном redis
}

// RedisConfig настройки redis
type RedisConfig struct {
	Enabled  bool   `toml:"enabled" env:"ENABLED"`
	Addr     string `toml:"addr" env:"ADDR"`
	Password string `toml:"password" env:"PASSWORD"`
	DB       int    `toml:"db" env:"DB"`
}

// NotificationsConfig настройки доставки уведомлений
type NotificationsConfig struct {
	Driver        string   `toml:"driver" env:"DRIVER"` // noop | sms | kafka
	SMSWebhookURL string   `toml:"sms_webhook_url" env:"SMS_WEBHOOK_URL"`
	SMSToken      string   `toml:"sms_token" env:"SMS_TOKEN"`     // Bearer токен вебхука, пусто - без авторизации
	SMSTimeout    int      `toml:"sms_timeout" env:"SMS_TIMEOUT"` // секунды
	KafkaBrokers  []string `toml:"kafka_brokers" env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic    string   `toml:"kafka_topic" env:"KAFKA_TOPIC"`
}

// RemindersConfig настройки напоминаний о неподтвержденных записях
type RemindersConfig struct {
	Enabled           bool `toml:"enabled" env:"ENABLED"`
	Interval          int  `toml:"interval" env:"INTERVAL"`                       // секунды
	StaleAfterMinutes int  `toml:"stale_after_minutes" env:"STALE_AFTER_MINUTES"` // минуты
	BatchSize         int  `toml:"batch_size" env:"BATCH_SIZE"`
}

// RateLimitConfig ограничение частоты запросов на одного инициатора
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled" env:"ENABLED"`
	RequestsPerSecond float64 `toml:"requests_per_second" env:"REQUESTS_PER_SECOND"`
	Burst             int     `toml:"burst" env:"BURST"`
	IdleTTL           int     `toml:"idle_ttl" env:"IDLE_TTL"` // секунды
}

// Load загружает конфигурацию из TOML файла и переменных окружения APPT_*
// Значения, отсутствующие в файле, берутся по умолчанию
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrLoad, path, err)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("%w: environment: %v", ErrLoad, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 30,
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "appointments",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			TxMaxRetries:    3,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled:     true,
			Path:        "/metrics",
			ServiceName: "appointment-service",
		},
		Tracing: TracingConfig{
			Endpoint:    "localhost:4317",
			SampleRatio: 1.0,
		},
		Booking: BookingConfig{
			MaxActiveAppointments:   domain.DefaultMaxActiveAppointments,
			OutdoorMinTemperature:   domain.DefaultOutdoorMinTemperature,
			OutdoorMaxTemperature:   domain.DefaultOutdoorMaxTemperature,
			OutdoorMaxPrecipitation: domain.DefaultOutdoorMaxPrecipitation,
			SideEffectTimeout:       5,
		},
		PersonService: ServiceClientConfig{
			URL:     "http://localhost:8081",
			Timeout: 5,
		},
		Weather: WeatherConfig{
			Timeout:           5,
			RequestsPerSecond: 5,
			Burst:             10,
			CacheTTL:          3600,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Notifications: NotificationsConfig{
			Driver:     "noop",
			SMSTimeout: 5,
			KafkaTopic: "appointment.notifications",
		},
		Reminders: RemindersConfig{
			Interval:          600,
			StaleAfterMinutes: int(domain.DefaultStaleRequestAge / time.Minute),
			BatchSize:         100,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 10,
			Burst:             20,
			IdleTTL:           600,
		},
	}
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	var problems []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		problems = append(problems, fmt.Sprintf("server.http_port %d is out of range", c.Server.HTTPPort))
	}

	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		problems = append(problems, fmt.Sprintf("database.driver %q must be postgres or memory", c.Database.Driver))
	}

	if err := c.Policy().Validate(); err != nil {
		problems = append(problems, "booking: "+err.Error())
	}

	if c.PersonService.URL == "" {
		problems = append(problems, "person_service.url is required")
	}

	if c.Weather.Enabled && c.Weather.URL == "" {
		problems = append(problems, "weather.url is required when weather is enabled")
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		problems = append(problems, "tracing.sample_ratio must be within [0, 1]")
	}

	switch c.Notifications.Driver {
	case "noop":
	case "sms":
		if c.Notifications.SMSWebhookURL == "" {
			problems = append(problems, "notifications.sms_webhook_url is required for the sms driver")
		}
	case "kafka":
		if len(c.Notifications.KafkaBrokers) == 0 || c.Notifications.KafkaTopic == "" {
			problems = append(problems, "notifications.kafka_brokers and kafka_topic are required for the kafka driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("notifications.driver %q must be noop, sms or kafka", c.Notifications.Driver))
	}

	if c.Reminders.Enabled && (c.Reminders.Interval <= 0 || c.Reminders.BatchSize <= 0) {
		problems = append(problems, "reminders.interval and reminders.batch_size must be positive")
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		problems = append(problems, "rate_limit.requests_per_second and rate_limit.burst must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// Policy собирает правила записи из конфигурации
func (c *Config) Policy() domain.BookingPolicy {
	policy := domain.DefaultBookingPolicy()
	policy.MaxActiveAppointments = c.Booking.MaxActiveAppointments
	policy.Weather = domain.WeatherPolicy{
		MinTemperature:   c.Booking.OutdoorMinTemperature,
		MaxTemperature:   c.Booking.OutdoorMaxTemperature,
		MaxPrecipitation: c.Booking.OutdoorMaxPrecipitation,
	}
	if c.Reminders.StaleAfterMinutes > 0 {
		policy.StaleRequestAge = time.Duration(c.Reminders.StaleAfterMinutes) * time.Minute
	}
	return policy
}
