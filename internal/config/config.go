package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config содержит конфигурацию сервиса
type Config struct {
	Port            int     `envconfig:"PORT" default:"8000"`
	MaxPrincipal    float64 `envconfig:"MAX_PRINCIPAL" default:"1e9"`
	MaxContribution float64 `envconfig:"MAX_CONTRIBUTION" default:"1e8"`
	MaxMonths       int     `envconfig:"MAX_MONTHS" default:"1200"`
	MaxYears        int     `envconfig:"MAX_YEARS" default:"100"`
	MaxRate         float64 `envconfig:"MAX_RATE" default:"200"`
	MaxBalanceCap   float64 `envconfig:"MAX_BALANCE_CAP" default:"1e12"`
	OTELEndpoint    string  `envconfig:"OTEL_ENDPOINT"`
	OTELServiceName string  `envconfig:"OTEL_SERVICE_NAME" default:"finplan"`
	LogLevel        string  `envconfig:"LOG_LEVEL" default:"INFO"`
	LogFormat       string  `envconfig:"LOG_FORMAT" default:"json"`

	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    float64       `envconfig:"RATE_LIMIT_RPS" default:"50"`
	RateLimitBurst  int           `envconfig:"RATE_LIMIT_BURST" default:"100"`
}

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	// Загружаем .env файл, если он существует (игнорируем ошибку)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	return &Config{
		Port:            8000,
		MaxPrincipal:    1e9,
		MaxContribution: 1e8,
		MaxMonths:       1200,
		MaxYears:        100,
		MaxRate:         200,
		MaxBalanceCap:   1e12,
		OTELServiceName: "finplan",
		LogLevel:        "INFO",
		LogFormat:       "json",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		RequestTimeout:  10 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		RateLimitRPS:    50,
		RateLimitBurst:  100,
	}
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.MaxMonths <= 0 || c.MaxYears <= 0 {
		return fmt.Errorf("MAX_MONTHS and MAX_YEARS must be positive")
	}
	if c.MaxPrincipal <= 0 || c.MaxContribution <= 0 || c.MaxRate <= 0 || c.MaxBalanceCap <= 0 {
		return fmt.Errorf("MAX_* limits must be positive")
	}
	return nil
}

// BalanceCap возвращает максимальный баланс для защиты от переполнения
func (c *Config) BalanceCap() float64 {
	return c.MaxBalanceCap
}

// Addr адрес для HTTP сервера
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
