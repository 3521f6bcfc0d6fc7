// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/magabrotheeeer/coaching-courses/internal/models"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string                `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string                `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	MigrationsPath          string                `yaml:"migrations_path" env-default:"./migrations"`
	GRPCHealthAddress       string                `yaml:"grpc_health_address"`
	CatalogCacheTTL         time.Duration         `yaml:"catalog_cache_ttl" env-default:"1m"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	RabbitMQ                `yaml:"rabbitmq"`
	RateLimit               `yaml:"rate_limit"`
	Notifier                `yaml:"notifier"`
	UnlockPolicy            map[string]TierPolicy `yaml:"unlock_policy"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// RabbitMQ структура для подключения к брокеру сообщений
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// RateLimit структура для настройки ограничения частоты запросов
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"10"`
	Burst int     `yaml:"burst" env-default:"20"`
}

// Notifier структура для настройки планировщика уведомлений об открытии курсов
type Notifier struct {
	Schedule       string        `yaml:"schedule" env-default:"0 0 9 * * *"`
	Window         time.Duration `yaml:"window" env-default:"24h"`
	MetricsAddress string        `yaml:"metrics_address"`
}

// TierPolicy описывает темп открытия курсов для одного уровня подписки.
// Unlimited открывает все курсы сразу. Cadence — интервал между курсами.
// Limit ограничивает число курсов, которые уровень может открыть (0 — без ограничения).
type TierPolicy struct {
	Unlimited bool          `yaml:"unlimited"`
	Cadence   time.Duration `yaml:"cadence"`
	Limit     int           `yaml:"limit"`
}

// ErrInvalidUnlockPolicy возвращается, если таблица разблокировки курсов некорректна.
var ErrInvalidUnlockPolicy = errors.New("invalid unlock policy")

// MustLoad функция для загрузки конфига, возвращает конфиг, сгенерированный из config/config.go
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	if err := cfg.ValidateUnlockPolicy(); err != nil {
		log.Fatalf("cannot use config: %s", err)
	}
	return &cfg
}

// ValidateUnlockPolicy проверяет, что для каждого уровня подписки задан темп
// открытия курсов и в таблице нет неизвестных уровней.
func (c *Config) ValidateUnlockPolicy() error {
	for name, p := range c.UnlockPolicy {
		if _, err := models.ParseTier(name); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidUnlockPolicy, err)
		}
		if p.Cadence < 0 {
			return fmt.Errorf("%w: tier %s: negative cadence %s", ErrInvalidUnlockPolicy, name, p.Cadence)
		}
		if p.Limit < 0 {
			return fmt.Errorf("%w: tier %s: negative limit %d", ErrInvalidUnlockPolicy, name, p.Limit)
		}
	}
	for _, t := range models.Tiers() {
		if _, ok := c.UnlockPolicy[string(t)]; !ok {
			return fmt.Errorf("%w: tier %s is not configured", ErrInvalidUnlockPolicy, t)
		}
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"MigrationsPath: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"JWTToken:\n"+
			"  TokenTTL: %s\n"+
			"Notifier:\n"+
			"  Schedule: %s\n"+
			"UnlockPolicy: %v\n",
		c.Env,
		c.MigrationsPath,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.TokenTTL,
		c.Schedule,
		c.UnlockPolicy,
	)
}
