package app

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	apigrpc "webcalc/internal/api/grpc"
	"webcalc/internal/api/http"
	"webcalc/internal/domain"
	"webcalc/internal/infrastructure/click"
	"webcalc/internal/infrastructure/kafka"
	"webcalc/internal/infrastructure/mongo"
	"webcalc/internal/infrastructure/pg"
	"webcalc/internal/infrastructure/redis"
	"webcalc/internal/pkg/logger"
)

const AppName = "CALCULATOR"

// EnvFileVar - переменная с путём к .env (по умолчанию ".env" в рабочей директории).
const EnvFileVar = AppName + "_ENV_FILE"

// Хранилища истории (CALCULATOR_STORAGE).
const (
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
	StorageMemory   = "memory"
)

// Config - конфиг приложения. Заполняется через envconfig с префиксом CALCULATOR.
type Config struct {
	Server       http.ServerConfig `envconfig:"SERVER"`
	Grpc         apigrpc.Config    `envconfig:"GRPC"`
	Log          logger.Config     `envconfig:"LOG"`
	Storage      string            `envconfig:"STORAGE" default:"postgres"`
	HistoryLimit int               `envconfig:"HISTORY_LIMIT" default:"10"`
	DB           pg.Config         `envconfig:"DB"`
	Mongo        mongo.Config      `envconfig:"MONGO"`
	Redis        redis.Config      `envconfig:"REDIS"`
	Kafka        kafka.Config      `envconfig:"KAFKA"`
	ClickHouse   click.Config      `envconfig:"CLICKHOUSE"`
}

// Validate проверяет значения, которые envconfig не может проверить сам.
func (c *Config) Validate() error {
	switch c.Storage {
	case StoragePostgres, StorageMongo, StorageMemory:
	default:
		return fmt.Errorf("%s_STORAGE: unknown storage %q (want %s, %s or %s)", AppName, c.Storage, StoragePostgres, StorageMongo, StorageMemory)
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = domain.DefaultHistoryLimit
	}
	return nil
}

// LoadCfg загружает конфиг: подтягивает .env (godotenv), затем заполняет структуру из окружения (envconfig).
// Переменные окружения имеют приоритет над .env.
func LoadCfg() (Config, error) {
	envFile := os.Getenv(EnvFileVar)
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		slog.Debug("config: .env не найден, используем окружение", "file", envFile, "error", err)
	}

	var cfg Config
	if err := envconfig.Process(AppName, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// secretMask заменяет секреты в выводе конфига.
const secretMask = "***"

// Masked возвращает копию конфига без секретов (пароли, учётные данные в URI) для вывода в лог или консоль.
func (c Config) Masked() Config {
	out := c
	if out.DB.Password != "" {
		out.DB.Password = secretMask
	}
	if out.Redis.Password != "" {
		out.Redis.Password = secretMask
	}
	if out.ClickHouse.Password != "" {
		out.ClickHouse.Password = secretMask
	}
	if u, err := url.Parse(out.Mongo.URI); err == nil {
		out.Mongo.URI = u.Redacted()
	} else {
		out.Mongo.URI = secretMask
	}
	return out
}
