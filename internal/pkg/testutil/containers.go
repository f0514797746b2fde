// Package testutil поднимает Docker-контейнеры для интеграционных тестов (testcontainers-go).
//
// Интеграционные тесты лежат рядом с пакетами инфраструктуры и пропускаются в short режиме:
//
//	go test ./... -short
package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/clickhouse"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"webcalc/internal/infrastructure/click"
	"webcalc/internal/infrastructure/mongo"
	"webcalc/internal/infrastructure/pg"
	redisinfra "webcalc/internal/infrastructure/redis"
)

// Container - запущенный контейнер и адрес, по которому он доступен с хоста.
type Container struct {
	testcontainers.Container
	Host string
	Port string
}

// Terminate останавливает контейнер (nil-safe).
func (c *Container) Terminate(ctx context.Context) error {
	if c == nil || c.Container == nil {
		return nil
	}
	return c.Container.Terminate(ctx)
}

func endpoint(ctx context.Context, c testcontainers.Container, port nat.Port) (*Container, error) {
	host, err := c.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("container host: %w", err)
	}
	mapped, err := c.MappedPort(ctx, port)
	if err != nil {
		return nil, fmt.Errorf("container port %s: %w", port, err)
	}
	return &Container{Container: c, Host: host, Port: mapped.Port()}, nil
}

// PostgresContainer - PostgreSQL с готовым конфигом для pg.New.
type PostgresContainer struct {
	*Container
	Config pg.Config
}

// NewPostgresContainer поднимает PostgreSQL в Docker.
func NewPostgresContainer(ctx context.Context) (*PostgresContainer, error) {
	const (
		user     = "test"
		password = "test"
		dbName   = "testdb"
	)

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres container: %w", err)
	}
	c, err := endpoint(ctx, container, "5432")
	if err != nil {
		return nil, err
	}
	return &PostgresContainer{
		Container: c,
		Config: pg.Config{
			Host:     c.Host,
			Port:     c.Port,
			User:     user,
			Password: password,
			DBName:   dbName,
			SSLMode:  "disable",
		},
	}, nil
}

// RedisContainer - Redis с готовым конфигом.
type RedisContainer struct {
	*Container
	Config redisinfra.Config
}

// NewRedisContainer поднимает Redis в Docker.
func NewRedisContainer(ctx context.Context) (*RedisContainer, error) {
	container, err := redis.Run(ctx,
		"redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("redis container: %w", err)
	}
	c, err := endpoint(ctx, container, "6379")
	if err != nil {
		return nil, err
	}
	return &RedisContainer{
		Container: c,
		Config:    redisinfra.Config{Host: c.Host, Port: c.Port, TTL: time.Hour},
	}, nil
}

// MongoContainer - MongoDB с готовым конфигом.
type MongoContainer struct {
	*Container
	Config mongo.Config
}

// NewMongoContainer поднимает MongoDB в Docker.
func NewMongoContainer(ctx context.Context) (*MongoContainer, error) {
	container, err := mongodb.Run(ctx,
		"mongo:7",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Waiting for connections").
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("mongo container: %w", err)
	}
	c, err := endpoint(ctx, container, "27017")
	if err != nil {
		return nil, err
	}
	return &MongoContainer{
		Container: c,
		Config: mongo.Config{
			URI:      fmt.Sprintf("mongodb://%s:%s", c.Host, c.Port),
			Database: "testdb",
		},
	}, nil
}

// ClickHouseContainer - ClickHouse с готовым конфигом (нативный порт 9000).
type ClickHouseContainer struct {
	*Container
	Config click.Config
}

// NewClickHouseContainer поднимает ClickHouse в Docker.
func NewClickHouseContainer(ctx context.Context) (*ClickHouseContainer, error) {
	const (
		user     = "default"
		password = ""
		database = "default"
	)

	container, err := clickhouse.Run(ctx,
		"clickhouse/clickhouse-server:24-alpine",
		clickhouse.WithUsername(user),
		clickhouse.WithPassword(password),
		clickhouse.WithDatabase(database),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse container: %w", err)
	}
	c, err := endpoint(ctx, container, "9000")
	if err != nil {
		return nil, err
	}
	return &ClickHouseContainer{
		Container: c,
		Config: click.Config{
			Host:     c.Host,
			Port:     c.Port,
			Database: database,
			Username: user,
			Password: password,
		},
	}, nil
}
