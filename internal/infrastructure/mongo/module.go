package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Config - настройки подключения к MongoDB. Переменные: CALCULATOR_MONGO_*.
type Config struct {
	URI        string `envconfig:"URI" default:"mongodb://localhost:27017"`
	Database   string `envconfig:"DATABASE" default:"webcalc"`
	Collection string `envconfig:"COLLECTION" default:"calculations"`
	Counters   string `envconfig:"COUNTERS" default:"counters"`
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Collection == "" {
		out.Collection = "calculations"
	}
	if out.Counters == "" {
		out.Counters = "counters"
	}
	return out
}

// Client - обёртка над mongo.Client.
type Client struct {
	*mongo.Client
	cfg Config
}

// New подключается к MongoDB по конфигу.
func New(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = &Config{URI: "mongodb://localhost:27017", Database: "webcalc"}
	}
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &Client{Client: client, cfg: cfg.withDefaults()}, nil
}

// DB возвращает базу по конфигу.
func (c *Client) DB() *mongo.Database {
	return c.Database(c.cfg.Database)
}

// Coll возвращает коллекцию истории.
func (c *Client) Coll() *mongo.Collection {
	return c.DB().Collection(c.cfg.Collection)
}

// CountersColl возвращает коллекцию счётчиков ID.
func (c *Client) CountersColl() *mongo.Collection {
	return c.DB().Collection(c.cfg.Counters)
}

// EnsureIndexes создаёт индекс для выборки последних N. Вызови один раз при старте.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	_, err := c.Coll().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "calculated_at", Value: -1}, {Key: "_id", Value: -1}},
		Options: options.Index().SetName("idx_calculated_at"),
	})
	if err != nil {
		return fmt.Errorf("mongo create index: %w", err)
	}
	return nil
}

// Close отключается от MongoDB.
func (c *Client) Close() error {
	return c.Disconnect(context.Background())
}
