package kafka

import (
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Config - настройки Kafka. Переменные: CALCULATOR_KAFKA_ENABLED, CALCULATOR_KAFKA_BROKERS, CALCULATOR_KAFKA_TOPIC, CALCULATOR_KAFKA_GROUP_ID.
type Config struct {
	Enabled      bool          `envconfig:"ENABLED" default:"false"`
	Brokers      string        `envconfig:"BROKERS" default:"localhost:9092"` // через запятую, если несколько
	Topic        string        `envconfig:"TOPIC" default:"webcalc.calculations"`
	GroupID      string        `envconfig:"GROUP_ID" default:"webcalc-analytics"` // для consumer group
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"5s"`
	BatchTimeout time.Duration `envconfig:"BATCH_TIMEOUT" default:"10ms"`
	RetryMin     time.Duration `envconfig:"RETRY_MIN" default:"500ms"`    // пауза перед повтором обработки
	RetryMax     time.Duration `envconfig:"RETRY_MAX" default:"30s"`
}

// brokersSlice возвращает список брокеров из строки (через запятую).
func (c *Config) brokersSlice() []string {
	if c == nil || c.Brokers == "" {
		return []string{"localhost:9092"}
	}
	parts := strings.Split(c.Brokers, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Client - конфиг и фабрики продюсера/консьюмера. Подключение к брокеру при создании Writer/Reader.
type Client struct {
	cfg *Config
}

// New создаёт клиент по конфигу.
func New(cfg *Config) *Client {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Client{cfg: cfg}
}

// defaultBatchTimeout заменяет секундную паузу kafka.Writer по умолчанию: Publish вызывается синхронно из /calculate.
const defaultBatchTimeout = 10 * time.Millisecond

// Producer создаёт продюсера событий. После использования вызови Close().
func (c *Client) Producer() *Producer {
	batch := c.cfg.BatchTimeout
	if batch <= 0 {
		batch = defaultBatchTimeout
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(c.cfg.brokersSlice()...),
		Topic:        c.cfg.Topic,
		Balancer:     &kafka.Hash{}, // события одной записи попадают в одну партицию
		WriteTimeout: c.cfg.WriteTimeout,
		BatchTimeout: batch,
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{w: w}
}

// Consumer создаёт консьюмера для чтения из топика (consumer group). После использования вызови Close().
func (c *Client) Consumer() *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: c.cfg.brokersSlice(),
		Topic:   c.cfg.Topic,
		GroupID: c.cfg.GroupID,
	})
	return &Consumer{r: r}
}
