package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"webcalc/internal/domain"
	"webcalc/internal/ports"
)

// messageReader - часть kafka.Reader, нужная консьюмеру (подменяется в тестах).
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Паузы между повторами обработки одного сообщения.
const (
	defaultRetryMin = 500 * time.Millisecond
	defaultRetryMax = 30 * time.Second
)

// Consumer читает события о вычислениях и передаёт их в use case (запись в аналитику).
type Consumer struct {
	r        messageReader
	uc       ports.ICalculatorUseCase
	log      *slog.Logger
	retryMin time.Duration
	retryMax time.Duration
}

// NewConsumer создаёт консьюмера по конфигу, use case и логгеру. После использования вызови Close().
func NewConsumer(cfg *Config, uc ports.ICalculatorUseCase, log *slog.Logger) *Consumer {
	c := New(cfg).Consumer()
	c.uc = uc
	c.log = log
	if cfg != nil {
		c.retryMin, c.retryMax = cfg.RetryMin, cfg.RetryMax
	}
	return c
}

// Run в цикле читает сообщения, декодирует JSON в domain.CalculationEvent, вызывает uc.HandleCalculationEvent и коммитит при успехе.
// Битые сообщения коммитятся и пропускаются. При ошибке обработки то же сообщение повторяется с растущей паузой;
// следующее не читается, пока текущее не обработано, поэтому offset не уходит дальше необработанного события.
// Выход по отмене ctx или при ошибке чтения.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error("kafka consumer stopped", "error", err)
			return err
		}

		var ev domain.CalculationEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			c.log.Warn("kafka unmarshal error, skip", "error", err, "topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
			if err := c.r.CommitMessages(ctx, msg); err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}

		if err := c.handle(ctx, msg, ev); err != nil {
			return err
		}

		if err := c.r.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error("kafka consumer stopped (commit)", "error", err)
			return err
		}
	}
}

// handle вызывает uc.HandleCalculationEvent, пока он не завершится успешно или не отменят ctx.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message, ev domain.CalculationEvent) error {
	backoff, maxBackoff := c.retryMin, c.retryMax
	if backoff <= 0 {
		backoff = defaultRetryMin
	}
	if maxBackoff < backoff {
		maxBackoff = max(backoff, defaultRetryMax)
	}
	for attempt := 1; ; attempt++ {
		err := c.uc.HandleCalculationEvent(ctx, ev)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("kafka handle error, retry", "error", err, "attempt", attempt, "backoff", backoff,
			"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// Close закрывает консьюмера.
func (c *Consumer) Close() error {
	return c.r.Close()
}
