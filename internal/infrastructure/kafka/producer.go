package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"

	"webcalc/internal/domain"
	"webcalc/internal/ports"
)

var _ ports.IEventPublisher = (*Producer)(nil)

// messageWriter - часть kafka.Writer, нужная продюсеру (подменяется в тестах).
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer публикует события о вычислениях в топик. Ключ сообщения - ID записи.
type Producer struct {
	w messageWriter
}

// NewProducer создаёт продюсера по конфигу. После использования вызови Close().
func NewProducer(cfg *Config) *Producer {
	return New(cfg).Producer()
}

// Publish сериализует событие в JSON и отправляет одним сообщением.
func (p *Producer) Publish(ctx context.Context, ev domain.CalculationEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.ID, 10)),
		Value: value,
	})
}

// Close закрывает продюсера.
func (p *Producer) Close() error {
	return p.w.Close()
}
