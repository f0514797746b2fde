package ports

//go:generate mockgen -source=broker.go -destination=../mocks/broker_mock.go -package=mocks

import (
	"context"

	"webcalc/internal/domain"
)

// IEventPublisher - публикация событий о сохранённых вычислениях в брокер (Kafka).
// Топик и формат сообщения задаёт реализация.
type IEventPublisher interface {
	Publish(ctx context.Context, ev domain.CalculationEvent) error
}
