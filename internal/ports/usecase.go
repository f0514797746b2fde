package ports

//go:generate mockgen -source=usecase.go -destination=../mocks/usecase_mock.go -package=mocks

import (
	"context"

	"webcalc/internal/domain"
)

// ICalculatorUseCase - контракт бизнес-логики калькулятора (расчёт, история, обработка событий из Kafka).
type ICalculatorUseCase interface {
	Calculate(ctx context.Context, operand1, operand2 float64, operator string) (*domain.CalculationRecord, error)
	RecentHistory(ctx context.Context, limit int) ([]domain.CalculationRecord, error)
	ClearHistory(ctx context.Context) error
	HandleCalculationEvent(ctx context.Context, ev domain.CalculationEvent) error
}
