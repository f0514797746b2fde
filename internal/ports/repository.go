package ports

//go:generate mockgen -source=repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"webcalc/internal/domain"
)

// IHistoryRepository - контракт журнала вычислений: только добавление, выборка последних N и полная очистка.
// Все ошибки реализации оборачивают domain.ErrStorage.
type IHistoryRepository interface {
	// Save добавляет запись; ID и Timestamp назначает хранилище, возвращается сохранённая запись.
	Save(ctx context.Context, rec domain.CalculationRecord) (domain.CalculationRecord, error)
	// Recent возвращает не больше limit последних записей, от новых к старым.
	Recent(ctx context.Context, limit int) ([]domain.CalculationRecord, error)
	// Clear удаляет все записи. Повторный вызов на пустом журнале не ошибка.
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
}
