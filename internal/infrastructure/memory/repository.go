// Package memory - журнал вычислений в памяти процесса. Используется без внешней БД и в тестах.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"webcalc/internal/domain"
	"webcalc/internal/ports"
)

var _ ports.IHistoryRepository = (*HistoryRepo)(nil)

// HistoryRepo хранит записи в порядке вставки. Мьютекс сериализует Save и Clear.
type HistoryRepo struct {
	mu     sync.RWMutex
	recs   []domain.CalculationRecord
	nextID int64
	now    func() time.Time
}

// NewHistoryRepo возвращает пустой журнал.
func NewHistoryRepo() *HistoryRepo {
	return &HistoryRepo{now: time.Now}
}

// WithClock подменяет часы (для тестов).
func (r *HistoryRepo) WithClock(now func() time.Time) *HistoryRepo {
	r.now = now
	return r
}

// Save добавляет запись, назначая ID и время вставки.
func (r *HistoryRepo) Save(ctx context.Context, rec domain.CalculationRecord) (domain.CalculationRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.CalculationRecord{}, storageErr(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	rec.ID = r.nextID
	rec.Timestamp = r.now().UTC()
	// время не должно идти назад относительно последней записи
	if n := len(r.recs); n > 0 && rec.Timestamp.Before(r.recs[n-1].Timestamp) {
		rec.Timestamp = r.recs[n-1].Timestamp
	}
	r.recs = append(r.recs, rec)
	return rec, nil
}

// Recent возвращает не больше limit последних записей, новые первыми.
func (r *HistoryRepo) Recent(ctx context.Context, limit int) ([]domain.CalculationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr(err)
	}
	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := min(limit, len(r.recs))
	list := make([]domain.CalculationRecord, 0, n)
	for i := len(r.recs) - 1; i >= 0 && len(list) < n; i-- {
		list = append(list, r.recs[i])
	}
	return list, nil
}

// Clear удаляет все записи. Счётчик ID не сбрасывается.
func (r *HistoryRepo) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return storageErr(err)
	}
	r.mu.Lock()
	r.recs = nil
	r.mu.Unlock()
	return nil
}

// Ping всегда успешен.
func (r *HistoryRepo) Ping(context.Context) error {
	return nil
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrStorage, err)
}
