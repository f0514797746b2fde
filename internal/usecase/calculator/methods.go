package calculator

import (
	"context"
	"errors"
	"fmt"

	"webcalc/internal/domain"
)

// Calculate считает результат и записывает его в историю. Это два отдельных шага:
// сначала domain.Calculate (или кэш), затем repo.Save. Ошибка вычисления возвращается без записи.
// Если не удалось сохранить историю, возвращается и посчитанная запись (ID == 0), и ошибка с domain.ErrStorage.
func (u *UseCase) Calculate(ctx context.Context, operand1, operand2 float64, operator string) (*domain.CalculationRecord, error) {
	key := cacheKey(operand1, operand2, operator)

	result, cached := u.cachedResult(ctx, key)
	if !cached {
		var err error
		result, err = domain.Calculate(operand1, operand2, operator)
		if err != nil {
			u.log.Warn("calculation rejected", "operand1", operand1, "operator", operator, "operand2", operand2, "error", err)
			return nil, err
		}
	}

	rec, err := u.repo.Save(ctx, domain.CalculationRecord{
		Operand1: operand1,
		Operand2: operand2,
		Operator: operator,
		Result:   result,
	})
	if err != nil {
		u.log.Error("history save failed", "key", key, "error", err)
		return &domain.CalculationRecord{
			Operand1: operand1,
			Operand2: operand2,
			Operator: operator,
			Result:   result,
		}, wrapStorage(err)
	}
	u.log.Info("calculation saved", "id", rec.ID, "key", key, "result", result, "cached", cached)

	if !cached && u.cache != nil {
		if err := u.cache.Set(ctx, key, result); err != nil {
			u.log.Warn("cache set", "key", key, "error", err)
		}
	}

	if u.broker != nil {
		if err := u.broker.Publish(ctx, domain.NewCalculationEvent(rec)); err != nil {
			u.log.Warn("broker publish", "id", rec.ID, "error", err)
		} else {
			u.log.Debug("calculation published", "id", rec.ID)
		}
	}

	return &rec, nil
}

// cachedResult читает результат из кэша. Ошибки кэша не фатальны: считаем, что ключа нет.
func (u *UseCase) cachedResult(ctx context.Context, key string) (float64, bool) {
	if u.cache == nil {
		return 0, false
	}
	v, found, err := u.cache.Get(ctx, key)
	if err != nil {
		u.log.Warn("cache get", "key", key, "error", err)
		return 0, false
	}
	return v, found
}

// RecentHistory - последние limit вычислений (limit <= 0 означает domain.DefaultHistoryLimit).
func (u *UseCase) RecentHistory(ctx context.Context, limit int) ([]domain.CalculationRecord, error) {
	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}
	list, err := u.repo.Recent(ctx, limit)
	if err != nil {
		u.log.Error("history read failed", "limit", limit, "error", err)
		return nil, wrapStorage(err)
	}
	return list, nil
}

// ClearHistory удаляет всю историю.
func (u *UseCase) ClearHistory(ctx context.Context) error {
	if err := u.repo.Clear(ctx); err != nil {
		u.log.Error("history clear failed", "error", err)
		return wrapStorage(err)
	}
	u.log.Info("history cleared")
	return nil
}

// HandleCalculationEvent вызывается консьюмером Kafka и пишет событие в аналитику.
func (u *UseCase) HandleCalculationEvent(ctx context.Context, ev domain.CalculationEvent) error {
	if u.analytics == nil {
		return errors.New("analytics is not configured")
	}
	if err := u.analytics.WriteCalculation(ctx, ev); err != nil {
		u.log.Warn("analytics write", "id", ev.ID, "error", err)
		return err
	}
	u.log.Info("calculation stored to click", "id", ev.ID, "operand1", ev.Operand1, "operator", ev.Operator, "operand2", ev.Operand2, "result", ev.Result)
	return nil
}

// wrapStorage гарантирует, что ошибка хранилища распознаётся через errors.Is(err, domain.ErrStorage).
func wrapStorage(err error) error {
	if errors.Is(err, domain.ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStorage, err)
}
