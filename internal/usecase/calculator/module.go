package calculator

import (
	"log/slog"
	"strconv"

	"webcalc/internal/ports"
)

// cacheKey формирует читаемый ключ вычисления для кэша, например "1 add 1".
func cacheKey(operand1, operand2 float64, operator string) string {
	return strconv.FormatFloat(operand1, 'f', -1, 64) + " " + operator + " " + strconv.FormatFloat(operand2, 'f', -1, 64)
}

// UseCase - бизнес-логика калькулятора.
// cache и broker необязательны: nil означает, что соответствующий шаг пропускается.
type UseCase struct {
	repo      ports.IHistoryRepository
	cache     ports.ICache
	broker    ports.IEventPublisher
	analytics ports.ICalculationAnalytics
	log       *slog.Logger
}

// New создаёт юзкейс калькулятора.
func New(repo ports.IHistoryRepository, cache ports.ICache, broker ports.IEventPublisher, analytics ports.ICalculationAnalytics, log *slog.Logger) *UseCase {
	if log == nil {
		log = slog.Default()
	}
	return &UseCase{repo: repo, cache: cache, broker: broker, analytics: analytics, log: log}
}
