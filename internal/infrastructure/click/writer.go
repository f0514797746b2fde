package click

import (
	"context"
	"fmt"

	"webcalc/internal/domain"
	"webcalc/internal/ports"
)

var _ ports.ICalculationAnalytics = (*CalculationWriter)(nil)

const calculationsAnalytics = "calculations_analytics"

// OperatorStat - агрегат по оператору для отчётов.
type OperatorStat struct {
	Operator  string
	Count     uint64
	AvgResult float64
}

// CalculationWriter пишет вычисления в ClickHouse в формате, удобном для аналитики (GROUP BY operator, по времени).
type CalculationWriter struct {
	db *Client
}

// NewCalculationWriter создаёт писатель вычислений для аналитики.
func NewCalculationWriter(db *Client) *CalculationWriter {
	return &CalculationWriter{db: db}
}

func (w *CalculationWriter) table() string {
	return w.db.database + "." + calculationsAnalytics
}

// EnsureTable создаёт таблицу аналитики, если её ещё нет. ReplacingMergeTree по id схлопывает повторные доставки из Kafka.
func (w *CalculationWriter) EnsureTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UInt64,
			operand1 Float64,
			operand2 Float64,
			operator LowCardinality(String),
			result Float64,
			calculated_at DateTime64(3)
		) ENGINE = ReplacingMergeTree()
		ORDER BY (operator, calculated_at, id)
		PARTITION BY toYYYYMM(calculated_at)`,
		w.table(),
	)
	_, err := w.db.DB().ExecContext(ctx, query)
	return err
}

// WriteCalculation реализует ports.ICalculationAnalytics: пишет одно событие.
func (w *CalculationWriter) WriteCalculation(ctx context.Context, ev domain.CalculationEvent) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (id, operand1, operand2, operator, result, calculated_at) VALUES (?, ?, ?, ?, ?, ?)",
		w.table(),
	)
	_, err := w.db.DB().ExecContext(ctx, query,
		uint64(ev.ID), ev.Operand1, ev.Operand2, ev.Operator, ev.Result, ev.Timestamp)
	if err != nil {
		return fmt.Errorf("insert calculation: %w", err)
	}
	return nil
}

// OperatorStats возвращает число вычислений и средний результат по каждому оператору.
func (w *CalculationWriter) OperatorStats(ctx context.Context) ([]OperatorStat, error) {
	rows, err := w.db.DB().QueryContext(ctx, fmt.Sprintf(
		"SELECT operator, count() AS cnt, avg(result) FROM %s FINAL GROUP BY operator ORDER BY operator",
		w.table(),
	))
	if err != nil {
		return nil, fmt.Errorf("select stats: %w", err)
	}
	defer rows.Close()

	var stats []OperatorStat
	for rows.Next() {
		var s OperatorStat
		if err := rows.Scan(&s.Operator, &s.Count, &s.AvgResult); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
