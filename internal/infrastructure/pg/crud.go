package pg

import (
	"context"
	"fmt"
	"log/slog"

	"webcalc/internal/domain"
	"webcalc/internal/ports"
)

var _ ports.IHistoryRepository = (*HistoryRepo)(nil)

// HistoryRepo реализует ports.IHistoryRepository для PostgreSQL.
type HistoryRepo struct {
	db  *DB
	log *slog.Logger
}

// NewHistoryRepo возвращает репозиторий истории.
func NewHistoryRepo(db *DB, log *slog.Logger) *HistoryRepo {
	return &HistoryRepo{db: db, log: log}
}

// Save вставляет запись; id и calculated_at выставляет БД.
func (r *HistoryRepo) Save(ctx context.Context, rec domain.CalculationRecord) (domain.CalculationRecord, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO calculation_history (operand1, operand2, operator, result)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, calculated_at`,
		rec.Operand1, rec.Operand2, rec.Operator, rec.Result).Scan(&rec.ID, &rec.Timestamp)
	if err != nil {
		r.log.Debug("Save failed", "error", err)
		return domain.CalculationRecord{}, fmt.Errorf("%w: insert history: %w", domain.ErrStorage, err)
	}
	rec.Timestamp = rec.Timestamp.UTC()
	return rec, nil
}

// Recent возвращает последние limit записей (новые сначала, при равном времени - по id).
func (r *HistoryRepo) Recent(ctx context.Context, limit int) ([]domain.CalculationRecord, error) {
	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, operand1, operand2, operator, result, calculated_at
		 FROM calculation_history
		 ORDER BY calculated_at DESC, id DESC
		 LIMIT $1`, limit)
	if err != nil {
		r.log.Debug("Recent failed", "error", err)
		return nil, fmt.Errorf("%w: select history: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	list := make([]domain.CalculationRecord, 0, limit)
	for rows.Next() {
		var rec domain.CalculationRecord
		if err := rows.Scan(&rec.ID, &rec.Operand1, &rec.Operand2, &rec.Operator, &rec.Result, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("%w: scan history: %w", domain.ErrStorage, err)
		}
		rec.Timestamp = rec.Timestamp.UTC()
		list = append(list, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return list, nil
}

// Clear удаляет все записи одной командой (атомарно относительно параллельных вставок).
func (r *HistoryRepo) Clear(ctx context.Context) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM calculation_history`)
	if err != nil {
		r.log.Debug("Clear failed", "error", err)
		return fmt.Errorf("%w: clear history: %w", domain.ErrStorage, err)
	}
	if n, err := res.RowsAffected(); err == nil {
		r.log.Debug("history rows deleted", "count", n)
	}
	return nil
}

// Ping проверяет доступность БД (readiness).
func (r *HistoryRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
