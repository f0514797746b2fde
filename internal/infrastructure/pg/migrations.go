package pg

import (
	"context"
	"fmt"
)

// clock_timestamp(), а не NOW(): NOW() фиксируется на старте транзакции и не отражает порядок вставок.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS calculation_history (
		id            BIGSERIAL PRIMARY KEY,
		operand1      DOUBLE PRECISION NOT NULL,
		operand2      DOUBLE PRECISION NOT NULL,
		operator      VARCHAR(10) NOT NULL,
		result        DOUBLE PRECISION NOT NULL,
		calculated_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_calculated_at ON calculation_history (calculated_at DESC, id DESC)`,
}

// Migrate создаёт таблицу calculation_history и индекс, если их ещё нет.
func Migrate(ctx context.Context, db *DB) error {
	for i, q := range migrations {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
