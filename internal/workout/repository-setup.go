package workout

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/ahvonen/gymlog/internal/sqlite"
)

// sqliteSetupRepository implements setupRepository. First-run setup and split
// resizing touch both the config singleton and the plan weeks; a single
// transaction keeps a failure from leaving a config without a matching plan.
type sqliteSetupRepository struct {
	baseRepository
}

func newSQLiteSetupRepository(db *sqlite.Database, logger *slog.Logger) *sqliteSetupRepository {
	return &sqliteSetupRepository{baseRepository: newBaseRepository(db, logger)}
}

// Initialize writes the configuration and the full plan structure atomically.
func (r *sqliteSetupRepository) Initialize(ctx context.Context, cfg Config, weeks []Week) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if err := writeConfigTx(ctx, tx, cfg); err != nil {
			return err
		}
		return replaceWeeksTx(ctx, tx, weeks)
	})
}

// ResizeSplit updates the configured split length and grows or shrinks the
// plan's week set to match, atomically.
func (r *sqliteSetupRepository) ResizeSplit(ctx context.Context, cfg Config) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if err := writeConfigTx(ctx, tx, cfg); err != nil {
			return err
		}
		return resizeWeeksTx(ctx, tx, cfg.SplitLengthWeeks)
	})
}
