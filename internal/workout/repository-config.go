package workout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahvonen/gymlog/internal/sqlite"
)

// sqliteConfigRepository implements configRepository.
type sqliteConfigRepository struct {
	baseRepository
}

func newSQLiteConfigRepository(db *sqlite.Database, logger *slog.Logger) *sqliteConfigRepository {
	return &sqliteConfigRepository{baseRepository: newBaseRepository(db, logger)}
}

// Get retrieves the configuration singleton. ErrNotFound signals that setup
// has not completed.
func (r *sqliteConfigRepository) Get(ctx context.Context) (_ Config, err error) {
	var (
		cfg          Config
		createdAtStr string
	)
	err = r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT split_length_weeks, created_at, bar_weight_value, bar_weight_unit
		FROM app_config
		WHERE id = 1`).
		Scan(&cfg.SplitLengthWeeks, &createdAtStr, &cfg.BarWeightValue, &cfg.BarWeightUnit)
	if errors.Is(err, sql.ErrNoRows) {
		return Config{}, ErrNotFound
	}
	if err != nil {
		return Config{}, fmt.Errorf("query app config: %w", err)
	}

	if cfg.CreatedAt, err = time.Parse(timestampFormat, createdAtStr); err != nil {
		return Config{}, fmt.Errorf("parse created_at: %w", err)
	}

	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, value, unit, label
		FROM plate_options
		WHERE config_id = 1
		ORDER BY sort_index`)
	if err != nil {
		return Config{}, fmt.Errorf("query plate options: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	for rows.Next() {
		var option PlateOption
		if err = rows.Scan(&option.ID, &option.Value, &option.Unit, &option.Label); err != nil {
			return Config{}, fmt.Errorf("scan plate option: %w", err)
		}
		cfg.PlateCatalog = append(cfg.PlateCatalog, option)
	}
	if err = rows.Err(); err != nil {
		return Config{}, fmt.Errorf("iterate plate options: %w", err)
	}

	return cfg, nil
}

// Set writes the configuration singleton and replaces the plate catalog in
// one transaction.
func (r *sqliteConfigRepository) Set(ctx context.Context, cfg Config) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		return writeConfigTx(ctx, tx, cfg)
	})
}

func writeConfigTx(ctx context.Context, tx *sql.Tx, cfg Config) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO app_config (id, split_length_weeks, created_at, bar_weight_value, bar_weight_unit)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			split_length_weeks = excluded.split_length_weeks,
			created_at = excluded.created_at,
			bar_weight_value = excluded.bar_weight_value,
			bar_weight_unit = excluded.bar_weight_unit`,
		cfg.SplitLengthWeeks, formatTimestamp(cfg.CreatedAt), cfg.BarWeightValue, cfg.BarWeightUnit)
	if err != nil {
		return fmt.Errorf("upsert app config: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM plate_options WHERE config_id = 1`); err != nil {
		return fmt.Errorf("clear plate options: %w", err)
	}
	for i, option := range cfg.PlateCatalog {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO plate_options (id, config_id, value, unit, label, sort_index)
			VALUES (?, 1, ?, ?, ?, ?)`,
			option.ID, option.Value, option.Unit, option.Label, i)
		if err != nil {
			return fmt.Errorf("insert plate option %s: %w", option.Label, err)
		}
	}
	return nil
}

// sqlitePreferenceRepository implements preferenceRepository over the
// preferences key-value table.
type sqlitePreferenceRepository struct {
	db *sqlite.Database
}

func newSQLitePreferenceRepository(db *sqlite.Database) *sqlitePreferenceRepository {
	return &sqlitePreferenceRepository{db: db}
}

func (r *sqlitePreferenceRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.ReadOnly.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query preference %s: %w", key, err)
	}
	return value, nil
}

func (r *sqlitePreferenceRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("save preference %s: %w", key, err)
	}
	return nil
}
