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

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation marks errors caused by invalid user input. The state is left
// untouched and the message is shown to the user.
var ErrValidation = errors.New("invalid input")

const timestampFormat = "2006-01-02T15:04:05.000Z07:00"
const dateFormat = time.DateOnly

func formatDate(t time.Time) string {
	return t.Format(dateFormat)
}

func formatTimestamp(t time.Time) string {
	return t.Format(timestampFormat)
}

// parseNullableDate parses a date column that may be NULL into a time value,
// zero when NULL.
func parseNullableDate(s sql.NullString) (time.Time, error) {
	if !s.Valid {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateFormat, s.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s.String, err)
	}
	return t, nil
}

// repository aggregates the per-aggregate repositories of the domain.
type repository struct {
	config   configRepository
	plan     planRepository
	setup    setupRepository
	sessions sessionRepository
	prefs    preferenceRepository
	reset    destructiveRepository
}

// configRepository persists the application configuration singleton and its
// plate catalog.
type configRepository interface {
	Get(ctx context.Context) (Config, error)
	Set(ctx context.Context, cfg Config) error
}

// planRepository persists the split plan aggregate: weeks, day plans, and
// workout templates.
type planRepository interface {
	Get(ctx context.Context) (Plan, error)
	Day(ctx context.Context, dayID int64) (Day, error)
	CreateTemplate(ctx context.Context, dayID int64, t Template) error
	UpdateTemplate(ctx context.Context, id string, updateFn func(*Template) (bool, error)) error
	DeleteTemplate(ctx context.Context, id string) error
	RenumberTemplates(ctx context.Context, dayID int64, orderedIDs []string) error
	ActiveTemplates(ctx context.Context) ([]Template, error)
}

// setupRepository performs writes that span the config singleton and the plan
// aggregate, keeping both under one transaction.
type setupRepository interface {
	Initialize(ctx context.Context, cfg Config, weeks []Week) error
	ResizeSplit(ctx context.Context, cfg Config) error
}

// sessionRepository persists workout sessions with their entries and sets.
type sessionRepository interface {
	List(ctx context.Context) ([]Session, error)
	Get(ctx context.Context, id string) (Session, error)
	FindByDaySlot(ctx context.Context, weekIndex int, weekday Weekday, day time.Time) (Session, error)
	CommitEntry(ctx context.Context, commit entryCommit) error
}

// preferenceRepository is the lightweight key-value store for presentation
// preferences outside the domain entity graph.
type preferenceRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// destructiveRepository performs the factory reset.
type destructiveRepository interface {
	DeleteEverything(ctx context.Context) error
}

// repositoryFactory creates repository instances bound to a database.
type repositoryFactory struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newRepositoryFactory(db *sqlite.Database, logger *slog.Logger) *repositoryFactory {
	return &repositoryFactory{
		db:     db,
		logger: logger,
	}
}

func (f *repositoryFactory) newRepository() *repository {
	return &repository{
		config:   newSQLiteConfigRepository(f.db, f.logger),
		plan:     newSQLitePlanRepository(f.db, f.logger),
		setup:    newSQLiteSetupRepository(f.db, f.logger),
		sessions: newSQLiteSessionRepository(f.db, f.logger),
		prefs:    newSQLitePreferenceRepository(f.db),
		reset:    newSQLiteResetRepository(f.db, f.logger),
	}
}

// baseRepository carries the shared database handle and logger.
type baseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newBaseRepository(db *sqlite.Database, logger *slog.Logger) baseRepository {
	return baseRepository{db: db, logger: logger}
}

// withTx runs fn inside a read-write transaction, rolling back on error.
func (r baseRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
