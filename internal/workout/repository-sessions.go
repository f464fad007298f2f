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

// sqliteSessionRepository implements sessionRepository.
type sqliteSessionRepository struct {
	baseRepository
}

func newSQLiteSessionRepository(db *sqlite.Database, logger *slog.Logger) *sqliteSessionRepository {
	return &sqliteSessionRepository{baseRepository: newBaseRepository(db, logger)}
}

// List retrieves all sessions in ascending date order with their entries
// and sets.
func (r *sqliteSessionRepository) List(ctx context.Context) (_ []Session, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, date, session_day_start, week_index, weekday, day_label
		FROM workout_sessions
		ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close session rows: %w", closeErr))
		}
	}()

	var sessions []Session
	for rows.Next() {
		var (
			sess        Session
			dateStr     string
			dayStartStr sql.NullString
		)
		if err = rows.Scan(&sess.ID, &dateStr, &dayStartStr,
			&sess.WeekIndex, &sess.Weekday, &sess.DayLabel); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		if sess.Date, err = time.Parse(timestampFormat, dateStr); err != nil {
			return nil, fmt.Errorf("parse session date: %w", err)
		}
		if sess.DayStart, err = parseNullableDate(dayStartStr); err != nil {
			return nil, fmt.Errorf("parse session day start: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	for i := range sessions {
		if sessions[i].Entries, err = r.loadEntries(ctx, sessions[i].ID); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

// Get retrieves one session by id with its entries and sets.
func (r *sqliteSessionRepository) Get(ctx context.Context, id string) (Session, error) {
	sess, err := r.querySessionRow(ctx, `
		SELECT id, date, session_day_start, week_index, weekday, day_label
		FROM workout_sessions
		WHERE id = ?`, id)
	if err != nil {
		return Session{}, err
	}
	if sess.Entries, err = r.loadEntries(ctx, sess.ID); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// FindByDaySlot locates the session logged for the same split slot on the
// same calendar day. Sessions written before the day-start column existed
// fall back to the date column, whose timestamp format starts with the date.
func (r *sqliteSessionRepository) FindByDaySlot(
	ctx context.Context,
	weekIndex int,
	weekday Weekday,
	day time.Time,
) (Session, error) {
	sess, err := r.querySessionRow(ctx, `
		SELECT id, date, session_day_start, week_index, weekday, day_label
		FROM workout_sessions
		WHERE week_index = ? AND weekday = ?
		  AND COALESCE(session_day_start, SUBSTR(date, 1, 10)) = ?
		ORDER BY date DESC
		LIMIT 1`, weekIndex, weekday, formatDate(day))
	if err != nil {
		return Session{}, err
	}
	if sess.Entries, err = r.loadEntries(ctx, sess.ID); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (r *sqliteSessionRepository) querySessionRow(ctx context.Context, query string, args ...any) (Session, error) {
	var (
		sess        Session
		dateStr     string
		dayStartStr sql.NullString
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, query, args...).
		Scan(&sess.ID, &dateStr, &dayStartStr, &sess.WeekIndex, &sess.Weekday, &sess.DayLabel)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("query session: %w", err)
	}
	if sess.Date, err = time.Parse(timestampFormat, dateStr); err != nil {
		return Session{}, fmt.Errorf("parse session date: %w", err)
	}
	if sess.DayStart, err = parseNullableDate(dayStartStr); err != nil {
		return Session{}, fmt.Errorf("parse session day start: %w", err)
	}
	return sess, nil
}

func (r *sqliteSessionRepository) loadEntries(ctx context.Context, sessionID string) (_ []Entry, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, workout_template_id, workout_name, weight_type
		FROM session_entries
		WHERE session_id = ?
		ORDER BY position`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close entry rows: %w", closeErr))
		}
	}()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err = rows.Scan(&entry.ID, &entry.TemplateID, &entry.WorkoutName, &entry.WeightType); err != nil {
			return nil, fmt.Errorf("scan entry row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	for i := range entries {
		if entries[i].Sets, err = r.loadSets(ctx, entries[i].ID); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (r *sqliteSessionRepository) loadSets(ctx context.Context, entryID int64) (_ []LoggedSet, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, set_number, reps, set_type,
		       load_value, load_unit,
		       bar_weight_value, bar_weight_unit, computed_total_value, computed_total_unit
		FROM logged_sets
		WHERE entry_id = ?
		ORDER BY set_number`, entryID)
	if err != nil {
		return nil, fmt.Errorf("query sets: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close set rows: %w", closeErr))
		}
	}()

	type setRow struct {
		id  int64
		set LoggedSet
	}
	var setRows []setRow
	for rows.Next() {
		var (
			row        setRow
			loadValue  sql.NullFloat64
			loadUnit   sql.NullString
			barValue   sql.NullFloat64
			barUnit    sql.NullString
			totalValue sql.NullFloat64
			totalUnit  sql.NullString
		)
		if err = rows.Scan(&row.id, &row.set.SetNumber, &row.set.Reps, &row.set.Type,
			&loadValue, &loadUnit, &barValue, &barUnit, &totalValue, &totalUnit); err != nil {
			return nil, fmt.Errorf("scan set row: %w", err)
		}
		switch {
		case loadValue.Valid:
			row.set.Load = &DirectLoad{
				Value: loadValue.Float64,
				Unit:  WeightUnit(loadUnit.String),
			}
		case totalValue.Valid:
			row.set.Plates = &PlateLoad{
				PerSide:        nil,
				BarWeightValue: barValue.Float64,
				BarWeightUnit:  WeightUnit(barUnit.String),
				TotalValue:     totalValue.Float64,
				TotalUnit:      WeightUnit(totalUnit.String),
			}
		}
		setRows = append(setRows, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sets: %w", err)
	}

	sets := make([]LoggedSet, 0, len(setRows))
	for _, row := range setRows {
		if row.set.Plates != nil {
			if row.set.Plates.PerSide, err = r.loadPlateCounts(ctx, row.id); err != nil {
				return nil, err
			}
		}
		sets = append(sets, row.set)
	}
	return sets, nil
}

func (r *sqliteSessionRepository) loadPlateCounts(ctx context.Context, setID int64) (_ []PlateCount, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT plate_option_id, count_per_side
		FROM logged_set_plates
		WHERE set_id = ?`, setID)
	if err != nil {
		return nil, fmt.Errorf("query plate counts: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close plate count rows: %w", closeErr))
		}
	}()

	var counts []PlateCount
	for rows.Next() {
		var count PlateCount
		if err = rows.Scan(&count.PlateOptionID, &count.CountPerSide); err != nil {
			return nil, fmt.Errorf("scan plate count: %w", err)
		}
		counts = append(counts, count)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plate counts: %w", err)
	}
	return counts, nil
}

// plannedCounts carries a planned set-count sync into the commit.
type plannedCounts struct {
	warmUp  int
	working int
}

// entryCommit is the atomic unit of the save protocol: session creation or
// refresh, optional duplicate removal, the new entry with its sets, and any
// template write-backs. Everything applies in one transaction or not at all.
type entryCommit struct {
	session       Session
	sessionExists bool
	deleteEntryID int64
	entry         Entry
	templateID    string
	preferredUnit *WeightUnit
	plannedCounts *plannedCounts
}

// CommitEntry applies an entryCommit atomically.
func (r *sqliteSessionRepository) CommitEntry(ctx context.Context, commit entryCommit) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		sess := commit.session
		if commit.sessionExists {
			// Refresh the session metadata to this save's values.
			if _, err := tx.ExecContext(ctx, `
				UPDATE workout_sessions
				SET date = ?, session_day_start = ?, day_label = ?
				WHERE id = ?`,
				formatTimestamp(sess.Date), formatDate(sess.DayStart), sess.DayLabel, sess.ID); err != nil {
				return fmt.Errorf("refresh session: %w", err)
			}
		} else {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO workout_sessions (id, date, session_day_start, week_index, weekday, day_label)
				VALUES (?, ?, ?, ?, ?, ?)`,
				sess.ID, formatTimestamp(sess.Date), formatDate(sess.DayStart),
				sess.WeekIndex, sess.Weekday, sess.DayLabel); err != nil {
				return fmt.Errorf("insert session: %w", err)
			}
		}

		if commit.deleteEntryID != 0 {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM session_entries WHERE id = ?`, commit.deleteEntryID); err != nil {
				return fmt.Errorf("delete duplicate entry: %w", err)
			}
		}

		var position int
		if err := tx.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(position) + 1, 0)
			FROM session_entries
			WHERE session_id = ?`, sess.ID).Scan(&position); err != nil {
			return fmt.Errorf("next entry position: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO session_entries (session_id, position, workout_template_id, workout_name, weight_type)
			VALUES (?, ?, ?, ?, ?)`,
			sess.ID, position, commit.entry.TemplateID, commit.entry.WorkoutName, commit.entry.WeightType)
		if err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
		entryID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("entry id: %w", err)
		}

		for _, set := range commit.entry.Sets {
			if err = insertLoggedSet(ctx, tx, entryID, set); err != nil {
				return err
			}
		}

		// Template write-backs tolerate a deleted template: the snapshot on
		// the entry is the durable record.
		if commit.preferredUnit != nil {
			if _, err = tx.ExecContext(ctx, `
				UPDATE workout_templates SET preferred_unit = ? WHERE id = ?`,
				*commit.preferredUnit, commit.templateID); err != nil {
				return fmt.Errorf("write back preferred unit: %w", err)
			}
		}
		if commit.plannedCounts != nil {
			if _, err = tx.ExecContext(ctx, `
				UPDATE workout_templates
				SET planned_warmup_sets = ?, planned_working_sets = ?
				WHERE id = ?`,
				commit.plannedCounts.warmUp, commit.plannedCounts.working, commit.templateID); err != nil {
				return fmt.Errorf("write back planned counts: %w", err)
			}
		}
		return nil
	})
}

func insertLoggedSet(ctx context.Context, tx *sql.Tx, entryID int64, set LoggedSet) error {
	var (
		loadValue, barValue, totalValue sql.NullFloat64
		loadUnit, barUnit, totalUnit    sql.NullString
	)
	switch {
	case set.Load != nil:
		loadValue = sql.NullFloat64{Float64: set.Load.Value, Valid: true}
		loadUnit = sql.NullString{String: string(set.Load.Unit), Valid: true}
	case set.Plates != nil:
		barValue = sql.NullFloat64{Float64: set.Plates.BarWeightValue, Valid: true}
		barUnit = sql.NullString{String: string(set.Plates.BarWeightUnit), Valid: true}
		totalValue = sql.NullFloat64{Float64: set.Plates.TotalValue, Valid: true}
		totalUnit = sql.NullString{String: string(set.Plates.TotalUnit), Valid: true}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO logged_sets (
			entry_id, set_number, reps, set_type,
			load_value, load_unit,
			bar_weight_value, bar_weight_unit, computed_total_value, computed_total_unit
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entryID, set.SetNumber, set.Reps, set.Type,
		loadValue, loadUnit, barValue, barUnit, totalValue, totalUnit)
	if err != nil {
		return fmt.Errorf("insert set %d: %w", set.SetNumber, err)
	}

	if set.Plates == nil {
		return nil
	}
	setID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("set id: %w", err)
	}
	for _, count := range set.Plates.PerSide {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO logged_set_plates (set_id, plate_option_id, count_per_side)
			VALUES (?, ?, ?)`,
			setID, count.PlateOptionID, count.CountPerSide); err != nil {
			return fmt.Errorf("insert plate count: %w", err)
		}
	}
	return nil
}

// sqliteResetRepository implements destructiveRepository.
type sqliteResetRepository struct {
	baseRepository
}

func newSQLiteResetRepository(db *sqlite.Database, logger *slog.Logger) *sqliteResetRepository {
	return &sqliteResetRepository{baseRepository: newBaseRepository(db, logger)}
}

// DeleteEverything removes the configuration, the plan, and all sessions in
// one transaction. Child rows go with their parents through the cascades.
func (r *sqliteResetRepository) DeleteEverything(ctx context.Context) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM workout_sessions`,
			`DELETE FROM plan_weeks`,
			`DELETE FROM app_config`,
		} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("factory reset: %w", err)
			}
		}
		return nil
	})
}
