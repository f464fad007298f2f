package workout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahvonen/gymlog/internal/sqlite"
)

// sqlitePlanRepository implements planRepository.
type sqlitePlanRepository struct {
	baseRepository
}

func newSQLitePlanRepository(db *sqlite.Database, logger *slog.Logger) *sqlitePlanRepository {
	return &sqlitePlanRepository{baseRepository: newBaseRepository(db, logger)}
}

// Get loads the whole split plan aggregate. An empty plan (no weeks) means
// setup has not created one.
func (r *sqlitePlanRepository) Get(ctx context.Context) (_ Plan, err error) {
	var plan Plan

	weekRows, err := r.db.ReadOnly.QueryContext(ctx,
		`SELECT week_index FROM plan_weeks ORDER BY week_index`)
	if err != nil {
		return Plan{}, fmt.Errorf("query plan weeks: %w", err)
	}
	defer func() {
		if closeErr := weekRows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close week rows: %w", closeErr))
		}
	}()
	for weekRows.Next() {
		var week Week
		if err = weekRows.Scan(&week.WeekIndex); err != nil {
			return Plan{}, fmt.Errorf("scan plan week: %w", err)
		}
		plan.Weeks = append(plan.Weeks, week)
	}
	if err = weekRows.Err(); err != nil {
		return Plan{}, fmt.Errorf("iterate plan weeks: %w", err)
	}

	days, err := r.loadDays(ctx)
	if err != nil {
		return Plan{}, err
	}
	for i := range plan.Weeks {
		for _, day := range days {
			if day.WeekIndex == plan.Weeks[i].WeekIndex {
				plan.Weeks[i].Days = append(plan.Weeks[i].Days, day)
			}
		}
	}

	return plan, nil
}

// loadDays fetches every day plan with its templates, ordered by week,
// weekday, and template sort index.
func (r *sqlitePlanRepository) loadDays(ctx context.Context) (_ []Day, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, week_index, weekday, label
		FROM day_plans
		ORDER BY week_index, weekday`)
	if err != nil {
		return nil, fmt.Errorf("query day plans: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close day rows: %w", closeErr))
		}
	}()

	var days []Day
	for rows.Next() {
		var day Day
		if err = rows.Scan(&day.ID, &day.WeekIndex, &day.Weekday, &day.Label); err != nil {
			return nil, fmt.Errorf("scan day plan: %w", err)
		}
		days = append(days, day)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day plans: %w", err)
	}

	for i := range days {
		if days[i].Workouts, err = r.loadTemplates(ctx, days[i].ID); err != nil {
			return nil, err
		}
	}
	return days, nil
}

func (r *sqlitePlanRepository) loadTemplates(ctx context.Context, dayID int64) (_ []Template, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, name, weight_type, preferred_unit,
		       planned_warmup_sets, planned_working_sets, sort_index, is_archived
		FROM workout_templates
		WHERE day_plan_id = ?
		ORDER BY sort_index, LOWER(name)`, dayID)
	if err != nil {
		return nil, fmt.Errorf("query templates for day %d: %w", dayID, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close template rows: %w", closeErr))
		}
	}()

	var templates []Template
	for rows.Next() {
		var t Template
		if err = rows.Scan(&t.ID, &t.Name, &t.WeightType, &t.PreferredUnit,
			&t.PlannedWarmUpSets, &t.PlannedWorkingSets, &t.SortIndex, &t.Archived); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return templates, nil
}

// replaceWeeksTx rewrites the whole plan structure, used by setup. Existing
// weeks cascade-delete their days and templates.
func replaceWeeksTx(ctx context.Context, tx *sql.Tx, weeks []Week) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM plan_weeks`); err != nil {
		return fmt.Errorf("clear plan weeks: %w", err)
	}
	for _, week := range weeks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO plan_weeks (week_index) VALUES (?)`, week.WeekIndex); err != nil {
			return fmt.Errorf("insert plan week %d: %w", week.WeekIndex, err)
		}
		for _, day := range week.Days {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO day_plans (week_index, weekday, label) VALUES (?, ?, ?)`,
				week.WeekIndex, day.Weekday, day.Label)
			if err != nil {
				return fmt.Errorf("insert day plan: %w", err)
			}
			dayID, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("day plan id: %w", err)
			}
			for _, t := range day.Workouts {
				if err = insertTemplate(ctx, tx, dayID, t); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// resizeWeeksTx grows or shrinks the week set to match the new length.
// Removed weeks cascade-delete their days; added weeks start empty.
func resizeWeeksTx(ctx context.Context, tx *sql.Tx, weeks int) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM plan_weeks WHERE week_index > ?`, weeks); err != nil {
		return fmt.Errorf("drop extra weeks: %w", err)
	}
	for weekIndex := 1; weekIndex <= weeks; weekIndex++ {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO plan_weeks (week_index) VALUES (?)
			ON CONFLICT (week_index) DO NOTHING`, weekIndex); err != nil {
			return fmt.Errorf("ensure week %d: %w", weekIndex, err)
		}
	}
	return nil
}

// Day loads a single day plan with its templates.
func (r *sqlitePlanRepository) Day(ctx context.Context, dayID int64) (Day, error) {
	var day Day
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, week_index, weekday, label
		FROM day_plans
		WHERE id = ?`, dayID).
		Scan(&day.ID, &day.WeekIndex, &day.Weekday, &day.Label)
	if errors.Is(err, sql.ErrNoRows) {
		return Day{}, ErrNotFound
	}
	if err != nil {
		return Day{}, fmt.Errorf("query day plan %d: %w", dayID, err)
	}
	if day.Workouts, err = r.loadTemplates(ctx, dayID); err != nil {
		return Day{}, err
	}
	return day, nil
}

func insertTemplate(ctx context.Context, tx *sql.Tx, dayID int64, t Template) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO workout_templates (
			id, day_plan_id, name, weight_type, preferred_unit,
			planned_warmup_sets, planned_working_sets, sort_index, is_archived
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, dayID, t.Name, t.WeightType, t.PreferredUnit,
		t.PlannedWarmUpSets, t.PlannedWorkingSets, t.SortIndex, t.Archived)
	if err != nil {
		return fmt.Errorf("insert template %s: %w", t.Name, err)
	}
	return nil
}

// CreateTemplate adds a workout template to a day plan.
func (r *sqlitePlanRepository) CreateTemplate(ctx context.Context, dayID int64, t Template) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		return insertTemplate(ctx, tx, dayID, t)
	})
}

// UpdateTemplate applies updateFn to a template and writes it back when the
// function reports a change.
func (r *sqlitePlanRepository) UpdateTemplate(
	ctx context.Context,
	id string,
	updateFn func(*Template) (bool, error),
) error {
	t, err := r.template(ctx, id)
	if err != nil {
		return err
	}

	updated, err := updateFn(&t)
	if err != nil {
		return fmt.Errorf("update function: %w", err)
	}
	if !updated {
		return nil
	}

	_, err = r.db.ReadWrite.ExecContext(ctx, `
		UPDATE workout_templates
		SET name = ?, weight_type = ?, preferred_unit = ?,
		    planned_warmup_sets = ?, planned_working_sets = ?,
		    sort_index = ?, is_archived = ?
		WHERE id = ?`,
		t.Name, t.WeightType, t.PreferredUnit,
		t.PlannedWarmUpSets, t.PlannedWorkingSets, t.SortIndex, t.Archived, id)
	if err != nil {
		return fmt.Errorf("save template %s: %w", id, err)
	}
	return nil
}

func (r *sqlitePlanRepository) template(ctx context.Context, id string) (Template, error) {
	var t Template
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, name, weight_type, preferred_unit,
		       planned_warmup_sets, planned_working_sets, sort_index, is_archived
		FROM workout_templates
		WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.WeightType, &t.PreferredUnit,
			&t.PlannedWarmUpSets, &t.PlannedWorkingSets, &t.SortIndex, &t.Archived)
	if errors.Is(err, sql.ErrNoRows) {
		return Template{}, ErrNotFound
	}
	if err != nil {
		return Template{}, fmt.Errorf("query template %s: %w", id, err)
	}
	return t, nil
}

// DeleteTemplate removes a template row permanently.
func (r *sqlitePlanRepository) DeleteTemplate(ctx context.Context, id string) error {
	result, err := r.db.ReadWrite.ExecContext(ctx,
		`DELETE FROM workout_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete template %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// RenumberTemplates assigns dense sort indexes 0..n-1 following the order of
// orderedIDs.
func (r *sqlitePlanRepository) RenumberTemplates(ctx context.Context, dayID int64, orderedIDs []string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		for i, id := range orderedIDs {
			if _, err := tx.ExecContext(ctx, `
				UPDATE workout_templates SET sort_index = ?
				WHERE id = ? AND day_plan_id = ?`, i, id, dayID); err != nil {
				return fmt.Errorf("renumber template %s: %w", id, err)
			}
		}
		return nil
	})
}

// ActiveTemplates returns every non-archived template app-wide, ordered by
// plan position.
func (r *sqlitePlanRepository) ActiveTemplates(ctx context.Context) (_ []Template, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT t.id, t.name, t.weight_type, t.preferred_unit,
		       t.planned_warmup_sets, t.planned_working_sets, t.sort_index, t.is_archived
		FROM workout_templates t
		JOIN day_plans d ON d.id = t.day_plan_id
		WHERE t.is_archived = 0
		ORDER BY d.week_index, d.weekday, t.sort_index, LOWER(t.name)`)
	if err != nil {
		return nil, fmt.Errorf("query active templates: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close template rows: %w", closeErr))
		}
	}()

	var templates []Template
	for rows.Next() {
		var t Template
		if err = rows.Scan(&t.ID, &t.Name, &t.WeightType, &t.PreferredUnit,
			&t.PlannedWarmUpSets, &t.PlannedWorkingSets, &t.SortIndex, &t.Archived); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return templates, nil
}
