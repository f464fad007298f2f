package workout

import (
	"testing"
	"time"

	"github.com/ahvonen/gymlog/internal/errors"
	"github.com/ahvonen/gymlog/internal/sqlite"
	"github.com/ahvonen/gymlog/internal/testhelpers"
)

// Sessions written before the session_day_start column existed carry NULL
// there; duplicate detection must fall back to the date column for them.
func TestFindByDaySlot_legacyRowsFallBackToDate(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Error(err)
		}
	})

	loggedAt := time.Date(2024, 1, 8, 18, 30, 0, 0, time.UTC)
	_, err = db.ReadWrite.ExecContext(ctx, `
		INSERT INTO workout_sessions (id, date, session_day_start, week_index, weekday, day_label)
		VALUES (?, ?, NULL, 1, ?, 'Push')`,
		"legacy-session", formatTimestamp(loggedAt), Monday)
	if err != nil {
		t.Fatal(err)
	}
	_, err = db.ReadWrite.ExecContext(ctx, `
		INSERT INTO session_entries (session_id, position, workout_template_id, workout_name, weight_type)
		VALUES ('legacy-session', 0, 'gone-template', 'Curl', 'dumbbell')`)
	if err != nil {
		t.Fatal(err)
	}

	repo := newSQLiteSessionRepository(db, logger)

	sess, err := repo.FindByDaySlot(ctx, 1, Monday, loggedAt)
	if err != nil {
		t.Fatalf("find by day slot: %v", err)
	}
	if sess.ID != "legacy-session" {
		t.Errorf("got session %q, want legacy-session", sess.ID)
	}
	if !sess.DayStart.IsZero() {
		t.Errorf("day start = %v, want zero", sess.DayStart)
	}
	if got, want := sess.CalendarDay(), time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("calendar day = %v, want %v", got, want)
	}

	if _, err = repo.FindByDaySlot(ctx, 1, Monday, loggedAt.AddDate(0, 0, 7)); !errors.Is(err, ErrNotFound) {
		t.Errorf("next week lookup error = %v, want ErrNotFound", err)
	}

	// Saving the same workout on the same slot must surface the legacy
	// session's entry as a duplicate.
	cfg := Config{
		SplitLengthWeeks: 1,
		CreatedAt:        time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		BarWeightValue:   45,
		BarWeightUnit:    UnitLb,
		PlateCatalog:     DefaultPlateCatalog(UnitLb),
	}
	if err = newSQLiteConfigRepository(db, logger).Set(ctx, cfg); err != nil {
		t.Fatal(err)
	}

	svc := NewService(db, logger)
	err = svc.SaveEntry(ctx, SaveRequest{
		Template:  Template{ID: "recreated", Name: "Curl", WeightType: WeightTypeDumbbell, PreferredUnit: UnitLb},
		WeekIndex: 1,
		Weekday:   Monday,
		DayLabel:  "Push",
		Unit:      UnitLb,
		Drafts:    []SetDraft{{Type: SetTypeWorking, Reps: 8, Load: "20"}},
		Now:       loggedAt.Add(2 * time.Hour),
	})
	var dup *DuplicateEntriesError
	if !errors.As(err, &dup) {
		t.Fatalf("save error = %v, want duplicate entries error", err)
	}
	if len(dup.Duplicates) != 1 || dup.Duplicates[0].WorkoutName != "Curl" {
		t.Errorf("duplicates = %+v, want the legacy Curl entry", dup.Duplicates)
	}
}
