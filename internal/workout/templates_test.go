package workout_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ahvonen/gymlog/internal/workout"
)

// setupDays completes setup and returns the configured day ids.
func setupDays(ctx context.Context, t *testing.T, svc *workout.Service) (monday, wednesday int64) {
	t.Helper()
	completeSetup(ctx, t, svc)
	plan, err := svc.Plan(ctx)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	days := plan.Weeks[0].Days
	if len(days) != 2 {
		t.Fatalf("expected two configured days, got %d", len(days))
	}
	return days[0].ID, days[1].ID
}

func addWorkout(ctx context.Context, t *testing.T, svc *workout.Service, dayID int64, in workout.WorkoutInput) workout.Template {
	t.Helper()
	tmpl, err := svc.AddWorkout(ctx, dayID, in)
	if err != nil {
		t.Fatalf("AddWorkout(%q): %v", in.Name, err)
	}
	return tmpl
}

func activeWorkouts(ctx context.Context, t *testing.T, svc *workout.Service, dayID int64) []workout.Template {
	t.Helper()
	day, err := svc.Day(ctx, dayID)
	if err != nil {
		t.Fatalf("Day: %v", err)
	}
	return day.ActiveWorkouts()
}

func TestAddWorkout(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	svc := newTestService(t)
	monday, _ := setupDays(ctx, t, svc)

	bench := addWorkout(ctx, t, svc, monday, workout.WorkoutInput{
		Name:          "Bench Press",
		WeightType:    workout.WeightTypeBarbell,
		PreferredUnit: workout.UnitLb,
	})
	if bench.SortIndex != 0 {
		t.Errorf("first workout sort index: got %d, want 0", bench.SortIndex)
	}
	if bench.PlannedWarmUpSets != 1 || bench.PlannedWorkingSets != 3 {
		t.Errorf("planned count defaults: got (%d, %d), want (1, 3)",
			bench.PlannedWarmUpSets, bench.PlannedWorkingSets)
	}

	row := addWorkout(ctx, t, svc, monday, workout.WorkoutInput{
		Name:               "Row",
		WeightType:         workout.WeightTypeDumbbell,
		PreferredUnit:      workout.UnitLb,
		PlannedWarmUpSets:  2,
		PlannedWorkingSets: 4,
	})
	if row.SortIndex != 1 {
		t.Errorf("second workout sort index: got %d, want 1", row.SortIndex)
	}
	if row.PlannedWarmUpSets != 2 || row.PlannedWorkingSets != 4 {
		t.Errorf("planned counts: got (%d, %d), want (2, 4)",
			row.PlannedWarmUpSets, row.PlannedWorkingSets)
	}
}

func TestAddWorkout_validation(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	svc := newTestService(t)
	monday, _ := setupDays(ctx, t, svc)

	addWorkout(ctx, t, svc, monday, workout.WorkoutInput{
		Name:       "Bench Press",
		WeightType: workout.WeightTypeBarbell,
	})

	tests := map[string]workout.WorkoutInput{
		"blank name": {
			Name:       "   ",
			WeightType: workout.WeightTypeBarbell,
		},
		"duplicate name and type": {
			Name:       "Bench Press",
			WeightType: workout.WeightTypeBarbell,
		},
		"duplicate differs only by case and spacing": {
			Name:       "  bench   press ",
			WeightType: workout.WeightTypeBarbell,
		},
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.AddWorkout(ctx, monday, in); !errors.Is(err, workout.ErrValidation) {
				t.Errorf("got %v, want ErrValidation", err)
			}
		})
	}

	// The same name with different equipment is a different workout.
	if _, err := svc.AddWorkout(ctx, monday, workout.WorkoutInput{
		Name:       "Bench Press",
		WeightType: workout.WeightTypeDumbbell,
	}); err != nil {
		t.Errorf("same name different type should be allowed: %v", err)
	}
}

func TestRenameWorkout(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	svc := newTestService(t)
	monday, _ := setupDays(ctx, t, svc)

	tmpl := addWorkout(ctx, t, svc, monday, workout.WorkoutInput{
		Name:       "Bench",
		WeightType: workout.WeightTypeBarbell,
	})

	if err := svc.RenameWorkout(ctx, tmpl.ID, " "); !errors.Is(err, workout.ErrValidation) {
		t.Errorf("blank rename: got %v, want ErrValidation", err)
	}
	if err := svc.RenameWorkout(ctx, tmpl.ID, "Bench Press"); err != nil {
		t.Fatalf("RenameWorkout: %v", err)
	}

	active := activeWorkouts(ctx, t, svc, monday)
	if len(active) != 1 || active[0].Name != "Bench Press" {
		t.Errorf("after rename: got %+v", active)
	}
}

func TestEditWorkout(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	svc := newTestService(t)
	monday, _ := setupDays(ctx, t, svc)

	tmpl := addWorkout(ctx, t, svc, monday, workout.WorkoutInput{
		Name:          "Press",
		WeightType:    workout.WeightTypeDumbbell,
		PreferredUnit: workout.UnitLb,
	})
	addWorkout(ctx, t, svc, monday, workout.WorkoutInput{
		Name:       "Curl",
		WeightType: workout.WeightTypeDumbbell,
	})

	// Editing a workout without changing its name must not trip the
	// duplicate check against itself.
	err := svc.EditWorkout(ctx, monday, tmpl.ID, workout.WorkoutInput{
		Name:               "Press",
		WeightType:         workout.WeightTypeDumbbell,
		PreferredUnit:      workout.UnitKg,
		PlannedWarmUpSets:  2,
		PlannedWorkingSets: 5,
	})
	if err != nil {
		t.Fatalf("EditWorkout: %v", err)
	}

	err = svc.EditWorkout(ctx, monday, tmpl.ID, workout.WorkoutInput{
		Name:       "Curl",
		WeightType: workout.WeightTypeDumbbell,
	})
	if !errors.Is(err, workout.ErrValidation) {
		t.Errorf("rename onto existing workout: got %v, want ErrValidation", err)
	}

	active := activeWorkouts(ctx, t, svc, monday)
	for _, got := range active {
		if got.ID != tmpl.ID {
			continue
		}
		if got.PreferredUnit != workout.UnitKg || got.PlannedWarmUpSets != 2 || got.PlannedWorkingSets != 5 {
			t.Errorf("edited template: got %+v", got)
		}
	}
}

func TestReorderWorkouts(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	svc := newTestService(t)
	monday, _ := setupDays(ctx, t, svc)

	a := addWorkout(ctx, t, svc, monday, workout.WorkoutInput{Name: "A", WeightType: workout.WeightTypeMachine})
	b := addWorkout(ctx, t, svc, monday, workout.WorkoutInput{Name: "B", WeightType: workout.WeightTypeMachine})
	c := addWorkout(ctx, t, svc, monday, workout.WorkoutInput{Name: "C", WeightType: workout.WeightTypeMachine})

	reversed := []string{c.ID, b.ID, a.ID}
	if err := svc.ReorderWorkouts(ctx, monday, reversed); err != nil {
		t.Fatalf("ReorderWorkouts: %v", err)
	}

	wantNames := []string{"C", "B", "A"}
	check := func() {
		t.Helper()
		active := activeWorkouts(ctx, t, svc, monday)
		var names []string
		for i, got := range active {
			if got.SortIndex != i {
				t.Errorf("sort index at %d: got %d", i, got.SortIndex)
			}
			names = append(names, got.Name)
		}
		if diff := cmp.Diff(wantNames, names); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}
	}
	check()

	// Renumbering again with the same order is a no-op.
	if err := svc.ReorderWorkouts(ctx, monday, reversed); err != nil {
		t.Fatalf("ReorderWorkouts twice: %v", err)
	}
	check()
}

func TestDeleteWorkout_renumbers(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	svc := newTestService(t)
	monday, _ := setupDays(ctx, t, svc)

	addWorkout(ctx, t, svc, monday, workout.WorkoutInput{Name: "A", WeightType: workout.WeightTypeMachine})
	b := addWorkout(ctx, t, svc, monday, workout.WorkoutInput{Name: "B", WeightType: workout.WeightTypeMachine})
	addWorkout(ctx, t, svc, monday, workout.WorkoutInput{Name: "C", WeightType: workout.WeightTypeMachine})

	if err := svc.DeleteWorkout(ctx, monday, b.ID); err != nil {
		t.Fatalf("DeleteWorkout: %v", err)
	}

	active := activeWorkouts(ctx, t, svc, monday)
	if len(active) != 2 {
		t.Fatalf("active after delete: got %d, want 2", len(active))
	}
	for i, got := range active {
		if got.SortIndex != i {
			t.Errorf("sort index gap not closed at %d: got %d", i, got.SortIndex)
		}
	}
}

func TestArchiveWorkout(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	svc := newTestService(t)
	monday, _ := setupDays(ctx, t, svc)

	a := addWorkout(ctx, t, svc, monday, workout.WorkoutInput{Name: "A", WeightType: workout.WeightTypeMachine})
	addWorkout(ctx, t, svc, monday, workout.WorkoutInput{Name: "B", WeightType: workout.WeightTypeMachine})

	if err := svc.ArchiveWorkout(ctx, monday, a.ID); err != nil {
		t.Fatalf("ArchiveWorkout: %v", err)
	}

	active := activeWorkouts(ctx, t, svc, monday)
	if len(active) != 1 || active[0].Name != "B" {
		t.Fatalf("active after archive: got %+v", active)
	}
	if active[0].SortIndex != 0 {
		t.Errorf("remaining workout should renumber to 0, got %d", active[0].SortIndex)
	}
}

func TestSavedWorkoutSuggestions(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	svc := newTestService(t)
	monday, wednesday := setupDays(ctx, t, svc)

	addWorkout(ctx, t, svc, monday, workout.WorkoutInput{
		Name:          "Bench Press",
		WeightType:    workout.WeightTypeBarbell,
		PreferredUnit: workout.UnitLb,
	})
	// Same workout reused on another day under a differently spaced name.
	addWorkout(ctx, t, svc, wednesday, workout.WorkoutInput{
		Name:          " bench  press",
		WeightType:    workout.WeightTypeBarbell,
		PreferredUnit: workout.UnitLb,
	})
	addWorkout(ctx, t, svc, wednesday, workout.WorkoutInput{
		Name:          "Curl",
		WeightType:    workout.WeightTypeDumbbell,
		PreferredUnit: workout.UnitLb,
	})

	suggestions, err := svc.SavedWorkoutSuggestions(ctx)
	if err != nil {
		t.Fatalf("SavedWorkoutSuggestions: %v", err)
	}
	if len(suggestions) != 2 {
		t.Fatalf("suggestions: got %d, want 2 after dedupe", len(suggestions))
	}
	if suggestions[0].Name != "Bench Press" {
		t.Errorf("first occurrence should win, got %q", suggestions[0].Name)
	}
}
