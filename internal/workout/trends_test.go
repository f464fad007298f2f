package workout_test

import (
	"testing"
	"time"

	"github.com/ahvonen/gymlog/internal/workout"
)

func TestTrends_groupsByNormalizedIdentity(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	svc := newTestService(t)
	monday, wednesday := setupDays(ctx, t, svc)

	bench := addWorkout(ctx, t, svc, monday, workout.WorkoutInput{
		Name:          "Bench Press",
		WeightType:    workout.WeightTypeBarbell,
		PreferredUnit: workout.UnitLb,
	})
	// Same workout on another day with messy spacing and casing.
	benchAgain := addWorkout(ctx, t, svc, wednesday, workout.WorkoutInput{
		Name:          " bench press ",
		WeightType:    workout.WeightTypeBarbell,
		PreferredUnit: workout.UnitLb,
	})

	mondaySave := saveRequest(bench, []workout.SetDraft{{Type: workout.SetTypeWorking, Reps: 5, Plates: []workout.PlateCount{
		{PlateOptionID: plateID(ctx, t, svc, 45, workout.UnitLb), CountPerSide: 1},
	}}})
	if err := svc.SaveEntry(ctx, mondaySave); err != nil {
		t.Fatalf("SaveEntry monday: %v", err)
	}

	wednesdaySave := saveRequest(benchAgain, []workout.SetDraft{{Type: workout.SetTypeWorking, Reps: 3, Plates: []workout.PlateCount{
		{PlateOptionID: plateID(ctx, t, svc, 45, workout.UnitLb), CountPerSide: 2},
	}}})
	wednesdaySave.Weekday = workout.Wednesday
	wednesdaySave.DayLabel = "Wednesday"
	wednesdaySave.Now = wednesdaySave.Now.AddDate(0, 0, 2)
	if err := svc.SaveEntry(ctx, wednesdaySave); err != nil {
		t.Fatalf("SaveEntry wednesday: %v", err)
	}

	series, err := svc.Trends(ctx)
	if err != nil {
		t.Fatalf("Trends: %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("series: got %d, want the two templates merged into 1", len(series))
	}

	points := series[0].Points
	if len(points) != 2 {
		t.Fatalf("points: got %d, want 2", len(points))
	}
	if points[0].Index != 0 || points[1].Index != 1 {
		t.Errorf("point indexes: got %d, %d", points[0].Index, points[1].Index)
	}
	if points[0].PeakWeight == nil || *points[0].PeakWeight != 135 {
		t.Errorf("first peak: got %v, want 135", points[0].PeakWeight)
	}
	if points[1].PeakWeight == nil || *points[1].PeakWeight != 225 {
		t.Errorf("second peak: got %v, want 225", points[1].PeakWeight)
	}
	if points[0].PeakReps != 5 || points[1].PeakReps != 3 {
		t.Errorf("peak reps: got %d, %d", points[0].PeakReps, points[1].PeakReps)
	}
}

func TestTrends_unitSplitsNonPlateTypes(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	svc := newTestService(t)
	monday, wednesday := setupDays(ctx, t, svc)

	addWorkout(ctx, t, svc, monday, workout.WorkoutInput{
		Name:          "Curl",
		WeightType:    workout.WeightTypeDumbbell,
		PreferredUnit: workout.UnitLb,
	})
	addWorkout(ctx, t, svc, wednesday, workout.WorkoutInput{
		Name:          "Curl",
		WeightType:    workout.WeightTypeDumbbell,
		PreferredUnit: workout.UnitKg,
	})

	series, err := svc.Trends(ctx)
	if err != nil {
		t.Fatalf("Trends: %v", err)
	}
	if len(series) != 2 {
		t.Errorf("series: got %d, want 2 when only the unit differs", len(series))
	}
}

func TestTrends_orderingAndEmptySeries(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	svc := newTestService(t)
	monday, _ := setupDays(ctx, t, svc)

	addWorkout(ctx, t, svc, monday, workout.WorkoutInput{
		Name:       "squat",
		WeightType: workout.WeightTypeBarbell,
	})
	addWorkout(ctx, t, svc, monday, workout.WorkoutInput{
		Name:       "Bench Press",
		WeightType: workout.WeightTypeBarbell,
	})
	// Same name as the barbell squat but different equipment: a separate
	// series, ordered after it by the equipment tie-break.
	addWorkout(ctx, t, svc, monday, workout.WorkoutInput{
		Name:          "Squat",
		WeightType:    workout.WeightTypeMachine,
		PreferredUnit: workout.UnitLb,
	})

	series, err := svc.Trends(ctx)
	if err != nil {
		t.Fatalf("Trends: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("series: got %d, want 3", len(series))
	}
	if series[0].Name != "Bench Press" {
		t.Errorf("first series: got %q, want Bench Press", series[0].Name)
	}
	if series[1].WeightType != workout.WeightTypeMachine || series[2].WeightType != workout.WeightTypeBarbell {
		t.Errorf("tie-break order: got %s then %s", series[1].WeightType, series[2].WeightType)
	}
	for _, got := range series {
		if len(got.Points) != 0 {
			t.Errorf("unlogged series %q should be empty, got %d points", got.Name, len(got.Points))
		}
	}
}

func TestTrends_archivedExcluded(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	svc := newTestService(t)
	monday, _ := setupDays(ctx, t, svc)

	squat := addWorkout(ctx, t, svc, monday, workout.WorkoutInput{
		Name:       "Squat",
		WeightType: workout.WeightTypeBarbell,
	})
	if err := svc.ArchiveWorkout(ctx, monday, squat.ID); err != nil {
		t.Fatalf("ArchiveWorkout: %v", err)
	}

	series, err := svc.Trends(ctx)
	if err != nil {
		t.Fatalf("Trends: %v", err)
	}
	if len(series) != 0 {
		t.Errorf("archived workout should have no series, got %d", len(series))
	}
}

func TestTrends_pointDatesAscend(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	svc := newTestService(t)
	monday, _ := setupDays(ctx, t, svc)

	curl := addWorkout(ctx, t, svc, monday, workout.WorkoutInput{
		Name:          "Curl",
		WeightType:    workout.WeightTypeDumbbell,
		PreferredUnit: workout.UnitLb,
	})

	base := time.Date(2024, time.January, 8, 18, 0, 0, 0, time.UTC)
	for week := range 3 {
		req := saveRequest(curl, []workout.SetDraft{
			{Type: workout.SetTypeWorking, Reps: 8, Load: "25"},
		})
		req.Now = base.AddDate(0, 0, week*7)
		if err := svc.SaveEntry(ctx, req); err != nil {
			t.Fatalf("SaveEntry week %d: %v", week, err)
		}
	}

	series, err := svc.Trends(ctx)
	if err != nil {
		t.Fatalf("Trends: %v", err)
	}
	if len(series) != 1 || len(series[0].Points) != 3 {
		t.Fatalf("got %d series, want 1 with 3 points", len(series))
	}
	points := series[0].Points
	for i := 1; i < len(points); i++ {
		if !points[i].Date.After(points[i-1].Date) {
			t.Errorf("point %d date %v not after %v", i, points[i].Date, points[i-1].Date)
		}
	}
}
