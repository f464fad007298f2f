package workout_test

import (
	"testing"
	"time"

	"github.com/ahvonen/gymlog/internal/workout"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSplitPosition(t *testing.T) {
	t.Parallel()

	anchor := date(2024, time.January, 7) // a Sunday

	tests := map[string]struct {
		splitWeeks  int
		target      time.Time
		wantWeek    int
		wantWeekday workout.Weekday
	}{
		"anchor day itself": {
			splitWeeks: 1, target: anchor,
			wantWeek: 1, wantWeekday: workout.Sunday,
		},
		"next day within week one": {
			splitWeeks: 1, target: date(2024, time.January, 8),
			wantWeek: 1, wantWeekday: workout.Monday,
		},
		"one week later wraps in one week split": {
			splitWeeks: 1, target: date(2024, time.January, 14),
			wantWeek: 1, wantWeekday: workout.Sunday,
		},
		"second week of two week split": {
			splitWeeks: 2, target: date(2024, time.January, 14),
			wantWeek: 2, wantWeekday: workout.Sunday,
		},
		"two week split wraps after both weeks": {
			splitWeeks: 2, target: date(2024, time.January, 21),
			wantWeek: 1, wantWeekday: workout.Sunday,
		},
		"before anchor clamps to week one": {
			splitWeeks: 4, target: date(2023, time.December, 1),
			wantWeek: 1, wantWeekday: workout.Friday,
		},
		"degenerate split length clamps to one": {
			splitWeeks: 0, target: date(2024, time.February, 5),
			wantWeek: 1, wantWeekday: workout.Monday,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			week, weekday := workout.SplitPosition(anchor, tt.splitWeeks, tt.target)
			if week != tt.wantWeek || weekday != tt.wantWeekday {
				t.Errorf("SplitPosition: got (%d, %s), want (%d, %s)",
					week, weekday, tt.wantWeek, tt.wantWeekday)
			}
		})
	}
}

func TestSplitPosition_periodic(t *testing.T) {
	t.Parallel()

	anchor := date(2024, time.January, 7)
	for splitWeeks := 1; splitWeeks <= 4; splitWeeks++ {
		for offset := range 60 {
			target := anchor.AddDate(0, 0, offset)
			week, _ := workout.SplitPosition(anchor, splitWeeks, target)
			if week < 1 || week > splitWeeks {
				t.Fatalf("week index %d out of range for split length %d", week, splitWeeks)
			}
			laterWeek, _ := workout.SplitPosition(anchor, splitWeeks, target.AddDate(0, 0, splitWeeks*7))
			if laterWeek != week {
				t.Fatalf("not periodic: offset %d gives week %d, plus %d weeks gives %d",
					offset, week, splitWeeks, laterWeek)
			}
		}
	}
}

func TestAutoSelectDay(t *testing.T) {
	t.Parallel()

	pushDay := workout.Day{ID: 1, WeekIndex: 1, Weekday: workout.Monday, Label: "Push"}
	onePlan := workout.Plan{
		Weeks: []workout.Week{{WeekIndex: 1, Days: []workout.Day{pushDay}}},
	}
	cfg := workout.Config{
		SplitLengthWeeks: 1,
		CreatedAt:        date(2024, time.January, 7),
	}

	t.Run("naive mapping hits configured day", func(t *testing.T) {
		t.Parallel()
		day, ok := workout.AutoSelectDay(onePlan, cfg, date(2024, time.January, 8))
		if !ok || day.Label != "Push" {
			t.Errorf("got (%+v, %t), want Push day", day, ok)
		}
	})

	t.Run("forward scan finds next configured day", func(t *testing.T) {
		t.Parallel()
		day, ok := workout.AutoSelectDay(onePlan, cfg, date(2024, time.January, 7))
		if !ok || day.Weekday != workout.Monday {
			t.Errorf("got (%+v, %t), want Monday via forward scan", day, ok)
		}
	})

	t.Run("falls back to first configured day in plan", func(t *testing.T) {
		t.Parallel()
		// Only a stale week beyond the split length has days, so neither the
		// naive mapping nor the scan can land on it.
		stalePlan := workout.Plan{
			Weeks: []workout.Week{
				{WeekIndex: 1},
				{WeekIndex: 2, Days: []workout.Day{
					{ID: 7, WeekIndex: 2, Weekday: workout.Friday, Label: "Legs"},
				}},
			},
		}
		day, ok := workout.AutoSelectDay(stalePlan, cfg, date(2024, time.January, 8))
		if !ok || day.Label != "Legs" {
			t.Errorf("got (%+v, %t), want Legs fallback", day, ok)
		}
	})

	t.Run("empty plan selects nothing", func(t *testing.T) {
		t.Parallel()
		_, ok := workout.AutoSelectDay(workout.Plan{}, cfg, date(2024, time.January, 8))
		if ok {
			t.Error("got a selection from an empty plan")
		}
	})
}
