package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ahvonen/gymlog/internal/errors"
	"github.com/ahvonen/gymlog/internal/workout"
)

func (app *application) today(ctx context.Context) error {
	needed, err := app.svc.NeedsSetup(ctx)
	if err != nil {
		return errors.Wrap(err, "check setup")
	}
	if needed {
		fmt.Fprintln(app.out, "No split configured yet.")
		return nil
	}

	day, ok, err := app.svc.CurrentDay(ctx, time.Now())
	if err != nil {
		return errors.Wrap(err, "resolve current day")
	}
	if !ok {
		fmt.Fprintln(app.out, "The plan has no configured training days.")
		return nil
	}

	fmt.Fprintf(app.out, "Week %d %s: %s\n", day.WeekIndex, day.Weekday, day.Label)
	for _, tmpl := range day.ActiveWorkouts() {
		fmt.Fprintf(app.out, "  %s (%s, %d+%d sets)\n",
			tmpl.Name, tmpl.WeightType, tmpl.PlannedWarmUpSets, tmpl.PlannedWorkingSets)
	}
	return nil
}

func (app *application) plan(ctx context.Context) error {
	plan, err := app.svc.Plan(ctx)
	if err != nil {
		return errors.Wrap(err, "get plan")
	}
	for _, week := range plan.Weeks {
		fmt.Fprintf(app.out, "Week %d\n", week.WeekIndex)
		for _, day := range week.Days {
			fmt.Fprintf(app.out, "  %s: %s\n", day.Weekday, day.Label)
			for _, tmpl := range day.ActiveWorkouts() {
				fmt.Fprintf(app.out, "    %s (%s)\n", tmpl.Name, tmpl.WeightType)
			}
		}
	}
	return nil
}

func (app *application) history(ctx context.Context) error {
	sessions, err := app.svc.Sessions(ctx)
	if err != nil {
		return errors.Wrap(err, "list sessions")
	}
	if len(sessions) == 0 {
		fmt.Fprintln(app.out, "No sessions logged yet.")
		return nil
	}
	cfg, err := app.svc.Config(ctx)
	if err != nil && !errors.Is(err, workout.ErrNotFound) {
		return errors.Wrap(err, "get config")
	}
	for _, sess := range sessions {
		fmt.Fprintf(app.out, "%s  week %d %s  %s\n",
			sess.CalendarDay().Format(time.DateOnly), sess.WeekIndex, sess.Weekday, sess.DayLabel)
		for _, entry := range sess.Entries {
			fmt.Fprintf(app.out, "  %s\n", entry.WorkoutName)
			for _, set := range entry.Sets {
				value, unit, hasWeight := set.Weight()
				switch {
				case hasWeight && set.Plates != nil:
					fmt.Fprintf(app.out, "    %d reps @ %s %s%s\n",
						set.Reps, workout.FormatWeight(value), unit, plateSummary(cfg, set.Plates.PerSide))
				case hasWeight:
					fmt.Fprintf(app.out, "    %d reps @ %s %s\n", set.Reps, workout.FormatWeight(value), unit)
				default:
					fmt.Fprintf(app.out, "    %d reps\n", set.Reps)
				}
			}
		}
	}
	return nil
}

// plateSummary renders the per-side plate breakdown of a set, resolving each
// count against the configured catalog. Plates whose catalog entry was since
// removed are skipped; an empty breakdown renders as nothing.
func plateSummary(cfg workout.Config, counts []workout.PlateCount) string {
	var parts []string
	for _, count := range counts {
		option, ok := cfg.PlateOptionByID(count.PlateOptionID)
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%sx%d", workout.FormatWeight(option.Value), count.CountPerSide))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, "+") + " per side)"
}

func (app *application) trends(ctx context.Context) error {
	series, err := app.svc.Trends(ctx)
	if err != nil {
		return errors.Wrap(err, "build trends")
	}
	if len(series) == 0 {
		fmt.Fprintln(app.out, "No workouts configured yet.")
		return nil
	}
	for _, s := range series {
		fmt.Fprintf(app.out, "%s (%s)\n", s.Name, s.WeightType)
		if len(s.Points) == 0 {
			fmt.Fprintln(app.out, "  no sessions logged")
			continue
		}
		for _, point := range s.Points {
			if point.PeakWeight != nil {
				fmt.Fprintf(app.out, "  %s  peak %s %s x %d\n", point.Date.Format(time.DateOnly),
					workout.FormatWeight(*point.PeakWeight), point.Unit, point.PeakReps)
			} else {
				fmt.Fprintf(app.out, "  %s  peak %d reps\n", point.Date.Format(time.DateOnly), point.PeakReps)
			}
		}
	}
	return nil
}
