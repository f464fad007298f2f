package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/ahvonen/gymlog/internal/errors"
	"github.com/ahvonen/gymlog/internal/workout"
)

// setup runs the first-run configuration: split length, training days, and
// barbell weight. Days are given per week, weeks separated by ";", each day
// as "weekday" or "weekday:label", e.g. "mon:Push,thu:Pull;tue,sat".
func (app *application) setup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("setup", flag.ContinueOnError)
	fs.SetOutput(app.out)
	var (
		weeksFlag = fs.Int("weeks", 1, "split length in weeks (1 to 4)")
		daysFlag  = fs.String("days", "", `training days per week, e.g. "mon:Push,thu:Pull;tue,sat"`)
		barFlag   = fs.Float64("bar", 45, "barbell weight")
		barUnit   = fs.String("bar-unit", "lb", "barbell weight unit, lb or kg")
		plateUnit = fs.String("plate-unit", "", "plate catalog unit, defaults to the bar unit")
	)
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parse setup flags")
	}

	needed, err := app.svc.NeedsSetup(ctx)
	if err != nil {
		return errors.Wrap(err, "check setup")
	}
	if !needed {
		return errors.New("already configured, run reset first")
	}

	weeks, err := parseSetupWeeks(*daysFlag)
	if err != nil {
		return err
	}
	unit, err := parseUnit(*barUnit)
	if err != nil {
		return err
	}
	var plates workout.WeightUnit
	if *plateUnit != "" {
		if plates, err = parseUnit(*plateUnit); err != nil {
			return err
		}
	}

	err = app.svc.CompleteSetup(ctx, workout.SetupInput{
		SplitLengthWeeks: *weeksFlag,
		BarWeightValue:   *barFlag,
		BarWeightUnit:    unit,
		PlateUnit:        plates,
		Weeks:            weeks,
	})
	if err != nil {
		return errors.Wrap(err, "complete setup")
	}
	fmt.Fprintf(app.out, "Split configured: %d week(s).\n", len(weeks))
	return nil
}

// parseSetupWeeks parses the -days syntax into setup weeks.
func parseSetupWeeks(input string) ([]workout.SetupWeek, error) {
	var weeks []workout.SetupWeek
	for _, weekSpec := range strings.Split(input, ";") {
		var week workout.SetupWeek
		for _, token := range strings.Split(weekSpec, ",") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			dayPart, label, _ := strings.Cut(token, ":")
			weekday, err := parseWeekday(dayPart)
			if err != nil {
				return nil, err
			}
			week.Days = append(week.Days, workout.SetupDay{
				Weekday: weekday,
				Label:   strings.TrimSpace(label),
			})
		}
		weeks = append(weeks, week)
	}
	return weeks, nil
}

var weekdaysByName = map[string]workout.Weekday{
	"sun": workout.Sunday,
	"mon": workout.Monday,
	"tue": workout.Tuesday,
	"wed": workout.Wednesday,
	"thu": workout.Thursday,
	"fri": workout.Friday,
	"sat": workout.Saturday,
}

// parseWeekday accepts weekday names by their first three letters, any case.
func parseWeekday(s string) (workout.Weekday, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if len(key) > 3 {
		key = key[:3]
	}
	if weekday, ok := weekdaysByName[key]; ok {
		return weekday, nil
	}
	return 0, errors.New(fmt.Sprintf("unknown weekday %q", s))
}

func parseUnit(s string) (workout.WeightUnit, error) {
	switch s {
	case string(workout.UnitLb):
		return workout.UnitLb, nil
	case string(workout.UnitKg):
		return workout.UnitKg, nil
	}
	return "", errors.New(fmt.Sprintf("unknown unit %q (expected lb or kg)", s))
}
