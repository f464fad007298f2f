package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/ahvonen/gymlog/internal/errors"
	"github.com/ahvonen/gymlog/internal/workout"
)

// manageWorkouts edits the workouts of one day plan, addressed by -week and
// -day. Workouts are referenced by name, the way the plan prints them.
func (app *application) manageWorkouts(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("workout requires an action: add, rename, edit, reorder, archive or delete")
	}
	action := args[0]

	fs := flag.NewFlagSet("workout "+action, flag.ContinueOnError)
	fs.SetOutput(app.out)
	var (
		weekFlag    = fs.Int("week", 1, "split week the day belongs to")
		dayFlag     = fs.String("day", "", "weekday of the day plan, e.g. mon")
		nameFlag    = fs.String("name", "", "workout name")
		toFlag      = fs.String("to", "", "new name for rename")
		typeFlag    = fs.String("type", "", "dumbbell, machine, barbell or plate-loaded")
		unitFlag    = fs.String("unit", "", "preferred unit, lb or kg")
		warmUpFlag  = fs.Int("warmup", -1, "planned warm-up sets")
		workingFlag = fs.Int("working", -1, "planned working sets")
		orderFlag   = fs.String("order", "", "comma-separated workout names in the new order")
	)
	if err := fs.Parse(args[1:]); err != nil {
		return errors.Wrap(err, "parse workout flags")
	}
	if *dayFlag == "" {
		return errors.New("workout requires -day")
	}
	weekday, err := parseWeekday(*dayFlag)
	if err != nil {
		return err
	}
	day, err := app.findDay(ctx, *weekFlag, weekday)
	if err != nil {
		return err
	}

	switch action {
	case "add":
		return app.addWorkout(ctx, day, *nameFlag, *typeFlag, *unitFlag, *warmUpFlag, *workingFlag)
	case "rename":
		tmpl, err := findWorkout(day, *nameFlag)
		if err != nil {
			return err
		}
		if err = app.svc.RenameWorkout(ctx, tmpl.ID, *toFlag); err != nil {
			return errors.Wrap(err, "rename workout")
		}
		fmt.Fprintf(app.out, "Renamed %s to %s.\n", tmpl.Name, *toFlag)
		return nil
	case "edit":
		return app.editWorkout(ctx, day, *nameFlag, *typeFlag, *unitFlag, *warmUpFlag, *workingFlag)
	case "reorder":
		return app.reorderWorkouts(ctx, day, *orderFlag)
	case "archive":
		tmpl, err := findWorkout(day, *nameFlag)
		if err != nil {
			return err
		}
		if err = app.svc.ArchiveWorkout(ctx, day.ID, tmpl.ID); err != nil {
			return errors.Wrap(err, "archive workout")
		}
		fmt.Fprintf(app.out, "Archived %s.\n", tmpl.Name)
		return nil
	case "delete":
		tmpl, err := findWorkout(day, *nameFlag)
		if err != nil {
			return err
		}
		if err = app.svc.DeleteWorkout(ctx, day.ID, tmpl.ID); err != nil {
			return errors.Wrap(err, "delete workout")
		}
		fmt.Fprintf(app.out, "Deleted %s and kept its logged history.\n", tmpl.Name)
		return nil
	default:
		return errors.New(fmt.Sprintf(
			"unknown workout action %q (expected add, rename, edit, reorder, archive or delete)", action))
	}
}

func (app *application) findDay(ctx context.Context, weekIndex int, weekday workout.Weekday) (workout.Day, error) {
	plan, err := app.svc.Plan(ctx)
	if err != nil {
		return workout.Day{}, errors.Wrap(err, "get plan")
	}
	for _, week := range plan.Weeks {
		if week.WeekIndex != weekIndex {
			continue
		}
		for _, day := range week.Days {
			if day.Weekday == weekday {
				return day, nil
			}
		}
	}
	return workout.Day{}, errors.New(fmt.Sprintf("no %s day plan in week %d", weekday, weekIndex))
}

func (app *application) addWorkout(
	ctx context.Context,
	day workout.Day,
	name, typeName, unitName string,
	warmUp, working int,
) error {
	weightType, err := parseWeightType(typeName)
	if err != nil {
		return err
	}
	cfg, err := app.svc.Config(ctx)
	if err != nil {
		return errors.Wrap(err, "get config")
	}
	unit := cfg.BarWeightUnit
	if unitName != "" {
		if unit, err = parseUnit(unitName); err != nil {
			return err
		}
	}

	input := workout.WorkoutInput{Name: name, WeightType: weightType, PreferredUnit: unit}
	if warmUp >= 0 {
		input.PlannedWarmUpSets = warmUp
	}
	if working >= 1 {
		input.PlannedWorkingSets = working
	}
	tmpl, err := app.svc.AddWorkout(ctx, day.ID, input)
	if err != nil {
		return errors.Wrap(err, "add workout")
	}
	fmt.Fprintf(app.out, "Added %s to %s (%d+%d sets).\n",
		tmpl.Name, day.Label, tmpl.PlannedWarmUpSets, tmpl.PlannedWorkingSets)
	return nil
}

// editWorkout updates a workout, keeping the current value of every field
// whose flag was not given.
func (app *application) editWorkout(
	ctx context.Context,
	day workout.Day,
	name, typeName, unitName string,
	warmUp, working int,
) error {
	tmpl, err := findWorkout(day, name)
	if err != nil {
		return err
	}
	input := workout.WorkoutInput{
		Name:               tmpl.Name,
		WeightType:         tmpl.WeightType,
		PreferredUnit:      tmpl.PreferredUnit,
		PlannedWarmUpSets:  tmpl.PlannedWarmUpSets,
		PlannedWorkingSets: tmpl.PlannedWorkingSets,
	}
	if typeName != "" {
		if input.WeightType, err = parseWeightType(typeName); err != nil {
			return err
		}
	}
	if unitName != "" {
		if input.PreferredUnit, err = parseUnit(unitName); err != nil {
			return err
		}
	}
	if warmUp >= 0 {
		input.PlannedWarmUpSets = warmUp
	}
	if working >= 1 {
		input.PlannedWorkingSets = working
	}
	if err = app.svc.EditWorkout(ctx, day.ID, tmpl.ID, input); err != nil {
		return errors.Wrap(err, "edit workout")
	}
	fmt.Fprintf(app.out, "Updated %s.\n", tmpl.Name)
	return nil
}

func (app *application) reorderWorkouts(ctx context.Context, day workout.Day, order string) error {
	if order == "" {
		return errors.New("reorder requires -order with every workout name")
	}
	var ids []string
	for _, name := range strings.Split(order, ",") {
		tmpl, err := findWorkout(day, name)
		if err != nil {
			return err
		}
		ids = append(ids, tmpl.ID)
	}
	if err := app.svc.ReorderWorkouts(ctx, day.ID, ids); err != nil {
		return errors.Wrap(err, "reorder workouts")
	}
	fmt.Fprintf(app.out, "Reordered %s.\n", day.Label)
	return nil
}

func parseWeightType(s string) (workout.WeightType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dumbbell":
		return workout.WeightTypeDumbbell, nil
	case "machine":
		return workout.WeightTypeMachine, nil
	case "barbell":
		return workout.WeightTypeBarbell, nil
	case "plate-loaded", "plate_loaded":
		return workout.WeightTypePlateLoaded, nil
	}
	return "", errors.New(fmt.Sprintf("unknown weight type %q (expected dumbbell, machine, barbell or plate-loaded)", s))
}
