package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ahvonen/gymlog/internal/errors"
	"github.com/ahvonen/gymlog/internal/workout"
)

// log records a workout entry against today's day plan. Sets are given as
// comma-separated "reps@weight" tokens; plate-picker workouts take per-side
// plates instead of a weight, like "5@45x2+10".
func (app *application) log(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("log", flag.ContinueOnError)
	fs.SetOutput(app.out)
	var (
		workoutName = fs.String("workout", "", "name of the workout to log")
		unitFlag    = fs.String("unit", "", "lb or kg, defaults to the workout's preferred unit")
		setsFlag    = fs.String("sets", "", `sets, e.g. "12@15,8@27.5" or "5@45x2+10" for plate workouts`)
		warmUpFlag  = fs.Int("warmup", 0, "how many leading sets are warm-up sets")
		replaceFlag = fs.Bool("replace", false, "replace the latest duplicate entry in today's session")
		keepFlag    = fs.Bool("keep-both", false, "append alongside duplicate entries in today's session")
		syncFlag    = fs.Bool("sync-plan", false, "update the workout's planned set counts to match this log")
	)
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parse log flags")
	}
	if *workoutName == "" {
		return errors.New("log requires -workout")
	}

	now := time.Now()
	day, ok, err := app.svc.CurrentDay(ctx, now)
	if err != nil {
		return errors.Wrap(err, "resolve current day")
	}
	if !ok {
		return errors.New("the plan has no configured training days")
	}

	tmpl, err := findWorkout(day, *workoutName)
	if err != nil {
		return err
	}

	unit := tmpl.PreferredUnit
	if *unitFlag != "" {
		if unit, err = parseUnit(*unitFlag); err != nil {
			return err
		}
	}

	cfg, err := app.svc.Config(ctx)
	if err != nil {
		return errors.Wrap(err, "get config")
	}
	drafts, err := parseSetDrafts(*setsFlag, *warmUpFlag, tmpl.WeightType, cfg.PlatesForUnit(unit))
	if err != nil {
		return err
	}

	resolution := workout.ResolutionUndecided
	if *replaceFlag {
		resolution = workout.ResolutionReplaceLatest
	}
	if *keepFlag {
		resolution = workout.ResolutionKeepBoth
	}

	err = app.svc.SaveEntry(ctx, workout.SaveRequest{
		Template:          tmpl,
		WeekIndex:         day.WeekIndex,
		Weekday:           day.Weekday,
		DayLabel:          day.Label,
		Unit:              unit,
		Drafts:            drafts,
		Resolution:        resolution,
		SyncPlannedCounts: *syncFlag,
		Now:               now,
	})
	var duplicates *workout.DuplicateEntriesError
	if errors.As(err, &duplicates) {
		fmt.Fprintf(app.out, "%q was already logged today (%d existing). Re-run with -replace or -keep-both.\n",
			tmpl.Name, len(duplicates.Duplicates))
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "save entry")
	}
	fmt.Fprintf(app.out, "Logged %d sets of %s.\n", len(drafts), tmpl.Name)
	return nil
}

func findWorkout(day workout.Day, name string) (workout.Template, error) {
	name = strings.TrimSpace(name)
	for _, tmpl := range day.ActiveWorkouts() {
		if strings.EqualFold(tmpl.Name, name) {
			return tmpl, nil
		}
	}
	return workout.Template{}, errors.New(fmt.Sprintf("no workout named %q on %s", name, day.Label))
}

// parseSetDrafts turns the -sets syntax into set drafts. The first warmUp
// sets are tagged as warm-up.
func parseSetDrafts(input string, warmUp int, weightType workout.WeightType, plates []workout.PlateOption) ([]workout.SetDraft, error) {
	var drafts []workout.SetDraft
	for _, token := range strings.Split(input, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		repsPart, weightPart, _ := strings.Cut(token, "@")
		reps, err := strconv.Atoi(strings.TrimSpace(repsPart))
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("set %q: reps must be a number", token))
		}

		draft := workout.SetDraft{Type: workout.SetTypeWorking, Reps: reps}
		if len(drafts) < warmUp {
			draft.Type = workout.SetTypeWarmUp
		}
		if weightType.UsesPlatePicker() {
			if draft.Plates, err = parsePlateSpec(weightPart, plates); err != nil {
				return nil, errors.Wrap(err, fmt.Sprintf("set %q", token))
			}
		} else {
			draft.Load = strings.TrimSpace(weightPart)
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

// parsePlateSpec parses per-side plates like "45x2+10", resolving each value
// against the configured catalog. A bare value means one plate per side.
func parsePlateSpec(spec string, plates []workout.PlateOption) ([]workout.PlateCount, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	var counts []workout.PlateCount
	for _, part := range strings.Split(spec, "+") {
		valuePart, countPart, hasCount := strings.Cut(strings.TrimSpace(part), "x")
		value, err := strconv.ParseFloat(strings.TrimSpace(valuePart), 64)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("plate %q: value must be a number", part))
		}
		count := 1
		if hasCount {
			if count, err = strconv.Atoi(strings.TrimSpace(countPart)); err != nil {
				return nil, errors.Wrap(err, fmt.Sprintf("plate %q: count must be a number", part))
			}
		}

		found := false
		for _, option := range plates {
			if option.Value == value {
				counts = append(counts, workout.PlateCount{PlateOptionID: option.ID, CountPerSide: count})
				found = true
				break
			}
		}
		if !found {
			return nil, errors.New(fmt.Sprintf("no %s plate in the catalog", workout.FormatWeight(value)))
		}
	}
	return counts, nil
}

// settings shows or edits the configuration. Without flags it prints the
// current values.
func (app *application) settings(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("settings", flag.ContinueOnError)
	fs.SetOutput(app.out)
	var (
		splitWeeks  = fs.Int("split-weeks", 0, "split length in weeks (1 to 4)")
		barWeight   = fs.Float64("bar", -1, "barbell weight")
		barUnit     = fs.String("bar-unit", "", "barbell weight unit, lb or kg")
		profileName = fs.String("name", "", "profile display name")
	)
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parse settings flags")
	}

	changed := false
	if *splitWeeks > 0 {
		if err := app.svc.UpdateSplitLength(ctx, *splitWeeks); err != nil {
			return errors.Wrap(err, "update split length")
		}
		changed = true
	}
	if *barWeight >= 0 {
		unit := workout.WeightUnit(*barUnit)
		if unit != workout.UnitLb && unit != workout.UnitKg {
			return errors.New("-bar requires -bar-unit lb or kg")
		}
		if err := app.svc.UpdateBarWeight(ctx, *barWeight, unit); err != nil {
			return errors.Wrap(err, "update bar weight")
		}
		changed = true
	}
	if *profileName != "" {
		if err := app.svc.SetProfileName(ctx, *profileName); err != nil {
			return errors.Wrap(err, "set profile name")
		}
		changed = true
	}
	if changed {
		fmt.Fprintln(app.out, "Settings updated.")
		return nil
	}

	cfg, err := app.svc.Config(ctx)
	if err != nil {
		return errors.Wrap(err, "get config")
	}
	name, err := app.svc.ProfileName(ctx)
	if err != nil {
		return errors.Wrap(err, "get profile name")
	}
	if name != "" {
		fmt.Fprintf(app.out, "Profile: %s\n", name)
	}
	fmt.Fprintf(app.out, "Split length: %d weeks\n", cfg.SplitLengthWeeks)
	fmt.Fprintf(app.out, "Bar weight: %s %s\n", workout.FormatWeight(cfg.BarWeightValue), cfg.BarWeightUnit)
	fmt.Fprintln(app.out, "Plates (per side):")
	for _, option := range cfg.PlateCatalog {
		fmt.Fprintf(app.out, "  %s\n", option.Label)
	}
	return nil
}
