package workout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

func newID() string {
	return uuid.NewString()
}

// WorkoutInput carries the editable fields of a workout template.
type WorkoutInput struct {
	Name               string
	WeightType         WeightType
	PreferredUnit      WeightUnit
	PlannedWarmUpSets  int
	PlannedWorkingSets int
}

const (
	defaultWarmUpSets  = 1
	defaultWorkingSets = 3
)

// AddWorkout appends a workout template to a day plan. The name must be
// non-blank and unique (case-insensitive, trimmed) among the day's active
// templates of the same weight type.
func (s *Service) AddWorkout(ctx context.Context, dayID int64, in WorkoutInput) (Template, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Template{}, fmt.Errorf("%w: workout name must not be blank", ErrValidation)
	}

	day, err := s.repo.plan.Day(ctx, dayID)
	if err != nil {
		return Template{}, fmt.Errorf("get day %d: %w", dayID, err)
	}
	active := day.ActiveWorkouts()
	if err = rejectDuplicateName(active, name, in.WeightType, ""); err != nil {
		return Template{}, err
	}

	warmUp := clampNonNegativeInt(in.PlannedWarmUpSets)
	working := in.PlannedWorkingSets
	if in.PlannedWarmUpSets == 0 && in.PlannedWorkingSets == 0 {
		warmUp = defaultWarmUpSets
		working = defaultWorkingSets
	}
	if working < 1 {
		working = defaultWorkingSets
	}

	t := Template{
		ID:                 newID(),
		Name:               name,
		WeightType:         in.WeightType,
		PreferredUnit:      in.PreferredUnit,
		PlannedWarmUpSets:  warmUp,
		PlannedWorkingSets: working,
		SortIndex:          len(active),
		Archived:           false,
	}
	if err = s.repo.plan.CreateTemplate(ctx, dayID, t); err != nil {
		return Template{}, fmt.Errorf("create template: %w", err)
	}
	return t, nil
}

func rejectDuplicateName(active []Template, name string, weightType WeightType, excludeID string) error {
	normalized := normalizeName(name)
	for _, existing := range active {
		if existing.ID == excludeID {
			continue
		}
		if normalizeName(existing.Name) == normalized && existing.WeightType == weightType {
			return fmt.Errorf("%w: %q already exists in this day", ErrValidation, name)
		}
	}
	return nil
}

// RenameWorkout changes only the template's name after trim validation.
func (s *Service) RenameWorkout(ctx context.Context, templateID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: workout name must not be blank", ErrValidation)
	}
	if err := s.repo.plan.UpdateTemplate(ctx, templateID, func(t *Template) (bool, error) {
		t.Name = name
		return true, nil
	}); err != nil {
		return fmt.Errorf("rename template %s: %w", templateID, err)
	}
	return nil
}

// EditWorkout updates a template's editable fields. The duplicate-name rule
// applies against the day's other active templates.
func (s *Service) EditWorkout(ctx context.Context, dayID int64, templateID string, in WorkoutInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return fmt.Errorf("%w: workout name must not be blank", ErrValidation)
	}
	day, err := s.repo.plan.Day(ctx, dayID)
	if err != nil {
		return fmt.Errorf("get day %d: %w", dayID, err)
	}
	if err = rejectDuplicateName(day.ActiveWorkouts(), name, in.WeightType, templateID); err != nil {
		return err
	}

	if err = s.repo.plan.UpdateTemplate(ctx, templateID, func(t *Template) (bool, error) {
		t.Name = name
		t.WeightType = in.WeightType
		t.PreferredUnit = in.PreferredUnit
		t.PlannedWarmUpSets = clampNonNegativeInt(in.PlannedWarmUpSets)
		if in.PlannedWorkingSets >= 1 {
			t.PlannedWorkingSets = in.PlannedWorkingSets
		}
		return true, nil
	}); err != nil {
		return fmt.Errorf("edit template %s: %w", templateID, err)
	}
	return nil
}

// ReorderWorkouts applies a new ordering of a day's active templates,
// renumbering sort indexes densely 0..n-1.
func (s *Service) ReorderWorkouts(ctx context.Context, dayID int64, orderedIDs []string) error {
	if err := s.repo.plan.RenumberTemplates(ctx, dayID, orderedIDs); err != nil {
		return fmt.Errorf("reorder templates: %w", err)
	}
	return nil
}

// ArchiveWorkout soft-deletes a template. It disappears from the day's
// active list but its history and trend identity remain addressable.
func (s *Service) ArchiveWorkout(ctx context.Context, dayID int64, templateID string) error {
	if err := s.repo.plan.UpdateTemplate(ctx, templateID, func(t *Template) (bool, error) {
		if t.Archived {
			return false, nil
		}
		t.Archived = true
		return true, nil
	}); err != nil {
		return fmt.Errorf("archive template %s: %w", templateID, err)
	}
	return s.renumberDay(ctx, dayID)
}

// DeleteWorkout removes a template permanently and closes the sort-index
// gap it leaves behind. Logged entries keep their snapshots.
func (s *Service) DeleteWorkout(ctx context.Context, dayID int64, templateID string) error {
	if err := s.repo.plan.DeleteTemplate(ctx, templateID); err != nil {
		return fmt.Errorf("delete template %s: %w", templateID, err)
	}
	return s.renumberDay(ctx, dayID)
}

// renumberDay rewrites the day's active templates' sort indexes densely in
// their current display order.
func (s *Service) renumberDay(ctx context.Context, dayID int64) error {
	day, err := s.repo.plan.Day(ctx, dayID)
	if err != nil {
		return fmt.Errorf("get day %d: %w", dayID, err)
	}
	active := day.ActiveWorkouts()
	ids := make([]string, 0, len(active))
	for _, t := range active {
		ids = append(ids, t.ID)
	}
	if err = s.repo.plan.RenumberTemplates(ctx, dayID, ids); err != nil {
		return fmt.Errorf("renumber day %d: %w", dayID, err)
	}
	return nil
}

// SavedWorkoutSuggestions returns the app-wide deduplicated list of active
// templates for quick reuse when building other days. The first occurrence
// in plan order wins per (name, type, unit, planned counts) key.
func (s *Service) SavedWorkoutSuggestions(ctx context.Context) ([]Template, error) {
	all, err := s.repo.plan.ActiveTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active templates: %w", err)
	}

	type suggestionKey struct {
		name       string
		weightType WeightType
		unit       WeightUnit
		warmUp     int
		working    int
	}
	seen := make(map[suggestionKey]bool)
	var suggestions []Template
	for _, t := range all {
		key := suggestionKey{
			name:       normalizeName(t.Name),
			weightType: t.WeightType,
			unit:       t.PreferredUnit,
			warmUp:     t.PlannedWarmUpSets,
			working:    t.PlannedWorkingSets,
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		suggestions = append(suggestions, t)
	}
	return suggestions, nil
}
