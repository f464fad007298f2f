package workout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahvonen/gymlog/internal/sqlite"
)

// Service is the façade the user-facing surface calls into. All operations
// are synchronous and run to completion on the caller's goroutine.
type Service struct {
	repo   *repository
	logger *slog.Logger
}

// NewService creates the workout service on top of a database.
func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	factory := newRepositoryFactory(db, logger)
	return &Service{
		repo:   factory.newRepository(),
		logger: logger,
	}
}

// NeedsSetup reports whether the first-run wizard still has to run. The
// configuration singleton's absence is the signal.
func (s *Service) NeedsSetup(ctx context.Context) (bool, error) {
	_, err := s.repo.config.Get(ctx)
	if errors.Is(err, ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("get config: %w", err)
	}
	return false, nil
}

// SetupDay selects one weekday of a setup week. A blank label defaults to
// the weekday's full name.
type SetupDay struct {
	Weekday Weekday
	Label   string
}

// SetupWeek selects the training days of one split week.
type SetupWeek struct {
	Days []SetupDay
}

// SetupInput is everything the first-run wizard collects.
type SetupInput struct {
	SplitLengthWeeks int
	BarWeightValue   float64
	BarWeightUnit    WeightUnit
	PlateUnit        WeightUnit
	Weeks            []SetupWeek
}

// CompleteSetup creates the configuration singleton and the split plan.
// Every week must select at least one day.
func (s *Service) CompleteSetup(ctx context.Context, in SetupInput) error {
	length := clampSplitLength(in.SplitLengthWeeks)
	if len(in.Weeks) != length {
		return fmt.Errorf("%w: expected %d weeks, got %d", ErrValidation, length, len(in.Weeks))
	}
	for i, week := range in.Weeks {
		if len(week.Days) == 0 {
			return fmt.Errorf("%w: week %d has no training days", ErrValidation, i+1)
		}
	}

	plateUnit := in.PlateUnit
	if plateUnit == "" {
		plateUnit = in.BarWeightUnit
	}
	cfg := Config{
		SplitLengthWeeks: length,
		CreatedAt:        time.Now(),
		BarWeightValue:   clampNonNegative(in.BarWeightValue),
		BarWeightUnit:    in.BarWeightUnit,
		PlateCatalog:     DefaultPlateCatalog(plateUnit),
	}

	weeks := make([]Week, 0, length)
	for i, setupWeek := range in.Weeks {
		week := Week{WeekIndex: i + 1, Days: nil}
		for _, setupDay := range setupWeek.Days {
			label := setupDay.Label
			if normalizeName(label) == "" {
				label = setupDay.Weekday.String()
			}
			week.Days = append(week.Days, Day{
				ID:        0,
				WeekIndex: i + 1,
				Weekday:   setupDay.Weekday,
				Label:     label,
				Workouts:  nil,
			})
		}
		weeks = append(weeks, week)
	}
	if err := s.repo.setup.Initialize(ctx, cfg, weeks); err != nil {
		return fmt.Errorf("save setup: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "setup completed",
		slog.Int("split_length_weeks", length))
	return nil
}

// Config returns the application configuration. ErrNotFound means setup has
// not run.
func (s *Service) Config(ctx context.Context) (Config, error) {
	cfg, err := s.repo.config.Get(ctx)
	if err != nil {
		return Config{}, fmt.Errorf("get config: %w", err)
	}
	return cfg, nil
}

// UpdateSplitLength changes the split length, clamped to the valid range.
// Weeks beyond the new length are removed along with their days; added
// weeks start empty.
func (s *Service) UpdateSplitLength(ctx context.Context, weeks int) error {
	cfg, err := s.repo.config.Get(ctx)
	if err != nil {
		return fmt.Errorf("get config: %w", err)
	}
	cfg.SplitLengthWeeks = clampSplitLength(weeks)
	if err = s.repo.setup.ResizeSplit(ctx, cfg); err != nil {
		return fmt.Errorf("resize split: %w", err)
	}
	return nil
}

// UpdateBarWeight changes the configured barbell weight.
func (s *Service) UpdateBarWeight(ctx context.Context, value float64, unit WeightUnit) error {
	cfg, err := s.repo.config.Get(ctx)
	if err != nil {
		return fmt.Errorf("get config: %w", err)
	}
	cfg.BarWeightValue = clampNonNegative(value)
	cfg.BarWeightUnit = unit
	if err = s.repo.config.Set(ctx, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// ReplacePlateCatalog swaps the plate catalog. An empty catalog is rejected
// since the plate picker would become unusable.
func (s *Service) ReplacePlateCatalog(ctx context.Context, options []PlateOption) error {
	if len(options) == 0 {
		return fmt.Errorf("%w: plate catalog must not be empty", ErrValidation)
	}
	cfg, err := s.repo.config.Get(ctx)
	if err != nil {
		return fmt.Errorf("get config: %w", err)
	}
	// Normalize a copy so the caller's slice stays untouched.
	catalog := make([]PlateOption, len(options))
	copy(catalog, options)
	for i := range catalog {
		catalog[i].Value = clampNonNegative(catalog[i].Value)
		if catalog[i].ID == "" {
			catalog[i].ID = newID()
		}
		if catalog[i].Label == "" {
			catalog[i].Label = FormatWeight(catalog[i].Value) + " " + string(catalog[i].Unit)
		}
	}
	cfg.PlateCatalog = catalog
	if err = s.repo.config.Set(ctx, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// FactoryReset deletes the configuration, the plan, and all history.
func (s *Service) FactoryReset(ctx context.Context) error {
	if err := s.repo.reset.DeleteEverything(ctx); err != nil {
		return fmt.Errorf("factory reset: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "factory reset completed")
	return nil
}

// Plan returns the full split plan.
func (s *Service) Plan(ctx context.Context) (Plan, error) {
	plan, err := s.repo.plan.Get(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("get plan: %w", err)
	}
	return plan, nil
}

// Day returns one day plan with its workouts.
func (s *Service) Day(ctx context.Context, dayID int64) (Day, error) {
	day, err := s.repo.plan.Day(ctx, dayID)
	if err != nil {
		return Day{}, fmt.Errorf("get day %d: %w", dayID, err)
	}
	return day, nil
}

// CurrentDay resolves the day plan to display for the given date using the
// rotating split calendar. ok=false is the empty state: the plan has no
// configured days.
func (s *Service) CurrentDay(ctx context.Context, now time.Time) (Day, bool, error) {
	cfg, err := s.repo.config.Get(ctx)
	if err != nil {
		return Day{}, false, fmt.Errorf("get config: %w", err)
	}
	plan, err := s.repo.plan.Get(ctx)
	if err != nil {
		return Day{}, false, fmt.Errorf("get plan: %w", err)
	}
	day, ok := AutoSelectDay(plan, cfg, now)
	return day, ok, nil
}

// Sessions returns all logged sessions, most recent first.
func (s *Service) Sessions(ctx context.Context) ([]Session, error) {
	sessions, err := s.repo.sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
		sessions[i], sessions[j] = sessions[j], sessions[i]
	}
	return sessions, nil
}

// Session returns one session by id.
func (s *Service) Session(ctx context.Context, id string) (Session, error) {
	sess, err := s.repo.sessions.Get(ctx, id)
	if err != nil {
		return Session{}, fmt.Errorf("get session %s: %w", id, err)
	}
	return sess, nil
}

const profileNameKey = "profile_name"

// ProfileName returns the display name preference, empty when unset.
func (s *Service) ProfileName(ctx context.Context) (string, error) {
	name, err := s.repo.prefs.Get(ctx, profileNameKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get profile name: %w", err)
	}
	return name, nil
}

// SetProfileName stores the display name preference.
func (s *Service) SetProfileName(ctx context.Context, name string) error {
	if err := s.repo.prefs.Set(ctx, profileNameKey, name); err != nil {
		return fmt.Errorf("set profile name: %w", err)
	}
	return nil
}
