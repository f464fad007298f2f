package workout

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SetDraft is one in-progress set row in the logging sheet. Load holds the
// raw text input for direct-load equipment; Plates holds per-side counts for
// plate-picker equipment. Only the field matching the workout's weight type
// is consulted on save.
type SetDraft struct {
	Type   SetType
	Reps   int
	Load   string
	Plates []PlateCount
}

// NewDraftSheet pre-populates the logging sheet from the template's planned
// counts: warm-up rows first, then working rows. When both counts resolve to
// zero the sheet gets a single working row.
func NewDraftSheet(t Template) []SetDraft {
	warmUp := clampNonNegativeInt(t.PlannedWarmUpSets)
	working := clampNonNegativeInt(t.PlannedWorkingSets)
	if warmUp == 0 && working == 0 {
		return []SetDraft{{Type: SetTypeWorking}}
	}

	drafts := make([]SetDraft, 0, warmUp+working)
	for range warmUp {
		drafts = append(drafts, SetDraft{Type: SetTypeWarmUp})
	}
	for range working {
		drafts = append(drafts, SetDraft{Type: SetTypeWorking})
	}
	return drafts
}

// PreviousEntry returns the most recent logged entry matching the workout,
// for read-only baseline display next to the current drafts. ok=false means
// the workout has never been logged, which the caller renders explicitly.
func (s *Service) PreviousEntry(ctx context.Context, t Template) (Entry, bool, error) {
	sessions, err := s.repo.sessions.List(ctx)
	if err != nil {
		return Entry{}, false, fmt.Errorf("list sessions: %w", err)
	}
	for i := len(sessions) - 1; i >= 0; i-- {
		entries := sessions[i].Entries
		for j := len(entries) - 1; j >= 0; j-- {
			if matchesTemplate(t, entries[j]) {
				return entries[j], true, nil
			}
		}
	}
	return Entry{}, false, nil
}

// WeightDelta computes current minus previous for delta display, converting
// the previous weight into the current set's unit. ok=false when either set
// has no usable weight.
func WeightDelta(current, previous LoggedSet) (float64, bool) {
	currentValue, currentUnit, ok := current.Weight()
	if !ok {
		return 0, false
	}
	previousValue, previousUnit, ok := previous.Weight()
	if !ok {
		return 0, false
	}
	return currentValue - Convert(previousValue, previousUnit, currentUnit), true
}

// PlanDrift compares the sheet's warm-up and working counts against the
// template's planned counts. drifted=true means the caller should offer to
// sync the planned counts on save. The sync only affects future sheet
// generation, never the save itself.
func PlanDrift(t Template, drafts []SetDraft) (warmUp, working int, drifted bool) {
	for _, draft := range drafts {
		if draft.Type == SetTypeWarmUp {
			warmUp++
		} else {
			working++
		}
	}
	drifted = warmUp != t.PlannedWarmUpSets || working != t.PlannedWorkingSets
	return warmUp, working, drifted
}

// DuplicateResolution is the caller's choice when the workout was already
// logged in the same session.
type DuplicateResolution int

const (
	// ResolutionUndecided makes the save stop with DuplicateEntriesError
	// when duplicates exist, so the caller can ask the user.
	ResolutionUndecided DuplicateResolution = iota
	// ResolutionReplaceLatest deletes the most recently appended duplicate
	// before appending the new entry.
	ResolutionReplaceLatest
	// ResolutionKeepBoth appends alongside the existing entries, for
	// legitimate multiple passes in one day.
	ResolutionKeepBoth
)

// DuplicateEntriesError reports that the session already holds entries for
// this workout and the caller has not chosen a resolution yet.
type DuplicateEntriesError struct {
	WorkoutName string
	Duplicates  []Entry
}

func (e *DuplicateEntriesError) Error() string {
	return fmt.Sprintf("%q was already logged in this session", e.WorkoutName)
}

// SaveRequest carries one save action of the logging sheet.
type SaveRequest struct {
	Template          Template
	WeekIndex         int
	Weekday           Weekday
	DayLabel          string
	Unit              WeightUnit
	Drafts            []SetDraft
	Resolution        DuplicateResolution
	SyncPlannedCounts bool
	Now               time.Time
}

// SaveEntry persists the drafted sets as a session entry.
//
// The session for the same split slot on the same calendar day is reused
// when it exists, otherwise created. If the session already holds entries
// for this workout and no resolution was chosen, the save stops with a
// DuplicateEntriesError before any mutation. The whole commit, including
// a Replace-Latest deletion and any template write-backs, is one
// transaction.
func (s *Service) SaveEntry(ctx context.Context, req SaveRequest) (err error) {
	if len(req.Drafts) == 0 {
		return fmt.Errorf("%w: add at least one set", ErrValidation)
	}

	cfg, err := s.repo.config.Get(ctx)
	if err != nil {
		return fmt.Errorf("get config: %w", err)
	}

	commit := entryCommit{
		templateID: req.Template.ID,
	}

	sess, err := s.repo.sessions.FindByDaySlot(ctx, req.WeekIndex, req.Weekday, req.Now)
	switch {
	case err == nil:
		commit.sessionExists = true
		duplicates := duplicateEntries(req.Template, sess)
		if len(duplicates) > 0 {
			switch req.Resolution {
			case ResolutionReplaceLatest:
				commit.deleteEntryID = duplicates[len(duplicates)-1].ID
			case ResolutionKeepBoth:
			default:
				return &DuplicateEntriesError{
					WorkoutName: req.Template.Name,
					Duplicates:  duplicates,
				}
			}
		}
	case errors.Is(err, ErrNotFound):
		sess = Session{ID: newID(), WeekIndex: req.WeekIndex, Weekday: req.Weekday}
	default:
		return fmt.Errorf("find session: %w", err)
	}

	sess.Date = req.Now
	sess.DayStart = startOfDay(req.Now)
	sess.DayLabel = req.DayLabel
	commit.session = sess

	commit.entry = Entry{
		TemplateID:  req.Template.ID,
		WorkoutName: req.Template.Name,
		WeightType:  req.Template.WeightType,
		Sets:        materializeSets(cfg, req),
	}

	if !req.Template.WeightType.UsesPlatePicker() {
		unit := req.Unit
		commit.preferredUnit = &unit
	}
	if req.SyncPlannedCounts {
		warmUp, working, _ := PlanDrift(req.Template, req.Drafts)
		commit.plannedCounts = &plannedCounts{warmUp: warmUp, working: working}
	}

	if err = s.repo.sessions.CommitEntry(ctx, commit); err != nil {
		return fmt.Errorf("commit entry: %w", err)
	}
	return nil
}

// duplicateEntries returns the session's entries matching the workout, in
// append order. The last one is the most recently appended.
func duplicateEntries(t Template, sess Session) []Entry {
	var duplicates []Entry
	for _, entry := range sess.Entries {
		if matchesTemplate(t, entry) {
			duplicates = append(duplicates, entry)
		}
	}
	return duplicates
}

// materializeSets turns drafts into logged sets in the session's chosen
// unit. Plate-picker sets snapshot the bar weight converted to that unit and
// the computed total; direct-load sets parse the text input, falling back to
// zero when it is blank or unparsable.
func materializeSets(cfg Config, req SaveRequest) []LoggedSet {
	sets := make([]LoggedSet, 0, len(req.Drafts))
	for i, draft := range req.Drafts {
		set := LoggedSet{
			SetNumber: i + 1,
			Reps:      clampNonNegativeInt(draft.Reps),
			Type:      draft.Type,
		}
		if set.Type == "" {
			set.Type = SetTypeWorking
		}

		if req.Template.WeightType.UsesPlatePicker() {
			base := 0.0
			if req.Template.WeightType == WeightTypeBarbell {
				base = Convert(cfg.BarWeightValue, cfg.BarWeightUnit, req.Unit)
			}
			perSide := nonZeroPlateCounts(draft.Plates)
			set.Plates = &PlateLoad{
				PerSide:        perSide,
				BarWeightValue: base,
				BarWeightUnit:  req.Unit,
				TotalValue:     PlateTotal(base, cfg.PlateCatalog, perSide),
				TotalUnit:      req.Unit,
			}
		} else {
			value, err := ParseWeight(draft.Load)
			if err != nil {
				value = 0
			}
			set.Load = &DirectLoad{Value: value, Unit: req.Unit}
		}
		sets = append(sets, set)
	}
	return sets
}

func nonZeroPlateCounts(counts []PlateCount) []PlateCount {
	var kept []PlateCount
	for _, count := range counts {
		if count.CountPerSide > 0 {
			kept = append(kept, count)
		}
	}
	return kept
}
