// Package workout implements the training-split domain: the plan hierarchy,
// session logging, and history aggregation over the local database.
package workout

import (
	"sort"
	"strings"
	"time"
)

// WeightUnit is the unit a weight value is expressed in.
type WeightUnit string

const (
	UnitLb WeightUnit = "lb"
	UnitKg WeightUnit = "kg"
)

// WeightType describes the equipment a workout is performed on. It decides
// how set weights are recorded: dumbbell and machine sets carry a direct
// load value, barbell and plate-loaded sets derive their total from per-side
// plate counts.
type WeightType string

const (
	WeightTypeDumbbell    WeightType = "dumbbell"
	WeightTypeMachine     WeightType = "machine"
	WeightTypeBarbell     WeightType = "barbell"
	WeightTypePlateLoaded WeightType = "plate_loaded"
)

// UsesPlatePicker reports whether set weights for this equipment are derived
// from plate counts rather than entered directly.
func (t WeightType) UsesPlatePicker() bool {
	return t == WeightTypeBarbell || t == WeightTypePlateLoaded
}

// weightTypeOrder is the display tie-break ordering for equal names.
//
//nolint:gochecknoglobals // static lookup table.
var weightTypeOrder = map[WeightType]int{
	WeightTypeDumbbell:    0,
	WeightTypeMachine:     1,
	WeightTypeBarbell:     2,
	WeightTypePlateLoaded: 3,
}

// SetType distinguishes warm-up sets from working sets.
type SetType string

const (
	SetTypeWarmUp  SetType = "warm_up"
	SetTypeWorking SetType = "working"
)

// Weekday numbers the days Sunday=1 through Saturday=7.
type Weekday int

const (
	Sunday Weekday = iota + 1
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

//nolint:gochecknoglobals // static lookup table.
var weekdayNames = map[Weekday]string{
	Sunday:    "Sunday",
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
	Saturday:  "Saturday",
}

func (d Weekday) String() string {
	if name, ok := weekdayNames[d]; ok {
		return name
	}
	return "Unknown"
}

// WeekdayOf converts a calendar date to the domain weekday numbering.
func WeekdayOf(t time.Time) Weekday {
	return Weekday(int(t.Weekday()) + 1)
}

// Config is the application configuration written by the setup wizard.
// Its absence signals that setup has not run yet.
type Config struct {
	SplitLengthWeeks int
	CreatedAt        time.Time
	BarWeightValue   float64
	BarWeightUnit    WeightUnit
	PlateCatalog     []PlateOption
}

// PlatesForUnit returns the catalog entries for the given unit, in catalog
// order. An empty result is a representable state the caller renders as such.
func (c Config) PlatesForUnit(unit WeightUnit) []PlateOption {
	var options []PlateOption
	for _, option := range c.PlateCatalog {
		if option.Unit == unit {
			options = append(options, option)
		}
	}
	return options
}

// PlateOptionByID looks up a catalog entry by its identifier.
func (c Config) PlateOptionByID(id string) (PlateOption, bool) {
	for _, option := range c.PlateCatalog {
		if option.ID == id {
			return option, true
		}
	}
	return PlateOption{}, false
}

// PlateOption is one plate denomination in the configured catalog.
// Logged sets reference it by copied id, never by live relation.
type PlateOption struct {
	ID    string
	Value float64
	Unit  WeightUnit
	Label string
}

// Plan is the repeating multi-week training split.
type Plan struct {
	Weeks []Week
}

// Week returns the plan week with the given 1-based index.
func (p Plan) Week(weekIndex int) (Week, bool) {
	for _, week := range p.Weeks {
		if week.WeekIndex == weekIndex {
			return week, true
		}
	}
	return Week{}, false
}

// Day returns the configured day plan at the given position, if any.
func (p Plan) Day(weekIndex int, weekday Weekday) (Day, bool) {
	week, ok := p.Week(weekIndex)
	if !ok {
		return Day{}, false
	}
	for _, day := range week.Days {
		if day.Weekday == weekday {
			return day, true
		}
	}
	return Day{}, false
}

// FirstConfiguredDay returns the first configured day ordered by week index
// then weekday, or false when the plan has no days at all.
func (p Plan) FirstConfiguredDay() (Day, bool) {
	for _, week := range p.Weeks {
		if len(week.Days) > 0 {
			return week.Days[0], true
		}
	}
	return Day{}, false
}

// Week is one week of the split. Days are ordered by weekday.
type Week struct {
	WeekIndex int
	Days      []Day
}

// Day is a configured training day within a plan week.
type Day struct {
	ID        int64
	WeekIndex int
	Weekday   Weekday
	Label     string
	Workouts  []Template
}

// ActiveWorkouts returns the non-archived templates in display order.
func (d Day) ActiveWorkouts() []Template {
	var active []Template
	for _, t := range d.Workouts {
		if !t.Archived {
			active = append(active, t)
		}
	}
	sortTemplates(active)
	return active
}

// sortTemplates orders templates by sort index, ties broken by
// case-insensitive name.
func sortTemplates(templates []Template) {
	sort.SliceStable(templates, func(i, j int) bool {
		if templates[i].SortIndex != templates[j].SortIndex {
			return templates[i].SortIndex < templates[j].SortIndex
		}
		return strings.ToLower(templates[i].Name) < strings.ToLower(templates[j].Name)
	})
}

// Template is a reusable workout slot within a day plan.
type Template struct {
	ID                 string
	Name               string
	WeightType         WeightType
	PreferredUnit      WeightUnit
	PlannedWarmUpSets  int
	PlannedWorkingSets int
	SortIndex          int
	Archived           bool
}

// Session is one real-world date's logged performance against a day plan.
// The day label is snapshotted at logging time so later plan renames do not
// rewrite history.
type Session struct {
	ID        string
	Date      time.Time
	DayStart  time.Time
	WeekIndex int
	Weekday   Weekday
	DayLabel  string
	Entries   []Entry
}

// CalendarDay returns the calendar day used for duplicate detection,
// falling back to the session date for rows written before DayStart existed.
func (s Session) CalendarDay() time.Time {
	if !s.DayStart.IsZero() {
		return startOfDay(s.DayStart)
	}
	return startOfDay(s.Date)
}

// Entry is the logged performance for one workout within a session. The
// template id is a copied reference: it survives template deletion, which is
// why name and weight type are snapshotted alongside it.
type Entry struct {
	ID          int64
	TemplateID  string
	WorkoutName string
	WeightType  WeightType
	Sets        []LoggedSet
}

// LoggedSet is one performed set. Exactly one weight representation is
// populated, keyed by the owning entry's weight type.
type LoggedSet struct {
	SetNumber int
	Reps      int
	Type      SetType
	Load      *DirectLoad
	Plates    *PlateLoad
}

// Weight returns the usable weight of the set, or ok=false when the set has
// no weight recorded.
func (s LoggedSet) Weight() (float64, WeightUnit, bool) {
	switch {
	case s.Load != nil:
		return s.Load.Value, s.Load.Unit, true
	case s.Plates != nil:
		return s.Plates.TotalValue, s.Plates.TotalUnit, true
	default:
		return 0, "", false
	}
}

// DirectLoad is an entered weight for dumbbell and machine sets.
type DirectLoad struct {
	Value float64
	Unit  WeightUnit
}

// PlateLoad is a plate-derived weight for barbell and plate-loaded sets.
// The bar weight and the computed total are snapshots taken at logging time.
type PlateLoad struct {
	PerSide        []PlateCount
	BarWeightValue float64
	BarWeightUnit  WeightUnit
	TotalValue     float64
	TotalUnit      WeightUnit
}

// PlateCount counts one plate denomination loaded per bar side.
type PlateCount struct {
	PlateOptionID string
	CountPerSide  int
}

// normalizeName canonicalizes a workout name for identity comparison:
// trimmed, lowercased, inner whitespace collapsed.
func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// matchesTemplate reports whether a session entry belongs to the given
// template identity. The id match is primary; the normalized-name plus
// weight-type fallback keeps entries recognizable after their template was
// deleted and recreated. The fallback can merge two workouts that share a
// name and equipment, which is accepted behavior.
func matchesTemplate(t Template, e Entry) bool {
	if e.TemplateID == t.ID {
		return true
	}
	return normalizeName(e.WorkoutName) == normalizeName(t.Name) && e.WeightType == t.WeightType
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clampNonNegativeInt(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func clampSplitLength(weeks int) int {
	const maxSplitWeeks = 4
	if weeks < 1 {
		return 1
	}
	if weeks > maxSplitWeeks {
		return maxSplitWeeks
	}
	return weeks
}
