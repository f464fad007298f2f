package workout

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// TrendPoint is one session's aggregate for a trend series. PeakWeight is
// nil when no matching set carried a usable weight, which charts render as
// a gap rather than zero.
type TrendPoint struct {
	Index      int
	Date       time.Time
	PeakWeight *float64
	Unit       WeightUnit
	PeakReps   int
}

// TrendSeries is the time series of one workout identity across all
// sessions. A series with no points is a valid empty state for a workout
// that has never been logged.
type TrendSeries struct {
	Name       string
	WeightType WeightType
	Unit       WeightUnit
	Points     []TrendPoint
}

// trendIdentity is the equivalence class key for grouping templates into
// one series. Plate-picker types group regardless of unit because their
// totals always carry their own unit snapshot.
type trendIdentity struct {
	name       string
	weightType WeightType
	unit       WeightUnit
}

func identityOf(t Template) trendIdentity {
	key := trendIdentity{
		name:       normalizeName(t.Name),
		weightType: t.WeightType,
	}
	if !t.WeightType.UsesPlatePicker() {
		key.unit = t.PreferredUnit
	}
	return key
}

// matchesIdentity mirrors the duplicate-detection fallback: template id
// membership first, then normalized name plus weight type. The fallback
// keeps entries whose template was deleted and recreated in the series.
func (key trendIdentity) matches(ids map[string]bool, e Entry) bool {
	if ids[e.TemplateID] {
		return true
	}
	return normalizeName(e.WorkoutName) == key.name && e.WeightType == key.weightType
}

// Trends builds one series per active workout identity across the full
// session history. Archived templates are excluded; two templates sharing a
// normalized name and weight type collapse into one series.
func (s *Service) Trends(ctx context.Context) ([]TrendSeries, error) {
	templates, err := s.repo.plan.ActiveTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active templates: %w", err)
	}
	sessions, err := s.repo.sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	type group struct {
		series TrendSeries
		ids    map[string]bool
	}
	groups := make(map[trendIdentity]*group)
	var order []trendIdentity
	for _, t := range templates {
		key := identityOf(t)
		g, ok := groups[key]
		if !ok {
			g = &group{
				series: TrendSeries{
					Name:       t.Name,
					WeightType: t.WeightType,
					Unit:       t.PreferredUnit,
				},
				ids: make(map[string]bool),
			}
			groups[key] = g
			order = append(order, key)
		}
		g.ids[t.ID] = true
	}

	for _, sess := range sessions {
		for key, g := range groups {
			var matching []Entry
			for _, entry := range sess.Entries {
				if key.matches(g.ids, entry) {
					matching = append(matching, entry)
				}
			}
			if len(matching) == 0 {
				continue
			}
			g.series.Points = append(g.series.Points, trendPoint(len(g.series.Points), sess.Date, matching))
		}
	}

	series := make([]TrendSeries, 0, len(order))
	for _, key := range order {
		series = append(series, groups[key].series)
	}
	sort.SliceStable(series, func(i, j int) bool {
		ni, nj := normalizeName(series[i].Name), normalizeName(series[j].Name)
		if ni != nj {
			return ni < nj
		}
		return weightTypeOrder[series[i].WeightType] < weightTypeOrder[series[j].WeightType]
	})
	return series, nil
}

// trendPoint aggregates one session's matching entries: the heaviest set
// across all of them, compared under unit conversion, and the highest rep
// count.
func trendPoint(index int, date time.Time, entries []Entry) TrendPoint {
	point := TrendPoint{Index: index, Date: date}
	for _, entry := range entries {
		for _, set := range entry.Sets {
			if set.Reps > point.PeakReps {
				point.PeakReps = set.Reps
			}
			value, unit, ok := set.Weight()
			if !ok {
				continue
			}
			if point.PeakWeight == nil || Convert(value, unit, point.Unit) > *point.PeakWeight {
				v := value
				point.PeakWeight = &v
				point.Unit = unit
			}
		}
	}
	return point
}
