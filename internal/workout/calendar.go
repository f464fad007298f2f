package workout

import "time"

// startOfDay truncates a timestamp to midnight in its location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts whole calendar days from a to b. The count is done on
// dates pinned to UTC so daylight-saving shifts cannot skew it.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua) / (24 * time.Hour))
}

// SplitPosition maps a calendar date to its (week index, weekday) position
// in the rotating split. The anchor is the configuration creation date: day
// zero of week one. Dates before the anchor clamp to day zero. Week indexes
// cycle with period splitLengthWeeks*7 days.
func SplitPosition(anchor time.Time, splitLengthWeeks int, target time.Time) (int, Weekday) {
	splitLengthWeeks = clampSplitLength(splitLengthWeeks)
	days := daysBetween(startOfDay(anchor), startOfDay(target))
	if days < 0 {
		days = 0
	}
	weekIndex := (days/7)%splitLengthWeeks + 1
	return weekIndex, WeekdayOf(target)
}

// AutoSelectDay picks the day plan to display for the given date.
//
// The naive mapping wins when that week has a day configured for the
// weekday. Otherwise the next splitLengthWeeks*7 dates are scanned and the
// first one landing on a configured day is chosen. Failing that, the first
// configured day of the computed week is used, then the first configured day
// of the whole plan. ok=false means the plan has no configured days and the
// caller shows an empty state.
func AutoSelectDay(plan Plan, cfg Config, now time.Time) (Day, bool) {
	weekIndex, weekday := SplitPosition(cfg.CreatedAt, cfg.SplitLengthWeeks, now)
	if day, ok := plan.Day(weekIndex, weekday); ok {
		return day, true
	}

	window := clampSplitLength(cfg.SplitLengthWeeks) * 7
	for offset := 1; offset <= window; offset++ {
		candidate := now.AddDate(0, 0, offset)
		candidateWeek, candidateWeekday := SplitPosition(cfg.CreatedAt, cfg.SplitLengthWeeks, candidate)
		if day, ok := plan.Day(candidateWeek, candidateWeekday); ok {
			return day, true
		}
	}

	if week, ok := plan.Week(weekIndex); ok && len(week.Days) > 0 {
		return week.Days[0], true
	}
	return plan.FirstConfiguredDay()
}
