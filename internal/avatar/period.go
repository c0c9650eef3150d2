package avatar

import "time"

// ComputePeriodKey returns the Monday of the week containing t, at midnight
// UTC. Sunday belongs to the week that started six days earlier, so a Sunday
// input maps to the previous Monday.
func ComputePeriodKey(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := t.AddDate(0, 0, -(weekday - 1))
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
}

// PeriodKeyString formats a period key the way it appears in asset keys and
// logs.
func PeriodKeyString(periodKey time.Time) string {
	return periodKey.Format("2006-01-02")
}
