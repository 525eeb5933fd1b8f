// Package schedule implements the family's logical-day boundary: a day that
// starts at a configurable time instead of midnight, and an ordering for
// scheduled times that wraps across that boundary.
package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/marlowe/tally/internal/model"
)

const minutesPerDay = 24 * 60

// unscheduledSortValue sorts unscheduled items after every scheduled one.
const unscheduledSortValue = 9999

// ParseClock parses an HH:MM string into minutes since midnight.
func ParseClock(s string) (int, error) {
	h, m, ok := splitClock(s)
	if !ok {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	return h*60 + m, nil
}

// ValidateDayStart reports whether s is a usable day-start time. Save paths
// must reject invalid values; read paths fall back to the default instead.
func ValidateDayStart(s string) error {
	_, err := ParseClock(s)
	return err
}

func splitClock(s string) (h, m int, ok bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}
	m, err = strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

// dayStartMinutes parses dayStart, falling back to the default on bad input.
// Display paths must keep working even if settings hold a mangled value.
func dayStartMinutes(dayStart string) int {
	mins, err := ParseClock(dayStart)
	if err != nil {
		mins, _ = ParseClock(model.DefaultDayStartTime)
	}
	return mins
}

// LogicalDate returns the logical calendar date the timestamp belongs to.
// Times strictly before the day-start boundary count as the previous day;
// a timestamp exactly at the boundary belongs to the new day.
func LogicalDate(t time.Time, dayStart string) time.Time {
	boundary := dayStartMinutes(dayStart)
	tod := t.Hour()*60 + t.Minute()
	date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	if tod < boundary {
		return date.AddDate(0, 0, -1)
	}
	return date
}

// ChronoSortValue returns an ordering key for an HH:MM scheduled time under
// the given day start. Times from the day start onward rank first (0..),
// times between midnight and the day start rank after them as the late-night
// tail of the logical day. Empty or unparseable times sort last.
func ChronoSortValue(timeStr, dayStart string) int {
	mins, err := ParseClock(timeStr)
	if err != nil {
		return unscheduledSortValue
	}
	d := mins - dayStartMinutes(dayStart)
	if d < 0 {
		d += minutesPerDay
	}
	return d
}

// SortTasks returns a new slice of tasks in chronological display order for
// the given day start. The sort is stable: tasks with equal keys, including
// unscheduled tasks, keep their relative input order.
func SortTasks(tasks []model.Task, dayStart string) []model.Task {
	sorted := make([]model.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return ChronoSortValue(sorted[i].ScheduledTime, dayStart) < ChronoSortValue(sorted[j].ScheduledTime, dayStart)
	})
	return sorted
}

// DateString formats a date as the YYYY-MM-DD form stored in the database.
func DateString(t time.Time) string {
	return t.Format("2006-01-02")
}

// WeekStart returns the Monday beginning the ISO week containing date.
func WeekStart(date time.Time) time.Time {
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started 6 days earlier
	}
	return date.AddDate(0, 0, 1-weekday)
}
