package schedule

import (
	"testing"
	"time"

	"github.com/marlowe/tally/internal/model"
)

func TestLogicalDateBeforeBoundary(t *testing.T) {
	// 1:30 AM with a 4 AM day start still belongs to the previous day.
	ts := time.Date(2024, 3, 2, 1, 30, 0, 0, time.UTC)
	got := LogicalDate(ts, "04:00")
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("LogicalDate = %v, want %v", got, want)
	}
}

func TestLogicalDateAfterBoundary(t *testing.T) {
	ts := time.Date(2024, 3, 2, 5, 0, 0, 0, time.UTC)
	got := LogicalDate(ts, "04:00")
	want := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("LogicalDate = %v, want %v", got, want)
	}
}

func TestLogicalDateExactlyAtBoundary(t *testing.T) {
	// The boundary is inclusive on the new-day side.
	ts := time.Date(2024, 3, 2, 4, 0, 0, 0, time.UTC)
	got := LogicalDate(ts, "04:00")
	want := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("LogicalDate = %v, want %v", got, want)
	}
}

func TestLogicalDateMidnightStart(t *testing.T) {
	// A 00:00 day start degenerates to the ordinary calendar date.
	ts := time.Date(2024, 3, 2, 0, 30, 0, 0, time.UTC)
	got := LogicalDate(ts, "00:00")
	want := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("LogicalDate = %v, want %v", got, want)
	}
}

func TestLogicalDateInvalidDayStartFallsBack(t *testing.T) {
	// Garbage day start behaves like the 04:00 default.
	ts := time.Date(2024, 3, 2, 1, 30, 0, 0, time.UTC)
	got := LogicalDate(ts, "whenever")
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("LogicalDate = %v, want %v", got, want)
	}
}

func TestChronoSortValueWrap(t *testing.T) {
	// With a 4 AM start: 04:00 ranks first, 23:00 later, 03:00 last.
	v4 := ChronoSortValue("04:00", "04:00")
	v23 := ChronoSortValue("23:00", "04:00")
	v3 := ChronoSortValue("03:00", "04:00")

	if v4 != 0 {
		t.Errorf("ChronoSortValue(04:00) = %d, want 0", v4)
	}
	if !(v3 > v23 && v23 > v4) {
		t.Errorf("expected 03:00 (%d) > 23:00 (%d) > 04:00 (%d)", v3, v23, v4)
	}
}

func TestChronoSortValueUnscheduled(t *testing.T) {
	empty := ChronoSortValue("", "04:00")
	if empty != unscheduledSortValue {
		t.Errorf("ChronoSortValue(\"\") = %d, want %d", empty, unscheduledSortValue)
	}
	// Late-night tail still ranks before unscheduled.
	if v := ChronoSortValue("03:59", "04:00"); v >= empty {
		t.Errorf("03:59 (%d) should sort before unscheduled (%d)", v, empty)
	}
}

func TestChronoSortValueMidnightStart(t *testing.T) {
	if v := ChronoSortValue("00:00", "00:00"); v != 0 {
		t.Errorf("ChronoSortValue(00:00, 00:00) = %d, want 0", v)
	}
	if v := ChronoSortValue("23:59", "00:00"); v != 23*60+59 {
		t.Errorf("ChronoSortValue(23:59, 00:00) = %d, want %d", v, 23*60+59)
	}
}

func TestSortTasksOrder(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, ScheduledTime: "03:00"},
		{ID: 2, ScheduledTime: "07:30"},
		{ID: 3, ScheduledTime: "22:00"},
		{ID: 4, ScheduledTime: "04:00"},
	}

	sorted := SortTasks(tasks, "04:00")

	want := []int64{4, 2, 3, 1}
	for i, id := range want {
		if sorted[i].ID != id {
			t.Errorf("sorted[%d].ID = %d, want %d", i, sorted[i].ID, id)
		}
	}
}

func TestSortTasksStableForUnscheduled(t *testing.T) {
	tasks := []model.Task{
		{ID: 1},
		{ID: 2, ScheduledTime: "09:00"},
		{ID: 3},
	}

	sorted := SortTasks(tasks, "04:00")

	if sorted[0].ID != 2 {
		t.Fatalf("scheduled task should sort first, got id %d", sorted[0].ID)
	}
	// The two unscheduled tasks keep their original relative order.
	if sorted[1].ID != 1 || sorted[2].ID != 3 {
		t.Errorf("unscheduled order = [%d, %d], want [1, 3]", sorted[1].ID, sorted[2].ID)
	}
}

func TestSortTasksDoesNotMutateInput(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, ScheduledTime: "03:00"},
		{ID: 2, ScheduledTime: "05:00"},
	}

	SortTasks(tasks, "04:00")

	if tasks[0].ID != 1 || tasks[1].ID != 2 {
		t.Error("input slice was reordered")
	}
}

func TestValidateDayStart(t *testing.T) {
	for _, valid := range []string{"00:00", "04:00", "23:59"} {
		if err := ValidateDayStart(valid); err != nil {
			t.Errorf("ValidateDayStart(%q) = %v, want nil", valid, err)
		}
	}
	for _, invalid := range []string{"", "24:00", "4 am", "12:60", "noon"} {
		if err := ValidateDayStart(invalid); err == nil {
			t.Errorf("ValidateDayStart(%q) = nil, want error", invalid)
		}
	}
}

func TestWeekStart(t *testing.T) {
	// Wednesday 2024-03-06 -> Monday 2024-03-04.
	got := WeekStart(time.Date(2024, 3, 6, 15, 0, 0, 0, time.UTC))
	want := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("WeekStart = %v, want %v", got, want)
	}

	// Sunday 2024-03-10 belongs to the week starting Monday 2024-03-04.
	got = WeekStart(time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC))
	if !got.Equal(want) {
		t.Errorf("WeekStart(Sunday) = %v, want %v", got, want)
	}

	// A Monday is its own week start.
	got = WeekStart(want)
	if !got.Equal(want) {
		t.Errorf("WeekStart(Monday) = %v, want %v", got, want)
	}
}
