package store

import (
	"testing"
	"time"
)

func setupTaskTest(t *testing.T) (*TaskStore, int64) {
	t.Helper()
	db := setupTestDB(t)
	child, err := NewChildStore(db).Create("Ada", "#FF0000", "")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	return NewTaskStore(db), child.ID
}

func TestTaskCRUD(t *testing.T) {
	ts, childID := setupTaskTest(t)

	task, err := ts.Create(childID, "Make bed", "bedroom", "07:30", "2024-03-06", 5, 1, false)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Status != "pending" {
		t.Errorf("status = %q, want pending", task.Status)
	}
	if task.StarValue != 5 || task.GemValue != 1 {
		t.Errorf("values = %d/%d, want 5/1", task.StarValue, task.GemValue)
	}

	updated, err := ts.Update(task.ID, "Make bed well", "bedroom", "", 6, 1, true)
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if updated.Title != "Make bed well" {
		t.Errorf("title = %q, want %q", updated.Title, "Make bed well")
	}
	if !updated.IsBonus {
		t.Error("expected is_bonus after update")
	}
	if updated.ScheduledTime != "" {
		t.Errorf("scheduled_time = %q, want empty", updated.ScheduledTime)
	}

	if err := ts.Delete(task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	got, err := ts.GetByID(task.ID)
	if err != nil {
		t.Fatalf("get deleted task: %v", err)
	}
	if got != nil {
		t.Error("expected nil for deleted task")
	}
}

func TestTaskTransitions(t *testing.T) {
	ts, childID := setupTaskTest(t)
	now := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)

	task, err := ts.Create(childID, "Make bed", "bedroom", "", "2024-03-06", 3, 0, false)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	won, err := ts.MarkCompleted(task.ID, now)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !won {
		t.Fatal("expected pending -> completed to win")
	}

	// Completing twice loses the status check.
	won, err = ts.MarkCompleted(task.ID, now)
	if err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if won {
		t.Error("expected second complete to be a no-op")
	}

	won, err = ts.MarkApproved(task.ID, now)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !won {
		t.Fatal("expected completed -> approved to win")
	}

	// Approved is terminal: no further transitions win.
	won, _ = ts.MarkApproved(task.ID, now)
	if won {
		t.Error("re-approved a terminal task")
	}
	won, _ = ts.MarkRejected(task.ID)
	if won {
		t.Error("rejected a terminal task")
	}

	got, err := ts.GetByID(task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Status != "approved" {
		t.Errorf("status = %q, want approved", got.Status)
	}
	if got.CompletedAt == nil || got.ApprovedAt == nil {
		t.Error("expected completed_at and approved_at to be set")
	}
}

func TestTaskRejectAndReset(t *testing.T) {
	ts, childID := setupTaskTest(t)

	task, err := ts.Create(childID, "Make bed", "bedroom", "", "2024-03-06", 3, 0, false)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	won, err := ts.MarkRejected(task.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if !won {
		t.Fatal("expected pending -> rejected to win")
	}

	// Only rejected tasks reopen.
	won, err = ts.ResetToPending(task.ID)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !won {
		t.Fatal("expected rejected -> pending to win")
	}
	won, _ = ts.ResetToPending(task.ID)
	if won {
		t.Error("reset a pending task")
	}

	got, _ := ts.GetByID(task.ID)
	if got.Status != "pending" {
		t.Errorf("status = %q, want pending", got.Status)
	}
}

func TestTaskWeekCounts(t *testing.T) {
	ts, childID := setupTaskTest(t)
	now := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)

	inWeek, _ := ts.Create(childID, "A", "general", "", "2024-03-04", 1, 0, false)
	ts.Create(childID, "B", "general", "", "2024-03-06", 1, 0, false)
	ts.Create(childID, "Bonus", "general", "", "2024-03-06", 1, 0, true)
	ts.Create(childID, "Next week", "general", "", "2024-03-11", 1, 0, false)

	if _, err := ts.MarkApproved(inWeek.ID, now); err != nil {
		t.Fatalf("approve: %v", err)
	}

	approved, total, err := ts.WeekCounts(childID, "2024-03-04", "2024-03-11")
	if err != nil {
		t.Fatalf("week counts: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2 (bonus and out-of-week excluded)", total)
	}
	if approved != 1 {
		t.Errorf("approved = %d, want 1", approved)
	}
}

func TestTaskListForDateRange(t *testing.T) {
	ts, childID := setupTaskTest(t)

	ts.Create(childID, "A", "general", "", "2024-03-04", 1, 0, false)
	ts.Create(childID, "B", "general", "", "2024-03-06", 1, 0, false)
	ts.Create(childID, "C", "general", "", "2024-03-11", 1, 0, false)

	tasks, err := ts.ListForDateRange(childID, "2024-03-04", "2024-03-11")
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks in [start, end), got %d", len(tasks))
	}

	single, err := ts.ListForDate(childID, "2024-03-06")
	if err != nil {
		t.Fatalf("list for date: %v", err)
	}
	if len(single) != 1 || single[0].Title != "B" {
		t.Errorf("list for date = %v, want just B", single)
	}
}
