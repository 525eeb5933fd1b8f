package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/marlowe/tally/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskCols = `id, child_id, title, category, scheduled_time, logical_date, star_value, gem_value, is_bonus, status, completed_at, approved_at, created_at, updated_at`

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var isBonus int
	var completedAt, approvedAt sql.NullTime

	err := scanner.Scan(
		&t.ID, &t.ChildID, &t.Title, &t.Category, &t.ScheduledTime, &t.LogicalDate,
		&t.StarValue, &t.GemValue, &isBonus, &t.Status, &completedAt, &approvedAt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.IsBonus = isBonus != 0
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	if approvedAt.Valid {
		t.ApprovedAt = &approvedAt.Time
	}
	return &t, nil
}

func (s *TaskStore) Create(childID int64, title, category, scheduledTime, logicalDate string, starValue, gemValue int, isBonus bool) (*model.Task, error) {
	var bonus int
	if isBonus {
		bonus = 1
	}

	result, err := s.db.Exec(
		`INSERT INTO tasks (child_id, title, category, scheduled_time, logical_date, star_value, gem_value, is_bonus)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		childID, title, category, scheduledTime, logicalDate, starValue, gemValue, bonus,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListForDate returns a child's tasks on one logical date, unordered; display
// ordering is the schedule package's job.
func (s *TaskStore) ListForDate(childID int64, logicalDate string) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE child_id = ? AND logical_date = ? ORDER BY id`,
		childID, logicalDate,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks for date: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// ListForDateRange returns a child's tasks with logical dates in [start, end).
func (s *TaskStore) ListForDateRange(childID int64, start, end string) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE child_id = ? AND logical_date >= ? AND logical_date < ? ORDER BY logical_date, id`,
		childID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks for range: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func collectTasks(rows *sql.Rows) ([]model.Task, error) {
	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) Update(id int64, title, category, scheduledTime string, starValue, gemValue int, isBonus bool) (*model.Task, error) {
	var bonus int
	if isBonus {
		bonus = 1
	}
	_, err := s.db.Exec(
		`UPDATE tasks SET title = ?, category = ?, scheduled_time = ?, star_value = ?, gem_value = ?, is_bonus = ?, updated_at = datetime('now') WHERE id = ?`,
		title, category, scheduledTime, starValue, gemValue, bonus, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// MarkCompleted moves a pending task to completed. The status check and the
// write are one statement, so two clients can't both claim the transition.
func (s *TaskStore) MarkCompleted(id int64, at time.Time) (bool, error) {
	return s.transition(
		`UPDATE tasks SET status = 'completed', completed_at = ?, updated_at = datetime('now')
		 WHERE id = ? AND status = 'pending'`,
		at.UTC(), id,
	)
}

// MarkApproved moves a pending or completed task to approved. The returned
// bool reports whether this call won the transition; reward side effects must
// run only for the winner.
func (s *TaskStore) MarkApproved(id int64, at time.Time) (bool, error) {
	return s.transition(
		`UPDATE tasks SET status = 'approved', approved_at = ?, updated_at = datetime('now')
		 WHERE id = ? AND status IN ('pending', 'completed')`,
		at.UTC(), id,
	)
}

// MarkRejected moves a pending or completed task to rejected.
func (s *TaskStore) MarkRejected(id int64) (bool, error) {
	return s.transition(
		`UPDATE tasks SET status = 'rejected', updated_at = datetime('now')
		 WHERE id = ? AND status IN ('pending', 'completed')`,
		id,
	)
}

// ResetToPending reopens a rejected task.
func (s *TaskStore) ResetToPending(id int64) (bool, error) {
	return s.transition(
		`UPDATE tasks SET status = 'pending', completed_at = NULL, updated_at = datetime('now')
		 WHERE id = ? AND status = 'rejected'`,
		id,
	)
}

func (s *TaskStore) transition(query string, args ...any) (bool, error) {
	result, err := s.db.Exec(query, args...)
	if err != nil {
		return false, fmt.Errorf("task transition: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// WeekCounts returns the approved and total non-bonus task counts for the
// logical week starting at weekStart. Bonus tasks never count against the
// completion rate.
func (s *TaskStore) WeekCounts(childID int64, weekStart, weekEnd string) (approved, total int, err error) {
	err = s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(status = 'approved'), 0)
		 FROM tasks
		 WHERE child_id = ? AND logical_date >= ? AND logical_date < ? AND is_bonus = 0`,
		childID, weekStart, weekEnd,
	).Scan(&total, &approved)
	if err != nil {
		return 0, 0, fmt.Errorf("week counts: %w", err)
	}
	return approved, total, nil
}
