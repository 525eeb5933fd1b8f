package model

import "time"

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
	TaskApproved  TaskStatus = "approved"
	TaskRejected  TaskStatus = "rejected"
)

// Task is a single scheduled item on a child's list. LogicalDate is the
// day-boundary-adjusted date assigned when the task is created; ScheduledTime
// is an optional HH:MM string, empty for unscheduled tasks.
type Task struct {
	ID            int64      `json:"id"`
	ChildID       int64      `json:"child_id"`
	Title         string     `json:"title"`
	Category      string     `json:"category"`
	ScheduledTime string     `json:"scheduled_time"`
	LogicalDate   string     `json:"logical_date"`
	StarValue     int        `json:"star_value"`
	GemValue      int        `json:"gem_value"`
	IsBonus       bool       `json:"is_bonus"`
	Status        TaskStatus `json:"status"`
	CompletedAt   *time.Time `json:"completed_at"`
	ApprovedAt    *time.Time `json:"approved_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
