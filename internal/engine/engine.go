// Package engine turns task lifecycle events into quest progress, streak
// updates, achievement unlocks, skill points, and weekly payroll. Every
// exactly-once transition lives behind a conditional write in the store
// layer; the engine orchestrates and never read-modify-writes a counter.
package engine

import (
	"errors"
	"log/slog"
	"time"

	"github.com/marlowe/tally/internal/model"
	"github.com/marlowe/tally/internal/schedule"
	"github.com/marlowe/tally/internal/store"
)

var (
	// ErrNotFound is returned when the child, task, or config being operated
	// on does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyPaid is returned when a salary payment already exists for the
	// week. Callers treat it as "done", not as a failure.
	ErrAlreadyPaid = errors.New("salary already paid for week")

	// ErrNoSalaryConfig is returned when paying a child with no configured
	// salary formula.
	ErrNoSalaryConfig = errors.New("no salary config for child")
)

// Clock supplies the current time so tests can pin it.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// RewardSink deposits currency into a child's balance. Implementations must
// make each call a single atomic credit.
type RewardSink interface {
	Credit(childID int64, stars, gems int, source string) error
}

// ApprovalResult collects the progression side effects of one approval so the
// caller can present them (quest completion fanfare, achievement toasts).
type ApprovalResult struct {
	Task                 *model.Task
	CompletedQuests      []model.Quest
	UnlockedAchievements []model.Achievement
}

// Engine fans task lifecycle events out to the progression services.
type Engine struct {
	settings *store.SettingsStore
	tasks    *store.TaskStore

	Quests       *QuestEngine
	Streaks      *StreakTracker
	Achievements *AchievementEvaluator
	Skills       *SkillLeveler
	Payroll      *PayrollCalculator

	rewards RewardSink
	clock   Clock
	logger  *slog.Logger
}

func New(settings *store.SettingsStore, tasks *store.TaskStore, quests *QuestEngine, streaks *StreakTracker, achievements *AchievementEvaluator, skills *SkillLeveler, payroll *PayrollCalculator, rewards RewardSink, clock Clock, logger *slog.Logger) *Engine {
	return &Engine{
		settings:     settings,
		tasks:        tasks,
		Quests:       quests,
		Streaks:      streaks,
		Achievements: achievements,
		Skills:       skills,
		Payroll:      payroll,
		rewards:      rewards,
		clock:        clock,
		logger:       logger,
	}
}

func (e *Engine) dayStart() string {
	cfg, err := e.settings.TimeConfig()
	if err != nil {
		e.logger.Error("load time config", "error", err)
		return model.DefaultDayStartTime
	}
	return cfg.DayStartTime
}

// LogicalDateFor returns the logical date a timestamp belongs to under the
// family's configured day boundary.
func (e *Engine) LogicalDateFor(t time.Time) time.Time {
	return schedule.LogicalDate(t, e.dayStart())
}

// Today returns the current logical date as a YYYY-MM-DD string.
func (e *Engine) Today() string {
	return schedule.DateString(e.LogicalDateFor(e.clock.Now()))
}

// SortForDisplay orders tasks chronologically across the day boundary.
func (e *Engine) SortForDisplay(tasks []model.Task) []model.Task {
	return schedule.SortTasks(tasks, e.dayStart())
}

// ApproveTask wins the pending/completed -> approved transition and runs the
// reward fan-out. A lost transition (someone else approved first, or the
// task is already terminal) returns ErrNotFound semantics via ok=false.
//
// The task's own stars and gems are the primary reward and are credited
// first. Quest advancement, skill points, and achievement evaluation are
// best-effort: a failure there is logged but never rolls back or blocks the
// approval itself.
func (e *Engine) ApproveTask(taskID int64) (*ApprovalResult, bool, error) {
	task, err := e.tasks.GetByID(taskID)
	if err != nil {
		return nil, false, err
	}
	if task == nil {
		return nil, false, ErrNotFound
	}

	won, err := e.tasks.MarkApproved(taskID, e.clock.Now())
	if err != nil {
		return nil, false, err
	}
	if !won {
		return nil, false, nil
	}

	res := &ApprovalResult{}

	if err := e.rewards.Credit(task.ChildID, task.StarValue, task.GemValue, "task:"+task.Title); err != nil {
		// The approval is committed; surface the credit failure.
		return nil, true, err
	}

	today := schedule.DateString(e.LogicalDateFor(e.clock.Now()))

	completed, err := e.Quests.Advance(task.ChildID, EventTaskApproved, task.StarValue, today)
	if err != nil {
		e.logger.Error("advance quests", "child_id", task.ChildID, "error", err)
	}
	res.CompletedQuests = completed

	if err := e.Skills.AddPoints(task.ChildID, task.Category, task.StarValue); err != nil {
		e.logger.Error("add skill points", "child_id", task.ChildID, "category", task.Category, "error", err)
	}

	unlocked, err := e.Achievements.Evaluate(task.ChildID)
	if err != nil {
		e.logger.Error("evaluate achievements", "child_id", task.ChildID, "error", err)
	}
	res.UnlockedAchievements = unlocked

	task, err = e.tasks.GetByID(taskID)
	if err != nil {
		e.logger.Error("reload task", "task_id", taskID, "error", err)
	}
	res.Task = task

	return res, true, nil
}

// CompleteTask wins the pending -> completed transition and records the
// child's streak for the completion's logical day.
func (e *Engine) CompleteTask(taskID int64) (*model.Streak, bool, error) {
	task, err := e.tasks.GetByID(taskID)
	if err != nil {
		return nil, false, err
	}
	if task == nil {
		return nil, false, ErrNotFound
	}

	won, err := e.tasks.MarkCompleted(taskID, e.clock.Now())
	if err != nil {
		return nil, false, err
	}
	if !won {
		return nil, false, nil
	}

	streak, err := e.Streaks.Record(task.ChildID, e.clock.Now(), e.dayStart())
	if err != nil {
		// Completion is committed; the streak is best-effort.
		e.logger.Error("record streak", "child_id", task.ChildID, "error", err)
	}
	return streak, true, nil
}

// RunDailyMaintenance generates today's daily quests, counts the daily
// check-in, and expires anything past its end date. Safe to call repeatedly.
func (e *Engine) RunDailyMaintenance(childID int64) ([]model.Quest, error) {
	today := e.LogicalDateFor(e.clock.Now())

	if _, err := e.Quests.GenerateDaily(childID, today); err != nil {
		return nil, err
	}
	if _, err := e.Quests.ExpireOld(childID, today); err != nil {
		return nil, err
	}
	return e.Quests.Advance(childID, EventDailyCheck, 0, schedule.DateString(today))
}

// RunWeeklyMaintenance generates this week's weekly quests and expires stale
// ones. Safe to call repeatedly.
func (e *Engine) RunWeeklyMaintenance(childID int64) error {
	today := e.LogicalDateFor(e.clock.Now())

	if _, err := e.Quests.GenerateWeekly(childID, schedule.WeekStart(today)); err != nil {
		return err
	}
	_, err := e.Quests.ExpireOld(childID, today)
	return err
}

// PayWeeklySalary computes and records the payout for the week starting at
// weekStart. A duplicate call returns ErrAlreadyPaid.
func (e *Engine) PayWeeklySalary(childID int64, weekStart time.Time) (*model.SalaryPayment, error) {
	return e.Payroll.Pay(childID, weekStart)
}
