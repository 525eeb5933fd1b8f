package engine

import (
	"log/slog"
	"testing"
	"time"

	"github.com/marlowe/tally/internal/database"
	"github.com/marlowe/tally/internal/store"
)

// fixedClock pins time for deterministic logical dates.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type testEnv struct {
	engine   *Engine
	clock    *fixedClock
	children *store.ChildStore
	tasks    *store.TaskStore
	quests   *store.QuestStore
	rewards  *store.RewardStore
	salaries *store.SalaryStore
	settings *store.SettingsStore
}

func setupEngine(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.Default()
	clock := &fixedClock{now: time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)}

	settings := store.NewSettingsStore(db)
	tasks := store.NewTaskStore(db)
	rewards := store.NewRewardStore(db)
	quests := store.NewQuestStore(db)
	salaries := store.NewSalaryStore(db)

	questEngine := NewQuestEngine(quests, rewards, logger)
	streaks := NewStreakTracker(store.NewStreakStore(db))
	achievements := NewAchievementEvaluator(store.NewAchievementStore(db), rewards, logger)
	skills := NewSkillLeveler(store.NewSkillStore(db))
	payroll := NewPayrollCalculator(salaries, tasks, rewards)

	return &testEnv{
		engine:   New(settings, tasks, questEngine, streaks, achievements, skills, payroll, rewards, clock, logger),
		clock:    clock,
		children: store.NewChildStore(db),
		tasks:    tasks,
		quests:   quests,
		rewards:  rewards,
		salaries: salaries,
		settings: settings,
	}
}

func (env *testEnv) mustChild(t *testing.T, name string) int64 {
	t.Helper()
	child, err := env.children.Create(name, "#FF0000", "🦊")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	return child.ID
}

func (env *testEnv) mustTask(t *testing.T, childID int64, stars int) int64 {
	t.Helper()
	task, err := env.tasks.Create(childID, "Make bed", "bedroom", "07:30", "2024-03-06", stars, 0, false)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task.ID
}

func TestApproveTaskCreditsOnce(t *testing.T) {
	env := setupEngine(t)
	childID := env.mustChild(t, "Ada")
	taskID := env.mustTask(t, childID, 5)

	_, won, err := env.engine.ApproveTask(taskID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !won {
		t.Fatal("expected first approval to win the transition")
	}

	// Second approval loses the status check and must not credit again.
	_, won, err = env.engine.ApproveTask(taskID)
	if err != nil {
		t.Fatalf("second approve: %v", err)
	}
	if won {
		t.Fatal("expected second approval to be a no-op")
	}

	balance, err := env.rewards.Balance(childID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Stars != 5 {
		t.Errorf("stars = %d, want 5 (credited exactly once)", balance.Stars)
	}
}

func TestApproveTaskUnknownID(t *testing.T) {
	env := setupEngine(t)

	_, _, err := env.engine.ApproveTask(9999)
	if err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestApproveTaskAddsSkillPoints(t *testing.T) {
	env := setupEngine(t)
	childID := env.mustChild(t, "Ada")
	taskID := env.mustTask(t, childID, 12)

	if _, _, err := env.engine.ApproveTask(taskID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	progress, err := env.engine.Skills.Progress(childID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if len(progress) != 1 {
		t.Fatalf("expected 1 skill category, got %d", len(progress))
	}
	if progress[0].Category != "bedroom" {
		t.Errorf("category = %q, want %q", progress[0].Category, "bedroom")
	}
	if progress[0].TotalPoints != 12 {
		t.Errorf("total_points = %d, want 12", progress[0].TotalPoints)
	}
	if progress[0].Level != 2 {
		t.Errorf("level = %d, want 2", progress[0].Level)
	}
}

func TestApproveTaskUnlocksFirstAchievement(t *testing.T) {
	env := setupEngine(t)
	childID := env.mustChild(t, "Ada")
	taskID := env.mustTask(t, childID, 1)

	res, _, err := env.engine.ApproveTask(taskID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	found := false
	for _, a := range res.UnlockedAchievements {
		if a.ID == "first_task" {
			found = true
		}
	}
	if !found {
		t.Error("expected first_task achievement in approval result")
	}
}

func TestCompleteTaskRecordsStreak(t *testing.T) {
	env := setupEngine(t)
	childID := env.mustChild(t, "Ada")
	taskID := env.mustTask(t, childID, 3)

	streak, won, err := env.engine.CompleteTask(taskID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !won {
		t.Fatal("expected completion to win the transition")
	}
	if streak == nil || streak.CurrentStreak != 1 {
		t.Fatalf("streak = %+v, want current 1", streak)
	}

	// A repeated completion of the same task is a no-op.
	_, won, err = env.engine.CompleteTask(taskID)
	if err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if won {
		t.Error("expected second completion to be a no-op")
	}
}

func TestLogicalDateForUsesConfiguredBoundary(t *testing.T) {
	env := setupEngine(t)

	// Default boundary 04:00: half past one belongs to the previous day.
	env.clock.now = time.Date(2024, 3, 2, 1, 30, 0, 0, time.UTC)
	got := env.engine.LogicalDateFor(env.clock.now)
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("LogicalDateFor = %v, want %v", got, want)
	}
}

func TestRunDailyMaintenanceIdempotent(t *testing.T) {
	env := setupEngine(t)
	childID := env.mustChild(t, "Ada")

	if _, err := env.engine.RunDailyMaintenance(childID); err != nil {
		t.Fatalf("daily maintenance: %v", err)
	}
	if _, err := env.engine.RunDailyMaintenance(childID); err != nil {
		t.Fatalf("second daily maintenance: %v", err)
	}

	quests, err := env.quests.ListByChild(childID)
	if err != nil {
		t.Fatalf("list quests: %v", err)
	}

	seen := make(map[string]int)
	for _, q := range quests {
		seen[q.TemplateKey]++
	}
	for key, count := range seen {
		if count != 1 {
			t.Errorf("template %q instantiated %d times, want 1", key, count)
		}
	}
}
