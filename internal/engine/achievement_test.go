package engine

import (
	"testing"
)

func approveTasks(t *testing.T, env *testEnv, childID int64, n, stars int) {
	t.Helper()
	for i := 0; i < n; i++ {
		taskID := env.mustTask(t, childID, stars)
		if _, _, err := env.engine.ApproveTask(taskID); err != nil {
			t.Fatalf("approve task: %v", err)
		}
	}
}

func TestEvaluateUnlocksOnce(t *testing.T) {
	env := setupEngine(t)
	childID := env.mustChild(t, "Ada")
	evaluator := env.engine.Achievements

	approveTasks(t, env, childID, 1, 2)

	// ApproveTask already evaluated; a redundant evaluation unlocks nothing
	// new and issues no second reward.
	unlocked, err := evaluator.Evaluate(childID)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(unlocked) != 0 {
		t.Errorf("redundant evaluate unlocked %d achievements, want 0", len(unlocked))
	}

	rows, err := env.engine.Achievements.achievements.ListUnlocked(childID)
	if err != nil {
		t.Fatalf("list unlocked: %v", err)
	}
	count := 0
	for _, u := range rows {
		if u.AchievementID == "first_task" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("first_task unlocked %d times, want 1", count)
	}

	// first_task pays 1 gem, once.
	balance, err := env.rewards.Balance(childID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Gems != 1 {
		t.Errorf("gems = %d, want exactly 1 from first_task", balance.Gems)
	}
}

func TestEvaluateThresholdProgression(t *testing.T) {
	env := setupEngine(t)
	childID := env.mustChild(t, "Ada")

	approveTasks(t, env, childID, 10, 0)

	rows, err := env.engine.Achievements.achievements.ListUnlocked(childID)
	if err != nil {
		t.Fatalf("list unlocked: %v", err)
	}

	got := make(map[string]bool)
	for _, u := range rows {
		got[u.AchievementID] = true
	}
	if !got["first_task"] || !got["task_ten"] {
		t.Errorf("unlocked = %v, want first_task and task_ten", got)
	}
	if got["task_fifty"] {
		t.Error("task_fifty unlocked at 10 approvals")
	}
}

func TestEvaluateStreakAchievement(t *testing.T) {
	env := setupEngine(t)
	childID := env.mustChild(t, "Ada")

	// Build a 7-day streak directly through the tracker.
	for day := 1; day <= 7; day++ {
		at := env.clock.now.AddDate(0, 0, day-7)
		if _, err := env.engine.Streaks.Record(childID, at, "04:00"); err != nil {
			t.Fatalf("record day %d: %v", day, err)
		}
	}

	unlocked, err := env.engine.Achievements.Evaluate(childID)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	found := false
	for _, a := range unlocked {
		if a.ID == "streak_week" {
			found = true
		}
	}
	if !found {
		t.Error("expected streak_week to unlock at a 7-day streak")
	}
}
