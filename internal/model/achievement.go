package model

import "time"

// Achievement metrics evaluated against a child's aggregate statistics.
const (
	StatTasksApproved   = "tasks_approved"
	StatLifetimeStars   = "lifetime_stars"
	StatCurrentStreak   = "current_streak"
	StatGemBalance      = "gem_balance"
	StatQuestsCompleted = "quests_completed"
)

// Achievement is an immutable catalog entry. The unlock predicate is
// "stat named by Metric >= Threshold".
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Metric      string `json:"metric"`
	Threshold   int    `json:"threshold"`
	RewardGems  int    `json:"reward_gems"`
}

type UnlockedAchievement struct {
	ChildID       int64     `json:"child_id"`
	AchievementID string    `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

// ChildStats are the aggregates achievement predicates run against.
type ChildStats struct {
	TasksApproved   int `json:"tasks_approved"`
	LifetimeStars   int `json:"lifetime_stars"`
	CurrentStreak   int `json:"current_streak"`
	GemBalance      int `json:"gem_balance"`
	QuestsCompleted int `json:"quests_completed"`
}

// Stat returns the aggregate named by metric, or 0 for unknown metrics.
func (s ChildStats) Stat(metric string) int {
	switch metric {
	case StatTasksApproved:
		return s.TasksApproved
	case StatLifetimeStars:
		return s.LifetimeStars
	case StatCurrentStreak:
		return s.CurrentStreak
	case StatGemBalance:
		return s.GemBalance
	case StatQuestsCompleted:
		return s.QuestsCompleted
	default:
		return 0
	}
}
