package model

type Streak struct {
	ChildID         int64  `json:"child_id"`
	StreakType      string `json:"streak_type"`
	CurrentStreak   int    `json:"current_streak"`
	LongestStreak   int    `json:"longest_streak"`
	LastCountedDate string `json:"last_counted_date"`
}
