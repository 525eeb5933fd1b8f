package model

import "time"

const (
	QuestDaily   = "daily"
	QuestWeekly  = "weekly"
	QuestSpecial = "special"
)

// Quest metrics decide which events advance a quest's progress.
const (
	MetricTaskCount = "task_count"
	MetricStarCount = "star_count"
	MetricCheckIn   = "check_in"
)

// QuestTemplate is a row of the quest catalog. One quest per template is
// instantiated per child per generation period.
type QuestTemplate struct {
	Key         string `json:"key"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Metric      string `json:"metric"`
	TargetValue int    `json:"target_value"`
	RewardStars int    `json:"reward_stars"`
	RewardGems  int    `json:"reward_gems"`
}

type Quest struct {
	ID           int64     `json:"id"`
	ChildID      int64     `json:"child_id"`
	TemplateKey  string    `json:"template_key"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Metric       string    `json:"metric"`
	TargetValue  int       `json:"target_value"`
	CurrentValue int       `json:"current_value"`
	RewardStars  int       `json:"reward_stars"`
	RewardGems   int       `json:"reward_gems"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	IsCompleted  bool      `json:"is_completed"`
	CreatedAt    time.Time `json:"created_at"`
}
