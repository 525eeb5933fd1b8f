package model

type SkillProgress struct {
	ChildID       int64  `json:"child_id"`
	Category      string `json:"category"`
	TotalPoints   int    `json:"total_points"`
	Level         int    `json:"level"`
	PercentToNext int    `json:"percent_to_next"`
}
