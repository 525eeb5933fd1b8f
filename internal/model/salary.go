package model

import "time"

// SalaryConfig holds the per-child weekly payout formula. PayDay is the
// weekday payments are expected on (0 = Sunday).
type SalaryConfig struct {
	ChildID           int64     `json:"child_id"`
	BaseAmount        float64   `json:"base_amount"`
	MinCompletionRate int       `json:"min_completion_rate"`
	BonusPerPercent   float64   `json:"bonus_per_percent"`
	MaxBonus          float64   `json:"max_bonus"`
	PayDay            int       `json:"pay_day"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type SalaryPayment struct {
	ID             int64     `json:"id"`
	ChildID        int64     `json:"child_id"`
	WeekStart      string    `json:"week_start"`
	CompletionRate int       `json:"completion_rate"`
	Amount         int       `json:"amount"`
	PaidAt         time.Time `json:"paid_at"`
}
