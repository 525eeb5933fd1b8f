package engine

import (
	"math"
	"time"

	"github.com/marlowe/tally/internal/model"
	"github.com/marlowe/tally/internal/schedule"
	"github.com/marlowe/tally/internal/store"
)

// PayrollCalculator converts weekly completion rates into gem payouts,
// guarded against double payment per week.
type PayrollCalculator struct {
	salaries *store.SalaryStore
	tasks    *store.TaskStore
	rewards  RewardSink
}

func NewPayrollCalculator(salaries *store.SalaryStore, tasks *store.TaskStore, rewards RewardSink) *PayrollCalculator {
	return &PayrollCalculator{salaries: salaries, tasks: tasks, rewards: rewards}
}

// Compute applies the salary formula to a completion percentage. Below the
// minimum rate nothing is paid; above it the bonus grows linearly per
// percentage point and is capped at MaxBonus.
func Compute(completionRatePercent int, cfg model.SalaryConfig) int {
	if completionRatePercent < cfg.MinCompletionRate {
		return 0
	}
	bonus := float64(completionRatePercent-cfg.MinCompletionRate) * cfg.BonusPerPercent
	if bonus > cfg.MaxBonus {
		bonus = cfg.MaxBonus
	}
	return int(math.Round(cfg.BaseAmount + bonus))
}

// CompletionRate returns the percentage of the child's non-bonus tasks for
// the week starting at weekStart that were approved. A week with no tasks
// counts as 0%.
func (p *PayrollCalculator) CompletionRate(childID int64, weekStart time.Time) (int, error) {
	start := schedule.DateString(weekStart)
	end := schedule.DateString(weekStart.AddDate(0, 0, 7))

	approved, total, err := p.tasks.WeekCounts(childID, start, end)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	return approved * 100 / total, nil
}

// Preview computes the week's rate and amount without recording anything.
func (p *PayrollCalculator) Preview(childID int64, weekStart time.Time) (rate, amount int, err error) {
	cfg, err := p.salaries.GetConfig(childID)
	if err != nil {
		return 0, 0, err
	}
	if cfg == nil {
		return 0, 0, ErrNoSalaryConfig
	}
	rate, err = p.CompletionRate(childID, weekStart)
	if err != nil {
		return 0, 0, err
	}
	return rate, Compute(rate, *cfg), nil
}

// Pay records the payment for the week and credits the amount as gems. The
// payment insert is the exactly-once guard: if a row already exists for
// (child, week) the call returns ErrAlreadyPaid and credits nothing.
func (p *PayrollCalculator) Pay(childID int64, weekStart time.Time) (*model.SalaryPayment, error) {
	weekStart = schedule.WeekStart(weekStart)

	rate, amount, err := p.Preview(childID, weekStart)
	if err != nil {
		return nil, err
	}

	week := schedule.DateString(weekStart)
	inserted, err := p.salaries.InsertPayment(childID, week, rate, amount)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, ErrAlreadyPaid
	}

	if err := p.rewards.Credit(childID, 0, amount, "salary:"+week); err != nil {
		return nil, err
	}
	return p.salaries.GetPayment(childID, week)
}
