package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/marlowe/tally/internal/model"
)

type SalaryStore struct {
	db *sql.DB
}

func NewSalaryStore(db *sql.DB) *SalaryStore {
	return &SalaryStore{db: db}
}

func (s *SalaryStore) GetConfig(childID int64) (*model.SalaryConfig, error) {
	var c model.SalaryConfig
	err := s.db.QueryRow(
		`SELECT child_id, base_amount, min_completion_rate, bonus_per_percent, max_bonus, pay_day, updated_at
		 FROM salary_configs WHERE child_id = ?`,
		childID,
	).Scan(&c.ChildID, &c.BaseAmount, &c.MinCompletionRate, &c.BonusPerPercent, &c.MaxBonus, &c.PayDay, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get salary config: %w", err)
	}
	return &c, nil
}

func (s *SalaryStore) SetConfig(c model.SalaryConfig) error {
	_, err := s.db.Exec(
		`INSERT INTO salary_configs (child_id, base_amount, min_completion_rate, bonus_per_percent, max_bonus, pay_day, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(child_id) DO UPDATE SET
		     base_amount = excluded.base_amount,
		     min_completion_rate = excluded.min_completion_rate,
		     bonus_per_percent = excluded.bonus_per_percent,
		     max_bonus = excluded.max_bonus,
		     pay_day = excluded.pay_day,
		     updated_at = excluded.updated_at`,
		c.ChildID, c.BaseAmount, c.MinCompletionRate, c.BonusPerPercent, c.MaxBonus, c.PayDay, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set salary config: %w", err)
	}
	return nil
}

// InsertPayment records a weekly payment. The UNIQUE index on (child_id,
// week_start) is the exactly-once guard; the returned bool reports whether
// the payment was recorded by this call.
func (s *SalaryStore) InsertPayment(childID int64, weekStart string, completionRate, amount int) (bool, error) {
	result, err := s.db.Exec(
		`INSERT OR IGNORE INTO salary_payments (child_id, week_start, completion_rate, amount) VALUES (?, ?, ?, ?)`,
		childID, weekStart, completionRate, amount,
	)
	if err != nil {
		return false, fmt.Errorf("insert salary payment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *SalaryStore) GetPayment(childID int64, weekStart string) (*model.SalaryPayment, error) {
	var p model.SalaryPayment
	err := s.db.QueryRow(
		`SELECT id, child_id, week_start, completion_rate, amount, paid_at
		 FROM salary_payments WHERE child_id = ? AND week_start = ?`,
		childID, weekStart,
	).Scan(&p.ID, &p.ChildID, &p.WeekStart, &p.CompletionRate, &p.Amount, &p.PaidAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get salary payment: %w", err)
	}
	return &p, nil
}

func (s *SalaryStore) ListPayments(childID int64) ([]model.SalaryPayment, error) {
	rows, err := s.db.Query(
		`SELECT id, child_id, week_start, completion_rate, amount, paid_at
		 FROM salary_payments WHERE child_id = ? ORDER BY week_start DESC`,
		childID,
	)
	if err != nil {
		return nil, fmt.Errorf("list salary payments: %w", err)
	}
	defer rows.Close()

	var payments []model.SalaryPayment
	for rows.Next() {
		var p model.SalaryPayment
		if err := rows.Scan(&p.ID, &p.ChildID, &p.WeekStart, &p.CompletionRate, &p.Amount, &p.PaidAt); err != nil {
			return nil, fmt.Errorf("scan salary payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
