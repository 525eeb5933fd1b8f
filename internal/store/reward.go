package store

import (
	"database/sql"
	"fmt"

	"github.com/marlowe/tally/internal/model"
)

// RewardStore is the currency ledger. Credits and debits are append-only
// inserts; balances are sums over the ledger. No balance is ever read,
// modified, and written back.
type RewardStore struct {
	db *sql.DB
}

func NewRewardStore(db *sql.DB) *RewardStore {
	return &RewardStore{db: db}
}

// Credit appends a ledger entry. Negative amounts record spending.
func (s *RewardStore) Credit(childID int64, stars, gems int, source string) error {
	if stars == 0 && gems == 0 {
		return nil
	}
	_, err := s.db.Exec(
		`INSERT INTO reward_entries (child_id, stars, gems, source) VALUES (?, ?, ?, ?)`,
		childID, stars, gems, source,
	)
	if err != nil {
		return fmt.Errorf("insert reward entry: %w", err)
	}
	return nil
}

func (s *RewardStore) Balance(childID int64) (*model.Balance, error) {
	b := model.Balance{ChildID: childID}
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(stars), 0), COALESCE(SUM(gems), 0) FROM reward_entries WHERE child_id = ?`,
		childID,
	).Scan(&b.Stars, &b.Gems)
	if err != nil {
		return nil, fmt.Errorf("sum balance: %w", err)
	}
	return &b, nil
}

// ListEntries returns a child's ledger entries, newest first.
func (s *RewardStore) ListEntries(childID int64, limit int) ([]model.RewardEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, child_id, stars, gems, source, created_at FROM reward_entries
		 WHERE child_id = ? ORDER BY id DESC LIMIT ?`,
		childID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list reward entries: %w", err)
	}
	defer rows.Close()

	var entries []model.RewardEntry
	for rows.Next() {
		var e model.RewardEntry
		if err := rows.Scan(&e.ID, &e.ChildID, &e.Stars, &e.Gems, &e.Source, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reward entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
