package store

import (
	"database/sql"
	"fmt"

	"github.com/marlowe/tally/internal/model"
)

type StreakStore struct {
	db *sql.DB
}

func NewStreakStore(db *sql.DB) *StreakStore {
	return &StreakStore{db: db}
}

func (s *StreakStore) Get(childID int64, streakType string) (*model.Streak, error) {
	var st model.Streak
	err := s.db.QueryRow(
		`SELECT child_id, streak_type, current_streak, longest_streak, last_counted_date
		 FROM streaks WHERE child_id = ? AND streak_type = ?`,
		childID, streakType,
	).Scan(&st.ChildID, &st.StreakType, &st.CurrentStreak, &st.LongestStreak, &st.LastCountedDate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get streak: %w", err)
	}
	return &st, nil
}

// Bump counts one logical day toward the streak. The whole decision runs as a
// single conditional UPDATE: a day already counted is a no-op, the day after
// the last counted day extends the streak, anything else resets it to 1.
// longest_streak never decreases. Concurrent callers on the same day collapse
// to one count because the WHERE clause excludes an already-counted date.
func (s *StreakStore) Bump(childID int64, streakType, today, yesterday string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO streaks (child_id, streak_type) VALUES (?, ?)`,
		childID, streakType,
	)
	if err != nil {
		return fmt.Errorf("ensure streak row: %w", err)
	}

	_, err = s.db.Exec(
		`UPDATE streaks
		 SET current_streak = CASE WHEN last_counted_date = ? THEN current_streak + 1 ELSE 1 END,
		     longest_streak = MAX(longest_streak, CASE WHEN last_counted_date = ? THEN current_streak + 1 ELSE 1 END),
		     last_counted_date = ?
		 WHERE child_id = ? AND streak_type = ? AND last_counted_date <> ?`,
		yesterday, yesterday, today, childID, streakType, today,
	)
	if err != nil {
		return fmt.Errorf("bump streak: %w", err)
	}
	return nil
}
