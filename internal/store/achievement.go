package store

import (
	"database/sql"
	"fmt"

	"github.com/marlowe/tally/internal/model"
)

type AchievementStore struct {
	db *sql.DB
}

func NewAchievementStore(db *sql.DB) *AchievementStore {
	return &AchievementStore{db: db}
}

const achievementCols = `id, title, description, icon, metric, threshold, reward_gems`

func scanAchievement(scanner interface{ Scan(...any) error }) (*model.Achievement, error) {
	var a model.Achievement
	err := scanner.Scan(&a.ID, &a.Title, &a.Description, &a.Icon, &a.Metric, &a.Threshold, &a.RewardGems)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListCatalog returns the full achievement catalog.
func (s *AchievementStore) ListCatalog() ([]model.Achievement, error) {
	rows, err := s.db.Query(`SELECT ` + achievementCols + ` FROM achievements ORDER BY metric, threshold`)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	defer rows.Close()

	var achievements []model.Achievement
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		achievements = append(achievements, *a)
	}
	return achievements, rows.Err()
}

// ListUnlocked returns a child's unlocked achievement rows, newest first.
func (s *AchievementStore) ListUnlocked(childID int64) ([]model.UnlockedAchievement, error) {
	rows, err := s.db.Query(
		`SELECT child_id, achievement_id, unlocked_at FROM unlocked_achievements
		 WHERE child_id = ? ORDER BY unlocked_at DESC, achievement_id`,
		childID,
	)
	if err != nil {
		return nil, fmt.Errorf("list unlocked achievements: %w", err)
	}
	defer rows.Close()

	var unlocked []model.UnlockedAchievement
	for rows.Next() {
		var u model.UnlockedAchievement
		if err := rows.Scan(&u.ChildID, &u.AchievementID, &u.UnlockedAt); err != nil {
			return nil, fmt.Errorf("scan unlocked achievement: %w", err)
		}
		unlocked = append(unlocked, u)
	}
	return unlocked, rows.Err()
}

// Unlock inserts the unlock row. The primary key on (child_id,
// achievement_id) is the uniqueness guard: the returned bool reports whether
// this call actually unlocked it, and only a true result may issue the reward.
func (s *AchievementStore) Unlock(childID int64, achievementID string) (bool, error) {
	result, err := s.db.Exec(
		`INSERT OR IGNORE INTO unlocked_achievements (child_id, achievement_id) VALUES (?, ?)`,
		childID, achievementID,
	)
	if err != nil {
		return false, fmt.Errorf("unlock achievement: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ChildStats computes the aggregates achievement predicates run against.
func (s *AchievementStore) ChildStats(childID int64) (model.ChildStats, error) {
	var stats model.ChildStats

	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM tasks WHERE child_id = ? AND status = 'approved'`, childID,
	).Scan(&stats.TasksApproved)
	if err != nil {
		return stats, fmt.Errorf("count approved tasks: %w", err)
	}

	err = s.db.QueryRow(
		`SELECT COALESCE(SUM(CASE WHEN stars > 0 THEN stars ELSE 0 END), 0), COALESCE(SUM(gems), 0)
		 FROM reward_entries WHERE child_id = ?`, childID,
	).Scan(&stats.LifetimeStars, &stats.GemBalance)
	if err != nil {
		return stats, fmt.Errorf("sum reward ledger: %w", err)
	}

	err = s.db.QueryRow(
		`SELECT COALESCE(MAX(current_streak), 0) FROM streaks WHERE child_id = ?`, childID,
	).Scan(&stats.CurrentStreak)
	if err != nil {
		return stats, fmt.Errorf("get streak: %w", err)
	}

	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM quests WHERE child_id = ? AND is_completed = 1`, childID,
	).Scan(&stats.QuestsCompleted)
	if err != nil {
		return stats, fmt.Errorf("count completed quests: %w", err)
	}

	return stats, nil
}
