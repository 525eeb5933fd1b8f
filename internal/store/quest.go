package store

import (
	"database/sql"
	"fmt"

	"github.com/marlowe/tally/internal/model"
)

type QuestStore struct {
	db *sql.DB
}

func NewQuestStore(db *sql.DB) *QuestStore {
	return &QuestStore{db: db}
}

const questCols = `id, child_id, template_key, type, title, metric, target_value, current_value, reward_stars, reward_gems, start_date, end_date, is_completed, created_at`

func scanQuest(scanner interface{ Scan(...any) error }) (*model.Quest, error) {
	var q model.Quest
	var completed int

	err := scanner.Scan(
		&q.ID, &q.ChildID, &q.TemplateKey, &q.Type, &q.Title, &q.Metric,
		&q.TargetValue, &q.CurrentValue, &q.RewardStars, &q.RewardGems,
		&q.StartDate, &q.EndDate, &completed, &q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	q.IsCompleted = completed != 0
	return &q, nil
}

// ListTemplates returns the quest catalog for one generation type.
func (s *QuestStore) ListTemplates(questType string) ([]model.QuestTemplate, error) {
	rows, err := s.db.Query(
		`SELECT key, type, title, metric, target_value, reward_stars, reward_gems
		 FROM quest_templates WHERE type = ? ORDER BY key`,
		questType,
	)
	if err != nil {
		return nil, fmt.Errorf("list quest templates: %w", err)
	}
	defer rows.Close()

	var templates []model.QuestTemplate
	for rows.Next() {
		var t model.QuestTemplate
		if err := rows.Scan(&t.Key, &t.Type, &t.Title, &t.Metric, &t.TargetValue, &t.RewardStars, &t.RewardGems); err != nil {
			return nil, fmt.Errorf("scan quest template: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// InsertIfAbsent instantiates a template for one child and period. The UNIQUE
// index on (child_id, template_key, start_date) makes repeated generation
// calls idempotent; the returned bool reports whether a row was created.
func (s *QuestStore) InsertIfAbsent(childID int64, t model.QuestTemplate, startDate, endDate string) (bool, error) {
	result, err := s.db.Exec(
		`INSERT OR IGNORE INTO quests (child_id, template_key, type, title, metric, target_value, reward_stars, reward_gems, start_date, end_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		childID, t.Key, t.Type, t.Title, t.Metric, t.TargetValue, t.RewardStars, t.RewardGems, startDate, endDate,
	)
	if err != nil {
		return false, fmt.Errorf("insert quest: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ListActive returns a child's quests that are not completed and whose period
// includes today.
func (s *QuestStore) ListActive(childID int64, today string) ([]model.Quest, error) {
	rows, err := s.db.Query(
		`SELECT `+questCols+` FROM quests
		 WHERE child_id = ? AND is_completed = 0 AND start_date <= ? AND end_date >= ?
		 ORDER BY type, id`,
		childID, today, today,
	)
	if err != nil {
		return nil, fmt.Errorf("list active quests: %w", err)
	}
	defer rows.Close()
	return collectQuests(rows)
}

func (s *QuestStore) ListByChild(childID int64) ([]model.Quest, error) {
	rows, err := s.db.Query(
		`SELECT `+questCols+` FROM quests WHERE child_id = ? ORDER BY start_date DESC, id`,
		childID,
	)
	if err != nil {
		return nil, fmt.Errorf("list quests: %w", err)
	}
	defer rows.Close()
	return collectQuests(rows)
}

func collectQuests(rows *sql.Rows) ([]model.Quest, error) {
	var quests []model.Quest
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quest: %w", err)
		}
		quests = append(quests, *q)
	}
	return quests, rows.Err()
}

// AddProgress increments every active matching quest, clamped at its target.
// Progress on completed quests is frozen by the is_completed guard.
func (s *QuestStore) AddProgress(childID int64, metric string, delta int, today string) error {
	if delta <= 0 {
		return nil
	}
	_, err := s.db.Exec(
		`UPDATE quests
		 SET current_value = MIN(target_value, current_value + ?)
		 WHERE child_id = ? AND metric = ? AND is_completed = 0 AND start_date <= ? AND end_date >= ?`,
		delta, childID, metric, today, today,
	)
	if err != nil {
		return fmt.Errorf("add quest progress: %w", err)
	}
	return nil
}

// ListClaimable returns quests that have reached their target but have not
// been marked completed yet.
func (s *QuestStore) ListClaimable(childID int64) ([]model.Quest, error) {
	rows, err := s.db.Query(
		`SELECT `+questCols+` FROM quests
		 WHERE child_id = ? AND is_completed = 0 AND current_value >= target_value`,
		childID,
	)
	if err != nil {
		return nil, fmt.Errorf("list claimable quests: %w", err)
	}
	defer rows.Close()
	return collectQuests(rows)
}

// ClaimCompletion flips is_completed for a quest at target. Only one caller
// can win the flip, which is what makes the reward exactly-once.
func (s *QuestStore) ClaimCompletion(questID int64) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE quests SET is_completed = 1
		 WHERE id = ? AND is_completed = 0 AND current_value >= target_value`,
		questID,
	)
	if err != nil {
		return false, fmt.Errorf("claim quest completion: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteExpired removes incomplete quests whose period ended before today.
// Completed quests are kept as history; expired ones never pay out.
func (s *QuestStore) DeleteExpired(childID int64, today string) (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM quests WHERE child_id = ? AND end_date < ? AND is_completed = 0`,
		childID, today,
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired quests: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
