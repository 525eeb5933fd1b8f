package store

import (
	"database/sql"
	"fmt"

	"github.com/marlowe/tally/internal/model"
)

type SkillStore struct {
	db *sql.DB
}

func NewSkillStore(db *sql.DB) *SkillStore {
	return &SkillStore{db: db}
}

// AddPoints adds points to a child's category total as a single
// upsert-increment, so concurrent callers never lose an update.
func (s *SkillStore) AddPoints(childID int64, category string, points int) error {
	if points <= 0 {
		return nil
	}
	_, err := s.db.Exec(
		`INSERT INTO skill_progress (child_id, category, total_points) VALUES (?, ?, ?)
		 ON CONFLICT(child_id, category) DO UPDATE SET total_points = total_points + excluded.total_points`,
		childID, category, points,
	)
	if err != nil {
		return fmt.Errorf("add skill points: %w", err)
	}
	return nil
}

func (s *SkillStore) Get(childID int64, category string) (*model.SkillProgress, error) {
	var p model.SkillProgress
	err := s.db.QueryRow(
		`SELECT child_id, category, total_points FROM skill_progress WHERE child_id = ? AND category = ?`,
		childID, category,
	).Scan(&p.ChildID, &p.Category, &p.TotalPoints)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get skill progress: %w", err)
	}
	return &p, nil
}

func (s *SkillStore) ListByChild(childID int64) ([]model.SkillProgress, error) {
	rows, err := s.db.Query(
		`SELECT child_id, category, total_points FROM skill_progress WHERE child_id = ? ORDER BY category`,
		childID,
	)
	if err != nil {
		return nil, fmt.Errorf("list skill progress: %w", err)
	}
	defer rows.Close()

	var progress []model.SkillProgress
	for rows.Next() {
		var p model.SkillProgress
		if err := rows.Scan(&p.ChildID, &p.Category, &p.TotalPoints); err != nil {
			return nil, fmt.Errorf("scan skill progress: %w", err)
		}
		progress = append(progress, p)
	}
	return progress, rows.Err()
}
