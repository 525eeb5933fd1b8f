package store

import (
	"database/sql"
	"fmt"

	"github.com/marlowe/tally/internal/model"
)

type ChildStore struct {
	db *sql.DB
}

func NewChildStore(db *sql.DB) *ChildStore {
	return &ChildStore{db: db}
}

const childCols = `id, name, color, avatar_emoji, sort_order, created_at, updated_at`

func scanChild(scanner interface{ Scan(...any) error }) (*model.Child, error) {
	var c model.Child
	err := scanner.Scan(&c.ID, &c.Name, &c.Color, &c.AvatarEmoji, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ChildStore) Create(name, color, avatarEmoji string) (*model.Child, error) {
	var maxOrder int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(sort_order), -1) FROM children`).Scan(&maxOrder)
	if err != nil {
		return nil, fmt.Errorf("query max sort_order: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO children (name, color, avatar_emoji, sort_order) VALUES (?, ?, ?, ?)`,
		name, color, avatarEmoji, maxOrder+1,
	)
	if err != nil {
		return nil, fmt.Errorf("insert child: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChildStore) GetByID(id int64) (*model.Child, error) {
	row := s.db.QueryRow(`SELECT `+childCols+` FROM children WHERE id = ?`, id)
	c, err := scanChild(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get child: %w", err)
	}
	return c, nil
}

func (s *ChildStore) List() ([]model.Child, error) {
	rows, err := s.db.Query(`SELECT ` + childCols + ` FROM children ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var children []model.Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		children = append(children, *c)
	}
	return children, rows.Err()
}

func (s *ChildStore) Update(id int64, name, color, avatarEmoji string) (*model.Child, error) {
	_, err := s.db.Exec(
		`UPDATE children SET name = ?, color = ?, avatar_emoji = ?, updated_at = datetime('now') WHERE id = ?`,
		name, color, avatarEmoji, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update child: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChildStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM children WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete child: %w", err)
	}
	return nil
}

func (s *ChildStore) UpdateSortOrder(ids []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`UPDATE children SET sort_order = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for i, id := range ids {
		if _, err := stmt.Exec(i, id); err != nil {
			return fmt.Errorf("update sort order for id %d: %w", id, err)
		}
	}

	return tx.Commit()
}
