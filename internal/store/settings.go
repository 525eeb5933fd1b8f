package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/marlowe/tally/internal/model"
	"github.com/marlowe/tally/internal/schedule"
)

type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("setting %q not found", key)
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *SettingsStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// TimeConfig loads the family's day-boundary settings. It is read fresh on
// every call so configuration changes take effect immediately; a missing or
// invalid day start falls back to the default rather than failing display
// paths.
func (s *SettingsStore) TimeConfig() (model.TimeConfig, error) {
	cfg := model.TimeConfig{
		DayStartTime: model.DefaultDayStartTime,
		Timezone:     "UTC",
	}

	rows, err := s.db.Query(
		`SELECT key, value FROM settings WHERE key IN ('day_start_time', 'use_24_hour_format', 'timezone')`,
	)
	if err != nil {
		return cfg, fmt.Errorf("get time config: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return cfg, fmt.Errorf("scan time config: %w", err)
		}
		switch key {
		case "day_start_time":
			if schedule.ValidateDayStart(value) == nil {
				cfg.DayStartTime = value
			}
		case "use_24_hour_format":
			cfg.Use24HourFormat = value == "true"
		case "timezone":
			if value != "" {
				cfg.Timezone = value
			}
		}
	}
	return cfg, rows.Err()
}

// SetTimeConfig validates and saves the day-boundary settings. Unlike reads,
// saves reject an invalid day start outright.
func (s *SettingsStore) SetTimeConfig(cfg model.TimeConfig) error {
	if err := schedule.ValidateDayStart(cfg.DayStartTime); err != nil {
		return fmt.Errorf("invalid day start time: %w", err)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	use24 := "false"
	if cfg.Use24HourFormat {
		use24 = "true"
	}
	if err := s.Set("day_start_time", cfg.DayStartTime); err != nil {
		return err
	}
	if err := s.Set("use_24_hour_format", use24); err != nil {
		return err
	}
	return s.Set("timezone", cfg.Timezone)
}

// ParentPINHash returns the stored bcrypt hash, or "" if no PIN is set.
func (s *SettingsStore) ParentPINHash() (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = 'parent_pin'`).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get parent pin: %w", err)
	}
	return value, nil
}

func (s *SettingsStore) SetParentPINHash(hash string) error {
	return s.Set("parent_pin", hash)
}

func (s *SettingsStore) ClearParentPIN() error {
	_, err := s.db.Exec(`DELETE FROM settings WHERE key = 'parent_pin'`)
	if err != nil {
		return fmt.Errorf("clear parent pin: %w", err)
	}
	return nil
}
