package store

import (
	"testing"

	"github.com/marlowe/tally/internal/model"
)

func TestSettingsGetSet(t *testing.T) {
	ss := NewSettingsStore(setupTestDB(t))

	// Seeded default.
	value, err := ss.Get("day_start_time")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != "04:00" {
		t.Errorf("day_start_time = %q, want 04:00", value)
	}

	if err := ss.Set("day_start_time", "05:30"); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, _ = ss.Get("day_start_time")
	if value != "05:30" {
		t.Errorf("day_start_time = %q after set, want 05:30", value)
	}

	if _, err := ss.Get("nonexistent"); err == nil {
		t.Error("expected error for missing key")
	}
}

func TestTimeConfigDefaults(t *testing.T) {
	ss := NewSettingsStore(setupTestDB(t))

	cfg, err := ss.TimeConfig()
	if err != nil {
		t.Fatalf("time config: %v", err)
	}
	if cfg.DayStartTime != "04:00" {
		t.Errorf("day start = %q, want 04:00", cfg.DayStartTime)
	}
	if cfg.Use24HourFormat {
		t.Error("expected 12-hour format by default")
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("timezone = %q, want UTC", cfg.Timezone)
	}
}

func TestTimeConfigInvalidDayStartFallsBack(t *testing.T) {
	ss := NewSettingsStore(setupTestDB(t))

	// A corrupt stored value must not break reads.
	if err := ss.Set("day_start_time", "25:99"); err != nil {
		t.Fatalf("set: %v", err)
	}

	cfg, err := ss.TimeConfig()
	if err != nil {
		t.Fatalf("time config: %v", err)
	}
	if cfg.DayStartTime != model.DefaultDayStartTime {
		t.Errorf("day start = %q, want fallback %q", cfg.DayStartTime, model.DefaultDayStartTime)
	}
}

func TestSetTimeConfigValidation(t *testing.T) {
	ss := NewSettingsStore(setupTestDB(t))

	err := ss.SetTimeConfig(model.TimeConfig{DayStartTime: "not-a-time", Timezone: "UTC"})
	if err == nil {
		t.Error("expected error for invalid day start")
	}

	err = ss.SetTimeConfig(model.TimeConfig{DayStartTime: "04:00", Timezone: "Mars/Olympus"})
	if err == nil {
		t.Error("expected error for invalid timezone")
	}

	err = ss.SetTimeConfig(model.TimeConfig{DayStartTime: "06:00", Timezone: "America/New_York", Use24HourFormat: true})
	if err != nil {
		t.Fatalf("set time config: %v", err)
	}

	cfg, err := ss.TimeConfig()
	if err != nil {
		t.Fatalf("time config: %v", err)
	}
	if cfg.DayStartTime != "06:00" || cfg.Timezone != "America/New_York" || !cfg.Use24HourFormat {
		t.Errorf("round-tripped config = %+v", cfg)
	}
}

func TestParentPIN(t *testing.T) {
	ss := NewSettingsStore(setupTestDB(t))

	hash, err := ss.ParentPINHash()
	if err != nil {
		t.Fatalf("pin hash: %v", err)
	}
	if hash != "" {
		t.Errorf("hash = %q with no PIN set, want empty", hash)
	}

	if err := ss.SetParentPINHash("$2a$10$fakehash"); err != nil {
		t.Fatalf("set pin: %v", err)
	}
	hash, _ = ss.ParentPINHash()
	if hash != "$2a$10$fakehash" {
		t.Errorf("hash = %q, want stored value", hash)
	}

	if err := ss.ClearParentPIN(); err != nil {
		t.Fatalf("clear pin: %v", err)
	}
	hash, _ = ss.ParentPINHash()
	if hash != "" {
		t.Errorf("hash = %q after clear, want empty", hash)
	}
}
