package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sadopc/timekeeper/internal/tracker"
)

// Setting keys.
const (
	KeyFocusMinutes      = "pomodoro_focus_min"
	KeyShortBreakMinutes = "pomodoro_short_min"
	KeyLongBreakMinutes  = "pomodoro_long_min"
	KeyCyclesPerLong     = "pomodoro_cycles"
	KeyDailyGoalHours    = "daily_goal_hours"
	KeyThemeSelected     = "theme_selected"
	KeyThemeUnlocked     = "theme_unlocked"
	KeyDriveBackup       = "drive_backup_enabled"
	KeyCalendarSync      = "calendar_sync_enabled"
	KeyCalendarID        = "calendar_id"
)

const DefaultDailyGoalHours = 8.0

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	if err := s.db.Get(&value, `SELECT value FROM settings WHERE key = ?`, key); err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	var settings []Setting
	if err := s.db.Select(&settings, `SELECT key, value FROM settings ORDER BY key`); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return settings, nil
}

// LoadPomodoroSettings reads the engine settings. Missing or malformed
// values yield the defaults together with an error describing the problem.
func (s *Store) LoadPomodoroSettings() (tracker.Settings, error) {
	var out tracker.Settings
	fields := []struct {
		key string
		dst *int
	}{
		{KeyFocusMinutes, &out.FocusDurationMinutes},
		{KeyShortBreakMinutes, &out.ShortBreakDurationMinutes},
		{KeyLongBreakMinutes, &out.LongBreakDurationMinutes},
		{KeyCyclesPerLong, &out.CyclesPerLongBreak},
	}
	for _, f := range fields {
		v, err := s.GetSetting(f.key)
		if err != nil {
			return tracker.DefaultSettings(), err
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return tracker.DefaultSettings(), fmt.Errorf("parse setting %q: %w", f.key, err)
		}
		*f.dst = n
	}
	if err := out.Validate(); err != nil {
		return tracker.DefaultSettings(), err
	}
	return out, nil
}

// SavePomodoroSettings validates and stores the engine settings atomically.
func (s *Store) SavePomodoroSettings(ps tracker.Settings) error {
	if err := ps.Validate(); err != nil {
		return err
	}
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin settings: %w", err)
	}
	defer tx.Rollback()

	values := map[string]int{
		KeyFocusMinutes:      ps.FocusDurationMinutes,
		KeyShortBreakMinutes: ps.ShortBreakDurationMinutes,
		KeyLongBreakMinutes:  ps.LongBreakDurationMinutes,
		KeyCyclesPerLong:     ps.CyclesPerLongBreak,
	}
	for k, v := range values {
		if _, err := tx.Exec(
			`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			k, strconv.Itoa(v),
		); err != nil {
			return fmt.Errorf("set setting %q: %w", k, err)
		}
	}
	return tx.Commit()
}

// DailyGoalHours returns the goal, falling back to the default when the
// stored value is missing or not positive.
func (s *Store) DailyGoalHours() float64 {
	v, err := s.GetSetting(KeyDailyGoalHours)
	if err != nil {
		return DefaultDailyGoalHours
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || h <= 0 {
		return DefaultDailyGoalHours
	}
	return h
}

// SetDailyGoalHours ignores non-positive goals.
func (s *Store) SetDailyGoalHours(h float64) error {
	if h <= 0 {
		return fmt.Errorf("daily goal must be positive, got %v", h)
	}
	return s.SetSetting(KeyDailyGoalHours, strconv.FormatFloat(h, 'f', -1, 64))
}

func (s *Store) GetBool(key string) bool {
	v, err := s.GetSetting(key)
	if err != nil {
		return false
	}
	b, _ := strconv.ParseBool(v)
	return b
}

func (s *Store) SetBool(key string, v bool) error {
	return s.SetSetting(key, strconv.FormatBool(v))
}

// GetString returns "" for missing keys.
func (s *Store) GetString(key string) string {
	v, _ := s.GetSetting(key)
	return v
}

// GetList reads a comma-separated setting.
func (s *Store) GetList(key string) []string {
	var out []string
	for _, part := range strings.Split(s.GetString(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) SetList(key string, values []string) error {
	return s.SetSetting(key, strings.Join(values, ","))
}
