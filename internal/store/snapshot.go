package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/timekeeper/internal/tracker"
)

// BackupVersion tags snapshots written by this build.
const BackupVersion = "1.6.0"

// Snapshot is the full application backup document.
type Snapshot struct {
	Version               string           `json:"version"`
	Timestamp             int64            `json:"timestamp"`
	Tasks                 []tracker.Entry  `json:"tasks"`
	Projects              []Project        `json:"projects"`
	PomodoroSettings      tracker.Settings `json:"pomodoroSettings"`
	DailyGoalHours        float64          `json:"dailyGoalHours"`
	IsCalendarSyncEnabled bool             `json:"isCalendarSyncEnabled,omitempty"`
	TimekeeperCalendarID  string           `json:"timekeeperCalendarId,omitempty"`
	SelectedThemeID       string           `json:"selectedThemeId,omitempty"`
	UnlockedThemeIDs      []string         `json:"unlockedThemeIds,omitempty"`
}

// ParseSnapshot decodes a backup. Missing sections are filled with
// defaults, the way a partial backup is restored.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if snap.PomodoroSettings.Validate() != nil {
		snap.PomodoroSettings = tracker.DefaultSettings()
	}
	if snap.DailyGoalHours <= 0 {
		snap.DailyGoalHours = DefaultDailyGoalHours
	}
	return &snap, nil
}

// Marshal encodes the snapshot as indented JSON.
func (snap *Snapshot) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Snapshot captures the stored state. entries is the caller's in-memory log.
func (s *Store) Snapshot(entries []tracker.Entry, now time.Time) (*Snapshot, error) {
	projects, err := s.ListProjects()
	if err != nil {
		return nil, err
	}
	// Malformed settings are backed up as the defaults they resolve to.
	ps, _ := s.LoadPomodoroSettings()
	if entries == nil {
		entries = []tracker.Entry{}
	}
	if projects == nil {
		projects = []Project{}
	}
	return &Snapshot{
		Version:               BackupVersion,
		Timestamp:             now.UnixMilli(),
		Tasks:                 entries,
		Projects:              projects,
		PomodoroSettings:      ps,
		DailyGoalHours:        s.DailyGoalHours(),
		IsCalendarSyncEnabled: s.GetBool(KeyCalendarSync),
		TimekeeperCalendarID:  s.GetString(KeyCalendarID),
		SelectedThemeID:       s.GetString(KeyThemeSelected),
		UnlockedThemeIDs:      s.GetList(KeyThemeUnlocked),
	}, nil
}

// RestoreSnapshot replaces projects and settings with the snapshot's.
// Entries are restored through the entry log so the in-memory view and the
// table stay in step. Theme ids are stored as given; callers normalise them.
func (s *Store) RestoreSnapshot(snap *Snapshot) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin restore: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM projects`); err != nil {
		return fmt.Errorf("clear projects: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for _, p := range snap.Projects {
		if p.CreatedAt == "" {
			p.CreatedAt = now
		}
		if _, err := tx.NamedExec(
			`INSERT INTO projects (id, name, color, created_at) VALUES (:id, :name, :color, :created_at)`, p,
		); err != nil {
			return fmt.Errorf("restore project %s: %w", p.ID, err)
		}
	}

	ps := snap.PomodoroSettings
	settings := map[string]string{
		KeyFocusMinutes:      fmt.Sprint(ps.FocusDurationMinutes),
		KeyShortBreakMinutes: fmt.Sprint(ps.ShortBreakDurationMinutes),
		KeyLongBreakMinutes:  fmt.Sprint(ps.LongBreakDurationMinutes),
		KeyCyclesPerLong:     fmt.Sprint(ps.CyclesPerLongBreak),
		KeyDailyGoalHours:    fmt.Sprint(snap.DailyGoalHours),
		KeyCalendarSync:      fmt.Sprint(snap.IsCalendarSyncEnabled),
		KeyCalendarID:        snap.TimekeeperCalendarID,
		KeyThemeSelected:     snap.SelectedThemeID,
		KeyThemeUnlocked:     strings.Join(snap.UnlockedThemeIDs, ","),
	}
	for k, v := range settings {
		if _, err := tx.Exec(
			`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			k, v,
		); err != nil {
			return fmt.Errorf("restore setting %q: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit restore: %w", err)
	}
	return nil
}
