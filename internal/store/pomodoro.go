package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/timekeeper/internal/tracker"
)

// StartPomodoroSession records the start of a run with the settings it
// uses and returns the record id.
func (s *Store) StartPomodoroSession(ps tracker.Settings, at time.Time) (string, error) {
	d := ps.Durations()
	id := uuid.New().String()
	_, err := s.db.Exec(
		`INSERT INTO pomodoro_sessions (id, focus_sec, short_sec, long_sec, cycles_per_long, status, started_at)
		 VALUES (?, ?, ?, ?, ?, 'running', ?)`,
		id, d[tracker.PhaseFocus], d[tracker.PhaseShortBreak], d[tracker.PhaseLongBreak], ps.CyclesPerLongBreak,
		at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("start pomodoro: %w", err)
	}
	return id, nil
}

// FinishPomodoroSession closes a running record.
func (s *Store) FinishPomodoroSession(id string, completed int, reason tracker.EndReason, at time.Time) error {
	res, err := s.db.Exec(
		`UPDATE pomodoro_sessions SET completed_count = ?, status = ?, ended_at = ?
		 WHERE id = ? AND status = 'running'`,
		completed, string(reason), at.UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("finish pomodoro %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("pomodoro %s not running", id)
	}
	return nil
}

func (s *Store) GetPomodoroSession(id string) (*PomodoroSession, error) {
	var p PomodoroSession
	if err := s.db.Get(&p, `SELECT * FROM pomodoro_sessions WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("get pomodoro %s: %w", id, err)
	}
	return &p, nil
}

// GetPomodoroStats counts finished sessions started in [from, to) and the
// focus cycles completed across them.
func (s *Store) GetPomodoroStats(from, to time.Time) (sessions int, cycles int, err error) {
	var row struct {
		Sessions int `db:"sessions"`
		Cycles   int `db:"cycles"`
	}
	err = s.db.Get(&row, `
		SELECT COUNT(*) AS sessions, COALESCE(SUM(completed_count), 0) AS cycles
		FROM pomodoro_sessions
		WHERE status != 'running'
		  AND started_at >= ? AND started_at < ?`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, 0, fmt.Errorf("pomodoro stats: %w", err)
	}
	return row.Sessions, row.Cycles, nil
}
