package store

import (
	"database/sql"

	"github.com/sadopc/timekeeper/internal/tracker"
)

type Project struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Color     string `db:"color" json:"color"`
	CreatedAt string `db:"created_at" json:"-"`
}

type Setting struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// PomodoroSession is the history record of one pomodoro run.
type PomodoroSession struct {
	ID             string         `db:"id"`
	FocusSec       int            `db:"focus_sec"`
	ShortSec       int            `db:"short_sec"`
	LongSec        int            `db:"long_sec"`
	CyclesPerLong  int            `db:"cycles_per_long"`
	CompletedCount int            `db:"completed_count"`
	Status         string         `db:"status"` // running, stopped, cancelled
	StartedAt      string         `db:"started_at"`
	EndedAt        sql.NullString `db:"ended_at"`
}

// EntryFilter narrows ListEntries. Dates are YYYY-MM-DD; From is inclusive
// and To exclusive.
type EntryFilter struct {
	ProjectID string
	From      string
	To        string
	Limit     int
}

// DailySummary is the tracked time per project per day. Entries without a
// project, or whose project no longer exists, have an empty ProjectName.
type DailySummary struct {
	Date         string         `db:"date"`
	ProjectID    sql.NullString `db:"project_id"`
	ProjectName  sql.NullString `db:"project_name"`
	ProjectColor sql.NullString `db:"project_color"`
	TotalSeconds int64          `db:"total_seconds"`
	EntryCount   int            `db:"entry_count"`
}

// entryRow is the column layout of the entries table.
type entryRow struct {
	ID          string         `db:"id"`
	Description string         `db:"description"`
	ProjectID   sql.NullString `db:"project_id"`
	StartMs     int64          `db:"start_ms"`
	EndMs       sql.NullInt64  `db:"end_ms"`
	Duration    int64          `db:"duration"`
	IsPomodoro  bool           `db:"is_pomodoro"`
	Cycle       int            `db:"cycle"`
	Date        string         `db:"date"`
}

func toRow(e tracker.Entry) entryRow {
	return entryRow{
		ID:          e.ID,
		Description: e.Description,
		ProjectID:   sql.NullString{String: e.ProjectID, Valid: e.ProjectID != ""},
		StartMs:     e.StartTimeEpoch,
		EndMs:       sql.NullInt64{Int64: e.EndTimeEpoch, Valid: e.EndTimeEpoch != 0},
		Duration:    e.DurationSeconds,
		IsPomodoro:  e.IsPomodoro,
		Cycle:       e.PomodoroCycleCount,
		Date:        e.Date,
	}
}

func (r entryRow) entry() tracker.Entry {
	return tracker.Entry{
		ID:                 r.ID,
		Description:        r.Description,
		ProjectID:          r.ProjectID.String,
		StartTimeEpoch:     r.StartMs,
		EndTimeEpoch:       r.EndMs.Int64,
		DurationSeconds:    r.Duration,
		IsPomodoro:         r.IsPomodoro,
		PomodoroCycleCount: r.Cycle,
		Date:               r.Date,
	}
}
