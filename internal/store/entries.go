package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sadopc/timekeeper/internal/tracker"
)

const upsertEntry = `
	INSERT INTO entries (id, description, project_id, start_ms, end_ms, duration, is_pomodoro, cycle, date)
	VALUES (:id, :description, :project_id, :start_ms, :end_ms, :duration, :is_pomodoro, :cycle, :date)
	ON CONFLICT(id) DO UPDATE SET
		description = excluded.description,
		project_id  = excluded.project_id,
		start_ms    = excluded.start_ms,
		end_ms      = excluded.end_ms,
		duration    = excluded.duration,
		is_pomodoro = excluded.is_pomodoro,
		cycle       = excluded.cycle,
		date        = excluded.date`

// SaveEntry inserts e or overwrites the stored entry with the same id.
func (s *Store) SaveEntry(e tracker.Entry) error {
	if _, err := s.db.NamedExec(upsertEntry, toRow(e)); err != nil {
		return fmt.Errorf("save entry %s: %w", e.ID, err)
	}
	return nil
}

// ReplaceEntries swaps the whole entries table in one transaction.
func (s *Store) ReplaceEntries(entries []tracker.Entry) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if err := replaceEntriesTx(tx, entries); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

func replaceEntriesTx(tx *sqlx.Tx, entries []tracker.Entry) error {
	if _, err := tx.Exec(`DELETE FROM entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	for _, e := range entries {
		if _, err := tx.NamedExec(upsertEntry, toRow(e)); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}
	return nil
}

func (s *Store) GetEntry(id string) (tracker.Entry, error) {
	var r entryRow
	if err := s.db.Get(&r, `SELECT * FROM entries WHERE id = ?`, id); err != nil {
		return tracker.Entry{}, fmt.Errorf("get entry %s: %w", id, err)
	}
	return r.entry(), nil
}

func (s *Store) DeleteEntry(id string) error {
	if _, err := s.db.Exec(`DELETE FROM entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	return nil
}

// ListEntries returns matching entries, most recent start first.
func (s *Store) ListEntries(f EntryFilter) ([]tracker.Entry, error) {
	query := `SELECT * FROM entries WHERE 1=1`
	var args []any

	if f.ProjectID != "" {
		query += ` AND project_id = ?`
		args = append(args, f.ProjectID)
	}
	if f.From != "" {
		query += ` AND date >= ?`
		args = append(args, f.From)
	}
	if f.To != "" {
		query += ` AND date < ?`
		args = append(args, f.To)
	}
	query += ` ORDER BY start_ms DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	var rows []entryRow
	if err := s.db.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	entries := make([]tracker.Entry, len(rows))
	for i, r := range rows {
		entries[i] = r.entry()
	}
	return entries, nil
}

// GetDailySummary aggregates entries dated in [from, to) per day and project.
func (s *Store) GetDailySummary(from, to string) ([]DailySummary, error) {
	var summaries []DailySummary
	err := s.db.Select(&summaries, `
		SELECT e.date AS date, e.project_id AS project_id,
		       p.name AS project_name, p.color AS project_color,
		       COALESCE(SUM(e.duration), 0) AS total_seconds, COUNT(*) AS entry_count
		FROM entries e
		LEFT JOIN projects p ON p.id = e.project_id
		WHERE e.date >= ? AND e.date < ?
		GROUP BY e.date, e.project_id
		ORDER BY e.date, p.name`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("daily summary: %w", err)
	}
	return summaries, nil
}

// GetDayTotal sums durations of entries dated date.
func (s *Store) GetDayTotal(date string) (int64, error) {
	var total int64
	err := s.db.Get(&total, `SELECT COALESCE(SUM(duration), 0) FROM entries WHERE date = ?`, date)
	if err != nil {
		return 0, fmt.Errorf("day total %s: %w", date, err)
	}
	return total, nil
}
