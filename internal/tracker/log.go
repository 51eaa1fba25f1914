package tracker

import (
	"fmt"
	"sort"
	"strings"
)

// Persister stores entry log mutations.
type Persister interface {
	SaveEntry(e Entry) error
	ReplaceEntries(entries []Entry) error
}

// EntryLog is the ordered collection of completed entries, most recent
// start first. Timers and the UI both mutate it through Append and Edit so
// the ordering is re-established after every change.
type EntryLog struct {
	entries []Entry
	persist Persister
}

// NewEntryLog wraps entries. p may be nil.
func NewEntryLog(entries []Entry, p Persister) *EntryLog {
	l := &EntryLog{entries: append([]Entry(nil), entries...), persist: p}
	l.sort()
	return l
}

func (l *EntryLog) sort() {
	sort.SliceStable(l.entries, func(i, j int) bool {
		return l.entries[i].StartTimeEpoch > l.entries[j].StartTimeEpoch
	})
}

func (l *EntryLog) indexOf(id string) int {
	for i := range l.entries {
		if l.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// Append inserts e and persists it. The in-memory append stands even when
// persisting fails; the error is returned for reporting.
func (l *EntryLog) Append(e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = fmt.Sprintf("task-%d", e.StartTimeEpoch)
	}
	if l.indexOf(e.ID) >= 0 {
		base := e.ID
		for n := 2; l.indexOf(e.ID) >= 0; n++ {
			e.ID = fmt.Sprintf("%s-%d", base, n)
		}
	}
	if e.Date == "" {
		e.Date = DateOfMillis(e.StartTimeEpoch)
	}

	l.entries = append(l.entries, e)
	l.sort()

	if l.persist != nil {
		if err := l.persist.SaveEntry(e); err != nil {
			return e, fmt.Errorf("save entry %s: %w", e.ID, err)
		}
	}
	return e, nil
}

// Edit rewrites the editable fields of entry id. The start time is kept;
// end time and date are recomputed from it. ok is false when id is unknown.
func (l *EntryLog) Edit(id string, ed EntryEdit) (updated Entry, ok bool, err error) {
	i := l.indexOf(id)
	if i < 0 {
		return Entry{}, false, nil
	}

	e := l.entries[i]
	if d := strings.TrimSpace(ed.Description); d != "" {
		e.Description = d
	}
	if ed.DurationSeconds < 0 {
		ed.DurationSeconds = 0
	}
	e.DurationSeconds = ed.DurationSeconds
	e.ProjectID = ed.ProjectID
	e.EndTimeEpoch = e.StartTimeEpoch + ed.DurationSeconds*1000
	e.Date = DateOfMillis(e.StartTimeEpoch)

	l.entries[i] = e
	l.sort()

	if l.persist != nil {
		if err := l.persist.SaveEntry(e); err != nil {
			return e, true, fmt.Errorf("save entry %s: %w", e.ID, err)
		}
	}
	return e, true, nil
}

// Replace swaps the whole log, as after a restore.
func (l *EntryLog) Replace(entries []Entry) error {
	l.entries = append([]Entry(nil), entries...)
	l.sort()
	if l.persist != nil {
		if err := l.persist.ReplaceEntries(l.entries); err != nil {
			return fmt.Errorf("replace entries: %w", err)
		}
	}
	return nil
}

// All returns a copy of the log in order.
func (l *EntryLog) All() []Entry {
	return append([]Entry(nil), l.entries...)
}

func (l *EntryLog) Get(id string) (Entry, bool) {
	if i := l.indexOf(id); i >= 0 {
		return l.entries[i], true
	}
	return Entry{}, false
}

// ForDate returns the entries logged on date, oldest first.
func (l *EntryLog) ForDate(date string) []Entry {
	var out []Entry
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].Date == date {
			out = append(out, l.entries[i])
		}
	}
	return out
}

func (l *EntryLog) Len() int { return len(l.entries) }
