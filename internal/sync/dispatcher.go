package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/timekeeper/internal/config"
	"github.com/sadopc/timekeeper/internal/store"
	"github.com/sadopc/timekeeper/internal/theme"
	"github.com/sadopc/timekeeper/internal/tracker"
)

// ErrDisabled means the feature is switched off in settings.
var ErrDisabled = errors.New("sync disabled")

// Op identifies a remote operation.
type Op string

const (
	OpEvent    Op = "event"
	OpCalendar Op = "calendar"
	OpBackup   Op = "backup"
	OpRestore  Op = "restore"
)

// ResultMsg is a tea.Msg carrying the outcome of a background operation.
type ResultMsg struct {
	Op     Op
	Status string
	Err    error
}

// Dispatcher runs backup, restore and calendar operations against a
// Remote, reading its switches from the settings store.
type Dispatcher struct {
	remote   Remote
	store    *store.Store
	cfg      config.SyncConfig
	timeout  time.Duration
	resultCh chan ResultMsg
	wg       gosync.WaitGroup
}

// NewDispatcher creates a dispatcher. cfg supplies the backup file and
// calendar names.
func NewDispatcher(r Remote, s *store.Store, cfg config.SyncConfig) *Dispatcher {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{
		remote:   r,
		store:    s,
		cfg:      cfg,
		timeout:  timeout,
		resultCh: make(chan ResultMsg, 16),
	}
}

// Authenticated reports whether the remote has a token.
func (d *Dispatcher) Authenticated() bool { return d.remote.Authenticated() }

// Forward mirrors a finished entry to the calendar in the background. The
// outcome arrives as a ResultMsg through WaitForResult.
func (d *Dispatcher) Forward(e tracker.Entry) {
	if !d.store.GetBool(store.KeyCalendarSync) {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		// The keyring lookup may be slow, so it stays off the UI goroutine.
		if !d.remote.Authenticated() {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		status, err := d.PushEntry(ctx, e)
		if err != nil {
			log.Printf("calendar sync of %s failed: %v", e.ID, err)
		}
		d.send(ResultMsg{Op: OpEvent, Status: status, Err: err})
	}()
}

// Wait blocks until background operations finish.
func (d *Dispatcher) Wait() { d.wg.Wait() }

func (d *Dispatcher) send(msg ResultMsg) {
	select {
	case d.resultCh <- msg:
	default:
		// Drop if nobody is listening.
	}
}

// WaitForResult returns a tea.Cmd that waits for the next background
// result. Call it again after each ResultMsg to keep listening.
func (d *Dispatcher) WaitForResult() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-d.resultCh
		if !ok {
			return nil
		}
		return msg
	}
}

func (d *Dispatcher) ready(key string) error {
	if !d.store.GetBool(key) {
		return ErrDisabled
	}
	if !d.remote.Authenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

// EnsureCalendar finds the app calendar by name, creating it if needed,
// and stores its id.
func (d *Dispatcher) EnsureCalendar(ctx context.Context) (string, error) {
	if err := d.ready(store.KeyCalendarSync); err != nil {
		return "", err
	}

	cals, err := d.remote.ListCalendars(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range cals {
		if c.Summary == d.cfg.CalendarName && c.ID != "" {
			if err := d.store.SetSetting(store.KeyCalendarID, c.ID); err != nil {
				return "", err
			}
			return fmt.Sprintf("Calendar %q ready", d.cfg.CalendarName), nil
		}
	}

	cal, err := d.remote.CreateCalendar(ctx, d.cfg.CalendarName)
	if err != nil {
		return "", err
	}
	if cal.ID == "" {
		return "", fmt.Errorf("created calendar %q has no id", d.cfg.CalendarName)
	}
	if err := d.store.SetSetting(store.KeyCalendarID, cal.ID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Calendar %q created", d.cfg.CalendarName), nil
}

// EventFor builds the calendar event for a finished entry. projectName is
// empty when the entry has no known project.
func EventFor(e tracker.Entry, projectName string) CalendarEvent {
	summary := e.Description
	if summary == "" {
		summary = tracker.UntitledDescription
		if e.IsPomodoro {
			summary = tracker.PhaseFocus.Label()
		}
	}

	desc := "Tracked with timekeeper."
	if projectName != "" {
		desc += "\nProject: " + projectName
	}
	if e.IsPomodoro {
		desc += fmt.Sprintf("\nPomodoro cycle: %d", e.PomodoroCycleCount)
	}

	end, _ := e.End()
	return CalendarEvent{
		Summary:     summary,
		Description: desc,
		Start:       EventTime{DateTime: e.Start().UTC().Format(time.RFC3339)},
		End:         EventTime{DateTime: end.UTC().Format(time.RFC3339)},
	}
}

// PushEntry creates a calendar event for e. Entries without an end time
// are skipped.
func (d *Dispatcher) PushEntry(ctx context.Context, e tracker.Entry) (string, error) {
	if err := d.ready(store.KeyCalendarSync); err != nil {
		return "", err
	}
	if _, ok := e.End(); !ok {
		return "", nil
	}

	calID := d.store.GetString(store.KeyCalendarID)
	if calID == "" {
		if _, err := d.EnsureCalendar(ctx); err != nil {
			return "", err
		}
		calID = d.store.GetString(store.KeyCalendarID)
	}

	var projectName string
	if e.ProjectID != "" {
		if p, err := d.store.GetProject(e.ProjectID); err == nil {
			projectName = p.Name
		}
	}

	ev := EventFor(e, projectName)
	if err := d.remote.InsertEvent(ctx, calID, ev); err != nil {
		return "", err
	}
	return fmt.Sprintf("Synced %q to calendar", ev.Summary), nil
}

// Backup uploads a snapshot of the store and entries.
func (d *Dispatcher) Backup(ctx context.Context, entries []tracker.Entry, now time.Time) (string, error) {
	if err := d.ready(store.KeyDriveBackup); err != nil {
		return "", err
	}
	snap, err := d.store.Snapshot(entries, now)
	if err != nil {
		return "", err
	}
	data, err := snap.Marshal()
	if err != nil {
		return "", err
	}
	if err := d.remote.UploadBackup(ctx, d.cfg.BackupFilename, data); err != nil {
		return "", err
	}
	return fmt.Sprintf("Backed up %d entries", len(entries)), nil
}

// Restore downloads the backup and replaces projects and settings. The
// returned snapshot's entries must be applied to the entry log by the
// caller.
func (d *Dispatcher) Restore(ctx context.Context) (*store.Snapshot, string, error) {
	if err := d.ready(store.KeyDriveBackup); err != nil {
		return nil, "", err
	}
	data, err := d.remote.DownloadBackup(ctx, d.cfg.BackupFilename)
	if err != nil {
		return nil, "", err
	}
	snap, err := store.ParseSnapshot(data)
	if err != nil {
		return nil, "", err
	}
	snap.UnlockedThemeIDs = theme.Normalize(snap.UnlockedThemeIDs)
	snap.SelectedThemeID = theme.Selected(snap.SelectedThemeID, snap.UnlockedThemeIDs)

	if err := d.store.RestoreSnapshot(snap); err != nil {
		return nil, "", err
	}
	return snap, fmt.Sprintf("Restored %d entries and %d projects", len(snap.Tasks), len(snap.Projects)), nil
}
