package sync

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/timekeeper/internal/store"
	"github.com/sadopc/timekeeper/internal/theme"
	"github.com/sadopc/timekeeper/internal/tracker"
)

type fakeRemote struct {
	authed    bool
	backup    []byte
	calendars []Calendar
	created   []string
	events    map[string][]CalendarEvent
	err       error
}

func (f *fakeRemote) Authenticated() bool { return f.authed }

func (f *fakeRemote) UploadBackup(_ context.Context, _ string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.backup = data
	return nil
}

func (f *fakeRemote) DownloadBackup(context.Context, string) ([]byte, error) {
	if f.backup == nil {
		return nil, ErrNoBackup
	}
	return f.backup, nil
}

func (f *fakeRemote) ListCalendars(context.Context) ([]Calendar, error) {
	return f.calendars, f.err
}

func (f *fakeRemote) CreateCalendar(_ context.Context, summary string) (Calendar, error) {
	f.created = append(f.created, summary)
	c := Calendar{ID: "new-" + summary, Summary: summary}
	f.calendars = append(f.calendars, c)
	return c, nil
}

func (f *fakeRemote) InsertEvent(_ context.Context, id string, ev CalendarEvent) error {
	if f.err != nil {
		return f.err
	}
	if f.events == nil {
		f.events = map[string][]CalendarEvent{}
	}
	f.events[id] = append(f.events[id], ev)
	return nil
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *fakeRemote, *store.Store) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	r := &fakeRemote{authed: true}
	return NewDispatcher(r, s, testSyncConfig("http://unused")), r, s
}

var start = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func finished(desc string, pomodoro bool) tracker.Entry {
	end := start.Add(25 * time.Minute).UnixMilli()
	e := tracker.Entry{
		ID:              "task-man-1",
		Description:     desc,
		StartTimeEpoch:  start.UnixMilli(),
		EndTimeEpoch:    end,
		DurationSeconds: 1500,
		Date:            "2026-05-04",
	}
	if pomodoro {
		e.IsPomodoro = true
		e.PomodoroCycleCount = 2
	}
	return e
}

// ============================================================
// Calendar
// ============================================================

func TestEventFor(t *testing.T) {
	ev := EventFor(finished("Write report", false), "Work")
	if ev.Summary != "Write report" {
		t.Fatalf("unexpected summary %q", ev.Summary)
	}
	if ev.Description != "Tracked with timekeeper.\nProject: Work" {
		t.Fatalf("unexpected description %q", ev.Description)
	}
	if ev.Start.DateTime != "2026-05-04T09:00:00Z" || ev.End.DateTime != "2026-05-04T09:25:00Z" {
		t.Fatalf("unexpected times %+v %+v", ev.Start, ev.End)
	}

	ev = EventFor(finished("", true), "")
	if ev.Summary != "Focus" {
		t.Fatalf("expected Focus summary, got %q", ev.Summary)
	}
	if ev.Description != "Tracked with timekeeper.\nPomodoro cycle: 2" {
		t.Fatalf("unexpected description %q", ev.Description)
	}

	if got := EventFor(finished("", false), "").Summary; got != tracker.UntitledDescription {
		t.Fatalf("expected untitled summary, got %q", got)
	}
}

func TestPushEntryRequiresSwitchAndAuth(t *testing.T) {
	d, r, s := newTestDispatcher(t)
	ctx := context.Background()

	if _, err := d.PushEntry(ctx, finished("x", false)); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}

	s.SetBool(store.KeyCalendarSync, true)
	r.authed = false
	if _, err := d.PushEntry(ctx, finished("x", false)); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if len(r.events) != 0 {
		t.Fatal("no event should be created")
	}
}

func TestPushEntryEnsuresCalendar(t *testing.T) {
	d, r, s := newTestDispatcher(t)
	s.SetBool(store.KeyCalendarSync, true)
	p, err := s.CreateProject("Work", "#EF4444")
	if err != nil {
		t.Fatal(err)
	}

	e := finished("Write", false)
	e.ProjectID = p.ID
	status, err := d.PushEntry(context.Background(), e)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(status, "Write") {
		t.Fatalf("unexpected status %q", status)
	}
	if len(r.created) != 1 || s.GetString(store.KeyCalendarID) != "new-timekeeper" {
		t.Fatalf("calendar not created: %v", r.created)
	}
	evs := r.events["new-timekeeper"]
	if len(evs) != 1 || !strings.Contains(evs[0].Description, "Project: Work") {
		t.Fatalf("unexpected events %+v", evs)
	}

	if _, err := d.PushEntry(context.Background(), finished("Again", false)); err != nil {
		t.Fatal(err)
	}
	if len(r.created) != 1 {
		t.Fatal("calendar should be created once")
	}
}

func TestPushEntrySkipsOpenEntry(t *testing.T) {
	d, r, s := newTestDispatcher(t)
	s.SetBool(store.KeyCalendarSync, true)

	e := finished("open", false)
	e.EndTimeEpoch = 0
	status, err := d.PushEntry(context.Background(), e)
	if err != nil || status != "" {
		t.Fatalf("expected silent skip, got %q %v", status, err)
	}
	if len(r.events) != 0 {
		t.Fatal("open entry must not be synced")
	}
}

func TestEnsureCalendarFindsExisting(t *testing.T) {
	d, r, s := newTestDispatcher(t)
	s.SetBool(store.KeyCalendarSync, true)
	r.calendars = []Calendar{{ID: "other", Summary: "Holidays"}, {ID: "tk", Summary: "timekeeper"}}

	status, err := d.EnsureCalendar(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(status, "ready") || s.GetString(store.KeyCalendarID) != "tk" {
		t.Fatalf("unexpected status %q id %q", status, s.GetString(store.KeyCalendarID))
	}
	if len(r.created) != 0 {
		t.Fatal("existing calendar should be reused")
	}
}

func TestForwardPostsResult(t *testing.T) {
	d, r, s := newTestDispatcher(t)

	d.Forward(finished("ignored", false))
	d.Wait()
	if len(r.events) != 0 {
		t.Fatal("disabled sync should not forward")
	}

	s.SetBool(store.KeyCalendarSync, true)
	s.SetSetting(store.KeyCalendarID, "tk")
	d.Forward(finished("Write", false))
	d.Wait()

	msg := d.WaitForResult()()
	res, ok := msg.(ResultMsg)
	if !ok {
		t.Fatalf("expected ResultMsg, got %T", msg)
	}
	if res.Op != OpEvent || res.Err != nil || len(r.events["tk"]) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

// ============================================================
// Backup and restore
// ============================================================

func TestBackupRestore(t *testing.T) {
	d, r, s := newTestDispatcher(t)
	ctx := context.Background()
	entries := []tracker.Entry{finished("Write", false)}

	if _, err := d.Backup(ctx, entries, start); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}

	s.SetBool(store.KeyDriveBackup, true)
	s.CreateProject("Work", "#EF4444")
	s.SetList(store.KeyThemeUnlocked, []string{theme.AgentSecret})
	s.SetSetting(store.KeyThemeSelected, theme.AgentSecret)
	if _, err := d.Backup(ctx, entries, start); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(r.backup), `"version": "1.6.0"`) {
		t.Fatalf("backup missing version: %s", r.backup)
	}

	s.SetSetting(store.KeyThemeSelected, theme.DefaultLight)
	snap, status, err := d.Restore(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Tasks) != 1 || !strings.Contains(status, "1 entries") {
		t.Fatalf("unexpected restore %q %+v", status, snap)
	}
	if s.GetString(store.KeyThemeSelected) != theme.AgentSecret {
		t.Fatalf("theme not restored: %q", s.GetString(store.KeyThemeSelected))
	}
}

func TestRestoreNormalizesThemes(t *testing.T) {
	d, r, s := newTestDispatcher(t)
	s.SetBool(store.KeyDriveBackup, true)
	r.backup = []byte(`{"version":"1.0.0","timestamp":1,"tasks":[],"projects":[],
		"selectedThemeId":"ironman-armor","unlockedThemeIds":["bogus"]}`)

	if _, _, err := d.Restore(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := s.GetString(store.KeyThemeSelected); got != theme.Default {
		t.Fatalf("locked theme should fall back to default, got %q", got)
	}
	if got := s.GetList(store.KeyThemeUnlocked); len(got) != 2 {
		t.Fatalf("expected built-in themes only, got %v", got)
	}
}

func TestRestoreWithoutBackup(t *testing.T) {
	d, _, s := newTestDispatcher(t)
	s.SetBool(store.KeyDriveBackup, true)
	if _, _, err := d.Restore(context.Background()); !errors.Is(err, ErrNoBackup) {
		t.Fatalf("expected ErrNoBackup, got %v", err)
	}
}
