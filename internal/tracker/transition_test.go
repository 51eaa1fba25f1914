package tracker

import (
	"strconv"
	"testing"
	"time"
)

var t0 = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func at(sec int) time.Time { return t0.Add(time.Duration(sec) * time.Second) }

func shortSettings() Settings {
	return Settings{
		FocusDurationMinutes:      1,
		ShortBreakDurationMinutes: 1,
		LongBreakDurationMinutes:  2,
		CyclesPerLongBreak:        4,
	}
}

func logged(fx []Effect) []Entry {
	var out []Entry
	for _, f := range fx {
		if le, ok := f.(LogEntry); ok {
			out = append(out, le.Entry)
		}
	}
	return out
}

// tickN applies n ticks, one second apart starting after from.
func tickN(s State, n, from int) (State, []Entry) {
	var entries []Entry
	for i := 1; i <= n; i++ {
		var fx []Effect
		s, fx = Apply(s, Tick{}, at(from+i))
		entries = append(entries, logged(fx)...)
	}
	return s, entries
}

// ============================================================
// Settings
// ============================================================

func TestDefaultSettingsValid(t *testing.T) {
	if err := DefaultSettings().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestSettingsValidateRejectsNonPositive(t *testing.T) {
	tests := []Settings{
		{0, 5, 15, 4},
		{25, -1, 15, 4},
		{25, 5, 0, 4},
		{25, 5, 15, 0},
	}
	for _, s := range tests {
		if err := s.Validate(); err == nil {
			t.Errorf("expected error for %+v", s)
		}
	}
}

func TestDurationsTable(t *testing.T) {
	d := DefaultSettings().Durations()
	if d[PhaseIdle] != 0 || d[PhaseFocus] != 1500 || d[PhaseShortBreak] != 300 || d[PhaseLongBreak] != 900 {
		t.Fatalf("unexpected durations: %v", d)
	}
}

// ============================================================
// Manual timer
// ============================================================

func TestManualStart(t *testing.T) {
	s, fx := Apply(NewState(DefaultSettings()), StartManual{Description: "  write docs ", ProjectID: "p1"}, t0)
	if s.Manual == nil {
		t.Fatal("expected a manual session")
	}
	if !s.Manual.Running || s.Manual.ElapsedSeconds != 0 || !s.Manual.StartedAt.Equal(t0) {
		t.Fatalf("unexpected session: %+v", s.Manual)
	}
	if s.Manual.Description != "write docs" {
		t.Fatalf("description should be trimmed, got %q", s.Manual.Description)
	}
	if len(fx) != 1 || fx[0] != (Navigate{To: DestTracking}) {
		t.Fatalf("expected navigate to tracking, got %v", fx)
	}
}

func TestManualStartWhileActiveIsNoop(t *testing.T) {
	s, _ := Apply(NewState(DefaultSettings()), StartManual{Description: "a"}, t0)
	s, _ = tickN(s, 3, 0)
	s2, fx := Apply(s, StartManual{Description: "b"}, at(5))
	if fx != nil || s2.Manual.Description != "a" || s2.Manual.ElapsedSeconds != 3 {
		t.Fatal("second start should be ignored")
	}
}

func TestManualTickMonotonic(t *testing.T) {
	s, _ := Apply(NewState(DefaultSettings()), StartManual{Description: "x"}, t0)
	for i := 1; i <= 10; i++ {
		s, _ = Apply(s, Tick{}, at(i))
		if i == 4 {
			s, _ = Apply(s, UpdateManualDescription{Description: "renamed"}, at(i))
		}
		if i == 7 {
			s, _ = Apply(s, UpdateManualProject{ProjectID: "p2"}, at(i))
		}
	}
	if s.Manual.ElapsedSeconds != 10 {
		t.Fatalf("expected 10 elapsed, got %d", s.Manual.ElapsedSeconds)
	}
	if s.Manual.Description != "renamed" || s.Manual.ProjectID != "p2" {
		t.Fatalf("edits lost: %+v", s.Manual)
	}
}

func TestManualPauseIdempotence(t *testing.T) {
	s, _ := Apply(NewState(DefaultSettings()), StartManual{}, t0)
	s, _ = tickN(s, 5, 0)
	s, _ = Apply(s, ToggleManualPause{}, at(6))
	if s.Manual.Running {
		t.Fatal("expected paused")
	}
	s, _ = tickN(s, 3, 6)
	if s.Manual.ElapsedSeconds != 5 {
		t.Fatalf("paused timer advanced to %d", s.Manual.ElapsedSeconds)
	}
	s, _ = Apply(s, ToggleManualPause{}, at(10))
	if !s.Manual.Running || s.Manual.ElapsedSeconds != 5 {
		t.Fatalf("toggle twice should restore running without changing elapsed: %+v", s.Manual)
	}
}

func TestManualStopLogsEntry(t *testing.T) {
	s, _ := Apply(NewState(DefaultSettings()), StartManual{Description: "   ", ProjectID: "p1"}, t0)
	s, _ = tickN(s, 42, 0)
	s, _ = Apply(s, EnterFocusMode{OnTrackingView: true}, at(42))
	s, fx := Apply(s, StopManual{}, at(43))

	if s.Manual != nil {
		t.Fatal("session should be destroyed")
	}
	if s.FocusMode {
		t.Fatal("stop should exit focus mode")
	}
	entries := logged(fx)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Description != UntitledDescription || e.DurationSeconds != 42 || e.IsPomodoro || e.PomodoroCycleCount != 0 {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.StartTimeEpoch != t0.UnixMilli() || e.EndTimeEpoch != at(43).UnixMilli() || e.ProjectID != "p1" {
		t.Fatalf("unexpected times/project: %+v", e)
	}
	if e.Date != "2026-05-04" || e.ID != "task-man-"+itoa(at(43).UnixMilli()) {
		t.Fatalf("unexpected date/id: %+v", e)
	}
	if fx[len(fx)-1] != (Navigate{To: DestDashboard}) {
		t.Fatal("expected navigation to dashboard")
	}
}

func TestManualStopWithoutSession(t *testing.T) {
	s, fx := Apply(NewState(DefaultSettings()), StopManual{}, t0)
	if fx != nil || s.Manual != nil {
		t.Fatal("stop without session should be a no-op")
	}
}

// ============================================================
// Pomodoro engine
// ============================================================

func TestStartFocus(t *testing.T) {
	s, fx := Apply(NewState(DefaultSettings()), StartFocus{Description: "deep work", ProjectID: "p"}, t0)
	p := s.Pomodoro
	if p.Phase != PhaseFocus || !p.Running || p.ElapsedSeconds != 0 || p.CyclesInSet != 0 || p.CompletedThisSession != 0 {
		t.Fatalf("unexpected session: %+v", p)
	}
	if !p.FocusStart.Equal(t0) {
		t.Fatal("focus start not set")
	}
	if len(fx) != 2 {
		t.Fatalf("expected session start + navigate, got %v", fx)
	}
	if _, ok := fx[0].(SessionStarted); !ok {
		t.Fatalf("expected SessionStarted, got %T", fx[0])
	}
}

func TestPhaseCompletionBoundary(t *testing.T) {
	s, _ := Apply(NewState(shortSettings()), StartFocus{}, t0)
	s, entries := tickN(s, 59, 0)
	if s.Pomodoro.Phase != PhaseFocus || s.Pomodoro.ElapsedSeconds != 59 || len(entries) != 0 {
		t.Fatalf("completed too early: %+v", s.Pomodoro)
	}

	s, fx := Apply(s, Tick{}, at(60))
	p := s.Pomodoro
	if p.Phase != PhaseShortBreak || p.CyclesInSet != 1 || p.ElapsedSeconds != 0 || !p.Running {
		t.Fatalf("unexpected state after boundary: %+v", p)
	}
	entries = logged(fx)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.DurationSeconds != 60 || !e.IsPomodoro || e.PomodoroCycleCount != 1 || e.Description != "Focus" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.StartTimeEpoch != t0.UnixMilli() {
		t.Fatal("entry should start at focus start")
	}

	var changed bool
	for _, f := range fx {
		if pc, ok := f.(PhaseChanged); ok && pc.From == PhaseFocus && pc.To == PhaseShortBreak && pc.Completed {
			changed = true
		}
	}
	if !changed {
		t.Fatal("expected PhaseChanged effect")
	}
}

func TestBreakCompletionReturnsToFocus(t *testing.T) {
	s, _ := Apply(NewState(shortSettings()), StartFocus{}, t0)
	s, _ = tickN(s, 60, 0)
	s, entries := tickN(s, 60, 60)
	if s.Pomodoro.Phase != PhaseFocus || !s.Pomodoro.Running {
		t.Fatalf("expected auto-started focus, got %+v", s.Pomodoro)
	}
	if !s.Pomodoro.FocusStart.Equal(at(120)) {
		t.Fatalf("focus start should be reset, got %v", s.Pomodoro.FocusStart)
	}
	if len(entries) != 0 {
		t.Fatal("breaks must not log entries")
	}
	if s.Pomodoro.CyclesInSet != 1 || s.Pomodoro.CompletedThisSession != 1 {
		t.Fatal("break completion should not touch counters")
	}
}

func TestLongBreakRollover(t *testing.T) {
	s, _ := Apply(NewState(shortSettings()), StartFocus{Description: "set"}, t0)
	clock := 0
	var all []Entry
	for cycle := 1; cycle <= 4; cycle++ {
		var entries []Entry
		s, entries = tickN(s, 60, clock)
		clock += 60
		all = append(all, entries...)
		if cycle < 4 {
			if s.Pomodoro.Phase != PhaseShortBreak {
				t.Fatalf("cycle %d: expected short break, got %v", cycle, s.Pomodoro.Phase)
			}
			s, _ = tickN(s, 60, clock)
			clock += 60
		}
	}
	p := s.Pomodoro
	if p.Phase != PhaseLongBreak || p.CyclesInSet != 0 || p.CompletedThisSession != 4 {
		t.Fatalf("unexpected state after 4 cycles: %+v", p)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(all))
	}
	for i, e := range all {
		if e.PomodoroCycleCount != i+1 {
			t.Errorf("entry %d: expected cycle %d, got %d", i, i+1, e.PomodoroCycleCount)
		}
	}

	// Long break (2 min) completes back into focus.
	s, _ = tickN(s, 120, clock)
	if s.Pomodoro.Phase != PhaseFocus {
		t.Fatalf("expected focus after long break, got %v", s.Pomodoro.Phase)
	}
}

func TestStopDuringFocusLogsPartial(t *testing.T) {
	s, _ := Apply(NewState(DefaultSettings()), StartFocus{Description: "partial"}, t0)
	s, _ = tickN(s, 10, 0)
	s, fx := Apply(s, StopPomodoro{}, at(10))

	entries := logged(fx)
	if len(entries) != 1 || entries[0].DurationSeconds != 10 || entries[0].Description != "partial" {
		t.Fatalf("expected one 10s entry, got %+v", entries)
	}
	if s.Pomodoro.Phase != PhaseIdle || s.Pomodoro.Running || s.Pomodoro.ElapsedSeconds != 0 {
		t.Fatalf("expected idle, got %+v", s.Pomodoro)
	}
}

func TestStopDuringFocusWithZeroElapsedLogsNothing(t *testing.T) {
	s, _ := Apply(NewState(DefaultSettings()), StartFocus{}, t0)
	_, fx := Apply(s, StopPomodoro{}, t0)
	if len(logged(fx)) != 0 {
		t.Fatal("zero-length focus must not be logged")
	}
}

func TestStopDuringBreakLogsNothing(t *testing.T) {
	s, _ := Apply(NewState(shortSettings()), StartFocus{}, t0)
	s, entries := tickN(s, 60, 0)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	s, _ = tickN(s, 5, 60)
	s, fx := Apply(s, StopPomodoro{}, at(66))
	if len(logged(fx)) != 0 {
		t.Fatal("stopping a break must not log")
	}
	if s.Pomodoro.Phase != PhaseIdle {
		t.Fatal("expected idle")
	}
}

func TestStopWhenIdleIsNoop(t *testing.T) {
	s, fx := Apply(NewState(DefaultSettings()), StopPomodoro{}, t0)
	if fx != nil || s.Pomodoro.Phase != PhaseIdle {
		t.Fatal("stop while idle should be ignored")
	}
}

func TestPauseResumePomodoro(t *testing.T) {
	s, _ := Apply(NewState(DefaultSettings()), StartFocus{}, t0)
	s, _ = tickN(s, 3, 0)
	s, _ = Apply(s, PausePomodoro{}, at(3))
	s, _ = tickN(s, 10, 3)
	if s.Pomodoro.ElapsedSeconds != 3 || s.Pomodoro.Phase != PhaseFocus {
		t.Fatalf("paused engine advanced: %+v", s.Pomodoro)
	}
	s, _ = Apply(s, ResumePomodoro{}, at(14))
	if !s.Pomodoro.Running {
		t.Fatal("expected running")
	}

	idle, _ := Apply(NewState(DefaultSettings()), ResumePomodoro{}, t0)
	if idle.Pomodoro.Running {
		t.Fatal("resume must not run an idle engine")
	}
}

func TestSkipBreak(t *testing.T) {
	s, _ := Apply(NewState(shortSettings()), StartFocus{}, t0)
	s, _ = tickN(s, 60, 0)
	s, _ = tickN(s, 7, 60)
	s, fx := Apply(s, SkipBreak{}, at(70))
	p := s.Pomodoro
	if p.Phase != PhaseFocus || p.ElapsedSeconds != 0 || !p.Running || !p.FocusStart.Equal(at(70)) {
		t.Fatalf("unexpected state after skip: %+v", p)
	}
	if p.CyclesInSet != 1 || p.CompletedThisSession != 1 {
		t.Fatal("skip must not change counters")
	}
	if len(logged(fx)) != 0 {
		t.Fatal("skip must not log")
	}

	s2, fx := Apply(s, SkipBreak{}, at(71))
	if fx != nil || s2.Pomodoro.Phase != PhaseFocus {
		t.Fatal("skip during focus should be ignored")
	}
}

func TestZeroDurationPhaseNeverCompletes(t *testing.T) {
	settings := DefaultSettings()
	settings.FocusDurationMinutes = 0
	s, _ := Apply(NewState(settings), StartFocus{}, t0)
	s, entries := tickN(s, 5000, 0)
	if s.Pomodoro.Phase != PhaseFocus {
		t.Fatalf("zero-length focus completed: %v", s.Pomodoro.Phase)
	}
	if s.Pomodoro.ElapsedSeconds != 5000 {
		t.Fatalf("expected elapsed to keep counting, got %d", s.Pomodoro.ElapsedSeconds)
	}
	if len(entries) != 0 {
		t.Fatal("no entries expected")
	}
}

// ============================================================
// Mutual exclusion
// ============================================================

func TestManualStartCancelsPomodoroWithoutLogging(t *testing.T) {
	s, _ := Apply(NewState(DefaultSettings()), StartFocus{Description: "focus"}, t0)
	s, _ = tickN(s, 30, 0)
	s, fx := Apply(s, StartManual{Description: "manual"}, at(31))
	if len(logged(fx)) != 0 {
		t.Fatal("switching to manual must not log")
	}
	if s.Pomodoro.Phase != PhaseIdle || s.Pomodoro.Running {
		t.Fatalf("pomodoro should be idle: %+v", s.Pomodoro)
	}
	if s.Manual == nil || !s.Manual.Running {
		t.Fatal("manual should be running")
	}
	var ended bool
	for _, f := range fx {
		if se, ok := f.(SessionEnded); ok && se.Reason == EndCancelled {
			ended = true
		}
	}
	if !ended {
		t.Fatal("expected a cancelled SessionEnded effect")
	}
}

func TestFocusStartDiscardsManualWithoutLogging(t *testing.T) {
	s, _ := Apply(NewState(DefaultSettings()), StartManual{Description: "manual"}, t0)
	s, _ = tickN(s, 30, 0)
	s, fx := Apply(s, StartFocus{}, at(31))
	if len(logged(fx)) != 0 {
		t.Fatal("switching to pomodoro must not log")
	}
	if s.Manual != nil {
		t.Fatal("manual session should be discarded")
	}
	if s.Pomodoro.Phase != PhaseFocus {
		t.Fatal("expected focus")
	}
}

// ============================================================
// Focus mode & projection
// ============================================================

func TestFocusModeGuards(t *testing.T) {
	s := NewState(DefaultSettings())
	s, _ = Apply(s, EnterFocusMode{OnTrackingView: true}, t0)
	if s.FocusMode {
		t.Fatal("focus mode requires a running timer")
	}

	s, _ = Apply(s, StartManual{}, t0)
	s, _ = Apply(s, EnterFocusMode{OnTrackingView: false}, t0)
	if s.FocusMode {
		t.Fatal("focus mode requires the tracking view")
	}
	s, _ = Apply(s, EnterFocusMode{OnTrackingView: true}, t0)
	if !s.FocusMode {
		t.Fatal("expected focus mode")
	}

	s, _ = Apply(s, PresentationChanged{Fullscreen: true}, t0)
	if !s.FocusMode {
		t.Fatal("fullscreen notification should keep focus mode")
	}
	s, _ = Apply(s, PresentationChanged{Fullscreen: false}, t0)
	if s.FocusMode {
		t.Fatal("leaving fullscreen should collapse focus mode")
	}

	s, _ = Apply(s, EnterFocusMode{OnTrackingView: true}, t0)
	s, _ = Apply(s, ExitFocusMode{}, t0)
	if s.FocusMode {
		t.Fatal("exit should always work")
	}
}

func TestActiveTimerProjection(t *testing.T) {
	s := NewState(DefaultSettings())
	if s.ActiveTimer() != nil {
		t.Fatal("expected no active timer")
	}

	m, _ := Apply(s, StartManual{Description: "m"}, t0)
	m, _ = tickN(m, 2, 0)
	info := m.ActiveTimer()
	if info == nil || info.Mode != ModeManual || info.ElapsedSeconds != 2 || info.Description != "m" {
		t.Fatalf("unexpected manual info: %+v", info)
	}

	p, _ := Apply(s, StartFocus{Description: "p"}, t0)
	p, _ = tickN(p, 4, 0)
	info = p.ActiveTimer()
	if info == nil || info.Mode != ModePomodoro || info.Phase != PhaseFocus || info.ElapsedSeconds != 4 {
		t.Fatalf("unexpected pomodoro info: %+v", info)
	}
	if p.PhaseRemaining() != 1500-4 {
		t.Fatalf("unexpected remaining: %d", p.PhaseRemaining())
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	s, _ := Apply(NewState(DefaultSettings()), StartManual{}, t0)
	before := s.Manual.ElapsedSeconds
	_, _ = Apply(s, Tick{}, at(1))
	if s.Manual.ElapsedSeconds != before {
		t.Fatal("Apply mutated its input")
	}
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
