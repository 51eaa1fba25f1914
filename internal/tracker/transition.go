package tracker

import (
	"strings"
	"time"
)

// Apply computes the state that follows ev at time now, together with the
// side effects the caller must perform. Invalid operations return the
// state unchanged and no effects.
func Apply(s State, ev Event, now time.Time) (State, []Effect) {
	s = s.clone()
	var fx []Effect

	switch ev := ev.(type) {
	case StartManual:
		if s.Manual != nil {
			return s, nil
		}
		// Switching away from pomodoro discards the session without logging.
		if s.PomodoroActive() {
			fx = append(fx, SessionEnded{Completed: s.Pomodoro.CompletedThisSession, Reason: EndCancelled})
		}
		s.Pomodoro = resetPomodoro(s.Pomodoro)
		s.Manual = &ManualSession{
			Description: strings.TrimSpace(ev.Description),
			ProjectID:   ev.ProjectID,
			Running:     true,
			StartedAt:   now,
		}
		s.FocusMode = false
		fx = append(fx, Navigate{To: DestTracking})

	case UpdateManualDescription:
		if s.Manual != nil {
			s.Manual.Description = ev.Description
		}

	case UpdateManualProject:
		if s.Manual != nil {
			s.Manual.ProjectID = ev.ProjectID
		}

	case ToggleManualPause:
		if s.Manual != nil {
			s.Manual.Running = !s.Manual.Running
		}

	case StopManual:
		if s.Manual == nil {
			return s, nil
		}
		m := s.Manual
		e := Entry{
			ID:              entryID("man", now),
			Description:     describe(m.Description, UntitledDescription),
			ProjectID:       m.ProjectID,
			StartTimeEpoch:  m.StartedAt.UnixMilli(),
			EndTimeEpoch:    now.UnixMilli(),
			DurationSeconds: int64(m.ElapsedSeconds),
			Date:            DateOf(m.StartedAt),
		}
		s.Manual = nil
		s.FocusMode = false
		fx = append(fx, LogEntry{Entry: e}, Navigate{To: DestDashboard})

	case StartFocus:
		if s.PomodoroActive() {
			fx = append(fx, SessionEnded{Completed: s.Pomodoro.CompletedThisSession, Reason: EndCancelled})
		}
		s.Manual = nil
		s.Pomodoro = PomodoroSession{
			Phase:       PhaseFocus,
			Running:     true,
			Description: strings.TrimSpace(ev.Description),
			ProjectID:   ev.ProjectID,
			FocusStart:  now,
		}
		s.FocusMode = false
		fx = append(fx, SessionStarted{Settings: s.Settings}, Navigate{To: DestTracking})

	case PausePomodoro:
		if s.PomodoroActive() {
			s.Pomodoro.Running = false
		}

	case ResumePomodoro:
		if s.PomodoroActive() {
			s.Pomodoro.Running = true
		}

	case SkipBreak:
		if !s.Pomodoro.Phase.IsBreak() {
			return s, nil
		}
		from := s.Pomodoro.Phase
		s.Pomodoro.Phase = PhaseFocus
		s.Pomodoro.ElapsedSeconds = 0
		s.Pomodoro.FocusStart = now
		s.Pomodoro.Running = true
		fx = append(fx, PhaseChanged{From: from, To: PhaseFocus})

	case StopPomodoro:
		if !s.PomodoroActive() {
			return s, nil
		}
		if s.Pomodoro.Phase == PhaseFocus && s.Pomodoro.ElapsedSeconds > 0 {
			if e, ok := focusEntry(s.Pomodoro, int64(s.Pomodoro.ElapsedSeconds), now); ok {
				fx = append(fx, LogEntry{Entry: e})
			}
		}
		fx = append(fx, SessionEnded{Completed: s.Pomodoro.CompletedThisSession, Reason: EndStopped})
		s.Pomodoro = resetPomodoro(s.Pomodoro)
		s.FocusMode = false
		fx = append(fx, Navigate{To: DestDashboard})

	case Tick:
		if s.Manual != nil && s.Manual.Running {
			s.Manual.ElapsedSeconds++
		}
		if s.PomodoroActive() && s.Pomodoro.Running {
			var more []Effect
			s.Pomodoro, more = tickPomodoro(s.Pomodoro, s.Settings, now)
			fx = append(fx, more...)
		}

	case ApplySettings:
		s.Settings = ev.Settings

	case EnterFocusMode:
		if ev.OnTrackingView && s.Running() {
			s.FocusMode = true
		}

	case ExitFocusMode:
		s.FocusMode = false

	case PresentationChanged:
		if !ev.Fullscreen {
			s.FocusMode = false
		}
	}

	return s, fx
}

// tickPomodoro advances a running phase by one second and completes it when
// the boundary is reached. A phase without a positive duration never
// completes.
func tickPomodoro(p PomodoroSession, settings Settings, now time.Time) (PomodoroSession, []Effect) {
	duration := settings.PhaseSeconds(p.Phase)
	if duration <= 0 || p.ElapsedSeconds+1 < duration {
		p.ElapsedSeconds++
		return p, nil
	}

	p.ElapsedSeconds = duration
	from := p.Phase
	var fx []Effect

	var next Phase
	switch from {
	case PhaseFocus:
		if e, ok := focusEntry(p, int64(p.ElapsedSeconds), now); ok {
			fx = append(fx, LogEntry{Entry: e})
		}
		p.CyclesInSet++
		p.CompletedThisSession++
		if p.CyclesInSet >= settings.CyclesPerLongBreak {
			next = PhaseLongBreak
			p.CyclesInSet = 0
		} else {
			next = PhaseShortBreak
		}
	default:
		next = PhaseFocus
	}

	p.Phase = next
	p.ElapsedSeconds = 0
	if next == PhaseFocus {
		p.FocusStart = now
	}
	p.Running = true

	return p, append(fx, PhaseChanged{From: from, To: next, Completed: true})
}

// focusEntry builds the entry for a focus interval of durationSeconds. The
// cycle number is taken before the set counter is incremented.
func focusEntry(p PomodoroSession, durationSeconds int64, now time.Time) (Entry, bool) {
	if p.FocusStart.IsZero() || durationSeconds <= 0 {
		return Entry{}, false
	}
	return Entry{
		ID:                 entryID("pom", now),
		Description:        describe(p.Description, PhaseFocus.Label()),
		ProjectID:          p.ProjectID,
		StartTimeEpoch:     p.FocusStart.UnixMilli(),
		EndTimeEpoch:       now.UnixMilli(),
		DurationSeconds:    durationSeconds,
		IsPomodoro:         true,
		PomodoroCycleCount: p.CyclesInSet + 1,
		Date:               DateOf(p.FocusStart),
	}, true
}

// resetPomodoro returns the session to idle. Counters and task fields are
// kept for display until the next StartFocus resets them.
func resetPomodoro(p PomodoroSession) PomodoroSession {
	p.Phase = PhaseIdle
	p.Running = false
	p.ElapsedSeconds = 0
	return p
}
