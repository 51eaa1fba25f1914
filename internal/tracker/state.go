package tracker

import "time"

// ManualSession is a running or paused stopwatch. It exists only between
// start and stop.
type ManualSession struct {
	ElapsedSeconds int
	Description    string
	ProjectID      string
	Running        bool
	StartedAt      time.Time
}

// PomodoroSession holds the engine's transient state. Phase is PhaseIdle
// when no session is active.
type PomodoroSession struct {
	Phase                Phase
	ElapsedSeconds       int
	Running              bool
	CyclesInSet          int
	CompletedThisSession int
	Description          string
	ProjectID            string
	FocusStart           time.Time // zero until a focus phase starts
}

// State is the whole timer state. Apply never mutates its argument.
type State struct {
	Manual    *ManualSession
	Pomodoro  PomodoroSession
	Settings  Settings
	FocusMode bool
}

// NewState returns an idle state using settings.
func NewState(settings Settings) State {
	return State{Settings: settings}
}

func (s State) clone() State {
	if s.Manual != nil {
		m := *s.Manual
		s.Manual = &m
	}
	return s
}

// PomodoroActive reports whether a pomodoro session is in a non-idle phase.
func (s State) PomodoroActive() bool {
	return s.Pomodoro.Phase != PhaseIdle
}

// Running reports whether either timer is currently advancing.
func (s State) Running() bool {
	return (s.Manual != nil && s.Manual.Running) ||
		(s.PomodoroActive() && s.Pomodoro.Running)
}

// Ticking reports whether a repeating tick must be armed.
func (s State) Ticking() bool {
	return s.Running()
}

// PhaseRemaining is the countdown for the current pomodoro phase. It is
// zero for idle and for phases with no positive duration.
func (s State) PhaseRemaining() int {
	d := s.Settings.PhaseSeconds(s.Pomodoro.Phase)
	if d <= 0 {
		return 0
	}
	if r := d - s.Pomodoro.ElapsedSeconds; r > 0 {
		return r
	}
	return 0
}

// ActiveTimerInfo is a display projection of the active session.
type ActiveTimerInfo struct {
	Mode           Mode
	ElapsedSeconds int
	Phase          Phase
	Description    string
	Running        bool
}

// ActiveTimer returns nil when neither timer is active.
func (s State) ActiveTimer() *ActiveTimerInfo {
	if s.Manual != nil {
		return &ActiveTimerInfo{
			Mode:           ModeManual,
			ElapsedSeconds: s.Manual.ElapsedSeconds,
			Description:    s.Manual.Description,
			Running:        s.Manual.Running,
		}
	}
	if s.PomodoroActive() {
		return &ActiveTimerInfo{
			Mode:           ModePomodoro,
			ElapsedSeconds: s.Pomodoro.ElapsedSeconds,
			Phase:          s.Pomodoro.Phase,
			Description:    s.Pomodoro.Description,
			Running:        s.Pomodoro.Running,
		}
	}
	return nil
}
