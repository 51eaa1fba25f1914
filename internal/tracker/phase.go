package tracker

// Phase is a state of the pomodoro engine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFocus
	PhaseShortBreak
	PhaseLongBreak
)

var phaseNames = map[Phase]string{
	PhaseIdle:       "IDLE",
	PhaseFocus:      "FOCUS",
	PhaseShortBreak: "SHORT_BREAK",
	PhaseLongBreak:  "LONG_BREAK",
}

var phaseLabels = map[Phase]string{
	PhaseIdle:       "Idle",
	PhaseFocus:      "Focus",
	PhaseShortBreak: "Short Break",
	PhaseLongBreak:  "Long Break",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "UNKNOWN"
}

// Label is the human-readable phase name. Focus entries without a
// description are logged under this label.
func (p Phase) Label() string {
	return phaseLabels[p]
}

// IsBreak reports whether p is one of the break phases.
func (p Phase) IsBreak() bool {
	return p == PhaseShortBreak || p == PhaseLongBreak
}

// Mode identifies which timer an ActiveTimerInfo describes.
type Mode string

const (
	ModeManual   Mode = "MANUAL"
	ModePomodoro Mode = "POMODORO"
)
