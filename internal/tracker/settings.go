package tracker

import (
	"errors"
	"fmt"
)

// Settings configures the pomodoro engine. All values are positive once
// validated by the settings editor.
type Settings struct {
	FocusDurationMinutes      int `json:"focusDurationMinutes"`
	ShortBreakDurationMinutes int `json:"shortBreakDurationMinutes"`
	LongBreakDurationMinutes  int `json:"longBreakDurationMinutes"`
	CyclesPerLongBreak        int `json:"cyclesPerLongBreak"`
}

func DefaultSettings() Settings {
	return Settings{
		FocusDurationMinutes:      25,
		ShortBreakDurationMinutes: 5,
		LongBreakDurationMinutes:  15,
		CyclesPerLongBreak:        4,
	}
}

var ErrInvalidSettings = errors.New("invalid pomodoro settings")

// Validate rejects non-positive values.
func (s Settings) Validate() error {
	fields := []struct {
		name  string
		value int
	}{
		{"focus duration", s.FocusDurationMinutes},
		{"short break duration", s.ShortBreakDurationMinutes},
		{"long break duration", s.LongBreakDurationMinutes},
		{"cycles per long break", s.CyclesPerLongBreak},
	}
	for _, f := range fields {
		if f.value < 1 {
			return fmt.Errorf("%w: %s must be at least 1, got %d", ErrInvalidSettings, f.name, f.value)
		}
	}
	return nil
}

// Durations maps every phase to its length in seconds. Idle maps to 0.
func (s Settings) Durations() map[Phase]int {
	return map[Phase]int{
		PhaseIdle:       0,
		PhaseFocus:      s.FocusDurationMinutes * 60,
		PhaseShortBreak: s.ShortBreakDurationMinutes * 60,
		PhaseLongBreak:  s.LongBreakDurationMinutes * 60,
	}
}

// PhaseSeconds looks up the duration of p.
func (s Settings) PhaseSeconds(p Phase) int {
	return s.Durations()[p]
}
