package tracker

// Event is an input to Apply.
type Event interface{ isEvent() }

type (
	StartManual struct {
		Description string
		ProjectID   string
	}
	UpdateManualDescription struct{ Description string }
	UpdateManualProject     struct{ ProjectID string }
	ToggleManualPause       struct{}
	StopManual              struct{}

	StartFocus struct {
		Description string
		ProjectID   string
	}
	PausePomodoro  struct{}
	ResumePomodoro struct{}
	SkipBreak      struct{}
	StopPomodoro   struct{}

	// Tick advances whichever timer is running by one second.
	Tick struct{}

	ApplySettings struct{ Settings Settings }

	// EnterFocusMode is honoured only from the tracking view while a
	// timer is running.
	EnterFocusMode struct{ OnTrackingView bool }
	ExitFocusMode  struct{}
	// PresentationChanged reports the actual full-screen state after an
	// outside change (terminal resize, escape key).
	PresentationChanged struct{ Fullscreen bool }
)

func (StartManual) isEvent()             {}
func (UpdateManualDescription) isEvent() {}
func (UpdateManualProject) isEvent()     {}
func (ToggleManualPause) isEvent()       {}
func (StopManual) isEvent()              {}
func (StartFocus) isEvent()              {}
func (PausePomodoro) isEvent()           {}
func (ResumePomodoro) isEvent()          {}
func (SkipBreak) isEvent()               {}
func (StopPomodoro) isEvent()            {}
func (Tick) isEvent()                    {}
func (ApplySettings) isEvent()           {}
func (EnterFocusMode) isEvent()          {}
func (ExitFocusMode) isEvent()           {}
func (PresentationChanged) isEvent()     {}

// Destination is a view the shell should switch to.
type Destination int

const (
	DestDashboard Destination = iota
	DestTracking
)

// EndReason says why a pomodoro session ended.
type EndReason string

const (
	EndStopped   EndReason = "stopped"
	EndCancelled EndReason = "cancelled"
)

// Effect describes a side effect requested by Apply.
type Effect interface{ isEffect() }

type (
	// LogEntry asks for the entry to be appended to the log and forwarded.
	LogEntry struct{ Entry Entry }
	Navigate struct{ To Destination }
	// PhaseChanged is emitted on completion or skip.
	PhaseChanged struct {
		From, To  Phase
		Completed bool
	}
	SessionStarted struct{ Settings Settings }
	SessionEnded   struct {
		Completed int
		Reason    EndReason
	}
)

func (LogEntry) isEffect()       {}
func (Navigate) isEffect()       {}
func (PhaseChanged) isEffect()   {}
func (SessionStarted) isEffect() {}
func (SessionEnded) isEffect()   {}
