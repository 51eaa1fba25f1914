package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/timekeeper/internal/report"
	"github.com/sadopc/timekeeper/internal/store"
	"github.com/sadopc/timekeeper/internal/sync"
	"github.com/sadopc/timekeeper/internal/tracker"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewTracking
	viewEntries
	viewProjects
	viewReports
	viewEvents
	viewSettings
)

var viewNames = []string{"Dashboard", "Tracking", "Entries", "Projects", "Reports", "Events", "Settings"}

// shared is the state several views read. Views hold a pointer so that
// updates made in App.Update survive value copies.
type shared struct {
	store *store.Store
	ctl   *tracker.Controller
	sync  *sync.Dispatcher // nil when remote sync is not configured

	projects  []store.Project
	goalHours float64
	themeID   string
	unlocked  []string
}

func (s *shared) colors() map[string]string {
	m := make(map[string]string, len(s.projects))
	for _, p := range s.projects {
		m[p.ID] = p.Color
	}
	return m
}

func (s *shared) projectName(id string) string {
	if id == "" {
		return ""
	}
	for _, p := range s.projects {
		if p.ID == id {
			return p.Name
		}
	}
	return "Unknown"
}

func (s *shared) today() string {
	return tracker.DateOf(s.ctl.Now())
}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

// runMsg carries a callback posted from a timer goroutine.
type runMsg struct{ fn func() }

type projectsDataMsg struct {
	projects []store.Project
}

type exportDoneMsg struct {
	path string
}

type restoredMsg struct {
	snap   *store.Snapshot
	status string
}

// settingsChangedMsg asks the app to re-read goal and theme settings.
type settingsChangedMsg struct{}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}

func errorCmd(prefix string, err error) tea.Cmd {
	return statusCmd(fmt.Sprintf("%s: %v", prefix, err), true)
}

// --- Loop ---

// Loop carries callbacks from background goroutines onto the Bubble Tea
// event loop.
type Loop struct {
	ch   chan func()
	done chan struct{}
}

func NewLoop() *Loop {
	return &Loop{ch: make(chan func(), 16), done: make(chan struct{})}
}

// Post queues fn. It gives up once the loop is stopped.
func (l *Loop) Post(fn func()) {
	select {
	case l.ch <- fn:
	case <-l.done:
	}
}

// Stop releases any goroutine blocked in Post.
func (l *Loop) Stop() {
	select {
	case <-l.done:
	default:
		close(l.done)
	}
}

func (l *Loop) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case fn := <-l.ch:
			return runMsg{fn: fn}
		case <-l.done:
			return nil
		}
	}
}

// --- Helpers ---

func formatSeconds(secs int64) string {
	return report.Clock(secs)
}

func formatPomodoroTime(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// parseClock reads "HH:MM:SS", "MM:SS" or a plain number of seconds.
func parseClock(s string) (int64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("use HH:MM:SS")
	}
	var total int64
	for i, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("use HH:MM:SS")
		}
		if i > 0 && n >= 60 {
			return 0, fmt.Errorf("minutes and seconds must be below 60")
		}
		total = total*60 + n
	}
	return total, nil
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fmt.Errorf("enter a whole number of at least 1")
	}
	return nil
}

func positiveFloat(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f <= 0 {
		return fmt.Errorf("enter a number greater than 0")
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// navigateMsg switches view; start opens the start form on arrival.
type navigateMsg struct {
	to    viewState
	start bool
}
