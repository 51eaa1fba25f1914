// Package report derives dashboard and report figures from the entry log.
package report

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sadopc/timekeeper/internal/tracker"
)

// DefaultColor marks entries whose project is unknown.
const DefaultColor = "#9CA3AF"

// Palette colours entries without a project, by position in the day.
var Palette = []string{
	"#64748B", "#71717A", "#A1A1AA", "#78716C", "#F87171",
	"#FBBF24", "#34D399", "#60A5FA", "#A78BFA", "#F472B6",
}

// ProjectColors are offered when creating a project.
var ProjectColors = []string{
	"#EF4444", "#3B82F6", "#22C55E", "#EAB308",
	"#A855F7", "#EC4899", "#14B8A6", "#F97316",
}

// DayTotal sums the durations of entries dated date.
func DayTotal(entries []tracker.Entry, date string) int64 {
	var total int64
	for _, e := range entries {
		if e.Date == date {
			total += e.DurationSeconds
		}
	}
	return total
}

// Goal is progress toward the daily goal.
type Goal struct {
	GoalSeconds      int64
	TrackedSeconds   int64
	RemainingSeconds int64
	Achieved         bool
	Fraction         float64 // clamped to [0, 1]
}

// GoalProgress compares tracked seconds with a goal in hours.
func GoalProgress(trackedSeconds int64, goalHours float64) Goal {
	goal := int64(math.Round(goalHours * 3600))
	g := Goal{GoalSeconds: goal, TrackedSeconds: trackedSeconds}
	if goal <= 0 {
		g.Achieved = true
		g.Fraction = 1
		return g
	}
	g.Achieved = trackedSeconds >= goal
	if !g.Achieved {
		g.RemainingSeconds = goal - trackedSeconds
	}
	g.Fraction = math.Max(0, math.Min(1, float64(trackedSeconds)/float64(goal)))
	return g
}

// Summary is the all-time overview shown on the reports view.
type Summary struct {
	TrackedSeconds     int64
	PomodorosCompleted int
	Projects           int
	Entries            int
}

// Totals summarises every entry. Only focus entries with a cycle number
// count as completed pomodoros.
func Totals(entries []tracker.Entry, projectCount int) Summary {
	s := Summary{Projects: projectCount, Entries: len(entries)}
	for _, e := range entries {
		s.TrackedSeconds += e.DurationSeconds
		if e.IsPomodoro && e.PomodoroCycleCount > 0 {
			s.PomodorosCompleted++
		}
	}
	return s
}

// ProjectColor resolves the dot colour for an entry. colors maps project id
// to colour; index is the entry's position in its list.
func ProjectColor(colors map[string]string, projectID string, index int) string {
	if projectID != "" {
		if c, ok := colors[projectID]; ok && c != "" {
			return c
		}
		return DefaultColor
	}
	if len(Palette) == 0 || index < 0 {
		return DefaultColor
	}
	return Palette[index%len(Palette)]
}

// DaySlice is the tracked time per project on one day. The empty project
// id collects entries without a project.
type DaySlice struct {
	Date      string
	ByProject map[string]int64
	Total     int64
}

// ByDay buckets entries into each day in [from, to], inclusive, oldest
// first. Days without entries are present with zero totals.
func ByDay(entries []tracker.Entry, from, to time.Time) []DaySlice {
	from = truncateDay(from)
	to = truncateDay(to)
	if to.Before(from) {
		return nil
	}

	var days []DaySlice
	index := map[string]int{}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := tracker.DateOf(d)
		index[key] = len(days)
		days = append(days, DaySlice{Date: key, ByProject: map[string]int64{}})
	}

	for _, e := range entries {
		i, ok := index[e.Date]
		if !ok {
			continue
		}
		days[i].ByProject[e.ProjectID] += e.DurationSeconds
		days[i].Total += e.DurationSeconds
	}
	return days
}

// ProjectIDs returns the project ids present in days, sorted, with the
// empty id last.
func ProjectIDs(days []DaySlice) []string {
	seen := map[string]bool{}
	var ids []string
	var none bool
	for _, d := range days {
		for id := range d.ByProject {
			if id == "" {
				none = true
				continue
			}
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	if none {
		ids = append(ids, "")
	}
	return ids
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// HumanDuration renders seconds as "45s", "25m" or "1h.05m", rounding to
// the nearest minute from one minute up.
func HumanDuration(seconds int64) string {
	if seconds <= 0 {
		return "0m"
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	minutes := (seconds + 30) / 60
	h, m := minutes/60, minutes%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh.%02dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

// Clock formats seconds as HH:MM:SS.
func Clock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}
