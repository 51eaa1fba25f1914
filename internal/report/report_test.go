package report

import (
	"testing"
	"time"

	"github.com/sadopc/timekeeper/internal/tracker"
)

func entry(date, project string, dur int64, pomodoro bool, cycle int) tracker.Entry {
	return tracker.Entry{Date: date, ProjectID: project, DurationSeconds: dur, IsPomodoro: pomodoro, PomodoroCycleCount: cycle}
}

func TestDayTotal(t *testing.T) {
	entries := []tracker.Entry{
		entry("2026-03-01", "", 600, false, 0),
		entry("2026-03-01", "p", 1500, true, 1),
		entry("2026-03-02", "", 100, false, 0),
	}
	if got := DayTotal(entries, "2026-03-01"); got != 2100 {
		t.Fatalf("expected 2100, got %d", got)
	}
	if got := DayTotal(nil, "2026-03-01"); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestGoalProgress(t *testing.T) {
	tests := []struct {
		tracked   int64
		hours     float64
		achieved  bool
		remaining int64
		fraction  float64
	}{
		{0, 8, false, 28800, 0},
		{14400, 8, false, 14400, 0.5},
		{28800, 8, true, 0, 1},
		{40000, 8, true, 0, 1},
		{100, 0, true, 0, 1},
	}
	for _, tt := range tests {
		g := GoalProgress(tt.tracked, tt.hours)
		if g.Achieved != tt.achieved || g.RemainingSeconds != tt.remaining || g.Fraction != tt.fraction {
			t.Errorf("GoalProgress(%d, %v) = %+v", tt.tracked, tt.hours, g)
		}
	}
}

func TestTotals(t *testing.T) {
	entries := []tracker.Entry{
		entry("d", "", 60, false, 0),
		entry("d", "", 1500, true, 1),
		entry("d", "", 1500, true, 2),
		entry("d", "", 30, true, 0), // malformed pomodoro entry
	}
	s := Totals(entries, 3)
	if s.TrackedSeconds != 3090 || s.PomodorosCompleted != 2 || s.Projects != 3 || s.Entries != 4 {
		t.Fatalf("unexpected totals: %+v", s)
	}
}

func TestProjectColor(t *testing.T) {
	colors := map[string]string{"p1": "#EF4444"}
	if got := ProjectColor(colors, "p1", 0); got != "#EF4444" {
		t.Fatalf("expected project colour, got %s", got)
	}
	if got := ProjectColor(colors, "gone", 0); got != DefaultColor {
		t.Fatalf("dangling project should use default, got %s", got)
	}
	if got := ProjectColor(colors, "", 1); got != Palette[1] {
		t.Fatalf("expected palette colour, got %s", got)
	}
	if got := ProjectColor(colors, "", len(Palette)+2); got != Palette[2] {
		t.Fatalf("palette should wrap, got %s", got)
	}
}

func TestByDay(t *testing.T) {
	from := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 2)
	entries := []tracker.Entry{
		entry("2026-03-01", "a", 100, false, 0),
		entry("2026-03-01", "", 50, false, 0),
		entry("2026-03-03", "a", 10, false, 0),
		entry("2026-03-09", "a", 999, false, 0),
	}
	days := ByDay(entries, from, to)
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}
	if days[0].Total != 150 || days[0].ByProject["a"] != 100 || days[0].ByProject[""] != 50 {
		t.Fatalf("unexpected first day: %+v", days[0])
	}
	if days[1].Total != 0 || days[2].Total != 10 {
		t.Fatalf("unexpected totals: %+v", days)
	}

	ids := ProjectIDs(days)
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "" {
		t.Fatalf("unexpected ids: %q", ids)
	}

	if ByDay(entries, to, from) != nil {
		t.Fatal("inverted range should be empty")
	}
}

func TestHumanDuration(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{-5, "0m"},
		{0, "0m"},
		{45, "45s"},
		{60, "1m"},
		{89, "1m"},
		{90, "2m"},
		{1500, "25m"},
		{3600, "1h"},
		{5400, "1h.30m"},
		{3900, "1h.05m"},
		{3599, "1h"},
	}
	for _, tt := range tests {
		if got := HumanDuration(tt.in); got != tt.want {
			t.Errorf("HumanDuration(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClock(t *testing.T) {
	if got := Clock(3725); got != "01:02:05" {
		t.Fatalf("unexpected clock %q", got)
	}
	if got := Clock(-1); got != "00:00:00" {
		t.Fatalf("unexpected clock %q", got)
	}
}
