package tracker

import (
	"fmt"
	"strings"
	"time"
)

// UntitledDescription labels manual entries stopped without a description.
const UntitledDescription = "Untitled"

// Entry is one completed interval of tracked time.
type Entry struct {
	ID                 string `json:"id"`
	Description        string `json:"description"`
	ProjectID          string `json:"projectId,omitempty"`
	StartTimeEpoch     int64  `json:"startTimeEpoch"`
	EndTimeEpoch       int64  `json:"endTimeEpoch,omitempty"`
	DurationSeconds    int64  `json:"durationSeconds"`
	IsPomodoro         bool   `json:"isPomodoro"`
	PomodoroCycleCount int    `json:"pomodoroCycleCount"`
	Date               string `json:"date"`
}

func (e Entry) Start() time.Time { return time.UnixMilli(e.StartTimeEpoch) }

// End returns the end time and whether it has been set.
func (e Entry) End() (time.Time, bool) {
	if e.EndTimeEpoch == 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(e.EndTimeEpoch), true
}

// EntryEdit carries the user-editable fields of an entry.
type EntryEdit struct {
	Description     string
	DurationSeconds int64
	ProjectID       string
}

// DateOf returns the YYYY-MM-DD aggregation key for t.
func DateOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// DateOfMillis returns the aggregation key for an epoch-millisecond value.
func DateOfMillis(ms int64) string {
	return DateOf(time.UnixMilli(ms))
}

func entryID(source string, now time.Time) string {
	return fmt.Sprintf("task-%s-%d", source, now.UnixMilli())
}

func describe(desc, fallback string) string {
	if d := strings.TrimSpace(desc); d != "" {
		return d
	}
	return fallback
}
