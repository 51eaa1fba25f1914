// Package export writes the entry log to CSV or JSON files.
package export

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/sadopc/timekeeper/internal/report"
	"github.com/sadopc/timekeeper/internal/store"
	"github.com/sadopc/timekeeper/internal/tracker"
)

// Format is an export file format.
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
)

// Filename is the default export file name for the given day.
func Filename(f Format, now time.Time) string {
	return fmt.Sprintf("timekeeper-export-%s.%s", now.Format("2006-01-02"), f)
}

// Write exports entries into dir and returns the file path.
func Write(f Format, entries []tracker.Entry, projects []store.Project, dir string, now time.Time) (string, error) {
	path := filepath.Join(dir, Filename(f, now))
	names := projectNames(projects)
	var err error
	switch f {
	case CSV:
		err = ToCSV(entries, names, path)
	case JSON:
		err = ToJSON(entries, names, path, now)
	default:
		return "", fmt.Errorf("unknown export format %q", f)
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

func projectNames(projects []store.Project) map[string]string {
	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}
	return names
}

// projectName returns "" for entries without a project and "Unknown" for
// projects that no longer exist.
func projectName(names map[string]string, id string) string {
	if id == "" {
		return ""
	}
	if n, ok := names[id]; ok {
		return n
	}
	return "Unknown"
}

func endString(e tracker.Entry) string {
	end, ok := e.End()
	if !ok {
		return ""
	}
	return end.Local().Format(time.RFC3339)
}

var formatDuration = report.Clock
