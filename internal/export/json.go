package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/timekeeper/internal/tracker"
)

type jsonExport struct {
	ExportedAt   string      `json:"exported_at"`
	Count        int         `json:"count"`
	TotalSeconds int64       `json:"total_seconds"`
	Entries      []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Project     string `json:"project,omitempty"`
	ProjectID   string `json:"project_id,omitempty"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time,omitempty"`
	DurationSec int64  `json:"duration_seconds"`
	Duration    string `json:"duration"`
	Pomodoro    bool   `json:"pomodoro"`
	Cycle       int    `json:"cycle,omitempty"`
}

// ToJSON writes the entries as a single indented document.
func ToJSON(entries []tracker.Entry, names map[string]string, path string, now time.Time) error {
	export := jsonExport{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Count:      len(entries),
		Entries:    []jsonEntry{},
	}

	for _, e := range entries {
		export.TotalSeconds += e.DurationSeconds
		export.Entries = append(export.Entries, jsonEntry{
			ID:          e.ID,
			Date:        e.Date,
			Description: e.Description,
			Project:     projectName(names, e.ProjectID),
			ProjectID:   e.ProjectID,
			StartTime:   e.Start().Local().Format(time.RFC3339),
			EndTime:     endString(e),
			DurationSec: e.DurationSeconds,
			Duration:    formatDuration(e.DurationSeconds),
			Pomodoro:    e.IsPomodoro,
			Cycle:       e.PomodoroCycleCount,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
