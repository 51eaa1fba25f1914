package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/timekeeper/internal/tracker"
)

// ToCSV writes one row per entry. names maps project id to name.
func ToCSV(entries []tracker.Entry, names map[string]string, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write([]string{
		"ID", "Date", "Description", "Project", "Start", "End",
		"Duration (s)", "Duration", "Pomodoro", "Cycle",
	}); err != nil {
		return err
	}

	for _, e := range entries {
		cycle := ""
		if e.IsPomodoro {
			cycle = strconv.Itoa(e.PomodoroCycleCount)
		}
		row := []string{
			e.ID,
			e.Date,
			e.Description,
			projectName(names, e.ProjectID),
			e.Start().Local().Format(time.RFC3339),
			endString(e),
			strconv.FormatInt(e.DurationSeconds, 10),
			formatDuration(e.DurationSeconds),
			strconv.FormatBool(e.IsPomodoro),
			cycle,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
