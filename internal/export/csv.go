package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sadopc/calgrid/internal/store"
)

var csvHeader = []string{"ID", "Title", "Date", "Time", "Duration (min)", "Duration", "Color", "Description"}

func ToCSV(events []store.Event, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	return WriteCSV(f, events)
}

func WriteCSV(out io.Writer, events []store.Event) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, e := range events {
		row := []string{
			strconv.FormatInt(e.ID, 10),
			e.Title,
			e.DateKey(),
			deref(e.Time),
			strconv.Itoa(e.Duration),
			formatDuration(e.Duration),
			e.Color,
			deref(e.Description),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// formatDuration renders minutes as H:MM, or "all day" for 480 and up.
func formatDuration(mins int) string {
	if mins >= 480 {
		return "all day"
	}
	return fmt.Sprintf("%d:%02d", mins/60, mins%60)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
