package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sadopc/calgrid/internal/store"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Count      int         `json:"count"`
	Events     []jsonEvent `json:"events"`
}

type jsonEvent struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Date        string  `json:"date"`
	Time        *string `json:"time"`
	DurationMin int     `json:"duration_minutes"`
	Duration    string  `json:"duration"`
	Color       string  `json:"color"`
	Description string  `json:"description,omitempty"`
}

func ToJSON(events []store.Event, path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	defer f.Close()

	return WriteJSON(f, events)
}

func WriteJSON(w io.Writer, events []store.Event) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(events),
	}

	for _, e := range events {
		export.Events = append(export.Events, jsonEvent{
			ID:          e.ID,
			Title:       e.Title,
			Date:        e.DateKey(),
			Time:        e.Time,
			DurationMin: e.Duration,
			Duration:    formatDuration(e.Duration),
			Color:       e.Color,
			Description: deref(e.Description),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
