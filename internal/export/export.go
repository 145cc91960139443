// Package export writes events to CSV, JSON and iCalendar files.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sadopc/calgrid/internal/store"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatICS  Format = "ics"
)

var Formats = []Format{FormatCSV, FormatJSON, FormatICS}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatICS:
		return f, nil
	case "ical", "icalendar":
		return FormatICS, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, json or ics)", s)
}

// Ext is the file extension, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Write encodes events in format f.
func Write(w io.Writer, f Format, events []store.Event) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, events)
	case FormatJSON:
		return WriteJSON(w, events)
	case FormatICS:
		return WriteICS(w, events, time.Local)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// ToFile writes events to path in format f.
func ToFile(f Format, events []store.Event, path string) error {
	switch f {
	case FormatCSV:
		return ToCSV(events, path)
	case FormatJSON:
		return ToJSON(events, path)
	case FormatICS:
		return ToICS(events, path, time.Local)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// DefaultFilename builds calgrid-YYYYMMDD-HHMMSS.<ext> in the user's home
// directory, falling back to the working directory.
func DefaultFilename(f Format, now time.Time) string {
	name := "calgrid-" + now.Format("20060102-150405") + f.Ext()
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, name)
	}
	return name
}
