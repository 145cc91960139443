package export

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/sadopc/calgrid/internal/calendar"
	"github.com/sadopc/calgrid/internal/store"
)

const productID = "-//calgrid//calgrid//EN"

func ToICS(events []store.Event, path string, loc *time.Location) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create ics file: %w", err)
	}
	defer f.Close()

	return WriteICS(f, events, loc)
}

// WriteICS writes events as an iCalendar feed. Timed events are read as wall
// clock times in loc and emitted in UTC; untimed events become all-day
// VEVENTs.
func WriteICS(w io.Writer, events []store.Event, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	stamp := time.Now().UTC()
	for _, e := range events {
		ve := cal.AddEvent(eventUID(e))
		ve.SetDtStampTime(stamp)
		ve.SetSummary(e.Title)
		if e.Description != nil {
			ve.SetDescription(*e.Description)
		}
		if e.Color != "" {
			ve.SetProperty(ics.ComponentProperty("COLOR"), e.Color)
		}
		if !e.CreatedAt.IsZero() {
			ve.SetCreatedTime(e.CreatedAt)
		}
		if !e.UpdatedAt.IsZero() {
			ve.SetModifiedAt(e.UpdatedAt)
		}

		hour, minute, timed := 0, 0, false
		if e.Time != nil {
			hour, minute, timed = calendar.ParseClock(*e.Time)
		}
		if !timed {
			ve.SetAllDayStartAt(e.Date)
			ve.SetAllDayEndAt(e.Date.AddDate(0, 0, 1))
			continue
		}

		start := time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(), hour, minute, 0, 0, loc)
		dur := e.Duration
		if dur <= 0 {
			dur = store.DefaultDuration
		}
		ve.SetStartAt(start)
		ve.SetEndAt(start.Add(time.Duration(dur) * time.Minute))
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("write ics: %w", err)
	}
	return nil
}

// uidNamespace seeds name-based UIDs so that exporting the same event twice
// yields the same UID and calendar apps update it instead of duplicating.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/sadopc/calgrid/events"))

func eventUID(e store.Event) string {
	return uuid.NewSHA1(uidNamespace, []byte(strconv.FormatInt(e.ID, 10))).String() + "@calgrid"
}
