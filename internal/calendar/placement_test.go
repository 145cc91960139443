package calendar

import (
	"testing"
	"time"

	"github.com/sadopc/calgrid/internal/store"
)

func strp(s string) *string { return &s }

func ev(id int64, d string, clock *string, duration int) store.Event {
	t, _ := parseDate(d)
	return store.Event{ID: id, Title: d, Date: t, Time: clock, Duration: duration}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(store.DateLayout, s)
}

func daysOf(t *testing.T, ss ...string) []time.Time {
	t.Helper()
	out := make([]time.Time, len(ss))
	for i, s := range ss {
		d, err := parseDate(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		out[i] = d
	}
	return out
}

func ids(events []store.Event) []int64 {
	out := make([]int64, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func sameIDs(a []int64, b ...int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ============================================================
// Position
// ============================================================

func TestPosition(t *testing.T) {
	tests := []struct {
		clock    string
		duration int
		pph      float64
		top, h   float64
	}{
		{"14:30", 90, 60, 870, 90},
		{"00:00", 60, 60, 0, 60},
		{"09:15", 15, 80, 740, 20},
		{"23:59", 30, 60, 1439, 30},
		{"10:00", 0, 60, 600, 60}, // missing duration defaults to an hour
		{"06:00", 120, 2, 12, 4},
	}
	for _, tt := range tests {
		p, ok := Position(ev(1, "2024-03-05", strp(tt.clock), tt.duration), tt.pph)
		if !ok {
			t.Fatalf("Position(%s) returned no placement", tt.clock)
		}
		if p.Top != tt.top || p.Height != tt.h {
			t.Errorf("Position(%s, %d, %.0f) = {%.2f, %.2f}, want {%.2f, %.2f}",
				tt.clock, tt.duration, tt.pph, p.Top, p.Height, tt.top, tt.h)
		}
	}
}

func TestPositionUntimed(t *testing.T) {
	if _, ok := Position(ev(1, "2024-03-05", nil, 60), 60); ok {
		t.Fatal("untimed event must have no position")
	}
	if _, ok := Position(ev(1, "2024-03-05", strp("late"), 60), 60); ok {
		t.Fatal("malformed time must have no position")
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in     string
		h, m   int
		wantOK bool
	}{
		{"14:30", 14, 30, true},
		{"9:05", 9, 5, true},
		{"09:05:00", 9, 5, true},
		{"24:00", 0, 0, false},
		{"12:60", 0, 0, false},
		{"1230", 0, 0, false},
		{"", 0, 0, false},
		{"9:5", 0, 0, false},
		{"+9:30", 0, 0, false},
		{"09:+5", 0, 0, false},
		{"09:30:5", 0, 0, false},
	}
	for _, tt := range tests {
		h, m, ok := ParseClock(tt.in)
		if ok != tt.wantOK || (ok && (h != tt.h || m != tt.m)) {
			t.Errorf("ParseClock(%q) = %d, %d, %v", tt.in, h, m, ok)
		}
	}
}

// ============================================================
// GroupByDay / Summarize
// ============================================================

func TestGroupByDay(t *testing.T) {
	events := []store.Event{
		ev(1, "2024-03-05", strp("15:00"), 60),
		ev(2, "2024-03-05", strp("09:00"), 60),
		ev(3, "2024-03-06", nil, 60),
		ev(4, "2024-04-01", nil, 60),
	}
	days := []string{"2024-03-05", "2024-03-06", "2024-03-07"}
	got := GroupByDay(events, daysOf(t, days...))

	if len(got) != 3 {
		t.Fatalf("expected 3 keys, got %d", len(got))
	}
	// insertion order, not time order
	if !sameIDs(ids(got["2024-03-05"]), 1, 2) {
		t.Errorf("2024-03-05 = %v", ids(got["2024-03-05"]))
	}
	if !sameIDs(ids(got["2024-03-06"]), 3) {
		t.Errorf("2024-03-06 = %v", ids(got["2024-03-06"]))
	}
	if bucket, ok := got["2024-03-07"]; !ok || len(bucket) != 0 {
		t.Errorf("2024-03-07 should be present and empty, got %v", bucket)
	}
	if _, ok := got["2024-04-01"]; ok {
		t.Error("events outside the queried days must be excluded")
	}
}

func TestSummarize(t *testing.T) {
	events := []store.Event{
		ev(1, "2024-03-05", nil, 0), ev(2, "2024-03-05", nil, 0), ev(3, "2024-03-05", nil, 0),
		ev(4, "2024-03-05", nil, 0), ev(5, "2024-03-05", nil, 0),
	}
	shown, more := Summarize(events, MonthCellLimit)
	if !sameIDs(ids(shown), 1, 2, 3) || more != 2 {
		t.Fatalf("Summarize = %v, +%d", ids(shown), more)
	}
	shown, more = Summarize(events[:2], MonthCellLimit)
	if len(shown) != 2 || more != 0 {
		t.Fatalf("short cell = %v, +%d", ids(shown), more)
	}
}

func TestEventsOn(t *testing.T) {
	events := []store.Event{ev(1, "2024-03-05", nil, 0), ev(2, "2024-03-06", nil, 0), ev(3, "2024-03-05", nil, 0)}
	got := EventsOn(events, daysOf(t, "2024-03-05")[0])
	if !sameIDs(ids(got), 1, 3) {
		t.Fatalf("EventsOn = %v", ids(got))
	}
}

// ============================================================
// EventsForHourSlot
// ============================================================

func TestEventsForHourSlot(t *testing.T) {
	events := []store.Event{
		ev(1, "2024-03-05", strp("09:00"), 60),
		ev(2, "2024-03-05", strp("09:45"), 15),
		ev(3, "2024-03-05", strp("10:00"), 60),
		ev(4, "2024-03-06", strp("09:00"), 60),
		ev(5, "2024-03-05", nil, 60),
	}
	d := daysOf(t, "2024-03-05")[0]
	if got := EventsForHourSlot(events, d, 9); !sameIDs(ids(got), 1, 2) {
		t.Errorf("09h slot = %v", ids(got))
	}
	if got := EventsForHourSlot(events, d, 10); !sameIDs(ids(got), 3) {
		t.Errorf("10h slot = %v", ids(got))
	}
}

func TestUntimedNeverInHourSlot(t *testing.T) {
	events := []store.Event{ev(1, "2024-03-05", nil, 60)}
	d := daysOf(t, "2024-03-05")[0]
	for _, h := range Hours() {
		if got := EventsForHourSlot(events, d, h); len(got) != 0 {
			t.Fatalf("untimed event matched hour %d", h)
		}
	}
	if got := Untimed(events); len(got) != 1 {
		t.Fatalf("Untimed = %v", ids(got))
	}
}

func TestScheduledMinutes(t *testing.T) {
	events := []store.Event{
		ev(1, "2024-03-05", strp("09:00"), 30),
		ev(2, "2024-03-05", strp("13:00"), 0),
		ev(3, "2024-03-05", nil, 480),
		ev(4, "2024-03-06", strp("09:00"), 90),
	}
	got := ScheduledMinutes(events, daysOf(t, "2024-03-05", "2024-03-06", "2024-03-07"))
	if got[0] != 90 || got[1] != 90 || got[2] != 0 {
		t.Fatalf("ScheduledMinutes = %v", got)
	}
}
