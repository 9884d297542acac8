package icsfeed

import (
	"strings"
	"testing"
	"time"
)

// ics builds a feed body with the CRLF line endings the format requires.
func ics(lines ...string) []byte {
	return []byte(strings.Join(lines, "\r\n") + "\r\n")
}

func TestParseTimedEvent(t *testing.T) {
	body := ics(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:evt-1@example.com",
		"SUMMARY:Team sync",
		"DESCRIPTION:Weekly catch-up",
		"LOCATION:Room 4",
		"DTSTART:20250602T090000Z",
		"DTEND:20250602T093000Z",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	events, err := NewICalParser().Parse(body)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("parsed %d events, want 1", len(events))
	}

	ev := events[0]
	if ev.UID != "evt-1@example.com" {
		t.Errorf("UID = %q", ev.UID)
	}
	if ev.Title != "Team sync" {
		t.Errorf("Title = %q", ev.Title)
	}
	if ev.Location != "Room 4" {
		t.Errorf("Location = %q", ev.Location)
	}
	if ev.AllDay {
		t.Error("timed event flagged all-day")
	}

	wantStart := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)
	if !ev.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", ev.Start, wantStart)
	}
	if got := ev.End.Sub(ev.Start); got != 30*time.Minute {
		t.Errorf("duration = %v, want 30m", got)
	}
}

func TestParseAllDayEvent(t *testing.T) {
	body := ics(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:holiday-1",
		"SUMMARY:Public holiday",
		"DTSTART;VALUE=DATE:20250602",
		"DTEND;VALUE=DATE:20250603",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	events, err := NewICalParser().Parse(body)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("parsed %d events, want 1", len(events))
	}
	if !events[0].AllDay {
		t.Error("VALUE=DATE event not flagged all-day")
	}
}

func TestParseCapturesTimezoneAndRrule(t *testing.T) {
	body := ics(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:weekly-1",
		"SUMMARY:Standup",
		"DTSTART;TZID=Europe/Berlin:20250602T090000",
		"DTEND;TZID=Europe/Berlin:20250602T091500",
		"RRULE:FREQ=WEEKLY;BYDAY=MO",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	events, err := NewICalParser().Parse(body)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("parsed %d events, want 1", len(events))
	}

	ev := events[0]
	if ev.Timezone != "Europe/Berlin" {
		t.Errorf("Timezone = %q, want Europe/Berlin", ev.Timezone)
	}
	if ev.RecurrenceRule != "FREQ=WEEKLY;BYDAY=MO" {
		t.Errorf("RecurrenceRule = %q", ev.RecurrenceRule)
	}
}

func TestParseDropsEventWithoutStartOrTitle(t *testing.T) {
	body := ics(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:ghost-1",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:keep-1",
		"SUMMARY:Real event",
		"DTSTART:20250602T090000Z",
		"DTEND:20250602T100000Z",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	events, err := NewICalParser().Parse(body)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("parsed %d events, want only the usable one", len(events))
	}
	if events[0].UID != "keep-1" {
		t.Errorf("kept UID = %q, want keep-1", events[0].UID)
	}
}

func TestParseEmptyBodyFails(t *testing.T) {
	if _, err := NewICalParser().Parse(nil); err == nil {
		t.Error("expected error for empty body")
	}
}

func TestParseMalformedBodyFails(t *testing.T) {
	if _, err := NewICalParser().Parse([]byte("this is not a calendar")); err == nil {
		t.Error("expected error for malformed body")
	}
}
