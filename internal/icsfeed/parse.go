package icsfeed

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

// ParsedEvent is the normalized representation of a VEVENT as produced by
// the feed parser. UID may be empty; the sync engine synthesizes one.
type ParsedEvent struct {
	UID         string
	Title       string
	Description string
	Location    string

	Start    time.Time
	End      time.Time
	Timezone string
	AllDay   bool

	// RecurrenceRule is the raw RRULE value. Stored opaquely; the engine
	// flattens only the instances the provider supplies.
	RecurrenceRule string
}

// Parser turns raw feed bytes into parsed events.
type Parser interface {
	Parse(body []byte) ([]ParsedEvent, error)
}

// ICalParser parses ICS payloads. Non-VEVENT components are ignored, and a
// VEVENT lacking both a usable start and a title is dropped rather than
// failing the whole feed.
type ICalParser struct{}

func NewICalParser() *ICalParser {
	return &ICalParser{}
}

func (p *ICalParser) Parse(body []byte) ([]ParsedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := make([]ParsedEvent, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		ev, usable := parseVEvent(ve)
		if !usable {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (ParsedEvent, bool) {
	var out ParsedEvent

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		out.UID = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	// The library's helpers handle VTIMEZONE/TZID resolution.
	start, startErr := ve.GetStartAt()
	end, endErr := ve.GetEndAt()
	if startErr == nil {
		out.Start = start
	}
	if endErr == nil {
		out.End = end
	}

	if dtStart := ve.GetProperty(ical.ComponentPropertyDtStart); dtStart != nil {
		// VALUE=DATE or a bare YYYYMMDD value marks an all-day event.
		if params := dtStart.ICalParameters; params != nil {
			if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
				out.AllDay = true
			}
			if tzs, ok := params["TZID"]; ok && len(tzs) > 0 {
				out.Timezone = tzs[0]
			}
		}
		if !strings.Contains(dtStart.Value, "T") {
			out.AllDay = true
		}
	}
	if out.Timezone == "" && !out.Start.IsZero() {
		out.Timezone = out.Start.Location().String()
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RecurrenceRule = p.Value
	}

	// An event with neither a usable start nor a title carries nothing the
	// availability engine could act on.
	if out.Start.IsZero() && out.Title == "" {
		return ParsedEvent{}, false
	}
	return out, true
}
