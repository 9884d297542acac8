// Package timerange holds the pure interval arithmetic behind availability
// computation: overlap tests, buffer expansion and slot enumeration. Nothing
// in this package performs I/O or reads the wall clock.
package timerange

import "time"

// Interval is a half-open time span [Start, End). Two intervals that merely
// touch (one ends exactly where the other starts) do not overlap.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether iv and other share any instant under half-open
// semantics: iv starts strictly before other ends AND iv ends strictly after
// other starts.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && iv.End.After(other.Start)
}

// OverlapsAny reports whether iv overlaps at least one of the given intervals.
func (iv Interval) OverlapsAny(intervals []Interval) bool {
	for _, other := range intervals {
		if iv.Overlaps(other) {
			return true
		}
	}
	return false
}

// ExpandBy widens the interval by buffer on both sides. A zero or negative
// buffer returns the interval unchanged.
func (iv Interval) ExpandBy(buffer time.Duration) Interval {
	if buffer <= 0 {
		return iv
	}
	return Interval{
		Start: iv.Start.Add(-buffer),
		End:   iv.End.Add(buffer),
	}
}

// SlotIter enumerates fixed-duration candidate slots inside a window,
// advancing by step between candidates. It is a finite, restartable lazy
// sequence: Next returns false once the candidate's end would pass the
// window end, and Reset rewinds to the first candidate.
type SlotIter struct {
	windowStart time.Time
	windowEnd   time.Time
	duration    time.Duration
	step        time.Duration
	cursor      time.Time
}

// NewSlotIter builds an iterator over [windowStart, windowEnd] producing
// slots of the given duration, step apart. A non-positive step falls back to
// the duration so the iterator always terminates.
func NewSlotIter(windowStart, windowEnd time.Time, duration, step time.Duration) *SlotIter {
	if step <= 0 {
		step = duration
	}
	return &SlotIter{
		windowStart: windowStart,
		windowEnd:   windowEnd,
		duration:    duration,
		step:        step,
		cursor:      windowStart,
	}
}

// Next returns the next candidate slot, or ok=false when the window is
// exhausted.
func (it *SlotIter) Next() (Interval, bool) {
	if it.duration <= 0 {
		return Interval{}, false
	}
	slotEnd := it.cursor.Add(it.duration)
	if slotEnd.After(it.windowEnd) {
		return Interval{}, false
	}
	slot := Interval{Start: it.cursor, End: slotEnd}
	it.cursor = it.cursor.Add(it.step)
	return slot, true
}

// Reset rewinds the iterator to the first candidate slot.
func (it *SlotIter) Reset() {
	it.cursor = it.windowStart
}

// DayBounds returns midnight and the following midnight for the calendar day
// containing t, evaluated in loc. DST transitions inside the day are
// reflected in the absolute instants, so the span is not always 24 hours.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end
}

// AtWallClock anchors an HH:mm wall-clock time onto the calendar day of
// date, evaluated in loc. The conversion to an absolute instant happens
// here, at interval-construction time, so a rule's timezone applies at the
// instant the computation is performed for that day.
func AtWallClock(date time.Time, hour, minute int, loc *time.Location) time.Time {
	local := date.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
}
