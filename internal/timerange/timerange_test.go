package timerange

import (
	"testing"
	"time"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %s: %v", name, err)
	}
	return loc
}

func at(h, m int) time.Time {
	return time.Date(2025, time.June, 2, h, m, 0, 0, time.UTC)
}

func TestOverlapsHalfOpen(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{
			name: "disjoint",
			a:    Interval{at(9, 0), at(9, 30)},
			b:    Interval{at(10, 0), at(10, 30)},
			want: false,
		},
		{
			name: "touching intervals do not overlap",
			a:    Interval{at(9, 0), at(9, 30)},
			b:    Interval{at(9, 30), at(10, 0)},
			want: false,
		},
		{
			name: "partial overlap",
			a:    Interval{at(9, 0), at(9, 30)},
			b:    Interval{at(9, 15), at(9, 45)},
			want: true,
		},
		{
			name: "containment",
			a:    Interval{at(9, 0), at(10, 0)},
			b:    Interval{at(9, 15), at(9, 45)},
			want: true,
		},
		{
			name: "identical",
			a:    Interval{at(9, 0), at(9, 30)},
			b:    Interval{at(9, 0), at(9, 30)},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("a.Overlaps(b) = %v, want %v", got, tt.want)
			}
			// Overlap is symmetric.
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("b.Overlaps(a) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpandBy(t *testing.T) {
	iv := Interval{at(9, 0), at(9, 30)}

	expanded := iv.ExpandBy(10 * time.Minute)
	if !expanded.Start.Equal(at(8, 50)) || !expanded.End.Equal(at(9, 40)) {
		t.Errorf("ExpandBy(10m) = [%v, %v]", expanded.Start, expanded.End)
	}

	if got := iv.ExpandBy(0); got != iv {
		t.Errorf("ExpandBy(0) changed the interval: %v", got)
	}
}

func TestSlotIterEnumerates(t *testing.T) {
	it := NewSlotIter(at(9, 0), at(10, 0), 30*time.Minute, 30*time.Minute)

	var got []Interval
	for {
		slot, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, slot)
	}

	want := []Interval{
		{at(9, 0), at(9, 30)},
		{at(9, 30), at(10, 0)},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d slots, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Errorf("slot %d = [%v, %v], want [%v, %v]", i, got[i].Start, got[i].End, want[i].Start, want[i].End)
		}
	}
}

func TestSlotIterStopsWhenSlotEndPassesWindowEnd(t *testing.T) {
	// 25-minute slots in a 60-minute window: 9:00 and 9:25 fit, 9:50 would
	// end at 10:15 and must not be produced.
	it := NewSlotIter(at(9, 0), at(10, 0), 25*time.Minute, 25*time.Minute)

	count := 0
	for {
		if _, ok := it.Next(); !ok {
			break
		}
		count++
	}
	if count != 2 {
		t.Errorf("got %d slots, want 2", count)
	}
}

func TestSlotIterReset(t *testing.T) {
	it := NewSlotIter(at(9, 0), at(10, 0), 30*time.Minute, 30*time.Minute)

	first, ok := it.Next()
	if !ok {
		t.Fatal("expected at least one slot")
	}
	for {
		if _, ok := it.Next(); !ok {
			break
		}
	}

	it.Reset()
	again, ok := it.Next()
	if !ok {
		t.Fatal("expected a slot after Reset")
	}
	if !again.Start.Equal(first.Start) || !again.End.Equal(first.End) {
		t.Errorf("after Reset got [%v, %v], want [%v, %v]", again.Start, again.End, first.Start, first.End)
	}
}

func TestSlotIterStepIncludesBuffer(t *testing.T) {
	// duration 30 + buffer 15 => starts at 9:00, 9:45.
	it := NewSlotIter(at(9, 0), at(10, 30), 30*time.Minute, 45*time.Minute)

	var starts []time.Time
	for {
		slot, ok := it.Next()
		if !ok {
			break
		}
		starts = append(starts, slot.Start)
	}

	wantStarts := []time.Time{at(9, 0), at(9, 45)}
	if len(starts) != len(wantStarts) {
		t.Fatalf("got starts %v, want %v", starts, wantStarts)
	}
	for i := range wantStarts {
		if !starts[i].Equal(wantStarts[i]) {
			t.Errorf("start %d = %v, want %v", i, starts[i], wantStarts[i])
		}
	}
}

func TestDayBoundsDSTSpringForward(t *testing.T) {
	loc := mustLoc(t, "America/New_York")

	// 2025-03-09: clocks jump 02:00 -> 03:00, a 23-hour day.
	day := time.Date(2025, time.March, 9, 12, 0, 0, 0, loc)
	start, end := DayBounds(day, loc)

	if span := end.Sub(start); span != 23*time.Hour {
		t.Errorf("spring-forward day spans %v, want 23h", span)
	}
	if start.Hour() != 0 || end.Hour() != 0 {
		t.Errorf("bounds not at midnight: start=%v end=%v", start, end)
	}
}

func TestAtWallClockUsesRuleZone(t *testing.T) {
	loc := mustLoc(t, "Europe/Berlin")

	date := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	got := AtWallClock(date, 9, 30, loc)

	want := time.Date(2025, time.June, 2, 9, 30, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("AtWallClock = %v, want %v", got, want)
	}
}
