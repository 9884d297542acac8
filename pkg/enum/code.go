package enum

import "time"

// --- DayOfWeek ---
type DayOfWeek string

const (
	Sunday    DayOfWeek = "SUNDAY"
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
)

func AllDayOfWeek() []DayOfWeek {
	return []DayOfWeek{
		Sunday,
		Monday,
		Tuesday,
		Wednesday,
		Thursday,
		Friday,
		Saturday,
	}
}

func (e DayOfWeek) String() string { return string(e) }

func DayOfWeekValues() []string {
	vals := AllDayOfWeek()
	strs := make([]string, len(vals))

	for i, v := range vals {
		strs[i] = v.String()
	}

	return strs
}

// DayOfWeekFromWeekday maps Go's time.Weekday onto the stored enum value.
func DayOfWeekFromWeekday(wd time.Weekday) DayOfWeek {
	return AllDayOfWeek()[int(wd)%7]
}

// --- SourceKind ---

// SourceKind tells the sync engine how to resolve a calendar's feed bytes.
type SourceKind string

const (
	SourceURL    SourceKind = "URL"
	SourceFile   SourceKind = "FILE"
	SourceManual SourceKind = "MANUAL"
)

func AllSourceKind() []SourceKind {
	return []SourceKind{
		SourceURL,
		SourceFile,
		SourceManual,
	}
}

func (e SourceKind) String() string { return string(e) }

// Syncable reports whether the scheduler should run periodic syncs for a
// calendar of this kind. MANUAL calendars hold hand-entered events and have
// no feed to reconcile against.
func (e SourceKind) Syncable() bool {
	return e == SourceURL || e == SourceFile
}

func SourceKindValues() []string {
	vals := AllSourceKind()
	strs := make([]string, len(vals))

	for i, v := range vals {
		strs[i] = v.String()
	}

	return strs
}

// --- BookingStatus ---
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

func AllBookingStatus() []BookingStatus {
	return []BookingStatus{
		BookingPending,
		BookingConfirmed,
		BookingCancelled,
	}
}

func (e BookingStatus) String() string { return string(e) }

func BookingStatusValues() []string {
	vals := AllBookingStatus()
	strs := make([]string, len(vals))

	for i, v := range vals {
		strs[i] = v.String()
	}

	return strs
}

// --- BookingFilter ---

// BookingFilter selects which owner bookings to list.
type BookingFilter string

const (
	BookingFilterUpcoming  BookingFilter = "UPCOMING"
	BookingFilterPast      BookingFilter = "PAST"
	BookingFilterCancelled BookingFilter = "CANCELLED"
)
