package model

import (
	"database/sql"
	"time"

	"github.com/fazamuttaqien/slotbook/pkg/enum"
)

type User struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Password  string    `db:"password" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// CalendarSource represents the 'calendar_sources' table. Origin is the feed
// URL for URL sources; Payload holds the raw ICS bytes for FILE sources.
// MANUAL sources carry hand-entered events and are never synced.
type CalendarSource struct {
	ID           string          `db:"id" json:"id"`
	OwnerID      string          `db:"owner_id" json:"ownerId"`
	Name         string          `db:"name" json:"name"`
	Kind         enum.SourceKind `db:"kind" json:"kind"`
	Origin       sql.NullString  `db:"origin" json:"origin,omitempty"`
	Payload      []byte          `db:"payload" json:"-"`
	LastSyncedAt sql.NullTime    `db:"last_synced_at" json:"lastSyncedAt"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updatedAt"`
}

// Event represents the 'events' table. (CalendarID, UID) is unique; the UID
// is the provider's stable identifier used as the natural key when diffing
// a freshly parsed feed against stored rows.
type Event struct {
	ID             string         `db:"id" json:"id"`
	CalendarID     string         `db:"calendar_id" json:"calendarId"`
	UID            string         `db:"uid" json:"uid"`
	Title          string         `db:"title" json:"title"`
	Description    string         `db:"description" json:"description,omitempty"`
	Location       string         `db:"location" json:"location,omitempty"`
	StartTime      time.Time      `db:"start_time" json:"startTime"`
	EndTime        time.Time      `db:"end_time" json:"endTime"`
	Timezone       string         `db:"timezone" json:"timezone"`
	AllDay         bool           `db:"all_day" json:"allDay"`
	RecurrenceRule sql.NullString `db:"recurrence_rule" json:"recurrenceRule,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updatedAt"`
}

// TimeWindow is one configured daily range of bookable hours (HH:mm wall
// clock in the rule's timezone). Windows are stored in the order configured;
// the availability engine does not re-sort them.
type TimeWindow struct {
	ID        string `db:"id" json:"-"`
	RuleID    string `db:"rule_id" json:"-"`
	Position  int    `db:"position" json:"-"`
	StartTime string `db:"start_time" json:"startTime"`
	EndTime   string `db:"end_time" json:"endTime"`
}

// AvailabilityRule represents the 'availability_rules' table plus its child
// rows (allowed days, daily windows, referenced calendars). The share token
// is globally unique and immutable once issued.
type AvailabilityRule struct {
	ID                string        `db:"id" json:"id"`
	OwnerID           string        `db:"owner_id" json:"ownerId"`
	Name              string        `db:"name" json:"name"`
	SlotDuration      int           `db:"slot_duration" json:"slotDuration"` // minutes, > 0
	Buffer            int           `db:"buffer" json:"buffer"`              // minutes, >= 0
	Timezone          string        `db:"timezone" json:"timezone"`
	StartDate         sql.NullTime  `db:"start_date" json:"startDate"`
	EndDate           sql.NullTime  `db:"end_date" json:"endDate"`
	MaxBookingsPerDay sql.NullInt64 `db:"max_bookings_per_day" json:"maxBookingsPerDay"`
	IsActive          bool          `db:"is_active" json:"isActive"`
	ShareToken        string        `db:"share_token" json:"shareToken"`
	CreatedAt         time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updatedAt"`

	// Loaded from child tables, not scanned from the parent row.
	Days        []enum.DayOfWeek `db:"-" json:"days"`
	Hours       []TimeWindow     `db:"-" json:"hours"`
	CalendarIDs []string         `db:"-" json:"calendarIds"`
}

// AllowsDay reports whether the rule offers slots on the given weekday.
func (r AvailabilityRule) AllowsDay(day enum.DayOfWeek) bool {
	for _, d := range r.Days {
		if d == day {
			return true
		}
	}
	return false
}

// Booking represents the 'bookings' table. CANCELLED is terminal;
// the datastore enforces one active booking per (rule, start, end).
type Booking struct {
	ID           string             `db:"id" json:"id"`
	RuleID       string             `db:"rule_id" json:"ruleId"`
	GuestName    string             `db:"guest_name" json:"guestName"`
	GuestEmail   string             `db:"guest_email" json:"guestEmail"`
	Notes        string             `db:"notes" json:"notes,omitempty"`
	StartTime    time.Time          `db:"start_time" json:"startTime"`
	EndTime      time.Time          `db:"end_time" json:"endTime"`
	Timezone     string             `db:"timezone" json:"timezone"`
	Status       enum.BookingStatus `db:"status" json:"status"`
	CancelReason sql.NullString     `db:"cancel_reason" json:"cancelReason,omitempty"`
	CreatedAt    time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `db:"updated_at" json:"updatedAt"`
}
