package dto

import (
	"time"

	"github.com/fazamuttaqien/slotbook/pkg/enum"
)

// --- Auth DTO ---

type RegisterDto struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginDto struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// --- Calendar DTO ---

// CreateCalendarDto registers a calendar source. Url is required for URL
// kind; Payload carries the raw ICS text for FILE kind.
type CreateCalendarDto struct {
	Name    string          `json:"name" validate:"required"`
	Kind    enum.SourceKind `json:"kind" validate:"required,oneof=URL FILE MANUAL"`
	Url     string          `json:"url" validate:"omitempty,url"`
	Payload string          `json:"payload" validate:"omitempty"`
}

// --- Availability Rule DTO ---

type TimeWindowDto struct {
	StartTime string `json:"startTime" validate:"required,time_hm"`
	EndTime   string `json:"endTime" validate:"required,time_hm,gtfield=StartTime"`
}

type CreateRuleDto struct {
	Name              string           `json:"name" validate:"required"`
	SlotDuration      int              `json:"slotDuration" validate:"required,gte=1"`
	Buffer            int              `json:"buffer" validate:"gte=0"`
	Timezone          string           `json:"timezone" validate:"required,timezone_name"`
	StartDate         *time.Time       `json:"startDate" validate:"omitempty"`
	EndDate           *time.Time       `json:"endDate" validate:"omitempty,gtefield=StartDate"`
	MaxBookingsPerDay *int             `json:"maxBookingsPerDay" validate:"omitempty,gte=1"`
	Days              []enum.DayOfWeek `json:"days" validate:"required,min=1,dive,oneof=SUNDAY MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY"`
	Hours             []TimeWindowDto  `json:"hours" validate:"required,min=1,dive"`
	CalendarIds       []string         `json:"calendarIds" validate:"omitempty,dive,uuid4"`
}

// UpdateRuleDto mirrors CreateRuleDto; the share token is never part of an
// update payload.
type UpdateRuleDto struct {
	Name              string           `json:"name" validate:"required"`
	SlotDuration      int              `json:"slotDuration" validate:"required,gte=1"`
	Buffer            int              `json:"buffer" validate:"gte=0"`
	Timezone          string           `json:"timezone" validate:"required,timezone_name"`
	StartDate         *time.Time       `json:"startDate" validate:"omitempty"`
	EndDate           *time.Time       `json:"endDate" validate:"omitempty,gtefield=StartDate"`
	MaxBookingsPerDay *int             `json:"maxBookingsPerDay" validate:"omitempty,gte=1"`
	Days              []enum.DayOfWeek `json:"days" validate:"required,min=1,dive,oneof=SUNDAY MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY"`
	Hours             []TimeWindowDto  `json:"hours" validate:"required,min=1,dive"`
	CalendarIds       []string         `json:"calendarIds" validate:"omitempty,dive,uuid4"`
}

type SetRuleActiveDto struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// --- Booking DTO ---

type CreateBookingDto struct {
	StartTime  time.Time `json:"startTime" validate:"required"`
	EndTime    time.Time `json:"endTime" validate:"required,gtfield=StartTime"`
	GuestName  string    `json:"guestName" validate:"required"`
	GuestEmail string    `json:"guestEmail" validate:"required,email"`
	Notes      string    `json:"notes" validate:"omitempty"`
}

type CancelBookingDto struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}
