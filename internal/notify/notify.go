// Package notify carries booking lifecycle notifications. The default sink
// writes structured log lines; a mail or webhook sink would implement the
// same interface.
package notify

import (
	"context"
	"log/slog"

	"github.com/fazamuttaqien/slotbook/internal/model"
)

type Event string

const (
	BookingCreated   Event = "booking.created"
	BookingCancelled Event = "booking.cancelled"
)

// Sink receives booking lifecycle events. Implementations must not block the
// caller for long; admission waits for Notify to return.
type Sink interface {
	Notify(ctx context.Context, event Event, booking model.Booking, rule model.AvailabilityRule)
}

// LogSink emits each notification as a structured log record.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(ctx context.Context, event Event, booking model.Booking, rule model.AvailabilityRule) {
	s.logger.InfoContext(ctx, string(event),
		"bookingId", booking.ID,
		"ruleId", rule.ID,
		"ruleName", rule.Name,
		"guestEmail", booking.GuestEmail,
		"startTime", booking.StartTime,
		"endTime", booking.EndTime,
		"status", booking.Status,
	)
}
