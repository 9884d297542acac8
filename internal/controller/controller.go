package controller

import (
	"github.com/fazamuttaqien/slotbook/internal/availability"
	"github.com/fazamuttaqien/slotbook/internal/booking"
	"github.com/fazamuttaqien/slotbook/internal/repository"
	"github.com/fazamuttaqien/slotbook/internal/scheduler"
	"github.com/jmoiron/sqlx"
)

type Controller struct {
	db        *sqlx.DB
	calendars repository.CalendarRepository
	rules     repository.RuleRepository
	bookings  repository.BookingRepository
	slots     *availability.Engine
	admission *booking.Service
	scheduler *scheduler.Scheduler
}

type Deps struct {
	DB        *sqlx.DB
	Calendars repository.CalendarRepository
	Rules     repository.RuleRepository
	Bookings  repository.BookingRepository
	Slots     *availability.Engine
	Admission *booking.Service
	Scheduler *scheduler.Scheduler
}

func New(deps Deps) *Controller {
	return &Controller{
		db:        deps.DB,
		calendars: deps.Calendars,
		rules:     deps.Rules,
		bookings:  deps.Bookings,
		slots:     deps.Slots,
		admission: deps.Admission,
		scheduler: deps.Scheduler,
	}
}
