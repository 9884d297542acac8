package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fazamuttaqien/slotbook/database"
	"github.com/fazamuttaqien/slotbook/internal/availability"
	"github.com/fazamuttaqien/slotbook/internal/booking"
	"github.com/fazamuttaqien/slotbook/internal/controller"
	"github.com/fazamuttaqien/slotbook/internal/icsfeed"
	"github.com/fazamuttaqien/slotbook/internal/notify"
	"github.com/fazamuttaqien/slotbook/internal/presenter"
	"github.com/fazamuttaqien/slotbook/internal/repository"
	"github.com/fazamuttaqien/slotbook/internal/router"
	"github.com/fazamuttaqien/slotbook/internal/scheduler"
	"github.com/fazamuttaqien/slotbook/internal/syncengine"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := slog.Default()

	db, err := database.New(os.Getenv("POSTGRES_URL"))
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		return
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		logger.Error("Failed to migrate database schema", "error", err)
		return
	}

	calendars := repository.NewPostgresCalendarRepository(db.DB)
	events := repository.NewPostgresEventRepository(db.DB)
	rules := repository.NewPostgresRuleRepository(db.DB)
	bookings := repository.NewPostgresBookingRepository(db.DB)

	engine := syncengine.New(icsfeed.NewHTTPFetcher(), icsfeed.NewICalParser(), events, logger)
	syncScheduler := scheduler.New(calendars, engine, syncInterval(), logger)

	slots := availability.New(events, bookings)
	admission := booking.NewService(rules, bookings, slots, notify.NewLogSink(logger))

	presenters := presenter.New(controller.Deps{
		DB:        db.DB,
		Calendars: calendars,
		Rules:     rules,
		Bookings:  bookings,
		Slots:     slots,
		Admission: admission,
		Scheduler: syncScheduler,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := syncScheduler.Start(ctx); err != nil {
		logger.Error("Failed to start sync scheduler", "error", err)
		return
	}

	server := &http.Server{
		Addr:    ":8000",
		Handler: router.New(presenters),
	}

	go func() {
		logger.Info("Starting server on :8000...")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}

	// Stop blocks until in-flight sync jobs finish; nothing is writing when
	// the process exits.
	syncScheduler.Stop()
	logger.Info("Shutdown complete")
}

func syncInterval() time.Duration {
	raw := os.Getenv("SYNC_INTERVAL_MINUTES")
	if raw == "" {
		return scheduler.DefaultSyncInterval
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		slog.Warn("Invalid SYNC_INTERVAL_MINUTES, using default", "value", raw)
		return scheduler.DefaultSyncInterval
	}
	return time.Duration(minutes) * time.Minute
}
