// Package scheduler owns one recurring sync job per syncable calendar. The
// registry mapping calendar ids to cron entries lives inside the Scheduler
// and is only mutated under its lock; there is no ambient state.
package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fazamuttaqien/slotbook/internal/model"
	"github.com/fazamuttaqien/slotbook/internal/repository"
	appError "github.com/fazamuttaqien/slotbook/pkg/app-error"

	"github.com/robfig/cron/v3"
)

// DefaultSyncInterval is how often each calendar is re-synced unless the
// deployment overrides it.
const DefaultSyncInterval = 15 * time.Minute

// Syncer is the sync engine as the scheduler sees it.
type Syncer interface {
	Sync(ctx context.Context, source model.CalendarSource) (repository.SyncStats, error)
}

type Scheduler struct {
	calendars repository.CalendarRepository
	syncer    Syncer
	interval  time.Duration
	logger    *slog.Logger

	cron *cron.Cron

	mu      sync.Mutex
	entries map[string]cron.EntryID
	// locks serializes syncs per calendar: a tick that finds the previous
	// tick still running skips instead of queuing, and TriggerSync waits
	// its turn. Calendars never block each other.
	locks map[string]*sync.Mutex

	ctx     context.Context
	cancel  context.CancelFunc
	started bool
}

func New(calendars repository.CalendarRepository, syncer Syncer, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &Scheduler{
		calendars: calendars,
		syncer:    syncer,
		interval:  interval,
		logger:    logger,
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger{logger}),
		)),
		entries: make(map[string]cron.EntryID),
		locks:   make(map[string]*sync.Mutex),
	}
}

// Start enumerates syncable calendars, schedules a periodic job per
// calendar plus a coarser refresh job that picks up added and removed
// calendars, and starts the cron runner.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("scheduler already started")
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return err
	}

	// Re-enumeration runs at twice the sync interval; it only has to catch
	// calendar additions and deletions, not event changes.
	s.cron.Schedule(cron.Every(2*s.interval), cron.FuncJob(func() {
		if err := s.refresh(s.ctx); err != nil {
			s.logger.Error("calendar re-enumeration failed", "error", err)
		}
	}))

	s.cron.Start()
	s.logger.Info("sync scheduler started", "interval", s.interval)
	return nil
}

// Stop cancels all outstanding per-calendar jobs and blocks until every
// running job has finished; no job is still writing when Stop returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	cancel := s.cancel
	s.mu.Unlock()

	done := s.cron.Stop()
	cancel()
	<-done.Done()
	s.logger.Info("sync scheduler stopped")
}

// TriggerSync runs an out-of-band sync for one calendar, waiting for any
// in-flight periodic tick for the same calendar to finish first. MANUAL
// calendars are rejected with a validation error.
func (s *Scheduler) TriggerSync(ctx context.Context, calendarID string) (repository.SyncStats, error) {
	source, err := s.calendars.GetByID(ctx, calendarID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.SyncStats{}, appError.NewNotFoundError("Calendar", err)
		}
		return repository.SyncStats{}, appError.NewStorageError("Failed to load calendar", err)
	}
	if !source.Kind.Syncable() {
		return repository.SyncStats{}, appError.NewValidationError("MANUAL calendars cannot be synced", nil)
	}

	lock := s.lockFor(calendarID)
	lock.Lock()
	defer lock.Unlock()

	return s.syncer.Sync(ctx, source)
}

// refresh reconciles the scheduled-job registry against the current set of
// syncable calendars.
func (s *Scheduler) refresh(ctx context.Context) error {
	sources, err := s.calendars.ListSyncable(ctx)
	if err != nil {
		return err
	}

	current := make(map[string]struct{}, len(sources))
	for _, src := range sources {
		current[src.ID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Cancel jobs for calendars that no longer exist.
	for id, entryID := range s.entries {
		if _, ok := current[id]; !ok {
			s.cron.Remove(entryID)
			delete(s.entries, id)
			delete(s.locks, id)
			s.logger.Info("sync job cancelled", "calendarId", id)
		}
	}

	// Schedule jobs for newly discovered calendars.
	for _, src := range sources {
		if _, ok := s.entries[src.ID]; ok {
			continue
		}
		calendarID := src.ID
		entryID := s.cron.Schedule(cron.Every(s.interval), cron.FuncJob(func() {
			s.runSync(calendarID)
		}))
		s.entries[calendarID] = entryID
		s.logger.Info("sync job scheduled", "calendarId", calendarID, "kind", src.Kind)
	}

	return nil
}

// runSync is one periodic tick for one calendar. Failures are logged and
// swallowed: a bad sync must not stop future ticks for this calendar, and
// must not affect other calendars' jobs.
func (s *Scheduler) runSync(calendarID string) {
	lock := s.lockFor(calendarID)
	if !lock.TryLock() {
		// Previous tick for this calendar is still running; skip rather
		// than queue so ticks stay strictly sequential per calendar.
		s.logger.Warn("sync tick skipped, previous still running", "calendarId", calendarID)
		return
	}
	defer lock.Unlock()

	ctx, cancel := context.WithTimeout(s.ctx, s.interval)
	defer cancel()

	source, err := s.calendars.GetByID(ctx, calendarID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Deleted between refreshes; the next refresh removes the job.
			return
		}
		s.logger.Error("sync tick failed to load calendar", "calendarId", calendarID, "error", err)
		return
	}

	if _, err := s.syncer.Sync(ctx, source); err != nil {
		s.logger.Error("calendar sync failed", "calendarId", calendarID, "error", err)
	}
}

func (s *Scheduler) lockFor(calendarID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[calendarID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[calendarID] = lock
	}
	return lock
}

// cronLogger adapts slog to cron's logger interface so panics recovered by
// the cron chain land in the application log.
type cronLogger struct {
	logger *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.logger.Info(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.logger.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}
