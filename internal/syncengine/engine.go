// Package syncengine reconciles stored events for one calendar against a
// freshly resolved feed: fetch, parse, diff by provider UID, then apply the
// insert/delete batch atomically through the event repository.
package syncengine

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/fazamuttaqien/slotbook/internal/icsfeed"
	"github.com/fazamuttaqien/slotbook/internal/model"
	"github.com/fazamuttaqien/slotbook/internal/repository"
	appError "github.com/fazamuttaqien/slotbook/pkg/app-error"
	"github.com/fazamuttaqien/slotbook/pkg/enum"
	"github.com/google/uuid"
)

// generatedUIDPrefix marks UIDs synthesized for events the provider shipped
// without one. Synthesized UIDs are random per sync, so such events are
// deleted and re-created on every re-sync.
const generatedUIDPrefix = "generated-"

type Engine struct {
	fetcher icsfeed.Fetcher
	parser  icsfeed.Parser
	events  repository.EventRepository
	logger  *slog.Logger
	now     func() time.Time
}

func New(fetcher icsfeed.Fetcher, parser icsfeed.Parser, events repository.EventRepository, logger *slog.Logger) *Engine {
	return &Engine{
		fetcher: fetcher,
		parser:  parser,
		events:  events,
		logger:  logger,
		now:     time.Now,
	}
}

// Sync reconciles one calendar. Fetch and parse failures leave the stored
// event set and last_synced_at untouched and come back as SyncError; the
// scheduler logs them and retries on its next tick.
func (e *Engine) Sync(ctx context.Context, source model.CalendarSource) (repository.SyncStats, error) {
	var stats repository.SyncStats

	var body []byte
	switch source.Kind {
	case enum.SourceURL:
		fetched, err := e.fetcher.Fetch(ctx, source.Origin.String)
		if err != nil {
			return stats, appError.NewSyncError("Failed to fetch calendar feed", err)
		}
		body = fetched
	case enum.SourceFile:
		body = source.Payload
	case enum.SourceManual:
		// Nothing to reconcile; hand-entered events stay as they are.
		return stats, nil
	default:
		return stats, appError.NewValidationError("Unknown calendar source kind: "+source.Kind.String(), nil)
	}

	parsed, err := e.parser.Parse(body)
	if err != nil {
		return stats, appError.NewSyncError("Failed to parse calendar feed", err)
	}

	upserts := make([]model.Event, 0, len(parsed))
	processed := make(map[string]struct{}, len(parsed))
	for _, pe := range parsed {
		ev := e.toEvent(source.ID, pe)
		upserts = append(upserts, ev)
		processed[ev.UID] = struct{}{}
	}

	storedUIDs, err := e.events.ListUIDs(ctx, source.ID)
	if err != nil {
		return stats, appError.NewStorageError("Failed to list stored event UIDs", err)
	}

	deleteUIDs := make([]string, 0)
	for _, uid := range storedUIDs {
		if _, ok := processed[uid]; !ok {
			deleteUIDs = append(deleteUIDs, uid)
		}
	}

	stats, err = e.events.ApplySyncBatch(ctx, source.ID, repository.SyncBatch{
		Upserts:    upserts,
		DeleteUIDs: deleteUIDs,
		SyncedAt:   e.now(),
	})
	if err != nil {
		return repository.SyncStats{}, appError.NewStorageError("Failed to apply sync batch", err)
	}

	e.logger.Info("calendar synced",
		"calendarId", source.ID,
		"imported", stats.Imported,
		"deleted", stats.Deleted,
	)
	return stats, nil
}

// toEvent converts a parsed feed entry into the stored event shape, filling
// in a synthesized UID and normalizing all-day bounds.
func (e *Engine) toEvent(calendarID string, pe icsfeed.ParsedEvent) model.Event {
	uid := pe.UID
	if uid == "" {
		uid = generatedUIDPrefix + uuid.NewString()
	}

	tz := pe.Timezone
	if tz == "" {
		tz = "UTC"
	}

	start, end := pe.Start, pe.End
	if pe.AllDay {
		// All-day events span [00:00:00, 23:59:59] in their declared zone,
		// not UTC midnight.
		loc, err := time.LoadLocation(tz)
		if err != nil {
			loc = time.UTC
			tz = "UTC"
		}
		local := start.In(loc)
		start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		end = time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 0, loc)
	}
	if end.Before(start) {
		end = start
	}

	return model.Event{
		CalendarID:  calendarID,
		UID:         uid,
		Title:       pe.Title,
		Description: pe.Description,
		Location:    pe.Location,
		StartTime:   start,
		EndTime:     end,
		Timezone:    tz,
		AllDay:      pe.AllDay,
		RecurrenceRule: sql.NullString{
			String: pe.RecurrenceRule,
			Valid:  pe.RecurrenceRule != "",
		},
	}
}
