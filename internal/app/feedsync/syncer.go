package feedsync

import (
	"context"
	"log/slog"
	"time"

	"staycal/internal/app/outbox"
	"staycal/internal/app/uow"
	domaincalendar "staycal/internal/domain/calendar"
	"staycal/internal/domain/shared/events"
)

// Fetcher retrieves the raw bytes of an external feed URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Syncer polls active import feeds whose interval has elapsed. One bad feed
// never stops the sweep.
type Syncer struct {
	UoWFactory uow.UoWFactory
	Importer   *Importer
	Fetcher    Fetcher
	Outbox     outbox.Outbox
	Logger     *slog.Logger

	Now func() time.Time
}

func (s *Syncer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// SyncDue fetches and imports every feed that is due, marking last-sync on
// success. Returns the number of feeds synced.
func (s *Syncer) SyncDue(ctx context.Context) (int, error) {
	unit, err := s.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return 0, err
	}
	unitCtx := uow.InjectContext(ctx, unit)
	feeds, err := unit.Feeds().ListActiveImports(unitCtx)
	_ = unit.Rollback(unitCtx)
	if err != nil {
		return 0, err
	}

	synced := 0
	for _, feed := range feeds {
		if !feed.Due(s.now()) {
			continue
		}
		if err := s.syncOne(ctx, feed); err != nil {
			if s.Logger != nil {
				s.Logger.Warn("feed sync failed", "feed_id", feed.ID, "property_id", feed.PropertyID, "error", err)
			}
			continue
		}
		synced++
	}
	return synced, nil
}

func (s *Syncer) syncOne(ctx context.Context, feed domaincalendar.FeedConfig) error {
	payload, err := s.Fetcher.Fetch(ctx, feed.URL)
	if err != nil {
		return err
	}
	summary, err := s.Importer.ImportPayload(ctx, feed.PropertyID, payload)
	if err != nil {
		return err
	}

	now := s.now()
	unit, err := s.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	ctx = uow.InjectContext(ctx, unit)
	if err := unit.Feeds().MarkSynced(ctx, feed.ID, now); err != nil {
		_ = unit.Rollback(ctx)
		return err
	}
	event := domaincalendar.FeedSynced{
		PropertyID: feed.PropertyID,
		FeedID:     feed.ID,
		Imported:   summary.Succeeded,
		Skipped:    summary.Failed,
		At:         now,
	}
	if err := outbox.RecordDomainEvents(ctx, s.Outbox, nil, []events.DomainEvent{event}); err != nil {
		_ = unit.Rollback(ctx)
		return err
	}
	if err := unit.Commit(ctx); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("feed synced", "feed_id", feed.ID, "property_id", feed.PropertyID,
			"imported", summary.Succeeded, "failed", summary.Failed)
	}
	return nil
}
