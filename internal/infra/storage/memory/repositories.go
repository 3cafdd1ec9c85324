package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainbooking "staycal/internal/domain/booking"
	domaincalendar "staycal/internal/domain/calendar"
	domainpricing "staycal/internal/domain/pricing"
)

// BookingRepository is an in-memory implementation for tests and demo runs.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *b
	clone.Version = b.Version + 1
	r.items[b.ID] = &clone
	b.Version = clone.Version
	return nil
}

func (r *BookingRepository) ListByProperty(ctx context.Context, propertyID string) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range r.items {
		if b.PropertyID == propertyID {
			clone := *b
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stay.Start.Before(out[j].Stay.Start) })
	return out, nil
}

func (r *BookingRepository) ListConfirmed(ctx context.Context, propertyID string) ([]*domainbooking.Booking, error) {
	all, err := r.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	var out []*domainbooking.Booking
	for _, b := range all {
		if b.Status == domainbooking.StatusConfirmed {
			out = append(out, b)
		}
	}
	return out, nil
}

// BlockRepository stores blocked dates keyed by property.
type BlockRepository struct {
	mu    sync.RWMutex
	items map[string][]domaincalendar.BlockedDate
}

func NewBlockRepository() *BlockRepository {
	return &BlockRepository{items: make(map[string][]domaincalendar.BlockedDate)}
}

func (r *BlockRepository) ByProperty(ctx context.Context, propertyID string) ([]domaincalendar.BlockedDate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]domaincalendar.BlockedDate(nil), r.items[propertyID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *BlockRepository) Save(ctx context.Context, block domaincalendar.BlockedDate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[block.PropertyID] = append(r.items[block.PropertyID], block)
	return nil
}

func (r *BlockRepository) Delete(ctx context.Context, propertyID string, date time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := domaincalendar.Midnight(date)
	var kept []domaincalendar.BlockedDate
	removed := false
	for _, b := range r.items[propertyID] {
		if domaincalendar.SameDay(b.Date, day) && b.Source != domaincalendar.SourceBooking {
			removed = true
			continue
		}
		kept = append(kept, b)
	}
	if !removed {
		return domaincalendar.ErrBlockNotFound
	}
	r.items[propertyID] = kept
	return nil
}

// SpecialPriceRepository keeps at most one override per (property, date).
type SpecialPriceRepository struct {
	mu    sync.RWMutex
	items map[string][]domainpricing.SpecialPrice
}

func NewSpecialPriceRepository() *SpecialPriceRepository {
	return &SpecialPriceRepository{items: make(map[string][]domainpricing.SpecialPrice)}
}

func (r *SpecialPriceRepository) ByProperty(ctx context.Context, propertyID string) ([]domainpricing.SpecialPrice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]domainpricing.SpecialPrice(nil), r.items[propertyID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *SpecialPriceRepository) Upsert(ctx context.Context, sp domainpricing.SpecialPrice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items[sp.PropertyID]
	for i, existing := range items {
		if domaincalendar.SameDay(existing.Date, sp.Date) {
			sp.ID = existing.ID
			items[i] = sp
			return nil
		}
	}
	r.items[sp.PropertyID] = append(items, sp)
	return nil
}

func (r *SpecialPriceRepository) Delete(ctx context.Context, propertyID string, date time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := domaincalendar.Midnight(date)
	items := r.items[propertyID]
	for i, sp := range items {
		if domaincalendar.SameDay(sp.Date, day) {
			r.items[propertyID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return domainpricing.ErrPriceNotFound
}

// FeedConfigRepository stores external feed definitions.
type FeedConfigRepository struct {
	mu    sync.RWMutex
	items map[string]domaincalendar.FeedConfig
}

func NewFeedConfigRepository() *FeedConfigRepository {
	return &FeedConfigRepository{items: make(map[string]domaincalendar.FeedConfig)}
}

func (r *FeedConfigRepository) ByID(ctx context.Context, id string) (domaincalendar.FeedConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.items[id]
	if !ok {
		return domaincalendar.FeedConfig{}, domaincalendar.ErrFeedNotFound
	}
	return cfg, nil
}

func (r *FeedConfigRepository) ByProperty(ctx context.Context, propertyID string) ([]domaincalendar.FeedConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domaincalendar.FeedConfig
	for _, cfg := range r.items {
		if cfg.PropertyID == propertyID {
			out = append(out, cfg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *FeedConfigRepository) ListActiveImports(ctx context.Context) ([]domaincalendar.FeedConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domaincalendar.FeedConfig
	for _, cfg := range r.items {
		if cfg.Active && cfg.Direction == domaincalendar.FeedImport {
			out = append(out, cfg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *FeedConfigRepository) Save(ctx context.Context, cfg domaincalendar.FeedConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[cfg.ID] = cfg
	return nil
}

func (r *FeedConfigRepository) MarkSynced(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.items[id]
	if !ok {
		return domaincalendar.ErrFeedNotFound
	}
	cfg.LastSync = at.UTC()
	r.items[id] = cfg
	return nil
}

// RateCardStore is a static rate card source seeded at startup; real base
// rates live behind the property CRUD boundary.
type RateCardStore struct {
	mu    sync.RWMutex
	items map[string]domainpricing.RateCard
}

func NewRateCardStore() *RateCardStore {
	return &RateCardStore{items: make(map[string]domainpricing.RateCard)}
}

func (r *RateCardStore) Seed(propertyID string, rc domainpricing.RateCard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[propertyID] = rc
}

func (r *RateCardStore) RateCard(ctx context.Context, propertyID string) (domainpricing.RateCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rc, ok := r.items[propertyID]
	if !ok {
		return domainpricing.RateCard{}, domainpricing.ErrRateCardNotFound
	}
	return rc, nil
}
