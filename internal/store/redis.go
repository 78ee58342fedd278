package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/junketops/junket-engine/internal/model"
	"github.com/junketops/junket-engine/internal/sharing"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache for trips and their totals. Writes go to the primary store and
// invalidate the cache; reads check Redis first then fall back to the primary.
type CachedStore struct {
	Store
	rdb *redis.Client
	ttl time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store. Methods
// that are not cached pass straight through to the primary.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		Store: primary,
		rdb:   rdb,
		ttl:   ttl,
	}
}

// --- Write-through (write to primary, invalidate cache) ---

func (s *CachedStore) CreateTrip(ctx context.Context, t *model.Trip) error {
	if err := s.Store.CreateTrip(ctx, t); err != nil {
		return err
	}
	s.invalidate(ctx, t.ID)
	return nil
}

func (s *CachedStore) UpdateTripStatus(ctx context.Context, id string, status model.TripStatus) error {
	if err := s.Store.UpdateTripStatus(ctx, id, status); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *CachedStore) DeleteTrip(ctx context.Context, id string) error {
	if err := s.Store.DeleteTrip(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *CachedStore) SetTripAgent(ctx context.Context, tripID string, agent sharing.TripAgent) error {
	if err := s.Store.SetTripAgent(ctx, tripID, agent); err != nil {
		return err
	}
	s.invalidate(ctx, tripID)
	return nil
}

func (s *CachedStore) RemoveTripAgent(ctx context.Context, tripID, agentID string) error {
	if err := s.Store.RemoveTripAgent(ctx, tripID, agentID); err != nil {
		return err
	}
	s.invalidate(ctx, tripID)
	return nil
}

func (s *CachedStore) UpsertTripCustomer(ctx context.Context, tc *model.TripCustomer) error {
	if err := s.Store.UpsertTripCustomer(ctx, tc); err != nil {
		return err
	}
	s.rdb.Del(ctx, totalsKey(tc.TripID))
	return nil
}

func (s *CachedStore) AddExpense(ctx context.Context, e *model.Expense) error {
	if err := s.Store.AddExpense(ctx, e); err != nil {
		return err
	}
	s.rdb.Del(ctx, totalsKey(e.TripID))
	return nil
}

// --- Read-through (check cache first) ---

func (s *CachedStore) GetTrip(ctx context.Context, id string) (*model.Trip, error) {
	data, err := s.rdb.Get(ctx, tripKey(id)).Bytes()
	if err == nil {
		var t model.Trip
		if json.Unmarshal(data, &t) == nil {
			return &t, nil
		}
	}

	// Cache miss: read from primary.
	t, err := s.Store.GetTrip(ctx, id)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(t); err == nil {
		s.rdb.Set(ctx, tripKey(id), data, s.ttl)
	}
	return t, nil
}

func (s *CachedStore) GetTripTotals(ctx context.Context, tripID string) (model.TripTotals, error) {
	data, err := s.rdb.Get(ctx, totalsKey(tripID)).Bytes()
	if err == nil {
		var totals model.TripTotals
		if json.Unmarshal(data, &totals) == nil {
			return totals, nil
		}
	}

	totals, err := s.Store.GetTripTotals(ctx, tripID)
	if err != nil {
		return model.TripTotals{}, err
	}
	if data, err := json.Marshal(totals); err == nil {
		s.rdb.Set(ctx, totalsKey(tripID), data, s.ttl)
	}
	return totals, nil
}

// --- Cache helpers ---

func (s *CachedStore) invalidate(ctx context.Context, tripID string) {
	s.rdb.Del(ctx, tripKey(tripID), totalsKey(tripID))
}

func tripKey(id string) string   { return fmt.Sprintf("trip:%s", id) }
func totalsKey(id string) string { return fmt.Sprintf("trip-totals:%s", id) }
