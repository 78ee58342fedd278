package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/junketops/junket-engine/internal/model"
	"github.com/junketops/junket-engine/internal/sharing"
)

// MemoryStore implements Store with in-memory maps. Used for testing
// and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu        sync.RWMutex
	customers map[string]model.Customer
	agents    map[string]model.Agent
	staff     map[string]model.Staff
	trips     map[string]*model.Trip
	// tripID -> customerID -> activity
	activity map[string]map[string]model.TripCustomer
	expenses []model.Expense
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		customers: make(map[string]model.Customer),
		agents:    make(map[string]model.Agent),
		staff:     make(map[string]model.Staff),
		trips:     make(map[string]*model.Trip),
		activity:  make(map[string]map[string]model.TripCustomer),
	}
}

// --- Directory ---

func (s *MemoryStore) CreateCustomer(_ context.Context, c *model.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[c.ID]; ok {
		return fmt.Errorf("customer %s: %w", c.ID, ErrConflict)
	}
	s.customers[c.ID] = *c
	return nil
}

func (s *MemoryStore) GetCustomer(_ context.Context, id string) (*model.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	return &c, nil
}

func (s *MemoryStore) ListCustomers(_ context.Context) ([]model.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b model.Customer) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (s *MemoryStore) DeleteCustomer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[id]; !ok {
		return fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	delete(s.customers, id)
	return nil
}

func (s *MemoryStore) CreateAgent(_ context.Context, a *model.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.agents[a.ID]; ok {
		return fmt.Errorf("agent %s: %w", a.ID, ErrConflict)
	}
	s.agents[a.ID] = *a
	return nil
}

func (s *MemoryStore) GetAgent(_ context.Context, id string) (*model.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.agents[id]
	if !ok {
		return nil, fmt.Errorf("agent %s: %w", id, ErrNotFound)
	}
	return &a, nil
}

func (s *MemoryStore) ListAgents(_ context.Context) ([]model.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Agent, 0, len(s.agents))
	for _, a := range s.agents {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b model.Agent) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (s *MemoryStore) DeleteAgent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.agents[id]; !ok {
		return fmt.Errorf("agent %s: %w", id, ErrNotFound)
	}
	delete(s.agents, id)
	return nil
}

func (s *MemoryStore) CreateStaff(_ context.Context, st *model.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.staff[st.ID]; ok {
		return fmt.Errorf("staff %s: %w", st.ID, ErrConflict)
	}
	s.staff[st.ID] = *st
	return nil
}

func (s *MemoryStore) ListStaff(_ context.Context) ([]model.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Staff, 0, len(s.staff))
	for _, st := range s.staff {
		out = append(out, st)
	}
	slices.SortFunc(out, func(a, b model.Staff) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (s *MemoryStore) DeleteStaff(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.staff[id]; !ok {
		return fmt.Errorf("staff %s: %w", id, ErrNotFound)
	}
	delete(s.staff, id)
	return nil
}

// --- Trips ---

func (s *MemoryStore) CreateTrip(_ context.Context, t *model.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trips[t.ID]; ok {
		return fmt.Errorf("trip %s: %w", t.ID, ErrConflict)
	}
	s.trips[t.ID] = copyTrip(t)
	return nil
}

func (s *MemoryStore) GetTrip(_ context.Context, id string) (*model.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.trips[id]
	if !ok {
		return nil, fmt.Errorf("trip %s: %w", id, ErrNotFound)
	}
	return copyTrip(t), nil
}

func (s *MemoryStore) ListTrips(_ context.Context) ([]model.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Trip, 0, len(s.trips))
	for _, t := range s.trips {
		out = append(out, *copyTrip(t))
	}
	slices.SortFunc(out, func(a, b model.Trip) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (s *MemoryStore) UpdateTripStatus(_ context.Context, id string, status model.TripStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trips[id]
	if !ok {
		return fmt.Errorf("trip %s: %w", id, ErrNotFound)
	}
	t.Status = status
	return nil
}

func (s *MemoryStore) DeleteTrip(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trips[id]; !ok {
		return fmt.Errorf("trip %s: %w", id, ErrNotFound)
	}
	delete(s.trips, id)
	delete(s.activity, id)
	s.expenses = slices.DeleteFunc(s.expenses, func(e model.Expense) bool {
		return e.TripID == id
	})
	return nil
}

func (s *MemoryStore) SetTripAgent(_ context.Context, tripID string, agent sharing.TripAgent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trips[tripID]
	if !ok {
		return fmt.Errorf("trip %s: %w", tripID, ErrNotFound)
	}
	agent.CalculatedShare = decimal.Zero
	for i, a := range t.Agents {
		if a.AgentID == agent.AgentID {
			t.Agents[i] = agent
			return nil
		}
	}
	t.Agents = append(t.Agents, agent)
	return nil
}

func (s *MemoryStore) RemoveTripAgent(_ context.Context, tripID, agentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trips[tripID]
	if !ok {
		return fmt.Errorf("trip %s: %w", tripID, ErrNotFound)
	}
	idx := slices.IndexFunc(t.Agents, func(a sharing.TripAgent) bool { return a.AgentID == agentID })
	if idx < 0 {
		return fmt.Errorf("agent %s on trip %s: %w", agentID, tripID, ErrNotFound)
	}
	t.Agents = slices.Delete(t.Agents, idx, idx+1)
	return nil
}

// --- Trip customers and expenses ---

func (s *MemoryStore) UpsertTripCustomer(_ context.Context, tc *model.TripCustomer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trips[tc.TripID]; !ok {
		return fmt.Errorf("trip %s: %w", tc.TripID, ErrNotFound)
	}
	byCustomer, ok := s.activity[tc.TripID]
	if !ok {
		byCustomer = make(map[string]model.TripCustomer)
		s.activity[tc.TripID] = byCustomer
	}
	byCustomer[tc.CustomerID] = *tc
	return nil
}

func (s *MemoryStore) GetTripCustomer(_ context.Context, tripID, customerID string) (*model.TripCustomer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tc, ok := s.activity[tripID][customerID]
	if !ok {
		return nil, fmt.Errorf("customer %s on trip %s: %w", customerID, tripID, ErrNotFound)
	}
	return &tc, nil
}

func (s *MemoryStore) ListTripCustomers(_ context.Context, tripID string) ([]model.TripCustomer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.trips[tripID]; !ok {
		return nil, fmt.Errorf("trip %s: %w", tripID, ErrNotFound)
	}
	out := make([]model.TripCustomer, 0, len(s.activity[tripID]))
	for _, tc := range s.activity[tripID] {
		out = append(out, tc)
	}
	slices.SortFunc(out, func(a, b model.TripCustomer) int {
		return cmp.Or(cmp.Compare(a.CustomerName, b.CustomerName), cmp.Compare(a.CustomerID, b.CustomerID))
	})
	return out, nil
}

func (s *MemoryStore) AddExpense(_ context.Context, e *model.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trips[e.TripID]; !ok {
		return fmt.Errorf("trip %s: %w", e.TripID, ErrNotFound)
	}
	s.expenses = append(s.expenses, *e)
	return nil
}

func (s *MemoryStore) ListExpenses(_ context.Context, tripID string) ([]model.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.trips[tripID]; !ok {
		return nil, fmt.Errorf("trip %s: %w", tripID, ErrNotFound)
	}
	out := []model.Expense{}
	for _, e := range s.expenses {
		if e.TripID == tripID {
			out = append(out, e)
		}
	}
	return out, nil
}

// --- Aggregation ---

// GetTripTotals sums activity and expenses under a single read lock.
func (s *MemoryStore) GetTripTotals(_ context.Context, tripID string) (model.TripTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.trips[tripID]; !ok {
		return model.TripTotals{}, fmt.Errorf("trip %s: %w", tripID, ErrNotFound)
	}

	totals := model.TripTotals{TripID: tripID}
	for _, tc := range s.activity[tripID] {
		totals.TotalBuyIn = totals.TotalBuyIn.Add(tc.BuyIn)
		totals.TotalBuyOut = totals.TotalBuyOut.Add(tc.BuyOut)
		totals.TotalWinLoss = totals.TotalWinLoss.Add(tc.WinLoss)
		totals.TotalRolling = totals.TotalRolling.Add(tc.RollingAmount)
		totals.TotalRollingCommission = totals.TotalRollingCommission.Add(tc.RollingCommission)
		totals.CustomerCount++
	}
	for _, e := range s.expenses {
		if e.TripID == tripID {
			totals.TotalExpenses = totals.TotalExpenses.Add(e.Amount)
		}
	}
	return totals, nil
}

// copyTrip stores and hands out copies to avoid external mutation.
func copyTrip(t *model.Trip) *model.Trip {
	c := *t
	c.Agents = stripDerived(t.Agents)
	return &c
}
