// Package store defines the persistence interface for junket operations.
// Implementations include PostgreSQL (source of truth), Redis (read-through
// cache), and in-memory (for testing).
//
// The store only holds authoritative inputs. Derived values such as an
// agent's calculated share are zeroed on write and recomputed by callers.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/junketops/junket-engine/internal/model"
	"github.com/junketops/junket-engine/internal/sharing"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrConflict is returned when a write collides with an existing record.
	ErrConflict = errors.New("store: conflict")
)

// Store is the persistence interface. PostgreSQL is the source of truth;
// Redis provides a read-through cache layer.
type Store interface {
	// --- Directory ---

	CreateCustomer(ctx context.Context, c *model.Customer) error
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error

	CreateAgent(ctx context.Context, a *model.Agent) error
	GetAgent(ctx context.Context, id string) (*model.Agent, error)
	ListAgents(ctx context.Context) ([]model.Agent, error)
	DeleteAgent(ctx context.Context, id string) error

	CreateStaff(ctx context.Context, s *model.Staff) error
	ListStaff(ctx context.Context) ([]model.Staff, error)
	DeleteStaff(ctx context.Context, id string) error

	// --- Trips ---

	// CreateTrip persists a new trip together with its agents.
	CreateTrip(ctx context.Context, t *model.Trip) error

	// GetTrip retrieves a trip and its agents by ID.
	GetTrip(ctx context.Context, id string) (*model.Trip, error)

	// ListTrips returns all trips, newest first.
	ListTrips(ctx context.Context) ([]model.Trip, error)

	// UpdateTripStatus moves a trip to a new lifecycle state.
	UpdateTripStatus(ctx context.Context, id string, status model.TripStatus) error

	// DeleteTrip removes a trip with its agents, customers and expenses.
	DeleteTrip(ctx context.Context, id string) error

	// SetTripAgent attaches an agent to a trip or updates its percentage.
	SetTripAgent(ctx context.Context, tripID string, agent sharing.TripAgent) error

	// RemoveTripAgent detaches an agent from a trip.
	RemoveTripAgent(ctx context.Context, tripID, agentID string) error

	// --- Trip customers and expenses ---

	// UpsertTripCustomer records a customer's aggregated activity on a trip.
	UpsertTripCustomer(ctx context.Context, tc *model.TripCustomer) error

	GetTripCustomer(ctx context.Context, tripID, customerID string) (*model.TripCustomer, error)
	ListTripCustomers(ctx context.Context, tripID string) ([]model.TripCustomer, error)

	AddExpense(ctx context.Context, e *model.Expense) error
	ListExpenses(ctx context.Context, tripID string) ([]model.Expense, error)

	// --- Aggregation ---

	// GetTripTotals sums customer activity and expenses for a trip.
	GetTripTotals(ctx context.Context, tripID string) (model.TripTotals, error)
}

// stripDerived returns a copy of agents with CalculatedShare cleared.
func stripDerived(agents []sharing.TripAgent) []sharing.TripAgent {
	out := make([]sharing.TripAgent, len(agents))
	for i, a := range agents {
		a.CalculatedShare = decimal.Zero
		out[i] = a
	}
	return out
}
