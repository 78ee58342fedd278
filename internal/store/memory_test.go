package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/junketops/junket-engine/internal/model"
	"github.com/junketops/junket-engine/internal/sharing"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func seedTrip(t *testing.T, s *MemoryStore, id string) *model.Trip {
	t.Helper()
	trip := &model.Trip{
		ID:        id,
		Name:      "Macau " + id,
		Status:    model.TripPlanned,
		CreatedAt: time.Now().UTC(),
		Agents: []sharing.TripAgent{
			{AgentID: "a1", AgentName: "Alice", SharePercentage: d(60), CalculatedShare: d(777)},
		},
	}
	if err := s.CreateTrip(context.Background(), trip); err != nil {
		t.Fatalf("failed to seed trip: %v", err)
	}
	return trip
}

func TestMemoryStore_TripRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	seedTrip(t, s, "t1")

	got, err := s.GetTrip(ctx, "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Macau t1" || len(got.Agents) != 1 {
		t.Fatalf("unexpected trip %+v", got)
	}
	if !got.Agents[0].CalculatedShare.IsZero() {
		t.Errorf("calculated share must not be persisted, got %s", got.Agents[0].CalculatedShare)
	}

	// Mutating the returned copy must not leak into the store.
	got.Agents[0].SharePercentage = d(1)
	again, _ := s.GetTrip(ctx, "t1")
	if !again.Agents[0].SharePercentage.Equal(d(60)) {
		t.Error("store returned a shared agents slice")
	}
}

func TestMemoryStore_CreateTripConflict(t *testing.T) {
	s := NewMemoryStore()
	seedTrip(t, s, "t1")

	err := s.CreateTrip(context.Background(), &model.Trip{ID: "t1"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestMemoryStore_GetTripNotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.GetTrip(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_SetAndRemoveTripAgent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	seedTrip(t, s, "t1")

	// Update existing agent.
	if err := s.SetTripAgent(ctx, "t1", sharing.TripAgent{AgentID: "a1", AgentName: "Alice", SharePercentage: d(40)}); err != nil {
		t.Fatalf("set agent: %v", err)
	}
	// Add a new one.
	if err := s.SetTripAgent(ctx, "t1", sharing.TripAgent{AgentID: "a2", AgentName: "Bob", SharePercentage: d(10)}); err != nil {
		t.Fatalf("add agent: %v", err)
	}

	trip, _ := s.GetTrip(ctx, "t1")
	if len(trip.Agents) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(trip.Agents))
	}
	if !trip.Agents[0].SharePercentage.Equal(d(40)) {
		t.Errorf("expected a1 at 40%%, got %s", trip.Agents[0].SharePercentage)
	}

	if err := s.RemoveTripAgent(ctx, "t1", "a1"); err != nil {
		t.Fatalf("remove agent: %v", err)
	}
	trip, _ = s.GetTrip(ctx, "t1")
	if len(trip.Agents) != 1 || trip.Agents[0].AgentID != "a2" {
		t.Errorf("expected only a2 left, got %+v", trip.Agents)
	}

	if err := s.RemoveTripAgent(ctx, "t1", "a1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound removing absent agent, got %v", err)
	}
	if err := s.SetTripAgent(ctx, "nope", sharing.TripAgent{AgentID: "a3"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing trip, got %v", err)
	}
}

func TestMemoryStore_TripTotals(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	seedTrip(t, s, "t1")
	seedTrip(t, s, "t2")

	customers := []model.TripCustomer{
		{TripID: "t1", CustomerID: "c1", BuyIn: d(10000), BuyOut: d(2000), WinLoss: d(-8000), RollingAmount: d(50000), RollingCommission: d(700)},
		{TripID: "t1", CustomerID: "c2", BuyIn: d(5000), BuyOut: d(3000), WinLoss: d(-2000), RollingAmount: d(20000), RollingCommission: d(300)},
		{TripID: "t2", CustomerID: "c1", BuyIn: d(999), BuyOut: d(0), WinLoss: d(-999), RollingAmount: d(1), RollingCommission: d(1)},
	}
	for i := range customers {
		if err := s.UpsertTripCustomer(ctx, &customers[i]); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	for _, amt := range []float64{200, 300} {
		if err := s.AddExpense(ctx, &model.Expense{ID: "e", TripID: "t1", Amount: d(amt)}); err != nil {
			t.Fatalf("add expense: %v", err)
		}
	}

	totals, err := s.GetTripTotals(ctx, "t1")
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	checks := map[string][2]decimal.Decimal{
		"buy-in":     {totals.TotalBuyIn, d(15000)},
		"buy-out":    {totals.TotalBuyOut, d(5000)},
		"win/loss":   {totals.TotalWinLoss, d(-10000)},
		"rolling":    {totals.TotalRolling, d(70000)},
		"commission": {totals.TotalRollingCommission, d(1000)},
		"expenses":   {totals.TotalExpenses, d(500)},
	}
	for name, c := range checks {
		if !c[0].Equal(c[1]) {
			t.Errorf("%s: expected %s, got %s", name, c[1], c[0])
		}
	}
	if totals.CustomerCount != 2 {
		t.Errorf("expected 2 customers, got %d", totals.CustomerCount)
	}

	// Upsert replaces, not accumulates.
	customers[0].BuyIn = d(1)
	s.UpsertTripCustomer(ctx, &customers[0])
	totals, _ = s.GetTripTotals(ctx, "t1")
	if !totals.TotalBuyIn.Equal(d(5001)) {
		t.Errorf("expected upsert to replace buy-in, total now %s", totals.TotalBuyIn)
	}
}

func TestMemoryStore_DeleteTripCascades(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	seedTrip(t, s, "t1")
	s.UpsertTripCustomer(ctx, &model.TripCustomer{TripID: "t1", CustomerID: "c1", BuyIn: d(10)})
	s.AddExpense(ctx, &model.Expense{ID: "e1", TripID: "t1", Amount: d(5)})

	if err := s.DeleteTrip(ctx, "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetTripTotals(ctx, "t1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := s.GetTripCustomer(ctx, "t1", "c1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("trip customer should be gone, got %v", err)
	}

	// Recreating the trip starts from empty totals.
	seedTrip(t, s, "t1")
	totals, _ := s.GetTripTotals(ctx, "t1")
	if !totals.TotalExpenses.IsZero() || totals.CustomerCount != 0 {
		t.Errorf("expected clean totals, got %+v", totals)
	}
}

func TestMemoryStore_ListTripsNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		s.CreateTrip(ctx, &model.Trip{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Hour)})
	}
	trips, _ := s.ListTrips(ctx)
	if len(trips) != 3 || trips[0].ID != "new" || trips[2].ID != "old" {
		t.Errorf("unexpected order: %v", []string{trips[0].ID, trips[1].ID, trips[2].ID})
	}
}

func TestMemoryStore_Directory(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.CreateAgent(ctx, &model.Agent{ID: "a2", Name: "Zed"})
	s.CreateAgent(ctx, &model.Agent{ID: "a1", Name: "Amy"})
	agents, _ := s.ListAgents(ctx)
	if len(agents) != 2 || agents[0].Name != "Amy" {
		t.Errorf("agents should be sorted by name, got %+v", agents)
	}
	if err := s.CreateAgent(ctx, &model.Agent{ID: "a1"}); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
	if _, err := s.GetAgent(ctx, "a1"); err != nil {
		t.Errorf("get agent: %v", err)
	}
	if err := s.DeleteAgent(ctx, "a1"); err != nil {
		t.Errorf("delete agent: %v", err)
	}
	if _, err := s.GetAgent(ctx, "a1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	s.CreateCustomer(ctx, &model.Customer{ID: "c1", Name: "Carl"})
	if c, err := s.GetCustomer(ctx, "c1"); err != nil || c.Name != "Carl" {
		t.Errorf("get customer: %+v, %v", c, err)
	}
	if err := s.DeleteCustomer(ctx, "c1"); err != nil {
		t.Errorf("delete customer: %v", err)
	}
	if err := s.DeleteCustomer(ctx, "c1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	s.CreateStaff(ctx, &model.Staff{ID: "s1", Name: "Sam", Position: "cashier"})
	staff, _ := s.ListStaff(ctx)
	if len(staff) != 1 || staff[0].Position != "cashier" {
		t.Errorf("unexpected staff %+v", staff)
	}
}
