package junket

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/junketops/junket-engine/internal/model"
	"github.com/junketops/junket-engine/internal/sharing"
	"github.com/junketops/junket-engine/internal/store"
)

// errBadAgent marks a trip agent assignment rejected at the boundary.
var errBadAgent = errors.New("invalid agent assignment")

// --- Request types ---

// TripAgentRequest assigns a directory agent to a trip. An omitted
// sharePercentage is zero.
type TripAgentRequest struct {
	AgentID         string          `json:"agentId"`
	SharePercentage decimal.Decimal `json:"sharePercentage"`
}

// CreateTripRequest is the JSON body for POST /trips.
type CreateTripRequest struct {
	Name        string             `json:"name"`
	Destination string             `json:"destination"`
	Status      model.TripStatus   `json:"status"` // empty → planned
	StartDate   *time.Time         `json:"startDate"`
	EndDate     *time.Time         `json:"endDate"`
	Agents      []TripAgentRequest `json:"agents"`
}

// UpdateStatusRequest is the JSON body for PUT /trips/{tripID}/status.
type UpdateStatusRequest struct {
	Status model.TripStatus `json:"status"`
}

// SetAgentRequest is the JSON body for PUT /trips/{tripID}/agents/{agentID}.
type SetAgentRequest struct {
	SharePercentage decimal.Decimal `json:"sharePercentage"`
}

// TripCustomerRequest is the JSON body for
// PUT /trips/{tripID}/customers/{customerID}. Values replace the stored
// aggregates; omitted amounts are zero.
type TripCustomerRequest struct {
	BuyIn             decimal.Decimal `json:"buyIn"`
	BuyOut            decimal.Decimal `json:"buyOut"`
	WinLoss           decimal.Decimal `json:"winLoss"`
	RollingAmount     decimal.Decimal `json:"rollingAmount"`
	RollingCommission decimal.Decimal `json:"rollingCommission"`
}

// AddExpenseRequest is the JSON body for POST /trips/{tripID}/expenses.
type AddExpenseRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	IncurredAt  *time.Time      `json:"incurredAt"` // empty → now
}

// CustomerPositionResponse is a customer's activity and net position.
type CustomerPositionResponse struct {
	Customer model.TripCustomer          `json:"customer"`
	Position sharing.CustomerNetPosition `json:"position"`
}

// --- Trips ---

// CreateTrip handles POST /api/v1/trips
func (s *Service) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req CreateTripRequest
	if err := decode(r, &req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// --- Input validation ---
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, "name is required", http.StatusBadRequest)
		return
	}
	status := req.Status
	if status == "" {
		status = model.TripPlanned
	}
	if !status.Valid() {
		writeError(w, "status must be planned, active or completed", http.StatusBadRequest)
		return
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		writeError(w, "endDate must not be before startDate", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	agents := make([]sharing.TripAgent, 0, len(req.Agents))
	seen := make(map[string]bool, len(req.Agents))
	for _, ar := range req.Agents {
		if seen[ar.AgentID] {
			writeError(w, "agent "+ar.AgentID+" listed twice", http.StatusBadRequest)
			return
		}
		seen[ar.AgentID] = true

		agent, err := s.resolveAgent(ctx, ar.AgentID, ar.SharePercentage)
		if err != nil {
			s.writeAgentError(w, r, err)
			return
		}
		agents = append(agents, agent)
	}

	trip := &model.Trip{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Destination: req.Destination,
		Status:      status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Agents:      agents,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateTrip(ctx, trip); err != nil {
		s.writeStoreError(w, r, "trip", err)
		return
	}

	summary, err := s.summarize(ctx, trip, sourceTrip)
	if err != nil {
		s.writeStoreError(w, r, "trip", err)
		return
	}

	s.logger.Info("trip created",
		"id", trip.ID,
		"status", string(trip.Status),
		"agents", len(agents),
		"agent_share_pct", summary.Sharing.AgentSharePercentage.String(),
	)
	if summary.Sharing.CompanySharePercentage.IsNegative() {
		s.logger.Warn("trip agents over-allocated",
			"id", trip.ID,
			"agent_share_pct", summary.Sharing.AgentSharePercentage.String(),
		)
	}
	s.refreshActiveTrips(ctx)

	writeJSON(w, http.StatusCreated, summary.Trip)
}

// ListTrips handles GET /api/v1/trips
func (s *Service) ListTrips(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	trips, err := s.store.ListTrips(ctx)
	if err != nil {
		s.writeStoreError(w, r, "trips", err)
		return
	}

	out := make([]model.Trip, 0, len(trips))
	for i := range trips {
		summary, err := s.summarize(ctx, &trips[i], sourceTrip)
		if err != nil {
			s.writeStoreError(w, r, "trip", err)
			return
		}
		out = append(out, summary.Trip)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetTrip handles GET /api/v1/trips/{tripID}
func (s *Service) GetTrip(w http.ResponseWriter, r *http.Request) {
	summary, ok := s.loadSummary(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, summary.Trip)
}

// GetTripSharing handles GET /api/v1/trips/{tripID}/sharing
// Returns totals, the sharing breakdown and the validation report.
func (s *Service) GetTripSharing(w http.ResponseWriter, r *http.Request) {
	summary, ok := s.loadSummary(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// UpdateTripStatus handles PUT /api/v1/trips/{tripID}/status
func (s *Service) UpdateTripStatus(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")

	var req UpdateStatusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !req.Status.Valid() {
		writeError(w, "status must be planned, active or completed", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if err := s.store.UpdateTripStatus(ctx, tripID, req.Status); err != nil {
		s.writeStoreError(w, r, "trip", err)
		return
	}

	s.logger.Info("trip status changed", "id", tripID, "status", string(req.Status))
	s.refreshActiveTrips(ctx)

	summary, ok := s.loadSummary(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, summary.Trip)
}

// DeleteTrip handles DELETE /api/v1/trips/{tripID}
func (s *Service) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")
	ctx := r.Context()

	if err := s.store.DeleteTrip(ctx, tripID); err != nil {
		s.writeStoreError(w, r, "trip", err)
		return
	}

	s.logger.Info("trip deleted", "id", tripID)
	s.refreshActiveTrips(ctx)
	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{Type: EventTripDeleted, TripID: tripID})
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Trip agents ---

// SetTripAgent handles PUT /api/v1/trips/{tripID}/agents/{agentID}
// Adds the agent to the trip or replaces its percentage.
func (s *Service) SetTripAgent(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")
	agentID := chi.URLParam(r, "agentID")

	var req SetAgentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	agent, err := s.resolveAgent(ctx, agentID, req.SharePercentage)
	if err != nil {
		s.writeAgentError(w, r, err)
		return
	}
	if err := s.store.SetTripAgent(ctx, tripID, agent); err != nil {
		s.writeStoreError(w, r, "trip", err)
		return
	}

	summary, err := s.notify(ctx, tripID, "agent_set")
	if err != nil {
		s.writeStoreError(w, r, "trip", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// RemoveTripAgent handles DELETE /api/v1/trips/{tripID}/agents/{agentID}
func (s *Service) RemoveTripAgent(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")
	agentID := chi.URLParam(r, "agentID")
	ctx := r.Context()

	if err := s.store.RemoveTripAgent(ctx, tripID, agentID); err != nil {
		s.writeStoreError(w, r, "trip agent", err)
		return
	}

	summary, err := s.notify(ctx, tripID, "agent_removed")
	if err != nil {
		s.writeStoreError(w, r, "trip", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// --- Trip customers ---

// UpsertTripCustomer handles PUT /api/v1/trips/{tripID}/customers/{customerID}
func (s *Service) UpsertTripCustomer(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")
	customerID := chi.URLParam(r, "customerID")

	var req TripCustomerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	customer, err := s.store.GetCustomer(ctx, customerID)
	if err != nil {
		s.writeStoreError(w, r, "customer", err)
		return
	}

	tc := &model.TripCustomer{
		TripID:            tripID,
		CustomerID:        customerID,
		CustomerName:      customer.Name,
		BuyIn:             req.BuyIn,
		BuyOut:            req.BuyOut,
		WinLoss:           req.WinLoss,
		RollingAmount:     req.RollingAmount,
		RollingCommission: req.RollingCommission,
		UpdatedAt:         s.now(),
	}
	if err := s.store.UpsertTripCustomer(ctx, tc); err != nil {
		s.writeStoreError(w, r, "trip", err)
		return
	}

	s.notify(ctx, tripID, "customer_activity")
	writeJSON(w, http.StatusOK, CustomerPositionResponse{
		Customer: *tc,
		Position: sharing.CalculateCustomerNetPosition(
			tc.WinLoss, tc.BuyIn, tc.BuyOut, tc.RollingCommission),
	})
}

// ListTripCustomers handles GET /api/v1/trips/{tripID}/customers
func (s *Service) ListTripCustomers(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")
	customers, err := s.store.ListTripCustomers(r.Context(), tripID)
	if err != nil {
		s.writeStoreError(w, r, "trip", err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

// GetCustomerPosition handles GET /api/v1/trips/{tripID}/customers/{customerID}/position
func (s *Service) GetCustomerPosition(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")
	customerID := chi.URLParam(r, "customerID")

	tc, err := s.store.GetTripCustomer(r.Context(), tripID, customerID)
	if err != nil {
		s.writeStoreError(w, r, "trip customer", err)
		return
	}
	writeJSON(w, http.StatusOK, CustomerPositionResponse{
		Customer: *tc,
		Position: sharing.CalculateCustomerNetPosition(
			tc.WinLoss, tc.BuyIn, tc.BuyOut, tc.RollingCommission),
	})
}

// --- Expenses ---

// AddExpense handles POST /api/v1/trips/{tripID}/expenses
func (s *Service) AddExpense(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")

	var req AddExpenseRequest
	if err := decode(r, &req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, "description is required", http.StatusBadRequest)
		return
	}
	if !req.Amount.IsPositive() {
		writeError(w, "amount must be positive", http.StatusBadRequest)
		return
	}

	incurred := s.now()
	if req.IncurredAt != nil {
		incurred = req.IncurredAt.UTC()
	}
	e := &model.Expense{
		ID:          uuid.New().String(),
		TripID:      tripID,
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		IncurredAt:  incurred,
	}

	ctx := r.Context()
	if err := s.store.AddExpense(ctx, e); err != nil {
		s.writeStoreError(w, r, "trip", err)
		return
	}

	s.notify(ctx, tripID, "expense_added")
	writeJSON(w, http.StatusCreated, e)
}

// ListExpenses handles GET /api/v1/trips/{tripID}/expenses
func (s *Service) ListExpenses(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")
	expenses, err := s.store.ListExpenses(r.Context(), tripID)
	if err != nil {
		s.writeStoreError(w, r, "trip", err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

// --- Helpers ---

// loadSummary fetches the {tripID} trip and recomputes its sharing,
// writing the error response itself on failure.
func (s *Service) loadSummary(w http.ResponseWriter, r *http.Request) (model.TripSummary, bool) {
	tripID := chi.URLParam(r, "tripID")
	ctx := r.Context()

	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		s.writeStoreError(w, r, "trip", err)
		return model.TripSummary{}, false
	}
	summary, err := s.summarize(ctx, trip, sourceTrip)
	if err != nil {
		s.writeStoreError(w, r, "trip", err)
		return model.TripSummary{}, false
	}
	return summary, true
}

// resolveAgent builds a trip agent from the directory entry, rejecting
// negative percentages.
func (s *Service) resolveAgent(ctx context.Context, agentID string, pct decimal.Decimal) (sharing.TripAgent, error) {
	if agentID == "" {
		return sharing.TripAgent{}, fmt.Errorf("%w: agentId is required", errBadAgent)
	}
	if pct.IsNegative() {
		return sharing.TripAgent{}, fmt.Errorf("%w: sharePercentage must not be negative", errBadAgent)
	}
	agent, err := s.store.GetAgent(ctx, agentID)
	if err != nil {
		return sharing.TripAgent{}, err
	}
	return sharing.TripAgent{
		AgentID:         agent.ID,
		AgentName:       agent.Name,
		SharePercentage: pct,
	}, nil
}

func (s *Service) writeAgentError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errBadAgent) {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, "agent not found", http.StatusBadRequest)
		return
	}
	s.writeStoreError(w, r, "agent", err)
}
