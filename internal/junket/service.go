// Package junket provides the HTTP handlers that run junket trips:
// the customer/agent/staff directory, per-trip activity and expenses,
// profit-sharing reports, and the stateless calculators.
//
// Sharing figures are never read from storage. Every response that carries
// them recomputes them from the stored inputs with package sharing.
//
// All monetary values use shopspring/decimal, never float64.
package junket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/junketops/junket-engine/internal/metrics"
	"github.com/junketops/junket-engine/internal/middleware"
	"github.com/junketops/junket-engine/internal/model"
	"github.com/junketops/junket-engine/internal/permission"
	"github.com/junketops/junket-engine/internal/sharing"
	"github.com/junketops/junket-engine/internal/store"
)

// Labels for metrics.SharingCalculations.
const (
	sourceCalculator = "calculator"
	sourceLegacy     = "legacy"
	sourceTrip       = "trip"
	sourceDashboard  = "dashboard"
	sourceExport     = "export"
)

// Service handles junket operations over a Store.
type Service struct {
	store  store.Store
	wsHub  *WSHub // optional WebSocket hub for real-time broadcasts
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new junket service.
// Pass nil for hub if WebSocket broadcasting is not needed.
func NewService(st store.Store, hub *WSHub, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  st,
		wsHub:  hub,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Routes returns the API router, meant to be mounted at /api/v1 behind
// middleware.WithRole.
func (s *Service) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/permissions", s.GetPermissions)
	if s.wsHub != nil {
		// Events carry trip financials; same gate as reading a trip.
		r.With(middleware.Require(s.logger, permission.AccessProjects)).Get("/ws", s.wsHub.HandleWS)
	}

	// Read-only views available to every recognized role.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Require(s.logger, permission.View))
		r.Post("/calc/sharing", s.CalculateSharing)
		r.Post("/calc/sharing/legacy", s.CalculateSharingLegacy)
		r.Post("/calc/net-position", s.CalculateNetPosition)
		r.Post("/calc/validate", s.ValidateFinancials)

		r.Get("/customers", s.ListCustomers)
		r.Get("/agents", s.ListAgents)
		r.Get("/staff", s.ListStaff)
	})

	// Directory management.
	r.With(middleware.Require(s.logger, permission.ManageCustomers)).Post("/customers", s.CreateCustomer)
	r.With(middleware.Require(s.logger, permission.ManageCustomers)).Delete("/customers/{customerID}", s.DeleteCustomer)
	r.With(middleware.Require(s.logger, permission.ManageAgents)).Post("/agents", s.CreateAgent)
	r.With(middleware.Require(s.logger, permission.ManageAgents)).Delete("/agents/{agentID}", s.DeleteAgent)
	r.With(middleware.Require(s.logger, permission.ManageStaff)).Post("/staff", s.CreateStaff)
	r.With(middleware.Require(s.logger, permission.ManageStaff)).Delete("/staff/{staffID}", s.DeleteStaff)

	r.Route("/trips", func(r chi.Router) {
		r.Use(middleware.Require(s.logger, permission.AccessProjects))

		r.Get("/", s.ListTrips)
		r.Get("/{tripID}", s.GetTrip)
		r.Get("/{tripID}/sharing", s.GetTripSharing)
		r.Get("/{tripID}/customers", s.ListTripCustomers)
		r.Get("/{tripID}/customers/{customerID}/position", s.GetCustomerPosition)
		r.Get("/{tripID}/expenses", s.ListExpenses)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Require(s.logger, permission.Edit))
			r.Post("/", s.CreateTrip)
			r.Delete("/{tripID}", s.DeleteTrip)
			r.Put("/{tripID}/status", s.UpdateTripStatus)
			r.Put("/{tripID}/agents/{agentID}", s.SetTripAgent)
			r.Delete("/{tripID}/agents/{agentID}", s.RemoveTripAgent)
			r.Put("/{tripID}/customers/{customerID}", s.UpsertTripCustomer)
			r.Post("/{tripID}/expenses", s.AddExpense)
		})
	})

	r.With(middleware.Require(s.logger, permission.AccessDashboard)).Get("/dashboard", s.GetDashboard)
	r.With(middleware.Require(s.logger, permission.AccessData)).Get("/data/export", s.ExportTrips)

	return r
}

// --- Sharing recomputation ---

// summarize recomputes a trip's sharing and validation from stored totals.
// The returned trip carries freshly calculated agent shares.
func (s *Service) summarize(ctx context.Context, trip *model.Trip, source string) (model.TripSummary, error) {
	totals, err := s.store.GetTripTotals(ctx, trip.ID)
	if err != nil {
		return model.TripSummary{}, err
	}

	sh := sharing.CalculateTripSharing(
		totals.TotalWinLoss, totals.TotalExpenses, totals.TotalRollingCommission,
		trip.Agents,
		totals.TotalBuyIn, totals.TotalBuyOut,
	)
	metrics.SharingCalculations.WithLabelValues(source).Inc()

	validation := sharing.ValidateTripFinancials(
		totals.TotalBuyIn, totals.TotalBuyOut, totals.TotalWinLoss, totals.TotalRolling)
	recordValidation(validation)

	out := *trip
	out.Agents = sh.AgentBreakdown
	return model.TripSummary{
		Trip:       out,
		Totals:     totals,
		Sharing:    sh,
		Validation: validation,
	}, nil
}

// notify recomputes a trip after a change to its inputs and pushes the new
// figures to WebSocket clients. The returned summary lets handlers respond
// without recomputing.
func (s *Service) notify(ctx context.Context, tripID, reason string) (model.TripSummary, error) {
	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		s.logger.Error("reload trip after update", "trip_id", tripID, "err", err)
		return model.TripSummary{}, err
	}
	summary, err := s.summarize(ctx, trip, sourceTrip)
	if err != nil {
		s.logger.Error("recompute trip sharing", "trip_id", tripID, "err", err)
		return model.TripSummary{}, err
	}

	s.logger.Info("trip sharing updated",
		"trip_id", tripID,
		"reason", reason,
		"net_result", summary.Sharing.NetResult.String(),
		"agent_share", summary.Sharing.TotalAgentShare.String(),
		"company_share", summary.Sharing.CompanyShare.String(),
		"valid", summary.Validation.IsValid,
	)

	if s.wsHub != nil {
		valid := summary.Validation.IsValid
		s.wsHub.Broadcast(WSMessage{
			Type:            EventSharingUpdated,
			TripID:          tripID,
			Reason:          reason,
			NetResult:       summary.Sharing.NetResult.String(),
			TotalAgentShare: summary.Sharing.TotalAgentShare.String(),
			CompanyShare:    summary.Sharing.CompanyShare.String(),
			IsValid:         &valid,
		})
	}
	return summary, nil
}

// refreshActiveTrips resets the active-trip gauge from the store.
func (s *Service) refreshActiveTrips(ctx context.Context) {
	trips, err := s.store.ListTrips(ctx)
	if err != nil {
		s.logger.Warn("refresh active trips gauge", "err", err)
		return
	}
	active := 0
	for _, t := range trips {
		if t.Status == model.TripActive {
			active++
		}
	}
	metrics.ActiveTrips.Set(float64(active))
}

func recordValidation(v sharing.FinancialValidationResult) {
	outcome := "valid"
	if !v.IsValid {
		outcome = "invalid"
	}
	metrics.FinancialValidations.WithLabelValues(outcome).Inc()
	metrics.ValidationWarnings.Add(float64(len(v.Warnings)))
}

// --- Response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeStoreError maps store sentinels to HTTP statuses. Anything else is
// logged and reported as an internal error.
func (s *Service) writeStoreError(w http.ResponseWriter, r *http.Request, what string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, what+" not found", http.StatusNotFound)
	case errors.Is(err, store.ErrConflict):
		writeError(w, what+" already exists", http.StatusConflict)
	default:
		s.logger.Error("store failure",
			"what", what,
			"method", r.Method,
			"path", r.URL.Path,
			"err", err,
		)
		writeError(w, "internal error", http.StatusInternalServerError)
	}
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
