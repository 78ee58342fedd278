package junket

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/junketops/junket-engine/internal/metrics"
	"github.com/junketops/junket-engine/internal/middleware"
	"github.com/junketops/junket-engine/internal/permission"
	"github.com/junketops/junket-engine/internal/sharing"
)

// --- Request/Response types ---

// SharingRequest is the JSON body for POST /calc/sharing. Omitted amounts
// and percentages are zero.
type SharingRequest struct {
	TotalWinLoss           decimal.Decimal     `json:"totalWinLoss"`
	TotalExpenses          decimal.Decimal     `json:"totalExpenses"`
	TotalRollingCommission decimal.Decimal     `json:"totalRollingCommission"`
	Agents                 []sharing.TripAgent `json:"agents"`
	TotalBuyIn             decimal.Decimal     `json:"totalBuyIn"`
	TotalBuyOut            decimal.Decimal     `json:"totalBuyOut"`
}

// LegacySharingRequest is the JSON body for POST /calc/sharing/legacy.
// A missing agentSharePercentage means sharing.DefaultLegacySharePercentage().
type LegacySharingRequest struct {
	TotalWinLoss           decimal.Decimal  `json:"totalWinLoss"`
	TotalExpenses          decimal.Decimal  `json:"totalExpenses"`
	TotalRollingCommission decimal.Decimal  `json:"totalRollingCommission"`
	AgentSharePercentage   *decimal.Decimal `json:"agentSharePercentage"`
}

// NetPositionRequest is the JSON body for POST /calc/net-position.
type NetPositionRequest struct {
	WinLoss           decimal.Decimal `json:"winLoss"`
	BuyIn             decimal.Decimal `json:"buyIn"`
	BuyOut            decimal.Decimal `json:"buyOut"`
	RollingCommission decimal.Decimal `json:"rollingCommission"`
}

// ValidateRequest is the JSON body for POST /calc/validate.
type ValidateRequest struct {
	TotalBuyIn   decimal.Decimal `json:"totalBuyIn"`
	TotalBuyOut  decimal.Decimal `json:"totalBuyOut"`
	TotalWinLoss decimal.Decimal `json:"totalWinLoss"`
	TotalRolling decimal.Decimal `json:"totalRolling"`
}

// PermissionsResponse describes what the caller's role may do.
type PermissionsResponse struct {
	Role string `json:"role"`
	permission.Capabilities
	Message string `json:"message"`
}

// --- HTTP Handlers ---

// GetPermissions handles GET /api/v1/permissions
func (s *Service) GetPermissions(w http.ResponseWriter, r *http.Request) {
	role := middleware.RoleFromContext(r.Context())
	writeJSON(w, http.StatusOK, PermissionsResponse{
		Role:         role.String(),
		Capabilities: role.Capabilities(),
		Message:      role.Message(),
	})
}

// CalculateSharing handles POST /api/v1/calc/sharing
func (s *Service) CalculateSharing(w http.ResponseWriter, r *http.Request) {
	var req SharingRequest
	if err := decode(r, &req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result := sharing.CalculateTripSharing(
		req.TotalWinLoss, req.TotalExpenses, req.TotalRollingCommission,
		req.Agents,
		req.TotalBuyIn, req.TotalBuyOut,
	)
	metrics.SharingCalculations.WithLabelValues(sourceCalculator).Inc()

	writeJSON(w, http.StatusOK, result)
}

// CalculateSharingLegacy handles POST /api/v1/calc/sharing/legacy
func (s *Service) CalculateSharingLegacy(w http.ResponseWriter, r *http.Request) {
	var req LegacySharingRequest
	if err := decode(r, &req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	pct := sharing.DefaultLegacySharePercentage()
	if req.AgentSharePercentage != nil {
		pct = *req.AgentSharePercentage
	}

	result := sharing.CalculateTripSharingLegacy(
		req.TotalWinLoss, req.TotalExpenses, req.TotalRollingCommission, pct)
	metrics.SharingCalculations.WithLabelValues(sourceLegacy).Inc()

	writeJSON(w, http.StatusOK, result)
}

// CalculateNetPosition handles POST /api/v1/calc/net-position
func (s *Service) CalculateNetPosition(w http.ResponseWriter, r *http.Request) {
	var req NetPositionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, sharing.CalculateCustomerNetPosition(
		req.WinLoss, req.BuyIn, req.BuyOut, req.RollingCommission))
}

// ValidateFinancials handles POST /api/v1/calc/validate
func (s *Service) ValidateFinancials(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result := sharing.ValidateTripFinancials(
		req.TotalBuyIn, req.TotalBuyOut, req.TotalWinLoss, req.TotalRolling)
	recordValidation(result)

	writeJSON(w, http.StatusOK, result)
}
