// Package model defines the records the data-access layer stores and the
// HTTP service exchanges. All monetary values use shopspring/decimal.
//
// Derived values (an agent's calculated share, trip sharing) are not part of
// these records; the service recomputes them with package sharing on read.
package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/junketops/junket-engine/internal/sharing"
)

// TripStatus is the lifecycle state of a trip.
type TripStatus string

const (
	TripPlanned   TripStatus = "planned"
	TripActive    TripStatus = "active"
	TripCompleted TripStatus = "completed"
)

// Valid reports whether s is a known status.
func (s TripStatus) Valid() bool {
	switch s {
	case TripPlanned, TripActive, TripCompleted:
		return true
	}
	return false
}

// Customer is a player brought to trips by an agent.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	AgentID   string    `json:"agentId,omitempty"` // sponsoring agent, if any
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Agent is a sponsor who brings customers and takes a share of trip profit.
type Agent struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Staff is an operations employee.
type Staff struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Position  string    `json:"position,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Trip is a bounded junket engagement. Agents carry their agreed share
// percentages; CalculatedShare on them is never persisted.
type Trip struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Destination string              `json:"destination,omitempty"`
	Status      TripStatus          `json:"status"`
	StartDate   *time.Time          `json:"startDate,omitempty"`
	EndDate     *time.Time          `json:"endDate,omitempty"`
	Agents      []sharing.TripAgent `json:"agents"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// TripCustomer is one customer's aggregated activity on a trip.
type TripCustomer struct {
	TripID            string          `json:"tripId"`
	CustomerID        string          `json:"customerId"`
	CustomerName      string          `json:"customerName"`
	BuyIn             decimal.Decimal `json:"buyIn"`
	BuyOut            decimal.Decimal `json:"buyOut"`
	WinLoss           decimal.Decimal `json:"winLoss"` // customer perspective: negative = customer lost
	RollingAmount     decimal.Decimal `json:"rollingAmount"`
	RollingCommission decimal.Decimal `json:"rollingCommission"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// Expense is an operating cost charged against a trip.
type Expense struct {
	ID          string          `json:"id"`
	TripID      string          `json:"tripId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	IncurredAt  time.Time       `json:"incurredAt"`
}

// TripTotals are the summed aggregates that feed the sharing engine.
type TripTotals struct {
	TripID                 string          `json:"tripId"`
	TotalBuyIn             decimal.Decimal `json:"totalBuyIn"`
	TotalBuyOut            decimal.Decimal `json:"totalBuyOut"`
	TotalWinLoss           decimal.Decimal `json:"totalWinLoss"`
	TotalRolling           decimal.Decimal `json:"totalRolling"`
	TotalRollingCommission decimal.Decimal `json:"totalRollingCommission"`
	TotalExpenses          decimal.Decimal `json:"totalExpenses"`
	CustomerCount          int             `json:"customerCount"`
}

// TripSummary is a trip with its recomputed sharing and validation report.
type TripSummary struct {
	Trip       Trip                              `json:"trip"`
	Totals     TripTotals                        `json:"totals"`
	Sharing    sharing.TripSharing               `json:"sharing"`
	Validation sharing.FinancialValidationResult `json:"validation"`
}

// Dashboard aggregates every trip for the reporting view.
type Dashboard struct {
	TripCount              int                `json:"tripCount"`
	TripsByStatus          map[TripStatus]int `json:"tripsByStatus"`
	CustomerCount          int                `json:"customerCount"`
	AgentCount             int                `json:"agentCount"`
	TotalBuyIn             decimal.Decimal    `json:"totalBuyIn"`
	TotalBuyOut            decimal.Decimal    `json:"totalBuyOut"`
	TotalWinLoss           decimal.Decimal    `json:"totalWinLoss"`
	TotalRollingCommission decimal.Decimal    `json:"totalRollingCommission"`
	TotalExpenses          decimal.Decimal    `json:"totalExpenses"`
	HouseFinalProfit       decimal.Decimal    `json:"houseFinalProfit"`
	TotalAgentShare        decimal.Decimal    `json:"totalAgentShare"`
	CompanyShare           decimal.Decimal    `json:"companyShare"`
	InvalidTrips           []string           `json:"invalidTrips"`
}
