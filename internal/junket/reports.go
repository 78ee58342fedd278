package junket

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/junketops/junket-engine/internal/model"
)

// GetDashboard handles GET /api/v1/dashboard
// Aggregates every trip's recomputed sharing.
func (s *Service) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	trips, err := s.store.ListTrips(ctx)
	if err != nil {
		s.writeStoreError(w, r, "trips", err)
		return
	}
	customers, err := s.store.ListCustomers(ctx)
	if err != nil {
		s.writeStoreError(w, r, "customers", err)
		return
	}
	agents, err := s.store.ListAgents(ctx)
	if err != nil {
		s.writeStoreError(w, r, "agents", err)
		return
	}

	dash := model.Dashboard{
		TripsByStatus: map[model.TripStatus]int{
			model.TripPlanned:   0,
			model.TripActive:    0,
			model.TripCompleted: 0,
		},
		CustomerCount: len(customers),
		AgentCount:    len(agents),
		InvalidTrips:  []string{},
	}

	for i := range trips {
		summary, err := s.summarize(ctx, &trips[i], sourceDashboard)
		if err != nil {
			s.writeStoreError(w, r, "trip", err)
			return
		}
		addToDashboard(&dash, summary)
	}

	writeJSON(w, http.StatusOK, dash)
}

func addToDashboard(dash *model.Dashboard, summary model.TripSummary) {
	sh := summary.Sharing
	dash.TripCount++
	dash.TripsByStatus[summary.Trip.Status]++
	dash.TotalBuyIn = dash.TotalBuyIn.Add(sh.TotalBuyIn)
	dash.TotalBuyOut = dash.TotalBuyOut.Add(sh.TotalBuyOut)
	dash.TotalWinLoss = dash.TotalWinLoss.Add(sh.TotalWinLoss)
	dash.TotalRollingCommission = dash.TotalRollingCommission.Add(sh.TotalRollingCommission)
	dash.TotalExpenses = dash.TotalExpenses.Add(sh.TotalExpenses)
	dash.HouseFinalProfit = dash.HouseFinalProfit.Add(sh.NetResult)
	dash.TotalAgentShare = dash.TotalAgentShare.Add(sh.TotalAgentShare)
	dash.CompanyShare = dash.CompanyShare.Add(sh.CompanyShare)
	if !summary.Validation.IsValid {
		dash.InvalidTrips = append(dash.InvalidTrips, summary.Trip.ID)
	}
}

var exportHeader = []string{
	"trip_id", "name", "destination", "status", "customers",
	"total_buy_in", "total_buy_out", "net_cash_flow", "total_win_loss",
	"total_rolling_commission", "total_expenses",
	"house_gross_win", "house_net_win", "house_final_profit",
	"agent_share_pct", "total_agent_share",
	"company_share_pct", "company_share",
	"valid", "warnings",
}

// ExportTrips handles GET /api/v1/data/export
// Streams one CSV row per trip with its recomputed sharing.
func (s *Service) ExportTrips(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	trips, err := s.store.ListTrips(ctx)
	if err != nil {
		s.writeStoreError(w, r, "trips", err)
		return
	}

	// Compute every row before writing so a failure can still produce a
	// JSON error instead of a truncated file.
	rows := make([][]string, 0, len(trips))
	for i := range trips {
		summary, err := s.summarize(ctx, &trips[i], sourceExport)
		if err != nil {
			s.writeStoreError(w, r, "trip", err)
			return
		}
		rows = append(rows, exportRow(summary))
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=trips-%s.csv", s.now().Format("20060102")))

	cw := csv.NewWriter(w)
	cw.Write(exportHeader)
	cw.WriteAll(rows)
	if err := cw.Error(); err != nil {
		s.logger.Error("csv export failed", "err", err)
		return
	}
	s.logger.Info("trips exported", "rows", len(rows))
}

func exportRow(summary model.TripSummary) []string {
	sh := summary.Sharing
	return []string{
		text(summary.Trip.ID),
		text(summary.Trip.Name),
		text(summary.Trip.Destination),
		string(summary.Trip.Status),
		strconv.Itoa(summary.Totals.CustomerCount),
		money(sh.TotalBuyIn),
		money(sh.TotalBuyOut),
		money(sh.NetCashFlow),
		money(sh.TotalWinLoss),
		money(sh.TotalRollingCommission),
		money(sh.TotalExpenses),
		money(sh.HouseGrossWin),
		money(sh.HouseNetWin),
		money(sh.NetResult),
		sh.AgentSharePercentage.String(),
		money(sh.TotalAgentShare),
		sh.CompanySharePercentage.String(),
		money(sh.CompanyShare),
		strconv.FormatBool(summary.Validation.IsValid),
		strconv.Itoa(len(summary.Validation.Warnings)),
	}
}

// money renders a monetary value with two decimal places.
func money(v decimal.Decimal) string {
	return v.StringFixed(2)
}

// text neutralizes free-form values that a spreadsheet would evaluate as a
// formula by prefixing them with a single quote.
func text(v string) string {
	if v != "" && strings.ContainsRune("=+-@\t\r", rune(v[0])) {
		return "'" + v
	}
	return v
}
