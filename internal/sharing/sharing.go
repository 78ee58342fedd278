// Package sharing implements the trip profit-sharing calculator: how a
// trip's house result is split between sponsoring agents and the company,
// each customer's net position, and a sanity check over trip totals.
//
// Win/loss is signed from the customer's perspective: negative means the
// customer lost and the house gained. Percentages use the 0 to 100 scale.
//
// All monetary values use shopspring/decimal, never float64.
// Every function is pure; nothing here logs, persists or returns an error.
package sharing

import "github.com/shopspring/decimal"

// DefaultLegacySharePercentage returns the flat agent percentage older
// call sites assumed when they did not pass one.
func DefaultLegacySharePercentage() decimal.Decimal {
	return decimal.NewFromInt(50)
}

var hundred = decimal.NewFromInt(100)

// TripAgent is one agent's participation in a trip. CalculatedShare is
// derived: CalculateTripSharing always overwrites it.
type TripAgent struct {
	AgentID         string          `json:"agentId"`
	AgentName       string          `json:"agentName"`
	SharePercentage decimal.Decimal `json:"sharePercentage"`
	CalculatedShare decimal.Decimal `json:"calculatedShare"`
}

// TripSharing is the fully resolved profit/loss and sharing breakdown for
// one trip. It is always regenerated from inputs, never edited.
type TripSharing struct {
	TotalWinLoss           decimal.Decimal `json:"totalWinLoss"`
	TotalExpenses          decimal.Decimal `json:"totalExpenses"`
	TotalRollingCommission decimal.Decimal `json:"totalRollingCommission"`
	TotalBuyIn             decimal.Decimal `json:"totalBuyIn"`
	TotalBuyOut            decimal.Decimal `json:"totalBuyOut"`
	NetCashFlow            decimal.Decimal `json:"netCashFlow"`
	HouseGrossWin          decimal.Decimal `json:"houseGrossWin"`
	HouseNetWin            decimal.Decimal `json:"houseNetWin"`
	NetResult              decimal.Decimal `json:"netResult"` // house final profit
	TotalAgentShare        decimal.Decimal `json:"totalAgentShare"`
	CompanyShare           decimal.Decimal `json:"companyShare"`
	AgentSharePercentage   decimal.Decimal `json:"agentSharePercentage"`
	CompanySharePercentage decimal.Decimal `json:"companySharePercentage"`
	AgentBreakdown         []TripAgent     `json:"agentBreakdown"`
}

// CalculateTripSharing computes the sharing breakdown for a trip:
//
//	houseGrossWin    = -totalWinLoss
//	houseNetWin      = houseGrossWin - totalRollingCommission
//	houseFinalProfit = houseNetWin - totalExpenses
//	agentShare_i     = houseFinalProfit * pct_i / 100
//	companyShare     = houseFinalProfit * (100 - Σ pct_i) / 100
//
// Agent percentages summing above 100 are accepted and leave the company
// with a negative percentage. The agents slice is not modified; the
// breakdown holds copies in the same order.
func CalculateTripSharing(
	totalWinLoss, totalExpenses, totalRollingCommission decimal.Decimal,
	agents []TripAgent,
	totalBuyIn, totalBuyOut decimal.Decimal,
) TripSharing {
	agentPct := decimal.Zero
	for _, a := range agents {
		agentPct = agentPct.Add(a.SharePercentage)
	}
	companyPct := hundred.Sub(agentPct)

	houseGrossWin := totalWinLoss.Neg()
	houseNetWin := houseGrossWin.Sub(totalRollingCommission)
	houseFinalProfit := houseNetWin.Sub(totalExpenses)

	breakdown := make([]TripAgent, len(agents))
	for i, a := range agents {
		a.CalculatedShare = percentOf(houseFinalProfit, a.SharePercentage)
		breakdown[i] = a
	}

	return TripSharing{
		TotalWinLoss:           totalWinLoss,
		TotalExpenses:          totalExpenses,
		TotalRollingCommission: totalRollingCommission,
		TotalBuyIn:             totalBuyIn,
		TotalBuyOut:            totalBuyOut,
		NetCashFlow:            totalBuyOut.Sub(totalBuyIn),
		HouseGrossWin:          houseGrossWin,
		HouseNetWin:            houseNetWin,
		NetResult:              houseFinalProfit,
		TotalAgentShare:        percentOf(houseFinalProfit, agentPct),
		CompanyShare:           percentOf(houseFinalProfit, companyPct),
		AgentSharePercentage:   agentPct,
		CompanySharePercentage: companyPct,
		AgentBreakdown:         breakdown,
	}
}

// CalculateTripSharingLegacy supports call sites written for single-agent
// trips. It builds one anonymous agent holding agentSharePercentage and
// delegates to CalculateTripSharing with zero buy-in and buy-out.
func CalculateTripSharingLegacy(
	totalWinLoss, totalExpenses, totalRollingCommission, agentSharePercentage decimal.Decimal,
) TripSharing {
	agents := []TripAgent{{SharePercentage: agentSharePercentage}}
	return CalculateTripSharing(totalWinLoss, totalExpenses, totalRollingCommission,
		agents, decimal.Zero, decimal.Zero)
}

// percentOf returns amount * pct / 100.
func percentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}
