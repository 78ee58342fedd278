package sharing

import "github.com/shopspring/decimal"

// CustomerNetPosition is a customer's derived standing for a trip.
type CustomerNetPosition struct {
	NetCashFlow      decimal.Decimal `json:"netCashFlow"`      // buyOut - buyIn
	NetGamingResult  decimal.Decimal `json:"netGamingResult"`  // winLoss - rollingCommission
	TotalNetPosition decimal.Decimal `json:"totalNetPosition"` // sum of the two
}

// CalculateCustomerNetPosition combines a customer's cash flow and gaming
// result. No validation is applied.
func CalculateCustomerNetPosition(winLoss, buyIn, buyOut, rollingCommission decimal.Decimal) CustomerNetPosition {
	cash := buyOut.Sub(buyIn)
	gaming := winLoss.Sub(rollingCommission)
	return CustomerNetPosition{
		NetCashFlow:      cash,
		NetGamingResult:  gaming,
		TotalNetPosition: cash.Add(gaming),
	}
}
