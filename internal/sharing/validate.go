package sharing

import "github.com/shopspring/decimal"

// Validation messages. Errors make a result invalid; warnings never do.
const (
	MsgNegativeBuyIn        = "Total buy-in cannot be negative"
	MsgNegativeBuyOut       = "Total buy-out cannot be negative"
	MsgNegativeRolling      = "Total rolling is negative"
	MsgDisproportionateCash = "Cash flow is disproportionate to win/loss"
	MsgBuyInWithoutRolling  = "Buy-in recorded with no rolling activity"
	MsgRollingWithoutBuyIn  = "Rolling activity recorded with no buy-in"
)

// FinancialValidationResult reports anomalies in a trip's totals. Warnings
// and Errors are never nil so they encode as empty JSON arrays.
type FinancialValidationResult struct {
	IsValid  bool     `json:"isValid"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
}

// ValidateTripFinancials checks trip totals for obvious inconsistencies.
// It only reports; it never corrects the inputs.
func ValidateTripFinancials(totalBuyIn, totalBuyOut, totalWinLoss, totalRolling decimal.Decimal) FinancialValidationResult {
	res := FinancialValidationResult{
		Warnings: []string{},
		Errors:   []string{},
	}

	if totalBuyIn.IsNegative() {
		res.Errors = append(res.Errors, MsgNegativeBuyIn)
	}
	if totalBuyOut.IsNegative() {
		res.Errors = append(res.Errors, MsgNegativeBuyOut)
	}

	if totalRolling.IsNegative() {
		res.Warnings = append(res.Warnings, MsgNegativeRolling)
	}
	cashFlow := totalBuyOut.Sub(totalBuyIn).Abs()
	if cashFlow.GreaterThan(totalWinLoss.Abs().Mul(decimal.NewFromInt(2))) {
		res.Warnings = append(res.Warnings, MsgDisproportionateCash)
	}
	if totalBuyIn.IsPositive() && totalRolling.IsZero() {
		res.Warnings = append(res.Warnings, MsgBuyInWithoutRolling)
	}
	if totalRolling.IsPositive() && totalBuyIn.IsZero() {
		res.Warnings = append(res.Warnings, MsgRollingWithoutBuyIn)
	}

	res.IsValid = len(res.Errors) == 0
	return res
}
