package sharing

import (
	"slices"
	"testing"
)

// --- CalculateCustomerNetPosition ---

func TestCalculateCustomerNetPosition(t *testing.T) {
	tests := []struct {
		winLoss, buyIn, buyOut, commission float64
		cash, gaming, total                float64
	}{
		{-5000, 10000, 5000, 300, -5000, -5300, -10300},
		{2000, 1000, 3000, 100, 2000, 1900, 3900},
		{0, 0, 0, 0, 0, 0, 0},
		{-1.5, 0.25, 0.75, 0.1, 0.5, -1.6, -1.1},
	}
	for _, tt := range tests {
		p := CalculateCustomerNetPosition(d(tt.winLoss), d(tt.buyIn), d(tt.buyOut), d(tt.commission))
		assertEq(t, "NetCashFlow", p.NetCashFlow, d(tt.cash))
		assertEq(t, "NetGamingResult", p.NetGamingResult, d(tt.gaming))
		assertEq(t, "TotalNetPosition", p.TotalNetPosition, d(tt.total))

		want := d(tt.buyOut).Sub(d(tt.buyIn)).Add(d(tt.winLoss).Sub(d(tt.commission)))
		assertEq(t, "identity", p.TotalNetPosition, want)
	}
}

// --- ValidateTripFinancials ---

func TestValidateTripFinancials_NegativeBuyIn(t *testing.T) {
	res := ValidateTripFinancials(d(-100), d(500), d(1000), d(50))

	if res.IsValid {
		t.Error("expected invalid result for negative buy-in")
	}
	if !slices.Contains(res.Errors, MsgNegativeBuyIn) {
		t.Errorf("expected buy-in error, got %v", res.Errors)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", res.Warnings)
	}
}

func TestValidateTripFinancials_NegativeBuyOut(t *testing.T) {
	res := ValidateTripFinancials(d(100), d(-1), d(1000), d(50))
	if res.IsValid {
		t.Error("expected invalid result for negative buy-out")
	}
	if !slices.Equal(res.Errors, []string{MsgNegativeBuyOut}) {
		t.Errorf("unexpected errors %v", res.Errors)
	}
}

func TestValidateTripFinancials_CleanTrip(t *testing.T) {
	res := ValidateTripFinancials(d(10000), d(6000), d(-4000), d(50000))
	if !res.IsValid {
		t.Errorf("expected valid, got errors %v", res.Errors)
	}
	if res.Warnings == nil || res.Errors == nil {
		t.Error("warnings and errors should be non-nil")
	}
	if len(res.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", res.Warnings)
	}
}

func TestValidateTripFinancials_Warnings(t *testing.T) {
	tests := []struct {
		name                          string
		buyIn, buyOut, winLoss, rolls float64
		want                          string
	}{
		{"negative rolling", 100, 100, 0, -5, MsgNegativeRolling},
		{"disproportionate cash", 0, 5000, 1000, 0, MsgDisproportionateCash},
		{"buy-in without rolling", 1000, 1000, 0, 0, MsgBuyInWithoutRolling},
		{"rolling without buy-in", 0, 0, 0, 250, MsgRollingWithoutBuyIn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateTripFinancials(d(tt.buyIn), d(tt.buyOut), d(tt.winLoss), d(tt.rolls))
			if !res.IsValid {
				t.Errorf("warnings must not invalidate, got errors %v", res.Errors)
			}
			if !slices.Contains(res.Warnings, tt.want) {
				t.Errorf("expected warning %q, got %v", tt.want, res.Warnings)
			}
		})
	}
}

func TestValidateTripFinancials_CashFlowBoundary(t *testing.T) {
	// Exactly 2x win/loss is not disproportionate.
	res := ValidateTripFinancials(d(0), d(2000), d(-1000), d(0))
	if slices.Contains(res.Warnings, MsgDisproportionateCash) {
		t.Errorf("cash flow equal to 2x win/loss should not warn, got %v", res.Warnings)
	}
	res = ValidateTripFinancials(d(0), d(2000.01), d(-1000), d(0))
	if !slices.Contains(res.Warnings, MsgDisproportionateCash) {
		t.Errorf("cash flow above 2x win/loss should warn, got %v", res.Warnings)
	}
}

func TestValidateTripFinancials_ErrorsAndWarningsTogether(t *testing.T) {
	res := ValidateTripFinancials(d(-10), d(-20), d(0), d(-1))
	if res.IsValid {
		t.Error("expected invalid")
	}
	if len(res.Errors) != 2 {
		t.Errorf("expected 2 errors, got %v", res.Errors)
	}
	if !slices.Contains(res.Warnings, MsgNegativeRolling) {
		t.Errorf("expected negative rolling warning, got %v", res.Warnings)
	}
}
