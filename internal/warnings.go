package internal

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentWarning flags a player who still owes money.
type PaymentWarning struct {
	PlayerID      string
	PlayerName    string
	UnpaidPeriods int
	TotalPaid     decimal.Decimal
	RemainingDue  decimal.Decimal
	Finances      Finances
}

// DetectPaymentWarnings returns a warning for every player with a positive
// remaining balance, in input order.
func DetectPaymentWarnings(players []Player, now time.Time) ([]PaymentWarning, error) {
	var warnings []PaymentWarning
	for _, p := range players {
		fin, err := ComputeFinances(p.Account(), now)
		if err != nil {
			return nil, fmt.Errorf("player %q: %w", p.Name, err)
		}
		if !fin.RemainingDue.IsPositive() {
			continue
		}
		warnings = append(warnings, PaymentWarning{
			PlayerID:      p.ID,
			PlayerName:    p.Name,
			UnpaidPeriods: fin.PeriodsDue - fin.PeriodsPaid,
			TotalPaid:     fin.TotalPaid,
			RemainingDue:  fin.RemainingDue,
			Finances:      fin,
		})
	}
	return warnings, nil
}
