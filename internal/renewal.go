package internal

import (
	"time"
)

// Renewal is a payment to record for an auto-renewing player.
type Renewal struct {
	PlayerID   string
	PlayerName string
	Entry      LedgerEntry
}

// DueRenewals returns one renewal payment for every active auto-renew player
// whose last payment (or enrollment, if they never paid) is at least one plan
// period old: one calendar month for monthly plans, twelve for yearly plans.
// The payment is one period price dated now.
func DueRenewals(players []Player, now time.Time) []Renewal {
	var renewals []Renewal
	for _, p := range players {
		if !p.Active || !p.AutoRenew || !p.Price.IsPositive() {
			continue
		}

		ref := p.LastPaymentDate()
		if ref.IsZero() {
			ref = p.EnrollmentDate
		}
		elapsed := monthsBetween(ref, now)

		period := 1
		if p.Plan == PlanYearly {
			period = 12
		}
		if elapsed < period {
			continue
		}

		renewals = append(renewals, Renewal{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Entry: LedgerEntry{
				Amount: p.Price,
				Date:   time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
				Note:   "auto-renewal",
			},
		})
	}
	return renewals
}

// monthsBetween counts calendar-month boundaries crossed from a to b.
func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()-a.Month())
}
