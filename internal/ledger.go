package internal

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var monthsPerYear = decimal.NewFromInt(12)

// ComputeFinances derives a player's subscription finances as of now.
//
// Billing accrues per calendar month for both plans; yearly plans are charged
// at price/12 per month. Payments and discounts both reduce what is owed.
// Over-payment is absorbed: RemainingDue never goes below zero and no credit
// is carried. Entries dated before enrollment are still counted.
func ComputeFinances(account SubscriptionAccount, now time.Time) (Finances, error) {
	if !account.PeriodPrice.IsPositive() {
		return Finances{}, fmt.Errorf("%w: got %s", ErrInvalidPrice, account.PeriodPrice)
	}
	rate, err := PeriodRate(account.Plan, account.PeriodPrice)
	if err != nil {
		return Finances{}, err
	}

	periodsDue := PeriodsDue(account.EnrollmentDate, now)
	totalDue := totalDueFor(account.Plan, account.PeriodPrice, periodsDue)

	entries := SortEntries(account.Transactions)

	totalPaid := decimal.Zero
	totalDiscounted := decimal.Zero
	remaining := totalDue
	for _, e := range entries {
		if e.Amount.IsNegative() {
			totalDiscounted = totalDiscounted.Add(e.Amount.Abs())
		} else {
			totalPaid = totalPaid.Add(e.Amount)
		}
		remaining = remaining.Sub(e.Amount.Abs())
	}

	// totalDue - remaining, before clamping, is exactly paid + discounted.
	credited := totalDue.Sub(remaining)

	return Finances{
		PeriodsDue:      periodsDue,
		PeriodsPaid:     periodsCovered(account.Plan, account.PeriodPrice, credited),
		PeriodRate:      rate,
		TotalDue:        totalDue,
		TotalPaid:       totalPaid,
		TotalDiscounted: totalDiscounted,
		RemainingDue:    decimal.Max(decimal.Zero, remaining),
	}, nil
}

// PeriodsDue returns the number of billing months from enrollment through now,
// counting the current month. A future enrollment owes nothing.
func PeriodsDue(enrollment, now time.Time) int {
	return max(0, monthsBetween(enrollment, now)+1)
}

// PeriodRate returns the monthly-equivalent price of a plan.
func PeriodRate(plan PlanKind, price decimal.Decimal) (decimal.Decimal, error) {
	switch plan {
	case PlanMonthly:
		return price, nil
	case PlanYearly:
		return price.Div(monthsPerYear), nil
	}
	return decimal.Zero, unknownPlan(string(plan))
}

// totalDueFor multiplies before dividing so yearly prices stay exact for whole
// months (1000/yr over 3 months is exactly 250).
func totalDueFor(plan PlanKind, price decimal.Decimal, periods int) decimal.Decimal {
	n := decimal.NewFromInt(int64(periods))
	if plan == PlanYearly {
		return price.Mul(n).Div(monthsPerYear)
	}
	return price.Mul(n)
}

// periodsCovered is floor(credited / periodRate), evaluated without the
// rounded yearly rate.
func periodsCovered(plan PlanKind, price, credited decimal.Decimal) int {
	if !credited.IsPositive() {
		return 0
	}
	if plan == PlanYearly {
		credited = credited.Mul(monthsPerYear)
	}
	q, _ := credited.QuoRem(price, 0)
	return int(q.IntPart())
}

// SortEntries returns a copy of entries ordered by date. Entries on the same
// date keep their input order.
func SortEntries(entries []LedgerEntry) []LedgerEntry {
	sorted := make([]LedgerEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// ValidateEntry rejects entries that must never reach the ledger.
func ValidateEntry(e LedgerEntry) error {
	if e.Amount.IsZero() {
		return ErrZeroAmount
	}
	if e.Date.IsZero() {
		return fmt.Errorf("%w: missing entry date", ErrInvalidDate)
	}
	return nil
}

// ValidateAccount checks the preconditions of ComputeFinances up front, so
// loaders can reject bad rows before any report is built.
func ValidateAccount(account SubscriptionAccount) error {
	if !account.PeriodPrice.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrInvalidPrice, account.PeriodPrice)
	}
	if _, err := PeriodRate(account.Plan, account.PeriodPrice); err != nil {
		return err
	}
	for i, e := range account.Transactions {
		if err := ValidateEntry(e); err != nil {
			return fmt.Errorf("entry %d: %w", i+1, err)
		}
	}
	return nil
}
