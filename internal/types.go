package internal

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used by every data source and flag.
const DateLayout = "2006-01-02"

// PlanKind is a subscription billing period.
type PlanKind string

const (
	PlanMonthly PlanKind = "monthly"
	PlanYearly  PlanKind = "yearly"
)

// ParsePlanKind parses a subscription plan name (case-insensitive).
func ParsePlanKind(s string) (PlanKind, error) {
	switch PlanKind(strings.ToLower(strings.TrimSpace(s))) {
	case PlanMonthly:
		return PlanMonthly, nil
	case PlanYearly:
		return PlanYearly, nil
	}
	return "", unknownPlan(s)
}

// LedgerEntry is a signed money movement on a player's account.
// Positive amounts are payments, negative amounts are discounts.
type LedgerEntry struct {
	ID     int64
	Amount decimal.Decimal
	Date   time.Time
	Note   string
}

// IsDiscount reports whether the entry lowers the balance without being a payment.
func (e LedgerEntry) IsDiscount() bool {
	return e.Amount.IsNegative()
}

// SubscriptionAccount is the input of the finance calculation. It is rebuilt
// from a player's attributes on every query and never persisted.
type SubscriptionAccount struct {
	EnrollmentDate time.Time
	Plan           PlanKind
	PeriodPrice    decimal.Decimal
	Transactions   []LedgerEntry
}

// Finances is the result of ComputeFinances. Amounts keep full precision;
// round only when presenting them.
type Finances struct {
	PeriodsDue      int
	PeriodsPaid     int
	PeriodRate      decimal.Decimal
	TotalDue        decimal.Decimal
	TotalPaid       decimal.Decimal
	TotalDiscounted decimal.Decimal
	RemainingDue    decimal.Decimal
}

// Academy is one club in the database.
type Academy struct {
	ID       string
	Name     string
	Currency string
}

// Player is an enrolled athlete with their subscription terms and ledger.
type Player struct {
	ID             string
	Name           string
	Phone          string
	Age            int
	Sport          string
	Division       string
	EnrollmentDate time.Time
	Plan           PlanKind
	Price          decimal.Decimal
	Active         bool
	AutoRenew      bool
	Entries        []LedgerEntry
}

// Account returns the subscription account view of the player.
func (p Player) Account() SubscriptionAccount {
	return SubscriptionAccount{
		EnrollmentDate: p.EnrollmentDate,
		Plan:           p.Plan,
		PeriodPrice:    p.Price,
		Transactions:   p.Entries,
	}
}

// LastPaymentDate returns the date of the most recent positive entry, or the
// zero time if the player never paid.
func (p Player) LastPaymentDate() time.Time {
	var last time.Time
	for _, e := range p.Entries {
		if e.Amount.IsPositive() && e.Date.After(last) {
			last = e.Date
		}
	}
	return last
}

// Expense is money the academy spent.
type Expense struct {
	ID          int64
	Description string
	Amount      decimal.Decimal
	Date        time.Time
}

// Coach is staff paid a monthly salary.
type Coach struct {
	ID             string
	Name           string
	Specialization string
	Phone          string
	Email          string
	Salary         decimal.Decimal
}

// CoachSalary is one salary payment to a coach.
type CoachSalary struct {
	ID          int64
	CoachID     string
	CoachName   string
	Amount      decimal.Decimal
	PaymentDate time.Time
	Notes       string
}

// RevenueItem is an ad-hoc sale (kit, equipment, event tickets).
type RevenueItem struct {
	ID           int64
	Name         string
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
	Date         time.Time
}

// Profit is the selling price less the cost price.
func (r RevenueItem) Profit() decimal.Decimal {
	return r.SellingPrice.Sub(r.CostPrice)
}

// AcademyData is everything a report needs for one academy.
type AcademyData struct {
	Academy       Academy
	Players       []Player
	Expenses      []Expense
	Coaches       []Coach
	CoachSalaries []CoachSalary
	RevenueItems  []RevenueItem
}

// FindPlayer returns the player with the given ID (or exact, case-insensitive name).
func (d *AcademyData) FindPlayer(idOrName string) (Player, bool) {
	for _, p := range d.Players {
		if p.ID == idOrName {
			return p, true
		}
	}
	for _, p := range d.Players {
		if strings.EqualFold(p.Name, idOrName) {
			return p, true
		}
	}
	return Player{}, false
}

// CoachName resolves a coach ID to a display name.
func (d *AcademyData) CoachName(id string) string {
	for _, c := range d.Coaches {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}
