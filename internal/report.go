package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PlayerRow pairs a player with their computed finances.
type PlayerRow struct {
	Player   Player
	Finances Finances
}

// FinancialReport is the yearly academy report. Subscription income covers all
// payments ever received; expenses, salaries and revenue items are limited to Year.
type FinancialReport struct {
	Academy       Academy
	Year          int
	AsOf          time.Time
	Players       []PlayerRow
	Warnings      []PaymentWarning
	Expenses      []Expense
	CoachSalaries []CoachSalary
	RevenueItems  []RevenueItem

	SubscriptionIncome    decimal.Decimal
	RevenueProfit         decimal.Decimal
	TotalIncome           decimal.Decimal
	ExpenseTotal          decimal.Decimal
	SalaryTotal           decimal.Decimal
	TotalExpenses         decimal.Decimal
	NetIncome             decimal.Decimal
	ExpectedSubscriptions decimal.Decimal
}

// ComputePlayerRows computes finances for every player.
func ComputePlayerRows(players []Player, now time.Time) ([]PlayerRow, error) {
	rows := make([]PlayerRow, 0, len(players))
	for _, p := range players {
		fin, err := ComputeFinances(p.Account(), now)
		if err != nil {
			return nil, fmt.Errorf("player %q: %w", p.Name, err)
		}
		rows = append(rows, PlayerRow{Player: p, Finances: fin})
	}
	return rows, nil
}

// BuildFinancialReport aggregates the academy's finances for a calendar year.
func BuildFinancialReport(data AcademyData, year int, now time.Time) (FinancialReport, error) {
	rows, err := ComputePlayerRows(data.Players, now)
	if err != nil {
		return FinancialReport{}, err
	}
	warnings, err := DetectPaymentWarnings(data.Players, now)
	if err != nil {
		return FinancialReport{}, err
	}

	report := FinancialReport{
		Academy:               data.Academy,
		Year:                  year,
		AsOf:                  now,
		Players:               rows,
		Warnings:              warnings,
		SubscriptionIncome:    decimal.Zero,
		RevenueProfit:         decimal.Zero,
		ExpenseTotal:          decimal.Zero,
		SalaryTotal:           decimal.Zero,
		ExpectedSubscriptions: decimal.Zero,
	}

	for _, row := range rows {
		report.SubscriptionIncome = report.SubscriptionIncome.Add(row.Finances.TotalPaid)
		report.ExpectedSubscriptions = report.ExpectedSubscriptions.Add(ExpectedForYear(row.Player, year))
	}

	for _, item := range data.RevenueItems {
		if !inYear(item.Date, year) {
			continue
		}
		report.RevenueItems = append(report.RevenueItems, item)
		report.RevenueProfit = report.RevenueProfit.Add(item.Profit())
	}

	for _, e := range data.Expenses {
		if !inYear(e.Date, year) {
			continue
		}
		report.Expenses = append(report.Expenses, e)
		report.ExpenseTotal = report.ExpenseTotal.Add(e.Amount)
	}

	for _, s := range data.CoachSalaries {
		if !inYear(s.PaymentDate, year) {
			continue
		}
		if s.CoachName == "" {
			s.CoachName = data.CoachName(s.CoachID)
		}
		report.CoachSalaries = append(report.CoachSalaries, s)
		report.SalaryTotal = report.SalaryTotal.Add(s.Amount)
	}

	report.TotalIncome = report.SubscriptionIncome.Add(report.RevenueProfit)
	report.TotalExpenses = report.ExpenseTotal.Add(report.SalaryTotal)
	report.NetIncome = report.TotalIncome.Sub(report.TotalExpenses)

	return report, nil
}

// ExpectedForYear returns the subscription revenue a player should bring in
// during the given year: up to twelve months of a monthly price, or one yearly
// price. Players enrolled after the year contribute nothing.
func ExpectedForYear(p Player, year int) decimal.Decimal {
	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	start := time.Date(p.EnrollmentDate.Year(), p.EnrollmentDate.Month(), p.EnrollmentDate.Day(), 0, 0, 0, 0, time.UTC)
	if start.After(yearEnd) {
		return decimal.Zero
	}

	if p.Plan == PlanYearly {
		return p.Price
	}
	months := min(PeriodsDue(start, yearEnd), 12)
	return p.Price.Mul(decimal.NewFromInt(int64(months)))
}

// FilterPlayers keeps rows whose name, sport or division contains search
// (case-insensitive). An empty search keeps everything.
func FilterPlayers(rows []PlayerRow, search string) []PlayerRow {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return rows
	}
	var result []PlayerRow
	for _, row := range rows {
		p := row.Player
		if strings.Contains(strings.ToLower(p.Name), search) ||
			strings.Contains(strings.ToLower(p.Sport), search) ||
			strings.Contains(strings.ToLower(p.Division), search) {
			result = append(result, row)
		}
	}
	return result
}

// FilterByStatus keeps active, inactive or all players.
func FilterByStatus(rows []PlayerRow, status string) []PlayerRow {
	if status == "" || status == "all" {
		return rows
	}
	var result []PlayerRow
	for _, row := range rows {
		if (status == "active") == row.Player.Active {
			result = append(result, row)
		}
	}
	return result
}

func inYear(t time.Time, year int) bool {
	return t.Year() == year
}
