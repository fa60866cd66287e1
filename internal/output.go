package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"
)

// OutputOptions controls how players are displayed
type OutputOptions struct {
	Search    string
	Status    string
	SortField string
	SortDir   string
	Currency  Currency
}

// JSONPlayersOutput is the root JSON object of the players view
type JSONPlayersOutput struct {
	Players []JSONPlayer `json:"players"`
	Summary JSONSummary  `json:"summary"`
}

// JSONSummary contains aggregate statistics
type JSONSummary struct {
	Count        int     `json:"count"`
	TotalDue     float64 `json:"total_due"`
	TotalPaid    float64 `json:"total_paid"`
	RemainingDue float64 `json:"remaining_due"`
	Currency     string  `json:"currency"`
}

// JSONPlayer is the JSON output format for a player and their finances
type JSONPlayer struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Note            string      `json:"note,omitempty"`
	Sport           string      `json:"sport,omitempty"`
	Division        string      `json:"division,omitempty"`
	Active          bool        `json:"active"`
	Plan            string      `json:"plan"`
	Price           float64     `json:"price"`
	EnrollmentDate  string      `json:"enrollment_date"`
	PeriodsDue      int         `json:"periods_due"`
	PeriodsPaid     int         `json:"periods_paid"`
	PeriodRate      float64     `json:"period_rate"`
	TotalDue        float64     `json:"total_due"`
	TotalPaid       float64     `json:"total_paid"`
	TotalDiscounted float64     `json:"total_discounted"`
	RemainingDue    float64     `json:"remaining_due"`
	Entries         []JSONEntry `json:"entries,omitempty"`
}

type JSONEntry struct {
	ID     int64   `json:"id"`
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
	Kind   string  `json:"kind"`
	Note   string  `json:"note,omitempty"`
}

type JSONWarning struct {
	PlayerID      string  `json:"player_id"`
	PlayerName    string  `json:"player_name"`
	UnpaidPeriods int     `json:"unpaid_periods"`
	TotalPaid     float64 `json:"total_paid"`
	RemainingDue  float64 `json:"remaining_due"`
}

// JSONReport is the JSON output format of the yearly financial report
type JSONReport struct {
	Academy               string        `json:"academy"`
	Year                  int           `json:"year"`
	AsOf                  string        `json:"as_of"`
	Currency              string        `json:"currency"`
	SubscriptionIncome    float64       `json:"subscription_income"`
	RevenueProfit         float64       `json:"revenue_profit"`
	TotalIncome           float64       `json:"total_income"`
	ExpenseTotal          float64       `json:"expense_total"`
	SalaryTotal           float64       `json:"salary_total"`
	TotalExpenses         float64       `json:"total_expenses"`
	NetIncome             float64       `json:"net_income"`
	ExpectedSubscriptions float64       `json:"expected_subscriptions"`
	Players               []JSONPlayer  `json:"players"`
	Warnings              []JSONWarning `json:"warnings"`
}

// money rounds an exact amount for presentation
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func entryKind(e LedgerEntry) string {
	if e.IsDiscount() {
		return "discount"
	}
	return "payment"
}

func jsonPlayer(row PlayerRow, cfg *Config, withEntries bool) JSONPlayer {
	p, fin := row.Player, row.Finances
	jp := JSONPlayer{
		ID:              p.ID,
		Name:            p.Name,
		Note:            cfg.GetNote(p.Name),
		Sport:           p.Sport,
		Division:        p.Division,
		Active:          p.Active,
		Plan:            string(p.Plan),
		Price:           money(p.Price),
		EnrollmentDate:  p.EnrollmentDate.Format(DateLayout),
		PeriodsDue:      fin.PeriodsDue,
		PeriodsPaid:     fin.PeriodsPaid,
		PeriodRate:      money(fin.PeriodRate),
		TotalDue:        money(fin.TotalDue),
		TotalPaid:       money(fin.TotalPaid),
		TotalDiscounted: money(fin.TotalDiscounted),
		RemainingDue:    money(fin.RemainingDue),
	}
	if withEntries {
		for _, e := range SortEntries(p.Entries) {
			jp.Entries = append(jp.Entries, JSONEntry{
				ID: e.ID, Date: e.Date.Format(DateLayout), Amount: money(e.Amount), Kind: entryKind(e), Note: e.Note,
			})
		}
	}
	return jp
}

func jsonWarnings(warnings []PaymentWarning) []JSONWarning {
	result := make([]JSONWarning, 0, len(warnings))
	for _, w := range warnings {
		result = append(result, JSONWarning{
			PlayerID:      w.PlayerID,
			PlayerName:    w.PlayerName,
			UnpaidPeriods: w.UnpaidPeriods,
			TotalPaid:     money(w.TotalPaid),
			RemainingDue:  money(w.RemainingDue),
		})
	}
	return result
}

type totals struct {
	due, paid, remaining decimal.Decimal
}

func sumRows(rows []PlayerRow) totals {
	t := totals{decimal.Zero, decimal.Zero, decimal.Zero}
	for _, row := range rows {
		t.due = t.due.Add(row.Finances.TotalDue)
		t.paid = t.paid.Add(row.Finances.TotalPaid)
		t.remaining = t.remaining.Add(row.Finances.RemainingDue)
	}
	return t
}

// PrintPlayersJSON outputs players and their finances in JSON format
func PrintPlayersJSON(w io.Writer, rows []PlayerRow, cfg *Config, currency Currency) error {
	players := make([]JSONPlayer, 0, len(rows))
	for _, row := range rows {
		players = append(players, jsonPlayer(row, cfg, false))
	}
	sum := sumRows(rows)
	return writeJSON(w, JSONPlayersOutput{
		Players: players,
		Summary: JSONSummary{
			Count:        len(rows),
			TotalDue:     money(sum.due),
			TotalPaid:    money(sum.paid),
			RemainingDue: money(sum.remaining),
			Currency:     currency.Code,
		},
	})
}

// SortPlayerRows sorts rows in place by name, remaining, paid or enrolled.
// Ties keep their input order in both directions.
func SortPlayerRows(rows []PlayerRow, field, dir string) {
	less := func(a, b PlayerRow) bool {
		switch field {
		case "remaining":
			return a.Finances.RemainingDue.LessThan(b.Finances.RemainingDue)
		case "paid":
			return a.Finances.TotalPaid.LessThan(b.Finances.TotalPaid)
		case "enrolled":
			return a.Player.EnrollmentDate.Before(b.Player.EnrollmentDate)
		default: // "name"
			return strings.ToLower(a.Player.Name) < strings.ToLower(b.Player.Name)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if dir == "desc" {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
}

func statusCell(row PlayerRow) string {
	switch {
	case !row.Player.Active:
		return text.FgHiBlack.Sprint("INACTIVE")
	case row.Finances.RemainingDue.IsPositive():
		return text.FgRed.Sprint("OWES")
	default:
		return text.FgGreen.Sprint("PAID")
	}
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	return t
}

func rightAlign(cols ...int) []table.ColumnConfig {
	configs := make([]table.ColumnConfig, 0, len(cols))
	for _, c := range cols {
		configs = append(configs, table.ColumnConfig{Number: c, Align: text.AlignRight})
	}
	return configs
}

// PrintPlayersTable outputs players and their finances as a formatted table
func PrintPlayersTable(w io.Writer, allRows []PlayerRow, displayRows []PlayerRow, opts OutputOptions, cfg *Config) {
	activeCount := 0
	for _, row := range allRows {
		if row.Player.Active {
			activeCount++
		}
	}

	fmt.Fprintf(w, "Found %d players (%d active, %d inactive)\n",
		len(allRows), activeCount, len(allRows)-activeCount)
	showing := opts.Status
	if showing == "" {
		showing = "all"
	}
	if opts.Search != "" {
		showing += fmt.Sprintf(", search: %q", opts.Search)
	}
	fmt.Fprintf(w, "Showing: %s\n\n", showing)

	SortPlayerRows(displayRows, opts.SortField, opts.SortDir)

	hasNotes := false
	for _, row := range displayRows {
		if cfg.GetNote(row.Player.Name) != "" {
			hasNotes = true
			break
		}
	}

	t := newTable(w)
	header := table.Row{"Name"}
	if hasNotes {
		header = append(header, "Note")
	}
	header = append(header, "Sport", "Plan", "Enrolled", "Months", "Paid For", "Due", "Paid", "Remaining", "Status")
	t.AppendHeader(header)

	for _, row := range displayRows {
		p, fin := row.Player, row.Finances
		r := table.Row{p.Name}
		if hasNotes {
			r = append(r, cfg.GetNote(p.Name))
		}
		remaining := opts.Currency.Format(fin.RemainingDue)
		if fin.RemainingDue.IsPositive() {
			remaining = text.FgRed.Sprint(remaining)
		}
		r = append(r,
			p.Sport,
			fmt.Sprintf("%s (%s)", p.Plan, opts.Currency.Format(p.Price)),
			p.EnrollmentDate.Format(DateLayout),
			fin.PeriodsDue,
			fin.PeriodsPaid,
			opts.Currency.Format(fin.TotalDue),
			opts.Currency.Format(fin.TotalPaid),
			remaining,
			statusCell(row),
		)
		t.AppendRow(r)
	}

	t.AppendSeparator()

	sum := sumRows(displayRows)
	footer := table.Row{""}
	if hasNotes {
		footer = append(footer, "")
	}
	footer = append(footer, "", "", "", "", text.Bold.Sprint("Total"),
		text.Bold.Sprint(opts.Currency.Format(sum.due)),
		text.Bold.Sprint(opts.Currency.Format(sum.paid)),
		text.Bold.Sprint(opts.Currency.Format(sum.remaining)),
		"")
	t.AppendFooter(footer)

	n := len(header)
	t.SetColumnConfigs(rightAlign(n-5, n-4, n-3, n-2, n-1))
	t.Render()
}

// PrintWarningsJSON outputs payment warnings in JSON format
func PrintWarningsJSON(w io.Writer, warnings []PaymentWarning, currency Currency) error {
	total := decimal.Zero
	for _, pw := range warnings {
		total = total.Add(pw.RemainingDue)
	}
	return writeJSON(w, struct {
		Warnings     []JSONWarning `json:"warnings"`
		Count        int           `json:"count"`
		RemainingDue float64       `json:"remaining_due"`
		Currency     string        `json:"currency"`
	}{jsonWarnings(warnings), len(warnings), money(total), currency.Code})
}

// PrintWarningsTable outputs payment warnings, largest debt first
func PrintWarningsTable(w io.Writer, warnings []PaymentWarning, currency Currency) {
	if len(warnings) == 0 {
		fmt.Fprintln(w, text.FgGreen.Sprint("All players are paid up."))
		return
	}

	sorted := make([]PaymentWarning, len(warnings))
	copy(sorted, warnings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RemainingDue.GreaterThan(sorted[j].RemainingDue)
	})

	fmt.Fprintf(w, "%d players with outstanding payments\n\n", len(sorted))

	t := newTable(w)
	t.AppendHeader(table.Row{"Player", "Unpaid Months", "Paid", "Remaining"})
	total := decimal.Zero
	for _, pw := range sorted {
		total = total.Add(pw.RemainingDue)
		t.AppendRow(table.Row{
			pw.PlayerName,
			pw.UnpaidPeriods,
			currency.Format(pw.TotalPaid),
			text.FgRed.Sprint(currency.Format(pw.RemainingDue)),
		})
	}
	t.AppendSeparator()
	t.AppendFooter(table.Row{"", "", text.Bold.Sprint("Total"), text.Bold.Sprint(currency.Format(total))})
	t.SetColumnConfigs(rightAlign(2, 3, 4))
	t.Render()
}

// PrintPlayerJSON outputs one player with their ledger history
func PrintPlayerJSON(w io.Writer, row PlayerRow, cfg *Config) error {
	return writeJSON(w, jsonPlayer(row, cfg, true))
}

// PrintPlayerDetail outputs one player's profile, finances and ledger history
func PrintPlayerDetail(w io.Writer, row PlayerRow, cfg *Config, currency Currency) {
	p, fin := row.Player, row.Finances

	fmt.Fprintf(w, "%s (%s)\n", text.Bold.Sprint(p.Name), p.ID)
	if note := cfg.GetNote(p.Name); note != "" {
		fmt.Fprintf(w, "Note: %s\n", note)
	}

	profile := newTable(w)
	profile.AppendRows([]table.Row{
		{"Sport", p.Sport},
		{"Division", p.Division},
		{"Age", p.Age},
		{"Phone", p.Phone},
		{"Plan", fmt.Sprintf("%s, %s", p.Plan, currency.Format(p.Price))},
		{"Enrolled", p.EnrollmentDate.Format(DateLayout)},
		{"Status", statusCell(row)},
		{"Auto renew", p.AutoRenew},
	})
	profile.Render()

	fmt.Fprintln(w)
	summary := newTable(w)
	summary.AppendHeader(table.Row{"Months Due", "Months Paid", "Monthly Rate", "Due", "Paid", "Discounted", "Remaining"})
	summary.AppendRow(table.Row{
		fin.PeriodsDue,
		fin.PeriodsPaid,
		currency.Format(fin.PeriodRate),
		currency.Format(fin.TotalDue),
		currency.Format(fin.TotalPaid),
		currency.Format(fin.TotalDiscounted),
		currency.Format(fin.RemainingDue),
	})
	summary.SetColumnConfigs(rightAlign(3, 4, 5, 6, 7))
	summary.Render()

	fmt.Fprintln(w)
	if len(p.Entries) == 0 {
		fmt.Fprintln(w, text.FgHiBlack.Sprint("No payments recorded."))
		return
	}
	history := newTable(w)
	history.AppendHeader(table.Row{"#", "Date", "Type", "Amount", "Note"})
	for _, e := range SortEntries(p.Entries) {
		kind := text.FgGreen.Sprint("payment")
		if e.IsDiscount() {
			kind = text.FgYellow.Sprint("discount")
		}
		history.AppendRow(table.Row{e.ID, e.Date.Format(DateLayout), kind, currency.Format(e.Amount.Abs()), e.Note})
	}
	history.SetColumnConfigs(rightAlign(4))
	history.Render()
}

// PrintReportJSON outputs the financial report in JSON format
func PrintReportJSON(w io.Writer, report FinancialReport, cfg *Config, currency Currency) error {
	players := make([]JSONPlayer, 0, len(report.Players))
	for _, row := range report.Players {
		players = append(players, jsonPlayer(row, cfg, false))
	}
	return writeJSON(w, JSONReport{
		Academy:               report.Academy.Name,
		Year:                  report.Year,
		AsOf:                  report.AsOf.Format(DateLayout),
		Currency:              currency.Code,
		SubscriptionIncome:    money(report.SubscriptionIncome),
		RevenueProfit:         money(report.RevenueProfit),
		TotalIncome:           money(report.TotalIncome),
		ExpenseTotal:          money(report.ExpenseTotal),
		SalaryTotal:           money(report.SalaryTotal),
		TotalExpenses:         money(report.TotalExpenses),
		NetIncome:             money(report.NetIncome),
		ExpectedSubscriptions: money(report.ExpectedSubscriptions),
		Players:               players,
		Warnings:              jsonWarnings(report.Warnings),
	})
}

// PrintReport outputs the financial report as tables
func PrintReport(w io.Writer, report FinancialReport, currency Currency) {
	title := fmt.Sprintf("Financial report %d", report.Year)
	if report.Academy.Name != "" {
		title = report.Academy.Name + " - " + title
	}
	fmt.Fprintf(w, "%s (as of %s)\n\n", text.Bold.Sprint(title), report.AsOf.Format(DateLayout))

	summary := newTable(w)
	summary.AppendRows([]table.Row{
		{"Subscription income", currency.Format(report.SubscriptionIncome)},
		{"Revenue profit", currency.Format(report.RevenueProfit)},
		{text.Bold.Sprint("Total income"), text.Bold.Sprint(currency.Format(report.TotalIncome))},
	})
	summary.AppendSeparator()
	summary.AppendRows([]table.Row{
		{"Expenses", currency.Format(report.ExpenseTotal)},
		{"Coach salaries", currency.Format(report.SalaryTotal)},
		{text.Bold.Sprint("Total expenses"), text.Bold.Sprint(currency.Format(report.TotalExpenses))},
	})
	summary.AppendSeparator()
	net := currency.Format(report.NetIncome)
	if report.NetIncome.IsNegative() {
		net = text.FgRed.Sprint(net)
	} else {
		net = text.FgGreen.Sprint(net)
	}
	summary.AppendRow(table.Row{text.Bold.Sprint("Net income"), net})
	summary.AppendRow(table.Row{fmt.Sprintf("Expected subscriptions %d", report.Year), currency.Format(report.ExpectedSubscriptions)})
	summary.SetColumnConfigs(rightAlign(2))
	summary.Render()

	if len(report.Expenses) > 0 || len(report.CoachSalaries) > 0 {
		fmt.Fprintln(w)
		costs := newTable(w)
		costs.AppendHeader(table.Row{"Date", "Kind", "Description", "Amount"})
		for _, row := range costRows(report) {
			costs.AppendRow(table.Row{row.date.Format(DateLayout), row.kind, row.description, currency.Format(row.amount)})
		}
		costs.SetColumnConfigs(rightAlign(4))
		costs.Render()
	}

	if len(report.RevenueItems) > 0 {
		fmt.Fprintln(w)
		revenue := newTable(w)
		revenue.AppendHeader(table.Row{"Date", "Item", "Cost", "Selling", "Profit"})
		for _, item := range report.RevenueItems {
			revenue.AppendRow(table.Row{
				item.Date.Format(DateLayout), item.Name,
				currency.Format(item.CostPrice), currency.Format(item.SellingPrice), currency.Format(item.Profit()),
			})
		}
		revenue.SetColumnConfigs(rightAlign(3, 4, 5))
		revenue.Render()
	}

	fmt.Fprintln(w)
	PrintWarningsTable(w, report.Warnings, currency)
}

type costRow struct {
	date        time.Time
	kind        string
	description string
	amount      decimal.Decimal
}

// costRows merges expenses and coach salaries, ordered by date
func costRows(report FinancialReport) []costRow {
	var rows []costRow
	for _, e := range report.Expenses {
		rows = append(rows, costRow{e.Date, "expense", e.Description, e.Amount})
	}
	for _, s := range report.CoachSalaries {
		desc := s.CoachName
		if s.Notes != "" {
			desc += " (" + s.Notes + ")"
		}
		rows = append(rows, costRow{s.PaymentDate, "salary", desc, s.Amount})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].date.Before(rows[j].date)
	})
	return rows
}

// PrintRenewals lists renewal payments, recorded or pending
func PrintRenewals(w io.Writer, renewals []Renewal, currency Currency, recorded bool) {
	if len(renewals) == 0 {
		fmt.Fprintln(w, "No renewals due.")
		return
	}
	verb := "due"
	if recorded {
		verb = "recorded"
	}
	fmt.Fprintf(w, "%d renewals %s\n\n", len(renewals), verb)

	t := newTable(w)
	t.AppendHeader(table.Row{"Player", "Date", "Amount"})
	for _, r := range renewals {
		t.AppendRow(table.Row{r.PlayerName, r.Entry.Date.Format(DateLayout), currency.Format(r.Entry.Amount)})
	}
	t.SetColumnConfigs(rightAlign(3))
	t.Render()
}

// JSONAttendance is one player's line of the monthly attendance view
type JSONAttendance struct {
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Present    int     `json:"present"`
	Total      int     `json:"total"`
	Rate       float64 `json:"rate"`
}

// PrintAttendanceJSON outputs a division's monthly attendance in JSON format
func PrintAttendanceJSON(w io.Writer, division string, month time.Time, sessions int, summaries []AttendanceSummary) error {
	players := make([]JSONAttendance, 0, len(summaries))
	for _, s := range summaries {
		players = append(players, JSONAttendance{
			PlayerID:   s.PlayerID,
			PlayerName: s.PlayerName,
			Present:    s.Present,
			Total:      s.Total,
			Rate:       s.Rate(),
		})
	}
	return writeJSON(w, struct {
		Division string           `json:"division"`
		Month    string           `json:"month"`
		Sessions int              `json:"sessions"`
		Players  []JSONAttendance `json:"players"`
	}{division, month.Format("2006-01"), sessions, players})
}

// PrintAttendanceTable outputs a division's monthly attendance
func PrintAttendanceTable(w io.Writer, division string, month time.Time, sessions int, summaries []AttendanceSummary) {
	fmt.Fprintf(w, "Attendance %s, %s (%d sessions)\n\n", division, month.Format("January 2006"), sessions)
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No players in this division.")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Player", "Present", "Sessions", "Rate"})
	for _, s := range summaries {
		rate := "-"
		if s.Total > 0 {
			rate = fmt.Sprintf("%.0f%%", s.Rate()*100)
		}
		t.AppendRow(table.Row{s.PlayerName, s.Present, s.Total, rate})
	}
	t.SetColumnConfigs(rightAlign(2, 3, 4))
	t.Render()
}
