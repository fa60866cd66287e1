package internal

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Sheet names written by ExportReportXLSX
const (
	ExportSheetPlayers  = "Players"
	ExportSheetExpenses = "Expenses"
	ExportSheetSummary  = "Summary"
)

// numFmtMoney is the built-in "#,##0.00" number format.
const numFmtMoney = 4

type workbookStyles struct {
	header int
	money  int
	total  int
}

func newWorkbookStyles(f *excelize.File) (workbookStyles, error) {
	var s workbookStyles
	var err error
	s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#2F5597"}, Pattern: 1},
	})
	if err != nil {
		return s, fmt.Errorf("creating header style: %w", err)
	}
	s.money, err = f.NewStyle(&excelize.Style{NumFmt: numFmtMoney})
	if err != nil {
		return s, fmt.Errorf("creating money style: %w", err)
	}
	s.total, err = f.NewStyle(&excelize.Style{NumFmt: numFmtMoney, Font: &excelize.Font{Bold: true}})
	if err != nil {
		return s, fmt.Errorf("creating total style: %w", err)
	}
	return s, nil
}

// sheetWriter appends rows to one sheet.
type sheetWriter struct {
	f      *excelize.File
	sheet  string
	styles workbookStyles
	row    int
	err    error
}

func (w *sheetWriter) cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// write appends a row; moneyCols are 1-based columns formatted as money.
func (w *sheetWriter) write(style int, values []any, moneyCols ...int) {
	if w.err != nil {
		return
	}
	w.row++
	if err := w.f.SetSheetRow(w.sheet, w.cell(1, w.row), &values); err != nil {
		w.err = fmt.Errorf("writing %s row %d: %w", w.sheet, w.row, err)
		return
	}
	if style != 0 {
		w.err = w.f.SetCellStyle(w.sheet, w.cell(1, w.row), w.cell(len(values), w.row), style)
		return
	}
	for _, c := range moneyCols {
		if err := w.f.SetCellStyle(w.sheet, w.cell(c, w.row), w.cell(c, w.row), w.styles.money); err != nil {
			w.err = err
			return
		}
	}
}

func (w *sheetWriter) header(values ...any) {
	w.write(w.styles.header, values)
}

func (w *sheetWriter) widths(widths ...float64) {
	for i, width := range widths {
		if w.err != nil {
			return
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		w.err = w.f.SetColWidth(w.sheet, col, col, width)
	}
}

func newSheet(f *excelize.File, name string, styles workbookStyles) (*sheetWriter, error) {
	if _, err := f.NewSheet(name); err != nil {
		return nil, fmt.Errorf("creating sheet %s: %w", name, err)
	}
	return &sheetWriter{f: f, sheet: name, styles: styles}, nil
}

func finishWorkbook(f *excelize.File, out io.Writer, first string, sheets ...*sheetWriter) error {
	for _, s := range sheets {
		if s.err != nil {
			return s.err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}
	idx, err := f.GetSheetIndex(first)
	if err != nil {
		return fmt.Errorf("finding sheet %s: %w", first, err)
	}
	f.SetActiveSheet(idx)
	if err := f.Write(out); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func playerStatus(row PlayerRow) string {
	switch {
	case !row.Player.Active:
		return "inactive"
	case row.Finances.RemainingDue.IsPositive():
		return "owes"
	default:
		return "paid"
	}
}

// ExportReportXLSX writes the financial report as a workbook with Players,
// Expenses (expenses and coach salaries) and Summary sheets. Amounts are
// numeric cells rounded to cents.
func ExportReportXLSX(out io.Writer, report FinancialReport, currency Currency) error {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newWorkbookStyles(f)
	if err != nil {
		return err
	}

	players, err := newSheet(f, ExportSheetPlayers, styles)
	if err != nil {
		return err
	}
	players.header("Name", "Age", "Sport", "Division", "Plan", "Price", "Enrolled", "Months Due", "Months Paid", "Due", "Paid", "Discounted", "Remaining", "Status")
	for _, row := range report.Players {
		p, fin := row.Player, row.Finances
		players.write(0, []any{
			p.Name, p.Age, p.Sport, p.Division, string(p.Plan), money(p.Price),
			p.EnrollmentDate.Format(DateLayout), fin.PeriodsDue, fin.PeriodsPaid,
			money(fin.TotalDue), money(fin.TotalPaid), money(fin.TotalDiscounted), money(fin.RemainingDue),
			playerStatus(row),
		}, 6, 10, 11, 12, 13)
	}
	players.widths(24, 6, 14, 12, 10, 12, 12, 11, 12, 12, 12, 12, 12, 10)

	costs, err := newSheet(f, ExportSheetExpenses, styles)
	if err != nil {
		return err
	}
	costs.header("Date", "Kind", "Description", "Amount")
	for _, c := range costRows(report) {
		costs.write(0, []any{c.date.Format(DateLayout), c.kind, c.description, money(c.amount)}, 4)
	}
	costs.widths(12, 10, 40, 14)

	summary, err := newSheet(f, ExportSheetSummary, styles)
	if err != nil {
		return err
	}
	summary.header("Item", fmt.Sprintf("Amount (%s)", currency.Code))
	summary.write(0, []any{"Academy", report.Academy.Name})
	summary.write(0, []any{"Year", report.Year})
	summary.write(0, []any{"As of", report.AsOf.Format(DateLayout)})
	summary.write(0, []any{"Subscription income", money(report.SubscriptionIncome)}, 2)
	summary.write(0, []any{"Revenue profit", money(report.RevenueProfit)}, 2)
	summary.write(styles.total, []any{"Total income", money(report.TotalIncome)})
	summary.write(0, []any{"Expenses", money(report.ExpenseTotal)}, 2)
	summary.write(0, []any{"Coach salaries", money(report.SalaryTotal)}, 2)
	summary.write(styles.total, []any{"Total expenses", money(report.TotalExpenses)})
	summary.write(styles.total, []any{"Net income", money(report.NetIncome)})
	summary.write(0, []any{"Expected subscriptions", money(report.ExpectedSubscriptions)}, 2)
	summary.widths(26, 18)

	return finishWorkbook(f, out, ExportSheetSummary, players, costs, summary)
}

// ExportPlayerXLSX writes one player's profile, finances and ledger history.
func ExportPlayerXLSX(out io.Writer, row PlayerRow, currency Currency) error {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newWorkbookStyles(f)
	if err != nil {
		return err
	}

	p, fin := row.Player, row.Finances
	profile, err := newSheet(f, "Profile", styles)
	if err != nil {
		return err
	}
	profile.header("Field", "Value")
	profile.write(0, []any{"Name", p.Name})
	profile.write(0, []any{"ID", p.ID})
	profile.write(0, []any{"Age", p.Age})
	profile.write(0, []any{"Phone", p.Phone})
	profile.write(0, []any{"Sport", p.Sport})
	profile.write(0, []any{"Division", p.Division})
	profile.write(0, []any{"Plan", string(p.Plan)})
	profile.write(0, []any{"Price", money(p.Price)}, 2)
	profile.write(0, []any{"Enrolled", p.EnrollmentDate.Format(DateLayout)})
	profile.write(0, []any{"Status", playerStatus(row)})
	profile.write(0, []any{"Currency", currency.Code})
	profile.write(0, []any{"Months due", fin.PeriodsDue})
	profile.write(0, []any{"Months paid", fin.PeriodsPaid})
	profile.write(0, []any{"Total due", money(fin.TotalDue)}, 2)
	profile.write(0, []any{"Total paid", money(fin.TotalPaid)}, 2)
	profile.write(0, []any{"Total discounted", money(fin.TotalDiscounted)}, 2)
	profile.write(styles.total, []any{"Remaining", money(fin.RemainingDue)})
	profile.widths(18, 40)

	history, err := newSheet(f, "Ledger", styles)
	if err != nil {
		return err
	}
	history.header("#", "Date", "Type", "Amount", "Note")
	for _, e := range SortEntries(p.Entries) {
		history.write(0, []any{e.ID, e.Date.Format(DateLayout), entryKind(e), money(e.Amount), e.Note}, 4)
	}
	history.widths(6, 12, 10, 12, 40)

	return finishWorkbook(f, out, "Profile", profile, history)
}
