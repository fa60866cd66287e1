package internal

import (
	"fmt"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	pdfHeader = props.Text{Style: fontstyle.Bold, Size: 9}
	pdfCell   = props.Text{Size: 8}
	pdfAmount = props.Text{Size: 8, Align: align.Right}
	pdfTotal  = props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
)

// ExportReportPDF renders the financial report: title, players table,
// expenses table and summary.
func ExportReportPDF(report FinancialReport, currency Currency) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()
	m := maroto.New(cfg)

	title := fmt.Sprintf("Financial report %d", report.Year)
	if report.Academy.Name != "" {
		title = report.Academy.Name + " - " + title
	}
	m.AddRow(12, text.NewCol(12, title, props.Text{Size: 18, Style: fontstyle.Bold}))
	// Amounts carry the ISO code: the built-in PDF fonts have no glyphs for
	// symbols such as ₪.
	m.AddRow(8, text.NewCol(12, "As of "+report.AsOf.Format(DateLayout)+", amounts in "+currency.Code, props.Text{Size: 9}))

	addPDFSection(m, "Players")
	m.AddRow(7,
		text.NewCol(3, "Name", pdfHeader),
		text.NewCol(2, "Plan", pdfHeader),
		text.NewCol(1, "Months", pdfHeader),
		text.NewCol(2, "Due", pdfHeader),
		text.NewCol(2, "Paid", pdfHeader),
		text.NewCol(2, "Remaining", pdfHeader),
	)
	for _, row := range report.Players {
		p, fin := row.Player, row.Finances
		m.AddRow(6,
			text.NewCol(3, p.Name, pdfCell),
			text.NewCol(2, string(p.Plan), pdfCell),
			text.NewCol(1, fmt.Sprintf("%d/%d", fin.PeriodsPaid, fin.PeriodsDue), pdfCell),
			text.NewCol(2, currency.Number(fin.TotalDue), pdfAmount),
			text.NewCol(2, currency.Number(fin.TotalPaid), pdfAmount),
			text.NewCol(2, currency.Number(fin.RemainingDue), pdfAmount),
		)
	}

	costs := costRows(report)
	if len(costs) > 0 {
		addPDFSection(m, "Expenses")
		m.AddRow(7,
			text.NewCol(2, "Date", pdfHeader),
			text.NewCol(2, "Kind", pdfHeader),
			text.NewCol(6, "Description", pdfHeader),
			text.NewCol(2, "Amount", pdfHeader),
		)
		for _, c := range costs {
			m.AddRow(6,
				text.NewCol(2, c.date.Format(DateLayout), pdfCell),
				text.NewCol(2, c.kind, pdfCell),
				text.NewCol(6, c.description, pdfCell),
				text.NewCol(2, currency.Number(c.amount), pdfAmount),
			)
		}
	}

	addPDFSection(m, "Summary")
	lines := []struct {
		label string
		value string
		bold  bool
	}{
		{"Subscription income", currency.Number(report.SubscriptionIncome), false},
		{"Revenue profit", currency.Number(report.RevenueProfit), false},
		{"Total income", currency.Number(report.TotalIncome), true},
		{"Expenses", currency.Number(report.ExpenseTotal), false},
		{"Coach salaries", currency.Number(report.SalaryTotal), false},
		{"Total expenses", currency.Number(report.TotalExpenses), true},
		{"Net income", currency.Number(report.NetIncome), true},
		{"Expected subscriptions " + strconv.Itoa(report.Year), currency.Number(report.ExpectedSubscriptions), false},
	}
	for _, l := range lines {
		style := pdfAmount
		if l.bold {
			style = pdfTotal
		}
		m.AddRow(6,
			col.New(4),
			text.NewCol(5, l.label, pdfCell),
			text.NewCol(3, l.value+" "+currency.Code, style),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generating PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addPDFSection(m core.Maroto, title string) {
	m.AddRow(4, col.New(12))
	m.AddRow(9, text.NewCol(12, title, props.Text{Size: 12, Style: fontstyle.Bold, Top: 2}))
}
