package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testReport(t *testing.T) FinancialReport {
	t.Helper()
	report, err := BuildFinancialReport(testAcademy(), 2023, date("2023-03-15"))
	require.NoError(t, err)
	return report
}

func TestExportReportXLSX(t *testing.T) {
	resetDetectedLocale()
	var buf bytes.Buffer
	require.NoError(t, ExportReportXLSX(&buf, testReport(t), GetCurrency("ILS")))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ExportSheetPlayers, ExportSheetExpenses, ExportSheetSummary}, f.GetSheetList())

	players, err := f.GetRows(ExportSheetPlayers)
	require.NoError(t, err)
	require.Len(t, players, 4, "header plus three players")
	assert.Equal(t, "Name", players[0][0])
	assert.Equal(t, "Omar", players[1][0])
	assert.Equal(t, "owes", players[1][13])
	assert.Equal(t, "paid", players[2][13])
	assert.Equal(t, "inactive", players[3][13])

	remaining, err := f.GetCellValue(ExportSheetPlayers, "M4", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "1300", remaining)

	costs, err := f.GetRows(ExportSheetExpenses)
	require.NoError(t, err)
	require.Len(t, costs, 3, "header, one salary and one expense")
	assert.Equal(t, "salary", costs[1][1], "January salary sorts before the February expense")
	assert.Equal(t, "expense", costs[2][1])

	summary, err := f.GetRows(ExportSheetSummary)
	require.NoError(t, err)
	assert.Equal(t, "Amount (ILS)", summary[0][1])
	var net string
	for _, row := range summary {
		if len(row) > 1 && row[0] == "Net income" {
			net = row[1]
		}
	}
	assert.Contains(t, net, "1,250.00")
}

func TestExportPlayerXLSX(t *testing.T) {
	resetDetectedLocale()
	rows := testRows(t)

	var buf bytes.Buffer
	require.NoError(t, ExportPlayerXLSX(&buf, rows[0], GetCurrency("USD")))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Profile", "Ledger"}, f.GetSheetList())

	name, err := f.GetCellValue("Profile", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Omar", name)

	ledger, err := f.GetRows("Ledger")
	require.NoError(t, err)
	require.Len(t, ledger, 3)
	assert.Equal(t, "payment", ledger[1][2])
}

func TestExportReportPDF(t *testing.T) {
	resetDetectedLocale()
	pdf, err := ExportReportPDF(testReport(t), GetCurrency("ILS"))
	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")), "output is a PDF document")
}
