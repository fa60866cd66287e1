package internal

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Workbook sheet names read by ParseWorkbook
const (
	SheetAcademy  = "Academy"
	SheetPlayers  = "Players"
	SheetPayments = "Payments"
	SheetExpenses = "Expenses"
)

// ParseWorkbook reads an academy workbook:
//   - Players: Name, Enrollment Date, Plan, Price, and optionally ID, Phone,
//     Age, Sport, Division, Active, Auto Renew
//   - Payments: Player (ID or name), Date, Amount, Note. Negative amounts are discounts.
//   - Expenses (optional): Description, Amount, Date
//   - Academy (optional): key/value rows Name and Currency
//
// Header rows are located by column name, so extra columns and leading
// title rows are ignored.
func ParseWorkbook(path string) (*AcademyData, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	data := &AcademyData{Academy: Academy{ID: uuid.NewString()}}

	if rows, err := f.GetRows(SheetAcademy); err == nil {
		for _, row := range rows {
			if len(row) < 2 {
				continue
			}
			switch strings.ToLower(strings.TrimSpace(row[0])) {
			case "name":
				data.Academy.Name = strings.TrimSpace(row[1])
			case "currency":
				data.Academy.Currency = strings.ToUpper(strings.TrimSpace(row[1]))
			}
		}
	}

	players, err := readSheet(f, SheetPlayers, "name", "enrollment date", "plan", "price")
	if err != nil {
		return nil, err
	}
	for _, r := range players {
		p, err := workbookPlayer(r)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", SheetPlayers, r.line, err)
		}
		data.Players = append(data.Players, p)
	}

	payments, err := readSheet(f, SheetPayments, "player", "date", "amount")
	if err != nil {
		return nil, err
	}
	for i, r := range payments {
		idx := findPlayerIndex(data.Players, r.get("player"))
		if idx < 0 {
			return nil, fmt.Errorf("%s row %d: player %q: %w", SheetPayments, r.line, r.get("player"), ErrNotFound)
		}
		date, err := parseCellDate(r.get("date"))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", SheetPayments, r.line, err)
		}
		amount, err := parseCellAmount(r.get("amount"))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", SheetPayments, r.line, err)
		}
		e := LedgerEntry{ID: int64(i + 1), Amount: amount, Date: date, Note: r.get("note")}
		if err := ValidateEntry(e); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", SheetPayments, r.line, err)
		}
		data.Players[idx].Entries = append(data.Players[idx].Entries, e)
	}

	if sheetExists(f, SheetExpenses) {
		expenses, err := readSheet(f, SheetExpenses, "description", "amount", "date")
		if err != nil {
			return nil, err
		}
		for i, r := range expenses {
			date, err := parseCellDate(r.get("date"))
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", SheetExpenses, r.line, err)
			}
			amount, err := parseCellAmount(r.get("amount"))
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", SheetExpenses, r.line, err)
			}
			if amount.IsZero() {
				return nil, fmt.Errorf("%s row %d: %w", SheetExpenses, r.line, ErrZeroAmount)
			}
			data.Expenses = append(data.Expenses, Expense{
				ID: int64(i + 1), Description: r.get("description"), Amount: amount, Date: date,
			})
		}
	}

	return data, nil
}

type sheetRow struct {
	line  int // 1-based row number in the sheet
	cells map[string]string
}

func (r sheetRow) get(col string) string {
	return r.cells[col]
}

func sheetExists(f *excelize.File, name string) bool {
	idx, err := f.GetSheetIndex(name)
	return err == nil && idx >= 0
}

// readSheet finds the header row containing all required columns and returns
// the non-empty rows below it keyed by lower-cased header.
func readSheet(f *excelize.File, sheet string, required ...string) ([]sheetRow, error) {
	if !sheetExists(f, sheet) {
		return nil, fmt.Errorf("missing sheet %q", sheet)
	}
	// Raw values: date cells arrive as serial numbers, not their display text.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}

	headerRow := -1
	var header []string
	for i, row := range rows {
		cols := make([]string, len(row))
		found := map[string]bool{}
		for j, cell := range row {
			cols[j] = strings.ToLower(strings.TrimSpace(cell))
			found[cols[j]] = true
		}
		all := true
		for _, req := range required {
			if !found[req] {
				all = false
				break
			}
		}
		if all {
			headerRow, header = i, cols
			break
		}
	}
	if headerRow < 0 {
		return nil, fmt.Errorf("sheet %s: could not find required columns %v", sheet, required)
	}

	var result []sheetRow
	for i := headerRow + 1; i < len(rows); i++ {
		r := sheetRow{line: i + 1, cells: map[string]string{}}
		empty := true
		for j, cell := range rows[i] {
			if j >= len(header) || header[j] == "" {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell != "" {
				empty = false
			}
			r.cells[header[j]] = cell
		}
		if !empty {
			result = append(result, r)
		}
	}
	return result, nil
}

func workbookPlayer(r sheetRow) (Player, error) {
	name := r.get("name")
	if name == "" {
		return Player{}, fmt.Errorf("missing name")
	}
	enrolled, err := parseCellDate(r.get("enrollment date"))
	if err != nil {
		return Player{}, fmt.Errorf("enrollment date: %w", err)
	}
	plan, err := ParsePlanKind(r.get("plan"))
	if err != nil {
		return Player{}, err
	}
	price, err := parseCellAmount(r.get("price"))
	if err != nil {
		return Player{}, fmt.Errorf("price: %w", err)
	}
	if !price.IsPositive() {
		return Player{}, fmt.Errorf("%w: got %s", ErrInvalidPrice, price)
	}

	p := Player{
		ID:             r.get("id"),
		Name:           name,
		Phone:          r.get("phone"),
		Sport:          r.get("sport"),
		Division:       r.get("division"),
		EnrollmentDate: enrolled,
		Plan:           plan,
		Price:          price,
		Active:         parseCellBool(r.get("active"), true),
		AutoRenew:      parseCellBool(r.get("auto renew"), false),
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if age := r.get("age"); age != "" {
		n, err := strconv.Atoi(age)
		if err != nil {
			return Player{}, fmt.Errorf("age %q: %w", age, err)
		}
		p.Age = n
	}
	return p, nil
}

func findPlayerIndex(players []Player, idOrName string) int {
	for i, p := range players {
		if p.ID == idOrName {
			return i
		}
	}
	for i, p := range players {
		if strings.EqualFold(p.Name, idOrName) {
			return i
		}
	}
	return -1
}

// parseCellDate accepts YYYY-MM-DD text or an Excel serial date number.
func parseCellDate(s string) (time.Time, error) {
	if t, err := ParseDate(s); err == nil {
		return t, nil
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q (want YYYY-MM-DD)", ErrInvalidDate, s)
}

// parseCellAmount accepts "1234.50", "1,234.50" and "1234,50".
func parseCellAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		s = strings.ReplaceAll(s, ",", "")
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

func parseCellBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1", "x":
		return true
	case "no", "n", "false", "0":
		return false
	}
	return def
}
