package internal

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestIsKnownParser(t *testing.T) {
	RegisterParser("test-format", ParserFunc(func(path string) (*AcademyData, error) {
		return &AcademyData{}, nil
	}))

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"known parser", "test-format", true},
		{"built-in json", "json", true},
		{"built-in xlsx", "xlsx", true},
		{"unknown parser", "unknown-format", false},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsKnownParser(tt.input)
			if got != tt.expected {
				t.Errorf("IsKnownParser(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseFileArg(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		expectedFormat string
		expectedPath   string
	}{
		{"with built-in format prefix", "yaml:academy.txt", "yaml", "academy.txt"},
		{"no prefix", "academy.json", "", "academy.json"},
		{"unknown prefix treated as path", "unknown:data.json", "", "unknown:data.json"},
		{"windows path with drive letter", "C:\\Users\\test\\data.xlsx", "", "C:\\Users\\test\\data.xlsx"},
		{"path with colon but not a parser", "foo:bar:baz.json", "", "foo:bar:baz.json"},
		{"format prefix with absolute path", "json:/home/user/data.json", "json", "/home/user/data.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotFormat, gotPath := ParseFileArg(tt.input)
			if gotFormat != tt.expectedFormat {
				t.Errorf("ParseFileArg(%q) format = %q, want %q", tt.input, gotFormat, tt.expectedFormat)
			}
			if gotPath != tt.expectedPath {
				t.Errorf("ParseFileArg(%q) path = %q, want %q", tt.input, gotPath, tt.expectedPath)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{"academy.json", "json", true},
		{"academy.YML", "yaml", true},
		{"academy.yaml", "yaml", true},
		{"book.xlsx", "xlsx", true},
		{"notes.txt", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := DetectFormat(tt.path)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("DetectFormat(%q) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

const sampleJSON = `{
  "academy": {"id": "acad-1", "name": "Falcons", "currency": "ils"},
  "players": [
    {
      "id": "p1", "name": "Omar", "age": 11, "sport": "Football", "division": "U12",
      "enrollment_date": "2023-01-01", "plan": "monthly", "price": 100,
      "entries": [
        {"date": "2023-01-05", "amount": 100},
        {"date": "2023-02-05", "amount": "-50", "note": "sibling"}
      ]
    },
    {
      "name": "Lina", "enrollment_date": "2023-02-01", "plan": "Yearly", "price": "1200.00",
      "active": false, "auto_renew": true
    }
  ],
  "expenses": [{"description": "Field rent", "amount": 400, "date": "2023-02-01"}],
  "coaches": [{"id": "c1", "name": "Yousef", "salary": 1500}],
  "coach_salaries": [{"coach_id": "c1", "amount": 1500, "payment_date": "2023-01-31"}],
  "revenue_items": [{"name": "Jerseys", "cost_price": 200, "selling_price": 350, "date": "2023-02-10"}]
}`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseJSONDocument(t *testing.T) {
	data, err := LoadSource(writeTemp(t, "academy.json", sampleJSON))
	if err != nil {
		t.Fatalf("LoadSource: %v", err)
	}

	if data.Academy.Name != "Falcons" || data.Academy.Currency != "ILS" {
		t.Errorf("Academy = %+v", data.Academy)
	}
	if len(data.Players) != 2 {
		t.Fatalf("Players = %d, want 2", len(data.Players))
	}

	omar := data.Players[0]
	if omar.Age != 11 || omar.Plan != PlanMonthly || !omar.Active {
		t.Errorf("Omar = %+v", omar)
	}
	if len(omar.Entries) != 2 {
		t.Fatalf("Omar entries = %d, want 2", len(omar.Entries))
	}
	checkDec(t, "discount", omar.Entries[1].Amount, "-50")
	if omar.Entries[1].ID != 2 || omar.Entries[1].Note != "sibling" {
		t.Errorf("entry = %+v", omar.Entries[1])
	}

	lina := data.Players[1]
	if lina.ID == "" {
		t.Error("Lina should get a generated ID")
	}
	if lina.Plan != PlanYearly || lina.Active || !lina.AutoRenew {
		t.Errorf("Lina = %+v", lina)
	}
	checkDec(t, "Lina price", lina.Price, "1200")

	if len(data.CoachSalaries) != 1 || data.CoachSalaries[0].CoachName != "Yousef" {
		t.Errorf("CoachSalaries = %+v", data.CoachSalaries)
	}
	checkDec(t, "revenue profit", data.RevenueItems[0].Profit(), "150")
}

func TestParseYAMLDocument(t *testing.T) {
	yamlDoc := `
academy:
  name: Falcons
players:
  - name: Omar
    enrollment_date: 2023-01-01
    plan: monthly
    price: 99.90
    entries:
      - {date: "2023-01-05", amount: 99.90}
`
	data, err := LoadSource("yaml:" + writeTemp(t, "academy.txt", yamlDoc))
	if err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if len(data.Players) != 1 {
		t.Fatalf("Players = %d, want 1", len(data.Players))
	}
	checkDec(t, "price", data.Players[0].Price, "99.90")
	if !data.Players[0].EnrollmentDate.Equal(date("2023-01-01")) {
		t.Errorf("EnrollmentDate = %v", data.Players[0].EnrollmentDate)
	}
}

func TestParseDocument_RejectsBadRows(t *testing.T) {
	tests := []struct {
		name    string
		players string
		wantErr error
		wantMsg string
	}{
		{"zero price", `[{"name": "A", "enrollment_date": "2023-01-01", "plan": "monthly", "price": 0}]`, ErrInvalidPrice, "player 1 (A)"},
		{"unknown plan", `[{"name": "A", "enrollment_date": "2023-01-01", "plan": "weekly", "price": 10}]`, ErrUnknownPlan, "weekly"},
		{"bad date", `[{"name": "A", "enrollment_date": "01/01/2023", "plan": "monthly", "price": 10}]`, ErrInvalidDate, "enrollment date"},
		{"zero entry", `[{"name": "A", "enrollment_date": "2023-01-01", "plan": "monthly", "price": 10, "entries": [{"date": "2023-01-02", "amount": 0}]}]`, ErrZeroAmount, "entry 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, "bad.json", `{"academy": {"name": "X"}, "players": `+tt.players+`}`)
			_, err := LoadSource(path)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("err = %q, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadSource_UnknownExtension(t *testing.T) {
	_, err := LoadSource("academy.txt")
	if err == nil || !strings.Contains(err.Error(), "cannot detect format") {
		t.Errorf("err = %v, want detection error", err)
	}
}

func TestNewDocument_RoundTrip(t *testing.T) {
	data, err := LoadSource(writeTemp(t, "academy.json", sampleJSON))
	if err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	again, err := NewDocument(*data).AcademyData()
	if err != nil {
		t.Fatalf("AcademyData: %v", err)
	}
	if len(again.Players) != len(data.Players) || again.Players[1].Active {
		t.Errorf("round trip lost players or flags: %+v", again.Players)
	}
	if again.Academy.ID != "acad-1" {
		t.Errorf("Academy.ID = %q", again.Academy.ID)
	}
}

func writeWorkbook(t *testing.T, sheets map[string][][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for name, rows := range sheets {
		if _, err := f.NewSheet(name); err != nil {
			t.Fatal(err)
		}
		for i, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "academy.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseWorkbook(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		SheetAcademy: {{"Name", "Falcons"}, {"Currency", "usd"}},
		SheetPlayers: {
			{"Player list"},
			{"ID", "Name", "Age", "Sport", "Enrollment Date", "Plan", "Price", "Active", "Auto Renew"},
			{"p1", "Omar", "11", "Football", "2023-01-01", "monthly", "100", "yes", "no"},
			{"", "Lina", "", "Swimming", "2023-02-01", "yearly", "1,200.00", "no", "yes"},
		},
		SheetPayments: {
			{"Player", "Date", "Amount", "Note"},
			{"p1", "2023-01-05", "100", ""},
			{"lina", "2023-02-02", "1200", "full year"},
			{"Omar", "2023-02-05", "-50", "sibling"},
		},
		SheetExpenses: {
			{"Description", "Amount", "Date"},
			{"Field rent", "400", "2023-02-01"},
		},
	})

	data, err := LoadSource(path)
	if err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if data.Academy.Name != "Falcons" || data.Academy.Currency != "USD" {
		t.Errorf("Academy = %+v", data.Academy)
	}
	if len(data.Players) != 2 {
		t.Fatalf("Players = %d, want 2", len(data.Players))
	}
	if len(data.Players[0].Entries) != 2 || len(data.Players[1].Entries) != 1 {
		t.Errorf("entries = %d/%d, want 2/1", len(data.Players[0].Entries), len(data.Players[1].Entries))
	}
	checkDec(t, "Lina price", data.Players[1].Price, "1200")
	if data.Players[1].Active || !data.Players[1].AutoRenew {
		t.Errorf("Lina flags = active %v, auto renew %v", data.Players[1].Active, data.Players[1].AutoRenew)
	}
	if len(data.Expenses) != 1 {
		t.Errorf("Expenses = %d, want 1", len(data.Expenses))
	}
}

func TestWriteDocument_ReadsBack(t *testing.T) {
	data, err := LoadSource(writeTemp(t, "academy.json", sampleJSON))
	if err != nil {
		t.Fatalf("LoadSource: %v", err)
	}

	for _, format := range []string{"json", "yaml"} {
		var buf bytes.Buffer
		if err := WriteDocument(&buf, *data, format); err != nil {
			t.Fatalf("WriteDocument(%s): %v", format, err)
		}
		again, err := LoadSource(writeTemp(t, "dump."+format, buf.String()))
		if err != nil {
			t.Fatalf("%s: LoadSource: %v\n%s", format, err, buf.String())
		}
		if again.Academy.ID != data.Academy.ID || len(again.Players) != len(data.Players) {
			t.Errorf("%s: academy %q with %d players, want %q with %d",
				format, again.Academy.ID, len(again.Players), data.Academy.ID, len(data.Players))
		}
		for i, p := range data.Players {
			got := again.Players[i]
			if got.Name != p.Name || got.Active != p.Active || !got.Price.Equal(p.Price) || len(got.Entries) != len(p.Entries) {
				t.Errorf("%s: player %d = %+v, want %+v", format, i, got, p)
			}
		}
	}

	if err := WriteDocument(&bytes.Buffer{}, *data, "csv"); err == nil {
		t.Error("expected error for csv")
	}
}

func TestParseWorkbook_DateAndNumberCells(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		SheetPlayers: {
			{"Name", "Enrollment Date", "Plan", "Price"},
			{"Omar", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), "monthly", 100},
			{"Lina", time.Date(2023, 2, 15, 0, 0, 0, 0, time.UTC), "yearly", 1200.5},
		},
		SheetPayments: {
			{"Player", "Date", "Amount"},
			{"Omar", time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC), 100},
		},
	})

	data, err := LoadSource(path)
	if err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if len(data.Players) != 2 {
		t.Fatalf("Players = %d, want 2", len(data.Players))
	}
	omar, lina := data.Players[0], data.Players[1]
	if !omar.EnrollmentDate.Equal(date("2023-01-01")) {
		t.Errorf("Omar enrolled %s, want 2023-01-01", omar.EnrollmentDate.Format(DateLayout))
	}
	if !lina.EnrollmentDate.Equal(date("2023-02-15")) {
		t.Errorf("Lina enrolled %s, want 2023-02-15", lina.EnrollmentDate.Format(DateLayout))
	}
	checkDec(t, "Lina price", lina.Price, "1200.5")
	if len(omar.Entries) != 1 || !omar.Entries[0].Date.Equal(date("2023-01-05")) {
		t.Errorf("Omar entries = %+v, want one payment on 2023-01-05", omar.Entries)
	}
}

func TestParseWorkbook_UnknownPlayer(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		SheetPlayers: {
			{"Name", "Enrollment Date", "Plan", "Price"},
			{"Omar", "2023-01-01", "monthly", "100"},
		},
		SheetPayments: {
			{"Player", "Date", "Amount"},
			{"Ghost", "2023-01-05", "100"},
		},
	})

	_, err := LoadSource(path)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if !strings.Contains(err.Error(), "Payments row 2") {
		t.Errorf("err = %q, want row number", err)
	}
}

func TestParseCellAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234.50", "1234.5"},
		{"1,234.50", "1234.5"},
		{"1234,50", "1234.5"},
		{"-50", "-50"},
	}
	for _, tt := range tests {
		got, err := parseCellAmount(tt.in)
		if err != nil {
			t.Fatalf("parseCellAmount(%q): %v", tt.in, err)
		}
		checkDec(t, tt.in, got, tt.want)
	}
	if _, err := parseCellAmount("abc"); err == nil {
		t.Error("expected error for abc")
	}
}
