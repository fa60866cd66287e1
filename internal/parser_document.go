package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Document is the JSON/YAML data file format. Amounts may be numbers or
// strings; dates are YYYY-MM-DD. Example:
//
//	academy: {name: Falcons, currency: ILS}
//	players:
//	  - name: Omar
//	    enrollment_date: "2024-01-01"
//	    plan: monthly
//	    price: 150
//	    entries:
//	      - {date: "2024-01-03", amount: 150}
//	      - {date: "2024-02-01", amount: -50, note: sibling discount}
type Document struct {
	Academy       DocumentAcademy       `json:"academy" yaml:"academy"`
	Players       []DocumentPlayer      `json:"players" yaml:"players"`
	Expenses      []DocumentExpense     `json:"expenses,omitempty" yaml:"expenses,omitempty"`
	Coaches       []DocumentCoach       `json:"coaches,omitempty" yaml:"coaches,omitempty"`
	CoachSalaries []DocumentCoachSalary `json:"coach_salaries,omitempty" yaml:"coach_salaries,omitempty"`
	RevenueItems  []DocumentRevenueItem `json:"revenue_items,omitempty" yaml:"revenue_items,omitempty"`
}

type DocumentAcademy struct {
	ID       string `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string `json:"name" yaml:"name"`
	Currency string `json:"currency,omitempty" yaml:"currency,omitempty"`
}

type DocumentPlayer struct {
	ID             string          `json:"id,omitempty" yaml:"id,omitempty"`
	Name           string          `json:"name" yaml:"name"`
	Phone          string          `json:"phone,omitempty" yaml:"phone,omitempty"`
	Age            int             `json:"age,omitempty" yaml:"age,omitempty"`
	Sport          string          `json:"sport,omitempty" yaml:"sport,omitempty"`
	Division       string          `json:"division,omitempty" yaml:"division,omitempty"`
	EnrollmentDate string          `json:"enrollment_date" yaml:"enrollment_date"`
	Plan           string          `json:"plan" yaml:"plan"`
	Price          decimal.Decimal `json:"price" yaml:"price"`
	Active         *bool           `json:"active,omitempty" yaml:"active,omitempty"`
	AutoRenew      bool            `json:"auto_renew,omitempty" yaml:"auto_renew,omitempty"`
	Entries        []DocumentEntry `json:"entries,omitempty" yaml:"entries,omitempty"`
}

type DocumentEntry struct {
	Date   string          `json:"date" yaml:"date"`
	Amount decimal.Decimal `json:"amount" yaml:"amount"`
	Note   string          `json:"note,omitempty" yaml:"note,omitempty"`
}

type DocumentExpense struct {
	Description string          `json:"description" yaml:"description"`
	Amount      decimal.Decimal `json:"amount" yaml:"amount"`
	Date        string          `json:"date" yaml:"date"`
}

type DocumentCoach struct {
	ID             string          `json:"id,omitempty" yaml:"id,omitempty"`
	Name           string          `json:"name" yaml:"name"`
	Specialization string          `json:"specialization,omitempty" yaml:"specialization,omitempty"`
	Phone          string          `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email          string          `json:"email,omitempty" yaml:"email,omitempty"`
	Salary         decimal.Decimal `json:"salary" yaml:"salary"`
}

type DocumentCoachSalary struct {
	CoachID     string          `json:"coach_id" yaml:"coach_id"`
	Amount      decimal.Decimal `json:"amount" yaml:"amount"`
	PaymentDate string          `json:"payment_date" yaml:"payment_date"`
	Notes       string          `json:"notes,omitempty" yaml:"notes,omitempty"`
}

type DocumentRevenueItem struct {
	Name         string          `json:"name" yaml:"name"`
	CostPrice    decimal.Decimal `json:"cost_price" yaml:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price" yaml:"selling_price"`
	Date         string          `json:"date" yaml:"date"`
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q (want YYYY-MM-DD)", ErrInvalidDate, s)
	}
	return t, nil
}

// ParseJSONDocument parses a JSON data file
func ParseJSONDocument(path string) (*AcademyData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return doc.AcademyData()
}

// ParseYAMLDocument parses a YAML data file
func ParseYAMLDocument(path string) (*AcademyData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return doc.AcademyData()
}

// AcademyData validates the document and converts it. Players and coaches
// without an ID get a generated one; entry IDs are their position in the file.
func (doc Document) AcademyData() (*AcademyData, error) {
	data := &AcademyData{
		Academy: Academy{
			ID:       doc.Academy.ID,
			Name:     doc.Academy.Name,
			Currency: strings.ToUpper(doc.Academy.Currency),
		},
	}
	if data.Academy.ID == "" {
		data.Academy.ID = uuid.NewString()
	}

	var entryID int64
	for i, dp := range doc.Players {
		p, err := dp.player(&entryID)
		if err != nil {
			return nil, fmt.Errorf("player %d (%s): %w", i+1, dp.Name, err)
		}
		data.Players = append(data.Players, p)
	}

	for i, de := range doc.Expenses {
		date, err := ParseDate(de.Date)
		if err != nil {
			return nil, fmt.Errorf("expense %d: %w", i+1, err)
		}
		if de.Amount.IsZero() {
			return nil, fmt.Errorf("expense %d: %w", i+1, ErrZeroAmount)
		}
		data.Expenses = append(data.Expenses, Expense{
			ID: int64(i + 1), Description: de.Description, Amount: de.Amount, Date: date,
		})
	}

	for _, dc := range doc.Coaches {
		id := dc.ID
		if id == "" {
			id = uuid.NewString()
		}
		data.Coaches = append(data.Coaches, Coach{
			ID: id, Name: dc.Name, Specialization: dc.Specialization,
			Phone: dc.Phone, Email: dc.Email, Salary: dc.Salary,
		})
	}

	for i, ds := range doc.CoachSalaries {
		date, err := ParseDate(ds.PaymentDate)
		if err != nil {
			return nil, fmt.Errorf("coach salary %d: %w", i+1, err)
		}
		if ds.Amount.IsZero() {
			return nil, fmt.Errorf("coach salary %d: %w", i+1, ErrZeroAmount)
		}
		data.CoachSalaries = append(data.CoachSalaries, CoachSalary{
			ID: int64(i + 1), CoachID: ds.CoachID, CoachName: data.CoachName(ds.CoachID),
			Amount: ds.Amount, PaymentDate: date, Notes: ds.Notes,
		})
	}

	for i, dr := range doc.RevenueItems {
		date, err := ParseDate(dr.Date)
		if err != nil {
			return nil, fmt.Errorf("revenue item %d: %w", i+1, err)
		}
		data.RevenueItems = append(data.RevenueItems, RevenueItem{
			ID: int64(i + 1), Name: dr.Name, CostPrice: dr.CostPrice, SellingPrice: dr.SellingPrice, Date: date,
		})
	}

	return data, nil
}

func (dp DocumentPlayer) player(entryID *int64) (Player, error) {
	if strings.TrimSpace(dp.Name) == "" {
		return Player{}, fmt.Errorf("missing name")
	}
	enrolled, err := ParseDate(dp.EnrollmentDate)
	if err != nil {
		return Player{}, fmt.Errorf("enrollment date: %w", err)
	}
	plan, err := ParsePlanKind(dp.Plan)
	if err != nil {
		return Player{}, err
	}

	p := Player{
		ID:             dp.ID,
		Name:           dp.Name,
		Phone:          dp.Phone,
		Age:            dp.Age,
		Sport:          dp.Sport,
		Division:       dp.Division,
		EnrollmentDate: enrolled,
		Plan:           plan,
		Price:          dp.Price,
		Active:         dp.Active == nil || *dp.Active,
		AutoRenew:      dp.AutoRenew,
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	for _, de := range dp.Entries {
		date, err := ParseDate(de.Date)
		if err != nil {
			return Player{}, fmt.Errorf("entry %d: %w", len(p.Entries)+1, err)
		}
		*entryID++
		p.Entries = append(p.Entries, LedgerEntry{ID: *entryID, Amount: de.Amount, Date: date, Note: de.Note})
	}

	if err := ValidateAccount(p.Account()); err != nil {
		return Player{}, err
	}
	return p, nil
}

// WriteDocument writes academy data as a JSON or YAML data file that
// LoadSource reads back.
func WriteDocument(w io.Writer, data AcademyData, format string) error {
	doc := NewDocument(data)
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported document format %q (want json or yaml)", format)
}

// NewDocument converts academy data back into the file format.
func NewDocument(data AcademyData) Document {
	doc := Document{
		Academy: DocumentAcademy{ID: data.Academy.ID, Name: data.Academy.Name, Currency: data.Academy.Currency},
	}
	for _, p := range data.Players {
		active := p.Active
		dp := DocumentPlayer{
			ID: p.ID, Name: p.Name, Phone: p.Phone, Age: p.Age, Sport: p.Sport, Division: p.Division,
			EnrollmentDate: p.EnrollmentDate.Format(DateLayout),
			Plan:           string(p.Plan),
			Price:          p.Price,
			Active:         &active,
			AutoRenew:      p.AutoRenew,
		}
		for _, e := range p.Entries {
			dp.Entries = append(dp.Entries, DocumentEntry{Date: e.Date.Format(DateLayout), Amount: e.Amount, Note: e.Note})
		}
		doc.Players = append(doc.Players, dp)
	}
	for _, e := range data.Expenses {
		doc.Expenses = append(doc.Expenses, DocumentExpense{Description: e.Description, Amount: e.Amount, Date: e.Date.Format(DateLayout)})
	}
	for _, c := range data.Coaches {
		doc.Coaches = append(doc.Coaches, DocumentCoach{
			ID: c.ID, Name: c.Name, Specialization: c.Specialization, Phone: c.Phone, Email: c.Email, Salary: c.Salary,
		})
	}
	for _, s := range data.CoachSalaries {
		doc.CoachSalaries = append(doc.CoachSalaries, DocumentCoachSalary{
			CoachID: s.CoachID, Amount: s.Amount, PaymentDate: s.PaymentDate.Format(DateLayout), Notes: s.Notes,
		})
	}
	for _, r := range data.RevenueItems {
		doc.RevenueItems = append(doc.RevenueItems, DocumentRevenueItem{
			Name: r.Name, CostPrice: r.CostPrice, SellingPrice: r.SellingPrice, Date: r.Date.Format(DateLayout),
		})
	}
	return doc
}
