package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mohammadazar1/acad/internal"
)

// FinanceStore holds the academy's costs and side revenue: expenses, coaches
// and their salary payments, and revenue items.
type FinanceStore struct {
	db DBTX
}

func NewFinanceStore(db DBTX) *FinanceStore {
	return &FinanceStore{db: db}
}

// --- Expenses ---

func scanExpense(scanner interface{ Scan(...any) error }) (*internal.Expense, error) {
	var e internal.Expense
	var date string
	if err := scanner.Scan(&e.ID, &e.Description, &e.Amount, &date); err != nil {
		return nil, err
	}
	var err error
	if e.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	return &e, nil
}

const expenseCols = `id, description, amount, expense_date`

func (s *FinanceStore) AddExpense(academyID string, e internal.Expense) (*internal.Expense, error) {
	if strings.TrimSpace(e.Description) == "" {
		return nil, fmt.Errorf("expense description is required")
	}
	if !e.Amount.IsPositive() {
		return nil, fmt.Errorf("expense amount must be positive, got %s", e.Amount)
	}
	if e.Date.IsZero() {
		return nil, fmt.Errorf("%w: missing expense date", internal.ErrInvalidDate)
	}

	result, err := s.db.Exec(
		`INSERT INTO expenses (academy_id, description, amount, expense_date) VALUES (?, ?, ?, ?)`,
		academyID, e.Description, e.Amount.String(), formatDate(e.Date),
	)
	if err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}
	if e.ID, err = result.LastInsertId(); err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &e, nil
}

func (s *FinanceStore) ListExpenses(academyID string) ([]internal.Expense, error) {
	rows, err := s.db.Query(`SELECT `+expenseCols+` FROM expenses WHERE academy_id = ? ORDER BY expense_date, id`, academyID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []internal.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

// --- Coaches ---

func scanCoach(scanner interface{ Scan(...any) error }) (*internal.Coach, error) {
	var c internal.Coach
	if err := scanner.Scan(&c.ID, &c.Name, &c.Specialization, &c.Phone, &c.Email, &c.Salary); err != nil {
		return nil, err
	}
	return &c, nil
}

const coachCols = `id, name, specialization, phone, email, salary`

// AddCoach stores a coach under a generated ID.
func (s *FinanceStore) AddCoach(academyID string, c internal.Coach) (*internal.Coach, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, fmt.Errorf("coach name is required")
	}
	if c.Salary.IsNegative() {
		return nil, fmt.Errorf("coach salary must not be negative, got %s", c.Salary)
	}

	c.ID = uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO coaches (id, academy_id, name, specialization, phone, email, salary) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, academyID, c.Name, c.Specialization, c.Phone, c.Email, c.Salary.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert coach: %w", err)
	}
	return &c, nil
}

// ResolveCoach finds a coach by ID or case-insensitive name.
func (s *FinanceStore) ResolveCoach(academyID, idOrName string) (*internal.Coach, error) {
	row := s.db.QueryRow(
		`SELECT `+coachCols+` FROM coaches WHERE academy_id = ? AND (id = ? OR name = ? COLLATE NOCASE)
		 ORDER BY id = ? DESC, created_at LIMIT 1`,
		academyID, idOrName, idOrName, idOrName,
	)
	c, err := scanCoach(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("coach %q: %w", idOrName, internal.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get coach: %w", err)
	}
	return c, nil
}

func (s *FinanceStore) ListCoaches(academyID string) ([]internal.Coach, error) {
	rows, err := s.db.Query(`SELECT `+coachCols+` FROM coaches WHERE academy_id = ? ORDER BY name COLLATE NOCASE`, academyID)
	if err != nil {
		return nil, fmt.Errorf("list coaches: %w", err)
	}
	defer rows.Close()

	var coaches []internal.Coach
	for rows.Next() {
		c, err := scanCoach(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coach: %w", err)
		}
		coaches = append(coaches, *c)
	}
	return coaches, rows.Err()
}

// --- Coach salaries ---

func scanCoachSalary(scanner interface{ Scan(...any) error }) (*internal.CoachSalary, error) {
	var cs internal.CoachSalary
	var date string
	if err := scanner.Scan(&cs.ID, &cs.CoachID, &cs.CoachName, &cs.Amount, &date, &cs.Notes); err != nil {
		return nil, err
	}
	var err error
	if cs.PaymentDate, err = parseDate(date); err != nil {
		return nil, err
	}
	return &cs, nil
}

// AddCoachSalary records a salary payment to a coach of the academy.
func (s *FinanceStore) AddCoachSalary(academyID string, cs internal.CoachSalary) (*internal.CoachSalary, error) {
	if !cs.Amount.IsPositive() {
		return nil, fmt.Errorf("salary amount must be positive, got %s", cs.Amount)
	}
	if cs.PaymentDate.IsZero() {
		return nil, fmt.Errorf("%w: missing payment date", internal.ErrInvalidDate)
	}
	coach, err := s.ResolveCoach(academyID, cs.CoachID)
	if err != nil {
		return nil, err
	}
	cs.CoachID, cs.CoachName = coach.ID, coach.Name

	result, err := s.db.Exec(
		`INSERT INTO coach_salaries (academy_id, coach_id, amount, payment_date, notes) VALUES (?, ?, ?, ?, ?)`,
		academyID, cs.CoachID, cs.Amount.String(), formatDate(cs.PaymentDate), cs.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert coach salary: %w", err)
	}
	if cs.ID, err = result.LastInsertId(); err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &cs, nil
}

func (s *FinanceStore) ListCoachSalaries(academyID string) ([]internal.CoachSalary, error) {
	rows, err := s.db.Query(
		`SELECT s.id, s.coach_id, c.name, s.amount, s.payment_date, s.notes
		 FROM coach_salaries s JOIN coaches c ON c.id = s.coach_id
		 WHERE s.academy_id = ? ORDER BY s.payment_date, s.id`,
		academyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list coach salaries: %w", err)
	}
	defer rows.Close()

	var salaries []internal.CoachSalary
	for rows.Next() {
		cs, err := scanCoachSalary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coach salary: %w", err)
		}
		salaries = append(salaries, *cs)
	}
	return salaries, rows.Err()
}

// --- Revenue items ---

func scanRevenueItem(scanner interface{ Scan(...any) error }) (*internal.RevenueItem, error) {
	var r internal.RevenueItem
	var date string
	if err := scanner.Scan(&r.ID, &r.Name, &r.CostPrice, &r.SellingPrice, &date); err != nil {
		return nil, err
	}
	var err error
	if r.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	return &r, nil
}

const revenueItemCols = `id, name, cost_price, selling_price, sale_date`

func (s *FinanceStore) AddRevenueItem(academyID string, r internal.RevenueItem) (*internal.RevenueItem, error) {
	if strings.TrimSpace(r.Name) == "" {
		return nil, fmt.Errorf("revenue item name is required")
	}
	if r.CostPrice.IsNegative() || r.SellingPrice.IsNegative() {
		return nil, fmt.Errorf("revenue item prices must not be negative")
	}
	if r.Date.IsZero() {
		return nil, fmt.Errorf("%w: missing sale date", internal.ErrInvalidDate)
	}

	result, err := s.db.Exec(
		`INSERT INTO revenue_items (academy_id, name, cost_price, selling_price, sale_date) VALUES (?, ?, ?, ?, ?)`,
		academyID, r.Name, r.CostPrice.String(), r.SellingPrice.String(), formatDate(r.Date),
	)
	if err != nil {
		return nil, fmt.Errorf("insert revenue item: %w", err)
	}
	if r.ID, err = result.LastInsertId(); err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &r, nil
}

func (s *FinanceStore) ListRevenueItems(academyID string) ([]internal.RevenueItem, error) {
	rows, err := s.db.Query(`SELECT `+revenueItemCols+` FROM revenue_items WHERE academy_id = ? ORDER BY sale_date, id`, academyID)
	if err != nil {
		return nil, fmt.Errorf("list revenue items: %w", err)
	}
	defer rows.Close()

	var items []internal.RevenueItem
	for rows.Next() {
		r, err := scanRevenueItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan revenue item: %w", err)
		}
		items = append(items, *r)
	}
	return items, rows.Err()
}
