package store

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohammadazar1/acad/internal"
	"github.com/mohammadazar1/acad/internal/database"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(database.Memory)
	require.NoError(t, err, "open test db")
	t.Cleanup(func() { db.Close() })
	return New(db)
}

func date(s string) time.Time {
	t, err := time.Parse(internal.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), append([]any{"got %s, want %s", got, want}, msgAndArgs...)...)
}

func newPlayer(name string) internal.Player {
	return internal.Player{
		Name:           name,
		Sport:          "Football",
		EnrollmentDate: date("2023-01-01"),
		Plan:           internal.PlanMonthly,
		Price:          dec("100"),
		Active:         true,
	}
}

func TestAcademyCRUD(t *testing.T) {
	s := setupTestStore(t)

	a, err := s.Academies.Create("Falcons", "")
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, internal.DefaultCurrency, a.Currency)

	got, err := s.Academies.Resolve("falcons")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = s.Academies.Get("missing")
	assert.ErrorIs(t, err, internal.ErrNotFound)

	_, err = s.Academies.Create("  ", "ILS")
	assert.Error(t, err)

	list, err := s.Academies.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPlayerCreateAndGet(t *testing.T) {
	s := setupTestStore(t)
	a, err := s.Academies.Create("Falcons", "ILS")
	require.NoError(t, err)

	p := newPlayer("Omar")
	p.Age = 11
	p.AutoRenew = true
	created, err := s.Players.Create(a.ID, p)
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Omar", created.Name)
	assert.Equal(t, 11, created.Age)
	assert.True(t, created.Active)
	assert.True(t, created.AutoRenew)
	assert.Equal(t, internal.PlanMonthly, created.Plan)
	assert.True(t, created.EnrollmentDate.Equal(date("2023-01-01")))
	assertDec(t, "100", created.Price)

	byName, err := s.Players.Resolve(a.ID, "OMAR")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	other, err := s.Academies.Create("Eagles", "ILS")
	require.NoError(t, err)
	_, err = s.Players.Get(other.ID, created.ID)
	assert.ErrorIs(t, err, internal.ErrNotFound, "players are scoped by academy")
}

func TestPlayerCreate_Validation(t *testing.T) {
	s := setupTestStore(t)
	a, err := s.Academies.Create("Falcons", "ILS")
	require.NoError(t, err)

	zero := newPlayer("Zero")
	zero.Price = decimal.Zero
	_, err = s.Players.Create(a.ID, zero)
	assert.ErrorIs(t, err, internal.ErrInvalidPrice)

	weekly := newPlayer("Weekly")
	weekly.Plan = "weekly"
	_, err = s.Players.Create(a.ID, weekly)
	assert.ErrorIs(t, err, internal.ErrUnknownPlan)

	nameless := newPlayer("")
	_, err = s.Players.Create(a.ID, nameless)
	assert.Error(t, err)
}

func TestPlayerSetActiveAndDelete(t *testing.T) {
	s := setupTestStore(t)
	a, _ := s.Academies.Create("Falcons", "ILS")
	p, err := s.Players.Create(a.ID, newPlayer("Omar"))
	require.NoError(t, err)

	require.NoError(t, s.Players.SetActive(a.ID, p.ID, false))
	got, err := s.Players.Get(a.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	_, err = s.Entries.RecordPayment(a.ID, p.ID, dec("100"), date("2023-01-05"), "")
	require.NoError(t, err)

	require.NoError(t, s.Players.Delete(a.ID, p.ID))
	assert.ErrorIs(t, s.Players.Delete(a.ID, p.ID), internal.ErrNotFound)

	entries, err := s.Entries.ListForPlayer(p.ID)
	require.NoError(t, err)
	assert.Empty(t, entries, "entries cascade with the player")
}

func TestEntries_PaymentDiscountReverse(t *testing.T) {
	s := setupTestStore(t)
	a, _ := s.Academies.Create("Falcons", "ILS")
	p, err := s.Players.Create(a.ID, newPlayer("Omar"))
	require.NoError(t, err)

	pay, err := s.Entries.RecordPayment(a.ID, p.ID, dec("100"), date("2023-01-05"), "cash")
	require.NoError(t, err)
	assert.NotZero(t, pay.ID)

	disc, err := s.Entries.ApplyDiscount(a.ID, p.ID, dec("25.50"), date("2023-02-01"), "sibling")
	require.NoError(t, err)
	assertDec(t, "-25.50", disc.Amount, "discounts are stored negated")

	got, err := s.Players.Get(a.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, "cash", got.Entries[0].Note)

	fin, err := internal.ComputeFinances(got.Account(), date("2023-03-15"))
	require.NoError(t, err)
	assertDec(t, "100", fin.TotalPaid)
	assertDec(t, "25.50", fin.TotalDiscounted)
	assertDec(t, "174.50", fin.RemainingDue)

	require.NoError(t, s.Entries.Delete(a.ID, p.ID, disc.ID))
	got, err = s.Players.Get(a.ID, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Entries, 1)
}

func TestEntries_Validation(t *testing.T) {
	s := setupTestStore(t)
	a, _ := s.Academies.Create("Falcons", "ILS")
	p, err := s.Players.Create(a.ID, newPlayer("Omar"))
	require.NoError(t, err)

	_, err = s.Entries.RecordPayment(a.ID, p.ID, decimal.Zero, date("2023-01-05"), "")
	assert.ErrorIs(t, err, internal.ErrZeroAmount)

	_, err = s.Entries.RecordPayment(a.ID, p.ID, dec("-10"), date("2023-01-05"), "")
	assert.Error(t, err)

	_, err = s.Entries.ApplyDiscount(a.ID, p.ID, dec("-10"), date("2023-01-05"), "")
	assert.Error(t, err)

	_, err = s.Entries.RecordPayment(a.ID, "ghost", dec("10"), date("2023-01-05"), "")
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestEntries_DeleteRequiresOwnership(t *testing.T) {
	s := setupTestStore(t)
	a, _ := s.Academies.Create("Falcons", "ILS")
	omar, _ := s.Players.Create(a.ID, newPlayer("Omar"))
	lina, _ := s.Players.Create(a.ID, newPlayer("Lina"))

	e, err := s.Entries.RecordPayment(a.ID, omar.ID, dec("100"), date("2023-01-05"), "")
	require.NoError(t, err)

	err = s.Entries.Delete(a.ID, lina.ID, e.ID)
	assert.ErrorIs(t, err, internal.ErrNotFound)

	other, _ := s.Academies.Create("Eagles", "ILS")
	err = s.Entries.Delete(other.ID, omar.ID, e.ID)
	assert.ErrorIs(t, err, internal.ErrNotFound)

	assert.NoError(t, s.Entries.Delete(a.ID, omar.ID, e.ID))
}

func TestFinanceStore(t *testing.T) {
	s := setupTestStore(t)
	a, _ := s.Academies.Create("Falcons", "ILS")

	_, err := s.Finance.AddExpense(a.ID, internal.Expense{Description: "Field rent", Amount: dec("400"), Date: date("2023-02-01")})
	require.NoError(t, err)
	_, err = s.Finance.AddExpense(a.ID, internal.Expense{Description: "Balls", Amount: dec("0"), Date: date("2023-02-01")})
	assert.Error(t, err)

	coach, err := s.Finance.AddCoach(a.ID, internal.Coach{Name: "Yousef", Salary: dec("1500")})
	require.NoError(t, err)

	salary, err := s.Finance.AddCoachSalary(a.ID, internal.CoachSalary{CoachID: "yousef", Amount: dec("1500"), PaymentDate: date("2023-01-31")})
	require.NoError(t, err)
	assert.Equal(t, coach.ID, salary.CoachID, "coach resolved by name")
	assert.Equal(t, "Yousef", salary.CoachName)

	_, err = s.Finance.AddCoachSalary(a.ID, internal.CoachSalary{CoachID: "nobody", Amount: dec("10"), PaymentDate: date("2023-01-31")})
	assert.ErrorIs(t, err, internal.ErrNotFound)

	_, err = s.Finance.AddRevenueItem(a.ID, internal.RevenueItem{Name: "Jerseys", CostPrice: dec("200"), SellingPrice: dec("350"), Date: date("2023-02-10")})
	require.NoError(t, err)

	salaries, err := s.Finance.ListCoachSalaries(a.ID)
	require.NoError(t, err)
	require.Len(t, salaries, 1)
	assert.Equal(t, "Yousef", salaries[0].CoachName)

	items, err := s.Finance.ListRevenueItems(a.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assertDec(t, "150", items[0].Profit())
}

func TestLoadAcademyData_BuildsReport(t *testing.T) {
	s := setupTestStore(t)
	a, _ := s.Academies.Create("Falcons", "ILS")
	omar, _ := s.Players.Create(a.ID, newPlayer("Omar"))
	lina, _ := s.Players.Create(a.ID, newPlayer("Lina"))
	_, err := s.Entries.RecordPayment(a.ID, omar.ID, dec("200"), date("2023-01-05"), "")
	require.NoError(t, err)
	_, err = s.Entries.RecordPayment(a.ID, lina.ID, dec("300"), date("2023-01-05"), "")
	require.NoError(t, err)
	_, err = s.Finance.AddExpense(a.ID, internal.Expense{Description: "Field rent", Amount: dec("400"), Date: date("2023-02-01")})
	require.NoError(t, err)

	data, err := s.LoadAcademyData(a.ID)
	require.NoError(t, err)
	require.Len(t, data.Players, 2)
	assert.Equal(t, "Lina", data.Players[0].Name, "players ordered by name")
	assert.Len(t, data.Players[0].Entries, 1)

	report, err := internal.BuildFinancialReport(*data, 2023, date("2023-03-15"))
	require.NoError(t, err)
	assertDec(t, "500", report.SubscriptionIncome)
	assertDec(t, "100", report.NetIncome)
	assert.Len(t, report.Warnings, 1)
}

func TestImportAcademyData(t *testing.T) {
	s := setupTestStore(t)

	omar := newPlayer("Omar")
	omar.ID = "p1"
	omar.Entries = []internal.LedgerEntry{
		{Amount: dec("100"), Date: date("2023-01-05")},
		{Amount: dec("-20"), Date: date("2023-02-05"), Note: "sibling"},
	}
	data := internal.AcademyData{
		Academy:       internal.Academy{ID: "acad-1", Name: "Falcons", Currency: "ILS"},
		Players:       []internal.Player{omar},
		Expenses:      []internal.Expense{{Description: "Field rent", Amount: dec("400"), Date: date("2023-02-01")}},
		Coaches:       []internal.Coach{{ID: "c1", Name: "Yousef", Salary: dec("1500")}},
		CoachSalaries: []internal.CoachSalary{{CoachID: "c1", Amount: dec("1500"), PaymentDate: date("2023-01-31")}},
		RevenueItems:  []internal.RevenueItem{{Name: "Jerseys", CostPrice: dec("200"), SellingPrice: dec("350"), Date: date("2023-02-10")}},
	}

	res, err := s.ImportAcademyData(data)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{AcademyID: "acad-1", Players: 1, Entries: 2, Expenses: 1, Coaches: 1, CoachSalaries: 1, RevenueItems: 1}, res)

	loaded, err := s.LoadAcademyData("acad-1")
	require.NoError(t, err)
	require.Len(t, loaded.Players, 1)
	assert.Len(t, loaded.Players[0].Entries, 2)
	require.Len(t, loaded.CoachSalaries, 1)
	assert.Equal(t, "Yousef", loaded.CoachSalaries[0].CoachName)

	_, err = s.ImportAcademyData(data)
	assert.True(t, errors.Is(err, ErrAcademyExists))
}

func TestImportAcademyData_RollsBackOnError(t *testing.T) {
	s := setupTestStore(t)

	bad := newPlayer("Bad")
	bad.Entries = []internal.LedgerEntry{{Amount: decimal.Zero, Date: date("2023-01-05")}}
	_, err := s.ImportAcademyData(internal.AcademyData{
		Academy: internal.Academy{ID: "acad-1", Name: "Falcons"},
		Players: []internal.Player{newPlayer("Good"), bad},
	})
	require.ErrorIs(t, err, internal.ErrZeroAmount)

	_, err = s.Academies.Get("acad-1")
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestAttendance_RecordAndList(t *testing.T) {
	s := setupTestStore(t)
	a, _ := s.Academies.Create("Falcons", "ILS")

	u12 := func(name string) *internal.Player {
		p := newPlayer(name)
		p.Division = "U12"
		created, err := s.Players.Create(a.ID, p)
		require.NoError(t, err)
		return created
	}
	omar, lina, sami := u12("Omar"), u12("Lina"), u12("Sami")
	other, err := s.Players.Create(a.ID, newPlayer("Karim"))
	require.NoError(t, err)
	require.NoError(t, s.Players.SetActive(a.ID, sami.ID, false))

	n, err := s.Attendance.Record(a.ID, "U12", date("2024-03-02"), map[string]bool{
		omar.ID:  true,
		lina.ID:  false,
		sami.ID:  true, // inactive
		other.ID: true, // other division
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Recording the session again overwrites the marks.
	_, err = s.Attendance.Record(a.ID, "U12", date("2024-03-02"), map[string]bool{lina.ID: true})
	require.NoError(t, err)
	_, err = s.Attendance.Record(a.ID, "U12", date("2024-04-06"), map[string]bool{omar.ID: false})
	require.NoError(t, err)

	march, err := s.Attendance.List(a.ID, "U12", date("2024-03-01"), date("2024-03-31"))
	require.NoError(t, err)
	require.Len(t, march, 2)
	present := map[string]bool{}
	for _, r := range march {
		assert.Equal(t, "U12", r.Division)
		assert.True(t, r.Date.Equal(date("2024-03-02")))
		present[r.PlayerID] = r.Present
	}
	assert.Equal(t, map[string]bool{omar.ID: true, lina.ID: true}, present)

	all, err := s.Attendance.List(a.ID, "", date("2024-01-01"), date("2024-12-31"))
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, s.Players.Delete(a.ID, omar.ID))
	all, err = s.Attendance.List(a.ID, "", date("2024-01-01"), date("2024-12-31"))
	require.NoError(t, err)
	assert.Len(t, all, 1, "attendance cascades with the player")
}
