package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/mohammadazar1/acad/internal"
	"github.com/mohammadazar1/acad/internal/store"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func parseAmount(name, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return d, nil
}

// dateOr parses s, or returns the --as-of date when s is empty.
func (a *app) dateOr(s string) (time.Time, error) {
	if s == "" {
		return a.asOf, nil
	}
	return internal.ParseDate(s)
}

type ImportParams struct {
	Source string `descr:"Data file: format:path or a .json/.yaml/.xlsx file" positional:"true"`
}

func importCmd() *cobra.Command {
	return boa.NewCmdT[ImportParams]("import").
		WithShort("Import a data file into the database").
		WithLong("Stores the academy, players, payments, expenses, coaches, salaries and revenue items of a data file as a new academy in the SQLite database.").
		WithRunFunc(func(params *ImportParams) {
			run(func(a *app) error { return runImport(a, params) })
		}).
		ToCobra()
}

func runImport(a *app, params *ImportParams) error {
	data, err := internal.LoadSource(params.Source)
	if err != nil {
		return err
	}
	if data.Academy.Name == "" {
		_, path := internal.ParseFileArg(params.Source)
		data.Academy.Name = firstNonEmpty(a.cfg.Academy, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}
	if data.Academy.Currency == "" {
		data.Academy.Currency = firstNonEmpty(a.currency, a.cfg.Currency, internal.DefaultCurrency)
	}

	s, db, err := a.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := s.ImportAcademyData(*data)
	if err != nil {
		return err
	}
	a.log.Info("academy imported",
		zap.String("academy_id", res.AcademyID),
		zap.Int("players", res.Players),
		zap.Int("entries", res.Entries))
	fmt.Fprintf(a.out, "Imported %s (%s): %d players, %d ledger entries, %d expenses, %d coaches, %d salaries, %d revenue items\n",
		data.Academy.Name, res.AcademyID, res.Players, res.Entries, res.Expenses, res.Coaches, res.CoachSalaries, res.RevenueItems)
	return nil
}

type EnrollParams struct {
	Name      string `descr:"Player name"`
	Plan      string `descr:"Subscription plan" alts:"monthly,yearly" default:"monthly" strict:"true"`
	Price     string `descr:"Price per plan period (per month, or per year for yearly plans)"`
	Enrolled  string `descr:"Enrollment date, YYYY-MM-DD (default: the --as-of date)" optional:"true"`
	Phone     string `descr:"Phone number" optional:"true"`
	Age       int    `descr:"Age" default:"0"`
	Sport     string `descr:"Sport" optional:"true"`
	Division  string `descr:"Division or age group" optional:"true"`
	AutoRenew bool   `descr:"Record a renewal payment automatically every period" optional:"true"`
}

func enrollCmd() *cobra.Command {
	return boa.NewCmdT[EnrollParams]("enroll").
		WithShort("Add a player to the academy").
		WithRunFunc(func(params *EnrollParams) {
			run(func(a *app) error { return runEnroll(a, params) })
		}).
		ToCobra()
}

func runEnroll(a *app, params *EnrollParams) error {
	plan, err := internal.ParsePlanKind(params.Plan)
	if err != nil {
		return err
	}
	price, err := parseAmount("price", params.Price)
	if err != nil {
		return err
	}
	enrolled, err := a.dateOr(params.Enrolled)
	if err != nil {
		return err
	}

	return a.withAcademy(func(s *store.Store, academy *internal.Academy) error {
		p, err := s.Players.Create(academy.ID, internal.Player{
			Name:           params.Name,
			Phone:          params.Phone,
			Age:            params.Age,
			Sport:          params.Sport,
			Division:       params.Division,
			EnrollmentDate: enrolled,
			Plan:           plan,
			Price:          price,
			Active:         true,
			AutoRenew:      params.AutoRenew,
		})
		if err != nil {
			return err
		}
		a.log.Info("player enrolled", zap.String("player_id", p.ID), zap.String("name", p.Name))
		fmt.Fprintf(a.out, "Enrolled %s (%s) on a %s plan at %s\n",
			p.Name, p.ID, p.Plan, a.currencyFor(*academy).Format(p.Price))
		return nil
	})
}

type EntryParams struct {
	Player string `descr:"Player ID or name"`
	Amount string `descr:"Amount"`
	Date   string `descr:"Entry date, YYYY-MM-DD (default: the --as-of date)" optional:"true"`
	Note   string `descr:"Free-text note" optional:"true"`
}

func payCmd() *cobra.Command {
	return boa.NewCmdT[EntryParams]("pay").
		WithShort("Record a subscription payment").
		WithRunFunc(func(params *EntryParams) {
			run(func(a *app) error { return runEntry(a, params, false) })
		}).
		ToCobra()
}

func discountCmd() *cobra.Command {
	return boa.NewCmdT[EntryParams]("discount").
		WithShort("Apply a discount to a player's balance").
		WithLong("Discounts lower what the player owes without counting as a payment. The amount is given as a positive number.").
		WithRunFunc(func(params *EntryParams) {
			run(func(a *app) error { return runEntry(a, params, true) })
		}).
		ToCobra()
}

func runEntry(a *app, params *EntryParams, discount bool) error {
	amount, err := parseAmount("amount", params.Amount)
	if err != nil {
		return err
	}
	date, err := a.dateOr(params.Date)
	if err != nil {
		return err
	}

	return a.withAcademy(func(s *store.Store, academy *internal.Academy) error {
		p, err := s.Players.Resolve(academy.ID, params.Player)
		if err != nil {
			return err
		}

		kind := "payment"
		var e *internal.LedgerEntry
		if discount {
			kind = "discount"
			e, err = s.Entries.ApplyDiscount(academy.ID, p.ID, amount, date, params.Note)
		} else {
			e, err = s.Entries.RecordPayment(academy.ID, p.ID, amount, date, params.Note)
		}
		if err != nil {
			return fmt.Errorf("%s for %s: %w", kind, p.Name, err)
		}
		a.log.Info("entry recorded",
			zap.String("kind", kind),
			zap.String("player_id", p.ID),
			zap.Int64("entry_id", e.ID),
			zap.String("amount", e.Amount.String()))

		currency := a.currencyFor(*academy)
		fmt.Fprintf(a.out, "Recorded %s #%d of %s for %s on %s\n",
			kind, e.ID, currency.Format(amount), p.Name, e.Date.Format(internal.DateLayout))

		p.Entries = append(p.Entries, *e)
		fin, err := internal.ComputeFinances(p.Account(), a.asOf)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Remaining due: %s\n", currency.Format(fin.RemainingDue))
		return nil
	})
}

type ReverseParams struct {
	Player string `descr:"Player ID or name"`
	Entry  int    `descr:"Ledger entry number (see the player command)"`
}

func reverseCmd() *cobra.Command {
	return boa.NewCmdT[ReverseParams]("reverse").
		WithShort("Remove a payment or discount recorded by mistake").
		WithRunFunc(func(params *ReverseParams) {
			run(func(a *app) error { return runReverse(a, params) })
		}).
		ToCobra()
}

func runReverse(a *app, params *ReverseParams) error {
	return a.withAcademy(func(s *store.Store, academy *internal.Academy) error {
		p, err := s.Players.Resolve(academy.ID, params.Player)
		if err != nil {
			return err
		}
		if err := s.Entries.Delete(academy.ID, p.ID, int64(params.Entry)); err != nil {
			return err
		}
		a.log.Info("entry reversed", zap.String("player_id", p.ID), zap.Int("entry_id", params.Entry))
		fmt.Fprintf(a.out, "Reversed entry #%d for %s\n", params.Entry, p.Name)
		return nil
	})
}

type ExpenseParams struct {
	Description string `descr:"What the money was spent on"`
	Amount      string `descr:"Amount"`
	Date        string `descr:"Expense date, YYYY-MM-DD (default: the --as-of date)" optional:"true"`
}

func expenseCmd() *cobra.Command {
	return boa.NewCmdT[ExpenseParams]("expense").
		WithShort("Record an academy expense").
		WithRunFunc(func(params *ExpenseParams) {
			run(func(a *app) error { return runExpense(a, params) })
		}).
		ToCobra()
}

func runExpense(a *app, params *ExpenseParams) error {
	amount, err := parseAmount("amount", params.Amount)
	if err != nil {
		return err
	}
	date, err := a.dateOr(params.Date)
	if err != nil {
		return err
	}
	return a.withAcademy(func(s *store.Store, academy *internal.Academy) error {
		e, err := s.Finance.AddExpense(academy.ID, internal.Expense{Description: params.Description, Amount: amount, Date: date})
		if err != nil {
			return err
		}
		a.log.Info("expense recorded", zap.Int64("expense_id", e.ID), zap.String("amount", e.Amount.String()))
		fmt.Fprintf(a.out, "Recorded expense #%d: %s, %s\n", e.ID, e.Description, a.currencyFor(*academy).Format(e.Amount))
		return nil
	})
}

type CoachParams struct {
	Name           string `descr:"Coach name"`
	Salary         string `descr:"Monthly salary" default:"0"`
	Specialization string `descr:"Specialization" optional:"true"`
	Phone          string `descr:"Phone number" optional:"true"`
	Email          string `descr:"Email address" optional:"true"`
}

func coachCmd() *cobra.Command {
	return boa.NewCmdT[CoachParams]("coach").
		WithShort("Add a coach to the academy").
		WithRunFunc(func(params *CoachParams) {
			run(func(a *app) error { return runCoach(a, params) })
		}).
		ToCobra()
}

func runCoach(a *app, params *CoachParams) error {
	salary, err := parseAmount("salary", params.Salary)
	if err != nil {
		return err
	}
	return a.withAcademy(func(s *store.Store, academy *internal.Academy) error {
		c, err := s.Finance.AddCoach(academy.ID, internal.Coach{
			Name:           params.Name,
			Specialization: params.Specialization,
			Phone:          params.Phone,
			Email:          params.Email,
			Salary:         salary,
		})
		if err != nil {
			return err
		}
		a.log.Info("coach added", zap.String("coach_id", c.ID), zap.String("name", c.Name))
		fmt.Fprintf(a.out, "Added coach %s (%s)\n", c.Name, c.ID)
		return nil
	})
}

type SalaryParams struct {
	Coach  string `descr:"Coach ID or name"`
	Amount string `descr:"Amount (default: the coach's monthly salary)" optional:"true"`
	Date   string `descr:"Payment date, YYYY-MM-DD (default: the --as-of date)" optional:"true"`
	Notes  string `descr:"Free-text note" optional:"true"`
}

func salaryCmd() *cobra.Command {
	return boa.NewCmdT[SalaryParams]("salary").
		WithShort("Record a salary payment to a coach").
		WithRunFunc(func(params *SalaryParams) {
			run(func(a *app) error { return runSalary(a, params) })
		}).
		ToCobra()
}

func runSalary(a *app, params *SalaryParams) error {
	date, err := a.dateOr(params.Date)
	if err != nil {
		return err
	}
	return a.withAcademy(func(s *store.Store, academy *internal.Academy) error {
		coach, err := s.Finance.ResolveCoach(academy.ID, params.Coach)
		if err != nil {
			return err
		}
		amount := coach.Salary
		if params.Amount != "" {
			if amount, err = parseAmount("amount", params.Amount); err != nil {
				return err
			}
		}

		cs, err := s.Finance.AddCoachSalary(academy.ID, internal.CoachSalary{
			CoachID:     coach.ID,
			Amount:      amount,
			PaymentDate: date,
			Notes:       params.Notes,
		})
		if err != nil {
			return err
		}
		a.log.Info("salary recorded", zap.String("coach_id", cs.CoachID), zap.String("amount", cs.Amount.String()))
		fmt.Fprintf(a.out, "Recorded salary #%d of %s to %s on %s\n",
			cs.ID, a.currencyFor(*academy).Format(cs.Amount), cs.CoachName, cs.PaymentDate.Format(internal.DateLayout))
		return nil
	})
}

type RevenueParams struct {
	Name  string `descr:"Item sold"`
	Cost  string `descr:"Cost price"`
	Price string `descr:"Selling price"`
	Date  string `descr:"Sale date, YYYY-MM-DD (default: the --as-of date)" optional:"true"`
}

func revenueCmd() *cobra.Command {
	return boa.NewCmdT[RevenueParams]("revenue").
		WithShort("Record a sale (kit, equipment, event tickets)").
		WithRunFunc(func(params *RevenueParams) {
			run(func(a *app) error { return runRevenue(a, params) })
		}).
		ToCobra()
}

func runRevenue(a *app, params *RevenueParams) error {
	cost, err := parseAmount("cost", params.Cost)
	if err != nil {
		return err
	}
	price, err := parseAmount("price", params.Price)
	if err != nil {
		return err
	}
	date, err := a.dateOr(params.Date)
	if err != nil {
		return err
	}
	return a.withAcademy(func(s *store.Store, academy *internal.Academy) error {
		r, err := s.Finance.AddRevenueItem(academy.ID, internal.RevenueItem{Name: params.Name, CostPrice: cost, SellingPrice: price, Date: date})
		if err != nil {
			return err
		}
		a.log.Info("revenue recorded", zap.Int64("revenue_id", r.ID), zap.String("profit", r.Profit().String()))
		fmt.Fprintf(a.out, "Recorded %s #%d, profit %s\n", r.Name, r.ID, a.currencyFor(*academy).Format(r.Profit()))
		return nil
	})
}

type RenewParams struct {
	DryRun bool `descr:"Only list the renewals that are due" optional:"true"`
}

func renewCmd() *cobra.Command {
	return boa.NewCmdT[RenewParams]("renew").
		WithShort("Record renewal payments for auto-renewing players").
		WithLong("Records one period's price as a payment for every active auto-renew player whose last payment is at least one plan period old.").
		WithRunFunc(func(params *RenewParams) {
			run(func(a *app) error { return runRenew(a, params) })
		}).
		ToCobra()
}

func runRenew(a *app, params *RenewParams) error {
	return a.withAcademy(func(s *store.Store, academy *internal.Academy) error {
		players, err := s.Players.List(academy.ID)
		if err != nil {
			return err
		}
		renewals := internal.DueRenewals(players, a.asOf)

		if !params.DryRun && len(renewals) > 0 {
			err := s.WithTx(func(tx *store.Store) error {
				for i, r := range renewals {
					e, err := tx.Entries.RecordPayment(academy.ID, r.PlayerID, r.Entry.Amount, r.Entry.Date, r.Entry.Note)
					if err != nil {
						return fmt.Errorf("renewal for %s: %w", r.PlayerName, err)
					}
					renewals[i].Entry = *e
				}
				return nil
			})
			if err != nil {
				return err
			}
			a.log.Info("renewals recorded", zap.Int("count", len(renewals)))
		}

		internal.PrintRenewals(a.out, renewals, a.currencyFor(*academy), !params.DryRun)
		return nil
	})
}

type AttendParams struct {
	Division string   `descr:"Division the session was held for"`
	Date     string   `descr:"Session date, YYYY-MM-DD (default: the --as-of date)" optional:"true"`
	Absent   []string `descr:"Players who missed the session (ID or name); every other active player of the division is marked present" optional:"true"`
}

func attendCmd() *cobra.Command {
	return boa.NewCmdT[AttendParams]("attend").
		WithShort("Record a training session's attendance").
		WithLong("Marks every active player of the division present or absent for one day. Recording the same day again replaces the earlier marks.").
		WithRunFunc(func(params *AttendParams) {
			run(func(a *app) error { return runAttend(a, params) })
		}).
		ToCobra()
}

func runAttend(a *app, params *AttendParams) error {
	date, err := a.dateOr(params.Date)
	if err != nil {
		return err
	}
	return a.withAcademy(func(s *store.Store, academy *internal.Academy) error {
		players, err := s.Players.List(academy.ID)
		if err != nil {
			return err
		}
		squad := internal.PlayersInDivision(players, params.Division, true)
		if len(squad) == 0 {
			return fmt.Errorf("no active players in division %q", params.Division)
		}

		marks := make(map[string]bool, len(squad))
		for _, p := range squad {
			marks[p.ID] = true
		}
		division := internal.AcademyData{Players: squad}
		for _, name := range params.Absent {
			p, ok := division.FindPlayer(name)
			if !ok {
				return fmt.Errorf("absent player %q is not an active player of %s: %w", name, params.Division, internal.ErrNotFound)
			}
			marks[p.ID] = false
		}

		var n int
		err = s.WithTx(func(tx *store.Store) error {
			n, err = tx.Attendance.Record(academy.ID, params.Division, date, marks)
			return err
		})
		if err != nil {
			return err
		}

		absent := 0
		for _, present := range marks {
			if !present {
				absent++
			}
		}
		a.log.Info("attendance recorded",
			zap.String("division", params.Division),
			zap.String("date", date.Format(internal.DateLayout)),
			zap.Int("marks", n))
		fmt.Fprintf(a.out, "Recorded attendance for %s on %s: %d present, %d absent\n",
			params.Division, date.Format(internal.DateLayout), n-absent, absent)
		return nil
	})
}

type PlayerStatusParams struct {
	Player string `descr:"Player ID or name"`
}

func activateCmd() *cobra.Command {
	return boa.NewCmdT[PlayerStatusParams]("activate").
		WithShort("Mark a player active again").
		WithRunFunc(func(params *PlayerStatusParams) {
			run(func(a *app) error { return runSetActive(a, params, true) })
		}).
		ToCobra()
}

func deactivateCmd() *cobra.Command {
	return boa.NewCmdT[PlayerStatusParams]("deactivate").
		WithShort("Mark a player inactive").
		WithLong("Inactive players keep their payment history but are shown as INACTIVE, skipped by renew and left out of attendance.").
		WithRunFunc(func(params *PlayerStatusParams) {
			run(func(a *app) error { return runSetActive(a, params, false) })
		}).
		ToCobra()
}

func runSetActive(a *app, params *PlayerStatusParams, active bool) error {
	return a.withAcademy(func(s *store.Store, academy *internal.Academy) error {
		p, err := s.Players.Resolve(academy.ID, params.Player)
		if err != nil {
			return err
		}
		if err := s.Players.SetActive(academy.ID, p.ID, active); err != nil {
			return err
		}
		status := "inactive"
		if active {
			status = "active"
		}
		a.log.Info("player status changed", zap.String("player_id", p.ID), zap.Bool("active", active))
		fmt.Fprintf(a.out, "%s is now %s\n", p.Name, status)
		return nil
	})
}

func removeCmd() *cobra.Command {
	return boa.NewCmdT[PlayerStatusParams]("remove").
		WithShort("Delete a player with their payments and attendance").
		WithRunFunc(func(params *PlayerStatusParams) {
			run(func(a *app) error { return runRemove(a, params) })
		}).
		ToCobra()
}

func runRemove(a *app, params *PlayerStatusParams) error {
	return a.withAcademy(func(s *store.Store, academy *internal.Academy) error {
		p, err := s.Players.Resolve(academy.ID, params.Player)
		if err != nil {
			return err
		}
		if err := s.Players.Delete(academy.ID, p.ID); err != nil {
			return err
		}
		a.log.Info("player removed", zap.String("player_id", p.ID), zap.Int("entries", len(p.Entries)))
		fmt.Fprintf(a.out, "Removed %s (%s) and %d ledger entries\n", p.Name, p.ID, len(p.Entries))
		return nil
	})
}
