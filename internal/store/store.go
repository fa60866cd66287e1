package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mohammadazar1/acad/internal"
)

// ErrAcademyExists is returned when importing into an academy ID that is already stored.
var ErrAcademyExists = errors.New("academy already exists")

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Store bundles the per-table stores over one connection or transaction.
type Store struct {
	db *sql.DB

	Academies *AcademyStore
	Players   *PlayerStore
	Entries   *EntryStore
	Finance   *FinanceStore

	Attendance *AttendanceStore
}

func New(db *sql.DB) *Store {
	s := newStore(db)
	s.db = db
	return s
}

func newStore(db DBTX) *Store {
	return &Store{
		Academies: NewAcademyStore(db),
		Players:   NewPlayerStore(db),
		Entries:   NewEntryStore(db),
		Finance:   NewFinanceStore(db),

		Attendance: NewAttendanceStore(db),
	}
}

// WithTx runs fn against stores bound to a single transaction, committing
// only if fn returns nil.
func (s *Store) WithTx(fn func(tx *Store) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(newStore(tx)); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadAcademyData reads everything a report needs for one academy.
func (s *Store) LoadAcademyData(academyID string) (*internal.AcademyData, error) {
	academy, err := s.Academies.Get(academyID)
	if err != nil {
		return nil, err
	}
	data := &internal.AcademyData{Academy: *academy}

	if data.Players, err = s.Players.List(academyID); err != nil {
		return nil, err
	}
	if data.Expenses, err = s.Finance.ListExpenses(academyID); err != nil {
		return nil, err
	}
	if data.Coaches, err = s.Finance.ListCoaches(academyID); err != nil {
		return nil, err
	}
	if data.CoachSalaries, err = s.Finance.ListCoachSalaries(academyID); err != nil {
		return nil, err
	}
	if data.RevenueItems, err = s.Finance.ListRevenueItems(academyID); err != nil {
		return nil, err
	}
	return data, nil
}

// ImportResult counts the rows written by ImportAcademyData.
type ImportResult struct {
	AcademyID     string
	Players       int
	Entries       int
	Expenses      int
	Coaches       int
	CoachSalaries int
	RevenueItems  int
}

// ImportAcademyData stores a loaded data file as a new academy in one
// transaction. Importing the same academy ID twice fails with ErrAcademyExists.
func (s *Store) ImportAcademyData(data internal.AcademyData) (ImportResult, error) {
	var res ImportResult
	err := s.WithTx(func(tx *Store) error {
		if data.Academy.ID != "" {
			_, err := tx.Academies.Get(data.Academy.ID)
			if err == nil {
				return fmt.Errorf("%w: %s", ErrAcademyExists, data.Academy.ID)
			}
			if !errors.Is(err, internal.ErrNotFound) {
				return err
			}
		}

		academy, err := tx.Academies.create(data.Academy.ID, data.Academy.Name, data.Academy.Currency)
		if err != nil {
			return err
		}
		res.AcademyID = academy.ID

		for _, p := range data.Players {
			created, err := tx.Players.Create(academy.ID, p)
			if err != nil {
				return fmt.Errorf("import player %q: %w", p.Name, err)
			}
			res.Players++
			for _, e := range p.Entries {
				if _, err := tx.Entries.insert(created.ID, e); err != nil {
					return fmt.Errorf("import entry for %q: %w", p.Name, err)
				}
				res.Entries++
			}
		}

		for _, e := range data.Expenses {
			if _, err := tx.Finance.AddExpense(academy.ID, e); err != nil {
				return err
			}
			res.Expenses++
		}

		// Coach IDs may be regenerated; salaries follow the mapping.
		coachIDs := map[string]string{}
		for _, c := range data.Coaches {
			created, err := tx.Finance.AddCoach(academy.ID, c)
			if err != nil {
				return err
			}
			coachIDs[c.ID] = created.ID
			res.Coaches++
		}
		for _, cs := range data.CoachSalaries {
			if id, ok := coachIDs[cs.CoachID]; ok {
				cs.CoachID = id
			}
			if _, err := tx.Finance.AddCoachSalary(academy.ID, cs); err != nil {
				return err
			}
			res.CoachSalaries++
		}

		for _, r := range data.RevenueItems {
			if _, err := tx.Finance.AddRevenueItem(academy.ID, r); err != nil {
				return err
			}
			res.RevenueItems++
		}
		return nil
	})
	return res, err
}

func formatDate(t time.Time) string {
	return t.Format(internal.DateLayout)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(internal.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("stored date %q: %w", s, err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
