package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mohammadazar1/acad/internal"
)

type AcademyStore struct {
	db DBTX
}

func NewAcademyStore(db DBTX) *AcademyStore {
	return &AcademyStore{db: db}
}

func scanAcademy(scanner interface{ Scan(...any) error }) (*internal.Academy, error) {
	var a internal.Academy
	if err := scanner.Scan(&a.ID, &a.Name, &a.Currency); err != nil {
		return nil, err
	}
	return &a, nil
}

const academyCols = `id, name, currency`

// Create stores a new academy with a generated ID.
func (s *AcademyStore) Create(name, currency string) (*internal.Academy, error) {
	return s.create("", name, currency)
}

func (s *AcademyStore) create(id, name, currency string) (*internal.Academy, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("academy name is required")
	}
	if id == "" {
		id = uuid.NewString()
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = internal.DefaultCurrency
	}

	if _, err := s.db.Exec(`INSERT INTO academies (id, name, currency) VALUES (?, ?, ?)`, id, name, currency); err != nil {
		return nil, fmt.Errorf("insert academy: %w", err)
	}
	return s.Get(id)
}

func (s *AcademyStore) Get(id string) (*internal.Academy, error) {
	row := s.db.QueryRow(`SELECT `+academyCols+` FROM academies WHERE id = ?`, id)
	a, err := scanAcademy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("academy %s: %w", id, internal.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get academy: %w", err)
	}
	return a, nil
}

// Resolve finds an academy by ID or case-insensitive name.
func (s *AcademyStore) Resolve(idOrName string) (*internal.Academy, error) {
	row := s.db.QueryRow(
		`SELECT `+academyCols+` FROM academies WHERE id = ? OR name = ? COLLATE NOCASE ORDER BY id = ? DESC, created_at LIMIT 1`,
		idOrName, idOrName, idOrName,
	)
	a, err := scanAcademy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("academy %q: %w", idOrName, internal.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve academy: %w", err)
	}
	return a, nil
}

func (s *AcademyStore) List() ([]internal.Academy, error) {
	rows, err := s.db.Query(`SELECT ` + academyCols + ` FROM academies ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list academies: %w", err)
	}
	defer rows.Close()

	var academies []internal.Academy
	for rows.Next() {
		a, err := scanAcademy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan academy: %w", err)
		}
		academies = append(academies, *a)
	}
	return academies, rows.Err()
}
