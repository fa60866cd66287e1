package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mohammadazar1/acad/internal"
)

type PlayerStore struct {
	db DBTX
}

func NewPlayerStore(db DBTX) *PlayerStore {
	return &PlayerStore{db: db}
}

func scanPlayer(scanner interface{ Scan(...any) error }) (*internal.Player, error) {
	var p internal.Player
	var enrolled, plan string
	var active, autoRenew int

	err := scanner.Scan(
		&p.ID, &p.Name, &p.Phone, &p.Age, &p.Sport, &p.Division,
		&enrolled, &plan, &p.Price, &active, &autoRenew,
	)
	if err != nil {
		return nil, err
	}

	if p.EnrollmentDate, err = parseDate(enrolled); err != nil {
		return nil, err
	}
	p.Plan = internal.PlanKind(plan)
	p.Active = active != 0
	p.AutoRenew = autoRenew != 0
	return &p, nil
}

const playerCols = `id, name, phone, age, sport, division, enrollment_date, plan, price, active, auto_renew`

// Create stores a new player under a generated ID. Entries on p are ignored;
// record them through EntryStore.
func (s *PlayerStore) Create(academyID string, p internal.Player) (*internal.Player, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("player name is required")
	}
	if p.EnrollmentDate.IsZero() {
		return nil, fmt.Errorf("%w: missing enrollment date", internal.ErrInvalidDate)
	}
	account := p.Account()
	account.Transactions = nil
	if err := internal.ValidateAccount(account); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO players (id, academy_id, name, phone, age, sport, division, enrollment_date, plan, price, active, auto_renew)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, academyID, p.Name, p.Phone, p.Age, p.Sport, p.Division,
		formatDate(p.EnrollmentDate), string(p.Plan), p.Price.String(),
		boolToInt(p.Active), boolToInt(p.AutoRenew),
	)
	if err != nil {
		return nil, fmt.Errorf("insert player: %w", err)
	}
	return s.Get(academyID, id)
}

// Get returns a player of the academy with their ledger entries.
func (s *PlayerStore) Get(academyID, id string) (*internal.Player, error) {
	row := s.db.QueryRow(`SELECT `+playerCols+` FROM players WHERE academy_id = ? AND id = ?`, academyID, id)
	p, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player %s: %w", id, internal.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}

	entries, err := NewEntryStore(s.db).ListForPlayer(id)
	if err != nil {
		return nil, err
	}
	p.Entries = entries
	return p, nil
}

// Resolve finds a player by ID or case-insensitive name.
func (s *PlayerStore) Resolve(academyID, idOrName string) (*internal.Player, error) {
	var id string
	err := s.db.QueryRow(
		`SELECT id FROM players WHERE academy_id = ? AND (id = ? OR name = ? COLLATE NOCASE)
		 ORDER BY id = ? DESC, created_at LIMIT 1`,
		academyID, idOrName, idOrName, idOrName,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player %q: %w", idOrName, internal.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve player: %w", err)
	}
	return s.Get(academyID, id)
}

// List returns the academy's players ordered by name, each with their entries.
func (s *PlayerStore) List(academyID string) ([]internal.Player, error) {
	rows, err := s.db.Query(`SELECT `+playerCols+` FROM players WHERE academy_id = ? ORDER BY name COLLATE NOCASE, created_at`, academyID)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	var players []internal.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, *p)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Entries are read after the player rows are closed; the pool holds a
	// single connection.
	entries, err := NewEntryStore(s.db).ListForAcademy(academyID)
	if err != nil {
		return nil, err
	}
	for i := range players {
		players[i].Entries = entries[players[i].ID]
	}
	return players, nil
}

// SetActive activates or deactivates a player.
func (s *PlayerStore) SetActive(academyID, id string, active bool) error {
	res, err := s.db.Exec(`UPDATE players SET active = ? WHERE academy_id = ? AND id = ?`, boolToInt(active), academyID, id)
	if err != nil {
		return fmt.Errorf("update player: %w", err)
	}
	return requireOneRow(res, "player "+id)
}

// Delete removes a player and, by cascade, their ledger entries and
// attendance.
func (s *PlayerStore) Delete(academyID, id string) error {
	res, err := s.db.Exec(`DELETE FROM players WHERE academy_id = ? AND id = ?`, academyID, id)
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	return requireOneRow(res, "player "+id)
}

func requireOneRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, internal.ErrNotFound)
	}
	return nil
}
