package store

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mohammadazar1/acad/internal"
)

// EntryStore records payments and discounts. Entries are append-only; a
// mistake is corrected by deleting the entry (a reversal).
type EntryStore struct {
	db DBTX
}

func NewEntryStore(db DBTX) *EntryStore {
	return &EntryStore{db: db}
}

func scanEntry(scanner interface{ Scan(...any) error }) (*internal.LedgerEntry, string, error) {
	var e internal.LedgerEntry
	var playerID, date string
	if err := scanner.Scan(&e.ID, &playerID, &e.Amount, &date, &e.Note); err != nil {
		return nil, "", err
	}
	var err error
	if e.Date, err = parseDate(date); err != nil {
		return nil, "", err
	}
	return &e, playerID, nil
}

const entryCols = `id, player_id, amount, entry_date, note`

// RecordPayment adds a payment. The amount must be positive.
func (s *EntryStore) RecordPayment(academyID, playerID string, amount decimal.Decimal, date time.Time, note string) (*internal.LedgerEntry, error) {
	if err := requirePositive("payment", amount); err != nil {
		return nil, err
	}
	return s.add(academyID, playerID, internal.LedgerEntry{Amount: amount, Date: date, Note: note})
}

// ApplyDiscount adds a discount. The amount must be positive; it is stored
// negated.
func (s *EntryStore) ApplyDiscount(academyID, playerID string, amount decimal.Decimal, date time.Time, note string) (*internal.LedgerEntry, error) {
	if err := requirePositive("discount", amount); err != nil {
		return nil, err
	}
	return s.add(academyID, playerID, internal.LedgerEntry{Amount: amount.Neg(), Date: date, Note: note})
}

func requirePositive(kind string, amount decimal.Decimal) error {
	if amount.IsZero() {
		return internal.ErrZeroAmount
	}
	if amount.IsNegative() {
		return fmt.Errorf("%s amount must be positive, got %s", kind, amount)
	}
	return nil
}

func (s *EntryStore) add(academyID, playerID string, e internal.LedgerEntry) (*internal.LedgerEntry, error) {
	if err := s.requirePlayer(academyID, playerID); err != nil {
		return nil, err
	}
	return s.insert(playerID, e)
}

func (s *EntryStore) requirePlayer(academyID, playerID string) error {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM players WHERE academy_id = ? AND id = ?`, academyID, playerID).Scan(&n); err != nil {
		return fmt.Errorf("check player: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("player %s: %w", playerID, internal.ErrNotFound)
	}
	return nil
}

func (s *EntryStore) insert(playerID string, e internal.LedgerEntry) (*internal.LedgerEntry, error) {
	if err := internal.ValidateEntry(e); err != nil {
		return nil, err
	}
	result, err := s.db.Exec(
		`INSERT INTO ledger_entries (player_id, amount, entry_date, note) VALUES (?, ?, ?, ?)`,
		playerID, e.Amount.String(), formatDate(e.Date), e.Note,
	)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	e.ID = id
	return &e, nil
}

// Delete reverses an entry. It fails with ErrNotFound unless the entry
// belongs to the given player of the academy.
func (s *EntryStore) Delete(academyID, playerID string, entryID int64) error {
	res, err := s.db.Exec(
		`DELETE FROM ledger_entries
		 WHERE id = ? AND player_id = ?
		   AND player_id IN (SELECT id FROM players WHERE academy_id = ?)`,
		entryID, playerID, academyID,
	)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return requireOneRow(res, fmt.Sprintf("entry %d", entryID))
}

// ListForPlayer returns a player's entries in insertion order.
func (s *EntryStore) ListForPlayer(playerID string) ([]internal.LedgerEntry, error) {
	rows, err := s.db.Query(`SELECT `+entryCols+` FROM ledger_entries WHERE player_id = ? ORDER BY id`, playerID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []internal.LedgerEntry
	for rows.Next() {
		e, _, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// ListForAcademy returns every entry of the academy keyed by player ID.
func (s *EntryStore) ListForAcademy(academyID string) (map[string][]internal.LedgerEntry, error) {
	rows, err := s.db.Query(
		`SELECT e.id, e.player_id, e.amount, e.entry_date, e.note
		 FROM ledger_entries e JOIN players p ON p.id = e.player_id
		 WHERE p.academy_id = ? ORDER BY e.id`,
		academyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := map[string][]internal.LedgerEntry{}
	for rows.Next() {
		e, playerID, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries[playerID] = append(entries[playerID], *e)
	}
	return entries, rows.Err()
}
