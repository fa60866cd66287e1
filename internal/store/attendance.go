package store

import (
	"fmt"
	"sort"
	"time"

	"github.com/mohammadazar1/acad/internal"
)

// AttendanceStore keeps one present/absent mark per player, division and day.
type AttendanceStore struct {
	db DBTX
}

func NewAttendanceStore(db DBTX) *AttendanceStore {
	return &AttendanceStore{db: db}
}

// Record stores the marks (player ID to present) of one session. Marks for
// players that are inactive or outside the division are skipped. Recording
// the same session again overwrites the earlier marks. It returns the number
// of marks stored.
func (s *AttendanceStore) Record(academyID, division string, date time.Time, marks map[string]bool) (int, error) {
	eligible, err := s.activeInDivision(academyID, division)
	if err != nil {
		return 0, err
	}

	ids := make([]string, 0, len(marks))
	for id := range marks {
		if eligible[id] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	for _, id := range ids {
		_, err := s.db.Exec(
			`INSERT INTO attendance (academy_id, player_id, division, attendance_date, present)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (academy_id, attendance_date, division, player_id)
			 DO UPDATE SET present = excluded.present`,
			academyID, id, division, formatDate(date), boolToInt(marks[id]),
		)
		if err != nil {
			return 0, fmt.Errorf("upsert attendance: %w", err)
		}
	}
	return len(ids), nil
}

func (s *AttendanceStore) activeInDivision(academyID, division string) (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT id FROM players WHERE academy_id = ? AND division = ? AND active = 1`, academyID, division)
	if err != nil {
		return nil, fmt.Errorf("list division players: %w", err)
	}
	defer rows.Close()

	ids := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan player id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// List returns the marks recorded between from and to, inclusive, ordered by
// date. An empty division lists every division.
func (s *AttendanceStore) List(academyID, division string, from, to time.Time) ([]internal.AttendanceRecord, error) {
	rows, err := s.db.Query(
		`SELECT player_id, division, attendance_date, present FROM attendance
		 WHERE academy_id = ? AND (? = '' OR division = ?)
		   AND attendance_date >= ? AND attendance_date <= ?
		 ORDER BY attendance_date, division, player_id`,
		academyID, division, division, formatDate(from), formatDate(to),
	)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	var records []internal.AttendanceRecord
	for rows.Next() {
		var r internal.AttendanceRecord
		var day string
		var present int
		if err := rows.Scan(&r.PlayerID, &r.Division, &day, &present); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		if r.Date, err = parseDate(day); err != nil {
			return nil, err
		}
		r.Present = present != 0
		records = append(records, r)
	}
	return records, rows.Err()
}
