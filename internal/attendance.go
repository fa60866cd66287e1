package internal

import (
	"sort"
	"time"
)

// AttendanceRecord marks one player present or absent at one session.
type AttendanceRecord struct {
	PlayerID string
	Division string
	Date     time.Time
	Present  bool
}

// AttendanceSummary counts a player's sessions in one month.
type AttendanceSummary struct {
	PlayerID   string
	PlayerName string
	Present    int
	Total      int
}

// Rate is the share of sessions attended, 0 when no sessions were recorded.
func (s AttendanceSummary) Rate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Present) / float64(s.Total)
}

// MonthlyAttendance counts present and recorded sessions per player in the
// given month. Every player gets a summary, even with no sessions; records of
// players not in the list are ignored. Summaries follow the order of players.
func MonthlyAttendance(players []Player, records []AttendanceRecord, year int, month time.Month) []AttendanceSummary {
	index := make(map[string]int, len(players))
	summaries := make([]AttendanceSummary, len(players))
	for i, p := range players {
		index[p.ID] = i
		summaries[i] = AttendanceSummary{PlayerID: p.ID, PlayerName: p.Name}
	}

	for _, r := range records {
		if r.Date.Year() != year || r.Date.Month() != month {
			continue
		}
		i, ok := index[r.PlayerID]
		if !ok {
			continue
		}
		summaries[i].Total++
		if r.Present {
			summaries[i].Present++
		}
	}
	return summaries
}

// SessionDates returns the distinct dates found in records, oldest first.
func SessionDates(records []AttendanceRecord) []time.Time {
	seen := map[time.Time]bool{}
	var dates []time.Time
	for _, r := range records {
		if !seen[r.Date] {
			seen[r.Date] = true
			dates = append(dates, r.Date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// PlayersInDivision returns the players of a division, optionally only the
// active ones.
func PlayersInDivision(players []Player, division string, activeOnly bool) []Player {
	var out []Player
	for _, p := range players {
		if p.Division != division {
			continue
		}
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	return out
}
