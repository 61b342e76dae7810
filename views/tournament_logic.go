package views

import (
	"sort"

	"github.com/AdamBeresnev/esports-bracket/internal/bracket"
	"github.com/google/uuid"
)

type BracketData struct {
	Rounds    map[int][]bracket.Match
	RoundNums []int
	Labels    map[uuid.UUID]string
	// Reporters is keyed by user id, see ReporterLabel.
	Reporters map[uuid.UUID]string
}

func PrepareBracketData(participants []bracket.Participant, matches []bracket.Match) BracketData {
	labels := make(map[uuid.UUID]string, len(participants))
	for _, p := range participants {
		labels[p.Side.ID()] = p.Label
	}

	rounds := make(map[int][]bracket.Match)
	var roundNums []int

	for _, m := range matches {
		if _, exists := rounds[m.RoundNumber]; !exists {
			roundNums = append(roundNums, m.RoundNumber)
		}
		rounds[m.RoundNumber] = append(rounds[m.RoundNumber], m)
	}

	sort.Ints(roundNums)
	for _, r := range roundNums {
		sort.Slice(rounds[r], func(i, j int) bool {
			return rounds[r][i].Position < rounds[r][j].Position
		})
	}

	return BracketData{
		Rounds:    rounds,
		RoundNums: roundNums,
		Labels:    labels,
	}
}

// SideLabel is what a bracket cell shows for a side.
func (d BracketData) SideLabel(side bracket.Side) string {
	if side.IsEmpty() {
		return "TBD"
	}
	if label, ok := d.Labels[side.ID()]; ok {
		return label
	}
	return "Unknown"
}

// SlotLabel labels side a or b of m.
func (d BracketData) SlotLabel(m bracket.Match, slot string) string {
	side, _ := m.Slot(slot)
	return d.SideLabel(side)
}

// ReporterLabel names whoever sent the current score, or "" when nobody reported one.
func (d BracketData) ReporterLabel(m bracket.Match) string {
	if m.ReportedBy == nil || m.IsBye {
		return ""
	}
	return d.Reporters[*m.ReportedBy]
}

// RoundName names the last rounds the way casters do.
func RoundName(round, total int) string {
	switch total - round {
	case 0:
		return "Grand Final"
	case 1:
		return "Semifinals"
	case 2:
		return "Quarterfinals"
	}
	return "Round " + itoa(round)
}
