package service

import "github.com/AdamBeresnev/esports-bracket/internal/bracket"

// assignRound1 fills round 1 two entrants at a time in registration order. Once only as many
// entrants remain as there are matches left, each of them gets a match alone, so every
// round 1 match has someone in it and the empty B sides are the byes.
// Returns the matches it changed.
func assignRound1(round1 []*bracket.Match, participants []bracket.Participant) []*bracket.Match {
	full := len(participants) - len(round1)
	if full < 0 {
		full = 0
	}

	modified := make([]*bracket.Match, 0, len(round1))
	next := 0
	for k, match := range round1 {
		if next >= len(participants) {
			break
		}

		match.SetSideA(participants[next].Side)
		next++
		if k < full && next < len(participants) {
			match.SetSideB(participants[next].Side)
			next++
		}
		modified = append(modified, match)
	}
	return modified
}
