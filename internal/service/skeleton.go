package service

import (
	"math/bits"

	"github.com/AdamBeresnev/esports-bracket/internal/bracket"
	"github.com/google/uuid"
)

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on.
// Fewer than 2 entrants don't make a bracket.
func calcBracketSize(count int) int {
	if count < 2 {
		return 0
	}

	size := 2
	for size < count {
		size <<= 1
	}
	return size
}

// calcRounds is log2 of a power of two bracket size.
func calcRounds(bracketSize int) int {
	if bracketSize < 2 {
		return 0
	}
	return bits.TrailingZeros(uint(bracketSize))
}

// buildSkeleton creates one empty match for every (round, position) of the tree,
// ordered by round then position.
func buildSkeleton(tournamentID uuid.UUID, rounds, bestOf int) []bracket.Match {
	if rounds < 1 {
		return nil
	}

	matches := make([]bracket.Match, 0, (1<<rounds)-1)
	for r := 1; r <= rounds; r++ {
		matchesInRound := 1 << (rounds - r)
		for p := 1; p <= matchesInRound; p++ {
			matches = append(matches, bracket.Match{
				ID:           uuid.New(),
				TournamentID: tournamentID,
				RoundNumber:  r,
				Position:     p,
				BestOf:       bestOf,
				State:        bracket.MatchScheduled,
			})
		}
	}
	return matches
}
