package service

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/esports-bracket/internal/bracket"
	"github.com/jmoiron/sqlx"
)

// byeWinner returns the lone entrant of a one sided match.
func byeWinner(match *bracket.Match) (bracket.Side, bool) {
	a, b := match.SideA(), match.SideB()
	switch {
	case !a.IsEmpty() && b.IsEmpty():
		return a, true
	case a.IsEmpty() && !b.IsEmpty():
		return b, true
	}
	return bracket.Side{}, false
}

// advanceByes walks round 1 in position order, declares the lone entrant of every one sided
// match the winner and pushes them into round 2. Returns how many byes were advanced.
func (s *BracketService) advanceByes(ctx context.Context, tx *sqlx.Tx, round1 []*bracket.Match) (int, error) {
	byes := 0
	for _, match := range round1 {
		winner, ok := byeWinner(match)
		if !ok {
			continue
		}

		match.SetWinner(winner)
		match.IsBye = true
		match.State = bracket.MatchVerified
		if err := match.Validate(); err != nil {
			return byes, err
		}
		if err := s.store.UpdateMatch(ctx, tx, match); err != nil {
			return byes, fmt.Errorf("failed to update bye match: %w", err)
		}
		if _, err := s.propagator.propagate(ctx, tx, match); err != nil {
			return byes, err
		}
		byes++
	}
	return byes, nil
}
