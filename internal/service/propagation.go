package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/esports-bracket/internal/bracket"
	"github.com/AdamBeresnev/esports-bracket/internal/store"
	"github.com/jmoiron/sqlx"
)

// propagator moves a decided match's winner one hop into its successor.
type propagator struct {
	store *store.TournamentStore
}

// propagate writes the winner of match into the first empty side of its successor and
// returns the successor, or nil when nothing was written. Finals have no successor, and a
// successor that already holds the winner or has both sides filled is left alone.
func (p propagator) propagate(ctx context.Context, tx *sqlx.Tx, match *bracket.Match) (*bracket.Match, error) {
	winner := match.Winner()
	if winner.IsEmpty() {
		return nil, nil
	}

	next, err := p.successor(ctx, tx, match)
	if err != nil || next == nil {
		return nil, err
	}

	switch {
	case next.SideA() == winner || next.SideB() == winner:
		return nil, nil
	case next.SideA().IsEmpty():
		next.SetSideA(winner)
	case next.SideB().IsEmpty():
		next.SetSideB(winner)
	default:
		slog.Warn("successor already full, winner not propagated",
			"match_id", match.ID, "successor_id", next.ID)
		return nil, nil
	}

	if err := p.save(ctx, tx, next); err != nil {
		return nil, err
	}

	slog.Debug("winner propagated", "match_id", match.ID, "successor_id", next.ID,
		"round", next.RoundNumber, "position", next.Position)
	return next, nil
}

// replace swaps a previously propagated winner for a corrected one. The successor must not
// have been decided yet.
func (p propagator) replace(ctx context.Context, tx *sqlx.Tx, match *bracket.Match, previous bracket.Side) (*bracket.Match, error) {
	winner := match.Winner()
	if previous.IsEmpty() || previous == winner {
		return p.propagate(ctx, tx, match)
	}

	next, err := p.successor(ctx, tx, match)
	if err != nil || next == nil {
		return nil, err
	}

	switch previous {
	case next.SideA():
		next.SetSideA(winner)
	case next.SideB():
		next.SetSideB(winner)
	default:
		return p.propagate(ctx, tx, match)
	}

	if !next.Winner().IsEmpty() {
		return nil, bracket.NewValidationError("The next match already has a result; correct that match first.")
	}
	if err := p.save(ctx, tx, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (p propagator) successor(ctx context.Context, tx *sqlx.Tx, match *bracket.Match) (*bracket.Match, error) {
	finalRound, err := p.store.MaxRoundTx(ctx, tx, match.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get final round: %w", err)
	}
	if match.RoundNumber >= finalRound {
		return nil, nil
	}

	round, position := bracket.Successor(match.RoundNumber, match.Position)
	next, err := p.store.GetMatchAtTx(ctx, tx, match.TournamentID, round, position)
	if err != nil {
		return nil, fmt.Errorf("failed to get successor of round %d position %d: %w", match.RoundNumber, match.Position, err)
	}
	return next, nil
}

func (p propagator) save(ctx context.Context, tx *sqlx.Tx, match *bracket.Match) error {
	if err := match.Validate(); err != nil {
		return err
	}
	if err := p.store.UpdateMatch(ctx, tx, match); err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}
	return nil
}
