package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/esports-bracket/internal/bracket"
	"github.com/AdamBeresnev/esports-bracket/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type MatchService struct {
	db         *sqlx.DB
	store      *store.TournamentStore
	propagator propagator
}

func NewMatchService(db *sqlx.DB, store *store.TournamentStore) *MatchService {
	return &MatchService{db: db, store: store, propagator: propagator{store: store}}
}

// ReportResult records a participant's reported score. The higher score wins; draws are
// rejected. A match carrying a dispute flag ends up DISPUTED instead of REPORTED.
// The winner is not propagated until the result is verified.
func (s *MatchService) ReportResult(ctx context.Context, matchID uuid.UUID, scoreA, scoreB int, reporterID uuid.UUID) (*bracket.Match, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	match, err := s.store.GetMatchTx(ctx, tx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	if err := s.authorizeReporter(ctx, tx, match, reporterID); err != nil {
		return nil, err
	}

	if match.State == bracket.MatchVerified {
		return nil, bracket.NewValidationError("Match result has already been verified.")
	}
	a, b := match.SideA(), match.SideB()
	if a.IsEmpty() || b.IsEmpty() {
		return nil, bracket.NewValidationError("Match is waiting for an opponent.")
	}
	if scoreA < 0 || scoreB < 0 {
		return nil, bracket.NewValidationError("Scores cannot be negative.")
	}
	if scoreA == scoreB {
		return nil, bracket.ErrDraw
	}

	match.ScoreA = &scoreA
	match.ScoreB = &scoreB
	match.ReportedBy = &reporterID
	if scoreA > scoreB {
		match.SetWinner(a)
	} else {
		match.SetWinner(b)
	}

	match.State = bracket.MatchReported
	if match.Disputed {
		match.State = bracket.MatchDisputed
	}

	if err := s.save(ctx, tx, match); err != nil {
		return nil, err
	}

	slog.Info("match result reported",
		"match_id", match.ID, "reporter_id", reporterID,
		"score_a", scoreA, "score_b", scoreB, "state", match.State)
	return match, tx.Commit()
}

// authorizeReporter accepts either user of a solo match or the captain of either team.
func (s *MatchService) authorizeReporter(ctx context.Context, tx *sqlx.Tx, match *bracket.Match, reporterID uuid.UUID) error {
	for _, side := range []bracket.Side{match.SideA(), match.SideB()} {
		switch side.Kind() {
		case bracket.SideUser:
			if side.ID() == reporterID {
				return nil
			}
		case bracket.SideTeam:
			team, err := s.store.GetTeamTx(ctx, tx, side.ID())
			if err != nil {
				return fmt.Errorf("failed to get team: %w", err)
			}
			if team.CaptainID == reporterID {
				return nil
			}
		}
	}

	if match.IsSoloMatch() {
		return bracket.ErrNotParticipant
	}
	return bracket.ErrNotCaptain
}

// VerifyAndApply confirms a reported result and moves the winner on.
func (s *MatchService) VerifyAndApply(ctx context.Context, matchID uuid.UUID) (*bracket.Match, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	match, err := s.store.GetMatchTx(ctx, tx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	if match.Winner().IsEmpty() {
		return nil, bracket.NewValidationError("Match has no result to verify.")
	}
	if match.Disputed {
		return nil, bracket.NewValidationError("Match is disputed; an organizer has to set the winner.")
	}

	match.State = bracket.MatchVerified
	if err := s.save(ctx, tx, match); err != nil {
		return nil, err
	}
	if _, err := s.propagator.propagate(ctx, tx, match); err != nil {
		return nil, err
	}

	slog.Info("match verified", "match_id", match.ID, "winner", match.WinnerSlot())
	return match, tx.Commit()
}

// AdminSetWinner is the organizer override: side "a" or "b" wins regardless of scores,
// any dispute is cleared and the winner is propagated.
func (s *MatchService) AdminSetWinner(ctx context.Context, matchID uuid.UUID, who string) (*bracket.Match, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	match, err := s.store.GetMatchTx(ctx, tx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	side, ok := match.Slot(who)
	if !ok {
		return nil, bracket.NewValidationError(`Winner must be side "a" or "b".`)
	}
	if side.IsEmpty() {
		return nil, bracket.NewValidationError("That side of the match is empty.")
	}

	previous := match.Winner()
	wasVerified := match.State == bracket.MatchVerified

	match.SetWinner(side)
	match.Disputed = false
	match.State = bracket.MatchVerified
	if err := s.save(ctx, tx, match); err != nil {
		return nil, err
	}

	if wasVerified {
		_, err = s.propagator.replace(ctx, tx, match, previous)
	} else {
		_, err = s.propagator.propagate(ctx, tx, match)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("match winner set by organizer", "match_id", match.ID, "winner", who)
	return match, tx.Commit()
}

// SetDisputed is the hook for the dispute desk. Raising the flag on a reported match moves it
// to DISPUTED, clearing it moves it back to REPORTED.
func (s *MatchService) SetDisputed(ctx context.Context, matchID uuid.UUID, disputed bool) (*bracket.Match, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	match, err := s.store.GetMatchTx(ctx, tx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	if match.State == bracket.MatchVerified {
		return nil, bracket.NewValidationError("Verified matches cannot be disputed.")
	}

	match.Disputed = disputed
	switch {
	case disputed && match.State == bracket.MatchReported:
		match.State = bracket.MatchDisputed
	case !disputed && match.State == bracket.MatchDisputed:
		match.State = bracket.MatchReported
	}

	if err := s.save(ctx, tx, match); err != nil {
		return nil, err
	}

	slog.Info("match dispute flag changed", "match_id", match.ID, "disputed", disputed)
	return match, tx.Commit()
}

func (s *MatchService) GetMatch(ctx context.Context, matchID uuid.UUID) (*bracket.Match, error) {
	return s.store.GetMatch(ctx, matchID)
}

func (s *MatchService) save(ctx context.Context, tx *sqlx.Tx, match *bracket.Match) error {
	return s.propagator.save(ctx, tx, match)
}
