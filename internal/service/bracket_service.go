package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/esports-bracket/internal/bracket"
	"github.com/AdamBeresnev/esports-bracket/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type BracketService struct {
	db         *sqlx.DB
	store      *store.TournamentStore
	propagator propagator
}

func NewBracketService(db *sqlx.DB, store *store.TournamentStore) *BracketService {
	return &BracketService{db: db, store: store, propagator: propagator{store: store}}
}

type GenerationResult struct {
	TournamentID uuid.UUID
	Participants int
	Capacity     int
	Rounds       int
	BestOf       int
	Byes         int
	Matches      int
}

// GenerateBracket throws away the tournament's matches and rebuilds the single elimination
// tree from its confirmed registrations, advancing round 1 byes. Fails with
// bracket.ErrBracketLocked, without touching any match, if the bracket is locked.
// Fewer than two entrants leave the bracket empty.
func (s *BracketService) GenerateBracket(ctx context.Context, tournamentID uuid.UUID) (*GenerationResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := s.store.GetTournamentTx(ctx, tx, tournamentID); err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}

	b, err := s.getOrCreateBracket(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if b.IsLocked {
		return nil, bracket.ErrBracketLocked
	}

	participants, err := s.collectParticipants(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.DeleteMatches(ctx, tx, tournamentID); err != nil {
		return nil, fmt.Errorf("failed to delete existing matches: %w", err)
	}

	result := &GenerationResult{TournamentID: tournamentID, Participants: len(participants)}
	if len(participants) < 2 {
		slog.Info("not enough participants, bracket left empty",
			"tournament_id", tournamentID, "participants", len(participants))
		return result, tx.Commit()
	}

	cfg, err := s.store.GetGameConfigTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game config: %w", err)
	}

	result.BestOf = cfg.Format().BestOf()
	result.Capacity = calcBracketSize(len(participants))
	result.Rounds = calcRounds(result.Capacity)

	matches := buildSkeleton(tournamentID, result.Rounds, result.BestOf)
	if err := s.store.CreateMatches(ctx, tx, matches); err != nil {
		return nil, fmt.Errorf("failed to create matches: %w", err)
	}
	result.Matches = len(matches)

	// Round 1 is the head of the slice
	round1 := make([]*bracket.Match, 0, result.Capacity/2)
	for i := range matches {
		if matches[i].RoundNumber == 1 {
			round1 = append(round1, &matches[i])
		}
	}

	for _, match := range assignRound1(round1, participants) {
		if err := match.Validate(); err != nil {
			return nil, err
		}
		if err := s.store.UpdateMatch(ctx, tx, match); err != nil {
			return nil, fmt.Errorf("failed to assign round 1 match %d: %w", match.Position, err)
		}
	}

	result.Byes, err = s.advanceByes(ctx, tx, round1)
	if err != nil {
		return nil, err
	}

	slog.Info("bracket generated",
		"tournament_id", tournamentID,
		"participants", result.Participants,
		"capacity", result.Capacity,
		"rounds", result.Rounds,
		"best_of", result.BestOf,
		"byes", result.Byes)

	return result, tx.Commit()
}

// SetLocked locks or unlocks regeneration, creating the bracket record if needed.
func (s *BracketService) SetLocked(ctx context.Context, tournamentID uuid.UUID, locked bool) (*bracket.Bracket, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := s.store.GetTournamentTx(ctx, tx, tournamentID); err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}

	b, err := s.getOrCreateBracket(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetBracketLocked(ctx, tx, b.ID, locked); err != nil {
		return nil, fmt.Errorf("failed to update bracket lock: %w", err)
	}
	b.IsLocked = locked

	slog.Info("bracket lock changed", "tournament_id", tournamentID, "locked", locked)
	return b, tx.Commit()
}

func (s *BracketService) getOrCreateBracket(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (*bracket.Bracket, error) {
	b, err := s.store.GetBracketTx(ctx, tx, tournamentID)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get bracket: %w", err)
	}

	b = &bracket.Bracket{ID: uuid.New(), TournamentID: tournamentID}
	if err := s.store.CreateBracket(ctx, tx, b); err != nil {
		return nil, fmt.Errorf("failed to create bracket: %w", err)
	}
	return b, nil
}
