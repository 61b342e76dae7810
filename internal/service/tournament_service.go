package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/esports-bracket/internal/bracket"
	"github.com/AdamBeresnev/esports-bracket/internal/middleware"
	"github.com/AdamBeresnev/esports-bracket/internal/store"
	users "github.com/AdamBeresnev/esports-bracket/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

type TournamentService struct {
	db        *sqlx.DB
	store     *store.TournamentStore
	userStore *store.UserStore
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore, userStore *store.UserStore) *TournamentService {
	return &TournamentService{db: db, store: store, userStore: userStore}
}

type TournamentData struct {
	Tournament   *bracket.Tournament
	Bracket      *bracket.Bracket
	Participants []bracket.Participant
	Matches      []bracket.Match
	NextMatchID  *uuid.UUID
	// Reporters names the users who sent the latest score of each reported match.
	Reporters map[uuid.UUID]string
}

// Labels maps side ids to display names for the views.
func (d *TournamentData) Labels() map[uuid.UUID]string {
	labels := make(map[uuid.UUID]string, len(d.Participants))
	for _, p := range d.Participants {
		labels[p.Side.ID()] = p.Label
	}
	return labels
}

func (s *TournamentService) GetTournamentData(ctx context.Context, id uuid.UUID) (*TournamentData, error) {
	data := &TournamentData{}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tournament, err := s.store.GetTournament(gCtx, id)
		if err != nil {
			return err
		}
		data.Tournament = tournament
		return nil
	})
	g.Go(func() error {
		b, err := s.store.GetBracket(gCtx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get bracket: %w", err)
		}
		data.Bracket = b
		return nil
	})
	g.Go(func() error {
		entries, err := s.store.GetConfirmedEntries(gCtx, id)
		if err != nil {
			return fmt.Errorf("failed to get participants: %w", err)
		}
		data.Participants = participantsFromEntries(entries)
		return nil
	})
	g.Go(func() error {
		matches, err := s.store.GetMatches(gCtx, id)
		if err != nil {
			return fmt.Errorf("failed to get matches: %w", err)
		}
		data.Matches = matches
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// The next match to play is the first playable one still waiting on a verified result
	for _, m := range data.Matches {
		if m.State != bracket.MatchVerified && !m.SideA().IsEmpty() && !m.SideB().IsEmpty() {
			matchID := m.ID
			data.NextMatchID = &matchID
			break
		}
	}

	reporters, err := s.reporterLabels(ctx, data.Matches)
	if err != nil {
		return nil, err
	}
	data.Reporters = reporters

	return data, nil
}

func (s *TournamentService) reporterLabels(ctx context.Context, matches []bracket.Match) (map[uuid.UUID]string, error) {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, m := range matches {
		if m.ReportedBy != nil && !seen[*m.ReportedBy] {
			seen[*m.ReportedBy] = true
			ids = append(ids, *m.ReportedBy)
		}
	}

	list, err := s.userStore.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get reporters: %w", err)
	}
	return users.Labels(list), nil
}

func (s *TournamentService) GetTournamentsForUser(ctx context.Context) ([]bracket.Tournament, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("user ID not found in the context")
	}
	return s.store.GetTournamentsByOwner(ctx, userID)
}

// IsOrganizer reports whether userID owns the tournament.
func (s *TournamentService) IsOrganizer(ctx context.Context, tournamentID, userID uuid.UUID) (bool, error) {
	tournament, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return false, err
	}
	return tournament.OwnerID == userID, nil
}

// CreateTournament creates a tournament owned by the user in the context. An empty game
// leaves the tournament without a game config, so matches are best of 1.
func (s *TournamentService) CreateTournament(ctx context.Context, name, game, matchFormat string) (uuid.UUID, error) {
	ownerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, fmt.Errorf("user ID not found in the context")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	tournament := bracket.Tournament{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Name:    name,
		Game:    game,
	}
	if err := s.store.CreateTournament(ctx, tx, &tournament); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	if game != "" {
		cfg := bracket.GameConfig{TournamentID: tournament.ID, Game: game, MatchFormat: matchFormat}
		if err := s.store.UpsertGameConfig(ctx, tx, &cfg); err != nil {
			return uuid.Nil, fmt.Errorf("failed to save game config: %w", err)
		}
	}

	return tournament.ID, tx.Commit()
}

func (s *TournamentService) CreateTeam(ctx context.Context, name, tag string, captainID uuid.UUID) (uuid.UUID, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	team := bracket.Team{ID: uuid.New(), Name: name, Tag: tag, CaptainID: captainID}
	if err := s.store.CreateTeam(ctx, tx, &team); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team.ID, tx.Commit()
}

func (s *TournamentService) RegisterUser(ctx context.Context, tournamentID, userID uuid.UUID) (uuid.UUID, error) {
	return s.register(ctx, &bracket.Registration{TournamentID: tournamentID, UserID: &userID})
}

func (s *TournamentService) RegisterTeam(ctx context.Context, tournamentID, teamID uuid.UUID) (uuid.UUID, error) {
	return s.register(ctx, &bracket.Registration{TournamentID: tournamentID, TeamID: &teamID})
}

func (s *TournamentService) register(ctx context.Context, r *bracket.Registration) (uuid.UUID, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	r.ID = uuid.New()
	r.Status = bracket.RegistrationPending
	if err := s.store.CreateRegistration(ctx, tx, r); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create registration: %w", err)
	}
	return r.ID, tx.Commit()
}

func (s *TournamentService) SetRegistrationStatus(ctx context.Context, registrationID uuid.UUID, status bracket.RegistrationStatus) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.store.UpdateRegistrationStatus(ctx, tx, registrationID, status); err != nil {
		return fmt.Errorf("failed to update registration: %w", err)
	}
	return tx.Commit()
}

func (s *TournamentService) ConfirmRegistration(ctx context.Context, registrationID uuid.UUID) error {
	return s.SetRegistrationStatus(ctx, registrationID, bracket.RegistrationConfirmed)
}
