package service

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/esports-bracket/internal/bracket"
	"github.com/AdamBeresnev/esports-bracket/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// collectParticipants returns the confirmed entrants in registration order.
func (s *BracketService) collectParticipants(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]bracket.Participant, error) {
	entries, err := s.store.GetConfirmedEntriesTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get confirmed registrations: %w", err)
	}
	return participantsFromEntries(entries), nil
}

func participantsFromEntries(entries []store.ConfirmedEntry) []bracket.Participant {
	participants := make([]bracket.Participant, 0, len(entries))
	for _, e := range entries {
		switch {
		case e.UserID != nil:
			participants = append(participants, bracket.Participant{
				Side:  bracket.UserSide(*e.UserID),
				Label: e.Username,
			})
		case e.TeamID != nil:
			team := bracket.Team{Name: e.TeamName, Tag: e.TeamTag}
			participants = append(participants, bracket.Participant{
				Side:  bracket.TeamSide(*e.TeamID),
				Label: team.Label(),
			})
		}
	}
	return participants
}
