package bracket

import (
	"time"

	"github.com/google/uuid"
)

type MatchState string

const (
	MatchScheduled MatchState = "SCHEDULED"
	MatchReported  MatchState = "REPORTED"
	MatchDisputed  MatchState = "DISPUTED"
	MatchVerified  MatchState = "VERIFIED"
)

const (
	SlotA = "a"
	SlotB = "b"
)

type SideKind int

const (
	SideEmpty SideKind = iota
	SideUser
	SideTeam
)

// Side is one competing slot of a match: a user, a team or nobody. The zero value is empty.
type Side struct {
	kind SideKind
	id   uuid.UUID
}

func UserSide(id uuid.UUID) Side { return Side{kind: SideUser, id: id} }

func TeamSide(id uuid.UUID) Side { return Side{kind: SideTeam, id: id} }

func (s Side) Kind() SideKind { return s.kind }

func (s Side) ID() uuid.UUID { return s.id }

func (s Side) IsEmpty() bool { return s.kind == SideEmpty }

func (s Side) refs() (user *uuid.UUID, team *uuid.UUID) {
	id := s.id
	switch s.kind {
	case SideUser:
		return &id, nil
	case SideTeam:
		return nil, &id
	}
	return nil, nil
}

func sideFrom(user, team *uuid.UUID) Side {
	switch {
	case user != nil:
		return UserSide(*user)
	case team != nil:
		return TeamSide(*team)
	}
	return Side{}
}

type Match struct {
	ID           uuid.UUID `db:"id"`
	TournamentID uuid.UUID `db:"tournament_id"`

	// Position in the tree. Round 1 is the first round, positions start at 1.
	RoundNumber int `db:"round_number"`
	Position    int `db:"position"`
	BestOf      int `db:"best_of"`

	UserAID *uuid.UUID `db:"user_a_id"`
	TeamAID *uuid.UUID `db:"team_a_id"`
	UserBID *uuid.UUID `db:"user_b_id"`
	TeamBID *uuid.UUID `db:"team_b_id"`

	ScoreA *int `db:"score_a"`
	ScoreB *int `db:"score_b"`

	WinnerUserID *uuid.UUID `db:"winner_user_id"`
	WinnerTeamID *uuid.UUID `db:"winner_team_id"`

	// User who sent the latest score report.
	ReportedBy *uuid.UUID `db:"reported_by"`

	State    MatchState `db:"state"`
	Disputed bool       `db:"disputed"`
	IsBye    bool       `db:"is_bye"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (m *Match) SideA() Side { return sideFrom(m.UserAID, m.TeamAID) }

func (m *Match) SideB() Side { return sideFrom(m.UserBID, m.TeamBID) }

func (m *Match) SetSideA(s Side) { m.UserAID, m.TeamAID = s.refs() }

func (m *Match) SetSideB(s Side) { m.UserBID, m.TeamBID = s.refs() }

func (m *Match) Winner() Side { return sideFrom(m.WinnerUserID, m.WinnerTeamID) }

func (m *Match) SetWinner(s Side) { m.WinnerUserID, m.WinnerTeamID = s.refs() }

// Slot returns the side in slot "a" or "b".
func (m *Match) Slot(slot string) (Side, bool) {
	switch slot {
	case SlotA:
		return m.SideA(), true
	case SlotB:
		return m.SideB(), true
	}
	return Side{}, false
}

// IsSoloMatch reports whether the sides are filled by users rather than teams.
func (m *Match) IsSoloMatch() bool {
	return m.UserAID != nil || m.UserBID != nil
}

// WinnerSlot is "a", "b" or "" while undecided.
func (m *Match) WinnerSlot() string {
	w := m.Winner()
	switch {
	case w.IsEmpty():
		return ""
	case w == m.SideA():
		return SlotA
	case w == m.SideB():
		return SlotB
	}
	return ""
}

func (m *Match) IsWinner(slot string) bool {
	return m.State == MatchVerified && m.WinnerSlot() == slot
}

func (m *Match) IsLoser(slot string) bool {
	return m.State == MatchVerified && m.WinnerSlot() != "" && m.WinnerSlot() != slot
}

// Successor is the match receiving this match's winner: (round+1, ceil(position/2)).
func Successor(round, position int) (int, int) {
	return round + 1, (position + 1) / 2
}

// Validate checks field consistency before a match is written.
func (m *Match) Validate() error {
	if m.RoundNumber < 1 {
		return NewValidationError("Round number must be at least 1.")
	}
	if m.Position < 1 {
		return NewValidationError("Position must be at least 1.")
	}
	if m.BestOf < 1 {
		return NewValidationError("Best of must be at least 1.")
	}
	if m.UserAID != nil && m.TeamAID != nil {
		return NewValidationError("Side A cannot be both a user and a team.")
	}
	if m.UserBID != nil && m.TeamBID != nil {
		return NewValidationError("Side B cannot be both a user and a team.")
	}
	if m.WinnerUserID != nil && m.WinnerTeamID != nil {
		return NewValidationError("Winner cannot be both a user and a team.")
	}
	if (m.ScoreA != nil && *m.ScoreA < 0) || (m.ScoreB != nil && *m.ScoreB < 0) {
		return NewValidationError("Scores cannot be negative.")
	}

	a, b := m.SideA(), m.SideB()
	if !a.IsEmpty() && a == b {
		return NewValidationError("A participant cannot play against themselves.")
	}
	if w := m.Winner(); !w.IsEmpty() && w != a && w != b {
		return NewValidationError("Winner must be one of the match participants.")
	}

	switch m.State {
	case MatchScheduled, MatchReported, MatchDisputed, MatchVerified:
	default:
		return NewValidationError("Unknown match state.")
	}
	return nil
}
