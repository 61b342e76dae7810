package bracket

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "PENDING"
	RegistrationConfirmed RegistrationStatus = "CONFIRMED"
	RegistrationCancelled RegistrationStatus = "CANCELLED"
)

type Team struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Tag       string    `db:"tag"`
	CaptainID uuid.UUID `db:"captain_id"`
	CreatedAt time.Time `db:"created_at"`
}

// Label is how a team is shown in the bracket, e.g. "[ALP] Alpha".
func (t *Team) Label() string {
	if t.Tag == "" {
		return t.Name
	}
	return fmt.Sprintf("[%s] %s", t.Tag, t.Name)
}

// Registration is an entry into a tournament by exactly one of a user or a team.
type Registration struct {
	ID           uuid.UUID          `db:"id"`
	TournamentID uuid.UUID          `db:"tournament_id"`
	UserID       *uuid.UUID         `db:"user_id"`
	TeamID       *uuid.UUID         `db:"team_id"`
	Status       RegistrationStatus `db:"status"`
	Seq          int                `db:"seq"`
	CreatedAt    time.Time          `db:"created_at"`
}

// Participant is a confirmed entrant as the bracket sees it.
type Participant struct {
	Side  Side
	Label string
}
