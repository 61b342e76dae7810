package bracket

import (
	"time"

	"github.com/google/uuid"
)

type Tournament struct {
	ID        uuid.UUID `db:"id"`
	OwnerID   uuid.UUID `db:"owner_id"`
	Name      string    `db:"name" json:"name"`
	Game      string    `db:"game" json:"game"`
	CreatedAt time.Time `db:"created_at"`
}

// Bracket marks a tournament's single elimination tree as generated. While locked the
// tree cannot be regenerated.
type Bracket struct {
	ID           uuid.UUID `db:"id"`
	TournamentID uuid.UUID `db:"tournament_id"`
	IsLocked     bool      `db:"is_locked"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
