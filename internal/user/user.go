package users

import (
	"time"

	"github.com/google/uuid"
)

type ContextKey string

const UserKey ContextKey = "user"

// GuestID is the seeded guest account used when OAuth isn't configured.
var GuestID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// User is a player or organizer. Solo registrations and team captains point here.
type User struct {
	ID         uuid.UUID `db:"id"`
	Email      string    `db:"email"`
	Username   string    `db:"username"`
	CreatedAt  time.Time `db:"created_at"`
	Provider   *string   `db:"provider"`
	ProviderID *string   `db:"provider_id"`
	AvatarURL  *string   `db:"avatar_url"`
}

func (u *User) IsGuest() bool {
	return u.ID == GuestID
}

// Label is the name shown in brackets and match cards.
func (u *User) Label() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// Labels indexes users by id for rendering.
func Labels(list []User) map[uuid.UUID]string {
	labels := make(map[uuid.UUID]string, len(list))
	for i := range list {
		labels[list[i].ID] = list[i].Label()
	}
	return labels
}
