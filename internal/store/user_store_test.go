package store

import (
	"context"
	"database/sql"
	"testing"

	users "github.com/AdamBeresnev/esports-bracket/internal/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStore(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewUserStore(db)
	ctx := context.Background()

	provider, providerID := "discord", "42"
	user := &users.User{ID: uuid.New(), Email: "ace@example.com", Username: "ace", Provider: &provider, ProviderID: &providerID}
	require.NoError(t, store.CreateUser(ctx, user))

	fetched, err := store.GetUserByProvider(ctx, provider, providerID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, fetched.ID)
	assert.Nil(t, fetched.AvatarURL)

	avatar := "https://cdn.example.com/ace.png"
	fetched.Username = "ace_"
	fetched.AvatarURL = &avatar
	require.NoError(t, store.UpdateProfile(ctx, fetched))

	fetched, err = store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ace_", fetched.Username)
	assert.Equal(t, avatar, *fetched.AvatarURL)

	err = store.UpdateProfile(ctx, &users.User{ID: uuid.New(), Username: "nobody"})
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = store.GetUserByProvider(ctx, provider, "43")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestGetUsersByIDs(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewUserStore(db)
	ctx := context.Background()

	zed := &users.User{ID: uuid.New(), Email: "zed@example.com", Username: "zed"}
	amy := &users.User{ID: uuid.New(), Email: "amy@example.com", Username: "amy"}
	require.NoError(t, store.CreateUser(ctx, zed))
	require.NoError(t, store.CreateUser(ctx, amy))

	tests := []struct {
		name string
		ids  []uuid.UUID
		want []string
	}{
		{name: "no ids", ids: nil, want: nil},
		{name: "one id", ids: []uuid.UUID{zed.ID}, want: []string{"zed"}},
		{name: "ordered by username", ids: []uuid.UUID{zed.ID, amy.ID}, want: []string{"amy", "zed"}},
		{name: "unknown ids skipped", ids: []uuid.UUID{uuid.New(), amy.ID}, want: []string{"amy"}},
		{name: "guest", ids: []uuid.UUID{users.GuestID}, want: []string{"Guest User"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := store.GetUsersByIDs(ctx, tt.ids)
			require.NoError(t, err)

			var names []string
			for _, u := range list {
				names = append(names, u.Username)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}
