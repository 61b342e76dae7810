package main

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/AdamBeresnev/esports-bracket/internal/bracket"
	"github.com/AdamBeresnev/esports-bracket/internal/config"
	"github.com/AdamBeresnev/esports-bracket/internal/db"
	"github.com/AdamBeresnev/esports-bracket/internal/middleware"
	"github.com/AdamBeresnev/esports-bracket/internal/service"
	"github.com/AdamBeresnev/esports-bracket/internal/store"
	users "github.com/AdamBeresnev/esports-bracket/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	database.SetMaxOpenConns(1)

	err = db.RunMigrations(database.DB, config.DriverSQLite, "file://../../migrations/sqlite3")
	require.NoError(t, err, "Failed to apply migrations")

	t.Cleanup(func() { database.Close() })
	return database
}

// seedTournament creates a tournament with three confirmed solo entrants.
func seedTournament(t *testing.T, ctx context.Context, database *sqlx.DB) uuid.UUID {
	t.Helper()
	userService := service.NewUserService(store.NewUserStore(database))
	tournaments := newCLI(database, nil).tournaments

	tid, err := tournaments.CreateTournament(ctx, "Test Cup", "", "")
	require.NoError(t, err)
	for i := 1; i <= 3; i++ {
		name := fmt.Sprintf("player%d", i)
		u, err := userService.CreateUser(ctx, name, name+"@example.com")
		require.NoError(t, err)
		regID, err := tournaments.RegisterUser(ctx, tid, u.ID)
		require.NoError(t, err)
		require.NoError(t, tournaments.ConfirmRegistration(ctx, regID))
	}
	return tid
}

func TestRun(t *testing.T) {
	database := setupTestDB(t)
	ctx := middleware.WithUserID(context.Background(), users.GuestID)
	tid := seedTournament(t, ctx, database)

	var out bytes.Buffer
	c := newCLI(database, &out)

	require.NoError(t, c.run(ctx, "generate", []string{tid.String()}))
	assert.Equal(t, "3 participants, capacity 4, 2 rounds, Bo1, 1 byes\n", out.String())

	matches, err := store.NewTournamentStore(database).GetMatches(ctx, tid)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	m1, bye, final := matches[0].ID.String(), matches[1].ID.String(), matches[2].ID.String()

	tests := []struct {
		name    string
		cmd     string
		args    []string
		want    []string
		wantErr string
		errIs   error
	}{
		{name: "unknown command", cmd: "seed", args: []string{tid.String()}, wantErr: `unknown command "seed"`},
		{name: "missing id", cmd: "show", args: nil, wantErr: "show needs an id"},
		{name: "invalid id", cmd: "lock", args: []string{"nope"}, wantErr: `invalid id "nope"`},
		{name: "unknown tournament", cmd: "show", args: []string{uuid.NewString()}, wantErr: "no rows"},
		{name: "lock", cmd: "lock", args: []string{tid.String()}, want: []string{"locked=true"}},
		{name: "generate while locked", cmd: "generate", args: []string{tid.String()}, errIs: bracket.ErrBracketLocked},
		{name: "unlock", cmd: "unlock", args: []string{tid.String()}, want: []string{"locked=false"}},
		{name: "set-winner without side", cmd: "set-winner", args: []string{m1}, wantErr: "set-winner needs a side"},
		{name: "set-winner", cmd: "set-winner", args: []string{m1, "a"}, want: []string{"match " + m1 + " winner a"}},
		{name: "verify with nothing reported", cmd: "verify", args: []string{final}, errIs: bracket.ErrValidation},
		{name: "dispute without flag", cmd: "dispute", args: []string{final}, wantErr: "dispute needs true or false"},
		{name: "dispute bad flag", cmd: "dispute", args: []string{final, "maybe"}, wantErr: "invalid syntax"},
		{name: "dispute verified bye", cmd: "dispute", args: []string{bye, "true"}, errIs: bracket.ErrValidation},
		{name: "dispute", cmd: "dispute", args: []string{final, "true"}, want: []string{"match " + final + " state SCHEDULED"}},
		{name: "show", cmd: "show", args: []string{tid.String()}, want: []string{
			"Test Cup (3 participants)",
			"R1 M1  player1",
			"winner=a",
			"(bye)",
			"R2 M1",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := c.run(ctx, tt.cmd, tt.args)

			switch {
			case tt.errIs != nil:
				assert.ErrorIs(t, err, tt.errIs)
			case tt.wantErr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			default:
				require.NoError(t, err)
				for _, w := range tt.want {
					assert.Contains(t, out.String(), w)
				}
			}
		})
	}
}
