package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/AdamBeresnev/esports-bracket/internal/bracket"
	"github.com/AdamBeresnev/esports-bracket/internal/config"
	"github.com/AdamBeresnev/esports-bracket/internal/db"
	"github.com/AdamBeresnev/esports-bracket/internal/middleware"
	"github.com/AdamBeresnev/esports-bracket/internal/store"
	users "github.com/AdamBeresnev/esports-bracket/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err, "Failed to connect to in-memory DB")

	// Every connection to :memory: is a new database
	database.SetMaxOpenConns(1)

	err = db.RunMigrations(database.DB, config.DriverSQLite, "file://../../migrations/sqlite3")
	require.NoError(t, err, "Failed to apply migrations")

	t.Cleanup(func() { database.Close() })
	return database
}

type testEnv struct {
	db          *sqlx.DB
	store       *store.TournamentStore
	users       *UserService
	tournaments *TournamentService
	brackets    *BracketService
	matches     *MatchService
	ctx         context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database := setupTestDB(t)
	tournamentStore := store.NewTournamentStore(database)
	userStore := store.NewUserStore(database)

	return &testEnv{
		db:          database,
		store:       tournamentStore,
		users:       NewUserService(userStore),
		tournaments: NewTournamentService(database, tournamentStore, userStore),
		brackets:    NewBracketService(database, tournamentStore),
		matches:     NewMatchService(database, tournamentStore),
		ctx:         middleware.WithUserID(context.Background(), users.GuestID),
	}
}

func (e *testEnv) createTournament(t *testing.T, game, format string) uuid.UUID {
	t.Helper()
	id, err := e.tournaments.CreateTournament(e.ctx, "Test Cup", game, format)
	require.NoError(t, err)
	return id
}

func (e *testEnv) createUser(t *testing.T, name string) uuid.UUID {
	t.Helper()
	u, err := e.users.CreateUser(e.ctx, name, name+"@example.com")
	require.NoError(t, err)
	return u.ID
}

// registerUsers creates n confirmed solo entrants and returns them in registration order.
func (e *testEnv) registerUsers(t *testing.T, tournamentID uuid.UUID, n int) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, 0, n)
	for i := 1; i <= n; i++ {
		userID := e.createUser(t, fmt.Sprintf("player%d", i))
		regID, err := e.tournaments.RegisterUser(e.ctx, tournamentID, userID)
		require.NoError(t, err)
		require.NoError(t, e.tournaments.ConfirmRegistration(e.ctx, regID))
		ids = append(ids, userID)
	}
	return ids
}

type testTeam struct {
	ID        uuid.UUID
	CaptainID uuid.UUID
	MemberID  uuid.UUID
}

// registerTeam creates a confirmed team entrant with a captain and a non-captain member.
func (e *testEnv) registerTeam(t *testing.T, tournamentID uuid.UUID, name, tag string) testTeam {
	t.Helper()
	captainID := e.createUser(t, name+"-captain")
	memberID := e.createUser(t, name+"-member")

	teamID, err := e.tournaments.CreateTeam(e.ctx, name, tag, captainID)
	require.NoError(t, err)
	regID, err := e.tournaments.RegisterTeam(e.ctx, tournamentID, teamID)
	require.NoError(t, err)
	require.NoError(t, e.tournaments.ConfirmRegistration(e.ctx, regID))

	return testTeam{ID: teamID, CaptainID: captainID, MemberID: memberID}
}

func (e *testEnv) matchAt(t *testing.T, tournamentID uuid.UUID, round, position int) *bracket.Match {
	t.Helper()
	matches, err := e.store.GetMatches(e.ctx, tournamentID)
	require.NoError(t, err)
	for i := range matches {
		if matches[i].RoundNumber == round && matches[i].Position == position {
			return &matches[i]
		}
	}
	t.Fatalf("no match at round %d position %d", round, position)
	return nil
}
