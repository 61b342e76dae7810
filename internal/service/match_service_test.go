package service

import (
	"testing"

	"github.com/AdamBeresnev/esports-bracket/internal/bracket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fourPlayerBracket generates p1 vs p2 and p3 vs p4 feeding one final.
func fourPlayerBracket(t *testing.T) (*testEnv, uuid.UUID, []uuid.UUID) {
	t.Helper()
	env := newTestEnv(t)
	tid := env.createTournament(t, bracket.GameDota2, "BO3")
	players := env.registerUsers(t, tid, 4)

	_, err := env.brackets.GenerateBracket(env.ctx, tid)
	require.NoError(t, err)
	return env, tid, players
}

func TestReportResult(t *testing.T) {
	env, tid, players := fourPlayerBracket(t)
	m1 := env.matchAt(t, tid, 1, 1)

	match, err := env.matches.ReportResult(env.ctx, m1.ID, 2, 1, players[0])
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchReported, match.State)
	assert.Equal(t, bracket.UserSide(players[0]), match.Winner())
	require.NotNil(t, match.ScoreA)
	assert.Equal(t, 2, *match.ScoreA)
	assert.Equal(t, 1, *match.ScoreB)

	// Not propagated until verified
	final := env.matchAt(t, tid, 2, 1)
	assert.True(t, final.SideA().IsEmpty())

	// The opponent may report too and overrides the previous report
	match, err = env.matches.ReportResult(env.ctx, m1.ID, 0, 2, players[1])
	require.NoError(t, err)
	assert.Equal(t, bracket.UserSide(players[1]), match.Winner())
	assert.Equal(t, bracket.SlotB, match.WinnerSlot())
}

func TestReportResult_Rejected(t *testing.T) {
	env, tid, players := fourPlayerBracket(t)
	m1 := env.matchAt(t, tid, 1, 1)

	tests := []struct {
		name     string
		scoreA   int
		scoreB   int
		reporter uuid.UUID
		wantErr  error
	}{
		{"draw", 1, 1, players[0], bracket.ErrDraw},
		{"not a participant", 2, 0, players[2], bracket.ErrNotParticipant},
		{"stranger", 2, 0, uuid.New(), bracket.ErrNotParticipant},
		{"negative score", -1, 2, players[0], bracket.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.matches.ReportResult(env.ctx, m1.ID, tt.scoreA, tt.scoreB, tt.reporter)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	unchanged := env.matchAt(t, tid, 1, 1)
	assert.Equal(t, bracket.MatchScheduled, unchanged.State)
	assert.Nil(t, unchanged.ScoreA)
	assert.True(t, unchanged.Winner().IsEmpty())
}

func TestReportResult_AuthorizationMessages(t *testing.T) {
	env, tid, players := fourPlayerBracket(t)
	m1 := env.matchAt(t, tid, 1, 1)

	_, err := env.matches.ReportResult(env.ctx, m1.ID, 1, 1, players[3])
	require.Error(t, err)
	// Authorization is checked before the score
	assert.Equal(t, "Not authorized to report this match.", err.Error())
	assert.ErrorIs(t, err, bracket.ErrUnauthorized)
}

func TestReportResult_Teams(t *testing.T) {
	env := newTestEnv(t)
	tid := env.createTournament(t, bracket.GameValorant, "BO1")
	alpha := env.registerTeam(t, tid, "Alpha", "ALP")
	bravo := env.registerTeam(t, tid, "Bravo", "BRV")
	charlie := env.registerTeam(t, tid, "Charlie", "CHR")

	_, err := env.brackets.GenerateBracket(env.ctx, tid)
	require.NoError(t, err)
	m1 := env.matchAt(t, tid, 1, 1)

	_, err = env.matches.ReportResult(env.ctx, m1.ID, 13, 7, alpha.MemberID)
	require.ErrorIs(t, err, bracket.ErrNotCaptain)
	assert.Equal(t, "Only captains may report team matches.", err.Error())

	_, err = env.matches.ReportResult(env.ctx, m1.ID, 13, 7, charlie.CaptainID)
	require.ErrorIs(t, err, bracket.ErrNotCaptain)

	match, err := env.matches.ReportResult(env.ctx, m1.ID, 7, 13, bravo.CaptainID)
	require.NoError(t, err)
	assert.Equal(t, bracket.TeamSide(bravo.ID), match.Winner())

	// Charlie got a bye and waits in the final for an opponent
	final := env.matchAt(t, tid, 2, 1)
	_, err = env.matches.ReportResult(env.ctx, final.ID, 13, 0, charlie.CaptainID)
	assert.ErrorIs(t, err, bracket.ErrValidation)

	_, err = env.matches.VerifyAndApply(env.ctx, m1.ID)
	require.NoError(t, err)

	final = env.matchAt(t, tid, 2, 1)
	assert.Equal(t, bracket.TeamSide(charlie.ID), final.SideA())
	assert.Equal(t, bracket.TeamSide(bravo.ID), final.SideB())

	match, err = env.matches.ReportResult(env.ctx, final.ID, 13, 11, charlie.CaptainID)
	require.NoError(t, err)
	assert.Equal(t, bracket.TeamSide(charlie.ID), match.Winner())

	match, err = env.matches.VerifyAndApply(env.ctx, final.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchVerified, match.State)
}

func TestVerifyAndApply(t *testing.T) {
	env, tid, players := fourPlayerBracket(t)
	m1 := env.matchAt(t, tid, 1, 1)
	m2 := env.matchAt(t, tid, 1, 2)

	_, err := env.matches.VerifyAndApply(env.ctx, m1.ID)
	assert.ErrorIs(t, err, bracket.ErrValidation, "nothing reported yet")

	_, err = env.matches.ReportResult(env.ctx, m1.ID, 2, 0, players[0])
	require.NoError(t, err)
	match, err := env.matches.VerifyAndApply(env.ctx, m1.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchVerified, match.State)

	final := env.matchAt(t, tid, 2, 1)
	assert.Equal(t, bracket.UserSide(players[0]), final.SideA())
	assert.True(t, final.SideB().IsEmpty())

	// Verifying again doesn't place the winner twice
	_, err = env.matches.VerifyAndApply(env.ctx, m1.ID)
	require.NoError(t, err)
	final = env.matchAt(t, tid, 2, 1)
	assert.Equal(t, bracket.UserSide(players[0]), final.SideA())
	assert.True(t, final.SideB().IsEmpty())

	_, err = env.matches.ReportResult(env.ctx, m1.ID, 0, 2, players[1])
	assert.ErrorIs(t, err, bracket.ErrValidation, "verified results are final")

	_, err = env.matches.ReportResult(env.ctx, m2.ID, 1, 2, players[3])
	require.NoError(t, err)
	_, err = env.matches.VerifyAndApply(env.ctx, m2.ID)
	require.NoError(t, err)

	final = env.matchAt(t, tid, 2, 1)
	assert.Equal(t, bracket.UserSide(players[0]), final.SideA())
	assert.Equal(t, bracket.UserSide(players[3]), final.SideB())
	assert.Equal(t, 3, final.BestOf)

	// The final has no successor
	_, err = env.matches.ReportResult(env.ctx, final.ID, 2, 1, players[3])
	require.NoError(t, err)
	match, err = env.matches.VerifyAndApply(env.ctx, final.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.UserSide(players[0]), match.Winner())
}

func TestDisputeFlow(t *testing.T) {
	env, tid, players := fourPlayerBracket(t)
	m1 := env.matchAt(t, tid, 1, 1)

	match, err := env.matches.SetDisputed(env.ctx, m1.ID, true)
	require.NoError(t, err)
	assert.True(t, match.Disputed)
	assert.Equal(t, bracket.MatchScheduled, match.State)

	match, err = env.matches.ReportResult(env.ctx, m1.ID, 2, 1, players[0])
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchDisputed, match.State)

	_, err = env.matches.VerifyAndApply(env.ctx, m1.ID)
	assert.ErrorIs(t, err, bracket.ErrValidation)

	match, err = env.matches.SetDisputed(env.ctx, m1.ID, false)
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchReported, match.State)

	match, err = env.matches.SetDisputed(env.ctx, m1.ID, true)
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchDisputed, match.State)

	// The organizer settles it
	match, err = env.matches.AdminSetWinner(env.ctx, m1.ID, bracket.SlotB)
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchVerified, match.State)
	assert.False(t, match.Disputed)
	assert.Equal(t, bracket.UserSide(players[1]), match.Winner())

	final := env.matchAt(t, tid, 2, 1)
	assert.Equal(t, bracket.UserSide(players[1]), final.SideA())

	_, err = env.matches.SetDisputed(env.ctx, m1.ID, true)
	assert.ErrorIs(t, err, bracket.ErrValidation)
}

func TestAdminSetWinner(t *testing.T) {
	env, tid, players := fourPlayerBracket(t)
	m1 := env.matchAt(t, tid, 1, 1)
	m2 := env.matchAt(t, tid, 1, 2)

	_, err := env.matches.AdminSetWinner(env.ctx, m1.ID, "c")
	assert.ErrorIs(t, err, bracket.ErrValidation)

	final := env.matchAt(t, tid, 2, 1)
	_, err = env.matches.AdminSetWinner(env.ctx, final.ID, bracket.SlotA)
	assert.ErrorIs(t, err, bracket.ErrValidation, "empty side")

	match, err := env.matches.AdminSetWinner(env.ctx, m1.ID, bracket.SlotA)
	require.NoError(t, err)
	assert.Equal(t, bracket.UserSide(players[0]), match.Winner())

	// Correcting a verified result swaps the entrant in the next match
	_, err = env.matches.AdminSetWinner(env.ctx, m1.ID, bracket.SlotB)
	require.NoError(t, err)
	final = env.matchAt(t, tid, 2, 1)
	assert.Equal(t, bracket.UserSide(players[1]), final.SideA())
	assert.True(t, final.SideB().IsEmpty())

	// Setting the same winner again is a no-op for the final
	_, err = env.matches.AdminSetWinner(env.ctx, m1.ID, bracket.SlotB)
	require.NoError(t, err)
	final = env.matchAt(t, tid, 2, 1)
	assert.Equal(t, bracket.UserSide(players[1]), final.SideA())
	assert.True(t, final.SideB().IsEmpty())

	_, err = env.matches.AdminSetWinner(env.ctx, m2.ID, bracket.SlotA)
	require.NoError(t, err)
	_, err = env.matches.AdminSetWinner(env.ctx, final.ID, bracket.SlotB)
	require.NoError(t, err)

	// Once the final is decided round 1 can't be corrected any more
	_, err = env.matches.AdminSetWinner(env.ctx, m1.ID, bracket.SlotA)
	assert.ErrorIs(t, err, bracket.ErrValidation)
	m1 = env.matchAt(t, tid, 1, 1)
	assert.Equal(t, bracket.UserSide(players[1]), m1.Winner())
}

func TestGetMatch_NotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.matches.GetMatch(env.ctx, uuid.New())
	assert.Error(t, err)
}

func TestPropagate_SuccessorFull(t *testing.T) {
	env, tid, players := fourPlayerBracket(t)
	m1 := env.matchAt(t, tid, 1, 1)
	m2 := env.matchAt(t, tid, 1, 2)

	_, err := env.matches.AdminSetWinner(env.ctx, m1.ID, bracket.SlotA)
	require.NoError(t, err)
	_, err = env.matches.AdminSetWinner(env.ctx, m2.ID, bracket.SlotA)
	require.NoError(t, err)

	tx, err := env.db.BeginTxx(env.ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	// A winner that matches neither side of a full final has nowhere to go
	m1, err = env.store.GetMatchTx(env.ctx, tx, m1.ID)
	require.NoError(t, err)
	m1.SetWinner(bracket.UserSide(players[1]))

	next, err := propagator{store: env.store}.propagate(env.ctx, tx, m1)
	require.NoError(t, err)
	assert.Nil(t, next)

	final, err := env.store.GetMatchAtTx(env.ctx, tx, tid, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, bracket.UserSide(players[0]), final.SideA())
	assert.Equal(t, bracket.UserSide(players[2]), final.SideB())
	assert.True(t, final.Winner().IsEmpty())
}
