package service

import (
	"fmt"
	"testing"

	"github.com/AdamBeresnev/esports-bracket/internal/bracket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalcBracketSize(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{0, 0},
		{1, 0},
		{2, 2},
		{3, 4},
		{4, 4},
		{5, 8},
		{8, 8},
		{9, 16},
		{16, 16},
		{17, 32},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("count %d", tt.count), func(t *testing.T) {
			assert.Equal(t, tt.want, calcBracketSize(tt.count))
		})
	}
}

func TestCalcRounds(t *testing.T) {
	assert.Equal(t, 0, calcRounds(0))
	assert.Equal(t, 1, calcRounds(2))
	assert.Equal(t, 2, calcRounds(4))
	assert.Equal(t, 3, calcRounds(8))
	assert.Equal(t, 5, calcRounds(32))
}

func TestBuildSkeleton(t *testing.T) {
	tid := uuid.New()
	matches := buildSkeleton(tid, 3, 5)
	require.Len(t, matches, 7)

	want := [][2]int{{1, 1}, {1, 2}, {1, 3}, {1, 4}, {2, 1}, {2, 2}, {3, 1}}
	ids := map[uuid.UUID]bool{}
	for i, m := range matches {
		assert.Equal(t, want[i][0], m.RoundNumber)
		assert.Equal(t, want[i][1], m.Position)
		assert.Equal(t, tid, m.TournamentID)
		assert.Equal(t, 5, m.BestOf)
		assert.Equal(t, bracket.MatchScheduled, m.State)
		assert.True(t, m.SideA().IsEmpty())
		assert.True(t, m.SideB().IsEmpty())
		assert.NoError(t, m.Validate())
		ids[m.ID] = true
	}
	assert.Len(t, ids, 7)

	assert.Empty(t, buildSkeleton(tid, 0, 1))
}

func TestAssignRound1(t *testing.T) {
	participants := func(n int) []bracket.Participant {
		ps := make([]bracket.Participant, n)
		for i := range ps {
			ps[i] = bracket.Participant{Side: bracket.UserSide(uuid.New()), Label: fmt.Sprintf("p%d", i+1)}
		}
		return ps
	}
	round1 := func(n int) []*bracket.Match {
		ms := make([]*bracket.Match, n)
		for i := range ms {
			ms[i] = &bracket.Match{RoundNumber: 1, Position: i + 1, BestOf: 1, State: bracket.MatchScheduled}
		}
		return ms
	}

	t.Run("full bracket pairs in order", func(t *testing.T) {
		ps := participants(4)
		ms := round1(2)
		modified := assignRound1(ms, ps)
		require.Len(t, modified, 2)
		assert.Equal(t, ps[0].Side, ms[0].SideA())
		assert.Equal(t, ps[1].Side, ms[0].SideB())
		assert.Equal(t, ps[2].Side, ms[1].SideA())
		assert.Equal(t, ps[3].Side, ms[1].SideB())
	})

	t.Run("one bye", func(t *testing.T) {
		ps := participants(3)
		ms := round1(2)
		assignRound1(ms, ps)
		assert.Equal(t, ps[0].Side, ms[0].SideA())
		assert.Equal(t, ps[1].Side, ms[0].SideB())
		assert.Equal(t, ps[2].Side, ms[1].SideA())
		assert.True(t, ms[1].SideB().IsEmpty())
	})

	t.Run("byes never leave a match empty", func(t *testing.T) {
		ps := participants(5)
		ms := round1(4)
		modified := assignRound1(ms, ps)
		require.Len(t, modified, 4)

		byes := 0
		for _, m := range ms {
			require.False(t, m.SideA().IsEmpty())
			if m.SideB().IsEmpty() {
				byes++
			}
		}
		assert.Equal(t, 3, byes)
		assert.Equal(t, ps[4].Side, ms[3].SideA())
	})

	t.Run("six entrants fill pairs first", func(t *testing.T) {
		// Filling slots 2k and 2k+1 in order would put p5 and p6 together in m3 and leave
		// m4 with no entrant. Only the first n-capacity/2 matches get pairs; the rest get one
		// entrant each, so p5 and p6 both have byes.
		ps := participants(6)
		ms := round1(4)
		assignRound1(ms, ps)

		assert.Equal(t, ps[0].Side, ms[0].SideA())
		assert.Equal(t, ps[1].Side, ms[0].SideB())
		assert.Equal(t, ps[2].Side, ms[1].SideA())
		assert.Equal(t, ps[3].Side, ms[1].SideB())
		assert.Equal(t, ps[4].Side, ms[2].SideA())
		assert.True(t, ms[2].SideB().IsEmpty())
		assert.Equal(t, ps[5].Side, ms[3].SideA())
		assert.True(t, ms[3].SideB().IsEmpty())
	})
}

func TestByeWinner(t *testing.T) {
	id := uuid.New()

	m := &bracket.Match{}
	_, ok := byeWinner(m)
	assert.False(t, ok)

	m.SetSideB(bracket.TeamSide(id))
	w, ok := byeWinner(m)
	assert.True(t, ok)
	assert.Equal(t, bracket.TeamSide(id), w)

	m.SetSideA(bracket.UserSide(uuid.New()))
	_, ok = byeWinner(m)
	assert.False(t, ok)
}
