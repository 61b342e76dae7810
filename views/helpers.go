package views

import (
	"context"
	"strconv"

	"github.com/AdamBeresnev/esports-bracket/internal/bracket"
	"github.com/AdamBeresnev/esports-bracket/internal/middleware"
	users "github.com/AdamBeresnev/esports-bracket/internal/user"
)

func GetUser(ctx context.Context) *users.User {
	return middleware.GetAuthenticatedUser(ctx)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func slotScore(m bracket.Match, slot string) string {
	s := m.ScoreA
	if slot == bracket.SlotB {
		s = m.ScoreB
	}
	if s == nil {
		return "-"
	}
	return strconv.Itoa(*s)
}

func stateClass(m bracket.Match) string {
	switch {
	case m.IsBye:
		return "match bye"
	case m.State == bracket.MatchDisputed:
		return "match disputed"
	case m.State == bracket.MatchVerified:
		return "match done"
	}
	return "match"
}

func sideClass(m bracket.Match, slot string) string {
	if m.IsWinner(slot) {
		return "side winner"
	}
	return "side"
}
