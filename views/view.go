package views

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/AdamBeresnev/esports-bracket/internal/bracket"
	"github.com/a-h/templ"
	"github.com/google/uuid"
)

func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	return component.Render(r.Context(), w)
}

type TournamentPage struct {
	Tournament   *bracket.Tournament
	Bracket      *bracket.Bracket
	Participants []bracket.Participant
	Matches      []bracket.Match
	NextMatchID  *uuid.UUID
	Reporters    map[uuid.UUID]string
	IsOrganizer  bool
}

func (p TournamentPage) locked() bool {
	return p.Bracket != nil && p.Bracket.IsLocked
}

func (p TournamentPage) bracketURL(action string) string {
	return "/tournaments/" + p.Tournament.ID.String() + "/bracket/" + action
}

func (p TournamentPage) bracketData() BracketData {
	data := PrepareBracketData(p.Participants, p.Matches)
	data.Reporters = p.Reporters
	return data
}

func tournamentURL(id uuid.UUID) templ.SafeURL {
	return templ.URL("/tournaments/" + id.String())
}

func matchAnchor(m bracket.Match) string {
	return "match-" + m.ID.String()
}

func matchURL(m bracket.Match, action string) string {
	return "/matches/" + m.ID.String() + "/" + action
}

func playable(m bracket.Match) bool {
	return !m.SideA().IsEmpty() && !m.SideB().IsEmpty()
}

func winnerVals(slot string) string {
	return `{"who":"` + slot + `"}`
}

func disputeVals(disputed bool) string {
	return `{"disputed":"` + strconv.FormatBool(disputed) + `"}`
}

func disputeLabel(m bracket.Match) string {
	if m.Disputed {
		return "Resolve dispute"
	}
	return "Flag dispute"
}

func slotName(slot string) string {
	return strings.ToUpper(slot)
}
