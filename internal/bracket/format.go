package bracket

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// FormatConfig exposes the match format a game is played in.
type FormatConfig interface {
	BestOf() int
}

const (
	GameValorant  = "valorant"
	GameCS2       = "cs2"
	GameDota2     = "dota2"
	GameEFootball = "efootball"
)

// GameConfig is the per-tournament game settings row.
type GameConfig struct {
	TournamentID uuid.UUID `db:"tournament_id"`
	Game         string    `db:"game"`
	MatchFormat  string    `db:"match_format"`
}

// DefaultFormat is used when a tournament has no game config attached.
type DefaultFormat struct{}

func (DefaultFormat) BestOf() int { return 1 }

type ValorantConfig struct {
	MatchFormat string
}

func (c ValorantConfig) BestOf() int { return ParseBestOf(c.MatchFormat) }

type CS2Config struct {
	MatchFormat string
}

func (c CS2Config) BestOf() int { return ParseBestOf(c.MatchFormat) }

type Dota2Config struct {
	MatchFormat string
}

func (c Dota2Config) BestOf() int { return ParseBestOf(c.MatchFormat) }

// EFootballConfig is played over legs rather than maps but uses the same "BOx" notation.
type EFootballConfig struct {
	MatchFormat string
}

func (c EFootballConfig) BestOf() int { return ParseBestOf(c.MatchFormat) }

// Format resolves the config row into the game specific implementation.
func (c *GameConfig) Format() FormatConfig {
	if c == nil {
		return DefaultFormat{}
	}

	switch strings.ToLower(c.Game) {
	case GameValorant:
		return ValorantConfig{MatchFormat: c.MatchFormat}
	case GameCS2:
		return CS2Config{MatchFormat: c.MatchFormat}
	case GameDota2:
		return Dota2Config{MatchFormat: c.MatchFormat}
	case GameEFootball:
		return EFootballConfig{MatchFormat: c.MatchFormat}
	default:
		return DefaultFormat{}
	}
}

// ParseBestOf turns "BO3" into 3. Anything it can't read is best of 1.
func ParseBestOf(format string) int {
	f := strings.ToUpper(strings.TrimSpace(format))
	if !strings.HasPrefix(f, "BO") {
		return 1
	}

	n, err := strconv.Atoi(strings.TrimSpace(f[2:]))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
