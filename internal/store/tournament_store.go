package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AdamBeresnev/esports-bracket/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

const (
	createTournamentQuery = `INSERT INTO tournaments (id, owner_id, name, game)
		VALUES (:id, :owner_id, :name, :game)`
	upsertGameConfigQuery = `INSERT INTO game_configs (tournament_id, game, match_format)
		VALUES (:tournament_id, :game, :match_format)
		ON CONFLICT (tournament_id) DO UPDATE SET game = excluded.game, match_format = excluded.match_format`
	createTeamQuery = `INSERT INTO teams (id, name, tag, captain_id)
		VALUES (:id, :name, :tag, :captain_id)`
	// seq keeps registrations in the order they came in
	createRegistrationQuery = `INSERT INTO registrations (id, tournament_id, user_id, team_id, status, seq)
		VALUES (:id, :tournament_id, :user_id, :team_id, :status,
			(SELECT COALESCE(MAX(seq), 0) + 1 FROM registrations WHERE tournament_id = :tournament_id))`
	updateRegistrationStatusQuery = `UPDATE registrations SET status = ? WHERE id = ?`
	confirmedEntriesQuery         = `
		SELECT r.id AS registration_id, r.user_id, r.team_id,
			COALESCE(u.username, '') AS username,
			COALESCE(t.name, '') AS team_name,
			COALESCE(t.tag, '') AS team_tag
		FROM registrations r
		LEFT JOIN users u ON u.id = r.user_id
		LEFT JOIN teams t ON t.id = r.team_id
		WHERE r.tournament_id = ? AND r.status = ?
		ORDER BY r.seq ASC`

	createBracketQuery    = `INSERT INTO brackets (id, tournament_id, is_locked) VALUES (:id, :tournament_id, :is_locked)`
	setBracketLockedQuery = `UPDATE brackets SET is_locked = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	createMatchQuery = `INSERT INTO matches (id, tournament_id, round_number, position, best_of,
			user_a_id, team_a_id, user_b_id, team_b_id, score_a, score_b,
			winner_user_id, winner_team_id, reported_by, state, disputed, is_bye)
		VALUES (:id, :tournament_id, :round_number, :position, :best_of,
			:user_a_id, :team_a_id, :user_b_id, :team_b_id, :score_a, :score_b,
			:winner_user_id, :winner_team_id, :reported_by, :state, :disputed, :is_bye)`
	updateMatchQuery = `UPDATE matches SET
		user_a_id = :user_a_id, team_a_id = :team_a_id,
		user_b_id = :user_b_id, team_b_id = :team_b_id,
		score_a = :score_a, score_b = :score_b,
		winner_user_id = :winner_user_id, winner_team_id = :winner_team_id,
		reported_by = :reported_by, state = :state, disputed = :disputed, is_bye = :is_bye,
		updated_at = CURRENT_TIMESTAMP
		WHERE id = :id`
	// 17 parameters a row
	matchInsertBatch = 1000

	matchColumns = `id, tournament_id, round_number, position, best_of,
		user_a_id, team_a_id, user_b_id, team_b_id, score_a, score_b,
		winner_user_id, winner_team_id, reported_by, state, disputed, is_bye, created_at, updated_at`
)

// ConfirmedEntry is a confirmed registration joined with its user or team.
type ConfirmedEntry struct {
	RegistrationID uuid.UUID  `db:"registration_id"`
	UserID         *uuid.UUID `db:"user_id"`
	TeamID         *uuid.UUID `db:"team_id"`
	Username       string     `db:"username"`
	TeamName       string     `db:"team_name"`
	TeamTag        string     `db:"team_tag"`
}

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, createTournamentQuery, tournament)
	return err
}

func (s *TournamentStore) UpsertGameConfig(ctx context.Context, tx *sqlx.Tx, cfg *bracket.GameConfig) error {
	_, err := tx.NamedExecContext(ctx, upsertGameConfigQuery, cfg)
	return err
}

func (s *TournamentStore) CreateTeam(ctx context.Context, tx *sqlx.Tx, team *bracket.Team) error {
	_, err := tx.NamedExecContext(ctx, createTeamQuery, team)
	return err
}

func (s *TournamentStore) CreateRegistration(ctx context.Context, tx *sqlx.Tx, r *bracket.Registration) error {
	_, err := tx.NamedExecContext(ctx, createRegistrationQuery, r)
	return err
}

func (s *TournamentStore) UpdateRegistrationStatus(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status bracket.RegistrationStatus) error {
	res, err := tx.ExecContext(ctx, tx.Rebind(updateRegistrationStatusQuery), status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(res)
}

func (s *TournamentStore) CreateBracket(ctx context.Context, tx *sqlx.Tx, b *bracket.Bracket) error {
	_, err := tx.NamedExecContext(ctx, createBracketQuery, b)
	return err
}

func (s *TournamentStore) SetBracketLocked(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, locked bool) error {
	res, err := tx.ExecContext(ctx, tx.Rebind(setBracketLockedQuery), locked, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(res)
}

// CreateMatches inserts the matches in batches of matchInsertBatch rows. SQLite caps bound
// parameters per statement, and a 4096 slot bracket would go over it in one insert.
func (s *TournamentStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, matches []bracket.Match) error {
	for start := 0; start < len(matches); start += matchInsertBatch {
		end := min(start+matchInsertBatch, len(matches))
		if _, err := tx.NamedExecContext(ctx, createMatchQuery, matches[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *TournamentStore) UpdateMatch(ctx context.Context, tx *sqlx.Tx, match *bracket.Match) error {
	res, err := tx.NamedExecContext(ctx, updateMatchQuery, match)
	if err != nil {
		return err
	}
	return checkAffectedRows(res)
}

func (s *TournamentStore) DeleteMatches(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (int64, error) {
	res, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM matches WHERE tournament_id = ?"), tournamentID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *TournamentStore) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	return s.getTournament(ctx, s.db, id)
}

func (s *TournamentStore) GetTournamentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Tournament, error) {
	return s.getTournament(ctx, tx, id)
}

func (s *TournamentStore) getTournament(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	err := sqlx.GetContext(ctx, q, &tournament, s.db.Rebind("SELECT * FROM tournaments WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}
	return &tournament, nil
}

func (s *TournamentStore) GetTournamentsByOwner(ctx context.Context, ownerID uuid.UUID) ([]bracket.Tournament, error) {
	var tournaments []bracket.Tournament
	err := s.db.SelectContext(ctx, &tournaments, s.db.Rebind("SELECT * FROM tournaments WHERE owner_id = ? ORDER BY created_at DESC"), ownerID)
	return tournaments, err
}

// GetGameConfigTx returns nil without an error when the tournament has no game config.
func (s *TournamentStore) GetGameConfigTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (*bracket.GameConfig, error) {
	var cfg bracket.GameConfig
	err := tx.GetContext(ctx, &cfg, tx.Rebind("SELECT * FROM game_configs WHERE tournament_id = ?"), tournamentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *TournamentStore) GetTeamTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Team, error) {
	var team bracket.Team
	err := tx.GetContext(ctx, &team, tx.Rebind("SELECT * FROM teams WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *TournamentStore) GetRegistrations(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Registration, error) {
	var registrations []bracket.Registration
	err := s.db.SelectContext(ctx, &registrations, s.db.Rebind("SELECT * FROM registrations WHERE tournament_id = ? ORDER BY seq ASC"), tournamentID)
	return registrations, err
}

func (s *TournamentStore) GetConfirmedEntries(ctx context.Context, tournamentID uuid.UUID) ([]ConfirmedEntry, error) {
	return s.getConfirmedEntries(ctx, s.db, tournamentID)
}

func (s *TournamentStore) GetConfirmedEntriesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]ConfirmedEntry, error) {
	return s.getConfirmedEntries(ctx, tx, tournamentID)
}

func (s *TournamentStore) getConfirmedEntries(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) ([]ConfirmedEntry, error) {
	var entries []ConfirmedEntry
	err := sqlx.SelectContext(ctx, q, &entries, s.db.Rebind(confirmedEntriesQuery), tournamentID, bracket.RegistrationConfirmed)
	return entries, err
}

func (s *TournamentStore) GetBracket(ctx context.Context, tournamentID uuid.UUID) (*bracket.Bracket, error) {
	return s.getBracket(ctx, s.db, tournamentID)
}

func (s *TournamentStore) GetBracketTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (*bracket.Bracket, error) {
	return s.getBracket(ctx, tx, tournamentID)
}

func (s *TournamentStore) getBracket(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) (*bracket.Bracket, error) {
	var b bracket.Bracket
	err := sqlx.GetContext(ctx, q, &b, s.db.Rebind("SELECT * FROM brackets WHERE tournament_id = ?"), tournamentID)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *TournamentStore) GetMatches(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Match, error) {
	return s.getMatches(ctx, s.db, tournamentID)
}

func (s *TournamentStore) getMatches(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := sqlx.SelectContext(ctx, q, &matches,
		s.db.Rebind("SELECT "+matchColumns+" FROM matches WHERE tournament_id = ? ORDER BY round_number ASC, position ASC"), tournamentID)
	return matches, err
}

func (s *TournamentStore) GetMatch(ctx context.Context, id uuid.UUID) (*bracket.Match, error) {
	return s.getMatch(ctx, s.db, id)
}

func (s *TournamentStore) GetMatchTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Match, error) {
	return s.getMatch(ctx, tx, id)
}

func (s *TournamentStore) getMatch(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*bracket.Match, error) {
	var match bracket.Match
	err := sqlx.GetContext(ctx, q, &match, s.db.Rebind("SELECT "+matchColumns+" FROM matches WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *TournamentStore) GetMatchAtTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, round, position int) (*bracket.Match, error) {
	var match bracket.Match
	err := tx.GetContext(ctx, &match,
		tx.Rebind("SELECT "+matchColumns+" FROM matches WHERE tournament_id = ? AND round_number = ? AND position = ?"), tournamentID, round, position)
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// MaxRoundTx is the final round number, 0 when the tournament has no matches.
func (s *TournamentStore) MaxRoundTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (int, error) {
	var maxRound int
	err := tx.GetContext(ctx, &maxRound, tx.Rebind("SELECT COALESCE(MAX(round_number), 0) FROM matches WHERE tournament_id = ?"), tournamentID)
	return maxRound, err
}

func checkAffectedRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
