package store

import (
	"context"

	users "github.com/AdamBeresnev/esports-bracket/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type UserStore struct {
	db *sqlx.DB
}

const (
	userColumns = `id, email, username, provider, provider_id, avatar_url, created_at`

	createUserQuery = `INSERT INTO users (id, email, username, provider, provider_id, avatar_url)
		VALUES (:id, :email, :username, :provider, :provider_id, :avatar_url)`
	updateUserProfileQuery = `UPDATE users SET username = :username, avatar_url = :avatar_url WHERE id = :id`
)

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// GetUserByProvider finds the account an OAuth login belongs to.
func (s *UserStore) GetUserByProvider(ctx context.Context, provider, providerID string) (*users.User, error) {
	var user users.User
	err := s.db.GetContext(ctx, &user,
		s.db.Rebind("SELECT "+userColumns+" FROM users WHERE provider = ? AND provider_id = ?"), provider, providerID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	var user users.User
	err := s.db.GetContext(ctx, &user, s.db.Rebind("SELECT "+userColumns+" FROM users WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUsersByIDs loads several users in one query. Unknown ids are skipped.
func (s *UserStore) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]users.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In("SELECT "+userColumns+" FROM users WHERE id IN (?) ORDER BY username", ids)
	if err != nil {
		return nil, err
	}

	var list []users.User
	err = s.db.SelectContext(ctx, &list, s.db.Rebind(query), args...)
	return list, err
}

func (s *UserStore) CreateUser(ctx context.Context, user *users.User) error {
	_, err := s.db.NamedExecContext(ctx, createUserQuery, user)
	return err
}

// UpdateProfile stores the name and avatar the OAuth provider reported on the latest login.
func (s *UserStore) UpdateProfile(ctx context.Context, user *users.User) error {
	res, err := s.db.NamedExecContext(ctx, updateUserProfileQuery, user)
	if err != nil {
		return err
	}
	return checkAffectedRows(res)
}
