package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nhle/notekeeper/internal/model"
)

// UpsertUserByOpenID creates the user on first sign-in and otherwise
// refreshes the profile fields that were supplied and last_signed_in.
func (s *SQLStore) UpsertUserByOpenID(
	ctx context.Context,
	user model.User,
) (*model.User, error) {
	if strings.TrimSpace(user.OpenID) == "" {
		return nil, fmt.Errorf("user open_id must not be empty")
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	now := s.now()

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO users (
			id, open_id, name, email, login_method, role,
			created_at, updated_at, last_signed_in
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (open_id) DO UPDATE SET
			name = CASE WHEN excluded.name <> '' THEN excluded.name ELSE users.name END,
			email = CASE WHEN excluded.email <> '' THEN excluded.email ELSE users.email END,
			login_method = CASE WHEN excluded.login_method <> '' THEN excluded.login_method ELSE users.login_method END,
			updated_at = excluded.updated_at,
			last_signed_in = excluded.last_signed_in`),
		user.ID, user.OpenID, user.Name, user.Email, user.LoginMethod, user.Role,
		now, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting user %s: %w", user.OpenID, translateErr(err))
	}

	var out model.User
	err = s.db.GetContext(ctx, &out,
		s.rebind("SELECT * FROM users WHERE open_id = ?"), user.OpenID)
	if err != nil {
		return nil, fmt.Errorf("loading user %s: %w", user.OpenID, translateErr(err))
	}
	return &out, nil
}

// GetUser retrieves a user by internal ID.
func (s *SQLStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := s.db.GetContext(ctx, &user, s.rebind("SELECT * FROM users WHERE id = ?"), id)
	if err != nil {
		return nil, fmt.Errorf("getting user %s: %w", id, translateErr(err))
	}
	return &user, nil
}
