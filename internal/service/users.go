package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nhle/notekeeper/internal/model"
)

// EnsureUser records a sign-in for the external identity and returns the
// matching user, creating it on first sight. It needs no caller identity.
func (s *Service) EnsureUser(ctx context.Context, u model.User) (*model.User, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("%w: no backing store", ErrStorageUnavailable)
	}
	if strings.TrimSpace(u.OpenID) == "" {
		return nil, fmt.Errorf("%w: open id is required", ErrValidation)
	}
	user, err := s.store.UpsertUserByOpenID(ctx, model.User{
		OpenID:      u.OpenID,
		Name:        u.Name,
		Email:       u.Email,
		LoginMethod: u.LoginMethod,
	})
	if err != nil {
		return nil, storeErr("upserting user", err)
	}
	return user, nil
}

// Me returns the caller's own user record.
func (s *Service) Me(ctx context.Context) (*model.User, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, storeErr("loading user", err)
	}
	return user, nil
}
