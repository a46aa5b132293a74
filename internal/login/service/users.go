package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/kakaologin/internal/login/domain"
	"github.com/aussiebroadwan/kakaologin/internal/login/store"
	"github.com/aussiebroadwan/kakaologin/pkg/slogx"
)

// UserService is the administrative view over persisted users.
type UserService struct {
	Users store.Users
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.Users.ListUsers(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return users, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (domain.User, error) {
	u, err := s.Users.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, mapStoreError(err)
	}
	return u, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	found, err := s.Users.DeleteUser(ctx, id)
	if err != nil {
		return mapStoreError(err)
	}
	if !found {
		return ErrNotFound
	}
	slogx.FromContext(ctx).Info("user deleted", "user_id", id)
	return nil
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return err
	}
}
