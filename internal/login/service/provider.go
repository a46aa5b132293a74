package service

import (
	"context"

	"github.com/aussiebroadwan/kakaologin/internal/login/domain"
)

// IdentityProvider is the outbound half of the authorization-code grant.
// provider.Kakao implements it.
type IdentityProvider interface {
	AuthCodeURL() string
	Exchange(ctx context.Context, code string) (accessToken string, err error)
	FetchProfile(ctx context.Context, accessToken string) (domain.Profile, error)
	Revoke(ctx context.Context, accessToken string) error
}
