package http

import (
	"github.com/aussiebroadwan/kakaologin/internal/login/domain"
	"github.com/aussiebroadwan/kakaologin/pkg/loginsdk"
)

func toSDKUser(p domain.Profile) loginsdk.User {
	return loginsdk.User{
		ID:           p.ID,
		Nickname:     p.DisplayName,
		Email:        p.Email,
		ProfileImage: p.AvatarURL,
	}
}

func toSDKStoredUser(u domain.User) loginsdk.StoredUser {
	return loginsdk.StoredUser{
		User:      toSDKUser(u.Profile),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		LastLogin: u.LastLogin,
	}
}
