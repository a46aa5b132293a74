package domain

import "time"

// Profile is the provider's view of a user. It is fetched fresh on every
// login and always overwrites what was stored before.
type Profile struct {
	ID          int64 // provider-assigned, immutable
	DisplayName string
	Email       string
	AvatarURL   string
}

// User is the persisted copy of a Profile.
type User struct {
	Profile
	CreatedAt time.Time
	UpdatedAt time.Time
	LastLogin time.Time
}
