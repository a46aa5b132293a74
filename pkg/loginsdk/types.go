package loginsdk

import "time"

// User is the public profile shape. The access token never appears here.
type User struct {
	ID           int64  `json:"id"`
	Nickname     string `json:"nickname,omitempty"`
	Email        string `json:"email,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// StoredUser is a persisted user row.
type StoredUser struct {
	User
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LastLogin time.Time `json:"last_login"`
}

// ErrorResponse is the body of every JSON error. Details is only filled
// outside production.
type ErrorResponse struct {
	Success       bool   `json:"success"`
	Error         string `json:"error"`
	Reason        string `json:"reason,omitempty"`
	Details       string `json:"details,omitempty"`
	Authenticated *bool  `json:"authenticated,omitempty"`
}

type AuthURLResponse struct {
	Success bool   `json:"success"`
	AuthURL string `json:"authUrl"`
	Message string `json:"message"`
}

type LoginResponse struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	User     User     `json:"user"`
	Warnings []string `json:"warnings,omitempty"`
}

type CurrentUserResponse struct {
	Success       bool `json:"success"`
	Authenticated bool `json:"authenticated"`
	User          User `json:"user"`
}

type MessageResponse struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	Warnings []string `json:"warnings,omitempty"`
}

type UsersResponse struct {
	Success bool         `json:"success"`
	Count   int          `json:"count"`
	Users   []StoredUser `json:"users"`
}

type UserResponse struct {
	Success bool       `json:"success"`
	User    StoredUser `json:"user"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"` // seconds
}

type InfoResponse struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Mode      string            `json:"mode"`
	Endpoints map[string]string `json:"endpoints"`
}

type DBStatusResponse struct {
	Success   bool      `json:"success"`
	Connected bool      `json:"connected"`
	Driver    string    `json:"driver"`
	Database  string    `json:"database,omitempty"`
	Host      string    `json:"host,omitempty"`
	Port      int       `json:"port,omitempty"`
	Users     *int64    `json:"users,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

type NotFoundResponse struct {
	Success            bool     `json:"success"`
	Error              string   `json:"error"`
	Path               string   `json:"path"`
	AvailableEndpoints []string `json:"availableEndpoints"`
}
