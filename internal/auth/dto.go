package auth

import "github.com/cafemenu/cafemenu-backend/internal/users"

// LoginResult is the login payload. It is returned with HTTP 200 whether or
// not the credentials matched; clients inspect Success, not the status code.
type LoginResult struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Token   string         `json:"token,omitempty"`
	Admin   *users.UserDTO `json:"admin,omitempty"`
}
