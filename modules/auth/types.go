package auth

import "context"

// LoginRequest represents a login attempt.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse reports whether the login was accepted.
type LoginResponse struct {
	Success bool `json:"success"`
}

// AuthPort defines the authentication operations available to other modules.
type AuthPort interface {
	Login(ctx context.Context, username, password string) (bool, error)
}
