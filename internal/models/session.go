package models

import "strings"

// Session is the login state reported by the backend.
type Session struct {
	LoggedIn bool   `json:"logged_in"`
	Username string `json:"username,omitempty"`
}

// Credentials is the body of POST /login and POST /register.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Valid reports whether both fields are non-blank.
func (c Credentials) Valid() bool {
	return strings.TrimSpace(c.Username) != "" && c.Password != ""
}

// AuthResponse is returned by /login and /register.
type AuthResponse struct {
	Username string `json:"username,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// MessageResponse is the generic {message} or {error} body.
type MessageResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
