package domain

import "errors"

var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrMissingCredentials = errors.New("missing username or password")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is a registered account. Password always holds a bcrypt hash once the
// record has been persisted.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	PhoneNo  string `json:"phoneNo"`
}

// UserSummary is the projection returned by the user listing.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
