package ports

import "context"

// RegistrationGuard reserves a username/email pair for the duration of a
// registration. Claim returns false when another registration holds either value.
type RegistrationGuard interface {
	Claim(ctx context.Context, username, email string) (bool, error)
	Release(ctx context.Context, username, email string) error
}
