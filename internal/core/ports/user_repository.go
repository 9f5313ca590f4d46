package ports

import (
	"context"

	"github.com/myapp/account-service/internal/core/domain"
)

// UserProfile carries the mutable profile fields written by an update.
type UserProfile struct {
	Username string
	Email    string
	PhoneNo  string
}

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// List returns every user projected to id and username, in store order.
	List(ctx context.Context) ([]domain.UserSummary, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByUsernameOrEmail returns the first user whose username or email matches.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// UpdateProfile overwrites all three profile fields and returns the updated record.
	UpdateProfile(ctx context.Context, id string, profile UserProfile) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
