package ports

import (
	"context"

	"github.com/myapp/account-service/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer on registration.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	PhoneNo  string
}

// AccountService defines the user account use cases.
type AccountService interface {
	ListUsers(ctx context.Context) ([]domain.UserSummary, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, profile UserProfile) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) error
}
