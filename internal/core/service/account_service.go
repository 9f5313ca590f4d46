package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/myapp/account-service/internal/core/domain"
	"github.com/myapp/account-service/internal/core/ports"
)

// AccountService implements ports.AccountService on top of a user repository
// and a password hasher.
type AccountService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	guard  ports.RegistrationGuard
	log    zerolog.Logger
}

// NewAccountService wires the service. guard may be nil, in which case
// registration relies only on the existence check.
func NewAccountService(repo ports.UserRepository, hasher ports.PasswordHasher, guard ports.RegistrationGuard, log zerolog.Logger) *AccountService {
	return &AccountService{repo: repo, hasher: hasher, guard: guard, log: log}
}

func (s *AccountService) ListUsers(ctx context.Context) ([]domain.UserSummary, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *AccountService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateUser overwrites username, email and phoneNo. Empty fields in profile
// are written as empty values; password and id are never touched.
func (s *AccountService) UpdateUser(ctx context.Context, id string, profile ports.UserProfile) (*domain.User, error) {
	user, err := s.repo.UpdateProfile(ctx, id, profile)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.log.Info().Str("user_id", id).Msg("user updated")
	return user, nil
}

func (s *AccountService) DeleteUser(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

// Register creates a new account after checking that neither the username nor
// the email is taken. The check and the insert are not atomic.
func (s *AccountService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" || in.PhoneNo == "" {
		return nil, domain.ErrMissingFields
	}

	if s.guard != nil {
		claimed, err := s.guard.Claim(ctx, in.Username, in.Email)
		if err != nil {
			s.log.Warn().Err(err).Str("username", in.Username).Msg("registration claim failed, continuing without it")
		} else if !claimed {
			// Another registration for this name is in flight. It is reported as
			// taken even if that registration later fails; the claim expires.
			return nil, domain.ErrUserExists
		} else {
			defer func() {
				if err := s.guard.Release(context.WithoutCancel(ctx), in.Username, in.Email); err != nil {
					s.log.Warn().Err(err).Str("username", in.Username).Msg("failed to release registration claim")
				}
			}()
		}
	}

	existing, err := s.repo.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrUserExists
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
		PhoneNo:  in.PhoneNo,
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

// Login verifies the password of the user with the given username. Unknown
// usernames and wrong passwords both yield domain.ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return domain.ErrMissingCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Debug().Str("username", username).Msg("login for unknown username")
			return domain.ErrInvalidCredentials
		}
		return fmt.Errorf("login: %w", err)
	}

	if s.hasher.Compare(user.Password, password) != nil {
		s.log.Debug().Str("username", username).Msg("login with wrong password")
		return domain.ErrInvalidCredentials
	}

	return nil
}
