package crypto

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost matches the work factor used by existing account records.
const DefaultCost = 10

// BcryptHasher implements ports.PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with the given cost, falling back to
// DefaultCost when cost is outside bcrypt's accepted range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
