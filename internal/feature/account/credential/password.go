// Package credential implements password hashing for the account feature.
package credential

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"account_backend/internal/feature/account/domain"
	"account_backend/internal/feature/account/validation"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 10

// Hasher hashes and compares passwords with bcrypt.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given bcrypt cost.
// Costs outside bcrypt's accepted range fall back to DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Cost returns the configured work factor.
func (h *Hasher) Cost() int {
	return h.cost
}

// HashPassword returns a salted bcrypt hash of password.
// bcrypt generates the salt internally, so a salt failure surfaces as a hashing failure.
func (h *Hasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", domain.New(domain.KindValidation, domain.MsgPasswordRequired)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", domain.Wrap(domain.KindCrypto, domain.MsgHashFailed, err)
	}
	return string(hashed), nil
}

// ComparePassword reports whether password matches hashedPassword.
// A mismatch is (false, nil); only malformed input or a broken hash is an error.
func (h *Hasher) ComparePassword(password, hashedPassword string) (bool, error) {
	if err := validation.ValidateComparePassword(validation.ComparePasswordInput{
		Password:       password,
		HashedPassword: hashedPassword,
	}); err != nil {
		return false, err
	}

	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, domain.Wrap(domain.KindCrypto, domain.MsgCompareFailed, err)
	}
}
