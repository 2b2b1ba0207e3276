package auth

import "golang.org/x/crypto/bcrypt"

// DefaultPasswordCost is the bcrypt work factor used for stored passwords.
const DefaultPasswordCost = 12

// PasswordHasher hashes and verifies administrator passwords with bcrypt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher using DefaultPasswordCost.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: DefaultPasswordCost}
}

// NewPasswordHasherWithCost returns a hasher using the given bcrypt cost.
// Costs outside bcrypt's accepted range fall back to DefaultPasswordCost.
func NewPasswordHasherWithCost(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultPasswordCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns a salted bcrypt hash of plaintext.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches hash. Malformed hashes never match.
func (h *PasswordHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
