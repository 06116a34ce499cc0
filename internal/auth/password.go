package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher hashes and verifies member passwords with a fixed cost.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher builds a hasher, falling back to the bcrypt default
// cost when the configured value is out of range.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash hashes a plaintext password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether the password matches its hashed value.
func (h *PasswordHasher) Verify(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
