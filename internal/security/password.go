package security

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is the bcrypt work factor used when the config
// does not override it.
const DefaultBcryptCost = 12

// HashPassword hashes a plaintext password with bcrypt at the given
// cost; a cost outside bcrypt's valid range falls back to the default.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
