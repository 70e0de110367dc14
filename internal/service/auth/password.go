package auth

import "golang.org/x/crypto/bcrypt"

// PasswordVerifier checks a login password against a stored hash. Hashing
// itself happens in the user store at registration time; login only needs
// the comparison.
type PasswordVerifier interface {
	// Compare returns nil when the plaintext password matches the hash.
	Compare(hashedPassword, password string) error
}

// BcryptVerifier is the bcrypt-backed PasswordVerifier.
type BcryptVerifier struct{}

var _ PasswordVerifier = (*BcryptVerifier)(nil)

// NewBcryptVerifier creates a new BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

func (v *BcryptVerifier) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
