package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost trades login latency for brute-force resistance.
const bcryptCost = 12

// HashPassword returns a salted bcrypt hash of the plaintext. Hashing the
// same input twice yields different hashes.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether password matches the stored hash. A non-nil
// error means the stored hash itself is not a valid bcrypt hash, not that the
// password is wrong; the login flow uses the distinction to handle
// out-of-band-seeded records.
func VerifyPassword(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
