package crypto

import (
	"errors"
	"sync"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// Password bounds. The minimum counts characters; the maximum counts bytes
// because bcrypt ignores anything past 72.
const (
	MinPasswordLen = 8
	MaxPasswordLen = 72
)

// ErrPasswordLength is returned when a password falls outside the accepted bounds.
var ErrPasswordLength = errors.New("password must be at least 8 characters and at most 72 bytes")

// burnHashes caches one placeholder hash per bcrypt cost.
var burnHashes sync.Map

func burnHash(cost int) []byte {
	if h, ok := burnHashes.Load(cost); ok {
		return h.([]byte)
	}
	h, err := bcrypt.GenerateFromPassword([]byte("note-shelf-placeholder"), cost)
	if err != nil {
		h, _ = bcrypt.GenerateFromPassword([]byte("note-shelf-placeholder"), bcrypt.DefaultCost)
	}
	actual, _ := burnHashes.LoadOrStore(cost, h)
	return actual.([]byte)
}

// HashPassword hashes a password using bcrypt with the given cost
func HashPassword(password string, cost int) (string, error) {
	if !ValidPasswordLength(password) {
		return "", ErrPasswordLength
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword verifies a password against its hash
func CheckPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// PrepareBurn computes the placeholder hash for cost ahead of the first
// unknown-email login.
func PrepareBurn(cost int) {
	burnHash(cost)
}

// BurnCompare runs a comparison that always fails, at the same cost as
// stored password hashes, so a login for an unknown account takes as long
// as a wrong password.
func BurnCompare(password string, cost int) {
	_ = bcrypt.CompareHashAndPassword(burnHash(cost), []byte(password))
}

// ValidPasswordLength reports whether password has at least 8 characters
// and at most 72 bytes.
func ValidPasswordLength(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLen && len(password) <= MaxPasswordLen
}
