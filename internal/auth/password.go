// Package auth hashes and verifies user passwords.
package auth

import (
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

// werkzeugDefaultIterations applies to legacy hashes that omit the iteration count.
const werkzeugDefaultIterations = 600000

// bcrypt ignores input past this many bytes.
const bcryptMaxInput = 72

// ErrUnknownHashFormat is returned for stored hashes no verifier understands.
var ErrUnknownHashFormat = errors.New("unknown password hash format")

// Hasher produces bcrypt hashes and verifies bcrypt and legacy PBKDF2 hashes.
type Hasher struct {
	cost int
	// dummy is compared against when the user does not exist so both failure
	// paths spend roughly the same time.
	dummy []byte
}

// NewHasher returns a Hasher using the given bcrypt cost. Out of range costs
// fall back to bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("inkwell-dummy-password"), cost)
	return &Hasher{cost: cost, dummy: dummy}
}

// Hash returns a bcrypt hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword(bcryptInput(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(out), nil
}

// Verify checks password against a stored hash. needsRehash is true when the
// password matched a legacy PBKDF2 hash that should be upgraded to bcrypt.
// Legacy hashes are only accepted when allowLegacy is set.
func (h *Hasher) Verify(stored, password string, allowLegacy bool) (ok bool, needsRehash bool, err error) {
	if strings.HasPrefix(stored, "pbkdf2:") {
		if !allowLegacy {
			return false, false, nil
		}
		ok, err := verifyWerkzeug(stored, password)
		return ok, ok, err
	}

	if _, costErr := bcrypt.Cost([]byte(stored)); costErr != nil {
		return false, false, ErrUnknownHashFormat
	}

	err = bcrypt.CompareHashAndPassword([]byte(stored), bcryptInput(password))
	switch {
	case err == nil:
		return true, false, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, false, nil
	default:
		return false, false, err
	}
}

// VerifyMissing burns a bcrypt comparison for a user that does not exist.
func (h *Hasher) VerifyMissing(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, bcryptInput(password))
}

// bcryptInput pre-hashes passwords longer than bcrypt's input limit so every
// byte of the password still counts.
func bcryptInput(password string) []byte {
	if len(password) <= bcryptMaxInput {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// verifyWerkzeug checks a "pbkdf2:<hash>[:<iterations>]$<salt>$<hex>" hash.
func verifyWerkzeug(stored, password string) (bool, error) {
	method, salt, digest, ok := splitWerkzeug(stored)
	if !ok {
		return false, ErrUnknownHashFormat
	}

	parts := strings.Split(method, ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != "pbkdf2" {
		return false, ErrUnknownHashFormat
	}

	var newHash func() hash.Hash
	switch parts[1] {
	case "sha256":
		newHash = sha256.New
	case "sha512":
		newHash = sha512.New
	default:
		return false, ErrUnknownHashFormat
	}

	iterations := werkzeugDefaultIterations
	if len(parts) == 3 {
		n, err := strconv.Atoi(parts[2])
		if err != nil || n <= 0 {
			return false, ErrUnknownHashFormat
		}
		iterations = n
	}

	want, err := hex.DecodeString(digest)
	if err != nil {
		return false, ErrUnknownHashFormat
	}

	got := pbkdf2.Key([]byte(password), []byte(salt), iterations, newHash().Size(), newHash)
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func splitWerkzeug(stored string) (method, salt, digest string, ok bool) {
	method, rest, found := strings.Cut(stored, "$")
	if !found {
		return "", "", "", false
	}
	salt, digest, found = strings.Cut(rest, "$")
	if !found || salt == "" || digest == "" {
		return "", "", "", false
	}
	return method, salt, digest, true
}

// LegacyHash builds a werkzeug-compatible PBKDF2-SHA256 hash. It exists for
// importing and testing against data written by the previous system.
func LegacyHash(password, salt string, iterations int) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, sha256.Size, sha256.New)
	return fmt.Sprintf("pbkdf2:sha256:%d$%s$%s", iterations, salt, hex.EncodeToString(key))
}
