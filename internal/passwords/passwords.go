// Package passwords salts, hashes and verifies user passwords.
//
// A stored hash has the form "salt:digest". New digests are PBKDF2-HMAC-SHA256
// and carry their iteration count ("pbkdf2-sha256$<iterations>$<hex>"). Digests
// without that prefix are the legacy hex(sha256(password || salt)) produced by
// older seeding scripts and are still accepted by Verify.
package passwords

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultIterations is the PBKDF2 round count of the package-level codec.
	DefaultIterations = 210_000

	saltBytes    = 16
	keyBytes     = 32
	delimiter    = ":"
	pbkdf2Prefix = "pbkdf2-sha256$"
)

// Codec hashes passwords with a fixed PBKDF2 iteration count.
type Codec struct {
	iterations int
}

var defaultCodec = New(DefaultIterations)

// New returns a Codec using the given number of PBKDF2 iterations (at least 1).
func New(iterations int) *Codec {
	if iterations < 1 {
		iterations = 1
	}
	return &Codec{iterations: iterations}
}

// Hash uses the default codec.
func Hash(password string) (string, error) {
	return defaultCodec.Hash(password)
}

// Verify uses the default codec.
func Verify(password, stored string) bool {
	return defaultCodec.Verify(password, stored)
}

// Hash returns "salt:digest" for the password with a freshly generated salt.
func (c *Codec) Hash(password string) (string, error) {
	raw := make([]byte, saltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("in internal/passwords/passwords.go/Hash(): error while `rand.Read()` calling: %w", err)
	}
	salt := hex.EncodeToString(raw)

	return salt + delimiter + c.digest(password, salt, c.iterations), nil
}

// Verify reports whether password matches the stored "salt:digest" string.
// Malformed input yields false.
func (c *Codec) Verify(password, stored string) bool {
	salt, digest, found := strings.Cut(stored, delimiter)
	if !found {
		return false
	}

	var expected string
	if rest, ok := strings.CutPrefix(digest, pbkdf2Prefix); ok {
		iterationsPart, _, ok := strings.Cut(rest, "$")
		if !ok {
			return false
		}
		iterations, err := strconv.Atoi(iterationsPart)
		if err != nil || iterations < 1 {
			return false
		}
		expected = c.digest(password, salt, iterations)
	} else {
		expected = legacyDigest(password, salt)
	}

	return subtle.ConstantTimeCompare([]byte(expected), []byte(digest)) == 1
}

func (c *Codec) digest(password, salt string, iterations int) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, keyBytes, sha256.New)
	return pbkdf2Prefix + strconv.Itoa(iterations) + "$" + hex.EncodeToString(key)
}

// LegacyHash renders password in the legacy "salt:hex(sha256(password||salt))"
// format. It exists for fixtures that must look like the seeded data.
func LegacyHash(password, salt string) string {
	return salt + delimiter + legacyDigest(password, salt)
}

func legacyDigest(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}
