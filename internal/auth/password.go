package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	hashScheme = "pbkdf2_sha256"
	saltBytes  = 16
	keyBytes   = 32
)

// HashSecret derives a salted PBKDF2-SHA256 hash of the secret, encoded as
// scheme$iterations$salt$hash so the parameters travel with the value.
func HashSecret(secret string, iterations int) (string, error) {
	if iterations <= 0 {
		iterations = 210000
	}
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := pbkdf2.Key([]byte(secret), salt, iterations, keyBytes, sha256.New)
	return fmt.Sprintf("%s$%d$%s$%s",
		hashScheme,
		iterations,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifySecret recomputes the hash of the supplied secret using the stored
// salt and iteration count and compares in constant time. Any malformed
// stored value is treated as no match; verification fails closed.
func VerifySecret(stored, supplied string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 4 || parts[0] != hashScheme {
		return false
	}
	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil || len(expected) == 0 {
		return false
	}
	key := pbkdf2.Key([]byte(supplied), salt, iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(key, expected) == 1
}
