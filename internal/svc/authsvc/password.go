package authsvc

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	passwordIterations = 100000
	passwordKeyLength  = 64
	passwordSaltLength = 16
)

// HashPassword derives a credential of the form "<salt>:<hash>" from password,
// both parts lowercase hex. The salt is used in its hex form as PBKDF2 input.
func HashPassword(password string) (string, error) {
	saltBytes := make([]byte, passwordSaltLength)
	if _, err := rand.Read(saltBytes); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}

	salt := hex.EncodeToString(saltBytes)

	return salt + ":" + derivePasswordHash(password, salt), nil
}

// VerifyPassword reports whether password matches the stored credential.
// Malformed credentials never match.
func VerifyPassword(password, credential string) bool {
	salt, hash, ok := strings.Cut(credential, ":")
	if !ok || salt == "" || hash == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(derivePasswordHash(password, salt)), []byte(hash)) == 1
}

func derivePasswordHash(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), passwordIterations, passwordKeyLength, sha512.New)

	return hex.EncodeToString(key)
}
