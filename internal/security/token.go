package security

import (
	"encoding/hex"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
)

// NewPublicToken generates the opaque token handed to an unauthenticated
// respondent. The plaintext is shown exactly once; only its digest is stored.
func NewPublicToken() string {
	return uuid.NewString()
}

// HashToken returns the hex SHA3-256 digest of a token for storage and
// lookup.
func HashToken(token string) string {
	sum := sha3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
