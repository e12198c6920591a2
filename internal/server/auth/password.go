// Package auth implements credential primitives for the server: salted
// one-way password hashes and signed operator session tokens.
package auth

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/argon2"

	"github.com/gabrielslopes/labelcheck/internal/common"
)

const saltSize = 16

// argon2id parameters, fixed for the lifetime of a stored hash.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

func hashPassword(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// MakeHash generates a fresh random salt and the argon2id hash of
// salt‖password. Both are returned hex-encoded for storage; the plaintext
// never leaves this function.
func MakeHash(password string) (saltHex, hashHex string) {
	salt := common.GenerateRandByteArray(saltSize)
	hash := hashPassword(password, salt)
	return hex.EncodeToString(salt), hex.EncodeToString(hash)
}

// VerifyPassword reports whether password hashes to hashHex under saltHex.
// Comparison is constant-time; malformed stored values simply fail.
func VerifyPassword(password, saltHex, hashHex string) bool {
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	stored, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}
	candidate := hashPassword(password, salt)
	return subtle.ConstantTimeCompare(stored, candidate) == 1
}
