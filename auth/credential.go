package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"fileserver-lab/protocol"

	"golang.org/x/crypto/argon2"
)

// SaltLength is the number of random bytes mixed into each stored credential.
const SaltLength = 16

// NewSalt generates a fresh random salt.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// HashSignature computes SHA256(signature || salt), the credential kept by the server.
func HashSignature(signature, salt []byte) []byte {
	material := make([]byte, 0, len(signature)+len(salt))
	material = append(material, signature...)
	material = append(material, salt...)
	hash := protocol.Sum(material)
	return hash[:]
}

// CompareSignature re-hashes signature with the stored salt and compares the result
// with the stored hash in constant time.
func CompareSignature(signature, salt, hash []byte) bool {
	return subtle.ConstantTimeCompare(HashSignature(signature, salt), hash) == 1
}

// Argon2id parameters used by clients to turn a password into a signature
// (OWASP minimum recommendation).
const (
	Memory      = 19 * 1024 // 19 MB
	Iterations  = 2
	Parallelism = 1
)

// DeriveSignature turns a password and a client-side salt into the fixed-width signature
// sent in every request. The server never sees the password nor this salt.
func DeriveSignature(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, Iterations, Memory, Parallelism, protocol.LenSignature)
}
