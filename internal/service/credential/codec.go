package credential

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"uk.co.dudmesh.checkup/internal/boot"
)

const bcryptCost = 10

type Codec interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

func New(config *boot.Config) (Codec, error) {
	switch config.HashScheme {
	case boot.HashSchemeHMAC:
		return NewHMAC(config.HashingSecret), nil
	case boot.HashSchemeBcrypt:
		return NewBcrypt(), nil
	default:
		return nil, fmt.Errorf("unknown hash scheme %q", config.HashScheme)
	}
}

type hmacCodec struct {
	secret []byte
}

// NewHMAC hashes with HMAC-SHA256 under an application-wide secret. The same
// plaintext always yields the same digest.
func NewHMAC(secret string) *hmacCodec {
	return &hmacCodec{[]byte(secret)}
}

func (c *hmacCodec) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("empty plaintext")
	}
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(plaintext))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

func (c *hmacCodec) Verify(plaintext, digest string) bool {
	candidate, err := c.Hash(plaintext)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(digest)) == 1
}

type bcryptCodec struct{}

func NewBcrypt() *bcryptCodec {
	return &bcryptCodec{}
}

func (c *bcryptCodec) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("empty plaintext")
	}
	passwordBytes, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("generating encoded password: %w", err)
	}
	return base64.StdEncoding.EncodeToString(passwordBytes), nil
}

func (c *bcryptCodec) Verify(plaintext, digest string) bool {
	passwordBytes, err := base64.StdEncoding.DecodeString(digest)
	if err != nil {
		return false
	}
	return bcrypt.CompareHashAndPassword(passwordBytes, []byte(plaintext)) == nil
}
