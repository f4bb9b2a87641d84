package model

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// CreateID returns a random string of the given length drawn uniformly from
// lowercase letters and digits.
func CreateID(length int) (string, error) {
	max := big.NewInt(int64(len(idAlphabet)))
	id := make([]byte, length)
	for i := range id {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("reading random index: %w", err)
		}
		id[i] = idAlphabet[n.Int64()]
	}
	return string(id), nil
}

// IsDocumentKey reports whether key can name a stored document without
// escaping its collection.
func IsDocumentKey(key string) bool {
	return key != "" && key != "." && !strings.Contains(key, "..") && !strings.ContainsAny(key, "/\\\x00")
}
