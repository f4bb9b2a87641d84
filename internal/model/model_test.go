package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCreateID(t *testing.T) {
	assert := assert.New(t)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id, err := CreateID(TokenIDLength)
		assert.Nil(err)
		assert.Len(id, TokenIDLength)
		for _, r := range id {
			assert.True(strings.ContainsRune(idAlphabet, r), "unexpected rune %q", r)
		}
		assert.False(seen[id])
		seen[id] = true
	}
}

func TestUserChecks(t *testing.T) {
	assert := assert.New(t)

	user := &User{Checks: []string{"a", "b", "c"}}
	assert.True(user.HasCheck("b"))
	assert.True(user.RemoveCheck("b"))
	assert.Equal([]string{"a", "c"}, user.Checks)
	assert.False(user.HasCheck("b"))
	assert.False(user.RemoveCheck("b"))
}

func TestTokenValidAt(t *testing.T) {
	assert := assert.New(t)

	now := time.UnixMilli(1_700_000_000_000)
	token := &Token{Expires: now.Add(time.Hour).UnixMilli()}
	assert.True(token.ValidAt(now))
	assert.False(token.ValidAt(now.Add(time.Hour)))
	assert.Equal(now.Add(time.Hour), token.ExpiresAt())
}

func TestIsDocumentKey(t *testing.T) {
	assert := assert.New(t)

	for _, key := range []string{"a@x.com", "abcdefghij0123456789", "first.last@x.com"} {
		assert.True(IsDocumentKey(key), key)
	}
	for _, key := range []string{"", ".", "..", "../x", "a/b", `a\b`, "a\x00b"} {
		assert.False(IsDocumentKey(key), key)
	}
}
