package model

import "time"

const TokenIDLength = 20

// Token is a bearer credential bound to one email. Expires is in unix milliseconds.
type Token struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Expires int64  `json:"expires"`
}

func (t *Token) ExpiresAt() time.Time {
	return time.UnixMilli(t.Expires)
}

func (t *Token) ValidAt(now time.Time) bool {
	return t.Expires > now.UnixMilli()
}
