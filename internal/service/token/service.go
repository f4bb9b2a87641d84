package token

import (
	"errors"
	"fmt"
	"time"

	"uk.co.dudmesh.checkup/internal/keylock"
	"uk.co.dudmesh.checkup/internal/model"
	"uk.co.dudmesh.checkup/internal/store"
)

const (
	TTL           = time.Hour
	issueAttempts = 3
)

type Database interface {
	Create(collection store.Collection, key string, doc interface{}) error
	Read(collection store.Collection, key string, doc interface{}) error
	Update(collection store.Collection, key string, doc interface{}) error
	Delete(collection store.Collection, key string) error
}

type service struct {
	db    Database
	locks *keylock.Locker
	now   func() time.Time
}

func New(db Database) *service {
	return &service{
		db:    db,
		locks: keylock.New(),
		now:   time.Now,
	}
}

// WithClock replaces the time source, for tests that cross the expiry boundary.
func (s *service) WithClock(now func() time.Time) *service {
	s.now = now
	return s
}

// Issue creates a token for email. The caller must already have checked the password.
func (s *service) Issue(email string) (*model.Token, error) {
	for attempt := 0; attempt < issueAttempts; attempt++ {
		id, err := model.CreateID(model.TokenIDLength)
		if err != nil {
			return nil, fmt.Errorf("generating token id: %w", err)
		}

		token := &model.Token{
			ID:      id,
			Email:   email,
			Expires: s.now().Add(TTL).UnixMilli(),
		}
		err = s.db.Create(store.Tokens, id, token)
		if errors.Is(err, model.ErrorAlreadyExists) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("storing token: %w", err)
		}
		return token, nil
	}
	return nil, fmt.Errorf("no unused token id after %d attempts", issueAttempts)
}

func (s *service) Lookup(id string) (*model.Token, error) {
	token := &model.Token{}
	if err := s.db.Read(store.Tokens, id, token); err != nil {
		return nil, err
	}
	return token, nil
}

// Verify reports whether id names an unexpired token bound to email. Any
// failure to read the token counts as invalid.
func (s *service) Verify(id, email string) bool {
	if id == "" || email == "" {
		return false
	}
	token, err := s.Lookup(id)
	if err != nil {
		return false
	}
	return token.Email == email && token.ValidAt(s.now())
}

// Extend pushes expiry to now+TTL. Expired tokens are left untouched.
func (s *service) Extend(id string) (*model.Token, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	token, err := s.Lookup(id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !token.ValidAt(now) {
		return nil, model.ErrorTokenExpired
	}

	token.Expires = now.Add(TTL).UnixMilli()
	if err := s.db.Update(store.Tokens, id, token); err != nil {
		return nil, fmt.Errorf("updating token: %w", err)
	}
	return token, nil
}

func (s *service) Revoke(id string) error {
	return s.db.Delete(store.Tokens, id)
}
