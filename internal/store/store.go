// Package store persists JSON documents grouped into collections. Every call
// hits storage; there is no cache.
package store

import (
	"fmt"

	"uk.co.dudmesh.checkup/internal/boot"
	"uk.co.dudmesh.checkup/internal/model"
)

type Collection string

const (
	Users  Collection = "users"
	Tokens Collection = "tokens"
	Checks Collection = "checks"
)

var Collections = []Collection{Users, Tokens, Checks}

// Store is implemented by every driver. Create never overwrites and Update
// never creates; both report model.ErrorAlreadyExists / model.ErrorNotFound.
type Store interface {
	Create(collection Collection, key string, doc interface{}) error
	Read(collection Collection, key string, doc interface{}) error
	Update(collection Collection, key string, doc interface{}) error
	Delete(collection Collection, key string) error
	Close() error
}

func New(config *boot.Config) (Store, error) {
	switch config.StoreDriver {
	case boot.StoreDriverFile:
		return NewFileStore(config.DataDirectory)
	case boot.StoreDriverSQLite:
		return NewSQLiteStore(config.DataDirectory)
	default:
		return nil, fmt.Errorf("unknown store driver %q", config.StoreDriver)
	}
}

func validKey(key string) error {
	if !model.IsDocumentKey(key) {
		return fmt.Errorf("%w: %q", model.ErrorInvalidKey, key)
	}
	return nil
}

func validCollection(collection Collection) error {
	for _, c := range Collections {
		if c == collection {
			return nil
		}
	}
	return fmt.Errorf("unknown collection %q", collection)
}
