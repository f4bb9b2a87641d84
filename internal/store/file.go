package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"

	"uk.co.dudmesh.checkup/internal/model"
)

type fileStore struct {
	baseDir string
}

// NewFileStore keeps one file per document at baseDir/collection/key.json.
func NewFileStore(baseDir string) (*fileStore, error) {
	for _, collection := range Collections {
		if err := os.MkdirAll(path.Join(baseDir, string(collection)), 0o700); err != nil {
			return nil, fmt.Errorf("creating collection directory %s: %w", collection, err)
		}
	}
	return &fileStore{baseDir}, nil
}

func (s *fileStore) pathFor(collection Collection, key string) (string, error) {
	if err := validCollection(collection); err != nil {
		return "", err
	}
	if err := validKey(key); err != nil {
		return "", err
	}
	return path.Join(s.baseDir, string(collection), key+".json"), nil
}

func (s *fileStore) Create(collection Collection, key string, doc interface{}) error {
	filename, err := s.pathFor(collection, key)
	if err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshalling document: %w", err)
	}

	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return model.ErrorAlreadyExists
		}
		return fmt.Errorf("creating %s/%s: %w", collection, key, err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		return fmt.Errorf("writing %s/%s: %w", collection, key, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *fileStore) Read(collection Collection, key string, doc interface{}) error {
	filename, err := s.pathFor(collection, key)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.ErrorNotFound
		}
		return fmt.Errorf("reading %s/%s: %w", collection, key, err)
	}

	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("unmarshalling %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *fileStore) Update(collection Collection, key string, doc interface{}) error {
	filename, err := s.pathFor(collection, key)
	if err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshalling document: %w", err)
	}

	file, err := os.OpenFile(filename, os.O_WRONLY, 0)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.ErrorNotFound
		}
		return fmt.Errorf("opening %s/%s: %w", collection, key, err)
	}

	// truncate first so a shorter document leaves no trailing bytes
	if err := file.Truncate(0); err != nil {
		file.Close()
		return fmt.Errorf("truncating %s/%s: %w", collection, key, err)
	}
	if _, err := file.WriteAt(data, 0); err != nil {
		file.Close()
		return fmt.Errorf("writing %s/%s: %w", collection, key, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *fileStore) Delete(collection Collection, key string) error {
	filename, err := s.pathFor(collection, key)
	if err != nil {
		return err
	}

	if err := os.Remove(filename); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.ErrorNotFound
		}
		return fmt.Errorf("deleting %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *fileStore) Close() error {
	return nil
}
