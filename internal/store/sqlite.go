package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"uk.co.dudmesh.checkup/internal/model"
)

type sqliteStore struct {
	db *sqlx.DB
}

type document struct {
	Collection string `db:"collection"`
	Key        string `db:"key"`
	Body       string `db:"body"`
}

// NewSQLiteStore keeps every collection in a single documents table inside
// baseDir/documents.db.
func NewSQLiteStore(baseDir string) (*sqliteStore, error) {
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return openSQLite("file:" + path.Join(baseDir, "documents.db") + "?_busy_timeout=5000")
}

func openSQLite(dsn string) (*sqliteStore, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// sqlite allows a single writer; one connection avoids SQLITE_BUSY between our own goroutines
	db.SetMaxOpenConns(1)

	s := &sqliteStore{db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}
	return s, nil
}

func (s *sqliteStore) createTables() error {
	_, err := s.db.Exec(`create table if not exists documents(
		collection text not null,
		key        text not null,
		body       text not null,
		primary key (collection, key)
	)`)
	if err != nil {
		return fmt.Errorf("creating documents table: %w", err)
	}
	return nil
}

func (s *sqliteStore) Create(collection Collection, key string, doc interface{}) error {
	row, err := newDocument(collection, key, doc)
	if err != nil {
		return err
	}

	_, err = s.db.NamedExec(`insert into documents (collection, key, body) values (:collection, :key, :body)`, row)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return model.ErrorAlreadyExists
		}
		return fmt.Errorf("inserting %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *sqliteStore) Read(collection Collection, key string, doc interface{}) error {
	if err := validDocument(collection, key); err != nil {
		return err
	}

	var body string
	err := s.db.Get(&body, `select body from documents where collection = ? and key = ?`, string(collection), key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrorNotFound
		}
		return fmt.Errorf("selecting %s/%s: %w", collection, key, err)
	}

	if err := json.Unmarshal([]byte(body), doc); err != nil {
		return fmt.Errorf("unmarshalling %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *sqliteStore) Update(collection Collection, key string, doc interface{}) error {
	row, err := newDocument(collection, key, doc)
	if err != nil {
		return err
	}

	res, err := s.db.NamedExec(`update documents set body = :body where collection = :collection and key = :key`, row)
	if err != nil {
		return fmt.Errorf("updating %s/%s: %w", collection, key, err)
	}
	return expectOneRow(res)
}

func (s *sqliteStore) Delete(collection Collection, key string) error {
	if err := validDocument(collection, key); err != nil {
		return err
	}

	res, err := s.db.Exec(`delete from documents where collection = ? and key = ?`, string(collection), key)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, key, err)
	}
	return expectOneRow(res)
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func validDocument(collection Collection, key string) error {
	if err := validCollection(collection); err != nil {
		return err
	}
	return validKey(key)
}

func newDocument(collection Collection, key string, doc interface{}) (*document, error) {
	if err := validDocument(collection, key); err != nil {
		return nil, err
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshalling document: %w", err)
	}
	return &document{Collection: string(collection), Key: key, Body: string(body)}, nil
}

func expectOneRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrorNotFound
	}
	if rows != 1 {
		return fmt.Errorf("expected 1 row to be affected, got %d", rows)
	}
	return nil
}
