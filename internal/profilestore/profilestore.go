// Package profilestore caches induced signal profiles — a capture's
// estimated SignalParameters plus its message-type field layout — keyed
// by a caller-supplied fingerprint, so re-analyzing the same capture (or
// one taken under the same conditions) can skip straight to a known
// layout. Grounded on the teacher's internal/storage.SqliteStore: lazy,
// sync.Once-guarded read and write *sql.DB handles over one SQLite
// file, WAL mode on the write side, a schema loaded with go:embed.
package profilestore

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store is a SQLite-backed cache of signal profiles.
type Store struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// New returns a Store backed by the SQLite file at dbPath. The file and
// schema are created lazily by the first Put; Get opens the file
// read-only and returns an error while it does not exist yet.
func New(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

func (s *Store) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL", s.dbPath))
		if err != nil {
			s.writeDBErr = fmt.Errorf("profilestore: opening write connection: %w", err)
			return
		}
		if _, err = db.Exec(schemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("profilestore: initializing schema: %w", err)
			return
		}
		s.writeDB = db
	})
	return s.writeDB, s.writeDBErr
}

func (s *Store) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", s.dbPath))
		if err != nil {
			s.readDBErr = fmt.Errorf("profilestore: opening read connection: %w", err)
			return
		}
		s.readDB = db
	})
	return s.readDB, s.readDBErr
}

// Put caches parameters and messageTypes under fingerprint, overwriting
// whatever was cached before. Both arguments are marshaled as JSON;
// callers pass their own SignalParameters/[]MessageType values.
func (s *Store) Put(ctx context.Context, fingerprint string, parameters, messageTypes any) (err error) {
	paramsJSON, err := json.Marshal(parameters)
	if err != nil {
		return fmt.Errorf("profilestore: marshaling parameters: %w", err)
	}
	typesJSON, err := json.Marshal(messageTypes)
	if err != nil {
		return fmt.Errorf("profilestore: marshaling message types: %w", err)
	}

	db, err := s.getWriteDB()
	if err != nil {
		return err
	}

	stmt, err := db.PrepareContext(ctx, `
INSERT INTO profiles (fingerprint, parameters, message_types)
VALUES (?, ?, ?)
ON CONFLICT(fingerprint) DO UPDATE SET
    parameters    = excluded.parameters,
    message_types = excluded.message_types,
    created_at    = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("profilestore: preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	if _, err = stmt.ExecContext(ctx, fingerprint, string(paramsJSON), string(typesJSON)); err != nil {
		return fmt.Errorf("profilestore: inserting profile: %w", err)
	}
	return nil
}

// Get looks up the profile cached under fingerprint and unmarshals it
// into parameters and messageTypes (both must be pointers). ok is false
// when no profile is cached for fingerprint.
func (s *Store) Get(ctx context.Context, fingerprint string, parameters, messageTypes any) (ok bool, err error) {
	db, err := s.getReadDB()
	if err != nil {
		return false, err
	}

	var paramsJSON, typesJSON string
	row := db.QueryRowContext(ctx, `SELECT parameters, message_types FROM profiles WHERE fingerprint = ?`, fingerprint)
	if err = row.Scan(&paramsJSON, &typesJSON); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("profilestore: querying profile: %w", err)
	}

	if err = json.Unmarshal([]byte(paramsJSON), parameters); err != nil {
		return false, fmt.Errorf("profilestore: unmarshaling parameters: %w", err)
	}
	if err = json.Unmarshal([]byte(typesJSON), messageTypes); err != nil {
		return false, fmt.Errorf("profilestore: unmarshaling message types: %w", err)
	}
	return true, nil
}

// Close releases both database handles.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		if s.writeDB != nil {
			if err := s.writeDB.Close(); err != nil {
				s.closeErr = err
			}
		}
		if s.readDB != nil {
			if err := s.readDB.Close(); err != nil && s.closeErr == nil {
				s.closeErr = err
			}
		}
	})
	return s.closeErr
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}
