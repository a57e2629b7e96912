package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // register sqlite driver
)

// sqliteSchemaDDL defines the partition-document table. The whole partition
// is stored as one JSON text column, keeping the same whole-document-replace
// discipline as the other backends.
const sqliteSchemaDDL = `
CREATE TABLE IF NOT EXISTS partition_documents (
    partition_key TEXT PRIMARY KEY,
    document TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
`

// sqliteStore keeps one partition document as a row in a local SQLite
// database shared by all partitions on the machine.
type sqliteStore struct {
	dbPath string
	key    string
	branch string
}

// NewSQLiteBackend returns a Backend persisting the (userID, repoID, branch)
// partition as one row of the database at dbPath. Goals are stamped with
// repoID and branch, as in the other shared-store backends.
func NewSQLiteBackend(dbPath, userID, repoID, branch string) *DocumentBackend {
	store := &sqliteStore{
		dbPath: dbPath,
		key:    partitionKey("", userID, repoID, branch),
		branch: branch,
	}
	return NewDocumentBackend(store, repoID, branch)
}

// connect opens the database with WAL mode enabled, creating parent
// directories if needed.
func (s *sqliteStore) connect() (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(s.dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	return db, nil
}

// Init creates the schema if it does not exist. Safe to call repeatedly.
func (s *sqliteStore) Init(ctx context.Context) error {
	db, err := s.connect()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, sqliteSchemaDDL); err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	return nil
}

func (s *sqliteStore) Load(ctx context.Context) (*StorageData, error) {
	db, err := s.connect()
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	var raw string
	err = db.QueryRowContext(ctx,
		`SELECT document FROM partition_documents WHERE partition_key = ?`, s.key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return NewStorageData(s.branch, ""), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read partition %s: %w", s.key, err)
	}

	var data StorageData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("malformed partition document at %s: %w", s.key, err)
	}
	data.normalize()
	return &data, nil
}

func (s *sqliteStore) Store(ctx context.Context, data *StorageData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal partition document: %w", err)
	}

	db, err := s.connect()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	_, err = db.ExecContext(ctx,
		`INSERT INTO partition_documents (partition_key, document, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(partition_key) DO UPDATE SET
		     document = excluded.document,
		     updated_at = excluded.updated_at`,
		s.key, string(raw), NowISO(),
	)
	if err != nil {
		return fmt.Errorf("failed to write partition %s: %w", s.key, err)
	}
	return nil
}
