package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// postgresSchemaDDL defines the partition-document table. The whole
// partition is one JSONB value, replaced on every write.
const postgresSchemaDDL = `
CREATE TABLE IF NOT EXISTS partition_documents (
    partition_key TEXT PRIMARY KEY,
    document JSONB NOT NULL,
    updated_at TEXT NOT NULL
);
`

// postgresStore keeps one partition document as a row in a shared PostgreSQL
// database. Connections are opened per operation, matching the short-lived
// call pattern of the tool surface.
type postgresStore struct {
	connString string
	key        string
	branch     string
}

// NewPostgresBackend returns a Backend persisting the (userID, repoID,
// branch) partition as one JSONB row. Goals are stamped with repoID and
// branch, as in the other shared-store backends.
func NewPostgresBackend(connString, userID, repoID, branch string) *DocumentBackend {
	store := &postgresStore{
		connString: connString,
		key:        partitionKey("", userID, repoID, branch),
		branch:     branch,
	}
	return NewDocumentBackend(store, repoID, branch)
}

func (s *postgresStore) connect(ctx context.Context) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, s.connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return conn, nil
}

// Init creates the schema if it does not exist. Safe to call repeatedly.
func (s *postgresStore) Init(ctx context.Context) error {
	conn, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close(ctx) }()

	if _, err := conn.Exec(ctx, postgresSchemaDDL); err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	return nil
}

func (s *postgresStore) Load(ctx context.Context) (*StorageData, error) {
	conn, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close(ctx) }()

	var raw []byte
	err = conn.QueryRow(ctx,
		`SELECT document FROM partition_documents WHERE partition_key = $1`, s.key,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return NewStorageData(s.branch, ""), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read partition %s: %w", s.key, err)
	}

	var data StorageData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("malformed partition document at %s: %w", s.key, err)
	}
	data.normalize()
	return &data, nil
}

func (s *postgresStore) Store(ctx context.Context, data *StorageData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal partition document: %w", err)
	}

	conn, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close(ctx) }()

	_, err = conn.Exec(ctx,
		`INSERT INTO partition_documents (partition_key, document, updated_at)
		 VALUES ($1, $2::jsonb, $3)
		 ON CONFLICT (partition_key) DO UPDATE SET
		     document = EXCLUDED.document,
		     updated_at = EXCLUDED.updated_at`,
		s.key, string(raw), NowISO(),
	)
	if err != nil {
		return fmt.Errorf("failed to write partition %s: %w", s.key, err)
	}
	return nil
}
