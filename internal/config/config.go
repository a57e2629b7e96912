// Package config resolves the environment surface of the planning server
// into a plain value the rest of the core consumes. Nothing outside this
// package reads the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Mode selects the storage backend for the whole process.
type Mode string

const (
	// ModeFile stores one JSON document per (repository, branch) under the
	// project's planning directory.
	ModeFile Mode = "file"

	// ModeRedis stores one document per (user, repository, branch) in a
	// shared key-value store, with persisted session records.
	ModeRedis Mode = "redis"

	// ModeSQLite stores per-(user, repository, branch) documents in a
	// local SQLite database.
	ModeSQLite Mode = "sqlite"

	// ModePostgres stores per-(user, repository, branch) documents in a
	// shared PostgreSQL database.
	ModePostgres Mode = "postgres"
)

// Config carries every resolved setting the core consumes.
type Config struct {
	// StorageMode is fixed per process.
	StorageMode Mode

	// RedisURL is the key-value store connection string (redis mode).
	RedisURL string

	// KeyPrefix namespaces every key written to the shared store.
	KeyPrefix string

	// TTL is the expiry applied to shared-store entries. Zero disables
	// expiry.
	TTL time.Duration

	// PostgresURL is the database connection string (postgres mode).
	PostgresURL string

	// SQLitePath is the database file location (sqlite mode).
	SQLitePath string

	// PlanningDir is the per-project subdirectory holding file-mode
	// documents, relative to the project path.
	PlanningDir string

	// FolderRepoIDs forces repository identifiers to be derived from the
	// project folder name instead of version-control remotes.
	FolderRepoIDs bool

	// MultiRepo allows callers to address partitions of repositories other
	// than the auto-detected one via explicit repository arguments. When
	// false those arguments are ignored.
	MultiRepo bool
}

// SharedStore reports whether partitions are keyed per user and goals are
// stamped with repository identity (every mode except file).
func (c Config) SharedStore() bool {
	return c.StorageMode != ModeFile
}

// FromEnv reads the configuration from environment variables, applying
// defaults for everything unset.
//
// Variables:
//   - PLANNING_STORAGE_BACKEND: "file" (default), "redis", "sqlite", "postgres"
//   - PLANNING_REDIS_URL: redis connection URL (default: redis://localhost:6379)
//   - PLANNING_KEY_PREFIX: shared-store key namespace (default: "planning:")
//   - PLANNING_TTL: entry expiry as a Go duration, e.g. "720h" (default: none)
//   - PLANNING_POSTGRES_URL: postgres connection string
//   - PLANNING_SQLITE_PATH: sqlite file path (default: ~/.planning/planning.db)
//   - PLANNING_DIR: file-mode subdirectory (default: ".planning")
//   - PLANNING_FOLDER_REPO_IDS: "true" to skip remote detection
//   - PLANNING_MULTI_REPO: "false" to ignore explicit repository arguments
//
// Returns an error for an unknown backend or an unparseable duration or
// boolean; absent values never error.
func FromEnv() (Config, error) {
	cfg := Config{
		StorageMode: ModeFile,
		RedisURL:    "redis://localhost:6379",
		KeyPrefix:   "planning:",
		PlanningDir: ".planning",
		MultiRepo:   true,
	}

	if v := getenv("PLANNING_STORAGE_BACKEND"); v != "" {
		switch Mode(strings.ToLower(v)) {
		case ModeFile, ModeRedis, ModeSQLite, ModePostgres:
			cfg.StorageMode = Mode(strings.ToLower(v))
		default:
			return Config{}, fmt.Errorf("unknown storage backend: %q. Expected 'file', 'redis', 'sqlite' or 'postgres'", v)
		}
	}

	if v := getenv("PLANNING_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := getenv("PLANNING_KEY_PREFIX"); v != "" {
		cfg.KeyPrefix = v
	}
	if v := getenv("PLANNING_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PLANNING_TTL: %w", err)
		}
		cfg.TTL = ttl
	}

	cfg.PostgresURL = getenv("PLANNING_POSTGRES_URL")

	if v := getenv("PLANNING_SQLITE_PATH"); v != "" {
		cfg.SQLitePath = v
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.SQLitePath = filepath.Join(home, ".planning", "planning.db")
	}

	if v := getenv("PLANNING_DIR"); v != "" {
		cfg.PlanningDir = v
	}

	if v := getenv("PLANNING_FOLDER_REPO_IDS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PLANNING_FOLDER_REPO_IDS: %w", err)
		}
		cfg.FolderRepoIDs = b
	}
	if v := getenv("PLANNING_MULTI_REPO"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PLANNING_MULTI_REPO: %w", err)
		}
		cfg.MultiRepo = b
	}

	return cfg, nil
}

func getenv(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}
