package config_test

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/erauner/Software-planning-mcp/internal/config"
)

// clearPlanningEnv blanks every variable FromEnv reads so ambient values in
// the test environment cannot leak into assertions.
func clearPlanningEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"PLANNING_STORAGE_BACKEND",
		"PLANNING_REDIS_URL",
		"PLANNING_KEY_PREFIX",
		"PLANNING_TTL",
		"PLANNING_POSTGRES_URL",
		"PLANNING_SQLITE_PATH",
		"PLANNING_DIR",
		"PLANNING_FOLDER_REPO_IDS",
		"PLANNING_MULTI_REPO",
	} {
		t.Setenv(name, "")
	}
}

func Test_FromEnv_Defaults(t *testing.T) {
	clearPlanningEnv(t)

	cfg, err := config.FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}

	if cfg.StorageMode != config.ModeFile {
		t.Errorf("StorageMode = %q, want %q", cfg.StorageMode, config.ModeFile)
	}
	if cfg.RedisURL != "redis://localhost:6379" {
		t.Errorf("RedisURL = %q, want default", cfg.RedisURL)
	}
	if cfg.KeyPrefix != "planning:" {
		t.Errorf("KeyPrefix = %q, want %q", cfg.KeyPrefix, "planning:")
	}
	if cfg.TTL != 0 {
		t.Errorf("TTL = %v, want 0", cfg.TTL)
	}
	if cfg.PlanningDir != ".planning" {
		t.Errorf("PlanningDir = %q, want %q", cfg.PlanningDir, ".planning")
	}
	if filepath.Base(cfg.SQLitePath) != "planning.db" {
		t.Errorf("SQLitePath = %q, want a planning.db default", cfg.SQLitePath)
	}
	if cfg.FolderRepoIDs {
		t.Error("FolderRepoIDs = true, want false by default")
	}
	if !cfg.MultiRepo {
		t.Error("MultiRepo = false, want true by default")
	}
	if cfg.SharedStore() {
		t.Error("SharedStore() = true for file mode")
	}
}

func Test_FromEnv_Backends(t *testing.T) {
	tests := []struct {
		value  string
		want   config.Mode
		shared bool
	}{
		{value: "file", want: config.ModeFile, shared: false},
		{value: "redis", want: config.ModeRedis, shared: true},
		{value: "sqlite", want: config.ModeSQLite, shared: true},
		{value: "postgres", want: config.ModePostgres, shared: true},
		{value: "REDIS", want: config.ModeRedis, shared: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			clearPlanningEnv(t)
			t.Setenv("PLANNING_STORAGE_BACKEND", tt.value)

			cfg, err := config.FromEnv()
			if err != nil {
				t.Fatalf("FromEnv error: %v", err)
			}
			if cfg.StorageMode != tt.want {
				t.Errorf("StorageMode = %q, want %q", cfg.StorageMode, tt.want)
			}
			if cfg.SharedStore() != tt.shared {
				t.Errorf("SharedStore() = %v, want %v", cfg.SharedStore(), tt.shared)
			}
		})
	}
}

func Test_FromEnv_UnknownBackend(t *testing.T) {
	clearPlanningEnv(t)
	t.Setenv("PLANNING_STORAGE_BACKEND", "dynamo")

	_, err := config.FromEnv()
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if !strings.Contains(err.Error(), "unknown storage backend") {
		t.Errorf("error = %q, want mention of unknown storage backend", err)
	}
	if !strings.Contains(err.Error(), "dynamo") {
		t.Errorf("error = %q, want it to name the offending value", err)
	}
}

func Test_FromEnv_Overrides(t *testing.T) {
	clearPlanningEnv(t)
	t.Setenv("PLANNING_STORAGE_BACKEND", "redis")
	t.Setenv("PLANNING_REDIS_URL", "redis://cache.internal:6380/2")
	t.Setenv("PLANNING_KEY_PREFIX", "team:planning:")
	t.Setenv("PLANNING_TTL", "720h")
	t.Setenv("PLANNING_DIR", "planning-docs")
	t.Setenv("PLANNING_SQLITE_PATH", "/tmp/custom.db")
	t.Setenv("PLANNING_POSTGRES_URL", "postgres://u:p@db/planning")

	cfg, err := config.FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}
	if cfg.RedisURL != "redis://cache.internal:6380/2" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.KeyPrefix != "team:planning:" {
		t.Errorf("KeyPrefix = %q", cfg.KeyPrefix)
	}
	if cfg.TTL != 720*time.Hour {
		t.Errorf("TTL = %v, want 720h", cfg.TTL)
	}
	if cfg.PlanningDir != "planning-docs" {
		t.Errorf("PlanningDir = %q", cfg.PlanningDir)
	}
	if cfg.SQLitePath != "/tmp/custom.db" {
		t.Errorf("SQLitePath = %q", cfg.SQLitePath)
	}
	if cfg.PostgresURL != "postgres://u:p@db/planning" {
		t.Errorf("PostgresURL = %q", cfg.PostgresURL)
	}
}

func Test_FromEnv_InvalidTTL(t *testing.T) {
	clearPlanningEnv(t)
	t.Setenv("PLANNING_TTL", "thirty days")

	if _, err := config.FromEnv(); err == nil {
		t.Fatal("expected error for unparseable PLANNING_TTL")
	}
}

func Test_FromEnv_Booleans(t *testing.T) {
	t.Run("folder repo ids", func(t *testing.T) {
		clearPlanningEnv(t)
		t.Setenv("PLANNING_FOLDER_REPO_IDS", "true")

		cfg, err := config.FromEnv()
		if err != nil {
			t.Fatalf("FromEnv error: %v", err)
		}
		if !cfg.FolderRepoIDs {
			t.Error("FolderRepoIDs = false, want true")
		}
	})

	t.Run("multi repo off", func(t *testing.T) {
		clearPlanningEnv(t)
		t.Setenv("PLANNING_MULTI_REPO", "false")

		cfg, err := config.FromEnv()
		if err != nil {
			t.Fatalf("FromEnv error: %v", err)
		}
		if cfg.MultiRepo {
			t.Error("MultiRepo = true, want false")
		}
	})

	t.Run("invalid boolean", func(t *testing.T) {
		clearPlanningEnv(t)
		t.Setenv("PLANNING_MULTI_REPO", "nope")

		if _, err := config.FromEnv(); err == nil {
			t.Fatal("expected error for unparseable PLANNING_MULTI_REPO")
		}
	})
}

func Test_FromEnv_TrimsWhitespace(t *testing.T) {
	clearPlanningEnv(t)
	t.Setenv("PLANNING_STORAGE_BACKEND", "  sqlite  ")

	cfg, err := config.FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}
	if cfg.StorageMode != config.ModeSQLite {
		t.Errorf("StorageMode = %q, want %q", cfg.StorageMode, config.ModeSQLite)
	}
}
