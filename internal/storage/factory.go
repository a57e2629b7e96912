package storage

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/erauner/Software-planning-mcp/internal/config"
	"github.com/erauner/Software-planning-mcp/internal/gitutil"
	"github.com/erauner/Software-planning-mcp/internal/pathutil"
)

// ResolveArgs are the call-time inputs to context resolution. All fields are
// optional except UserID in the shared-store modes.
type ResolveArgs struct {
	// UserID scopes partitions and sessions in shared-store modes.
	UserID string

	// SessionID continues a previously created session. Its stored
	// repository and branch win over freshly derived values.
	SessionID string

	// Repository explicitly selects a repository identifier, bypassing
	// detection. Ignored when multi-repository support is disabled.
	Repository string

	// GitRemoteURL derives the repository identifier from a remote URL
	// instead of the local checkout. Ignored when multi-repository support
	// is disabled.
	GitRemoteURL string

	// Branch explicitly selects a branch, bypassing detection.
	Branch string

	// ProjectPath is the working directory used for detection and
	// file-mode storage. Empty means the process working directory.
	ProjectPath string
}

// Factory is the single decision point translating call arguments into a
// backend selection and a concrete partition handle. The backend mode is
// fixed per process by configuration; the partition is resolved per call.
//
// Instantiated backends are cached for the lifetime of the factory, keyed by
// partition. The cache exists purely to avoid redundant construction and
// provides no consistency guarantee.
type Factory struct {
	cfg      config.Config
	client   *redis.Client
	sessions *SessionManager

	mu       sync.Mutex
	backends map[string]Backend
}

// NewFactory builds a factory for the configured storage mode. In redis mode
// the shared client and session manager are created eagerly so a bad
// connection URL fails at startup rather than on the first call.
func NewFactory(cfg config.Config) (*Factory, error) {
	f := &Factory{
		cfg:      cfg,
		backends: make(map[string]Backend),
	}

	if cfg.StorageMode == config.ModeRedis {
		client, err := NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		f.client = client
		f.sessions = NewSessionManager(client, cfg.KeyPrefix, cfg.TTL)
	}

	return f, nil
}

// Sessions returns the session manager, or nil outside redis mode.
func (f *Factory) Sessions() *SessionManager {
	return f.sessions
}

// Close releases the shared store client, if any.
func (f *Factory) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

// ResolveContext determines which partition a call addresses.
//
// Resolution order is the contract callers depend on: an explicit argument
// beats session continuation, which beats fresh auto-detection. In redis
// mode the resolved context is persisted as a session record; in the other
// modes a context is synthesized with the deterministic session ID
// "repository:branch" and never stored.
func (f *Factory) ResolveContext(ctx context.Context, args ResolveArgs) (*SessionContext, error) {
	if f.cfg.SharedStore() && args.UserID == "" {
		return nil, fmt.Errorf("userId is required when using %s storage", f.cfg.StorageMode)
	}

	projectPath := args.ProjectPath
	if projectPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		projectPath = wd
	}

	repo := f.resolveRepository(args, projectPath)
	branch := args.Branch
	if branch == "" {
		branch = gitutil.DetectCurrentBranch(projectPath)
	}

	if f.cfg.StorageMode == config.ModeRedis {
		if args.SessionID != "" {
			session, err := f.sessions.GetSessionByIDs(ctx, args.UserID, args.SessionID)
			if err != nil {
				return nil, err
			}
			if session != nil {
				// Continuation: the stored repository context wins over
				// anything re-derived for this call.
				return f.sessions.CreateOrUpdateSession(ctx, args.UserID, session.SessionID, session.Repository)
			}
		}
		return f.sessions.CreateOrUpdateSession(ctx, args.UserID, "", RepositoryContext{
			Repository:  repo,
			Branch:      branch,
			RemoteURL:   args.GitRemoteURL,
			ProjectPath: projectPath,
		})
	}

	now := time.Now().UTC()
	return &SessionContext{
		SessionID: repo + ":" + branch,
		UserID:    args.UserID,
		Repository: RepositoryContext{
			Repository:  repo,
			Branch:      branch,
			RemoteURL:   args.GitRemoteURL,
			ProjectPath: projectPath,
		},
		CreatedAt:    now,
		LastAccessed: now,
	}, nil
}

// BackendFor returns the initialized storage backend bound to the session's
// partition, reusing a cached instance when one exists.
func (f *Factory) BackendFor(ctx context.Context, session *SessionContext) (Backend, error) {
	key := f.partitionCacheKey(session)

	f.mu.Lock()
	backend, ok := f.backends[key]
	f.mu.Unlock()
	if ok {
		return backend, nil
	}

	backend, err := f.newBackend(session)
	if err != nil {
		return nil, err
	}
	if err := backend.Initialize(ctx); err != nil {
		return nil, err
	}

	f.mu.Lock()
	// A concurrent caller may have won the race; keep the first instance.
	if cached, ok := f.backends[key]; ok {
		backend = cached
	} else {
		f.backends[key] = backend
	}
	f.mu.Unlock()

	return backend, nil
}

func (f *Factory) resolveRepository(args ResolveArgs, projectPath string) string {
	if f.cfg.MultiRepo {
		if args.Repository != "" {
			return args.Repository
		}
		if args.GitRemoteURL != "" {
			if id := gitutil.ExtractRepoIdentifier(args.GitRemoteURL); id != "" {
				return id
			}
		}
	}
	if f.cfg.FolderRepoIDs {
		return gitutil.FolderID(projectPath)
	}
	return gitutil.DetectRepositoryID(projectPath)
}

func (f *Factory) partitionCacheKey(session *SessionContext) string {
	repo := session.Repository
	switch f.cfg.StorageMode {
	case config.ModeFile:
		return fmt.Sprintf("file:%s:%s", repo.ProjectPath, repo.Branch)
	default:
		return fmt.Sprintf("%s:%s", f.cfg.StorageMode,
			partitionKey(f.cfg.KeyPrefix, session.UserID, repo.Repository, repo.Branch))
	}
}

func (f *Factory) newBackend(session *SessionContext) (Backend, error) {
	repo := session.Repository
	switch f.cfg.StorageMode {
	case config.ModeFile:
		planningDir, err := pathutil.ResolveWithin(repo.ProjectPath, f.cfg.PlanningDir)
		if err != nil {
			return nil, fmt.Errorf("invalid planning directory: %w", err)
		}
		return NewFileBackend(planningDir, repo.ProjectPath, repo.Branch), nil

	case config.ModeRedis:
		return NewRedisBackend(f.client, f.cfg.KeyPrefix, session.UserID, repo.Repository, repo.Branch, f.cfg.TTL), nil

	case config.ModeSQLite:
		return NewSQLiteBackend(f.cfg.SQLitePath, session.UserID, repo.Repository, repo.Branch), nil

	case config.ModePostgres:
		if f.cfg.PostgresURL == "" {
			return nil, fmt.Errorf("postgres storage selected but no connection string configured")
		}
		return NewPostgresBackend(f.cfg.PostgresURL, session.UserID, repo.Repository, repo.Branch), nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %q", f.cfg.StorageMode)
	}
}
