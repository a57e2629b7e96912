// Package storage provides the partitioned persistence layer for planning
// sessions.
//
// A partition is the unit of isolation: one goal/plan/todo document per
// (repository, branch) pair in file mode, or per (user, repository, branch)
// tuple in the shared-store modes. All backends implement the Backend
// interface and apply the same read-modify-write-whole-document discipline:
// each mutation loads the partition document, changes it in memory, and
// writes the whole document back. There is no version check or optimistic
// lock; two concurrent writers to the same partition race on
// last-writer-wins. Callers must serialize dispatch per partition.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Goal is one planning objective. Immutable after creation except for the
// Repository/Branch tags, which the shared-store backends stamp so the
// document is self-describing outside its key.
type Goal struct {
	// ID is a unique identifier assigned at creation.
	ID string `json:"id"`

	// Description is the free-text objective.
	Description string `json:"description"`

	// CreatedAt is an ISO 8601 UTC timestamp with Z suffix.
	CreatedAt string `json:"createdAt"`

	// Repository is the normalized repository identifier, when known.
	Repository string `json:"repository,omitempty"`

	// Branch is the branch this goal was created under, when known.
	Branch string `json:"branch,omitempty"`
}

// Todo is one actionable work item under a goal's plan.
type Todo struct {
	// ID is unique within the partition.
	ID string `json:"id"`

	Title       string `json:"title"`
	Description string `json:"description"`

	// Complexity is a score conventionally between 0 and 10. Not enforced
	// at the storage level.
	Complexity int `json:"complexity"`

	// CodeExample is optional illustrative code attached to the todo.
	CodeExample string `json:"codeExample,omitempty"`

	IsComplete bool `json:"isComplete"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ImplementationPlan is the ordered todo container for one goal. Exactly one
// plan exists per goal ID; insertion order of Todos is significant.
type ImplementationPlan struct {
	GoalID    string `json:"goalId"`
	Todos     []Todo `json:"todos"`
	UpdatedAt string `json:"updatedAt"`
}

// TodoInput carries the caller-supplied fields for a new todo.
type TodoInput struct {
	Title       string
	Description string
	Complexity  int
	CodeExample string
}

// TodoPatch carries a partial update for an existing todo. Nil fields are
// left unchanged.
type TodoPatch struct {
	Title       *string
	Description *string
	Complexity  *int
	CodeExample *string
	IsComplete  *bool
}

// RepositoryContext identifies where a planning session lives: a normalized
// repository identifier (host/owner/name form) and a branch, plus the
// original remote URL and local path when they are known.
type RepositoryContext struct {
	// Repository is the canonical identifier, e.g. "github.com/user/repo".
	Repository string `json:"repository"`

	// Branch is the working branch name (unsanitized).
	Branch string `json:"branch"`

	// RemoteURL is the version-control remote this context was derived
	// from, if any.
	RemoteURL string `json:"remoteUrl,omitempty"`

	// ProjectPath is the local working directory, used by file-mode
	// resolution.
	ProjectPath string `json:"projectPath,omitempty"`
}

// SessionContext ties a caller-chosen session identifier to a repository
// context. In redis mode sessions are persisted records; in the local modes
// they are synthesized per call and never stored.
type SessionContext struct {
	SessionID    string            `json:"sessionId"`
	UserID       string            `json:"userId,omitempty"`
	Repository   RepositoryContext `json:"repository"`
	CreatedAt    time.Time         `json:"createdAt"`
	LastAccessed time.Time         `json:"lastAccessed"`
}

// Backend is the capability contract every storage backend satisfies.
//
// Initialize is idempotent: calling it twice must not duplicate or reset
// data. Every mutating method persists the whole partition document before
// returning. Methods that look up a goal, plan, or todo return a
// NotFoundError when the referenced record is absent, with one deliberate
// exception: RemoveTodo treats a missing todo ID (with the plan present) as
// a no-op.
type Backend interface {
	// Initialize prepares the partition for use, creating the underlying
	// resource if absent.
	Initialize(ctx context.Context) error

	// CreateGoal allocates a unique ID, stores the goal, and returns it.
	CreateGoal(ctx context.Context, description string) (*Goal, error)

	// GetGoal returns the goal with the given ID, or nil if absent.
	GetGoal(ctx context.Context, id string) (*Goal, error)

	// GetGoals returns all goals in the partition keyed by ID.
	GetGoals(ctx context.Context) (map[string]Goal, error)

	// SetGoal upserts a full goal record.
	SetGoal(ctx context.Context, goal Goal) error

	// CreatePlan creates an empty plan keyed to goalID. It does not verify
	// the goal exists; that is the caller's responsibility.
	CreatePlan(ctx context.Context, goalID string) (*ImplementationPlan, error)

	// GetPlan returns the plan for goalID, or nil if absent.
	GetPlan(ctx context.Context, goalID string) (*ImplementationPlan, error)

	// AddTodo appends a new todo to the plan for goalID.
	AddTodo(ctx context.Context, goalID string, input TodoInput) (*Todo, error)

	// GetTodos returns the todos of one plan, in insertion order. Returns
	// an empty slice if the plan is absent.
	GetTodos(ctx context.Context, goalID string) ([]Todo, error)

	// GetAllTodos returns every todo across all plans in the partition,
	// flattened in plan-then-item order.
	GetAllTodos(ctx context.Context) ([]Todo, error)

	// UpdateTodoStatus sets the completion flag of one todo.
	UpdateTodoStatus(ctx context.Context, goalID, todoID string, isComplete bool) (*Todo, error)

	// RemoveTodo deletes a todo from the plan for goalID. A todoID with no
	// matching todo is silently ignored; a missing plan is an error.
	RemoveTodo(ctx context.Context, goalID, todoID string) error

	// UpdateTodo locates a todo by ID across all plans in the partition
	// and merges the patch into it.
	UpdateTodo(ctx context.Context, todoID string, patch TodoPatch) (*Todo, error)

	// SavePlan parses free plan text into todos and appends each to the
	// partition's first goal, synthesizing a goal and plan if none exist.
	// Non-transactional: todos added before a failure are not rolled back.
	SavePlan(ctx context.Context, planText string) ([]Todo, error)
}

// NotFoundError reports a referenced goal, plan, or todo that does not exist
// in the partition.
type NotFoundError struct {
	// Kind is "goal", "plan", or "todo".
	Kind string

	// ID is the identifier that failed to resolve.
	ID string
}

func (e *NotFoundError) Error() string {
	if e.Kind == "plan" {
		return fmt.Sprintf("no plan found for goal %s", e.ID)
	}
	return fmt.Sprintf("no %s found with id %s", e.Kind, e.ID)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// NowISO returns the current UTC time as ISO 8601 with millisecond
// precision, e.g. "2025-01-02T15:04:05.000Z". All persisted timestamps use
// this format.
func NowISO() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000") + "Z"
}
