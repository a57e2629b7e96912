package storage

import (
	"context"

	"github.com/erauner/Software-planning-mcp/internal/plantext"
)

// DocumentStore is the minimal persistence contract a backend medium must
// provide: load the partition document, write it back whole, and prepare the
// underlying resource. DocumentBackend layers the full Backend semantics on
// top, so the file, redis, sqlite, and postgres media only differ in where
// the document bytes live.
type DocumentStore interface {
	// Init prepares the medium (creates directories, schema, or nothing).
	// Must be idempotent.
	Init(ctx context.Context) error

	// Load returns the current partition document, synthesizing an empty
	// one if none has been written yet.
	Load(ctx context.Context) (*StorageData, error)

	// Store replaces the persisted document.
	Store(ctx context.Context, data *StorageData) error
}

// DocumentBackend implements Backend over any DocumentStore using the
// read-modify-write-whole-document discipline.
type DocumentBackend struct {
	store DocumentStore

	// repository and branch stamp goals created in shared-store partitions
	// whose key alone identifies them. Empty in file mode, where the
	// document's own branch field carries that role.
	repository string
	branch     string
}

// NewDocumentBackend wraps a DocumentStore in the full Backend contract.
// repository and branch may be empty for media whose documents are already
// self-describing.
func NewDocumentBackend(store DocumentStore, repository, branch string) *DocumentBackend {
	return &DocumentBackend{store: store, repository: repository, branch: branch}
}

// Initialize prepares the underlying medium. Idempotent.
func (b *DocumentBackend) Initialize(ctx context.Context) error {
	return b.store.Init(ctx)
}

func (b *DocumentBackend) CreateGoal(ctx context.Context, description string) (*Goal, error) {
	data, err := b.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	goal := data.CreateGoal(description, b.repository, b.branch)
	if err := b.store.Store(ctx, data); err != nil {
		return nil, err
	}
	return &goal, nil
}

func (b *DocumentBackend) GetGoal(ctx context.Context, id string) (*Goal, error) {
	data, err := b.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return data.GetGoal(id), nil
}

func (b *DocumentBackend) GetGoals(ctx context.Context) (map[string]Goal, error) {
	data, err := b.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	goals := make(map[string]Goal, len(data.Goals))
	for id, goal := range data.Goals {
		goals[id] = goal
	}
	return goals, nil
}

func (b *DocumentBackend) SetGoal(ctx context.Context, goal Goal) error {
	data, err := b.store.Load(ctx)
	if err != nil {
		return err
	}
	data.SetGoal(goal)
	return b.store.Store(ctx, data)
}

func (b *DocumentBackend) CreatePlan(ctx context.Context, goalID string) (*ImplementationPlan, error) {
	data, err := b.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	plan := data.CreatePlan(goalID)
	if err := b.store.Store(ctx, data); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (b *DocumentBackend) GetPlan(ctx context.Context, goalID string) (*ImplementationPlan, error) {
	data, err := b.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return data.GetPlan(goalID), nil
}

func (b *DocumentBackend) AddTodo(ctx context.Context, goalID string, input TodoInput) (*Todo, error) {
	data, err := b.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	todo, err := data.AddTodo(goalID, input)
	if err != nil {
		return nil, err
	}
	if err := b.store.Store(ctx, data); err != nil {
		return nil, err
	}
	return todo, nil
}

func (b *DocumentBackend) GetTodos(ctx context.Context, goalID string) ([]Todo, error) {
	data, err := b.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return data.Todos(goalID), nil
}

func (b *DocumentBackend) GetAllTodos(ctx context.Context) ([]Todo, error) {
	data, err := b.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return data.AllTodos(), nil
}

func (b *DocumentBackend) UpdateTodoStatus(ctx context.Context, goalID, todoID string, isComplete bool) (*Todo, error) {
	data, err := b.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	todo, err := data.UpdateTodoStatus(goalID, todoID, isComplete)
	if err != nil {
		return nil, err
	}
	if err := b.store.Store(ctx, data); err != nil {
		return nil, err
	}
	return todo, nil
}

func (b *DocumentBackend) RemoveTodo(ctx context.Context, goalID, todoID string) error {
	data, err := b.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := data.RemoveTodo(goalID, todoID); err != nil {
		return err
	}
	return b.store.Store(ctx, data)
}

func (b *DocumentBackend) UpdateTodo(ctx context.Context, todoID string, patch TodoPatch) (*Todo, error) {
	data, err := b.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	todo, err := data.UpdateTodo(todoID, patch)
	if err != nil {
		return nil, err
	}
	if err := b.store.Store(ctx, data); err != nil {
		return nil, err
	}
	return todo, nil
}

// SavePlan parses plan text into simplified todos and appends each one via
// AddTodo, targeting the partition's first goal. If the partition has no
// goal yet, one is synthesized (with an empty plan) so imported text always
// lands somewhere. Each todo persists independently: a failure partway
// through leaves the earlier todos in place.
func (b *DocumentBackend) SavePlan(ctx context.Context, planText string) ([]Todo, error) {
	data, err := b.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	goalID := data.FirstGoalID()
	if goalID == "" {
		goal := data.CreateGoal("Imported plan", b.repository, b.branch)
		goalID = goal.ID
		data.CreatePlan(goalID)
		if err := b.store.Store(ctx, data); err != nil {
			return nil, err
		}
	} else if data.GetPlan(goalID) == nil {
		data.CreatePlan(goalID)
		if err := b.store.Store(ctx, data); err != nil {
			return nil, err
		}
	}

	parsed := plantext.Parse(planText)
	added := make([]Todo, 0, len(parsed))
	for _, item := range parsed {
		todo, err := b.AddTodo(ctx, goalID, TodoInput{
			Title:       item.Title,
			Description: item.Description,
			Complexity:  item.Complexity,
			CodeExample: item.CodeExample,
		})
		if err != nil {
			return added, err
		}
		added = append(added, *todo)
	}
	return added, nil
}
