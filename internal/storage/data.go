package storage

import (
	"sort"

	"github.com/google/uuid"
)

// StorageData is one partition's document: every goal and plan belonging to
// a single (repository, branch) or (user, repository, branch) scope. All
// backends persist it whole; the mutation methods below are the single
// definition of the partition semantics (ID allocation, timestamps, the
// NotFound taxonomy), so every backend behaves identically around its own
// load/persist cycle.
type StorageData struct {
	// Branch is the branch this partition belongs to, stored redundantly
	// so a file-mode document is self-describing.
	Branch string `json:"branch"`

	// ProjectPath is the local working directory for file-mode documents.
	ProjectPath string `json:"projectPath,omitempty"`

	Goals map[string]Goal               `json:"goals"`
	Plans map[string]ImplementationPlan `json:"plans"`

	// LastUpdated is empty until the first mutation.
	LastUpdated string `json:"lastUpdated"`
}

// NewStorageData returns an empty partition document for the given branch.
func NewStorageData(branch, projectPath string) *StorageData {
	return &StorageData{
		Branch:      branch,
		ProjectPath: projectPath,
		Goals:       make(map[string]Goal),
		Plans:       make(map[string]ImplementationPlan),
	}
}

// normalize ensures the maps are non-nil after unmarshaling a document that
// was written with empty or missing tables.
func (d *StorageData) normalize() {
	if d.Goals == nil {
		d.Goals = make(map[string]Goal)
	}
	if d.Plans == nil {
		d.Plans = make(map[string]ImplementationPlan)
	}
}

func (d *StorageData) touch() {
	d.LastUpdated = NowISO()
}

// CreateGoal allocates a new goal. repository and branch may be empty; the
// shared-store backends pass them so goals carry their partition identity.
func (d *StorageData) CreateGoal(description, repository, branch string) Goal {
	goal := Goal{
		ID:          uuid.NewString(),
		Description: description,
		CreatedAt:   NowISO(),
		Repository:  repository,
		Branch:      branch,
	}
	d.Goals[goal.ID] = goal
	d.touch()
	return goal
}

// SetGoal upserts a full goal record.
func (d *StorageData) SetGoal(goal Goal) {
	d.Goals[goal.ID] = goal
	d.touch()
}

// GetGoal returns the goal with the given ID, or nil if absent.
func (d *StorageData) GetGoal(id string) *Goal {
	if goal, ok := d.Goals[id]; ok {
		return &goal
	}
	return nil
}

// FirstGoalID returns the ID of the partition's current goal: the earliest
// created goal, ties broken by ID for determinism. Returns "" when the
// partition has no goals.
func (d *StorageData) FirstGoalID() string {
	ids := make([]string, 0, len(d.Goals))
	for id := range d.Goals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := d.Goals[ids[i]], d.Goals[ids[j]]
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt < b.CreatedAt
		}
		return a.ID < b.ID
	})
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

// CreatePlan creates an empty plan keyed to goalID. An existing plan for the
// same goal is replaced. Does not verify the goal exists.
func (d *StorageData) CreatePlan(goalID string) ImplementationPlan {
	plan := ImplementationPlan{
		GoalID:    goalID,
		Todos:     make([]Todo, 0),
		UpdatedAt: NowISO(),
	}
	d.Plans[goalID] = plan
	d.touch()
	return plan
}

// GetPlan returns the plan for goalID, or nil if absent.
func (d *StorageData) GetPlan(goalID string) *ImplementationPlan {
	if plan, ok := d.Plans[goalID]; ok {
		return &plan
	}
	return nil
}

// AddTodo appends a new todo to the plan for goalID, preserving insertion
// order. Returns a NotFoundError if no plan exists for goalID.
func (d *StorageData) AddTodo(goalID string, input TodoInput) (*Todo, error) {
	plan, ok := d.Plans[goalID]
	if !ok {
		return nil, &NotFoundError{Kind: "plan", ID: goalID}
	}

	now := NowISO()
	todo := Todo{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Complexity:  input.Complexity,
		CodeExample: input.CodeExample,
		IsComplete:  false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	plan.Todos = append(plan.Todos, todo)
	plan.UpdatedAt = now
	d.Plans[goalID] = plan
	d.touch()
	return &todo, nil
}

// Todos returns the todos of one plan in insertion order, or an empty slice
// if the plan is absent.
func (d *StorageData) Todos(goalID string) []Todo {
	plan, ok := d.Plans[goalID]
	if !ok {
		return make([]Todo, 0)
	}
	out := make([]Todo, len(plan.Todos))
	copy(out, plan.Todos)
	return out
}

// AllTodos flattens every plan's todos in plan-then-item order. Plans are
// visited by their owning goal's creation time (ties by goal ID) so the
// result is deterministic across map iteration orders.
func (d *StorageData) AllTodos() []Todo {
	goalIDs := make([]string, 0, len(d.Plans))
	for id := range d.Plans {
		goalIDs = append(goalIDs, id)
	}
	sort.Slice(goalIDs, func(i, j int) bool {
		a, aok := d.Goals[goalIDs[i]]
		b, bok := d.Goals[goalIDs[j]]
		if aok && bok && a.CreatedAt != b.CreatedAt {
			return a.CreatedAt < b.CreatedAt
		}
		return goalIDs[i] < goalIDs[j]
	})

	out := make([]Todo, 0)
	for _, id := range goalIDs {
		out = append(out, d.Plans[id].Todos...)
	}
	return out
}

// UpdateTodoStatus flips the completion flag of one todo and refreshes both
// the todo's and the plan's updated timestamp. Returns a NotFoundError if
// the plan is absent or the todo ID does not exist in that plan.
func (d *StorageData) UpdateTodoStatus(goalID, todoID string, isComplete bool) (*Todo, error) {
	plan, ok := d.Plans[goalID]
	if !ok {
		return nil, &NotFoundError{Kind: "plan", ID: goalID}
	}

	for i := range plan.Todos {
		if plan.Todos[i].ID != todoID {
			continue
		}
		now := NowISO()
		plan.Todos[i].IsComplete = isComplete
		plan.Todos[i].UpdatedAt = now
		plan.UpdatedAt = now
		d.Plans[goalID] = plan
		d.touch()
		todo := plan.Todos[i]
		return &todo, nil
	}

	return nil, &NotFoundError{Kind: "todo", ID: todoID}
}

// RemoveTodo deletes a todo from the plan for goalID. A missing plan is a
// NotFoundError; a missing todo ID leaves the plan unchanged and returns
// nil, so removal is idempotent.
func (d *StorageData) RemoveTodo(goalID, todoID string) error {
	plan, ok := d.Plans[goalID]
	if !ok {
		return &NotFoundError{Kind: "plan", ID: goalID}
	}

	kept := make([]Todo, 0, len(plan.Todos))
	for _, todo := range plan.Todos {
		if todo.ID != todoID {
			kept = append(kept, todo)
		}
	}
	if len(kept) == len(plan.Todos) {
		return nil
	}

	plan.Todos = kept
	plan.UpdatedAt = NowISO()
	d.Plans[goalID] = plan
	d.touch()
	return nil
}

// UpdateTodo locates a todo by ID across all plans, merges the patch, and
// refreshes timestamps. Returns a NotFoundError if no plan contains the ID.
func (d *StorageData) UpdateTodo(todoID string, patch TodoPatch) (*Todo, error) {
	for goalID, plan := range d.Plans {
		for i := range plan.Todos {
			if plan.Todos[i].ID != todoID {
				continue
			}
			if patch.Title != nil {
				plan.Todos[i].Title = *patch.Title
			}
			if patch.Description != nil {
				plan.Todos[i].Description = *patch.Description
			}
			if patch.Complexity != nil {
				plan.Todos[i].Complexity = *patch.Complexity
			}
			if patch.CodeExample != nil {
				plan.Todos[i].CodeExample = *patch.CodeExample
			}
			if patch.IsComplete != nil {
				plan.Todos[i].IsComplete = *patch.IsComplete
			}
			now := NowISO()
			plan.Todos[i].UpdatedAt = now
			plan.UpdatedAt = now
			d.Plans[goalID] = plan
			d.touch()
			todo := plan.Todos[i]
			return &todo, nil
		}
	}
	return nil, &NotFoundError{Kind: "todo", ID: todoID}
}
