package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/erauner/Software-planning-mcp/internal/storage"
)

// Planner holds the request-scoped wiring between the tool surface and the
// storage factory. One Planner serves every tool registered on a server.
type Planner struct {
	factory *storage.Factory
}

// NewPlanner wraps a storage factory for use by the tool handlers.
func NewPlanner(factory *storage.Factory) *Planner {
	return &Planner{factory: factory}
}

// resolveArgs extracts the partition-resolution parameters shared by every
// tool.
func resolveArgs(request mcp.CallToolRequest) storage.ResolveArgs {
	return storage.ResolveArgs{
		UserID:       request.GetString("userId", ""),
		SessionID:    request.GetString("sessionId", ""),
		Repository:   request.GetString("repository", ""),
		Branch:       request.GetString("branch", ""),
		GitRemoteURL: request.GetString("gitRemoteUrl", ""),
		ProjectPath:  request.GetString("projectPath", ""),
	}
}

// resolve returns the partition backend and session for a request, or a tool
// error result when resolution fails (missing userId, unreachable store).
func (p *Planner) resolve(ctx context.Context, request mcp.CallToolRequest) (storage.Backend, *storage.SessionContext, *mcp.CallToolResult) {
	session, err := p.factory.ResolveContext(ctx, resolveArgs(request))
	if err != nil {
		return nil, nil, mcp.NewToolResultError(fmt.Sprintf("Failed to resolve planning context: %v", err))
	}
	backend, err := p.factory.BackendFor(ctx, session)
	if err != nil {
		return nil, nil, mcp.NewToolResultError(fmt.Sprintf("Failed to open storage: %v", err))
	}
	return backend, session, nil
}

// jsonResult marshals v as indented JSON tool text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}

// HandleStartPlanning resolves the partition, creates a goal from the "goal"
// argument, and creates its empty plan. Returns the session and goal.
func (p *Planner) HandleStartPlanning(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description, err := request.RequireString("goal")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: goal"), nil
	}

	backend, session, errResult := p.resolve(ctx, request)
	if errResult != nil {
		return errResult, nil
	}

	goal, err := backend.CreateGoal(ctx, description)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create goal: %v", err)), nil
	}
	if _, err := backend.CreatePlan(ctx, goal.ID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create plan: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"session": session,
		"goal":    goal,
	})
}

// HandleCreateGoal creates a goal without a plan.
func (p *Planner) HandleCreateGoal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description, err := request.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: description"), nil
	}

	backend, _, errResult := p.resolve(ctx, request)
	if errResult != nil {
		return errResult, nil
	}

	goal, err := backend.CreateGoal(ctx, description)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create goal: %v", err)), nil
	}
	return jsonResult(goal)
}

// HandleCreatePlan creates an empty plan for an existing goal.
func (p *Planner) HandleCreatePlan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goalID, err := request.RequireString("goalId")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: goalId"), nil
	}

	backend, _, errResult := p.resolve(ctx, request)
	if errResult != nil {
		return errResult, nil
	}

	plan, err := backend.CreatePlan(ctx, goalID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create plan: %v", err)), nil
	}
	return jsonResult(plan)
}

// HandleAddTodo appends a todo to a goal's plan.
func (p *Planner) HandleAddTodo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goalID, err := request.RequireString("goalId")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: goalId"), nil
	}
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: title"), nil
	}
	description, err := request.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: description"), nil
	}
	complexity, err := request.RequireFloat("complexity")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: complexity"), nil
	}

	backend, _, errResult := p.resolve(ctx, request)
	if errResult != nil {
		return errResult, nil
	}

	todo, err := backend.AddTodo(ctx, goalID, storage.TodoInput{
		Title:       title,
		Description: description,
		Complexity:  int(complexity),
		CodeExample: request.GetString("codeExample", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to add todo: %v", err)), nil
	}
	return jsonResult(todo)
}

// HandleRemoveTodo removes a todo from a goal's plan. An unknown todoId is
// not an error.
func (p *Planner) HandleRemoveTodo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goalID, err := request.RequireString("goalId")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: goalId"), nil
	}
	todoID, err := request.RequireString("todoId")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: todoId"), nil
	}

	backend, _, errResult := p.resolve(ctx, request)
	if errResult != nil {
		return errResult, nil
	}

	if err := backend.RemoveTodo(ctx, goalID, todoID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to remove todo: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Removed todo %s", todoID)), nil
}

// HandleUpdateTodoStatus sets a todo's completion flag.
func (p *Planner) HandleUpdateTodoStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goalID, err := request.RequireString("goalId")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: goalId"), nil
	}
	todoID, err := request.RequireString("todoId")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: todoId"), nil
	}
	isComplete, err := request.RequireBool("isComplete")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: isComplete"), nil
	}

	backend, _, errResult := p.resolve(ctx, request)
	if errResult != nil {
		return errResult, nil
	}

	todo, err := backend.UpdateTodoStatus(ctx, goalID, todoID, isComplete)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update todo status: %v", err)), nil
	}
	return jsonResult(todo)
}

// HandleGetTodos lists one plan's todos, or every todo in the partition when
// goalId is omitted.
func (p *Planner) HandleGetTodos(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	backend, _, errResult := p.resolve(ctx, request)
	if errResult != nil {
		return errResult, nil
	}

	goalID := request.GetString("goalId", "")

	var (
		todos []storage.Todo
		err   error
	)
	if goalID != "" {
		todos, err = backend.GetTodos(ctx, goalID)
	} else {
		todos, err = backend.GetAllTodos(ctx)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list todos: %v", err)), nil
	}
	return jsonResult(todos)
}

// HandleListGoals lists every goal in the partition.
func (p *Planner) HandleListGoals(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	backend, _, errResult := p.resolve(ctx, request)
	if errResult != nil {
		return errResult, nil
	}

	goals, err := backend.GetGoals(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list goals: %v", err)), nil
	}
	return jsonResult(goals)
}

// HandleSavePlan imports plan text as todos against the partition's current
// goal. Todos added before a mid-import failure stay in place.
func (p *Planner) HandleSavePlan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	planText, err := request.RequireString("plan")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: plan"), nil
	}

	backend, _, errResult := p.resolve(ctx, request)
	if errResult != nil {
		return errResult, nil
	}

	todos, err := backend.SavePlan(ctx, planText)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to save plan (%d todos were added before the failure): %v", len(todos), err)), nil
	}
	return jsonResult(todos)
}

// HandleListSessions lists a user's persisted sessions. Redis mode only.
func (p *Planner) HandleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("userId")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: userId"), nil
	}

	sessions := p.factory.Sessions()
	if sessions == nil {
		return mcp.NewToolResultError("Session listing requires redis storage"), nil
	}

	records, err := sessions.GetUserSessions(ctx, userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list sessions: %v", err)), nil
	}
	return jsonResult(records)
}

// HandleDeleteSession deletes a persisted session record. Redis mode only.
func (p *Planner) HandleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("userId")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: userId"), nil
	}
	sessionID, err := request.RequireString("sessionId")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: sessionId"), nil
	}

	sessions := p.factory.Sessions()
	if sessions == nil {
		return mcp.NewToolResultError("Session deletion requires redis storage"), nil
	}

	if err := sessions.DeleteSession(ctx, userID, sessionID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete session: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted session %s", sessionID)), nil
}
