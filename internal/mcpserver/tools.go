// Package mcpserver exposes planning-session storage as MCP tools.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// contextParams are the optional partition-resolution parameters accepted by
// every tool: explicit arguments beat session continuation, which beats
// auto-detection from the project path.
func contextParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("userId",
			mcp.Description("User identifier scoping partitions and sessions. Required with shared storage backends.")),
		mcp.WithString("sessionId",
			mcp.Description("Session to continue. Its stored repository and branch win over other arguments.")),
		mcp.WithString("repository",
			mcp.Description("Explicit repository identifier (host/owner/name), bypassing detection.")),
		mcp.WithString("branch",
			mcp.Description("Explicit branch name, bypassing detection.")),
		mcp.WithString("gitRemoteUrl",
			mcp.Description("Git remote URL to derive the repository identifier from.")),
		mcp.WithString("projectPath",
			mcp.Description("Working directory for detection and file-mode storage (default: server working directory).")),
	}
}

func withContextParams(opts ...mcp.ToolOption) []mcp.ToolOption {
	return append(opts, contextParams()...)
}

// startPlanningTool returns the tool definition for starting a planning
// session: resolve the partition, create a goal, and create its empty plan.
func startPlanningTool() mcp.Tool {
	return mcp.NewTool("start_planning",
		withContextParams(
			mcp.WithDescription("Start a new planning session: resolve the repository/branch partition, create a goal, and prepare an empty implementation plan."),
			mcp.WithString("goal",
				mcp.Required(),
				mcp.Description("Description of the planning objective")),
		)...,
	)
}

// createGoalTool returns the tool definition for creating a goal without a
// plan.
func createGoalTool() mcp.Tool {
	return mcp.NewTool("create_goal",
		withContextParams(
			mcp.WithDescription("Create a planning goal in the resolved partition. Does not create a plan."),
			mcp.WithString("description",
				mcp.Required(),
				mcp.Description("Free-text description of the goal")),
		)...,
	)
}

// createPlanTool returns the tool definition for creating an empty plan for
// an existing goal.
func createPlanTool() mcp.Tool {
	return mcp.NewTool("create_plan",
		withContextParams(
			mcp.WithDescription("Create an empty implementation plan for a goal."),
			mcp.WithString("goalId",
				mcp.Required(),
				mcp.Description("Identifier of the goal the plan belongs to")),
		)...,
	)
}

// addTodoTool returns the tool definition for appending a todo to a plan.
func addTodoTool() mcp.Tool {
	return mcp.NewTool("add_todo",
		withContextParams(
			mcp.WithDescription("Add a todo to a goal's implementation plan. Fails if no plan exists for the goal."),
			mcp.WithString("goalId",
				mcp.Required(),
				mcp.Description("Identifier of the goal whose plan receives the todo")),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("Short title of the task")),
			mcp.WithString("description",
				mcp.Required(),
				mcp.Description("Detailed description of the task")),
			mcp.WithNumber("complexity",
				mcp.Required(),
				mcp.Description("Complexity score from 0 to 10")),
			mcp.WithString("codeExample",
				mcp.Description("Optional illustrative code for the task")),
		)...,
	)
}

// removeTodoTool returns the tool definition for deleting a todo.
func removeTodoTool() mcp.Tool {
	return mcp.NewTool("remove_todo",
		withContextParams(
			mcp.WithDescription("Remove a todo from a goal's plan. An unknown todoId is ignored; a missing plan is an error."),
			mcp.WithString("goalId",
				mcp.Required(),
				mcp.Description("Identifier of the goal whose plan holds the todo")),
			mcp.WithString("todoId",
				mcp.Required(),
				mcp.Description("Identifier of the todo to remove")),
		)...,
	)
}

// updateTodoStatusTool returns the tool definition for flipping a todo's
// completion flag.
func updateTodoStatusTool() mcp.Tool {
	return mcp.NewTool("update_todo_status",
		withContextParams(
			mcp.WithDescription("Mark a todo complete or incomplete."),
			mcp.WithString("goalId",
				mcp.Required(),
				mcp.Description("Identifier of the goal whose plan holds the todo")),
			mcp.WithString("todoId",
				mcp.Required(),
				mcp.Description("Identifier of the todo to update")),
			mcp.WithBoolean("isComplete",
				mcp.Required(),
				mcp.Description("New completion state")),
		)...,
	)
}

// getTodosTool returns the tool definition for listing todos.
func getTodosTool() mcp.Tool {
	return mcp.NewTool("get_todos",
		withContextParams(
			mcp.WithDescription("List todos. With goalId, only that plan's todos; otherwise every todo in the partition."),
			mcp.WithString("goalId",
				mcp.Description("Limit results to one goal's plan")),
		)...,
	)
}

// listGoalsTool returns the tool definition for listing goals.
func listGoalsTool() mcp.Tool {
	return mcp.NewTool("list_goals",
		withContextParams(
			mcp.WithDescription("List every goal in the resolved partition, keyed by identifier."),
		)...,
	)
}

// savePlanTool returns the tool definition for importing plan text.
func savePlanTool() mcp.Tool {
	return mcp.NewTool("save_plan",
		withContextParams(
			mcp.WithDescription("Parse free-form plan text into todos (one per content line) and append them to the partition's current goal."),
			mcp.WithString("plan",
				mcp.Required(),
				mcp.Description("Plan text to parse")),
		)...,
	)
}

// listSessionsTool returns the tool definition for listing a user's
// sessions. Only meaningful with redis storage, where sessions persist.
func listSessionsTool() mcp.Tool {
	return mcp.NewTool("list_sessions",
		mcp.WithDescription("List every planning session belonging to a user. Requires redis storage."),
		mcp.WithString("userId",
			mcp.Required(),
			mcp.Description("User whose sessions to list")),
	)
}

// deleteSessionTool returns the tool definition for deleting a session
// record. Only meaningful with redis storage.
func deleteSessionTool() mcp.Tool {
	return mcp.NewTool("delete_session",
		mcp.WithDescription("Delete a planning session record. Requires redis storage. Partition data is not removed."),
		mcp.WithString("userId",
			mcp.Required(),
			mcp.Description("User the session belongs to")),
		mcp.WithString("sessionId",
			mcp.Required(),
			mcp.Description("Session to delete")),
	)
}
