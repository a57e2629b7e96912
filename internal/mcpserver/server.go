package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/erauner/Software-planning-mcp/internal/config"
	"github.com/erauner/Software-planning-mcp/internal/storage"
)

// NewServer creates an MCP server with every planning tool registered
// against the configured storage mode. The returned factory should be
// closed when the server stops.
func NewServer(cfg config.Config) (*server.MCPServer, *storage.Factory, error) {
	factory, err := storage.NewFactory(cfg)
	if err != nil {
		return nil, nil, err
	}
	planner := NewPlanner(factory)

	s := server.NewMCPServer(
		"software-planning",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	// Planning lifecycle tools
	s.AddTool(startPlanningTool(), planner.HandleStartPlanning)
	s.AddTool(createGoalTool(), planner.HandleCreateGoal)
	s.AddTool(createPlanTool(), planner.HandleCreatePlan)

	// Todo CRUD tools
	s.AddTool(addTodoTool(), planner.HandleAddTodo)
	s.AddTool(removeTodoTool(), planner.HandleRemoveTodo)
	s.AddTool(updateTodoStatusTool(), planner.HandleUpdateTodoStatus)
	s.AddTool(getTodosTool(), planner.HandleGetTodos)
	s.AddTool(listGoalsTool(), planner.HandleListGoals)

	// Plan import and session management tools
	s.AddTool(savePlanTool(), planner.HandleSavePlan)
	s.AddTool(listSessionsTool(), planner.HandleListSessions)
	s.AddTool(deleteSessionTool(), planner.HandleDeleteSession)

	return s, factory, nil
}
