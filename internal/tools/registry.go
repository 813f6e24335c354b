package tools

import (
	"context"
	"fmt"
	"sync"
)

// Tool represents a callable tool with its metadata and execution function
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
	Execute     ExecuteFunc
}

// ExecuteFunc is the function signature for tool execution
type ExecuteFunc func(ctx context.Context, args map[string]interface{}) (string, error)

// Registry manages the tools offered to the LLM
type Registry struct {
	tools map[string]*Tool
	order []string
	mutex sync.RWMutex
}

// NewRegistry creates a registry with the todo and reminder tools registered
func NewRegistry(store Store) *Registry {
	r := &Registry{tools: make(map[string]*Tool)}

	_ = r.Register(NewCreateTodoTool(store))
	_ = r.Register(NewGetTodosTool(store))
	_ = r.Register(NewCompleteTodoTool(store))
	_ = r.Register(NewUpdateTodoTool(store))
	_ = r.Register(NewDeleteTodoTool(store))
	_ = r.Register(NewCreateReminderTool(store))
	_ = r.Register(NewGetRemindersTool(store))
	_ = r.Register(NewDeleteReminderTool(store))

	return r
}

// Register adds a new tool to the registry
func (r *Registry) Register(tool *Tool) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if tool.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}

	if tool.Execute == nil {
		return fmt.Errorf("tool %s must have an Execute function", tool.Name)
	}

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tool %s is already registered", tool.Name)
	}

	r.tools[tool.Name] = tool
	r.order = append(r.order, tool.Name)
	return nil
}

// Get retrieves a tool by name
func (r *Registry) Get(name string) (*Tool, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	tool, exists := r.tools[name]
	return tool, exists
}

// List returns all registered tools in OpenAI tool format, in
// registration order
func (r *Registry) List() []map[string]interface{} {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	tools := make([]map[string]interface{}, 0, len(r.order))
	for _, name := range r.order {
		tool := r.tools[name]
		tools = append(tools, map[string]interface{}{
			"type": "function",
			"function": map[string]interface{}{
				"name":        tool.Name,
				"description": tool.Description,
				"parameters":  tool.Parameters,
			},
		})
	}
	return tools
}

// Execute runs a tool by name with given arguments
func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	tool, exists := r.Get(name)
	if !exists {
		return "", fmt.Errorf("tool %s not found", name)
	}
	return tool.Execute(ctx, args)
}

// Count returns the number of registered tools
func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.tools)
}
