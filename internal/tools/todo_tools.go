package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AgoraIO-Community/SFTechWeek-2025-Hackathon/internal/models"
)

// NewCreateTodoTool creates the create_todo tool
func NewCreateTodoTool(store Store) *Tool {
	return &Tool{
		Name:        "create_todo",
		Description: "Create a new todo item",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"title": map[string]interface{}{
					"type":        "string",
					"description": "The title of the todo",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Optional detailed description",
				},
				"priority": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"low", "medium", "high", "urgent"},
					"description": "Priority level",
				},
				"due_date": map[string]interface{}{
					"type":        "string",
					"description": "Due date in ISO format (YYYY-MM-DD)",
				},
			},
			"required": []string{"title"},
		},
		Execute: func(ctx context.Context, args map[string]interface{}) (string, error) {
			title := stringArg(args, "title")
			if title == "" {
				return "Error creating todo: title is required", nil
			}

			priority := models.ParsePriority(stringArg(args, "priority"))

			// Due date defaults to today when the LLM leaves it out
			dueDate, err := parseDate(stringArg(args, "due_date"))
			if err != nil {
				return fmt.Sprintf("Error creating todo: %v", err), nil
			}
			if dueDate == nil {
				now := time.Now().UTC()
				dueDate = &now
			}

			todo, err := store.CreateTodo(ctx, title, stringArg(args, "description"), priority, dueDate)
			if err != nil {
				return fmt.Sprintf("Error creating todo: %v", err), nil
			}

			return fmt.Sprintf("Created todo: %s (Priority: %s)", todo.Title, todo.Priority), nil
		},
	}
}

// NewGetTodosTool creates the get_todos tool
func NewGetTodosTool(store Store) *Tool {
	return &Tool{
		Name:        "get_todos",
		Description: "Get all todos, or filter by completion status. Omit 'completed' parameter to get all todos.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"completed": map[string]interface{}{
					"type":        "boolean",
					"description": "Optional: true for completed todos only, false for active todos only. Do not include this parameter to get all todos.",
				},
			},
		},
		Execute: func(ctx context.Context, args map[string]interface{}) (string, error) {
			var completed *bool
			if v, ok := args["completed"].(bool); ok {
				completed = &v
			}

			todos, err := store.ListTodos(ctx, completed)
			if err != nil {
				return fmt.Sprintf("Error getting todos: %v", err), nil
			}

			if len(todos) == 0 {
				return "You have no todos.", nil
			}

			lines := make([]string, 0, len(todos))
			for _, todo := range todos {
				status := "○"
				if todo.Completed {
					status = "✓"
				}
				due := ""
				if todo.DueDate != nil {
					due = fmt.Sprintf(" (Due: %s)", todo.DueDate.Format("2006-01-02"))
				}
				lines = append(lines, fmt.Sprintf("%s %s - %s priority%s", status, todo.Title, todo.Priority, due))
			}
			return strings.Join(lines, "\n"), nil
		},
	}
}

// NewCompleteTodoTool creates the complete_todo tool
func NewCompleteTodoTool(store Store) *Tool {
	return &Tool{
		Name:        "complete_todo",
		Description: "Mark a todo as completed. Can search by title if ID is not known.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"todo_id": map[string]interface{}{
					"type":        "string",
					"description": "The ID of the todo to complete (optional if title is provided)",
				},
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Search for todo by title to complete it (optional if todo_id is provided)",
				},
			},
		},
		Execute: func(ctx context.Context, args map[string]interface{}) (string, error) {
			todoID := stringArg(args, "todo_id")
			title := stringArg(args, "title")

			if todoID == "" && title != "" {
				match, err := findTodoByTitle(ctx, store, title, true)
				if err != nil {
					return fmt.Sprintf("Error completing todo: %v", err), nil
				}
				if match == nil {
					return fmt.Sprintf("No active todo found matching '%s'", title), nil
				}
				todoID = match.ID
			}

			if todoID == "" {
				return "Please specify either a todo ID or title", nil
			}

			todo, err := store.CompleteTodo(ctx, todoID)
			if err != nil {
				return fmt.Sprintf("Error completing todo: %v", err), nil
			}
			if todo == nil {
				return "Todo not found", nil
			}
			return fmt.Sprintf("Completed todo: %s", todo.Title), nil
		},
	}
}

// NewUpdateTodoTool creates the update_todo tool
func NewUpdateTodoTool(store Store) *Tool {
	return &Tool{
		Name:        "update_todo",
		Description: "Update a todo item",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"todo_id": map[string]interface{}{
					"type":        "string",
					"description": "The ID of the todo to update",
				},
				"title":       map[string]interface{}{"type": "string"},
				"description": map[string]interface{}{"type": "string"},
				"priority": map[string]interface{}{
					"type": "string",
					"enum": []string{"low", "medium", "high", "urgent"},
				},
				"due_date": map[string]interface{}{"type": "string"},
			},
			"required": []string{"todo_id"},
		},
		Execute: func(ctx context.Context, args map[string]interface{}) (string, error) {
			todoID := stringArg(args, "todo_id")
			if todoID == "" {
				return "Error updating todo: todo_id is required", nil
			}

			var update models.TodoUpdate
			if v := stringArg(args, "title"); v != "" {
				update.Title = &v
			}
			if v := stringArg(args, "description"); v != "" {
				update.Description = &v
			}
			if v := stringArg(args, "priority"); v != "" {
				p := models.ParsePriority(v)
				update.Priority = &p
			}
			if v := stringArg(args, "due_date"); v != "" {
				dueDate, err := parseDate(v)
				if err != nil {
					return fmt.Sprintf("Error updating todo: %v", err), nil
				}
				update.DueDate = dueDate
			}

			todo, err := store.UpdateTodo(ctx, todoID, update)
			if err != nil {
				return fmt.Sprintf("Error updating todo: %v", err), nil
			}
			if todo == nil {
				return "Todo not found", nil
			}
			return fmt.Sprintf("Updated todo: %s", todo.Title), nil
		},
	}
}

// NewDeleteTodoTool creates the delete_todo tool
func NewDeleteTodoTool(store Store) *Tool {
	return &Tool{
		Name:        "delete_todo",
		Description: "Delete a todo item. Can search by title if ID is not known.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"todo_id": map[string]interface{}{
					"type":        "string",
					"description": "The ID of the todo to delete (optional if title is provided)",
				},
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Search for todo by title to delete it (optional if todo_id is provided)",
				},
			},
		},
		Execute: func(ctx context.Context, args map[string]interface{}) (string, error) {
			todoID := stringArg(args, "todo_id")
			title := stringArg(args, "title")

			if todoID == "" && title != "" {
				match, err := findTodoByTitle(ctx, store, title, false)
				if err != nil {
					return fmt.Sprintf("Error deleting todo: %v", err), nil
				}
				if match == nil {
					return fmt.Sprintf("No todo found matching '%s'", title), nil
				}
				todoID = match.ID
			}

			if todoID == "" {
				return "Please specify either a todo ID or title", nil
			}

			if store.DeleteTodo(ctx, todoID) {
				return "Todo deleted successfully", nil
			}
			return "Todo not found", nil
		},
	}
}

// findTodoByTitle resolves a todo by case-insensitive substring match.
// activeOnly restricts the search to non-completed todos. When several
// todos match, the first in newest-created-first order is returned; the
// caller is never told about the ambiguity. This mirrors the documented
// resolution policy, not an oversight.
func findTodoByTitle(ctx context.Context, store Store, title string, activeOnly bool) (*models.Todo, error) {
	var completed *bool
	if activeOnly {
		f := false
		completed = &f
	}

	todos, err := store.ListTodos(ctx, completed)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(title)
	for i := range todos {
		if strings.Contains(strings.ToLower(todos[i].Title), needle) {
			return &todos[i], nil
		}
	}
	return nil, nil
}

func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// parseDate accepts ISO dates with or without a time component.
// Empty input yields nil.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q, expected ISO format (YYYY-MM-DD)", s)
}
