package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/AgoraIO-Community/SFTechWeek-2025-Hackathon/internal/store"
)

// TodoHandler exposes read access to todos and reminders
type TodoHandler struct {
	store *store.Store
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(store *store.Store) *TodoHandler {
	return &TodoHandler{store: store}
}

// ListTodos returns all todos, optionally filtered by completion status
func (h *TodoHandler) ListTodos(c *fiber.Ctx) error {
	var completed *bool
	switch c.Query("completed") {
	case "true":
		v := true
		completed = &v
	case "false":
		v := false
		completed = &v
	}

	todos, err := h.store.ListTodos(c.Context(), completed)
	if err != nil {
		log.Printf("❌ [TODOS] Failed to list todos: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch todos",
		})
	}

	return c.JSON(fiber.Map{
		"todos": todos,
		"count": len(todos),
	})
}

// GetTodo returns a single todo by id
func (h *TodoHandler) GetTodo(c *fiber.Ctx) error {
	todo, err := h.store.GetTodo(c.Context(), c.Params("id"))
	if err != nil {
		log.Printf("❌ [TODOS] Failed to fetch todo: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch todo",
		})
	}
	if todo == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Todo not found",
		})
	}
	return c.JSON(todo)
}

// ListReminders returns all reminders
func (h *TodoHandler) ListReminders(c *fiber.Ctx) error {
	reminders, err := h.store.ListReminders(c.Context())
	if err != nil {
		log.Printf("❌ [REMINDERS] Failed to list reminders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch reminders",
		})
	}

	return c.JSON(fiber.Map{
		"reminders": reminders,
		"count":     len(reminders),
	})
}
