package tools

import (
	"context"
	"time"

	"github.com/AgoraIO-Community/SFTechWeek-2025-Hackathon/internal/models"
)

// Store is the persistence surface the tools act against.
// *store.Store satisfies it; tests use an in-memory fake.
type Store interface {
	CreateTodo(ctx context.Context, title, description string, priority models.Priority, dueDate *time.Time) (*models.Todo, error)
	ListTodos(ctx context.Context, completed *bool) ([]models.Todo, error)
	UpdateTodo(ctx context.Context, id string, update models.TodoUpdate) (*models.Todo, error)
	CompleteTodo(ctx context.Context, id string) (*models.Todo, error)
	DeleteTodo(ctx context.Context, id string) bool
	CreateReminder(ctx context.Context, text string, importance models.Priority, reminderDate *time.Time) (*models.Reminder, error)
	ListReminders(ctx context.Context) ([]models.Reminder, error)
	DeleteReminder(ctx context.Context, id string) bool
}
