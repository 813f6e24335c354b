package services

import (
	"context"
	"fmt"
	"time"

	"github.com/AgoraIO-Community/SFTechWeek-2025-Hackathon/internal/models"
)

// stubStore is a minimal in-memory tools.Store for agent tests
type stubStore struct {
	todos     []models.Todo
	reminders []models.Reminder
	nextID    int
}

func newStubStore() *stubStore {
	return &stubStore{}
}

func (s *stubStore) id() string {
	s.nextID++
	return fmt.Sprintf("id-%d", s.nextID)
}

func (s *stubStore) CreateTodo(ctx context.Context, title, description string, priority models.Priority, dueDate *time.Time) (*models.Todo, error) {
	now := time.Now().UTC()
	todo := models.Todo{ID: s.id(), Title: title, Description: description, Priority: priority, DueDate: dueDate, CreatedAt: now, UpdatedAt: now}
	s.todos = append(s.todos, todo)
	return &todo, nil
}

func (s *stubStore) ListTodos(ctx context.Context, completed *bool) ([]models.Todo, error) {
	out := make([]models.Todo, 0, len(s.todos))
	for i := len(s.todos) - 1; i >= 0; i-- {
		if completed != nil && s.todos[i].Completed != *completed {
			continue
		}
		out = append(out, s.todos[i])
	}
	return out, nil
}

func (s *stubStore) UpdateTodo(ctx context.Context, id string, update models.TodoUpdate) (*models.Todo, error) {
	for i := range s.todos {
		if s.todos[i].ID != id {
			continue
		}
		if update.Title != nil {
			s.todos[i].Title = *update.Title
		}
		if update.Completed != nil {
			s.todos[i].Completed = *update.Completed
		}
		if update.Priority != nil {
			s.todos[i].Priority = *update.Priority
		}
		todo := s.todos[i]
		return &todo, nil
	}
	return nil, nil
}

func (s *stubStore) CompleteTodo(ctx context.Context, id string) (*models.Todo, error) {
	done := true
	return s.UpdateTodo(ctx, id, models.TodoUpdate{Completed: &done})
}

func (s *stubStore) DeleteTodo(ctx context.Context, id string) bool {
	for i := range s.todos {
		if s.todos[i].ID == id {
			s.todos = append(s.todos[:i], s.todos[i+1:]...)
			return true
		}
	}
	return false
}

func (s *stubStore) CreateReminder(ctx context.Context, text string, importance models.Priority, reminderDate *time.Time) (*models.Reminder, error) {
	now := time.Now().UTC()
	reminder := models.Reminder{ID: s.id(), ReminderText: text, Importance: importance, ReminderDate: reminderDate, CreatedAt: now, UpdatedAt: now}
	s.reminders = append(s.reminders, reminder)
	return &reminder, nil
}

func (s *stubStore) ListReminders(ctx context.Context) ([]models.Reminder, error) {
	out := make([]models.Reminder, 0, len(s.reminders))
	for i := len(s.reminders) - 1; i >= 0; i-- {
		out = append(out, s.reminders[i])
	}
	return out, nil
}

func (s *stubStore) DeleteReminder(ctx context.Context, id string) bool {
	for i := range s.reminders {
		if s.reminders[i].ID == id {
			s.reminders = append(s.reminders[:i], s.reminders[i+1:]...)
			return true
		}
	}
	return false
}
