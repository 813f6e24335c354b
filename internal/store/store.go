package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AgoraIO-Community/SFTechWeek-2025-Hackathon/internal/database"
	"github.com/AgoraIO-Community/SFTechWeek-2025-Hackathon/internal/models"
)

// Store is the persistence gateway for todos and reminders.
// Missing documents are reported as absence (nil / false), never as errors;
// errors are reserved for transport failures.
type Store struct {
	todos     *mongo.Collection
	reminders *mongo.Collection
}

// New creates a store over the todos and reminders collections
func New(db *database.MongoDB) *Store {
	return &Store{
		todos:     db.Collection(database.CollectionTodos),
		reminders: db.Collection(database.CollectionReminders),
	}
}

// CreateTodo inserts a new todo with a fresh id and timestamps
func (s *Store) CreateTodo(ctx context.Context, title, description string, priority models.Priority, dueDate *time.Time) (*models.Todo, error) {
	now := time.Now().UTC()
	todo := &models.Todo{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Completed:   false,
		Priority:    priority,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.todos.InsertOne(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return todo, nil
}

// ListTodos returns todos newest-created-first, optionally filtered by
// completion status
func (s *Store) ListTodos(ctx context.Context, completed *bool) ([]models.Todo, error) {
	filter := bson.M{}
	if completed != nil {
		filter["completed"] = *completed
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.todos.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer cursor.Close(ctx)

	var todos []models.Todo
	if err := cursor.All(ctx, &todos); err != nil {
		return nil, fmt.Errorf("failed to decode todos: %w", err)
	}
	return todos, nil
}

// GetTodo returns one todo by id, or nil if it does not exist
func (s *Store) GetTodo(ctx context.Context, id string) (*models.Todo, error) {
	var todo models.Todo
	err := s.todos.FindOne(ctx, bson.M{"_id": id}).Decode(&todo)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get todo %s: %w", id, err)
	}
	return &todo, nil
}

// UpdateTodo applies the provided fields and refreshes updated_at.
// Returns nil if the todo does not exist.
func (s *Store) UpdateTodo(ctx context.Context, id string, update models.TodoUpdate) (*models.Todo, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Completed != nil {
		set["completed"] = *update.Completed
	}
	if update.Priority != nil {
		set["priority"] = *update.Priority
	}
	if update.DueDate != nil {
		set["due_date"] = *update.DueDate
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var todo models.Todo
	err := s.todos.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&todo)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update todo %s: %w", id, err)
	}
	return &todo, nil
}

// CompleteTodo marks a todo as completed
func (s *Store) CompleteTodo(ctx context.Context, id string) (*models.Todo, error) {
	completed := true
	return s.UpdateTodo(ctx, id, models.TodoUpdate{Completed: &completed})
}

// DeleteTodo removes a todo. Returns false when nothing was deleted,
// whether the todo was missing or the call failed.
func (s *Store) DeleteTodo(ctx context.Context, id string) bool {
	result, err := s.todos.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false
	}
	return result.DeletedCount > 0
}

// CreateReminder inserts a new reminder with a fresh id and timestamps
func (s *Store) CreateReminder(ctx context.Context, text string, importance models.Priority, reminderDate *time.Time) (*models.Reminder, error) {
	now := time.Now().UTC()
	reminder := &models.Reminder{
		ID:           uuid.New().String(),
		ReminderText: text,
		Importance:   importance,
		ReminderDate: reminderDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.reminders.InsertOne(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	return reminder, nil
}

// ListReminders returns all reminders newest-created-first
func (s *Store) ListReminders(ctx context.Context) ([]models.Reminder, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.reminders.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer cursor.Close(ctx)

	var reminders []models.Reminder
	if err := cursor.All(ctx, &reminders); err != nil {
		return nil, fmt.Errorf("failed to decode reminders: %w", err)
	}
	return reminders, nil
}

// GetReminder returns one reminder by id, or nil if it does not exist
func (s *Store) GetReminder(ctx context.Context, id string) (*models.Reminder, error) {
	var reminder models.Reminder
	err := s.reminders.FindOne(ctx, bson.M{"_id": id}).Decode(&reminder)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder %s: %w", id, err)
	}
	return &reminder, nil
}

// DeleteReminder removes a reminder. Returns false when nothing was deleted.
func (s *Store) DeleteReminder(ctx context.Context, id string) bool {
	result, err := s.reminders.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false
	}
	return result.DeletedCount > 0
}
