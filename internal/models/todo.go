package models

import "time"

// Priority represents a todo priority / reminder importance level
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority normalizes a priority string, falling back to medium
// for empty or unknown values.
func ParsePriority(s string) Priority {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return Priority(s)
	default:
		return PriorityMedium
	}
}

// IsValid reports whether p is one of the four known levels.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Todo is a todo item stored in the todos collection
type Todo struct {
	ID          string     `bson:"_id" json:"id"`
	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	Completed   bool       `bson:"completed" json:"completed"`
	Priority    Priority   `bson:"priority" json:"priority"`
	DueDate     *time.Time `bson:"due_date,omitempty" json:"due_date,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

// Reminder is a reminder stored in the reminders collection
type Reminder struct {
	ID           string     `bson:"_id" json:"id"`
	ReminderText string     `bson:"reminder_text" json:"reminder_text"`
	Importance   Priority   `bson:"importance" json:"importance"`
	ReminderDate *time.Time `bson:"reminder_date,omitempty" json:"reminder_date,omitempty"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at" json:"updated_at"`
}

// TodoUpdate carries the fields of a partial todo update.
// Nil fields are left unchanged.
type TodoUpdate struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *Priority
	DueDate     *time.Time
}
