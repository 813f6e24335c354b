package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/AgoraIO-Community/SFTechWeek-2025-Hackathon/internal/models"
)

// NewCreateReminderTool creates the create_reminder tool
func NewCreateReminderTool(store Store) *Tool {
	return &Tool{
		Name:        "create_reminder",
		Description: "Create a new reminder",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"reminder_text": map[string]interface{}{
					"type":        "string",
					"description": "The reminder text",
				},
				"importance": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"low", "medium", "high", "urgent"},
					"description": "Importance level",
				},
				"reminder_date": map[string]interface{}{
					"type":        "string",
					"description": "Reminder date in ISO format",
				},
			},
			"required": []string{"reminder_text"},
		},
		Execute: func(ctx context.Context, args map[string]interface{}) (string, error) {
			text := stringArg(args, "reminder_text")
			if text == "" {
				return "Error creating reminder: reminder_text is required", nil
			}

			importance := models.ParsePriority(stringArg(args, "importance"))

			reminderDate, err := parseDate(stringArg(args, "reminder_date"))
			if err != nil {
				return fmt.Sprintf("Error creating reminder: %v", err), nil
			}

			reminder, err := store.CreateReminder(ctx, text, importance, reminderDate)
			if err != nil {
				return fmt.Sprintf("Error creating reminder: %v", err), nil
			}

			return fmt.Sprintf("Created reminder: %s", reminder.ReminderText), nil
		},
	}
}

// NewGetRemindersTool creates the get_reminders tool
func NewGetRemindersTool(store Store) *Tool {
	return &Tool{
		Name:        "get_reminders",
		Description: "Get all reminders",
		Parameters: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
		Execute: func(ctx context.Context, args map[string]interface{}) (string, error) {
			reminders, err := store.ListReminders(ctx)
			if err != nil {
				return fmt.Sprintf("Error getting reminders: %v", err), nil
			}

			if len(reminders) == 0 {
				return "You have no reminders.", nil
			}

			lines := make([]string, 0, len(reminders))
			for _, reminder := range reminders {
				date := ""
				if reminder.ReminderDate != nil {
					date = fmt.Sprintf(" (Date: %s)", reminder.ReminderDate.Format("2006-01-02"))
				}
				lines = append(lines, fmt.Sprintf("• %s - %s importance%s", reminder.ReminderText, reminder.Importance, date))
			}
			return strings.Join(lines, "\n"), nil
		},
	}
}

// NewDeleteReminderTool creates the delete_reminder tool
func NewDeleteReminderTool(store Store) *Tool {
	return &Tool{
		Name:        "delete_reminder",
		Description: "Delete a reminder. Can search by text if ID is not known.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"reminder_id": map[string]interface{}{
					"type":        "string",
					"description": "The ID of the reminder to delete (optional if reminder_text is provided)",
				},
				"reminder_text": map[string]interface{}{
					"type":        "string",
					"description": "Search for reminder by text to delete it (optional if reminder_id is provided)",
				},
			},
		},
		Execute: func(ctx context.Context, args map[string]interface{}) (string, error) {
			reminderID := stringArg(args, "reminder_id")
			text := stringArg(args, "reminder_text")

			if reminderID == "" && text != "" {
				match, err := findReminderByText(ctx, store, text)
				if err != nil {
					return fmt.Sprintf("Error deleting reminder: %v", err), nil
				}
				if match == nil {
					return fmt.Sprintf("No reminder found matching '%s'", text), nil
				}
				reminderID = match.ID
			}

			if reminderID == "" {
				return "Please specify either a reminder ID or reminder text", nil
			}

			if store.DeleteReminder(ctx, reminderID) {
				return "Reminder deleted successfully", nil
			}
			return "Reminder not found", nil
		},
	}
}

// findReminderByText resolves a reminder by case-insensitive substring
// match, first match in newest-created-first order. Same policy as
// findTodoByTitle.
func findReminderByText(ctx context.Context, store Store, text string) (*models.Reminder, error) {
	reminders, err := store.ListReminders(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(text)
	for i := range reminders {
		if strings.Contains(strings.ToLower(reminders[i].ReminderText), needle) {
			return &reminders[i], nil
		}
	}
	return nil, nil
}
