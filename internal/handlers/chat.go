package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/AgoraIO-Community/SFTechWeek-2025-Hackathon/internal/services"
)

// ChatHandler handles text conversations with the assistant
type ChatHandler struct {
	agent *services.AgentService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(agent *services.AgentService) *ChatHandler {
	return &ChatHandler{agent: agent}
}

// Chat processes one user message through the tool-calling agent
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req struct {
		Message   string `json:"message"`
		SessionID string `json:"session_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	log.Printf("💬 [CHAT] Processing message (session: %s)", sessionID)
	response, err := h.agent.Chat(c.Context(), req.Message)
	if err != nil {
		log.Printf("❌ [CHAT] Agent failed: %v", err)
		return vendorError(c, err)
	}

	return c.JSON(fiber.Map{
		"response":   response,
		"session_id": sessionID,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}

// Reset clears the conversation history
func (h *ChatHandler) Reset(c *fiber.Ctx) error {
	h.agent.Reset()
	log.Println("🔄 [CHAT] Conversation history cleared")
	return c.JSON(fiber.Map{
		"status": "conversation reset",
	})
}
