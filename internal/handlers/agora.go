package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/AgoraIO-Community/SFTechWeek-2025-Hackathon/internal/services"
)

// AgoraHandler issues RTC tokens and manages conversational AI agents
type AgoraHandler struct {
	agora    *services.AgoraService
	sessions *services.SessionManager
}

// NewAgoraHandler creates a new Agora handler
func NewAgoraHandler(agora *services.AgoraService, sessions *services.SessionManager) *AgoraHandler {
	return &AgoraHandler{agora: agora, sessions: sessions}
}

// Token generates an RTC token for joining a channel. Projects without
// an app certificate get a null token and testing_mode=true.
func (h *AgoraHandler) Token(c *fiber.Ctx) error {
	var req struct {
		ChannelName   string `json:"channel_name"`
		UID           uint32 `json:"uid"`
		Role          string `json:"role"`
		ExpireSeconds uint32 `json:"expire_seconds"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.ChannelName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "channel_name is required",
		})
	}

	role := services.RolePublisher
	if req.Role == "subscriber" {
		role = services.RoleSubscriber
	}
	expire := req.ExpireSeconds
	if expire == 0 {
		expire = 3600
	}

	token, testingMode, err := h.agora.GenerateRTCToken(req.ChannelName, req.UID, role, expire)
	if err != nil {
		log.Printf("❌ [AGORA] Token generation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	body := fiber.Map{
		"testing_mode": testingMode,
		"app_id":       h.agora.AppID(),
		"channel_name": req.ChannelName,
		"uid":          req.UID,
	}
	if testingMode {
		body["token"] = nil
	} else {
		body["token"] = token
	}
	return c.JSON(body)
}

// StartConversationalAI joins an AI agent to a channel
func (h *AgoraHandler) StartConversationalAI(c *fiber.Ctx) error {
	var req struct {
		ChannelName  string `json:"channel_name"`
		Greeting     string `json:"greeting"`
		EnableAvatar bool   `json:"enable_avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.ChannelName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "channel_name is required",
		})
	}

	result, err := h.sessions.StartAgent(c.Context(), req.ChannelName, req.Greeting, req.EnableAvatar)
	if err != nil {
		log.Printf("❌ [AGORA] Failed to start conversational AI: %v", err)
		return vendorError(c, err)
	}
	return c.JSON(result)
}

// ChannelUsers lists the users currently in a channel
func (h *AgoraHandler) ChannelUsers(c *fiber.Ctx) error {
	result, err := h.agora.GetChannelUsers(c.Context(), c.Params("channel"))
	if err != nil {
		log.Printf("❌ [AGORA] Failed to list channel users: %v", err)
		return vendorError(c, err)
	}
	return c.JSON(result)
}

// StopConversationalAI stops the agent on a channel
func (h *AgoraHandler) StopConversationalAI(c *fiber.Ctx) error {
	var req struct {
		ChannelName string `json:"channel_name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.ChannelName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "channel_name is required",
		})
	}

	result, err := h.sessions.StopAgent(c.Context(), req.ChannelName)
	if err != nil {
		if errors.Is(err, services.ErrNotActive) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No active session found",
			})
		}
		log.Printf("❌ [AGORA] Failed to stop conversational AI: %v", err)
		return vendorError(c, err)
	}
	return c.JSON(result)
}
