package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/AgoraIO-Community/SFTechWeek-2025-Hackathon/internal/services"
)

// HeyGenHandler exposes avatar video generation and real-time
// streaming sessions
type HeyGenHandler struct {
	heygen   *services.HeyGenService
	sessions *services.SessionManager
}

// NewHeyGenHandler creates a new HeyGen handler
func NewHeyGenHandler(heygen *services.HeyGenService, sessions *services.SessionManager) *HeyGenHandler {
	return &HeyGenHandler{heygen: heygen, sessions: sessions}
}

// Avatars lists the avatars available to the account
func (h *HeyGenHandler) Avatars(c *fiber.Ctx) error {
	avatars, err := h.heygen.ListAvatars(c.Context())
	if err != nil {
		log.Printf("❌ [HEYGEN] Failed to list avatars: %v", err)
		return vendorError(c, err)
	}
	return c.JSON(fiber.Map{
		"avatars": avatars,
		"count":   len(avatars),
	})
}

// Voices lists the voices available for avatar videos
func (h *HeyGenHandler) Voices(c *fiber.Ctx) error {
	voices, err := h.heygen.ListVoices(c.Context())
	if err != nil {
		log.Printf("❌ [HEYGEN] Failed to list voices: %v", err)
		return vendorError(c, err)
	}
	return c.JSON(fiber.Map{
		"voices": voices,
		"count":  len(voices),
	})
}

// CreateVideo submits an avatar video generation job. With wait=true
// the request blocks until the video completes or the poll budget runs
// out.
func (h *HeyGenHandler) CreateVideo(c *fiber.Ctx) error {
	var req struct {
		Script   string `json:"script"`
		AvatarID string `json:"avatar_id"`
		VoiceID  string `json:"voice_id"`
		Title    string `json:"title"`
		Wait     bool   `json:"wait"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Script == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Script is required",
		})
	}

	result, err := h.heygen.CreateVideo(c.Context(), req.Script, services.VideoOptions{
		AvatarID: req.AvatarID,
		VoiceID:  req.VoiceID,
		Title:    req.Title,
	})
	if err != nil {
		log.Printf("❌ [HEYGEN] Video creation failed: %v", err)
		return vendorError(c, err)
	}

	if req.Wait {
		data, _ := result["data"].(map[string]interface{})
		videoID, _ := data["video_id"].(string)
		if videoID == "" {
			return c.JSON(result)
		}
		status, err := h.heygen.WaitForVideo(c.Context(), videoID)
		if err != nil {
			log.Printf("❌ [HEYGEN] Video wait failed: %v", err)
			if status != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   err.Error(),
					"details": status,
				})
			}
			return vendorError(c, err)
		}
		return c.JSON(status)
	}
	return c.JSON(result)
}

// VideoStatus fetches the status of a video generation job
func (h *HeyGenHandler) VideoStatus(c *fiber.Ctx) error {
	result, err := h.heygen.GetVideoStatus(c.Context(), c.Params("id"))
	if err != nil {
		log.Printf("❌ [HEYGEN] Video status failed: %v", err)
		return vendorError(c, err)
	}
	return c.JSON(result)
}

// NewStreamingSession opens a real-time avatar session
func (h *HeyGenHandler) NewStreamingSession(c *fiber.Ctx) error {
	var req struct {
		AvatarID string `json:"avatar_id"`
		VoiceID  string `json:"voice_id"`
		Quality  string `json:"quality"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := h.sessions.StartAvatar(c.Context(), services.StreamingOptions{
		AvatarID: req.AvatarID,
		VoiceID:  req.VoiceID,
		Quality:  req.Quality,
	})
	if err != nil {
		log.Printf("❌ [HEYGEN] Failed to create streaming session: %v", err)
		return vendorError(c, err)
	}
	return c.JSON(result)
}

// StartStreaming hands the client's SDP answer to a session
func (h *HeyGenHandler) StartStreaming(c *fiber.Ctx) error {
	var req struct {
		SessionID string                 `json:"session_id"`
		SDP       map[string]interface{} `json:"sdp"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session_id is required",
		})
	}

	if h.sessions.Avatar(req.SessionID) == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	result, err := h.heygen.StartStreaming(c.Context(), req.SessionID, req.SDP)
	if err != nil {
		log.Printf("❌ [HEYGEN] SDP handoff failed: %v", err)
		return vendorError(c, err)
	}
	return c.JSON(result)
}

// Speak makes a streaming avatar speak text
func (h *HeyGenHandler) Speak(c *fiber.Ctx) error {
	var req struct {
		SessionID string `json:"session_id"`
		Text      string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.SessionID == "" || req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session_id and text are required",
		})
	}

	session := h.sessions.Avatar(req.SessionID)
	if session == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	result, err := session.Speak(c.Context(), req.Text)
	if err != nil {
		if errors.Is(err, services.ErrNotActive) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Session is not active",
			})
		}
		log.Printf("❌ [HEYGEN] Avatar speak failed: %v", err)
		return vendorError(c, err)
	}
	return c.JSON(result)
}

// StopStreaming closes a streaming session
func (h *HeyGenHandler) StopStreaming(c *fiber.Ctx) error {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session_id is required",
		})
	}

	result, err := h.sessions.StopAvatar(c.Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, services.ErrNotActive) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Session not found",
			})
		}
		log.Printf("❌ [HEYGEN] Failed to stop streaming session: %v", err)
		return vendorError(c, err)
	}
	return c.JSON(result)
}

// ICEServers fetches the WebRTC ICE configuration for a session
func (h *HeyGenHandler) ICEServers(c *fiber.Ctx) error {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session_id is required",
		})
	}

	session := h.sessions.Avatar(req.SessionID)
	if session == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	result, err := session.ICEServers(c.Context())
	if err != nil {
		if errors.Is(err, services.ErrNotActive) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Session is not active",
			})
		}
		log.Printf("❌ [HEYGEN] Failed to get ICE servers: %v", err)
		return vendorError(c, err)
	}
	return c.JSON(result)
}
