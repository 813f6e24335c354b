package handlers

import (
	"bufio"
	"io"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/AgoraIO-Community/SFTechWeek-2025-Hackathon/internal/services"
)

// TTSHandler converts text to speech through ElevenLabs
type TTSHandler struct {
	tts *services.TTSService
}

// NewTTSHandler creates a new TTS handler
func NewTTSHandler(tts *services.TTSService) *TTSHandler {
	return &TTSHandler{tts: tts}
}

// Synthesize converts text to MP3 audio, buffered or streamed
func (h *TTSHandler) Synthesize(c *fiber.Ctx) error {
	var req struct {
		Text    string `json:"text"`
		VoiceID string `json:"voice_id"`
		Stream  bool   `json:"stream"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Text is required",
		})
	}

	if !h.tts.Enabled() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Text-to-speech is not configured",
			"hint":  "Set ELEVENLABS_API_KEY in .env to enable voice output",
		})
	}

	opts := services.SpeechOptions{VoiceID: req.VoiceID}

	if req.Stream {
		body, err := h.tts.ConvertStream(c.Context(), req.Text, opts)
		if err != nil {
			log.Printf("❌ [TTS] Stream failed: %v", err)
			return vendorError(c, err)
		}

		c.Set(fiber.HeaderContentType, "audio/mpeg")
		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			defer body.Close()
			if _, err := io.Copy(w, body); err != nil {
				log.Printf("⚠️ [TTS] Stream interrupted: %v", err)
			}
		})
		return nil
	}

	audio, err := h.tts.Convert(c.Context(), req.Text, opts)
	if err != nil {
		log.Printf("❌ [TTS] Conversion failed: %v", err)
		return vendorError(c, err)
	}

	c.Set(fiber.HeaderContentType, "audio/mpeg")
	return c.Send(audio)
}

// Voices lists the voices available to the account
func (h *TTSHandler) Voices(c *fiber.Ctx) error {
	voices, err := h.tts.Voices(c.Context())
	if err != nil {
		log.Printf("❌ [TTS] Failed to list voices: %v", err)
		return vendorError(c, err)
	}

	return c.JSON(fiber.Map{
		"voices": voices,
		"count":  len(voices),
	})
}
