package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/AgoraIO-Community/SFTechWeek-2025-Hackathon/internal/services"
)

// vendorError maps a service failure onto the response. Structured
// vendor errors surface the vendor's status code, details and hint;
// anything else becomes a plain 500.
func vendorError(c *fiber.Ctx, err error) error {
	var apiErr *services.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode
		if status < fiber.StatusBadRequest {
			status = fiber.StatusInternalServerError
		}
		body := fiber.Map{
			"error":       apiErr.Error(),
			"status_code": apiErr.StatusCode,
		}
		if apiErr.Details != "" {
			body["details"] = apiErr.Details
		}
		if apiErr.Hint != "" {
			body["hint"] = apiErr.Hint
		}
		return c.Status(status).JSON(body)
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
