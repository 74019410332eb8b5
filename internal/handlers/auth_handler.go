package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"talentboard/recruiting-api/internal/models"
	"talentboard/recruiting-api/internal/services"
)

// AuthHandler exposes the Google Drive authorization surface: mint a
// consent URL and accept the callback code.
type AuthHandler struct {
	drive services.DriveService
}

func NewAuthHandler(drive services.DriveService) *AuthHandler {
	return &AuthHandler{drive: drive}
}

// HandleAuthURL handles GET /auth/drive/url.
func (h *AuthHandler) HandleAuthURL(c *fiber.Ctx) error {
	state := c.Query("state", "state-token")
	return c.JSON(models.DriveAuthURLResponse{
		AuthURL: h.drive.AuthURL(state),
	})
}

// HandleCallback handles GET /auth/drive/callback.
func (h *AuthHandler) HandleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "code is required",
		})
	}

	if err := h.drive.Exchange(c.Context(), code); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to exchange authorization code: %v", err),
		})
	}

	return c.JSON(fiber.Map{"status": "authorized"})
}
