package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"talentboard/recruiting-api/internal/models"
	"talentboard/recruiting-api/internal/repositories"
)

type SavedSearchHandler struct {
	searchRepo repositories.SavedSearchRepository
}

func NewSavedSearchHandler(searchRepo repositories.SavedSearchRepository) *SavedSearchHandler {
	return &SavedSearchHandler{searchRepo: searchRepo}
}

// HandleCreate handles POST /searches.
func (h *SavedSearchHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.SavedSearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name is required",
		})
	}
	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query is required",
		})
	}

	search := models.SavedSearch{
		ID:        uuid.New(),
		Name:      req.Name,
		Query:     req.Query,
		Filters:   datatypes.JSONMap(req.Filters),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := h.searchRepo.Create(&search); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create saved search",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(search)
}

// HandleList handles GET /searches.
func (h *SavedSearchHandler) HandleList(c *fiber.Ctx) error {
	searches, err := h.searchRepo.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list saved searches",
		})
	}

	return c.JSON(fiber.Map{"searches": searches})
}

// HandleDelete handles DELETE /searches/:id.
func (h *SavedSearchHandler) HandleDelete(c *fiber.Ctx) error {
	searchID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid saved search ID format",
		})
	}

	if err := h.searchRepo.Delete(searchID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Saved search not found",
		})
	}

	return c.JSON(fiber.Map{"status": "deleted"})
}
