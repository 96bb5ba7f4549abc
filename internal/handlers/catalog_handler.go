package handlers

import (
	"tokoadmin/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves categories and tags, the option sources of the product form.
type CatalogHandler struct {
	service *services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes registers the category and tag routes with the Fiber app.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/categories", h.HandleListCategories)
	router.Post("/categories", h.HandleCreateCategory)
	router.Get("/tags", h.HandleListTags)
	router.Post("/tags", h.HandleCreateTag)
}

func (h *CatalogHandler) HandleListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve categories", err)
	}
	return c.JSON(categories)
}

func (h *CatalogHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var input services.NameInput
	if err := c.BodyParser(&input); err != nil {
		return badBody(c, err)
	}
	category, err := h.service.CreateCategory(c.UserContext(), input)
	if err != nil {
		return respondError(c, "Could not create category", err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *CatalogHandler) HandleListTags(c *fiber.Ctx) error {
	tags, err := h.service.ListTags(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve tags", err)
	}
	return c.JSON(tags)
}

func (h *CatalogHandler) HandleCreateTag(c *fiber.Ctx) error {
	var input services.NameInput
	if err := c.BodyParser(&input); err != nil {
		return badBody(c, err)
	}
	tag, err := h.service.CreateTag(c.UserContext(), input)
	if err != nil {
		return respondError(c, "Could not create tag", err)
	}
	return c.Status(fiber.StatusCreated).JSON(tag)
}
