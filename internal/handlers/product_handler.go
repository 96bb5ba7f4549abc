package handlers

import (
	"fmt"
	"strings"

	"tokoadmin/internal/resource"
	"tokoadmin/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/tealeg/xlsx"
)

// ProductHandler serves the product resource pages and actions.
type ProductHandler struct {
	service  *services.ProductService
	catalog  *services.CatalogService
	resource *resource.ProductResource
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, catalog *services.CatalogService, res *resource.ProductResource) *ProductHandler {
	return &ProductHandler{
		service:  service,
		catalog:  catalog,
		resource: res,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleList)
	productRoutes.Get("/schema", h.HandleSchema)
	productRoutes.Get("/create", h.HandleCreatePage)
	productRoutes.Get("/export", h.HandleExport)
	productRoutes.Post("/", h.HandleCreate)
	productRoutes.Post("/bulk-delete", h.HandleBulkDelete)
	productRoutes.Get("/:id/edit", h.HandleEditPage)
	productRoutes.Put("/:id", h.HandleUpdate)
	productRoutes.Patch("/:id", h.HandleUpdate)
	productRoutes.Delete("/:id", h.HandleDelete)

	tagRoutes := productRoutes.Group("/:id/tags")
	tagRoutes.Get("/", h.HandleListTags)
	tagRoutes.Post("/", h.HandleAttachTags)
	tagRoutes.Delete("/:tagId", h.HandleDetachTag)
}

// HandleList renders the list view: filtered, sorted and paginated rows.
func (h *ProductHandler) HandleList(c *fiber.Ctx) error {
	query, page, err := h.resource.BuildQuery(c.Queries())
	if err != nil {
		return respondError(c, "Could not list products", err)
	}

	rows, total, err := h.service.ListProducts(c.UserContext(), query)
	if err != nil {
		return respondError(c, "Could not retrieve products", err)
	}

	data := make([]resource.Row, len(rows))
	for i, row := range rows {
		data[i] = h.resource.RenderRow(row)
	}

	emptyStateActions := []string{}
	if total == 0 {
		emptyStateActions = h.resource.Table(nil).EmptyStateActions
	}

	return c.JSON(fiber.Map{
		"data": data,
		"meta": fiber.Map{
			"total":    total,
			"page":     page.Page,
			"per_page": page.PerPage,
			"sort":     query.SortBy,
			"desc":     query.SortDesc,
		},
		"empty_state_actions": emptyStateActions,
	})
}

// HandleSchema returns the full resource descriptor.
func (h *ProductHandler) HandleSchema(c *fiber.Ctx) error {
	categories, err := h.catalog.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve categories", err)
	}
	return c.JSON(fiber.Map{
		"form":      h.resource.Form(categories),
		"table":     h.resource.Table(categories),
		"pages":     h.resource.Pages(),
		"relations": h.resource.Relations(),
	})
}

// HandleCreatePage returns the empty create form.
func (h *ProductHandler) HandleCreatePage(c *fiber.Ctx) error {
	categories, err := h.catalog.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve categories", err)
	}
	return c.JSON(fiber.Map{
		"form": h.resource.Form(categories),
	})
}

// HandleCreate validates and stores a new product.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	var input services.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return badBody(c, err)
	}

	product, err := h.service.CreateProduct(c.UserContext(), input)
	if err != nil {
		return respondError(c, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleEditPage returns the form schema with the record's current values.
func (h *ProductHandler) HandleEditPage(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve product", err)
	}
	categories, err := h.catalog.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve categories", err)
	}
	return c.JSON(fiber.Map{
		"record":    product,
		"form":      h.resource.Form(categories),
		"values":    h.resource.FormValues(product),
		"relations": h.resource.Relations(),
	})
}

// HandleUpdate validates and saves the edit form.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	var input services.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return badBody(c, err)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return respondError(c, "Could not update product", err)
	}
	return c.JSON(product)
}

// HandleDelete soft-deletes one product.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return respondError(c, "Could not delete product", err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product %s deleted successfully", id),
	})
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids" form:"ids"`
}

// HandleBulkDelete soft-deletes every selected product.
func (h *ProductHandler) HandleBulkDelete(c *fiber.Ctx) error {
	var req bulkDeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	deleted, err := h.service.BulkDeleteProducts(c.UserContext(), req.IDs)
	if err != nil {
		return respondError(c, "Could not delete products", err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("%d products deleted successfully", deleted),
		"deleted": deleted,
	})
}

// HandleExport writes the filtered list view, every page, as an xlsx sheet.
func (h *ProductHandler) HandleExport(c *fiber.Ctx) error {
	query, _, err := h.resource.BuildQuery(c.Queries())
	if err != nil {
		return respondError(c, "Could not export products", err)
	}
	query.Limit, query.Offset = 0, 0

	rows, _, err := h.service.ListProducts(c.UserContext(), query)
	if err != nil {
		return respondError(c, "Could not retrieve products", err)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return respondError(c, "Could not create Excel sheet", err)
	}

	headerRow := sheet.AddRow()
	for _, header := range []string{"ID", "Name", "Price", "Status", "Category", "Tags", "Created At"} {
		headerRow.AddCell().SetValue(header)
	}
	for _, row := range rows {
		rendered := h.resource.RenderRow(row)
		xrow := sheet.AddRow()
		xrow.AddCell().SetValue(rendered.ID)
		xrow.AddCell().SetValue(rendered.Name)
		xrow.AddCell().SetValue(rendered.Price.Display)
		status := ""
		if rendered.Status != nil {
			status = rendered.Status.Label
		}
		xrow.AddCell().SetValue(status)
		category := ""
		if rendered.CategoryName != nil {
			category = *rendered.CategoryName
		}
		xrow.AddCell().SetValue(category)
		xrow.AddCell().SetValue(strings.Join(rendered.Tags, ", "))
		xrow.AddCell().SetValue(rendered.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	c.Set(fiber.HeaderContentDisposition, "attachment; filename=products.xlsx")
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(c.Response().BodyWriter()); err != nil {
		return respondError(c, "Could not write Excel file", err)
	}
	return nil
}

// HandleListTags lists the tags attached to a product.
func (h *ProductHandler) HandleListTags(c *fiber.Ctx) error {
	tags, err := h.service.ProductTags(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve product tags", err)
	}
	return c.JSON(tags)
}

type attachTagsRequest struct {
	TagIDs []string `json:"tag_ids" form:"tag_ids"`
}

// HandleAttachTags attaches existing tags to a product.
func (h *ProductHandler) HandleAttachTags(c *fiber.Ctx) error {
	var req attachTagsRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	tags, err := h.service.AttachTags(c.UserContext(), c.Params("id"), req.TagIDs)
	if err != nil {
		return respondError(c, "Could not attach tags", err)
	}
	return c.JSON(tags)
}

// HandleDetachTag detaches one tag from a product.
func (h *ProductHandler) HandleDetachTag(c *fiber.Ctx) error {
	if err := h.service.DetachTag(c.UserContext(), c.Params("id"), c.Params("tagId")); err != nil {
		return respondError(c, "Could not detach tag", err)
	}
	return c.JSON(fiber.Map{
		"message": "Tag detached successfully",
	})
}
