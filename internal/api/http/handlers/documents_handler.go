package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/pdch/pdch-server/internal/domain"
	"github.com/pdch/pdch-server/internal/service"
	apperrors "github.com/pdch/pdch-server/pkg/util"
)

// DocumentsHandler serves one resource collection.
type DocumentsHandler struct {
	service *service.CollectionService
}

// NewDocumentsHandler constructs handler.
func NewDocumentsHandler(collection *service.CollectionService) *DocumentsHandler {
	return &DocumentsHandler{service: collection}
}

// List handles GET /<collection>?limit=N. A missing or non-positive limit returns everything.
func (h *DocumentsHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	docs, err := h.service.List(c.UserContext(), int64(limit))
	if err != nil {
		return err
	}
	return c.JSON(docs)
}

// Get handles GET /<collection>/:id and responds null when nothing matches.
func (h *DocumentsHandler) Get(c *fiber.Ctx) error {
	doc, err := h.service.Get(c.UserContext(), paramID(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(nil)
		}
		return err
	}
	return c.JSON(doc)
}

// Create handles POST /<collection>.
func (h *DocumentsHandler) Create(c *fiber.Ctx) error {
	payload, err := parseDocument(c)
	if err != nil {
		return err
	}
	ack, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		return err
	}
	return c.JSON(ack)
}

// Update handles PUT /<collection>/:id.
func (h *DocumentsHandler) Update(c *fiber.Ctx) error {
	payload, err := parseDocument(c)
	if err != nil {
		return err
	}
	ack, err := h.service.Update(c.UserContext(), paramID(c), payload)
	if err != nil {
		return err
	}
	return c.JSON(ack)
}

// Delete handles DELETE /<collection>/:id.
func (h *DocumentsHandler) Delete(c *fiber.Ctx) error {
	ack, err := h.service.Delete(c.UserContext(), paramID(c))
	if err != nil {
		return err
	}
	return c.JSON(ack)
}

func parseDocument(c *fiber.Ctx) (domain.Document, error) {
	payload := domain.Document{}
	if err := c.BodyParser(&payload); err != nil {
		return nil, apperrors.NewValidationError("invalid payload", nil)
	}
	return payload, nil
}

// paramID copies the id out of fiber's reusable request buffer.
func paramID(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("id"))
}
