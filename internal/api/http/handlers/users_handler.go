package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/pdch/pdch-server/internal/api/dto"
	"github.com/pdch/pdch-server/internal/auth"
	"github.com/pdch/pdch-server/internal/service"
	apperrors "github.com/pdch/pdch-server/pkg/util"
)

// UsersHandler exposes registration and login.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Register handles POST /api/v1/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password); err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.MessageResponse{
		Success: true,
		Message: "User registered successfully",
	})
}

// Login handles POST /api/v1/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	res, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.LoginResponse{
		Success: true,
		Message: "Login successful",
		Token:   res.Token,
	})
}

// Me handles GET /api/v1/me behind the bearer middleware.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(dto.IdentityResponse{
		Success: true,
		Data: dto.IdentityDTO{
			Email:     identity.Email,
			Name:      identity.Name,
			IssuedAt:  identity.IssuedAt,
			ExpiresAt: identity.ExpiresAt,
		},
	})
}
