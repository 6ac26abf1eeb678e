package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"cv-checker/internal/models"
	"cv-checker/internal/services"
)

// AuthHandler exposes the legacy email/password auth surface.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	logger      *zap.Logger
}

func NewAuthHandler(authService *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
		logger:      logger,
	}
}

// HandleRegister handles POST /api/register.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request payload")
	}

	if err := h.validate.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	user, err := h.authService.Register(&req)
	if err != nil {
		if errors.Is(err, services.ErrUserExists) {
			return errorResponse(c, fiber.StatusConflict, "User with this email already exists")
		}
		h.logger.Error("registration failed", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error during registration")
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleLogin handles POST /api/login.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request payload")
	}

	if err := h.validate.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	token, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return errorResponse(c, fiber.StatusUnauthorized, "Invalid email or password")
		}
		h.logger.Error("login failed", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error during login")
	}

	return c.JSON(token)
}

// HandleLogout handles POST /api/logout.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	token, ok := bearerToken(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Missing or invalid authorization header")
	}

	h.authService.Logout(token)
	return c.JSON(fiber.Map{"message": "Successfully logged out"})
}

// HandleRefreshToken handles POST /api/refresh-token.
func (h *AuthHandler) HandleRefreshToken(c *fiber.Ctx) error {
	token, ok := bearerToken(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Missing or invalid authorization header")
	}

	refreshed, err := h.authService.Refresh(token)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Invalid or expired token")
	}

	return c.JSON(refreshed)
}

// HandleCurrentUser handles GET /api/me.
func (h *AuthHandler) HandleCurrentUser(c *fiber.Ctx) error {
	token, ok := bearerToken(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Missing or invalid authorization header")
	}

	user, err := h.authService.CurrentUser(token)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Invalid or expired token")
	}

	return c.JSON(user)
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	return token, token != ""
}
