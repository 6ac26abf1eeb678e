package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"cv-checker/internal/models"
	"cv-checker/internal/repositories"
	"cv-checker/internal/services"
)

// UserHandler exposes the identity-provider-backed user surface. All routes
// sit behind the Clerk auth middleware.
type UserHandler struct {
	clerkService *services.ClerkService
	userRepo     repositories.UserRepository
	analysisRepo repositories.AnalysisRepository
	validate     *validator.Validate
	logger       *zap.Logger
}

func NewUserHandler(
	clerkService *services.ClerkService,
	userRepo repositories.UserRepository,
	analysisRepo repositories.AnalysisRepository,
	logger *zap.Logger,
) *UserHandler {
	return &UserHandler{
		clerkService: clerkService,
		userRepo:     userRepo,
		analysisRepo: analysisRepo,
		validate:     validator.New(),
		logger:       logger,
	}
}

// currentUser resolves the authenticated user, syncing from the provider on
// first sight.
func (h *UserHandler) currentUser(c *fiber.Ctx) (*models.User, error) {
	clerkUserID, _ := c.Locals("clerk_user_id").(string)
	if clerkUserID == "" {
		return nil, repositories.ErrUserNotFound
	}

	user, err := h.userRepo.FindByClerkID(clerkUserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, err
	}

	data, err := h.clerkService.FetchUser(c.Context(), clerkUserID)
	if err != nil {
		return nil, repositories.ErrUserNotFound
	}

	return h.clerkService.SyncUser(data)
}

// HandleGetMe handles GET /api/users/me.
func (h *UserHandler) HandleGetMe(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "User not found")
		}
		h.logger.Error("failed to resolve current user", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Error retrieving user information")
	}

	return c.JSON(user)
}

// HandleUpdateMe handles PUT /api/users/me.
func (h *UserHandler) HandleUpdateMe(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "User not found")
		}
		h.logger.Error("failed to resolve current user", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Error updating user information")
	}

	var req models.UserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request payload")
	}
	if err := h.validate.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	updated := false
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
		updated = true
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
		updated = true
	}

	if updated {
		if err := h.userRepo.Update(user); err != nil {
			h.logger.Error("failed to update user", zap.Error(err))
			return errorResponse(c, fiber.StatusInternalServerError, "Error updating user information")
		}
	}

	return c.JSON(user)
}

// HandleGetStats handles GET /api/users/stats.
func (h *UserHandler) HandleGetStats(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "User not found")
		}
		h.logger.Error("failed to resolve current user", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Error retrieving user statistics")
	}

	analysisCount, err := h.analysisRepo.CountByUser(user.ID.String())
	if err != nil {
		h.logger.Error("failed to count analyses", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Error retrieving user statistics")
	}

	return c.JSON(fiber.Map{
		"user_id":            user.ID,
		"analyses_completed": analysisCount,
		"member_since":       user.CreatedAt,
	})
}

// HandleDeleteMe handles DELETE /api/users/me (soft deactivation).
func (h *UserHandler) HandleDeleteMe(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "User not found")
		}
		h.logger.Error("failed to resolve current user", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Error deactivating user account")
	}

	if err := h.userRepo.Deactivate(user.ID); err != nil {
		h.logger.Error("failed to deactivate user", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Error deactivating user account")
	}

	return c.JSON(fiber.Map{"message": "User account deactivated successfully"})
}
