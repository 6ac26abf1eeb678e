package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"cv-checker/internal/services"
)

// WebhookHandler receives identity-provider account lifecycle events.
type WebhookHandler struct {
	clerkService *services.ClerkService
	logger       *zap.Logger
}

func NewWebhookHandler(clerkService *services.ClerkService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		clerkService: clerkService,
		logger:       logger,
	}
}

// HandleClerkWebhook handles POST /webhooks/clerk.
func (h *WebhookHandler) HandleClerkWebhook(c *fiber.Ctx) error {
	body := c.Body()

	if !h.clerkService.VerifyWebhook(body, c.Get("svix-signature")) {
		h.logger.Warn("webhook signature verification failed")
		return errorResponse(c, fiber.StatusUnauthorized, "Invalid webhook signature")
	}

	var event services.ClerkEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid JSON payload")
	}

	if event.Type == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Missing event type")
	}

	h.logger.Info("processing identity provider webhook", zap.String("event_type", event.Type))

	switch event.Type {
	case "user.created":
		user, err := h.clerkService.HandleUserCreated(&event)
		if err != nil {
			h.logger.Error("failed to create user from webhook", zap.Error(err))
			return errorResponse(c, fiber.StatusInternalServerError, "Failed to create user")
		}
		return c.JSON(fiber.Map{"message": "User created successfully", "user_id": user.ID})

	case "user.updated":
		user, err := h.clerkService.HandleUserUpdated(&event)
		if err != nil {
			h.logger.Error("failed to update user from webhook", zap.Error(err))
			return errorResponse(c, fiber.StatusInternalServerError, "Failed to update user")
		}
		return c.JSON(fiber.Map{"message": "User updated successfully", "user_id": user.ID})

	case "user.deleted":
		if err := h.clerkService.HandleUserDeleted(&event); err != nil {
			h.logger.Error("failed to delete user from webhook", zap.Error(err))
			return errorResponse(c, fiber.StatusInternalServerError, "Failed to delete user")
		}
		return c.JSON(fiber.Map{"message": "User deleted successfully"})

	default:
		h.logger.Info("unhandled webhook event type", zap.String("event_type", event.Type))
		return c.JSON(fiber.Map{"message": "Event type " + event.Type + " received but not processed"})
	}
}

// HandleWebhookHealth handles GET /webhooks/health.
func (h *WebhookHandler) HandleWebhookHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy", "service": "webhooks"})
}
