package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/line-menu-bot/internal/api/dto"
	"github.com/spec-kit/line-menu-bot/internal/domain"
	"github.com/spec-kit/line-menu-bot/internal/observability"
	"github.com/spec-kit/line-menu-bot/internal/service"
	apperrors "github.com/spec-kit/line-menu-bot/pkg/util/errorutil"
)

// AdminService is the operator surface used by AdminHandler.
type AdminService interface {
	Login(username, password string) (string, time.Time, error)
	Intents() []service.IntentRule
	Metrics() observability.Snapshot
	RecentReplies(ctx context.Context, limit int) ([]domain.ReplyLog, error)
}

// AdminHandler exposes operator endpoints.
type AdminHandler struct {
	admin AdminService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(adminService AdminService) *AdminHandler {
	return &AdminHandler{admin: adminService}
}

// Login handles POST /admin/login.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	token, exp, err := h.admin.Login(req.Username, req.Password)
	if err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{Token: token, ExpiresAt: exp}})
}

// Intents handles GET /admin/intents.
func (h *AdminHandler) Intents(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.admin.Intents()})
}

// Metrics handles GET /admin/metrics.
func (h *AdminHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.admin.Metrics()})
}

// Replies handles GET /admin/replies?limit=N.
func (h *AdminHandler) Replies(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	logs, err := h.admin.RecentReplies(c.UserContext(), limit)
	if err != nil {
		return apperrors.MapError(err)
	}
	items := make([]dto.ReplyLogResponse, 0, len(logs))
	for _, l := range logs {
		items = append(items, dto.ReplyLogResponse{
			ID:           l.ID,
			ReplyToken:   l.ReplyToken,
			MessageTypes: l.MessageTypes,
			MessageCount: l.MessageCount,
			Status:       string(l.Status),
			Error:        l.Error,
			CreatedAt:    l.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
