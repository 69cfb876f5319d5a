package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/line-menu-bot/internal/domain"
	"github.com/spec-kit/line-menu-bot/internal/events"
	"github.com/spec-kit/line-menu-bot/internal/line"
	"github.com/spec-kit/line-menu-bot/internal/repository"
	"github.com/spec-kit/line-menu-bot/internal/storage"
	apperrors "github.com/spec-kit/line-menu-bot/pkg/util/errorutil"
)

const signatureHeader = "X-Line-Signature"

// WebhookEventGuard reports whether a webhook event id is seen for the first
// time. Release undoes the mark after a failed event.
type WebhookEventGuard interface {
	MarkProcessed(ctx context.Context, id string) (bool, error)
	Release(ctx context.Context, id string) error
}

// WebhookHandler receives Messaging API webhook callbacks.
type WebhookHandler struct {
	channelSecret string
	router        events.Router
	guard         WebhookEventGuard
	logger        *zap.Logger
}

// NewWebhookHandler constructs handler. A nil guard processes every event.
func NewWebhookHandler(channelSecret string, router events.Router, guard WebhookEventGuard, logger *zap.Logger) *WebhookHandler {
	if guard == nil {
		guard = repository.NewWebhookEventRepository(nil, 0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{
		channelSecret: channelSecret,
		router:        router,
		guard:         guard,
		logger:        logger.Named("webhook"),
	}
}

// Handle handles POST /callback. Events are processed concurrently and the
// request fails if any event's handling fails.
func (h *WebhookHandler) Handle(c *fiber.Ctx) error {
	req, err := http.NewRequestWithContext(c.UserContext(), http.MethodPost, c.OriginalURL(), bytes.NewReader(c.Body()))
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	req.Header.Set(signatureHeader, c.Get(signatureHeader))

	cb, err := webhook.ParseRequest(h.channelSecret, req)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			return apperrors.NewDomainError("INVALID_SIGNATURE", "invalid signature", fiber.StatusBadRequest, nil)
		}
		return apperrors.NewValidationError("invalid webhook payload", nil)
	}

	ctx := storage.WithBaseURL(c.UserContext(), c.BaseURL())

	var g errgroup.Group
	for _, ev := range cb.Events {
		inbound, ok := line.ToInboundEvent(ev)
		if !ok {
			h.logger.Debug("ignoring non-message event", zap.String("type", ev.GetType()))
			continue
		}
		g.Go(func() error {
			return h.process(ctx, inbound)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// process handles one event at most once per webhook event id. The id stays
// marked only when handling succeeds, so a redelivery after a failure is retried.
func (h *WebhookHandler) process(ctx context.Context, event domain.InboundEvent) error {
	first, err := h.guard.MarkProcessed(ctx, event.WebhookEventID)
	marked := err == nil
	if err != nil {
		h.logger.Warn("redelivery guard unavailable", zap.String("webhook_event_id", event.WebhookEventID), zap.Error(err))
	} else if !first {
		h.logger.Info("skipping already processed event",
			zap.String("webhook_event_id", event.WebhookEventID),
			zap.Bool("redelivery", event.Redelivery),
		)
		return nil
	}

	routeErr := h.router.Route(ctx, event)
	if routeErr != nil && marked {
		if err := h.guard.Release(context.WithoutCancel(ctx), event.WebhookEventID); err != nil {
			h.logger.Warn("release webhook event", zap.String("webhook_event_id", event.WebhookEventID), zap.Error(err))
		}
	}
	return routeErr
}
