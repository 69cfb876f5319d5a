package events

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/line-menu-bot/internal/domain"
	"github.com/spec-kit/line-menu-bot/internal/observability"
	apperrors "github.com/spec-kit/line-menu-bot/pkg/util/errorutil"
)

// EventHandler handles one inbound event of a single content kind.
type EventHandler func(context.Context, domain.InboundEvent) error

// Router sends each inbound event to the handler registered for its content kind.
type Router interface {
	Route(ctx context.Context, event domain.InboundEvent) error
	Register(kind domain.ContentKind, handler EventHandler)
}

// Event outcomes recorded in metrics.
const (
	OutcomeHandled = "handled"
	OutcomeIgnored = "ignored"
	OutcomeFailed  = "failed"
)

type kindRouter struct {
	mu       sync.RWMutex
	handlers map[domain.ContentKind]EventHandler
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewRouter creates a router with no handlers.
func NewRouter(logger *zap.Logger, metrics *observability.Metrics) Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &kindRouter{
		handlers: make(map[domain.ContentKind]EventHandler),
		logger:   logger.Named("router"),
		metrics:  metrics,
	}
}

// Register sets the handler for kind, replacing any previous one.
func (r *kindRouter) Register(kind domain.ContentKind, handler EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = handler
}

// Route invokes exactly one handler. Events of unregistered kinds, or whose
// payload is missing, are logged and dropped without error. Handler panics are
// recovered and returned as internal errors.
func (r *kindRouter) Route(ctx context.Context, event domain.InboundEvent) (err error) {
	r.logger.Info("event received",
		zap.String("kind", string(event.Kind)),
		zap.String("reply_token", event.ReplyToken),
		zap.String("user_id", event.SourceUserID),
		zap.String("webhook_event_id", event.WebhookEventID),
	)

	r.mu.RLock()
	handler := r.handlers[event.Kind]
	r.mu.RUnlock()

	if handler == nil || !event.HasPayload() {
		r.logger.Debug("no handler for event", zap.String("kind", string(event.Kind)))
		r.metrics.RecordEvent(string(event.Kind), OutcomeIgnored)
		return nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("handler panic recovered",
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
			)
			err = apperrors.NewInternalError(fmt.Errorf("handler panic: %v", rec))
		}
		outcome := OutcomeHandled
		if err != nil {
			outcome = OutcomeFailed
		}
		r.metrics.RecordEvent(string(event.Kind), outcome)
	}()

	return handler(ctx, event)
}
