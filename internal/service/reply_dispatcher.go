package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spec-kit/line-menu-bot/internal/domain"
	"github.com/spec-kit/line-menu-bot/internal/line"
	"github.com/spec-kit/line-menu-bot/internal/observability"
	apperrors "github.com/spec-kit/line-menu-bot/pkg/util/errorutil"
)

// DefaultMaxMessagesPerReply is the platform limit of messages bundled in one reply.
const DefaultMaxMessagesPerReply = 5

// ReplyLogWriter stores reply audit entries.
type ReplyLogWriter interface {
	Create(ctx context.Context, entry *domain.ReplyLog) error
}

// ReplyDispatcher sends composed messages with an event's reply token.
type ReplyDispatcher struct {
	client      line.MessagingClient
	maxMessages int
	limiter     *rate.Limiter
	logs        ReplyLogWriter
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// ReplyDispatcherDependencies bundles collaborators for the dispatcher.
type ReplyDispatcherDependencies struct {
	Client           line.MessagingClient
	MaxMessages      int
	RepliesPerSecond int
	ReplyLogs        ReplyLogWriter
	Metrics          *observability.Metrics
	Logger           *zap.Logger
}

// NewReplyDispatcher constructs the dispatcher. A non-positive rate disables throttling.
func NewReplyDispatcher(deps ReplyDispatcherDependencies) *ReplyDispatcher {
	maxMessages := deps.MaxMessages
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessagesPerReply
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if deps.RepliesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(deps.RepliesPerSecond), deps.RepliesPerSecond)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReplyDispatcher{
		client:      deps.Client,
		maxMessages: maxMessages,
		limiter:     limiter,
		logs:        deps.ReplyLogs,
		metrics:     deps.Metrics,
		logger:      logger.Named("reply_dispatcher"),
	}
}

// Reply sends messages as one reply request. Token and message count are
// checked before any network call.
func (d *ReplyDispatcher) Reply(ctx context.Context, replyToken string, messages []domain.OutboundMessage) error {
	if strings.TrimSpace(replyToken) == "" {
		return apperrors.NewPreconditionError("reply token is empty")
	}
	if len(messages) == 0 {
		return apperrors.NewPreconditionError("reply has no messages")
	}
	if len(messages) > d.maxMessages {
		return apperrors.NewPreconditionError(fmt.Sprintf("reply has %d messages, max %d", len(messages), d.maxMessages))
	}

	outgoing := make([]domain.OutboundMessage, len(messages))
	for i, m := range messages {
		if m.Type == domain.MessageTypeText {
			m.Text = TruncateText(m.Text)
		}
		outgoing[i] = m
	}

	err := d.limiter.Wait(ctx)
	if err == nil {
		err = d.client.ReplyMessage(ctx, replyToken, outgoing)
	}
	d.record(ctx, replyToken, outgoing, err)
	if err != nil {
		d.logger.Warn("reply failed", zap.String("reply_token", replyToken), zap.Error(err))
		return apperrors.NewUpstreamError("reply message", err)
	}
	d.logger.Info("reply sent", zap.String("reply_token", replyToken), zap.Int("messages", len(outgoing)))
	return nil
}

// ReplyText is a convenience for a single text message.
func (d *ReplyDispatcher) ReplyText(ctx context.Context, replyToken, text string) error {
	return d.Reply(ctx, replyToken, []domain.OutboundMessage{TextMessage(text)})
}

func (d *ReplyDispatcher) record(ctx context.Context, replyToken string, messages []domain.OutboundMessage, sendErr error) {
	status := domain.ReplyStatusSent
	if sendErr != nil {
		status = domain.ReplyStatusFailed
	}
	d.metrics.RecordReply(strings.ToLower(string(status)), len(messages))
	if d.logs == nil {
		return
	}

	types := make([]string, 0, len(messages))
	for _, m := range messages {
		types = append(types, string(m.Type))
	}
	entry := &domain.ReplyLog{
		ReplyToken:   replyToken,
		MessageTypes: types,
		MessageCount: len(messages),
		Status:       status,
	}
	if sendErr != nil {
		msg := sendErr.Error()
		entry.Error = &msg
	}
	if err := d.logs.Create(context.WithoutCancel(ctx), entry); err != nil {
		d.logger.Warn("record reply log", zap.Error(err))
	}
}
