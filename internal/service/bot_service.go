package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/line-menu-bot/internal/domain"
	"github.com/spec-kit/line-menu-bot/internal/events"
)

// NoUserIDText is sent for "profile" when the event has no source user.
const NoUserIDText = "Bot can't use profile API without user ID"

// ProfileFetcher looks up a user's profile.
type ProfileFetcher interface {
	GetProfile(ctx context.Context, userID string) (domain.Profile, error)
}

// Replier sends a reply for an event.
type Replier interface {
	Reply(ctx context.Context, replyToken string, messages []domain.OutboundMessage) error
}

// ImageHandler turns an image message into original and preview URIs.
type ImageHandler interface {
	HandleImage(ctx context.Context, contentID string) (originalURI, previewURI string, err error)
}

// BotService holds one handler per content kind.
type BotService struct {
	intents  *IntentEngine
	profiles ProfileFetcher
	replies  Replier
	images   ImageHandler
	logger   *zap.Logger
}

// BotDependencies bundles collaborators for the bot service.
type BotDependencies struct {
	Intents  *IntentEngine
	Profiles ProfileFetcher
	Replies  Replier
	Images   ImageHandler
	Logger   *zap.Logger
}

// NewBotService constructs the service.
func NewBotService(deps BotDependencies) *BotService {
	intents := deps.Intents
	if intents == nil {
		intents = NewIntentEngine()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BotService{
		intents:  intents,
		profiles: deps.Profiles,
		replies:  deps.Replies,
		images:   deps.Images,
		logger:   logger.Named("bot"),
	}
}

// RegisterHandlers wires each content kind to its handler.
func (s *BotService) RegisterHandlers(router events.Router) {
	router.Register(domain.ContentKindText, s.HandleText)
	router.Register(domain.ContentKindSticker, s.HandleSticker)
	router.Register(domain.ContentKindLocation, s.HandleLocation)
	router.Register(domain.ContentKindImage, s.HandleImage)
}

// HandleText replies according to the intent table.
func (s *BotService) HandleText(ctx context.Context, event domain.InboundEvent) error {
	if event.Text == nil {
		return nil
	}
	text := event.Text.Text
	action := s.intents.Classify(text)
	s.logger.Info("text message",
		zap.String("reply_token", event.ReplyToken),
		zap.String("text", text),
		zap.String("action", string(action.Kind)),
	)

	switch action.Kind {
	case ActionProfile:
		return s.replyProfile(ctx, event)
	case ActionFallback:
		s.logger.Info("unknown command", zap.String("reply_token", event.ReplyToken), zap.String("text", text))
		return s.replies.Reply(ctx, event.ReplyToken, TextMessages(action.Texts...))
	default:
		return s.replies.Reply(ctx, event.ReplyToken, TextMessages(action.Texts...))
	}
}

// replyProfile sends exactly one reply: the profile lines, or the lookup error text.
func (s *BotService) replyProfile(ctx context.Context, event domain.InboundEvent) error {
	if event.SourceUserID == "" {
		return s.replies.Reply(ctx, event.ReplyToken, TextMessages(NoUserIDText))
	}
	profile, err := s.profiles.GetProfile(ctx, event.SourceUserID)
	if err != nil {
		s.logger.Warn("profile lookup failed", zap.String("user_id", event.SourceUserID), zap.Error(err))
		return s.replies.Reply(ctx, event.ReplyToken, TextMessages(err.Error()))
	}
	return s.replies.Reply(ctx, event.ReplyToken, TextMessages(
		"Display name: "+profile.DisplayName,
		"Status message: "+profile.StatusMessage,
		"User ID: "+profile.UserID,
	))
}

// HandleSticker echoes the sticker.
func (s *BotService) HandleSticker(ctx context.Context, event domain.InboundEvent) error {
	if event.Sticker == nil {
		return nil
	}
	return s.replies.Reply(ctx, event.ReplyToken, []domain.OutboundMessage{
		StickerMessage(event.Sticker.PackageID, event.Sticker.StickerID),
	})
}

// HandleLocation echoes the location.
func (s *BotService) HandleLocation(ctx context.Context, event domain.InboundEvent) error {
	if event.Location == nil {
		return nil
	}
	return s.replies.Reply(ctx, event.ReplyToken, []domain.OutboundMessage{LocationMessage(*event.Location)})
}

// HandleImage replies with the stored image and its preview. When the
// content cannot be fetched or stored the user is told so and the error is
// returned for this event.
func (s *BotService) HandleImage(ctx context.Context, event domain.InboundEvent) error {
	if event.Image == nil {
		return nil
	}
	original, preview, err := s.images.HandleImage(ctx, event.Image.ID)
	if err != nil {
		s.logger.Error("image pipeline failed", zap.String("content_id", event.Image.ID), zap.Error(err))
		replyErr := s.replies.Reply(ctx, event.ReplyToken, TextMessages("Cannot get image: "+event.Image.ID))
		return errors.Join(err, replyErr)
	}
	return s.replies.Reply(ctx, event.ReplyToken, []domain.OutboundMessage{ImageMessage(original, preview)})
}
