package line

import (
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/spec-kit/line-menu-bot/internal/domain"
)

// ToInboundEvent converts a parsed webhook event. Non-message events return false.
// Message kinds the bot does not handle map to ContentKindUnknown.
func ToInboundEvent(ev webhook.EventInterface) (domain.InboundEvent, bool) {
	e, ok := ev.(webhook.MessageEvent)
	if !ok {
		return domain.InboundEvent{}, false
	}

	out := domain.InboundEvent{
		Kind:           domain.ContentKindUnknown,
		ReplyToken:     e.ReplyToken,
		SourceUserID:   sourceUserID(e.Source),
		WebhookEventID: e.WebhookEventId,
		Timestamp:      time.UnixMilli(e.Timestamp),
	}
	if e.DeliveryContext != nil {
		out.Redelivery = e.DeliveryContext.IsRedelivery
	}

	switch m := e.Message.(type) {
	case webhook.TextMessageContent:
		out.Kind = domain.ContentKindText
		out.Text = &domain.TextContent{ID: m.Id, Text: m.Text}
	case webhook.StickerMessageContent:
		out.Kind = domain.ContentKindSticker
		out.Sticker = &domain.StickerContent{ID: m.Id, PackageID: m.PackageId, StickerID: m.StickerId}
	case webhook.LocationMessageContent:
		out.Kind = domain.ContentKindLocation
		out.Location = &domain.LocationContent{
			ID:        m.Id,
			Title:     m.Title,
			Address:   m.Address,
			Latitude:  m.Latitude,
			Longitude: m.Longitude,
		}
	case webhook.ImageMessageContent:
		out.Kind = domain.ContentKindImage
		out.Image = &domain.ImageContent{ID: m.Id}
	}
	return out, true
}

func sourceUserID(src webhook.SourceInterface) string {
	switch s := src.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.UserId
	case webhook.RoomSource:
		return s.UserId
	default:
		return ""
	}
}
