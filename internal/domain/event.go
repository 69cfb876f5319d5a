package domain

import "time"

// ContentKind is the discriminant of an inbound event's payload.
type ContentKind string

const (
	ContentKindText     ContentKind = "text"
	ContentKindSticker  ContentKind = "sticker"
	ContentKindLocation ContentKind = "location"
	ContentKindImage    ContentKind = "image"
	ContentKindUnknown  ContentKind = "unknown"
)

// InboundEvent is one message event delivered by the platform webhook.
// Exactly one of the content pointers matching Kind is set.
type InboundEvent struct {
	Kind           ContentKind
	ReplyToken     string
	SourceUserID   string
	WebhookEventID string
	Redelivery     bool
	Timestamp      time.Time

	Text     *TextContent
	Sticker  *StickerContent
	Location *LocationContent
	Image    *ImageContent
}

// TextContent carries a text message.
type TextContent struct {
	ID   string
	Text string
}

// StickerContent carries a sticker message.
type StickerContent struct {
	ID        string
	PackageID string
	StickerID string
}

// LocationContent carries a shared location. Title is empty when the sender
// shared a bare coordinate.
type LocationContent struct {
	ID        string
	Title     string
	Address   string
	Latitude  float64
	Longitude float64
}

// ImageContent references image bytes held by the platform.
type ImageContent struct {
	ID string
}

// HasPayload reports whether the payload for Kind is present.
func (e InboundEvent) HasPayload() bool {
	switch e.Kind {
	case ContentKindText:
		return e.Text != nil
	case ContentKindSticker:
		return e.Sticker != nil
	case ContentKindLocation:
		return e.Location != nil
	case ContentKindImage:
		return e.Image != nil
	default:
		return false
	}
}
