package service

import (
	"unicode/utf8"

	"github.com/spec-kit/line-menu-bot/internal/domain"
)

const (
	// MaxTextLength is the platform cap on a text message, in characters.
	MaxTextLength = 1000
	// Ellipsis marks a truncated text message.
	Ellipsis = "..."
	// DefaultLocationTitle replaces a missing title on echoed locations.
	DefaultLocationTitle = "Location replied"
)

// TruncateText caps s at MaxTextLength characters, ending truncated text with Ellipsis.
func TruncateText(s string) string {
	if utf8.RuneCountInString(s) <= MaxTextLength {
		return s
	}
	keep := MaxTextLength - utf8.RuneCountInString(Ellipsis)
	runes := []rune(s)
	return string(runes[:keep]) + Ellipsis
}

// TextMessage builds a text message within the length cap.
func TextMessage(text string) domain.OutboundMessage {
	return domain.OutboundMessage{Type: domain.MessageTypeText, Text: TruncateText(text)}
}

// TextMessages builds one text message per entry.
func TextMessages(texts ...string) []domain.OutboundMessage {
	out := make([]domain.OutboundMessage, 0, len(texts))
	for _, t := range texts {
		out = append(out, TextMessage(t))
	}
	return out
}

// StickerMessage echoes a sticker.
func StickerMessage(packageID, stickerID string) domain.OutboundMessage {
	return domain.OutboundMessage{Type: domain.MessageTypeSticker, PackageID: packageID, StickerID: stickerID}
}

// LocationMessage echoes a location, defaulting an empty title.
func LocationMessage(loc domain.LocationContent) domain.OutboundMessage {
	title := loc.Title
	if title == "" {
		title = DefaultLocationTitle
	}
	return domain.OutboundMessage{
		Type:      domain.MessageTypeLocation,
		Title:     title,
		Address:   loc.Address,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
	}
}

// ImageMessage references an original image and its preview.
func ImageMessage(originalURI, previewURI string) domain.OutboundMessage {
	return domain.OutboundMessage{Type: domain.MessageTypeImage, OriginalURI: originalURI, PreviewURI: previewURI}
}
