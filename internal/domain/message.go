package domain

// MessageType differentiates outbound message payloads.
type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeSticker  MessageType = "sticker"
	MessageTypeLocation MessageType = "location"
	MessageTypeImage    MessageType = "image"
)

// OutboundMessage is one message in a reply. Only the fields of Type are used.
type OutboundMessage struct {
	Type MessageType

	Text string

	PackageID string
	StickerID string

	Title     string
	Address   string
	Latitude  float64
	Longitude float64

	OriginalURI string
	PreviewURI  string
}

// Profile is the subset of a platform user profile the bot echoes back.
type Profile struct {
	UserID        string
	DisplayName   string
	StatusMessage string
	PictureURL    string
}

// DownloadedContent is a file written under the download directory and the
// public URI it is served at.
type DownloadedContent struct {
	Path string
	URI  string
}
