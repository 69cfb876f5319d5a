// Package line adapts the LINE Messaging API SDK to the bot's domain types.
package line

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/spec-kit/line-menu-bot/internal/domain"
)

// MessagingClient is the outbound surface of the platform used by the bot.
type MessagingClient interface {
	ReplyMessage(ctx context.Context, replyToken string, messages []domain.OutboundMessage) error
	GetProfile(ctx context.Context, userID string) (domain.Profile, error)
	GetMessageContent(ctx context.Context, messageID string) (io.ReadCloser, error)
}

// Client implements MessagingClient with the official SDK.
type Client struct {
	api  *messaging_api.MessagingApiAPI
	blob *messaging_api.MessagingApiBlobAPI
}

const (
	defaultAPITimeout     = 30 * time.Second
	defaultContentTimeout = 60 * time.Second
)

// ClientConfig configures the SDK clients. Endpoints are optional overrides.
type ClientConfig struct {
	ChannelToken   string
	APITimeout     time.Duration
	ContentTimeout time.Duration
	APIEndpoint    string
	DataEndpoint   string
}

// NewClient creates the API and blob clients. APITimeout bounds API calls;
// ContentTimeout bounds a whole content download including its body.
func NewClient(cfg ClientConfig) (*Client, error) {
	apiTimeout := cfg.APITimeout
	if apiTimeout <= 0 {
		apiTimeout = defaultAPITimeout
	}
	contentTimeout := cfg.ContentTimeout
	if contentTimeout <= 0 {
		contentTimeout = defaultContentTimeout
	}

	apiOpts := []messaging_api.MessagingApiAPIOption{
		messaging_api.WithHTTPClient(&http.Client{Timeout: apiTimeout}),
	}
	if cfg.APIEndpoint != "" {
		apiOpts = append(apiOpts, messaging_api.WithEndpoint(cfg.APIEndpoint))
	}
	api, err := messaging_api.NewMessagingApiAPI(cfg.ChannelToken, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("create messaging api client: %w", err)
	}

	blobOpts := []messaging_api.MessagingApiBlobAPIOption{
		messaging_api.WithBlobHTTPClient(&http.Client{Timeout: contentTimeout}),
	}
	if cfg.DataEndpoint != "" {
		blobOpts = append(blobOpts, messaging_api.WithBlobEndpoint(cfg.DataEndpoint))
	}
	blob, err := messaging_api.NewMessagingApiBlobAPI(cfg.ChannelToken, blobOpts...)
	if err != nil {
		return nil, fmt.Errorf("create messaging blob client: %w", err)
	}
	return &Client{api: api, blob: blob}, nil
}

// ReplyMessage sends all messages in a single reply request.
func (c *Client) ReplyMessage(ctx context.Context, replyToken string, messages []domain.OutboundMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload := make([]messaging_api.MessageInterface, 0, len(messages))
	for _, m := range messages {
		msg, err := toSDKMessage(m)
		if err != nil {
			return err
		}
		payload = append(payload, msg)
	}
	_, err := c.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   payload,
	})
	return err
}

// GetProfile fetches the profile of a user who befriended the bot.
func (c *Client) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return domain.Profile{}, err
	}
	resp, err := c.api.GetProfile(userID)
	if err != nil {
		return domain.Profile{}, err
	}
	return domain.Profile{
		UserID:        resp.UserId,
		DisplayName:   resp.DisplayName,
		StatusMessage: resp.StatusMessage,
		PictureURL:    resp.PictureUrl,
	}, nil
}

// GetMessageContent opens the binary body of a media message. The caller closes it.
func (c *Client) GetMessageContent(ctx context.Context, messageID string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := c.blob.GetMessageContent(messageID)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("get message content: unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func toSDKMessage(m domain.OutboundMessage) (messaging_api.MessageInterface, error) {
	switch m.Type {
	case domain.MessageTypeText:
		return messaging_api.TextMessage{Text: m.Text}, nil
	case domain.MessageTypeSticker:
		return messaging_api.StickerMessage{PackageId: m.PackageID, StickerId: m.StickerID}, nil
	case domain.MessageTypeLocation:
		return messaging_api.LocationMessage{
			Title:     m.Title,
			Address:   m.Address,
			Latitude:  m.Latitude,
			Longitude: m.Longitude,
		}, nil
	case domain.MessageTypeImage:
		return messaging_api.ImageMessage{
			OriginalContentUrl: m.OriginalURI,
			PreviewImageUrl:    m.PreviewURI,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported outbound message type %q", m.Type)
	}
}
