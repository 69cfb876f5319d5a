package service

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/spec-kit/line-menu-bot/internal/domain"
)

type sentReply struct {
	token    string
	messages []domain.OutboundMessage
}

type fakeMessagingClient struct {
	mu         sync.Mutex
	replies    []sentReply
	replyErr   error
	profile    domain.Profile
	profileErr error
	content    string
	contentErr error
}

func (f *fakeMessagingClient) ReplyMessage(_ context.Context, token string, messages []domain.OutboundMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, sentReply{token: token, messages: messages})
	return f.replyErr
}

func (f *fakeMessagingClient) GetProfile(context.Context, string) (domain.Profile, error) {
	return f.profile, f.profileErr
}

func (f *fakeMessagingClient) GetMessageContent(context.Context, string) (io.ReadCloser, error) {
	if f.contentErr != nil {
		return nil, f.contentErr
	}
	return io.NopCloser(strings.NewReader(f.content)), nil
}

func (f *fakeMessagingClient) sent() []sentReply {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentReply(nil), f.replies...)
}

type fakeReplyLogs struct {
	mu      sync.Mutex
	entries []domain.ReplyLog
}

func (f *fakeReplyLogs) Create(_ context.Context, entry *domain.ReplyLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeReplyLogs) ListRecent(_ context.Context, limit int) ([]domain.ReplyLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > len(f.entries) {
		limit = len(f.entries)
	}
	return append([]domain.ReplyLog(nil), f.entries[:limit]...), nil
}

type fakeImages struct {
	original, preview string
	err               error
}

func (f fakeImages) HandleImage(context.Context, string) (string, string, error) {
	return f.original, f.preview, f.err
}
